// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

// Package cfnfn recognizes CloudFormation intrinsic function calls
// ({"Ref": ...}, {"Fn::Join": ...}, ...), structurally validates their
// argument shapes, and resolves them best-effort against a read-only
// resolution context of pseudo-parameter samples, template parameters and
// mappings. Values that depend on runtime resource state stay Unresolved;
// {"Ref": "AWS::NoValue"} resolves to the NoValue sentinel.
package cfnfn
