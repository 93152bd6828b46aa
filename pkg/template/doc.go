// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

// Package template models a whole CloudFormation template and drives one
// schema validation run per resource, building the intrinsic-function
// resolution table from the template's own sections.
package template
