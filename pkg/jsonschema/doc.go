// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

// Package jsonschema validates parsed template fragments against resource
// schemas: JSON Schema draft-07 extended with CloudFormation semantics.
//
// The extensions over plain draft-07:
//
//   - literal forms CloudFormation treats as interchangeable ("10" for an
//     integer, 10 for a string, "true" for a boolean) satisfy the `type`
//     keyword (coerce.go);
//   - intrinsic function calls are shape-checked and resolved best-effort
//     before keyword checks run; values depending on deploy-time state are
//     recorded as skipped, not failed (pkg/cfnfn);
//   - properties and items resolving to {"Ref": "AWS::NoValue"} are absent
//     for group-level keywords such as `required` (filter.go);
//   - the custom keywords requiredXor, requiredOr, propertiesNand,
//     dependentRequired, dependentExcluded, awsType and cfnLint
//     (keywords_custom.go).
//
// Every keyword maps to one stable rule ID (rules.go); callers filter
// findings by rule ID for suppression.
package jsonschema
