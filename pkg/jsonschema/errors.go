// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"fmt"
)

// Kind classifies a finding per the engine's error taxonomy.
type Kind string

const (
	// KindTypeMismatch is a failed `type` check.
	KindTypeMismatch Kind = "TypeMismatch"
	// KindConstraintViolation is any other failed standard or custom keyword.
	KindConstraintViolation Kind = "ConstraintViolation"
	// KindIntrinsicShape is a malformed intrinsic function call.
	KindIntrinsicShape Kind = "IntrinsicShapeError"
	// KindSchemaStructure means the schema itself is malformed at this node.
	KindSchemaStructure Kind = "SchemaStructureError"
	// KindStructural covers cyclic $ref beyond bound and malformed documents.
	KindStructural Kind = "StructuralError"
)

// ValidationError is one finding. RuleID is a stable token (see rules.go)
// callers key suppression on; Causes carries branch diagnostics for
// combinator failures and delegate findings.
type ValidationError struct {
	RuleID  string
	Path    Path
	Message string
	Kind    Kind
	Causes  []ValidationError
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.RuleID, e.Path.String(), e.Message)
}

// Skip records a subtree whose leaf checks were not evaluated because its
// value depends on state not known before deployment. Distinguishes "passed"
// from "not evaluated".
type Skip struct {
	Path   Path
	Reason string
}

// Result is the ordered outcome of one Validate call.
type Result struct {
	Errors  []ValidationError
	Skipped []Skip
}

func (r Result) Valid() bool { return len(r.Errors) == 0 }

func newError(ruleID string, kind Kind, path Path, format string, args ...interface{}) ValidationError {
	return ValidationError{
		RuleID:  ruleID,
		Kind:    kind,
		Path:    path.DeepCopy(),
		Message: fmt.Sprintf(format, args...),
	}
}
