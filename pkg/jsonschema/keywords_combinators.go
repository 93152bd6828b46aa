// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"fmt"
	"strings"
)

func validateAllOf(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	var errs []ValidationError
	for _, branch := range s.AllOf {
		errs = append(errs, r.validateResolved(inst.res, branch, path)...)
	}
	return errs
}

func validateAnyOf(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	var causes []ValidationError
	for i, branch := range s.AnyOf {
		branchErrs := r.branch(inst.res, branch, path)
		if len(branchErrs) == 0 {
			// first passing branch wins; re-run it outside branch() so its
			// skips are kept, while failed-branch diagnostics stay discardable
			return r.validateResolved(inst.res, branch, path)
		}
		causes = append(causes, branchCause(i, branchErrs))
	}

	err := newError(RuleID("anyOf"), KindConstraintViolation, path,
		"value does not match any of the allowed schemas")
	err.Causes = causes
	return []ValidationError{err}
}

func validateOneOf(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	var matched []int
	var causes []ValidationError
	for i, branch := range s.OneOf {
		branchErrs := r.branch(inst.res, branch, path)
		if len(branchErrs) == 0 {
			matched = append(matched, i)
			continue
		}
		causes = append(causes, branchCause(i, branchErrs))
	}

	switch len(matched) {
	case 1:
		// re-run the winning branch outside branch() so its skips are kept
		return r.validateResolved(inst.res, s.OneOf[matched[0]], path)
	case 0:
		err := newError(RuleID("oneOf"), KindConstraintViolation, path,
			"value does not match exactly one of the allowed schemas (matched none)")
		err.Causes = causes
		return []ValidationError{err}
	default:
		return []ValidationError{newError(RuleID("oneOf"), KindConstraintViolation, path,
			"value is ambiguous: it matches branches %s but exactly one must match", indexList(matched))}
	}
}

func validateNot(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if len(r.branch(inst.res, s.Not, path)) > 0 {
		return nil
	}
	return []ValidationError{newError(RuleID("not"), KindConstraintViolation, path,
		"value must not be valid against the disallowed schema")}
}

func validateIfThenElse(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	var applied *Schema
	if len(r.branch(inst.res, s.If, path)) == 0 {
		applied = s.Then
	} else {
		applied = s.Else
	}
	if applied == nil {
		return nil
	}

	appliedErrs := r.validateResolved(inst.res, applied, path)
	if len(appliedErrs) == 0 {
		return nil
	}

	err := newError(RuleID("if"), KindConstraintViolation, path,
		"value does not satisfy the conditional schema")
	err.Causes = appliedErrs
	return []ValidationError{err}
}

func branchCause(index int, errs []ValidationError) ValidationError {
	cause := ValidationError{
		Kind:    KindConstraintViolation,
		Message: fmt.Sprintf("branch %d did not match", index),
		Causes:  errs,
	}
	if len(errs) > 0 {
		cause.Path = errs[0].Path
	}
	return cause
}

func indexList(indexes []int) string {
	var parts []string
	for _, i := range indexes {
		parts = append(parts, fmt.Sprintf("%d", i))
	}
	return strings.Join(parts, " and ")
}
