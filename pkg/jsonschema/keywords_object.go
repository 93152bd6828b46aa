// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"sort"

	"cfnvet.dev/cfnvet/pkg/cfnfn"
)

// Group-level object keywords consume the filtered view (NoValue properties
// are absent). Per-property recursion uses the unfiltered resolved children:
// a NoValue property's intrinsic call shape has already been checked during
// resolution, and its declared leaf schema is deliberately not applied.

func validateProperties(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.obj == nil {
		return nil
	}

	var errs []ValidationError
	for _, prop := range inst.obj.all {
		sub, declared := s.Properties[prop.key]
		if !declared {
			continue
		}
		if prop.res.IsNoValue() || len(prop.res.ShapeErrors) > 0 {
			continue
		}
		errs = append(errs, r.validateResolved(prop.res, sub, path.Child(prop.key))...)
	}
	return errs
}

func validatePatternProperties(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.obj == nil {
		return nil
	}

	var errs []ValidationError
	for _, prop := range inst.obj.all {
		if prop.res.IsNoValue() || len(prop.res.ShapeErrors) > 0 {
			continue
		}
		for _, patternProp := range s.patternProps {
			if patternProp.regexp.MatchString(prop.key) {
				errs = append(errs, r.validateResolved(prop.res, patternProp.schema, path.Child(prop.key))...)
			}
		}
	}
	return errs
}

func validateAdditionalProperties(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.obj == nil {
		return nil
	}

	var errs []ValidationError
	for _, prop := range inst.obj.filtered {
		if _, declared := s.Properties[prop.key]; declared {
			continue
		}
		if matchesAnyPattern(s, prop.key) {
			continue
		}
		if s.AdditionalProperties.Always != nil && !*s.AdditionalProperties.Always {
			errs = append(errs, newError(RuleID("additionalProperties"), KindConstraintViolation, path.Child(prop.key),
				"additional property '%s' is not allowed", prop.key))
			continue
		}
		if len(prop.res.ShapeErrors) > 0 {
			continue
		}
		errs = append(errs, r.validateResolved(prop.res, s.AdditionalProperties, path.Child(prop.key))...)
	}
	return errs
}

func matchesAnyPattern(s *Schema, key string) bool {
	for _, patternProp := range s.patternProps {
		if patternProp.regexp.MatchString(key) {
			return true
		}
	}
	return false
}

func validatePropertyNames(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.obj == nil {
		return nil
	}

	var errs []ValidationError
	for _, prop := range inst.obj.filtered {
		nameRes := cfnfn.Resolution{State: cfnfn.Literal, Value: prop.key}
		errs = append(errs, r.validateResolved(nameRes, s.PropertyNames, path.Child(prop.key))...)
	}
	return errs
}

func validateRequired(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.obj == nil {
		return nil
	}

	var errs []ValidationError
	for _, name := range s.Required {
		if !inst.obj.has(name) {
			errs = append(errs, newError(RuleID("required"), KindConstraintViolation, path,
				"'%s' is a required property", name))
		}
	}
	return errs
}

func validateMaxProperties(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.obj != nil && int64(len(inst.obj.filtered)) > *s.MaxProperties {
		return []ValidationError{newError(RuleID("maxProperties"), KindConstraintViolation, path,
			"%d properties is greater than the maximum of %d", len(inst.obj.filtered), *s.MaxProperties)}
	}
	return nil
}

func validateMinProperties(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.obj != nil && int64(len(inst.obj.filtered)) < *s.MinProperties {
		return []ValidationError{newError(RuleID("minProperties"), KindConstraintViolation, path,
			"%d properties is less than the minimum of %d", len(inst.obj.filtered), *s.MinProperties)}
	}
	return nil
}

func validateDependencies(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.obj == nil {
		return nil
	}

	var keys []string
	for key := range s.Dependencies {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var errs []ValidationError
	for _, key := range keys {
		if !inst.obj.has(key) {
			continue
		}
		dep := s.Dependencies[key]
		for _, name := range dep.Required {
			if !inst.obj.has(name) {
				errs = append(errs, newError(RuleID("dependencies"), KindConstraintViolation, path,
					"'%s' is required when '%s' is present", name, key))
			}
		}
		if dep.Schema != nil {
			errs = append(errs, r.validateResolved(inst.res, dep.Schema, path)...)
		}
	}
	return errs
}
