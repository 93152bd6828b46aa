// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"sort"
	"strings"
)

// The custom combinator keywords exist to keep the hundreds of resource
// schemas terse: exclusive/inclusive property groups and conditional
// presence, all judged against the filtered view.

func validateRequiredXor(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.obj == nil {
		return nil
	}

	present := inst.obj.presentOf(s.RequiredXor)
	switch len(present) {
	case 1:
		return nil
	case 0:
		return []ValidationError{newError(RuleID("requiredXor"), KindConstraintViolation, path,
			"exactly one of [%s] is required but none are present", strings.Join(s.RequiredXor, ", "))}
	default:
		return []ValidationError{newError(RuleID("requiredXor"), KindConstraintViolation, path,
			"exactly one of [%s] is required but [%s] are present",
			strings.Join(s.RequiredXor, ", "), strings.Join(present, ", "))}
	}
}

func validateRequiredOr(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.obj == nil {
		return nil
	}

	if len(inst.obj.presentOf(s.RequiredOr)) > 0 {
		return nil
	}
	return []ValidationError{newError(RuleID("requiredOr"), KindConstraintViolation, path,
		"at least one of [%s] is required", strings.Join(s.RequiredOr, ", "))}
}

func validatePropertiesNand(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.obj == nil {
		return nil
	}

	present := inst.obj.presentOf(s.PropertiesNand)
	if len(present) <= 1 {
		return nil
	}
	return []ValidationError{newError(RuleID("propertiesNand"), KindConstraintViolation, path,
		"only one of [%s] may be present but [%s] are present",
		strings.Join(s.PropertiesNand, ", "), strings.Join(present, ", "))}
}

func validateDependentRequired(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.obj == nil {
		return nil
	}

	var errs []ValidationError
	for _, key := range sortedStringListMapKeys(s.DependentRequired) {
		if !inst.obj.has(key) {
			continue
		}
		for _, name := range s.DependentRequired[key] {
			if !inst.obj.has(name) {
				errs = append(errs, newError(RuleID("dependentRequired"), KindConstraintViolation, path,
					"'%s' is required when '%s' is present", name, key))
			}
		}
	}
	return errs
}

func validateDependentExcluded(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.obj == nil {
		return nil
	}

	var errs []ValidationError
	for _, key := range sortedStringListMapKeys(s.DependentExcluded) {
		if !inst.obj.has(key) {
			continue
		}
		for _, name := range s.DependentExcluded[key] {
			if inst.obj.has(name) {
				errs = append(errs, newError(RuleID("dependentExcluded"), KindConstraintViolation, path,
					"'%s' must not be present when '%s' is present", name, key))
			}
		}
	}
	return errs
}

func validateAwsType(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	var errs []ValidationError
	for _, typeName := range s.AwsTypes {
		delegate, registered := r.opts.AwsTypes[typeName]
		if !registered {
			r.recordSkip(path, "no validator registered for awsType '"+typeName+"'")
			continue
		}
		delegateErrs := delegate(inst.val, path)
		if len(delegateErrs) == 0 {
			continue
		}
		// surfaced under this keyword's rule ID alongside the delegate's own
		err := newError(RuleID("awsType"), KindConstraintViolation, path,
			"value is not a valid %s", typeName)
		err.Causes = delegateErrs
		errs = append(errs, err)
	}
	return errs
}

func validateCfnLint(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	var errs []ValidationError
	for _, name := range s.CfnLint {
		if r.opts.AuxSchemas == nil {
			errs = append(errs, newError(RuleSchemaStructure, KindSchemaStructure, path,
				"cfnLint names schema '%s' but no auxiliary schemas are available", name))
			continue
		}
		auxDoc, found := r.opts.AuxSchemas.LookupAuxSchema(name)
		if !found {
			errs = append(errs, newError(RuleSchemaStructure, KindSchemaStructure, path,
				"cfnLint names unknown schema '%s'", name))
			continue
		}

		// evaluate against the auxiliary document with its own $ref space;
		// findings carry a rule ID suppressible independently of this
		// resource's own rules
		auxRun := &run{
			ctx:       r.ctx,
			doc:       auxDoc,
			resolver:  r.resolver,
			opts:      r.opts,
			maxDepth:  r.maxDepth,
			depth:     r.depth,
			memo:      map[memoKey][]ValidationError{},
			active:    map[memoKey]struct{}{},
			shapeSeen: map[string]struct{}{},
			skipSeen:  map[string]struct{}{},
		}
		auxErrs := auxRun.validateResolved(inst.res, auxDoc.Root, path)
		r.skips = append(r.skips, auxRun.skips...)
		if len(auxErrs) == 0 {
			continue
		}
		err := newError(RuleID("cfnLint"), KindConstraintViolation, path,
			"value does not satisfy '%s'", name)
		err.Causes = auxErrs
		errs = append(errs, err)
	}
	return errs
}

func sortedStringListMapKeys(m map[string][]string) []string {
	var keys []string
	for key := range m {
		keys = append(keys, key)
	}
	// deterministic output regardless of map iteration order
	sort.Strings(keys)
	return keys
}
