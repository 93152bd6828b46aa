// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode/utf8"

	"cfnvet.dev/cfnvet/pkg/document"
)

// keywordHandler binds one keyword to its validator. The table below is the
// explicit registry: built once at process start, never mutated, and its
// order fixes the order findings come out in.
type keywordHandler struct {
	keyword string
	applies func(*Schema) bool
	run     func(*run, *Schema, *instance, Path) []ValidationError
}

var keywordHandlers []keywordHandler

func init() {
	keywordHandlers = []keywordHandler{
		{"type", func(s *Schema) bool { return len(s.Types) > 0 }, validateType},
		{"enum", func(s *Schema) bool { return s.Enum != nil }, validateEnum},
		{"const", func(s *Schema) bool { return s.HasConst }, validateConst},
		{"multipleOf", func(s *Schema) bool { return s.MultipleOf != nil }, validateMultipleOf},
		{"maximum", func(s *Schema) bool { return s.Maximum != nil }, validateMaximum},
		{"exclusiveMaximum", func(s *Schema) bool { return s.ExclusiveMaximum != nil }, validateExclusiveMaximum},
		{"minimum", func(s *Schema) bool { return s.Minimum != nil }, validateMinimum},
		{"exclusiveMinimum", func(s *Schema) bool { return s.ExclusiveMinimum != nil }, validateExclusiveMinimum},
		{"maxLength", func(s *Schema) bool { return s.MaxLength != nil }, validateMaxLength},
		{"minLength", func(s *Schema) bool { return s.MinLength != nil }, validateMinLength},
		{"pattern", func(s *Schema) bool { return s.patternRegexp != nil }, validatePattern},
		{"format", func(s *Schema) bool { return s.Format != "" }, validateFormat},

		{"items", func(s *Schema) bool { return s.Items != nil || s.TupleItems != nil }, validateItems},
		{"maxItems", func(s *Schema) bool { return s.MaxItems != nil }, validateMaxItems},
		{"minItems", func(s *Schema) bool { return s.MinItems != nil }, validateMinItems},
		{"uniqueItems", func(s *Schema) bool { return s.UniqueItems }, validateUniqueItems},
		{"contains", func(s *Schema) bool { return s.Contains != nil }, validateContains},

		{"properties", func(s *Schema) bool { return s.Properties != nil }, validateProperties},
		{"patternProperties", func(s *Schema) bool { return len(s.patternProps) > 0 }, validatePatternProperties},
		{"additionalProperties", func(s *Schema) bool { return s.AdditionalProperties != nil }, validateAdditionalProperties},
		{"propertyNames", func(s *Schema) bool { return s.PropertyNames != nil }, validatePropertyNames},
		{"required", func(s *Schema) bool { return len(s.Required) > 0 }, validateRequired},
		{"maxProperties", func(s *Schema) bool { return s.MaxProperties != nil }, validateMaxProperties},
		{"minProperties", func(s *Schema) bool { return s.MinProperties != nil }, validateMinProperties},
		{"dependencies", func(s *Schema) bool { return len(s.Dependencies) > 0 }, validateDependencies},

		{"requiredXor", func(s *Schema) bool { return len(s.RequiredXor) > 0 }, validateRequiredXor},
		{"requiredOr", func(s *Schema) bool { return len(s.RequiredOr) > 0 }, validateRequiredOr},
		{"propertiesNand", func(s *Schema) bool { return len(s.PropertiesNand) > 0 }, validatePropertiesNand},
		{"dependentRequired", func(s *Schema) bool { return len(s.DependentRequired) > 0 }, validateDependentRequired},
		{"dependentExcluded", func(s *Schema) bool { return len(s.DependentExcluded) > 0 }, validateDependentExcluded},
		{"awsType", func(s *Schema) bool { return len(s.AwsTypes) > 0 }, validateAwsType},
		{"cfnLint", func(s *Schema) bool { return len(s.CfnLint) > 0 }, validateCfnLint},

		{"allOf", func(s *Schema) bool { return len(s.AllOf) > 0 }, validateAllOf},
		{"anyOf", func(s *Schema) bool { return len(s.AnyOf) > 0 }, validateAnyOf},
		{"oneOf", func(s *Schema) bool { return len(s.OneOf) > 0 }, validateOneOf},
		{"not", func(s *Schema) bool { return s.Not != nil }, validateNot},
		{"if", func(s *Schema) bool { return s.If != nil && (s.Then != nil || s.Else != nil) }, validateIfThenElse},
	}
}

func validateType(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if ConformsToAny(inst.val, s.Types) {
		return nil
	}
	return []ValidationError{newError(RuleID("type"), KindTypeMismatch, path,
		"expected %s, found %s", strings.Join(s.Types, " or "), typeDescription(inst.val))}
}

func validateEnum(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	val := document.NewGoFromAST(inst.val)
	for _, member := range s.Enum {
		if equalValues(val, member) {
			return nil
		}
	}
	return []ValidationError{newError(RuleID("enum"), KindConstraintViolation, path,
		"%s is not one of the allowed values", valueDescription(inst.val))}
}

func validateConst(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if equalValues(document.NewGoFromAST(inst.val), s.Const) {
		return nil
	}
	return []ValidationError{newError(RuleID("const"), KindConstraintViolation, path,
		"%s is not the required value %s", valueDescription(inst.val), valueDescription(s.Const))}
}

func validateMultipleOf(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	num, ok := toNumber(inst.val)
	if !ok {
		return nil
	}
	quotient := num / *s.MultipleOf
	if math.Abs(quotient-math.Round(quotient)) < 1e-9 {
		return nil
	}
	return []ValidationError{newError(RuleID("multipleOf"), KindConstraintViolation, path,
		"%v is not a multiple of %v", num, *s.MultipleOf)}
}

func validateMaximum(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if num, ok := toNumber(inst.val); ok && num > *s.Maximum {
		return []ValidationError{newError(RuleID("maximum"), KindConstraintViolation, path,
			"%v is greater than the maximum of %v", num, *s.Maximum)}
	}
	return nil
}

func validateExclusiveMaximum(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if num, ok := toNumber(inst.val); ok && num >= *s.ExclusiveMaximum {
		return []ValidationError{newError(RuleID("exclusiveMaximum"), KindConstraintViolation, path,
			"%v is greater than or equal to the exclusive maximum of %v", num, *s.ExclusiveMaximum)}
	}
	return nil
}

func validateMinimum(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if num, ok := toNumber(inst.val); ok && num < *s.Minimum {
		return []ValidationError{newError(RuleID("minimum"), KindConstraintViolation, path,
			"%v is less than the minimum of %v", num, *s.Minimum)}
	}
	return nil
}

func validateExclusiveMinimum(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if num, ok := toNumber(inst.val); ok && num <= *s.ExclusiveMinimum {
		return []ValidationError{newError(RuleID("exclusiveMinimum"), KindConstraintViolation, path,
			"%v is less than or equal to the exclusive minimum of %v", num, *s.ExclusiveMinimum)}
	}
	return nil
}

func validateMaxLength(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if str, ok := inst.val.(string); ok && int64(utf8.RuneCountInString(str)) > *s.MaxLength {
		return []ValidationError{newError(RuleID("maxLength"), KindConstraintViolation, path,
			"length %d is greater than the maximum of %d", utf8.RuneCountInString(str), *s.MaxLength)}
	}
	return nil
}

func validateMinLength(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if str, ok := inst.val.(string); ok && int64(utf8.RuneCountInString(str)) < *s.MinLength {
		return []ValidationError{newError(RuleID("minLength"), KindConstraintViolation, path,
			"length %d is less than the minimum of %d", utf8.RuneCountInString(str), *s.MinLength)}
	}
	return nil
}

func validatePattern(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if str, ok := inst.val.(string); ok && !s.patternRegexp.MatchString(str) {
		return []ValidationError{newError(RuleID("pattern"), KindConstraintViolation, path,
			"'%s' does not match pattern '%s'", str, s.Pattern)}
	}
	return nil
}

func validateFormat(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	str, ok := inst.val.(string)
	if !ok {
		return nil
	}
	check, known := formatChecks[s.Format]
	if !known {
		// unknown formats pass, per draft-07
		return nil
	}
	if check(str) {
		return nil
	}
	return []ValidationError{newError(RuleID("format"), KindConstraintViolation, path,
		"'%s' is not a valid '%s'", str, s.Format)}
}

func toNumber(val interface{}) (float64, bool) {
	switch typedVal := val.(type) {
	case int64:
		return float64(typedVal), true
	case float64:
		return typedVal, true
	case string:
		return parseDecimal(typedVal)
	default:
		return 0, false
	}
}

// equalValues compares plain Go values; integer and floating forms of the
// same number compare equal.
func equalValues(a, b interface{}) bool {
	return reflect.DeepEqual(normalizeNumbers(a), normalizeNumbers(b))
}

func normalizeNumbers(val interface{}) interface{} {
	switch typedVal := val.(type) {
	case int:
		return float64(typedVal)
	case int64:
		return float64(typedVal)
	case map[string]interface{}:
		result := map[string]interface{}{}
		for key, member := range typedVal {
			result[key] = normalizeNumbers(member)
		}
		return result
	case []interface{}:
		var result []interface{}
		for _, member := range typedVal {
			result = append(result, normalizeNumbers(member))
		}
		return result
	default:
		return typedVal
	}
}

func valueDescription(val interface{}) string {
	switch typedVal := val.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("'%s'", typedVal)
	case *document.Map, map[string]interface{}:
		return "an object"
	case *document.Array, []interface{}:
		return "an array"
	default:
		return fmt.Sprintf("%v", typedVal)
	}
}
