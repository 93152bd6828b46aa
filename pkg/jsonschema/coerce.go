// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"regexp"
	"strconv"

	"cfnvet.dev/cfnvet/pkg/document"
)

// CloudFormation treats several literal forms as interchangeable: "10" where
// an integer is declared, 10 where a string is declared, "true" for a
// boolean. ConformsTo implements that table; it decides pass/fail only and
// never changes the underlying value.

var (
	integerStringRegexp = regexp.MustCompile(`^[-+]?\d+$`)
	numberStringRegexp  = regexp.MustCompile(`^[-+]?(\d+(\.\d*)?|\.\d+)([eE][-+]?\d+)?$`)
)

// ConformsTo reports whether a literal value satisfies one declared type
// under the coercion rules.
func ConformsTo(val interface{}, typeName string) bool {
	switch typeName {
	case "object":
		_, ok := val.(*document.Map)
		return ok
	case "array":
		_, ok := val.(*document.Array)
		return ok
	case "null":
		return val == nil
	case "boolean":
		return conformsToBoolean(val)
	case "integer":
		return conformsToInteger(val)
	case "number":
		return conformsToNumber(val)
	case "string":
		return conformsToString(val)
	default:
		return false
	}
}

// ConformsToAny reports whether a value satisfies any member of a declared
// type set.
func ConformsToAny(val interface{}, typeNames []string) bool {
	for _, typeName := range typeNames {
		if ConformsTo(val, typeName) {
			return true
		}
	}
	return false
}

func conformsToBoolean(val interface{}) bool {
	switch typedVal := val.(type) {
	case bool:
		return true
	case string:
		// only the canonical spellings
		return typedVal == "true" || typedVal == "false"
	default:
		return false
	}
}

func conformsToInteger(val interface{}) bool {
	switch typedVal := val.(type) {
	case int64:
		return true
	case float64:
		return typedVal == float64(int64(typedVal))
	case string:
		return integerStringRegexp.MatchString(typedVal)
	default:
		return false
	}
}

func conformsToNumber(val interface{}) bool {
	switch typedVal := val.(type) {
	case int64, float64:
		return true
	case string:
		_, ok := parseDecimal(typedVal)
		return ok
	default:
		return false
	}
}

// parseDecimal parses decimal number forms only; ParseFloat on its own also
// takes "Inf", "NaN" and hex floats.
func parseDecimal(str string) (float64, bool) {
	if !numberStringRegexp.MatchString(str) {
		return 0, false
	}
	parsed, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

func conformsToString(val interface{}) bool {
	switch val.(type) {
	case string:
		return true
	case int64, float64, bool:
		// CloudFormation routinely supplies numeric/boolean literals where a
		// string is declared
		return true
	default:
		return false
	}
}

// TypeDescription names a value's native kind for error messages.
func typeDescription(val interface{}) string {
	switch val.(type) {
	case nil:
		return "null"
	case *document.Map, map[string]interface{}:
		return "object"
	case *document.Array, []interface{}:
		return "array"
	case string:
		return "string"
	case int64, int:
		return "integer"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return "unknown"
	}
}
