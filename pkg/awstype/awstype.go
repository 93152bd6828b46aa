// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

// Package awstype holds the named semantic validators the awsType schema
// keyword dispatches to. The engine only defines the dispatch contract; this
// is a starter catalog, and callers may merge in their own delegates (see
// pkg/starlarkrule for script-defined ones).
package awstype

import (
	"encoding/json"
	"fmt"
	"net"
	"regexp"

	"cfnvet.dev/cfnvet/pkg/document"
	"cfnvet.dev/cfnvet/pkg/jsonschema"
)

var (
	arnRegexp              = regexp.MustCompile(`^arn:aws[a-zA-Z-]*:[a-zA-Z0-9-]+:[a-z0-9-]*:\d{0,12}:.+$`)
	availabilityZoneRegexp = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d[a-z]$`)
)

// Catalog returns the built-in delegates keyed by the names used in resource
// schemas. The returned map is a fresh copy each call.
func Catalog() map[string]jsonschema.Delegate {
	return map[string]jsonschema.Delegate{
		"Arn":              validateArn,
		"AvailabilityZone": validateAvailabilityZone,
		"CidrBlock":        validateCidrBlock,
		"IamPolicy":        validateIamPolicy,
	}
}

func validateArn(val interface{}, path jsonschema.Path) []jsonschema.ValidationError {
	str, ok := val.(string)
	if !ok {
		// non-strings are the type keyword's problem
		return nil
	}
	if arnRegexp.MatchString(str) {
		return nil
	}
	return []jsonschema.ValidationError{{
		RuleID:  jsonschema.RuleID("awsType"),
		Kind:    jsonschema.KindConstraintViolation,
		Path:    path,
		Message: fmt.Sprintf("'%s' is not a valid ARN", str),
	}}
}

func validateAvailabilityZone(val interface{}, path jsonschema.Path) []jsonschema.ValidationError {
	str, ok := val.(string)
	if !ok {
		return nil
	}
	if availabilityZoneRegexp.MatchString(str) {
		return nil
	}
	return []jsonschema.ValidationError{{
		RuleID:  jsonschema.RuleID("awsType"),
		Kind:    jsonschema.KindConstraintViolation,
		Path:    path,
		Message: fmt.Sprintf("'%s' is not a valid availability zone name", str),
	}}
}

func validateCidrBlock(val interface{}, path jsonschema.Path) []jsonschema.ValidationError {
	str, ok := val.(string)
	if !ok {
		return nil
	}
	if _, _, err := net.ParseCIDR(str); err == nil {
		return nil
	}
	return []jsonschema.ValidationError{{
		RuleID:  jsonschema.RuleID("awsType"),
		Kind:    jsonschema.KindConstraintViolation,
		Path:    path,
		Message: fmt.Sprintf("'%s' is not a valid CIDR block", str),
	}}
}

// validateIamPolicy accepts a policy given either inline as a mapping or as a
// JSON-encoded string, the two forms CloudFormation accepts for policy
// document properties.
func validateIamPolicy(val interface{}, path jsonschema.Path) []jsonschema.ValidationError {
	fail := func(msg string) []jsonschema.ValidationError {
		return []jsonschema.ValidationError{{
			RuleID:  jsonschema.RuleID("awsType"),
			Kind:    jsonschema.KindConstraintViolation,
			Path:    path,
			Message: msg,
		}}
	}

	switch v := val.(type) {
	case string:
		var parsed map[string]interface{}
		if err := json.Unmarshal([]byte(v), &parsed); err != nil {
			return fail("policy string is not a JSON object: " + err.Error())
		}
		if _, found := parsed["Statement"]; !found {
			return fail("policy document has no Statement")
		}
	case *document.Map:
		if !v.Has("Statement") {
			return fail("policy document has no Statement")
		}
	}
	return nil
}
