// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema

// Rule IDs are part of the public contract: callers suppress findings by
// filtering on them, so an ID, once assigned to a keyword, must never change.

const (
	// RuleStructural covers cyclic $ref beyond the descent bound and
	// malformed document shapes.
	RuleStructural = "E1001"
	// RuleSchemaStructure means the schema document itself is malformed.
	RuleSchemaStructure = "E1002"
	// RuleIntrinsicShape is a malformed intrinsic function call.
	RuleIntrinsicShape = "E1101"
	// RuleFalseSchema is a value reaching a schema that allows nothing.
	RuleFalseSchema = "E3000"
	// RuleUnresolvedSkip tags skip records, not errors.
	RuleUnresolvedSkip = "W1001"
)

var keywordRules = map[string]string{
	"type":                 "E3001",
	"enum":                 "E3002",
	"const":                "E3003",
	"multipleOf":           "E3004",
	"maximum":              "E3005",
	"exclusiveMaximum":     "E3006",
	"minimum":              "E3007",
	"exclusiveMinimum":     "E3008",
	"maxLength":            "E3009",
	"minLength":            "E3010",
	"pattern":              "E3011",
	"items":                "E3012",
	"additionalItems":      "E3013",
	"maxItems":             "E3014",
	"minItems":             "E3015",
	"uniqueItems":          "E3016",
	"contains":             "E3017",
	"maxProperties":        "E3018",
	"minProperties":        "E3019",
	"required":             "E3020",
	"properties":           "E3021",
	"patternProperties":    "E3022",
	"additionalProperties": "E3023",
	"dependencies":         "E3024",
	"propertyNames":        "E3025",
	"if":                   "E3026",
	"allOf":                "E3027",
	"anyOf":                "E3028",
	"oneOf":                "E3029",
	"not":                  "E3030",
	"$ref":                 "E3031",
	"format":               "E3032",

	"requiredXor":       "E3601",
	"requiredOr":        "E3602",
	"propertiesNand":    "E3603",
	"dependentRequired": "E3604",
	"dependentExcluded": "E3605",
	"awsType":           "E3610",
	"cfnLint":           "E3611",
}

// RuleID returns the stable rule ID assigned to a keyword. Unknown keywords
// return the empty string.
func RuleID(keyword string) string {
	return keywordRules[keyword]
}

// Rules returns a copy of the keyword-to-rule-ID table so callers can build
// suppression UIs without being able to mutate the contract.
func Rules() map[string]string {
	result := map[string]string{}
	for keyword, id := range keywordRules {
		result[keyword] = id
	}
	return result
}
