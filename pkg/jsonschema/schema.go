// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"fmt"
	"regexp"
	"sort"

	"cfnvet.dev/cfnvet/pkg/document"
)

// Schema is one node of a parsed schema document: draft-07 keywords plus the
// CloudFormation-specific custom keywords. Schemas are built once and treated
// as immutable afterwards; $ref targets are addressed through the owning
// SchemaDocument's flat index rather than by pointer, which keeps cyclic
// schema graphs ownership-free.
type Schema struct {
	Ref    string
	Always *bool // a `true`/`false` schema

	Types    []string
	Enum     []interface{}
	Const    interface{}
	HasConst bool

	MultipleOf       *float64
	Maximum          *float64
	ExclusiveMaximum *float64
	Minimum          *float64
	ExclusiveMinimum *float64

	MaxLength *int64
	MinLength *int64
	Pattern   string
	Format    string

	Items           *Schema
	TupleItems      []*Schema
	AdditionalItems *Schema
	MaxItems        *int64
	MinItems        *int64
	UniqueItems     bool
	Contains        *Schema

	MaxProperties        *int64
	MinProperties        *int64
	Required             []string
	Properties           map[string]*Schema
	PatternProperties    map[string]*Schema
	AdditionalProperties *Schema
	Dependencies         map[string]*Dependency
	PropertyNames        *Schema

	If   *Schema
	Then *Schema
	Else *Schema

	AllOf []*Schema
	AnyOf []*Schema
	OneOf []*Schema
	Not   *Schema

	RequiredXor       []string
	RequiredOr        []string
	PropertiesNand    []string
	DependentRequired map[string][]string
	DependentExcluded map[string][]string
	AwsTypes          []string
	CfnLint           []string

	Definitions map[string]*Schema

	pointer       string
	structureErrs []string
	patternRegexp *regexp.Regexp
	patternProps  []patternProperty
}

// Dependency is one entry of the `dependencies` keyword: either a list of
// property names or a full schema.
type Dependency struct {
	Required []string
	Schema   *Schema
}

type patternProperty struct {
	pattern string
	regexp  *regexp.Regexp
	schema  *Schema
}

// Pointer is the node's stable address within its document, eg
// "#/definitions/Tag/properties/Key".
func (s *Schema) Pointer() string { return s.pointer }

// SchemaDocument owns a parsed schema graph: the root node plus a flat table
// of every subschema addressed by JSON pointer, which is how $ref targets are
// resolved.
type SchemaDocument struct {
	Root *Schema

	name  string
	index map[string]*Schema
}

// NewSchemaDocument parses a schema from a plain Go value or a
// document-package tree. Malformed keyword payloads do not fail the parse;
// they are recorded on the offending node and reported as
// SchemaStructureErrors when validation reaches it.
func NewSchemaDocument(val interface{}, name string) *SchemaDocument {
	doc := &SchemaDocument{name: name, index: map[string]*Schema{}}
	doc.Root = doc.parse(document.NewGoFromAST(val), "#")
	return doc
}

// NewSchemaDocumentFromBytes parses schema JSON (or YAML) bytes.
func NewSchemaDocumentFromBytes(data []byte, name string) (*SchemaDocument, error) {
	parsed, err := document.NewParser().ParseBytes(data, name)
	if err != nil {
		return nil, err
	}
	return NewSchemaDocument(parsed, name), nil
}

func (d *SchemaDocument) Name() string { return d.name }

// Lookup resolves a "#/..." pointer against the flat index.
func (d *SchemaDocument) Lookup(pointer string) (*Schema, bool) {
	s, found := d.index[pointer]
	return s, found
}

func (d *SchemaDocument) parse(val interface{}, pointer string) *Schema {
	s := &Schema{pointer: pointer}
	d.index[pointer] = s

	switch typedVal := val.(type) {
	case bool:
		s.Always = &typedVal
		return s
	case map[string]interface{}:
		d.parseKeywords(s, typedVal, pointer)
		return s
	default:
		s.structureErrs = append(s.structureErrs,
			fmt.Sprintf("expected a schema object or boolean, found %s", typeDescription(val)))
		return s
	}
}

func (d *SchemaDocument) parseKeywords(s *Schema, raw map[string]interface{}, pointer string) {
	bad := func(keyword, format string, args ...interface{}) {
		s.structureErrs = append(s.structureErrs,
			fmt.Sprintf("'%s' %s", keyword, fmt.Sprintf(format, args...)))
	}

	if rawRef, found := raw["$ref"]; found {
		if str, ok := rawRef.(string); ok {
			s.Ref = str
		} else {
			bad("$ref", "must be a string")
		}
	}

	if rawType, found := raw["type"]; found {
		switch typedType := rawType.(type) {
		case string:
			s.Types = []string{typedType}
		case []interface{}:
			for _, member := range typedType {
				str, ok := member.(string)
				if !ok {
					bad("type", "members must be strings")
					continue
				}
				s.Types = append(s.Types, str)
			}
		default:
			bad("type", "must be a string or a list of strings")
		}
		for _, typeName := range s.Types {
			if !isKnownType(typeName) {
				bad("type", "names unknown type '%s'", typeName)
			}
		}
	}

	if rawEnum, found := raw["enum"]; found {
		if list, ok := rawEnum.([]interface{}); ok {
			s.Enum = list
		} else {
			bad("enum", "must be a list")
		}
	}

	if rawConst, found := raw["const"]; found {
		s.Const = rawConst
		s.HasConst = true
	}

	s.MultipleOf = d.parseNumber(raw, "multipleOf", bad)
	s.Maximum = d.parseNumber(raw, "maximum", bad)
	s.ExclusiveMaximum = d.parseNumber(raw, "exclusiveMaximum", bad)
	s.Minimum = d.parseNumber(raw, "minimum", bad)
	s.ExclusiveMinimum = d.parseNumber(raw, "exclusiveMinimum", bad)
	if s.MultipleOf != nil && *s.MultipleOf <= 0 {
		bad("multipleOf", "must be greater than zero")
		s.MultipleOf = nil
	}

	s.MaxLength = d.parseInteger(raw, "maxLength", bad)
	s.MinLength = d.parseInteger(raw, "minLength", bad)

	if rawPattern, found := raw["pattern"]; found {
		if str, ok := rawPattern.(string); ok {
			compiled, err := regexp.Compile(str)
			if err != nil {
				bad("pattern", "is not a valid regular expression: %s", err)
			} else {
				s.Pattern = str
				s.patternRegexp = compiled
			}
		} else {
			bad("pattern", "must be a string")
		}
	}

	if rawFormat, found := raw["format"]; found {
		if str, ok := rawFormat.(string); ok {
			s.Format = str
		} else {
			bad("format", "must be a string")
		}
	}

	if rawItems, found := raw["items"]; found {
		if list, ok := rawItems.([]interface{}); ok {
			for i, member := range list {
				s.TupleItems = append(s.TupleItems,
					d.parse(member, fmt.Sprintf("%s/items/%d", pointer, i)))
			}
		} else {
			s.Items = d.parse(rawItems, pointer+"/items")
		}
	}
	if rawAdditional, found := raw["additionalItems"]; found {
		s.AdditionalItems = d.parse(rawAdditional, pointer+"/additionalItems")
	}
	s.MaxItems = d.parseInteger(raw, "maxItems", bad)
	s.MinItems = d.parseInteger(raw, "minItems", bad)
	if rawUnique, found := raw["uniqueItems"]; found {
		if b, ok := rawUnique.(bool); ok {
			s.UniqueItems = b
		} else {
			bad("uniqueItems", "must be a boolean")
		}
	}
	if rawContains, found := raw["contains"]; found {
		s.Contains = d.parse(rawContains, pointer+"/contains")
	}

	s.MaxProperties = d.parseInteger(raw, "maxProperties", bad)
	s.MinProperties = d.parseInteger(raw, "minProperties", bad)
	s.Required = d.parseStringList(raw, "required", bad)

	if rawProps, found := raw["properties"]; found {
		if m, ok := rawProps.(map[string]interface{}); ok {
			s.Properties = map[string]*Schema{}
			for _, key := range sortedMapKeys(m) {
				s.Properties[key] = d.parse(m[key], pointer+"/properties/"+escapePointerSegment(key))
			}
		} else {
			bad("properties", "must be an object")
		}
	}

	if rawPatternProps, found := raw["patternProperties"]; found {
		if m, ok := rawPatternProps.(map[string]interface{}); ok {
			s.PatternProperties = map[string]*Schema{}
			for _, pattern := range sortedMapKeys(m) {
				sub := d.parse(m[pattern], pointer+"/patternProperties/"+escapePointerSegment(pattern))
				s.PatternProperties[pattern] = sub
				compiled, err := regexp.Compile(pattern)
				if err != nil {
					bad("patternProperties", "pattern '%s' is not a valid regular expression: %s", pattern, err)
					continue
				}
				s.patternProps = append(s.patternProps, patternProperty{pattern: pattern, regexp: compiled, schema: sub})
			}
		} else {
			bad("patternProperties", "must be an object")
		}
	}

	if rawAdditional, found := raw["additionalProperties"]; found {
		s.AdditionalProperties = d.parse(rawAdditional, pointer+"/additionalProperties")
	}

	if rawDeps, found := raw["dependencies"]; found {
		if m, ok := rawDeps.(map[string]interface{}); ok {
			s.Dependencies = map[string]*Dependency{}
			for _, key := range sortedMapKeys(m) {
				switch typedDep := m[key].(type) {
				case []interface{}:
					dep := &Dependency{}
					for _, member := range typedDep {
						str, ok := member.(string)
						if !ok {
							bad("dependencies", "entry '%s' must list property names", key)
							continue
						}
						dep.Required = append(dep.Required, str)
					}
					s.Dependencies[key] = dep
				default:
					s.Dependencies[key] = &Dependency{
						Schema: d.parse(m[key], pointer+"/dependencies/"+escapePointerSegment(key)),
					}
				}
			}
		} else {
			bad("dependencies", "must be an object")
		}
	}

	if rawNames, found := raw["propertyNames"]; found {
		s.PropertyNames = d.parse(rawNames, pointer+"/propertyNames")
	}

	if rawIf, found := raw["if"]; found {
		s.If = d.parse(rawIf, pointer+"/if")
	}
	if rawThen, found := raw["then"]; found {
		s.Then = d.parse(rawThen, pointer+"/then")
	}
	if rawElse, found := raw["else"]; found {
		s.Else = d.parse(rawElse, pointer+"/else")
	}

	s.AllOf = d.parseSchemaList(raw, "allOf", pointer, bad)
	s.AnyOf = d.parseSchemaList(raw, "anyOf", pointer, bad)
	s.OneOf = d.parseSchemaList(raw, "oneOf", pointer, bad)
	if rawNot, found := raw["not"]; found {
		s.Not = d.parse(rawNot, pointer+"/not")
	}

	s.RequiredXor = d.parseStringList(raw, "requiredXor", bad)
	s.RequiredOr = d.parseStringList(raw, "requiredOr", bad)
	s.PropertiesNand = d.parseStringList(raw, "propertiesNand", bad)
	s.DependentRequired = d.parseStringListMap(raw, "dependentRequired", bad)
	s.DependentExcluded = d.parseStringListMap(raw, "dependentExcluded", bad)
	s.AwsTypes = d.parseStringOrList(raw, "awsType", bad)
	s.CfnLint = d.parseStringOrList(raw, "cfnLint", bad)

	if rawDefs, found := raw["definitions"]; found {
		if m, ok := rawDefs.(map[string]interface{}); ok {
			s.Definitions = map[string]*Schema{}
			for _, key := range sortedMapKeys(m) {
				s.Definitions[key] = d.parse(m[key], pointer+"/definitions/"+escapePointerSegment(key))
			}
		} else {
			bad("definitions", "must be an object")
		}
	}
}

func (d *SchemaDocument) parseNumber(raw map[string]interface{}, keyword string, bad func(string, string, ...interface{})) *float64 {
	rawVal, found := raw[keyword]
	if !found {
		return nil
	}
	switch typedVal := rawVal.(type) {
	case int64:
		f := float64(typedVal)
		return &f
	case float64:
		f := typedVal
		return &f
	default:
		bad(keyword, "must be a number")
		return nil
	}
}

func (d *SchemaDocument) parseInteger(raw map[string]interface{}, keyword string, bad func(string, string, ...interface{})) *int64 {
	rawVal, found := raw[keyword]
	if !found {
		return nil
	}
	i, ok := rawVal.(int64)
	if !ok || i < 0 {
		bad(keyword, "must be a non-negative integer")
		return nil
	}
	return &i
}

func (d *SchemaDocument) parseStringList(raw map[string]interface{}, keyword string, bad func(string, string, ...interface{})) []string {
	rawVal, found := raw[keyword]
	if !found {
		return nil
	}
	list, ok := rawVal.([]interface{})
	if !ok {
		bad(keyword, "must be a list of property names")
		return nil
	}
	var result []string
	for _, member := range list {
		str, ok := member.(string)
		if !ok {
			bad(keyword, "must be a list of property names")
			return nil
		}
		result = append(result, str)
	}
	return result
}

func (d *SchemaDocument) parseStringOrList(raw map[string]interface{}, keyword string, bad func(string, string, ...interface{})) []string {
	rawVal, found := raw[keyword]
	if !found {
		return nil
	}
	switch typedVal := rawVal.(type) {
	case string:
		return []string{typedVal}
	case []interface{}:
		var result []string
		for _, member := range typedVal {
			str, ok := member.(string)
			if !ok {
				bad(keyword, "must be a name or a list of names")
				return nil
			}
			result = append(result, str)
		}
		return result
	default:
		bad(keyword, "must be a name or a list of names")
		return nil
	}
}

func (d *SchemaDocument) parseStringListMap(raw map[string]interface{}, keyword string, bad func(string, string, ...interface{})) map[string][]string {
	rawVal, found := raw[keyword]
	if !found {
		return nil
	}
	m, ok := rawVal.(map[string]interface{})
	if !ok {
		bad(keyword, "must map property names to lists of property names")
		return nil
	}
	result := map[string][]string{}
	for _, key := range sortedMapKeys(m) {
		list, ok := m[key].([]interface{})
		if !ok {
			bad(keyword, "entry '%s' must be a list of property names", key)
			return nil
		}
		for _, member := range list {
			str, ok := member.(string)
			if !ok {
				bad(keyword, "entry '%s' must be a list of property names", key)
				return nil
			}
			result[key] = append(result[key], str)
		}
	}
	return result
}

func (d *SchemaDocument) parseSchemaList(raw map[string]interface{}, keyword, pointer string, bad func(string, string, ...interface{})) []*Schema {
	rawVal, found := raw[keyword]
	if !found {
		return nil
	}
	list, ok := rawVal.([]interface{})
	if !ok || len(list) == 0 {
		bad(keyword, "must be a non-empty list of schemas")
		return nil
	}
	var result []*Schema
	for i, member := range list {
		result = append(result, d.parse(member, fmt.Sprintf("%s/%s/%d", pointer, keyword, i)))
	}
	return result
}

func isKnownType(name string) bool {
	switch name {
	case "string", "integer", "number", "boolean", "object", "array", "null":
		return true
	}
	return false
}

func sortedMapKeys(m map[string]interface{}) []string {
	var keys []string
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
