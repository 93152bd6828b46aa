// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"fmt"

	"cfnvet.dev/cfnvet/pkg/document"
	"cfnvet.dev/cfnvet/pkg/filepos"
	"cfnvet.dev/cfnvet/pkg/jsonschema"
)

// SupportedFormatVersion is the only template format version CloudFormation
// has ever published.
const SupportedFormatVersion = "2010-09-09"

// Resource is one entry of the Resources section.
type Resource struct {
	LogicalID  string
	Type       string
	Properties *document.Map
	Condition  string
	Position   *filepos.Position
}

// Template is the structural model of one parsed template document.
type Template struct {
	FormatVersion string
	Description   string
	Parameters    map[string]*document.Map
	Mappings      *document.Map
	Conditions    *document.Map
	Resources     []*Resource
	Outputs       *document.Map
}

// NewTemplate builds the template model from a parsed document. Findings
// cover section-level malformations; a malformed section is dropped from the
// model but does not stop the others from loading.
func NewTemplate(doc *document.Document) (*Template, []jsonschema.ValidationError) {
	t := &Template{Parameters: map[string]*document.Map{}}
	var errs []jsonschema.ValidationError

	root, ok := doc.Value.(*document.Map)
	if !ok {
		errs = append(errs, structuralErr(nil, "template root must be a mapping"))
		return t, errs
	}

	if val, found := root.Get("AWSTemplateFormatVersion"); found {
		if str, ok := val.(string); ok {
			t.FormatVersion = str
		} else {
			errs = append(errs, structuralErr(jsonschema.Path{}.Child("AWSTemplateFormatVersion"),
				"AWSTemplateFormatVersion must be a string"))
		}
	}
	if val, found := root.Get("Description"); found {
		if str, ok := val.(string); ok {
			t.Description = str
		}
	}

	if val, found := root.Get("Parameters"); found {
		paramsMap, ok := val.(*document.Map)
		if !ok {
			errs = append(errs, structuralErr(jsonschema.Path{}.Child("Parameters"),
				"Parameters must be a mapping"))
		} else {
			for _, item := range paramsMap.Items {
				paramMap, ok := item.Value.(*document.Map)
				if !ok {
					errs = append(errs, structuralErr(jsonschema.Path{}.Child("Parameters").Child(item.Key),
						"parameter '%s' must be a mapping", item.Key))
					continue
				}
				t.Parameters[item.Key] = paramMap
			}
		}
	}

	if val, found := root.Get("Mappings"); found {
		if mapVal, ok := val.(*document.Map); ok {
			t.Mappings = mapVal
		} else {
			errs = append(errs, structuralErr(jsonschema.Path{}.Child("Mappings"),
				"Mappings must be a mapping"))
		}
	}
	if val, found := root.Get("Conditions"); found {
		if mapVal, ok := val.(*document.Map); ok {
			t.Conditions = mapVal
		} else {
			errs = append(errs, structuralErr(jsonschema.Path{}.Child("Conditions"),
				"Conditions must be a mapping"))
		}
	}
	if val, found := root.Get("Outputs"); found {
		if mapVal, ok := val.(*document.Map); ok {
			t.Outputs = mapVal
		}
	}

	resourcesVal, found := root.Get("Resources")
	if !found {
		errs = append(errs, structuralErr(jsonschema.Path{},
			"template has no Resources section"))
		return t, errs
	}
	resourcesMap, ok := resourcesVal.(*document.Map)
	if !ok {
		errs = append(errs, structuralErr(jsonschema.Path{}.Child("Resources"),
			"Resources must be a mapping"))
		return t, errs
	}

	for _, item := range resourcesMap.Items {
		resource, resourceErrs := newResource(item)
		errs = append(errs, resourceErrs...)
		if resource != nil {
			t.Resources = append(t.Resources, resource)
		}
	}
	return t, errs
}

func newResource(item *document.MapItem) (*Resource, []jsonschema.ValidationError) {
	basePath := jsonschema.Path{}.Child("Resources").Child(item.Key)

	body, ok := item.Value.(*document.Map)
	if !ok {
		return nil, []jsonschema.ValidationError{structuralErr(basePath,
			"resource '%s' must be a mapping", item.Key)}
	}

	resource := &Resource{LogicalID: item.Key, Position: item.Position}
	var errs []jsonschema.ValidationError

	typeVal, found := body.Get("Type")
	if !found {
		return nil, []jsonschema.ValidationError{structuralErr(basePath,
			"resource '%s' has no Type", item.Key)}
	}
	typeStr, ok := typeVal.(string)
	if !ok {
		return nil, []jsonschema.ValidationError{structuralErr(basePath.Child("Type"),
			"resource '%s' Type must be a string", item.Key)}
	}
	resource.Type = typeStr

	if val, found := body.Get("Properties"); found {
		propsMap, ok := val.(*document.Map)
		if !ok {
			errs = append(errs, structuralErr(basePath.Child("Properties"),
				"resource '%s' Properties must be a mapping", item.Key))
		} else {
			resource.Properties = propsMap
		}
	}
	if val, found := body.Get("Condition"); found {
		if str, ok := val.(string); ok {
			resource.Condition = str
		}
	}
	return resource, errs
}

func structuralErr(path jsonschema.Path, format string, args ...interface{}) jsonschema.ValidationError {
	return jsonschema.ValidationError{
		RuleID:  jsonschema.RuleStructural,
		Kind:    jsonschema.KindStructural,
		Path:    path,
		Message: fmt.Sprintf(format, args...),
	}
}
