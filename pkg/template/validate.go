// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"context"
	"strings"

	semver "github.com/hashicorp/go-version"

	"cfnvet.dev/cfnvet/pkg/document"
	"cfnvet.dev/cfnvet/pkg/jsonschema"
	"cfnvet.dev/cfnvet/pkg/schemaset"
)

// Validator checks whole templates: one schema run per resource, against the
// schema registered for that resource's type.
type Validator struct {
	Registry *schemaset.Registry
	Opts     jsonschema.Options
	Region   string
}

// Finding is one template-level diagnostic: a validation error annotated with
// the resource it came from.
type Finding struct {
	LogicalID string
	Err       jsonschema.ValidationError
}

// Report is the outcome of validating one template.
type Report struct {
	Findings []Finding
	Skipped  []jsonschema.Skip
}

func (r Report) Valid() bool { return len(r.Findings) == 0 }

// Validate parses the template model out of doc and checks every resource.
func (v *Validator) Validate(ctx context.Context, doc *document.Document) Report {
	t, parseErrs := NewTemplate(doc)

	var report Report
	for _, err := range parseErrs {
		report.Findings = append(report.Findings, Finding{Err: err})
	}
	report.Findings = append(report.Findings, checkFormatVersion(t)...)

	resCtx := BuildResolutionContext(t, v.Region)
	for _, resource := range t.Resources {
		// a resource gated by a statically-false condition is never created
		if resource.Condition != "" {
			if outcome, known := resCtx.Conditions[resource.Condition]; known && !outcome {
				continue
			}
		}

		schemaDoc, found := v.Registry.Lookup(resource.Type)
		if !found {
			reason := "no schema registered for resource type '" + resource.Type + "'"
			if !strings.HasPrefix(resource.Type, "AWS::") {
				reason = "resource type '" + resource.Type + "' is not validated"
			}
			report.Skipped = append(report.Skipped, jsonschema.Skip{
				Path:   jsonschema.Path{}.Child("Resources").Child(resource.LogicalID),
				Reason: reason,
			})
			continue
		}

		var props interface{}
		if resource.Properties != nil {
			props = resource.Properties
		} else {
			props = &document.Map{}
		}
		report.merge(resource.LogicalID, jsonschema.Validate(ctx, props, schemaDoc, resCtx, v.Opts))
	}
	return report
}

func checkFormatVersion(t *Template) []Finding {
	if t.FormatVersion == "" {
		return nil
	}

	path := jsonschema.Path{}.Child("AWSTemplateFormatVersion")
	declared, err := semver.NewVersion(dateAsVersion(t.FormatVersion))
	if err != nil {
		return []Finding{{Err: structuralErr(path,
			"'%s' is not a valid template format version", t.FormatVersion)}}
	}
	supported := semver.Must(semver.NewVersion(dateAsVersion(SupportedFormatVersion)))
	if !declared.Equal(supported) {
		return []Finding{{Err: structuralErr(path,
			"template format version '%s' is not supported (expected %s)",
			t.FormatVersion, SupportedFormatVersion)}}
	}
	return nil
}

// dateAsVersion turns the date-shaped format version into a form the version
// parser accepts.
func dateAsVersion(v string) string {
	return strings.ReplaceAll(v, "-", ".")
}

func (r *Report) merge(logicalID string, result jsonschema.Result) {
	basePath := jsonschema.Path{}.Child("Resources").Child(logicalID).Child("Properties")
	for _, err := range result.Errors {
		err.Path = joinPaths(basePath, err.Path)
		r.Findings = append(r.Findings, Finding{LogicalID: logicalID, Err: err})
	}
	for _, skip := range result.Skipped {
		skip.Path = joinPaths(basePath, skip.Path)
		r.Skipped = append(r.Skipped, skip)
	}
}

func joinPaths(base, rel jsonschema.Path) jsonschema.Path {
	joined := base.DeepCopy()
	return append(joined, rel...)
}
