// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/lambda"

	"cfnvet.dev/cfnvet/pkg/awstype"
	"cfnvet.dev/cfnvet/pkg/document"
	"cfnvet.dev/cfnvet/pkg/jsonschema"
	"cfnvet.dev/cfnvet/pkg/schemaset"
	"cfnvet.dev/cfnvet/pkg/template"
)

// Request carries one template plus the schemas to check it against, keyed
// by resource type.
type Request struct {
	Template string            `json:"template"`
	Region   string            `json:"region,omitempty"`
	Schemas  map[string]string `json:"schemas"`
}

type Response struct {
	Valid    bool      `json:"valid"`
	Findings []Finding `json:"findings"`
	Skipped  []Skip    `json:"skipped"`
}

type Finding struct {
	RuleID   string `json:"ruleId"`
	Resource string `json:"resource,omitempty"`
	Path     string `json:"path"`
	Message  string `json:"message"`
}

type Skip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func handle(ctx context.Context, req Request) (Response, error) {
	registry := schemaset.NewRegistry()
	for typeName, schemaJSON := range req.Schemas {
		schemaDoc, err := jsonschema.NewSchemaDocumentFromBytes([]byte(schemaJSON), typeName)
		if err != nil {
			return Response{}, fmt.Errorf("Parsing schema for '%s': %s", typeName, err)
		}
		registry.Register(typeName, schemaDoc)
	}

	doc, err := document.NewParser().ParseBytes([]byte(req.Template), "template")
	if err != nil {
		return Response{}, fmt.Errorf("Parsing template: %s", err)
	}

	validator := &template.Validator{
		Registry: registry,
		Region:   req.Region,
		Opts: jsonschema.Options{
			AwsTypes:   awstype.Catalog(),
			AuxSchemas: registry,
		},
	}
	report := validator.Validate(ctx, doc)

	resp := Response{Valid: report.Valid(), Findings: []Finding{}, Skipped: []Skip{}}
	for _, finding := range report.Findings {
		resp.Findings = append(resp.Findings, Finding{
			RuleID:   finding.Err.RuleID,
			Resource: finding.LogicalID,
			Path:     finding.Err.Path.String(),
			Message:  finding.Err.Message,
		})
	}
	for _, skip := range report.Skipped {
		resp.Skipped = append(resp.Skipped, Skip{Path: skip.Path.String(), Reason: skip.Reason})
	}
	return resp, nil
}

func main() {
	lambda.Start(handle)
}
