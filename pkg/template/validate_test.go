// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package template_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"cfnvet.dev/cfnvet/pkg/document"
	"cfnvet.dev/cfnvet/pkg/jsonschema"
	"cfnvet.dev/cfnvet/pkg/schemaset"
	"cfnvet.dev/cfnvet/pkg/template"
)

const bucketSchemaYAML = `
type: object
required: [BucketName]
properties:
  BucketName:
    type: string
    maxLength: 63
additionalProperties: false
`

func parseDoc(t *testing.T, data string) *document.Document {
	t.Helper()
	doc, err := document.NewParser().ParseBytes([]byte(data), "template.yml")
	require.NoError(t, err)
	return doc
}

func newBucketValidator(t *testing.T) *template.Validator {
	t.Helper()
	schemaDoc, err := jsonschema.NewSchemaDocumentFromBytes([]byte(bucketSchemaYAML), "aws-s3-bucket")
	require.NoError(t, err)

	registry := schemaset.NewRegistry()
	registry.Register("AWS::S3::Bucket", schemaDoc)

	return &template.Validator{
		Registry: registry,
		Opts:     jsonschema.Options{AuxSchemas: registry},
	}
}

func TestValidateTemplate(t *testing.T) {
	validator := newBucketValidator(t)

	t.Run("conforming template", func(t *testing.T) {
		report := validator.Validate(context.Background(), parseDoc(t, `
AWSTemplateFormatVersion: "2010-09-09"
Resources:
  Bucket:
    Type: AWS::S3::Bucket
    Properties:
      BucketName: my-bucket
`))
		require.True(t, report.Valid(), "findings: %v", report.Findings)
	})

	t.Run("missing required property", func(t *testing.T) {
		report := validator.Validate(context.Background(), parseDoc(t, `
Resources:
  Bucket:
    Type: AWS::S3::Bucket
    Properties:
      Extra: 1
`))
		require.Len(t, report.Findings, 2)
		require.Equal(t, "Bucket", report.Findings[0].LogicalID)
		require.Equal(t, "E3023", report.Findings[0].Err.RuleID)
		require.Equal(t, "/Resources/Bucket/Properties/Extra", report.Findings[0].Err.Path.String())
		require.Equal(t, "E3020", report.Findings[1].Err.RuleID)
		require.Equal(t, "/Resources/Bucket/Properties", report.Findings[1].Err.Path.String())
	})

	t.Run("unregistered resource type is skipped", func(t *testing.T) {
		report := validator.Validate(context.Background(), parseDoc(t, `
Resources:
  Fn:
    Type: AWS::Lambda::Function
`))
		require.True(t, report.Valid())
		require.Len(t, report.Skipped, 1)
		require.Equal(t, "/Resources/Fn", report.Skipped[0].Path.String())
	})

	t.Run("statically-false condition drops the resource", func(t *testing.T) {
		report := validator.Validate(context.Background(), parseDoc(t, `
Parameters:
  Env:
    Type: String
    Default: dev
Conditions:
  IsProd:
    Fn::Equals: [{Ref: Env}, prod]
Resources:
  Bucket:
    Type: AWS::S3::Bucket
    Condition: IsProd
    Properties: {}
`))
		require.True(t, report.Valid(), "findings: %v", report.Findings)
		require.Empty(t, report.Skipped)
	})

	t.Run("unsupported format version", func(t *testing.T) {
		report := validator.Validate(context.Background(), parseDoc(t, `
AWSTemplateFormatVersion: "2011-01-01"
Resources:
  Bucket:
    Type: AWS::S3::Bucket
    Properties:
      BucketName: b
`))
		require.Len(t, report.Findings, 1)
		require.Equal(t, "E1001", report.Findings[0].Err.RuleID)
		require.Contains(t, report.Findings[0].Err.Message, "2011-01-01")
	})

	t.Run("missing Resources section", func(t *testing.T) {
		report := validator.Validate(context.Background(), parseDoc(t, `
Description: nothing here
`))
		require.Len(t, report.Findings, 1)
		require.Equal(t, "E1001", report.Findings[0].Err.RuleID)
	})

	t.Run("resource without Type", func(t *testing.T) {
		report := validator.Validate(context.Background(), parseDoc(t, `
Resources:
  Broken:
    Properties: {}
`))
		require.Len(t, report.Findings, 1)
		require.Contains(t, report.Findings[0].Err.Message, "no Type")
	})
}

func TestBuildResolutionContext(t *testing.T) {
	tpl, errs := template.NewTemplate(parseDoc(t, `
Parameters:
  Env:
    Type: String
    Default: prod
  Zone:
    Type: String
    AllowedValues: [a, b]
Mappings:
  RegionMap:
    us-east-1:
      Ami: ami-123
Conditions:
  IsProd:
    Fn::Equals: [{Ref: Env}, prod]
  NotProd:
    Fn::Not: [{Condition: IsProd}]
Resources:
  Bucket:
    Type: AWS::S3::Bucket
`))
	require.Empty(t, errs)

	ctx := template.BuildResolutionContext(tpl, "")

	require.Equal(t, "prod", ctx.Parameters["Env"].Default)
	require.Equal(t, []interface{}{"a", "b"}, ctx.Parameters["Zone"].AllowedValues)
	require.Equal(t, "ami-123", ctx.Mappings["RegionMap"]["us-east-1"]["Ami"])

	// condition chains resolve through references to other conditions
	require.Equal(t, map[string]bool{"IsProd": true, "NotProd": false}, ctx.Conditions)
}
