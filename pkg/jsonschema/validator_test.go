// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"cfnvet.dev/cfnvet/pkg/document"
	"cfnvet.dev/cfnvet/pkg/jsonschema"
	"cfnvet.dev/cfnvet/pkg/schemaset"
)

func schemaFromYAML(t *testing.T, data string) *jsonschema.SchemaDocument {
	t.Helper()
	schemaDoc, err := jsonschema.NewSchemaDocumentFromBytes([]byte(data), "schema.yml")
	require.NoError(t, err)
	return schemaDoc
}

func docFromYAML(t *testing.T, data string) *document.Document {
	t.Helper()
	doc, err := document.NewParser().ParseBytes([]byte(data), "template.yml")
	require.NoError(t, err)
	return doc
}

func validate(t *testing.T, schemaYAML, docYAML string) jsonschema.Result {
	t.Helper()
	return jsonschema.Validate(context.Background(),
		docFromYAML(t, docYAML), schemaFromYAML(t, schemaYAML), nil, jsonschema.Options{})
}

func requireRuleIDs(t *testing.T, result jsonschema.Result, ids ...string) {
	t.Helper()
	var actual []string
	for _, err := range result.Errors {
		actual = append(actual, err.RuleID)
	}
	require.Equal(t, ids, actual)
}

func TestValidateTypeCoercion(t *testing.T) {
	schemaYAML := `
type: object
properties:
  Port:
    type: integer
  Enabled:
    type: boolean
`
	result := validate(t, schemaYAML, `
Port: "8080"
Enabled: "true"
`)
	require.True(t, result.Valid(), "errors: %v", result.Errors)

	result = validate(t, schemaYAML, `
Port: "eighty"
Enabled: "True"
`)
	requireRuleIDs(t, result, "E3001", "E3001")
	require.Equal(t, "/Port", result.Errors[0].Path.String())
	require.Equal(t, "/Enabled", result.Errors[1].Path.String())
	require.Equal(t, jsonschema.KindTypeMismatch, result.Errors[0].Kind)
}

func TestValidateRequiredAgainstNoValue(t *testing.T) {
	schemaYAML := `
type: object
required: [BucketName]
properties:
  BucketName:
    type: string
    minLength: 50
`
	result := validate(t, schemaYAML, `
BucketName:
  Ref: AWS::NoValue
`)
	// the property is absent for `required`, and its leaf schema must not run
	requireRuleIDs(t, result, "E3020")
	require.Equal(t, "/", result.Errors[0].Path.String())
}

func TestValidateNoValueExcludedFromCounts(t *testing.T) {
	schemaYAML := `
type: object
maxProperties: 1
`
	result := validate(t, schemaYAML, `
Kept: 1
Dropped:
  Ref: AWS::NoValue
`)
	require.True(t, result.Valid(), "errors: %v", result.Errors)

	schemaYAML = `
type: array
maxItems: 1
`
	result = validate(t, schemaYAML, `
- 1
- Ref: AWS::NoValue
`)
	require.True(t, result.Valid(), "errors: %v", result.Errors)
}

func TestValidateUnresolvedValueSkipsLeafChecks(t *testing.T) {
	schemaYAML := `
type: object
properties:
  TopicArn:
    type: string
    minLength: 20
`
	result := validate(t, schemaYAML, `
TopicArn:
  Fn::GetAtt: [Topic, Arn]
`)
	require.True(t, result.Valid(), "errors: %v", result.Errors)
	require.Len(t, result.Skipped, 1)
	require.Equal(t, "/TopicArn", result.Skipped[0].Path.String())
	require.NotEmpty(t, result.Skipped[0].Reason)
}

func TestValidateMalformedIntrinsicHaltsNodeOnly(t *testing.T) {
	schemaYAML := `
type: object
properties:
  Choice:
    type: string
  Port:
    type: integer
`
	result := validate(t, schemaYAML, `
Choice:
  Fn::Select: [9, [a, b]]
Port: not-a-number
`)
	// the malformed call is one finding; the sibling still gets checked
	requireRuleIDs(t, result, "E1101", "E3001")
	require.Equal(t, "/Choice", result.Errors[0].Path.String())
	require.Equal(t, "/Port", result.Errors[1].Path.String())
}

func TestValidateMalformedIntrinsicReportedOnce(t *testing.T) {
	schemaYAML := `
allOf:
- type: object
  properties:
    Choice:
      type: string
- type: object
  required: [Choice]
`
	result := validate(t, schemaYAML, `
Choice:
  Fn::Select: [9, [a, b]]
`)
	requireRuleIDs(t, result, "E1101")
}

func TestValidateOneOf(t *testing.T) {
	t.Run("exactly one branch matches", func(t *testing.T) {
		result := validate(t, `
oneOf:
- type: object
- type: string
`, `hello`)
		require.True(t, result.Valid(), "errors: %v", result.Errors)
	})

	t.Run("no branch matches", func(t *testing.T) {
		result := validate(t, `
oneOf:
- type: object
- type: array
`, `hello`)
		requireRuleIDs(t, result, "E3029")
		require.NotEmpty(t, result.Errors[0].Causes)
	})

	t.Run("multiple branches match", func(t *testing.T) {
		result := validate(t, `
oneOf:
- minLength: 1
- pattern: '^a'
`, `ab`)
		requireRuleIDs(t, result, "E3029")
		require.Contains(t, result.Errors[0].Message, "branches")
	})
}

func TestValidateAnyOfCarriesBranchCauses(t *testing.T) {
	result := validate(t, `
anyOf:
- type: object
- type: array
`, `hello`)
	requireRuleIDs(t, result, "E3028")
	require.Len(t, result.Errors[0].Causes, 2)
}

func TestValidateCombinatorBranchesDoNotLeakSkips(t *testing.T) {
	// the failing branch descends into the unresolved Name; the winning branch
	// does not, so no skip may surface
	schemaYAML := `
anyOf:
- type: object
  required: [Missing]
  properties:
    Name:
      type: string
      minLength: 2
- type: object
  maxProperties: 3
`
	result := validate(t, schemaYAML, `
Name:
  Fn::ImportValue: shared-name
`)
	require.True(t, result.Valid(), "errors: %v", result.Errors)
	require.Empty(t, result.Skipped)
}

func TestValidateAnyOfWinningBranchKeepsSkips(t *testing.T) {
	schemaYAML := `
anyOf:
- type: object
  properties:
    Name:
      type: string
      minLength: 20
`
	result := validate(t, schemaYAML, `
Name:
  Fn::GetAtt: [Thing, Arn]
`)
	// passing is not the same as evaluated: the unresolved leaf is on record
	require.True(t, result.Valid(), "errors: %v", result.Errors)
	require.Len(t, result.Skipped, 1)
	require.Equal(t, "/Name", result.Skipped[0].Path.String())
}

func TestValidateRef(t *testing.T) {
	schemaYAML := `
definitions:
  port:
    type: integer
    minimum: 1
type: object
properties:
  Port:
    $ref: '#/definitions/port'
`
	result := validate(t, schemaYAML, `{Port: 0}`)
	requireRuleIDs(t, result, "E3007")
	require.Equal(t, "/Port", result.Errors[0].Path.String())
}

func TestValidateRefInsideCombinatorKeepsSkips(t *testing.T) {
	// the $ref target is first evaluated inside a muted branch; the winning
	// re-run must still record the skip rather than hit a muted memo entry
	schemaYAML := `
definitions:
  name:
    type: string
    minLength: 20
oneOf:
- type: object
  properties:
    Name:
      $ref: '#/definitions/name'
`
	result := validate(t, schemaYAML, `
Name:
  Fn::GetAtt: [Thing, Arn]
`)
	require.True(t, result.Valid(), "errors: %v", result.Errors)
	require.Len(t, result.Skipped, 1)
	require.Equal(t, "/Name", result.Skipped[0].Path.String())
}

func TestValidateRefCycleTerminates(t *testing.T) {
	schemaYAML := `
definitions:
  a:
    $ref: '#/definitions/b'
  b:
    $ref: '#/definitions/a'
$ref: '#/definitions/a'
`
	result := validate(t, schemaYAML, `hello`)
	requireRuleIDs(t, result, "E1001")
	require.Equal(t, jsonschema.KindStructural, result.Errors[0].Kind)
}

func TestValidateUnresolvableRef(t *testing.T) {
	result := validate(t, `{$ref: '#/definitions/missing'}`, `hello`)
	requireRuleIDs(t, result, "E1002")
}

func TestValidateDepthBound(t *testing.T) {
	schemaYAML := `
type: object
properties:
  A:
    type: object
    properties:
      B:
        type: integer
`
	result := jsonschema.Validate(context.Background(),
		docFromYAML(t, `{A: {B: 1}}`), schemaFromYAML(t, schemaYAML), nil,
		jsonschema.Options{MaxDepth: 2})
	requireRuleIDs(t, result, "E1001")
	require.Contains(t, result.Errors[0].Message, "depth")
}

func TestValidateCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := jsonschema.Validate(ctx,
		docFromYAML(t, `{A: 1}`), schemaFromYAML(t, `{type: object}`), nil, jsonschema.Options{})
	requireRuleIDs(t, result, "E1001")
	require.Contains(t, result.Errors[0].Message, "canceled")
}

func TestValidateIsIdempotent(t *testing.T) {
	schemaYAML := `
type: object
required: [Name, Missing]
properties:
  Name:
    type: integer
  Arn:
    minLength: 3
`
	docYAML := `
Name: hello
Arn:
  Fn::GetAtt: [Thing, Arn]
`
	first := validate(t, schemaYAML, docYAML)
	second := validate(t, schemaYAML, docYAML)
	require.Equal(t, first, second)
	require.False(t, first.Valid())
}

func TestValidateFalseSchema(t *testing.T) {
	result := validate(t, `
type: object
properties:
  Known:
    type: string
additionalProperties: false
`, `
Known: x
Extra: y
`)
	requireRuleIDs(t, result, "E3023")
	require.Equal(t, "/Extra", result.Errors[0].Path.String())
}

func TestValidateEnumDoesNotCoerce(t *testing.T) {
	schemaYAML := `{enum: [80, 443]}`

	require.True(t, validate(t, schemaYAML, `80`).Valid())
	// "80" is a string; enum comparison is strict
	requireRuleIDs(t, validate(t, schemaYAML, `"80"`), "E3002")
}

func TestValidateRequiredXor(t *testing.T) {
	schemaYAML := `
type: object
requiredXor: [CidrIp, CidrIpv6]
`
	require.True(t, validate(t, schemaYAML, `{CidrIp: 10.0.0.0/8}`).Valid())
	requireRuleIDs(t, validate(t, schemaYAML, `{Other: 1}`), "E3601")
	requireRuleIDs(t, validate(t, schemaYAML, `{CidrIp: a, CidrIpv6: b}`), "E3601")

	// a NoValue member counts as absent
	require.True(t, validate(t, schemaYAML, `
CidrIp: 10.0.0.0/8
CidrIpv6:
  Ref: AWS::NoValue
`).Valid())
}

func TestValidateRequiredOr(t *testing.T) {
	schemaYAML := `
type: object
requiredOr: [RoleArn, RoleName]
`
	require.True(t, validate(t, schemaYAML, `{RoleArn: x, RoleName: y}`).Valid())
	requireRuleIDs(t, validate(t, schemaYAML, `{Other: 1}`), "E3602")
}

func TestValidatePropertiesNand(t *testing.T) {
	schemaYAML := `
type: object
propertiesNand: [Password, SecretArn]
`
	require.True(t, validate(t, schemaYAML, `{Password: x}`).Valid())
	require.True(t, validate(t, schemaYAML, `{Other: 1}`).Valid())
	requireRuleIDs(t, validate(t, schemaYAML, `{Password: x, SecretArn: y}`), "E3603")
}

func TestValidateDependentKeywords(t *testing.T) {
	schemaYAML := `
type: object
dependentRequired:
  KmsKeyId: [Encrypted]
dependentExcluded:
  Iops: [Throughput]
`
	require.True(t, validate(t, schemaYAML, `{KmsKeyId: k, Encrypted: true}`).Valid())
	requireRuleIDs(t, validate(t, schemaYAML, `{KmsKeyId: k}`), "E3604")
	requireRuleIDs(t, validate(t, schemaYAML, `{Iops: 100, Throughput: 125}`), "E3605")
}

func TestValidateAwsTypeDelegate(t *testing.T) {
	schemaDoc := schemaFromYAML(t, `{awsType: Arn}`)

	failing := func(val interface{}, path jsonschema.Path) []jsonschema.ValidationError {
		return []jsonschema.ValidationError{{RuleID: "E3610", Path: path, Message: "not an ARN"}}
	}
	opts := jsonschema.Options{AwsTypes: map[string]jsonschema.Delegate{"Arn": failing}}

	result := jsonschema.Validate(context.Background(), docFromYAML(t, `hello`), schemaDoc, nil, opts)
	requireRuleIDs(t, result, "E3610")
	require.Len(t, result.Errors[0].Causes, 1)

	// no delegate registered: recorded as a skip, not an error
	result = jsonschema.Validate(context.Background(), docFromYAML(t, `hello`), schemaDoc, nil, jsonschema.Options{})
	require.True(t, result.Valid())
	require.Len(t, result.Skipped, 1)
}

func TestValidateCfnLintDelegation(t *testing.T) {
	registry := schemaset.NewRegistry()
	registry.RegisterAux("iam-policy-version", schemaFromYAML(t, `
type: object
properties:
  Version:
    enum: ["2012-10-17"]
`))

	schemaDoc := schemaFromYAML(t, `{cfnLint: [iam-policy-version]}`)
	opts := jsonschema.Options{AuxSchemas: registry}

	result := jsonschema.Validate(context.Background(),
		docFromYAML(t, `{Version: "2008-10-17"}`), schemaDoc, nil, opts)
	requireRuleIDs(t, result, "E3611")
	require.Len(t, result.Errors[0].Causes, 1)
	require.Equal(t, "E3002", result.Errors[0].Causes[0].RuleID)

	result = jsonschema.Validate(context.Background(),
		docFromYAML(t, `{Version: "2008-10-17"}`),
		schemaFromYAML(t, `{cfnLint: [unknown-name]}`), nil, opts)
	requireRuleIDs(t, result, "E1002")
}

func TestValidateTupleItems(t *testing.T) {
	schemaYAML := `
type: array
items:
- type: string
- type: integer
additionalItems: false
`
	require.True(t, validate(t, schemaYAML, `[a, 1]`).Valid())
	requireRuleIDs(t, validate(t, schemaYAML, `[a, 1, extra]`), "E3013")
}

func TestValidateUniqueItems(t *testing.T) {
	schemaYAML := `
type: array
uniqueItems: true
`
	require.True(t, validate(t, schemaYAML, `[a, b, c]`).Valid())

	result := validate(t, schemaYAML, `[a, b, a]`)
	requireRuleIDs(t, result, "E3016")
	require.Equal(t, "/2", result.Errors[0].Path.String())
}

func TestValidateIfThenElse(t *testing.T) {
	schemaYAML := `
type: object
if:
  properties:
    Type:
      const: io1
then:
  required: [Iops]
`
	require.True(t, validate(t, schemaYAML, `{Type: gp3}`).Valid())
	requireRuleIDs(t, validate(t, schemaYAML, `{Type: io1}`), "E3026")
}

func TestValidateMalformedSchemaNode(t *testing.T) {
	schemaYAML := `
type: object
properties:
  Port:
    type: 42
`
	result := validate(t, schemaYAML, `{Port: 1}`)
	requireRuleIDs(t, result, "E1002")
	require.Equal(t, jsonschema.KindSchemaStructure, result.Errors[0].Kind)
}
