// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package cfnfn_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cfnvet.dev/cfnvet/pkg/cfnfn"
	"cfnvet.dev/cfnvet/pkg/document"
)

func parseValue(t *testing.T, data string) interface{} {
	t.Helper()
	doc, err := document.NewParser().ParseBytes([]byte(data), "test.yml")
	require.NoError(t, err)
	return doc.Value
}

func resolveYAML(t *testing.T, ctx *cfnfn.Context, data string) cfnfn.Resolution {
	t.Helper()
	if ctx == nil {
		ctx = cfnfn.NewContext("")
	}
	return cfnfn.NewResolver(ctx).Resolve(parseValue(t, data))
}

func requireLiteral(t *testing.T, res cfnfn.Resolution, expected interface{}) {
	t.Helper()
	require.True(t, res.IsLiteral(), "shape errors: %v", res.ShapeErrors)
	require.Equal(t, expected, document.NewGoFromAST(res.Value))
}

func TestResolveScalarsPassThrough(t *testing.T) {
	requireLiteral(t, resolveYAML(t, nil, `hello`), "hello")
	requireLiteral(t, resolveYAML(t, nil, `42`), int64(42))
	requireLiteral(t, resolveYAML(t, nil, `true`), true)
}

func TestResolvePlainMapIsNotACall(t *testing.T) {
	// two keys: an ordinary mapping even though one key is Ref
	res := resolveYAML(t, nil, `
Ref: something
Other: 1
`)
	require.True(t, res.IsLiteral())
}

func TestResolveUnknownFnIsShapeError(t *testing.T) {
	res := resolveYAML(t, nil, `
Fn::Frobnicate: [1, 2]
`)
	require.True(t, res.IsUnresolved())
	require.Len(t, res.ShapeErrors, 1)
	require.Contains(t, res.ShapeErrors[0].Message, "Fn::Frobnicate")
}

func TestResolveRef(t *testing.T) {
	t.Run("AWS::NoValue", func(t *testing.T) {
		res := resolveYAML(t, nil, `{Ref: "AWS::NoValue"}`)
		require.True(t, res.IsNoValue())
	})

	t.Run("pseudo parameters", func(t *testing.T) {
		requireLiteral(t, resolveYAML(t, nil, `{Ref: "AWS::Region"}`), "us-east-1")
		requireLiteral(t, resolveYAML(t, nil, `{Ref: "AWS::AccountId"}`), "123456789012")

		ctx := cfnfn.NewContext("cn-north-1")
		requireLiteral(t, resolveYAML(t, ctx, `{Ref: "AWS::Partition"}`), "aws-cn")
		requireLiteral(t, resolveYAML(t, ctx, `{Ref: "AWS::URLSuffix"}`), "amazonaws.com.cn")
	})

	t.Run("parameter with default", func(t *testing.T) {
		ctx := cfnfn.NewContext("")
		ctx.Parameters["Env"] = cfnfn.Parameter{Type: "String", Default: "prod"}
		requireLiteral(t, resolveYAML(t, ctx, `{Ref: Env}`), "prod")
	})

	t.Run("parameter with allowed values only", func(t *testing.T) {
		ctx := cfnfn.NewContext("")
		ctx.Parameters["Env"] = cfnfn.Parameter{Type: "String", AllowedValues: []interface{}{"dev", "prod"}}
		requireLiteral(t, resolveYAML(t, ctx, `{Ref: Env}`), "dev")
	})

	t.Run("unknown name is a deploy-time value", func(t *testing.T) {
		res := resolveYAML(t, nil, `{Ref: MyBucket}`)
		require.True(t, res.IsUnresolved())
		require.Empty(t, res.ShapeErrors)
	})

	t.Run("non-string argument", func(t *testing.T) {
		res := resolveYAML(t, nil, `{Ref: [1]}`)
		require.Len(t, res.ShapeErrors, 1)
	})
}

func TestResolveGetAtt(t *testing.T) {
	res := resolveYAML(t, nil, `{"Fn::GetAtt": [Topic, Arn]}`)
	require.True(t, res.IsUnresolved())
	require.Empty(t, res.ShapeErrors)

	res = resolveYAML(t, nil, `{"Fn::GetAtt": Topic.Arn}`)
	require.True(t, res.IsUnresolved())
	require.Empty(t, res.ShapeErrors)

	res = resolveYAML(t, nil, `{"Fn::GetAtt": Topic}`)
	require.Len(t, res.ShapeErrors, 1)

	res = resolveYAML(t, nil, `{"Fn::GetAtt": [Topic]}`)
	require.Len(t, res.ShapeErrors, 1)
}

func TestResolveJoin(t *testing.T) {
	requireLiteral(t, resolveYAML(t, nil, `{"Fn::Join": ["-", [a, b, c]]}`), "a-b-c")

	// NoValue entries drop out of the joined list
	requireLiteral(t, resolveYAML(t, nil, `
Fn::Join:
- "-"
- - a
  - Ref: AWS::NoValue
  - c
`), "a-c")

	// an unresolvable entry makes the whole join unresolved
	res := resolveYAML(t, nil, `{"Fn::Join": ["-", [a, {Ref: MyBucket}]]}`)
	require.True(t, res.IsUnresolved())
	require.Empty(t, res.ShapeErrors)

	res = resolveYAML(t, nil, `{"Fn::Join": ["-"]}`)
	require.Len(t, res.ShapeErrors, 1)
}

func TestResolveSub(t *testing.T) {
	requireLiteral(t, resolveYAML(t, nil,
		"{\"Fn::Sub\": \"prefix-${AWS::Region}\"}"), "prefix-us-east-1")

	t.Run("variable map", func(t *testing.T) {
		requireLiteral(t, resolveYAML(t, nil, `
Fn::Sub:
- "${Stage}-api"
- Stage: beta
`), "beta-api")
	})

	t.Run("escaped literal", func(t *testing.T) {
		requireLiteral(t, resolveYAML(t, nil,
			"{\"Fn::Sub\": \"${!KeepMe}\"}"), "${KeepMe}")
	})

	t.Run("GetAtt form stays unresolved", func(t *testing.T) {
		res := resolveYAML(t, nil, "{\"Fn::Sub\": \"${Topic.Arn}\"}")
		require.True(t, res.IsUnresolved())
		require.Empty(t, res.ShapeErrors)
	})
}

func TestResolveSelect(t *testing.T) {
	requireLiteral(t, resolveYAML(t, nil, `{"Fn::Select": [1, [a, b, c]]}`), "b")
	requireLiteral(t, resolveYAML(t, nil, `{"Fn::Select": ["1", [a, b, c]]}`), "b")

	res := resolveYAML(t, nil, `{"Fn::Select": [5, [a, b]]}`)
	require.Len(t, res.ShapeErrors, 1)
	require.Contains(t, res.ShapeErrors[0].Message, "out of bounds")
}

func TestResolveFindInMap(t *testing.T) {
	ctx := cfnfn.NewContext("")
	ctx.Mappings["RegionMap"] = map[string]map[string]interface{}{
		"us-east-1": {"Ami": "ami-123"},
	}

	requireLiteral(t, resolveYAML(t, ctx,
		`{"Fn::FindInMap": [RegionMap, "us-east-1", Ami]}`), "ami-123")

	// keys may themselves be intrinsic calls
	requireLiteral(t, resolveYAML(t, ctx,
		`{"Fn::FindInMap": [RegionMap, {Ref: "AWS::Region"}, Ami]}`), "ami-123")

	res := resolveYAML(t, ctx, `{"Fn::FindInMap": [RegionMap, "eu-west-1", Ami]}`)
	require.True(t, res.IsUnresolved())
	require.Empty(t, res.ShapeErrors)

	res = resolveYAML(t, ctx, `{"Fn::FindInMap": [RegionMap]}`)
	require.Len(t, res.ShapeErrors, 1)
}

func TestResolveIf(t *testing.T) {
	ctx := cfnfn.NewContext("")
	ctx.Conditions["IsProd"] = true

	requireLiteral(t, resolveYAML(t, ctx, `{"Fn::If": [IsProd, big, small]}`), "big")

	ctx.Conditions["IsProd"] = false
	requireLiteral(t, resolveYAML(t, ctx, `{"Fn::If": [IsProd, big, small]}`), "small")

	// a NoValue branch propagates the sentinel
	res := resolveYAML(t, ctx, `{"Fn::If": [IsProd, big, {Ref: "AWS::NoValue"}]}`)
	require.True(t, res.IsNoValue())

	res = resolveYAML(t, ctx, `{"Fn::If": [Unknown, big, small]}`)
	require.True(t, res.IsUnresolved())
	require.Empty(t, res.ShapeErrors)
}

func TestResolveConditionFunctions(t *testing.T) {
	requireLiteral(t, resolveYAML(t, nil, `{"Fn::Equals": [a, a]}`), true)
	requireLiteral(t, resolveYAML(t, nil, `{"Fn::Equals": [a, b]}`), false)
	// string forms compare equal
	requireLiteral(t, resolveYAML(t, nil, `{"Fn::Equals": [1, "1"]}`), true)

	requireLiteral(t, resolveYAML(t, nil,
		`{"Fn::And": [{"Fn::Equals": [a, a]}, {"Fn::Equals": [b, b]}]}`), true)
	requireLiteral(t, resolveYAML(t, nil,
		`{"Fn::Or": [{"Fn::Equals": [a, b]}, {"Fn::Equals": [b, b]}]}`), true)
	requireLiteral(t, resolveYAML(t, nil,
		`{"Fn::Not": [{"Fn::Equals": [a, a]}]}`), false)

	res := resolveYAML(t, nil, `{"Fn::And": [{"Fn::Equals": [a, a]}]}`)
	require.Len(t, res.ShapeErrors, 1)
}

func TestResolveBase64AndSplit(t *testing.T) {
	requireLiteral(t, resolveYAML(t, nil, `{"Fn::Base64": hello}`), "aGVsbG8=")

	requireLiteral(t, resolveYAML(t, nil, `{"Fn::Split": [",", "a,b,c"]}`),
		[]interface{}{"a", "b", "c"})
}

func TestResolveCidr(t *testing.T) {
	res := resolveYAML(t, nil, `{"Fn::Cidr": ["10.0.0.0/16", 6, 5]}`)
	require.True(t, res.IsUnresolved())
	require.Empty(t, res.ShapeErrors)

	res = resolveYAML(t, nil, `{"Fn::Cidr": ["10.0.0.0/16"]}`)
	require.Len(t, res.ShapeErrors, 1)
}

func TestResolveImportValue(t *testing.T) {
	res := resolveYAML(t, nil, `{"Fn::ImportValue": shared-subnet-id}`)
	require.True(t, res.IsUnresolved())
	require.Empty(t, res.ShapeErrors)
}

func TestResolveDeepDropsNoValue(t *testing.T) {
	ctx := cfnfn.NewContext("")
	res := cfnfn.NewResolver(ctx).ResolveDeep(parseValue(t, `
Kept: 1
Dropped:
  Ref: AWS::NoValue
Nested:
- x
- Ref: AWS::NoValue
`))
	require.True(t, res.IsLiteral())
	require.Equal(t, map[string]interface{}{
		"Kept":   int64(1),
		"Nested": []interface{}{"x"},
	}, document.NewGoFromAST(res.Value))
}
