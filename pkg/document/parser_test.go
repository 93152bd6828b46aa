// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package document_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/k14s/difflib"
	"github.com/stretchr/testify/require"

	"cfnvet.dev/cfnvet/pkg/document"
)

func TestParserScalarTypes(t *testing.T) {
	doc, err := document.NewParser().ParseBytes([]byte(`
str: hello
quoted: "10"
int: 10
neg: -3
float: 1.5
boolT: true
boolF: false
nothing: null
`), "test.yml")
	require.NoError(t, err)

	require.Equal(t, map[string]interface{}{
		"str":     "hello",
		"quoted":  "10",
		"int":     int64(10),
		"neg":     int64(-3),
		"float":   1.5,
		"boolT":   true,
		"boolF":   false,
		"nothing": nil,
	}, document.NewGoFromAST(doc.Value))
}

func TestParserPositions(t *testing.T) {
	doc, err := document.NewParser().ParseBytes([]byte(`Resources:
  Bucket:
    Type: AWS::S3::Bucket
`), "template.yml")
	require.NoError(t, err)

	root, ok := doc.Value.(*document.Map)
	require.True(t, ok)

	resources := root.Items[0]
	require.Equal(t, "Resources", resources.Key)
	require.Equal(t, "template.yml:1", resources.Position.AsCompactString())

	bucket := resources.Value.(*document.Map).Items[0]
	require.Equal(t, "Bucket", bucket.Key)
	require.Equal(t, "template.yml:2", bucket.Position.AsCompactString())
}

func TestParserDuplicateKeys(t *testing.T) {
	_, err := document.NewParser().ParseBytes([]byte(`
a: 1
a: 2
`), "test.yml")
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate map key 'a'")
}

func TestParserEmptyDocument(t *testing.T) {
	doc, err := document.NewParser().ParseBytes([]byte(""), "test.yml")
	require.NoError(t, err)
	require.Nil(t, doc.Value)
	require.False(t, doc.Position.IsKnown())
}

func TestParserJSONInput(t *testing.T) {
	doc, err := document.NewParser().ParseBytes([]byte(`{"Port": 80, "Names": ["a", "b"]}`), "test.json")
	require.NoError(t, err)

	require.Equal(t, map[string]interface{}{
		"Port":  int64(80),
		"Names": []interface{}{"a", "b"},
	}, document.NewGoFromAST(doc.Value))
}

func TestRoundTripThroughGoValues(t *testing.T) {
	const data = `
Parameters:
  Env:
    Type: String
Resources:
  Bucket:
    Type: AWS::S3::Bucket
    Properties:
      Tags:
      - Key: env
        Value: dev
`
	doc, err := document.NewParser().ParseBytes([]byte(data), "test.yml")
	require.NoError(t, err)

	goVal := document.NewGoFromAST(doc.Value)
	rebuilt := document.NewASTFromInterface(goVal)

	assertEqualDump(t, fmt.Sprintf("%#v", document.NewGoFromAST(rebuilt)), fmt.Sprintf("%#v", goVal))
}

func TestMapAccessors(t *testing.T) {
	doc, err := document.NewParser().ParseBytes([]byte(`{a: 1, b: 2}`), "test.yml")
	require.NoError(t, err)

	m := doc.Value.(*document.Map)
	require.Equal(t, []string{"a", "b"}, m.Keys())
	require.Equal(t, 2, m.Len())
	require.True(t, m.Has("a"))
	require.False(t, m.Has("c"))

	val, found := m.Get("b")
	require.True(t, found)
	require.Equal(t, int64(2), val)
}

func assertEqualDump(t *testing.T, actual, expected string) {
	t.Helper()
	if actual != expected {
		t.Fatalf("Not equal; diff expected...actual:\n%v\n",
			difflib.PPDiff(strings.Split(expected, "\n"), strings.Split(actual, "\n")))
	}
}
