// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema_test

import (
	"strconv"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"cfnvet.dev/cfnvet/pkg/document"
	"cfnvet.dev/cfnvet/pkg/jsonschema"
)

func TestConformsTo(t *testing.T) {
	cases := []struct {
		val      interface{}
		typeName string
		expected bool
	}{
		{int64(10), "integer", true},
		{"10", "integer", true},
		{"+10", "integer", true},
		{"-10", "integer", true},
		{10.0, "integer", true},
		{10.5, "integer", false},
		{"10.5", "integer", false},
		{" 10", "integer", false},
		{"1e2", "integer", false},
		{true, "integer", false},

		{10.5, "number", true},
		{int64(10), "number", true},
		{"10.5", "number", true},
		{"1e2", "number", true},
		{"-1.5E-3", "number", true},
		{"ten", "number", false},
		{"Inf", "number", false},
		{"-Inf", "number", false},
		{"NaN", "number", false},
		{"0x1p4", "number", false},
		{" 10.5", "number", false},

		{"hello", "string", true},
		{int64(10), "string", true},
		{10.5, "string", true},
		{true, "string", true},
		{nil, "string", false},

		{true, "boolean", true},
		{"true", "boolean", true},
		{"false", "boolean", true},
		{"True", "boolean", false},
		{"yes", "boolean", false},
		{int64(1), "boolean", false},

		{nil, "null", true},
		{"", "null", false},

		{&document.Map{}, "object", true},
		{"{}", "object", false},
		{&document.Array{}, "array", true},
		{&document.Map{}, "array", false},
	}

	for _, c := range cases {
		require.Equal(t, c.expected, jsonschema.ConformsTo(c.val, c.typeName),
			"val=%#v type=%s", c.val, c.typeName)
	}
}

func TestConformsToAny(t *testing.T) {
	require.True(t, jsonschema.ConformsToAny("10", []string{"boolean", "integer"}))
	require.False(t, jsonschema.ConformsToAny("ten", []string{"boolean", "integer"}))
}

func TestConformsToFuzzedNumericStrings(t *testing.T) {
	fuzzInt := fuzz.New().Funcs(func(s *string, c fuzz.Continue) {
		*s = strconv.FormatInt(c.Int63(), 10)
	})
	for i := 0; i < 200; i++ {
		var str string
		fuzzInt.Fuzz(&str)
		require.True(t, jsonschema.ConformsTo(str, "integer"), "str=%q", str)
		require.True(t, jsonschema.ConformsTo(str, "number"), "str=%q", str)
		require.True(t, jsonschema.ConformsTo(str, "string"), "str=%q", str)
	}

	fuzzFloat := fuzz.New().Funcs(func(s *string, c fuzz.Continue) {
		*s = strconv.FormatFloat(c.Float64(), 'f', -1, 64)
	})
	for i := 0; i < 200; i++ {
		var str string
		fuzzFloat.Fuzz(&str)
		require.True(t, jsonschema.ConformsTo(str, "number"), "str=%q", str)
	}
}
