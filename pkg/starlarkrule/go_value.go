// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package starlarkrule

import (
	"fmt"
	"sort"

	"github.com/k14s/starlark-go/starlark"

	"cfnvet.dev/cfnvet/pkg/document"
)

// GoValue converts a document value (AST nodes or plain scalars) into its
// starlark form for rule invocation.
type GoValue struct {
	val interface{}
}

func NewGoValue(val interface{}) GoValue {
	return GoValue{val}
}

func (e GoValue) AsStarlarkValue() (starlark.Value, error) {
	return e.asStarlarkValue(document.NewGoFromAST(e.val))
}

func (e GoValue) asStarlarkValue(val interface{}) (starlark.Value, error) {
	switch typedVal := val.(type) {
	case nil:
		return starlark.None, nil

	case bool:
		return starlark.Bool(typedVal), nil

	case string:
		return starlark.String(typedVal), nil

	case int64:
		return starlark.MakeInt64(typedVal), nil

	case float64:
		return starlark.Float(typedVal), nil

	case []interface{}:
		result := []starlark.Value{}
		for _, item := range typedVal {
			converted, err := e.asStarlarkValue(item)
			if err != nil {
				return nil, err
			}
			result = append(result, converted)
		}
		return starlark.NewList(result), nil

	case map[string]interface{}:
		result := starlark.NewDict(len(typedVal))
		for _, key := range sortedKeys(typedVal) {
			converted, err := e.asStarlarkValue(typedVal[key])
			if err != nil {
				return nil, err
			}
			err = result.SetKey(starlark.String(key), converted)
			if err != nil {
				return nil, err
			}
		}
		return result, nil

	default:
		return nil, fmt.Errorf("unknown type %T for conversion to starlark value", val)
	}
}

func sortedKeys(m map[string]interface{}) []string {
	var keys []string
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
