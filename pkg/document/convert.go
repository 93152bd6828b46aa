// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"fmt"
	"sort"

	"cfnvet.dev/cfnvet/pkg/filepos"
)

// NewASTFromInterface builds a Node tree out of plain Go values
// (map[string]interface{}, []interface{}, scalars). Map keys come out sorted
// since plain Go maps carry no order.
func NewASTFromInterface(val interface{}) interface{} {
	return convertToAST(val, filepos.NewUnknownPosition())
}

// NewASTFromInterfaceWithPosition is NewASTFromInterface with every created
// node stamped with "defaultPosition".
func NewASTFromInterfaceWithPosition(val interface{}, defaultPosition *filepos.Position) interface{} {
	return convertToAST(val, defaultPosition)
}

// NewGoFromAST converts a Node tree into plain Go values; map ordering is
// lost, which is fine for equality-style comparisons.
func NewGoFromAST(val interface{}) interface{} {
	return convertToGo(val)
}

func convertToAST(val interface{}, defaultPosition *filepos.Position) interface{} {
	switch typedVal := val.(type) {
	case *Document:
		typedVal.Value = convertToAST(typedVal.Value, defaultPosition)
		return typedVal

	case *Map:
		for _, item := range typedVal.Items {
			item.Value = convertToAST(item.Value, defaultPosition)
		}
		return typedVal

	case *Array:
		for _, item := range typedVal.Items {
			item.Value = convertToAST(item.Value, defaultPosition)
		}
		return typedVal

	case map[string]interface{}:
		result := &Map{Position: defaultPosition}
		for _, key := range sortedKeys(typedVal) {
			result.Items = append(result.Items, &MapItem{
				Key:      key,
				Value:    convertToAST(typedVal[key], defaultPosition),
				Position: defaultPosition,
			})
		}
		return result

	case []interface{}:
		result := &Array{Position: defaultPosition}
		for _, item := range typedVal {
			result.Items = append(result.Items, &ArrayItem{
				Value:    convertToAST(item, defaultPosition),
				Position: defaultPosition,
			})
		}
		return result

	case int:
		return int64(typedVal)

	default:
		return typedVal
	}
}

func convertToGo(val interface{}) interface{} {
	switch typedVal := val.(type) {
	case *Document:
		return convertToGo(typedVal.Value)

	case *Map:
		result := map[string]interface{}{}
		for _, item := range typedVal.Items {
			// Catch any cases where unique key invariant is violated
			if _, found := result[item.Key]; found {
				panic(fmt.Sprintf("Unexpected duplicate key: %s", item.Key))
			}
			result[item.Key] = convertToGo(item.Value)
		}
		return result

	case *Array:
		result := []interface{}{}
		for _, item := range typedVal.Items {
			result = append(result, convertToGo(item.Value))
		}
		return result

	default:
		return typedVal
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
