// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"cfnvet.dev/cfnvet/pkg/filepos"
)

func (d *Document) GetPosition() *filepos.Position   { return d.Position }
func (m *Map) GetPosition() *filepos.Position        { return m.Position }
func (mi *MapItem) GetPosition() *filepos.Position   { return mi.Position }
func (a *Array) GetPosition() *filepos.Position      { return a.Position }
func (ai *ArrayItem) GetPosition() *filepos.Position { return ai.Position }

func (d *Document) GetValues() []interface{} { return []interface{}{d.Value} }

func (m *Map) GetValues() []interface{} {
	var result []interface{}
	for _, item := range m.Items {
		result = append(result, item.Value)
	}
	return result
}

func (mi *MapItem) GetValues() []interface{} { return []interface{}{mi.Value} }

func (a *Array) GetValues() []interface{} {
	var result []interface{}
	for _, item := range a.Items {
		result = append(result, item.Value)
	}
	return result
}

func (ai *ArrayItem) GetValues() []interface{} { return []interface{}{ai.Value} }

// Get returns the value for "key" and whether the key is present.
func (m *Map) Get(key string) (interface{}, bool) {
	for _, item := range m.Items {
		if item.Key == key {
			return item.Value, true
		}
	}
	return nil, false
}

// Item returns the MapItem for "key", or nil when the key is absent.
func (m *Map) Item(key string) *MapItem {
	for _, item := range m.Items {
		if item.Key == key {
			return item
		}
	}
	return nil
}

func (m *Map) Has(key string) bool {
	_, found := m.Get(key)
	return found
}

// Keys returns the map's keys in insertion order.
func (m *Map) Keys() []string {
	var keys []string
	for _, item := range m.Items {
		keys = append(keys, item.Key)
	}
	return keys
}

func (m *Map) Len() int   { return len(m.Items) }
func (a *Array) Len() int { return len(a.Items) }

func (d *Document) DeepCopy() *Document {
	return &Document{Value: deepCopyValue(d.Value), Position: d.Position.DeepCopy()}
}

func (m *Map) DeepCopy() *Map {
	newMap := &Map{Position: m.Position.DeepCopy()}
	for _, item := range m.Items {
		newMap.Items = append(newMap.Items, item.DeepCopy())
	}
	return newMap
}

func (mi *MapItem) DeepCopy() *MapItem {
	return &MapItem{Key: mi.Key, Value: deepCopyValue(mi.Value), Position: mi.Position.DeepCopy()}
}

func (a *Array) DeepCopy() *Array {
	newArray := &Array{Position: a.Position.DeepCopy()}
	for _, item := range a.Items {
		newArray.Items = append(newArray.Items, item.DeepCopy())
	}
	return newArray
}

func (ai *ArrayItem) DeepCopy() *ArrayItem {
	return &ArrayItem{Value: deepCopyValue(ai.Value), Position: ai.Position.DeepCopy()}
}

func (d *Document) DeepCopyAsInterface() interface{}   { return d.DeepCopy() }
func (m *Map) DeepCopyAsInterface() interface{}        { return m.DeepCopy() }
func (mi *MapItem) DeepCopyAsInterface() interface{}   { return mi.DeepCopy() }
func (a *Array) DeepCopyAsInterface() interface{}      { return a.DeepCopy() }
func (ai *ArrayItem) DeepCopyAsInterface() interface{} { return ai.DeepCopy() }

func deepCopyValue(val interface{}) interface{} {
	if node, ok := val.(Node); ok {
		return node.DeepCopyAsInterface()
	}
	return val
}
