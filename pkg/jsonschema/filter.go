// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"cfnvet.dev/cfnvet/pkg/cfnfn"
	"cfnvet.dev/cfnvet/pkg/document"
)

// A property whose value resolves to the NoValue sentinel is absent for every
// group-level keyword (required, requiredXor, additionalProperties, ...) but
// still present for per-property leaf recursion, where only the shape of the
// intrinsic call itself is checked. The two views below make that split:
// group keywords consume "filtered", recursion consumes "all".

type property struct {
	key   string
	raw   interface{}
	res   cfnfn.Resolution
	index int // position within the original mapping
}

type objectView struct {
	all      []property
	filtered []property
}

func newObjectView(resolver *cfnfn.Resolver, m *document.Map) *objectView {
	view := &objectView{}
	for i, item := range m.Items {
		prop := property{key: item.Key, raw: item.Value, res: resolver.Resolve(item.Value), index: i}
		view.all = append(view.all, prop)
		if !prop.res.IsNoValue() {
			view.filtered = append(view.filtered, prop)
		}
	}
	return view
}

func (v *objectView) has(key string) bool {
	for _, prop := range v.filtered {
		if prop.key == key {
			return true
		}
	}
	return false
}

func (v *objectView) get(key string) (property, bool) {
	for _, prop := range v.filtered {
		if prop.key == key {
			return prop, true
		}
	}
	return property{}, false
}

// presentOf returns, in the order given, the subset of "names" present in the
// filtered view.
func (v *objectView) presentOf(names []string) []string {
	var present []string
	for _, name := range names {
		if v.has(name) {
			present = append(present, name)
		}
	}
	return present
}

type element struct {
	raw   interface{}
	res   cfnfn.Resolution
	index int // position within the original sequence
}

type arrayView struct {
	all      []element
	filtered []element
}

func newArrayView(resolver *cfnfn.Resolver, a *document.Array) *arrayView {
	view := &arrayView{}
	for i, item := range a.Items {
		el := element{raw: item.Value, res: resolver.Resolve(item.Value), index: i}
		view.all = append(view.all, el)
		if !el.res.IsNoValue() {
			view.filtered = append(view.filtered, el)
		}
	}
	return view
}
