// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"cfnvet.dev/cfnvet/pkg/filepos"
)

// Node is a structured value within a parsed template fragment: a mapping, a
// sequence, or one of their items. Scalars are held as plain Go values
// (string, int64, float64, bool, nil) inside item Value fields.
type Node interface {
	GetPosition() *filepos.Position

	GetValues() []interface{} // ie children

	DeepCopyAsInterface() interface{}

	sealed() // limit the concrete types of Node to the kinds present in templates
}

var _ = []Node{&Document{}, &Map{}, &Array{}}

// Document is a single parsed template or fragment.
type Document struct {
	Value    interface{}
	Position *filepos.Position
}

// Map is a mapping with unique string keys; item order is insertion order so
// diagnostics come out in authored order.
type Map struct {
	Items    []*MapItem
	Position *filepos.Position
}

type MapItem struct {
	Key      string
	Value    interface{}
	Position *filepos.Position
}

type Array struct {
	Items    []*ArrayItem
	Position *filepos.Position
}

type ArrayItem struct {
	Value    interface{}
	Position *filepos.Position
}

func (d *Document) sealed()   {}
func (m *Map) sealed()        {}
func (mi *MapItem) sealed()   {}
func (a *Array) sealed()      {}
func (ai *ArrayItem) sealed() {}
