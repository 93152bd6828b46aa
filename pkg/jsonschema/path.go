// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"fmt"
	"strings"
)

// Path locates a value within a document: a sequence of property names and
// array indices from the root. Paths render as JSON pointers.
type Path []interface{}

// Child returns a new Path extended by one segment; the receiver is never
// modified so sibling descents can share a prefix.
func (p Path) Child(segment interface{}) Path {
	child := make(Path, len(p), len(p)+1)
	copy(child, p)
	return append(child, segment)
}

func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}

	var b strings.Builder
	for _, segment := range p {
		b.WriteByte('/')
		switch typedSegment := segment.(type) {
		case string:
			b.WriteString(escapePointerSegment(typedSegment))
		case int:
			fmt.Fprintf(&b, "%d", typedSegment)
		default:
			fmt.Fprintf(&b, "%v", typedSegment)
		}
	}
	return b.String()
}

func (p Path) DeepCopy() Path {
	if p == nil {
		return nil
	}
	result := make(Path, len(p))
	copy(result, p)
	return result
}

func escapePointerSegment(segment string) string {
	segment = strings.ReplaceAll(segment, "~", "~0")
	return strings.ReplaceAll(segment, "/", "~1")
}
