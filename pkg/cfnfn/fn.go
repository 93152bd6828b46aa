// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package cfnfn

import (
	"strings"

	"cfnvet.dev/cfnvet/pkg/document"
	"cfnvet.dev/cfnvet/pkg/filepos"
)

const (
	FnRef         = "Ref"
	FnGetAtt      = "Fn::GetAtt"
	FnJoin        = "Fn::Join"
	FnSub         = "Fn::Sub"
	FnSelect      = "Fn::Select"
	FnFindInMap   = "Fn::FindInMap"
	FnImportValue = "Fn::ImportValue"
	FnIf          = "Fn::If"
	FnAnd         = "Fn::And"
	FnOr          = "Fn::Or"
	FnNot         = "Fn::Not"
	FnEquals      = "Fn::Equals"
	FnBase64      = "Fn::Base64"
	FnCidr        = "Fn::Cidr"
	FnSplit       = "Fn::Split"
)

// NoValueRef is the Ref target that means "this property is absent".
const NoValueRef = "AWS::NoValue"

var functionNames = map[string]struct{}{
	FnRef: {}, FnGetAtt: {}, FnJoin: {}, FnSub: {}, FnSelect: {},
	FnFindInMap: {}, FnImportValue: {}, FnIf: {}, FnAnd: {}, FnOr: {},
	FnNot: {}, FnEquals: {}, FnBase64: {}, FnCidr: {}, FnSplit: {},
}

// Call is a recognized intrinsic function call.
type Call struct {
	Name     string
	Argument interface{}
	Position *filepos.Position
}

// IsFunctionName reports whether "name" is one of the supported intrinsic
// function keys.
func IsFunctionName(name string) bool {
	_, found := functionNames[name]
	return found
}

// AsCall recognizes a single-key mapping whose key is an intrinsic function
// name. A single-key mapping with an unknown "Fn::" key is reported as
// looksLikeFn so the caller can flag it instead of treating it as data.
func AsCall(val interface{}) (call *Call, looksLikeFn bool) {
	m, ok := val.(*document.Map)
	if !ok || m.Len() != 1 {
		return nil, false
	}

	item := m.Items[0]
	if IsFunctionName(item.Key) {
		return &Call{Name: item.Key, Argument: item.Value, Position: item.Position}, true
	}
	if strings.HasPrefix(item.Key, "Fn::") {
		return nil, true
	}
	return nil, false
}
