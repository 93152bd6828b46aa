// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package cfnfn

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cfnvet.dev/cfnvet/pkg/document"
	"cfnvet.dev/cfnvet/pkg/filepos"
)

// State describes the outcome of resolving a value.
type State int

const (
	// Literal means the value is concrete (possibly after resolution).
	Literal State = iota
	// NoValue means the value resolved to {"Ref": "AWS::NoValue"}.
	NoValue
	// Unresolved means the value depends on state not known before deployment.
	Unresolved
)

// ShapeError reports a malformed intrinsic function call.
type ShapeError struct {
	Fn       string
	Message  string
	Position *filepos.Position
}

func (e ShapeError) Error() string {
	return fmt.Sprintf("%s at %s", e.Message, e.Position.AsCompactString())
}

// Resolution is the result of resolving one value. When ShapeErrors is
// non-empty the call was malformed and resolution of this value halted;
// sibling values are unaffected.
type Resolution struct {
	State       State
	Value       interface{}
	ShapeErrors []ShapeError
}

func (r Resolution) IsLiteral() bool { return r.State == Literal && len(r.ShapeErrors) == 0 }
func (r Resolution) IsNoValue() bool { return r.State == NoValue }
func (r Resolution) IsUnresolved() bool {
	return r.State == Unresolved || len(r.ShapeErrors) > 0
}

// Resolver resolves values best-effort against a Context. It never mutates
// the documents it is given.
type Resolver struct {
	ctx *Context
}

func NewResolver(ctx *Context) *Resolver {
	return &Resolver{ctx: ctx}
}

// Resolve resolves a single value. Plain scalars, sequences and mappings that
// are not intrinsic calls come back unchanged as literals; nested intrinsics
// within them are left for the caller to resolve during its own descent.
func (r *Resolver) Resolve(val interface{}) Resolution {
	call, looksLikeFn := AsCall(val)
	if call == nil {
		if looksLikeFn {
			m := val.(*document.Map)
			return shapeFailure(m.Items[0].Key, m.Items[0].Position,
				fmt.Sprintf("unsupported function '%s'", m.Items[0].Key))
		}
		return Resolution{State: Literal, Value: val}
	}
	return fnHandlers[call.Name](r, call)
}

// ResolveDeep resolves a value and every intrinsic call nested within it.
// Sequence and mapping entries resolving to NoValue are dropped. Any
// unresolved piece makes the whole value unresolved.
func (r *Resolver) ResolveDeep(val interface{}) Resolution {
	res := r.Resolve(val)
	if !res.IsLiteral() {
		return res
	}

	switch typedVal := res.Value.(type) {
	case *document.Array:
		result := &document.Array{Position: typedVal.Position}
		for _, item := range typedVal.Items {
			itemRes := r.ResolveDeep(item.Value)
			if itemRes.IsNoValue() {
				continue
			}
			if !itemRes.IsLiteral() {
				return itemRes
			}
			result.Items = append(result.Items, &document.ArrayItem{Value: itemRes.Value, Position: item.Position})
		}
		return Resolution{State: Literal, Value: result}

	case *document.Map:
		result := &document.Map{Position: typedVal.Position}
		for _, item := range typedVal.Items {
			itemRes := r.ResolveDeep(item.Value)
			if itemRes.IsNoValue() {
				continue
			}
			if !itemRes.IsLiteral() {
				return itemRes
			}
			result.Items = append(result.Items, &document.MapItem{Key: item.Key, Value: itemRes.Value, Position: item.Position})
		}
		return Resolution{State: Literal, Value: result}

	default:
		return res
	}
}

var fnHandlers map[string]func(*Resolver, *Call) Resolution

func init() {
	fnHandlers = map[string]func(*Resolver, *Call) Resolution{
		FnRef:         (*Resolver).resolveRef,
		FnGetAtt:      (*Resolver).resolveGetAtt,
		FnJoin:        (*Resolver).resolveJoin,
		FnSub:         (*Resolver).resolveSub,
		FnSelect:      (*Resolver).resolveSelect,
		FnFindInMap:   (*Resolver).resolveFindInMap,
		FnImportValue: (*Resolver).resolveImportValue,
		FnIf:          (*Resolver).resolveIf,
		FnAnd:         (*Resolver).resolveAnd,
		FnOr:          (*Resolver).resolveOr,
		FnNot:         (*Resolver).resolveNot,
		FnEquals:      (*Resolver).resolveEquals,
		FnBase64:      (*Resolver).resolveBase64,
		FnCidr:        (*Resolver).resolveCidr,
		FnSplit:       (*Resolver).resolveSplit,
	}
}

func literal(val interface{}) Resolution { return Resolution{State: Literal, Value: val} }
func noValue() Resolution                { return Resolution{State: NoValue} }
func unresolved() Resolution             { return Resolution{State: Unresolved} }

func shapeFailure(fn string, pos *filepos.Position, msg string) Resolution {
	return Resolution{
		State:       Unresolved,
		ShapeErrors: []ShapeError{{Fn: fn, Message: msg, Position: pos}},
	}
}

func (r *Resolver) resolveRef(call *Call) Resolution {
	name, ok := call.Argument.(string)
	if !ok {
		return shapeFailure(call.Name, call.Position, "Ref requires a string name")
	}

	if name == NoValueRef {
		return noValue()
	}

	if val, found := r.ctx.PseudoValue(name); found {
		return literal(document.NewASTFromInterfaceWithPosition(val, call.Position))
	}

	if param, found := r.ctx.Parameters[name]; found {
		if val, known := param.RepresentativeValue(); known {
			return literal(document.NewASTFromInterfaceWithPosition(val, call.Position))
		}
	}

	// possibly a resource logical id; its physical id is a deploy-time value
	return unresolved()
}

func (r *Resolver) resolveGetAtt(call *Call) Resolution {
	switch typedArg := call.Argument.(type) {
	case string:
		if !strings.Contains(typedArg, ".") {
			return shapeFailure(call.Name, call.Position,
				"Fn::GetAtt string form requires 'LogicalName.AttributeName'")
		}
	case *document.Array:
		if typedArg.Len() < 2 {
			return shapeFailure(call.Name, call.Position,
				"Fn::GetAtt requires a logical name and an attribute name")
		}
		for _, item := range typedArg.Items {
			if _, ok := item.Value.(string); !ok {
				return shapeFailure(call.Name, call.Position,
					"Fn::GetAtt arguments must be strings")
			}
		}
	default:
		return shapeFailure(call.Name, call.Position,
			"Fn::GetAtt requires a string or a list of strings")
	}

	// attribute values only exist once the resource does
	return unresolved()
}

func (r *Resolver) resolveJoin(call *Call) Resolution {
	args, ok := call.Argument.(*document.Array)
	if !ok || args.Len() != 2 {
		return shapeFailure(call.Name, call.Position,
			"Fn::Join requires two arguments: a delimiter and a list of values")
	}

	delimiter, ok := args.Items[0].Value.(string)
	if !ok {
		return shapeFailure(call.Name, call.Position, "Fn::Join delimiter must be a string")
	}

	listRes := r.ResolveDeep(args.Items[1].Value)
	if !listRes.IsLiteral() {
		return listRes
	}
	list, ok := listRes.Value.(*document.Array)
	if !ok {
		return shapeFailure(call.Name, call.Position, "Fn::Join second argument must be a list")
	}

	var parts []string
	for _, item := range list.Items {
		str, ok := scalarAsString(item.Value)
		if !ok {
			return shapeFailure(call.Name, call.Position, "Fn::Join values must be strings")
		}
		parts = append(parts, str)
	}

	return literal(strings.Join(parts, delimiter))
}

var subVarRegexp = regexp.MustCompile(`\$\{([^!}][^}]*)\}`)

func (r *Resolver) resolveSub(call *Call) Resolution {
	var templateStr string
	subVars := map[string]interface{}{}

	switch typedArg := call.Argument.(type) {
	case string:
		templateStr = typedArg
	case *document.Array:
		if typedArg.Len() != 2 {
			return shapeFailure(call.Name, call.Position,
				"Fn::Sub list form requires a template string and a variable map")
		}
		str, ok := typedArg.Items[0].Value.(string)
		if !ok {
			return shapeFailure(call.Name, call.Position, "Fn::Sub template must be a string")
		}
		varMap, ok := typedArg.Items[1].Value.(*document.Map)
		if !ok {
			return shapeFailure(call.Name, call.Position, "Fn::Sub variables must be a map")
		}
		templateStr = str
		for _, item := range varMap.Items {
			subVars[item.Key] = item.Value
		}
	default:
		return shapeFailure(call.Name, call.Position,
			"Fn::Sub requires a string or a [string, map] pair")
	}

	resolvedAll := true
	result := subVarRegexp.ReplaceAllStringFunc(templateStr, func(match string) string {
		name := strings.TrimSpace(match[2 : len(match)-1])

		if rawVal, found := subVars[name]; found {
			varRes := r.ResolveDeep(rawVal)
			if varRes.IsLiteral() {
				if str, ok := scalarAsString(varRes.Value); ok {
					return str
				}
			}
			resolvedAll = false
			return match
		}

		if strings.Contains(name, ".") {
			// GetAtt form; deploy-time only
			resolvedAll = false
			return match
		}

		refRes := r.resolveRef(&Call{Name: FnRef, Argument: name, Position: call.Position})
		if refRes.IsLiteral() {
			if str, ok := scalarAsString(refRes.Value); ok {
				return str
			}
		}
		resolvedAll = false
		return match
	})

	if !resolvedAll {
		return unresolved()
	}
	// "${!Literal}" renders as "${Literal}"
	return literal(strings.ReplaceAll(result, "${!", "${"))
}

func (r *Resolver) resolveSelect(call *Call) Resolution {
	args, ok := call.Argument.(*document.Array)
	if !ok || args.Len() != 2 {
		return shapeFailure(call.Name, call.Position,
			"Fn::Select requires two arguments: an index and a list of values")
	}

	indexRes := r.ResolveDeep(args.Items[0].Value)
	if !indexRes.IsLiteral() {
		return indexRes
	}
	index, ok := scalarAsInt(indexRes.Value)
	if !ok {
		return shapeFailure(call.Name, call.Position, "Fn::Select index must be an integer")
	}

	listRes := r.ResolveDeep(args.Items[1].Value)
	if !listRes.IsLiteral() {
		return listRes
	}
	list, ok := listRes.Value.(*document.Array)
	if !ok {
		return shapeFailure(call.Name, call.Position, "Fn::Select second argument must be a list")
	}

	if index < 0 || int(index) >= list.Len() {
		return shapeFailure(call.Name, call.Position,
			fmt.Sprintf("Fn::Select index %d is out of bounds for a list of %d values", index, list.Len()))
	}

	return literal(list.Items[index].Value)
}

func (r *Resolver) resolveFindInMap(call *Call) Resolution {
	args, ok := call.Argument.(*document.Array)
	if !ok || args.Len() != 3 {
		return shapeFailure(call.Name, call.Position,
			"Fn::FindInMap requires three arguments: a map name and two keys")
	}

	var keys [3]string
	for i, item := range args.Items {
		keyRes := r.ResolveDeep(item.Value)
		if !keyRes.IsLiteral() {
			return keyRes
		}
		key, ok := scalarAsString(keyRes.Value)
		if !ok {
			return shapeFailure(call.Name, call.Position, "Fn::FindInMap arguments must be strings")
		}
		keys[i] = key
	}

	if topMap, found := r.ctx.Mappings[keys[0]]; found {
		if secondMap, found := topMap[keys[1]]; found {
			if val, found := secondMap[keys[2]]; found {
				return literal(document.NewASTFromInterfaceWithPosition(val, call.Position))
			}
		}
	}

	// the context may only carry a subset of the template's mappings
	return unresolved()
}

func (r *Resolver) resolveImportValue(call *Call) Resolution {
	switch call.Argument.(type) {
	case string, *document.Map:
	default:
		return shapeFailure(call.Name, call.Position,
			"Fn::ImportValue requires a string or an intrinsic function")
	}

	// exported values live in other stacks
	return unresolved()
}

func (r *Resolver) resolveIf(call *Call) Resolution {
	args, ok := call.Argument.(*document.Array)
	if !ok || args.Len() != 3 {
		return shapeFailure(call.Name, call.Position,
			"Fn::If requires three arguments: a condition name and two values")
	}

	conditionName, ok := args.Items[0].Value.(string)
	if !ok {
		return shapeFailure(call.Name, call.Position, "Fn::If condition name must be a string")
	}

	outcome, known := r.ctx.Conditions[conditionName]
	if !known {
		return unresolved()
	}
	if outcome {
		return r.Resolve(args.Items[1].Value)
	}
	return r.Resolve(args.Items[2].Value)
}

func (r *Resolver) resolveAnd(call *Call) Resolution {
	return r.resolveBoolFold(call, func(values []bool) bool {
		for _, v := range values {
			if !v {
				return false
			}
		}
		return true
	})
}

func (r *Resolver) resolveOr(call *Call) Resolution {
	return r.resolveBoolFold(call, func(values []bool) bool {
		for _, v := range values {
			if v {
				return true
			}
		}
		return false
	})
}

func (r *Resolver) resolveBoolFold(call *Call, fold func([]bool) bool) Resolution {
	args, ok := call.Argument.(*document.Array)
	if !ok || args.Len() < 2 || args.Len() > 10 {
		return shapeFailure(call.Name, call.Position,
			fmt.Sprintf("%s requires between 2 and 10 conditions", call.Name))
	}

	var values []bool
	for _, item := range args.Items {
		itemRes := r.ResolveDeep(item.Value)
		if !itemRes.IsLiteral() {
			return itemRes
		}
		b, ok := itemRes.Value.(bool)
		if !ok {
			return shapeFailure(call.Name, call.Position,
				fmt.Sprintf("%s conditions must evaluate to booleans", call.Name))
		}
		values = append(values, b)
	}

	return literal(fold(values))
}

func (r *Resolver) resolveNot(call *Call) Resolution {
	args, ok := call.Argument.(*document.Array)
	if !ok || args.Len() != 1 {
		return shapeFailure(call.Name, call.Position, "Fn::Not requires exactly one condition")
	}

	res := r.ResolveDeep(args.Items[0].Value)
	if !res.IsLiteral() {
		return res
	}
	b, ok := res.Value.(bool)
	if !ok {
		return shapeFailure(call.Name, call.Position, "Fn::Not condition must evaluate to a boolean")
	}
	return literal(!b)
}

func (r *Resolver) resolveEquals(call *Call) Resolution {
	args, ok := call.Argument.(*document.Array)
	if !ok || args.Len() != 2 {
		return shapeFailure(call.Name, call.Position, "Fn::Equals requires exactly two values")
	}

	var strs [2]string
	for i, item := range args.Items {
		itemRes := r.ResolveDeep(item.Value)
		if !itemRes.IsLiteral() {
			return itemRes
		}
		str, ok := scalarAsString(itemRes.Value)
		if !ok {
			return shapeFailure(call.Name, call.Position, "Fn::Equals values must be scalars")
		}
		strs[i] = str
	}

	// CloudFormation compares the string forms
	return literal(strs[0] == strs[1])
}

func (r *Resolver) resolveBase64(call *Call) Resolution {
	res := r.ResolveDeep(call.Argument)
	if !res.IsLiteral() {
		return res
	}
	str, ok := scalarAsString(res.Value)
	if !ok {
		return shapeFailure(call.Name, call.Position, "Fn::Base64 requires a string")
	}
	return literal(base64.StdEncoding.EncodeToString([]byte(str)))
}

func (r *Resolver) resolveCidr(call *Call) Resolution {
	args, ok := call.Argument.(*document.Array)
	if !ok || args.Len() != 3 {
		return shapeFailure(call.Name, call.Position,
			"Fn::Cidr requires three arguments: an IP block, a count and a CIDR bits size")
	}

	for _, item := range args.Items {
		itemRes := r.Resolve(item.Value)
		if itemRes.IsLiteral() {
			if _, ok := scalarAsString(itemRes.Value); !ok {
				return shapeFailure(call.Name, call.Position, "Fn::Cidr arguments must be scalars")
			}
		}
		if len(itemRes.ShapeErrors) > 0 {
			return itemRes
		}
	}

	// the engine does not attempt subnet math
	return unresolved()
}

func (r *Resolver) resolveSplit(call *Call) Resolution {
	args, ok := call.Argument.(*document.Array)
	if !ok || args.Len() != 2 {
		return shapeFailure(call.Name, call.Position,
			"Fn::Split requires two arguments: a delimiter and a string")
	}

	delimiter, ok := args.Items[0].Value.(string)
	if !ok {
		return shapeFailure(call.Name, call.Position, "Fn::Split delimiter must be a string")
	}

	sourceRes := r.ResolveDeep(args.Items[1].Value)
	if !sourceRes.IsLiteral() {
		return sourceRes
	}
	source, ok := scalarAsString(sourceRes.Value)
	if !ok {
		return shapeFailure(call.Name, call.Position, "Fn::Split second argument must be a string")
	}

	var parts []interface{}
	for _, part := range strings.Split(source, delimiter) {
		parts = append(parts, part)
	}
	return literal(document.NewASTFromInterfaceWithPosition(parts, call.Position))
}

func scalarAsString(val interface{}) (string, bool) {
	switch typedVal := val.(type) {
	case string:
		return typedVal, true
	case int64:
		return strconv.FormatInt(typedVal, 10), true
	case float64:
		return strconv.FormatFloat(typedVal, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(typedVal), true
	default:
		return "", false
	}
}

func scalarAsInt(val interface{}) (int64, bool) {
	switch typedVal := val.(type) {
	case int64:
		return typedVal, true
	case string:
		parsed, err := strconv.ParseInt(typedVal, 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	case float64:
		if typedVal == float64(int64(typedVal)) {
			return int64(typedVal), true
		}
		return 0, false
	default:
		return 0, false
	}
}
