// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package template

import (
	"cfnvet.dev/cfnvet/pkg/cfnfn"
	"cfnvet.dev/cfnvet/pkg/document"
)

// BuildResolutionContext derives the intrinsic-function resolution table from
// the template's Parameters, Mappings and Conditions sections.
func BuildResolutionContext(t *Template, region string) *cfnfn.Context {
	ctx := cfnfn.NewContext(region)

	for name, body := range t.Parameters {
		param := cfnfn.Parameter{}
		if val, found := body.Get("Type"); found {
			if str, ok := val.(string); ok {
				param.Type = str
			}
		}
		if val, found := body.Get("Default"); found {
			param.Default = document.NewGoFromAST(val)
		}
		if val, found := body.Get("AllowedValues"); found {
			if list, ok := document.NewGoFromAST(val).([]interface{}); ok {
				param.AllowedValues = list
			}
		}
		ctx.Parameters[name] = param
	}

	if t.Mappings != nil {
		for _, mapping := range t.Mappings.Items {
			topMap, ok := document.NewGoFromAST(mapping.Value).(map[string]interface{})
			if !ok {
				continue
			}
			converted := map[string]map[string]interface{}{}
			for topKey, second := range topMap {
				secondMap, ok := second.(map[string]interface{})
				if !ok {
					continue
				}
				converted[topKey] = secondMap
			}
			ctx.Mappings[mapping.Key] = converted
		}
	}

	evaluateConditions(t, ctx)
	return ctx
}

// evaluateConditions records every condition whose outcome is statically
// decidable. Conditions may reference each other via {"Condition": name}, so
// evaluation iterates until no new outcome is learned.
func evaluateConditions(t *Template, ctx *cfnfn.Context) {
	if t.Conditions == nil {
		return
	}

	resolver := cfnfn.NewResolver(ctx)
	for pass := 0; pass <= t.Conditions.Len(); pass++ {
		learned := false
		for _, item := range t.Conditions.Items {
			if _, known := ctx.Conditions[item.Key]; known {
				continue
			}
			if outcome, ok := evaluateConditionExpr(resolver, ctx, item.Value); ok {
				ctx.Conditions[item.Key] = outcome
				learned = true
			}
		}
		if !learned {
			return
		}
	}
}

func evaluateConditionExpr(resolver *cfnfn.Resolver, ctx *cfnfn.Context, expr interface{}) (bool, bool) {
	expr, ok := substituteConditionRefs(expr, ctx)
	if !ok {
		return false, false
	}

	res := resolver.Resolve(expr)
	if !res.IsLiteral() {
		return false, false
	}
	outcome, ok := res.Value.(bool)
	return outcome, ok
}

// substituteConditionRefs replaces {"Condition": name} references, which may
// appear anywhere inside Fn::And/Or/Not, with their known outcomes. A
// reference to a not-yet-known condition makes the expression undecidable for
// this pass.
func substituteConditionRefs(expr interface{}, ctx *cfnfn.Context) (interface{}, bool) {
	switch typedExpr := expr.(type) {
	case *document.Map:
		if typedExpr.Len() == 1 && typedExpr.Items[0].Key == "Condition" {
			name, ok := typedExpr.Items[0].Value.(string)
			if !ok {
				return nil, false
			}
			outcome, known := ctx.Conditions[name]
			if !known {
				return nil, false
			}
			return outcome, true
		}

		result := &document.Map{Position: typedExpr.Position}
		for _, item := range typedExpr.Items {
			sub, ok := substituteConditionRefs(item.Value, ctx)
			if !ok {
				return nil, false
			}
			result.Items = append(result.Items, &document.MapItem{Key: item.Key, Value: sub, Position: item.Position})
		}
		return result, true

	case *document.Array:
		result := &document.Array{Position: typedExpr.Position}
		for _, item := range typedExpr.Items {
			sub, ok := substituteConditionRefs(item.Value, ctx)
			if !ok {
				return nil, false
			}
			result.Items = append(result.Items, &document.ArrayItem{Value: sub, Position: item.Position})
		}
		return result, true

	default:
		return expr, true
	}
}
