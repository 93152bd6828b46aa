// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package starlarkrule

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/k14s/starlark-go/starlark"

	"cfnvet.dev/cfnvet/pkg/jsonschema"
)

const checkFuncName = "check"

// Rule is one script-defined awsType validator: a .star file exporting
// check(value), returning None for pass or a message (or list of messages)
// for failure.
type Rule struct {
	name  string
	check starlark.Callable
}

// LoadFS compiles every .star file under dir into a delegate keyed by the
// file's bare name. Module globals are frozen after execution, so the
// returned delegates are safe to share.
func LoadFS(fsys fs.FS, dir string) (map[string]jsonschema.Delegate, error) {
	delegates := map[string]jsonschema.Delegate{}

	err := fs.WalkDir(fsys, dir, func(filePath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || path.Ext(filePath) != ".star" {
			return nil
		}

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return fmt.Errorf("Reading rule file '%s': %s", filePath, err)
		}
		rule, err := newRule(strings.TrimSuffix(path.Base(filePath), ".star"), filePath, data)
		if err != nil {
			return err
		}
		delegates[rule.name] = rule.Delegate()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return delegates, nil
}

func newRule(name, filePath string, src []byte) (*Rule, error) {
	thread := &starlark.Thread{Name: "cfnvet-rule-" + name}
	globals, err := starlark.ExecFile(thread, filePath, src, nil)
	if err != nil {
		return nil, fmt.Errorf("Evaluating rule file '%s': %s", filePath, err)
	}

	checkVal, found := globals[checkFuncName]
	if !found {
		return nil, fmt.Errorf("Rule file '%s' does not define %s(value)", filePath, checkFuncName)
	}
	checkFunc, ok := checkVal.(starlark.Callable)
	if !ok {
		return nil, fmt.Errorf("Rule file '%s': %s must be a function", filePath, checkFuncName)
	}
	return &Rule{name: name, check: checkFunc}, nil
}

// Delegate adapts the rule into the engine's awsType dispatch contract.
func (r *Rule) Delegate() jsonschema.Delegate {
	return func(val interface{}, path jsonschema.Path) []jsonschema.ValidationError {
		messages, err := r.invoke(val)
		if err != nil {
			return []jsonschema.ValidationError{{
				RuleID:  jsonschema.RuleSchemaStructure,
				Kind:    jsonschema.KindSchemaStructure,
				Path:    path,
				Message: fmt.Sprintf("rule '%s' failed: %s", r.name, err),
			}}
		}

		var errs []jsonschema.ValidationError
		for _, msg := range messages {
			errs = append(errs, jsonschema.ValidationError{
				RuleID:  jsonschema.RuleID("awsType"),
				Kind:    jsonschema.KindConstraintViolation,
				Path:    path,
				Message: msg,
			})
		}
		return errs
	}
}

func (r *Rule) invoke(val interface{}) ([]string, error) {
	arg, err := NewGoValue(val).AsStarlarkValue()
	if err != nil {
		return nil, err
	}

	thread := &starlark.Thread{Name: "cfnvet-rule-" + r.name}
	result, err := starlark.Call(thread, r.check, starlark.Tuple{arg}, nil)
	if err != nil {
		return nil, err
	}

	switch typedResult := result.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return []string{string(typedResult)}, nil
	case *starlark.List:
		var messages []string
		iter := typedResult.Iterate()
		defer iter.Done()
		var item starlark.Value
		for iter.Next(&item) {
			str, ok := item.(starlark.String)
			if !ok {
				return nil, fmt.Errorf("%s() returned a list with a non-string item", checkFuncName)
			}
			messages = append(messages, string(str))
		}
		return messages, nil
	default:
		return nil, fmt.Errorf("%s() must return None, a string or a list of strings, got %s",
			checkFuncName, result.Type())
	}
}
