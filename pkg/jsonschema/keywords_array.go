// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"cfnvet.dev/cfnvet/pkg/document"
)

// Sequence keywords operate on the filtered view: an element resolving to
// the NoValue sentinel is not part of the list. Paths keep the element's
// original index so findings point at the authored document.

func validateItems(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.arr == nil {
		return nil
	}

	var errs []ValidationError
	if s.Items != nil {
		for _, el := range inst.arr.filtered {
			if len(el.res.ShapeErrors) > 0 {
				continue
			}
			errs = append(errs, r.validateResolved(el.res, s.Items, path.Child(el.index))...)
		}
		return errs
	}

	for i, el := range inst.arr.filtered {
		if len(el.res.ShapeErrors) > 0 {
			continue
		}
		if i < len(s.TupleItems) {
			errs = append(errs, r.validateResolved(el.res, s.TupleItems[i], path.Child(el.index))...)
			continue
		}
		if s.AdditionalItems == nil {
			continue
		}
		if s.AdditionalItems.Always != nil && !*s.AdditionalItems.Always {
			errs = append(errs, newError(RuleID("additionalItems"), KindConstraintViolation, path.Child(el.index),
				"additional items are not allowed (%d items expected)", len(s.TupleItems)))
			continue
		}
		errs = append(errs, r.validateResolved(el.res, s.AdditionalItems, path.Child(el.index))...)
	}
	return errs
}

func validateMaxItems(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.arr != nil && int64(len(inst.arr.filtered)) > *s.MaxItems {
		return []ValidationError{newError(RuleID("maxItems"), KindConstraintViolation, path,
			"%d items is greater than the maximum of %d", len(inst.arr.filtered), *s.MaxItems)}
	}
	return nil
}

func validateMinItems(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.arr != nil && int64(len(inst.arr.filtered)) < *s.MinItems {
		return []ValidationError{newError(RuleID("minItems"), KindConstraintViolation, path,
			"%d items is less than the minimum of %d", len(inst.arr.filtered), *s.MinItems)}
	}
	return nil
}

func validateUniqueItems(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.arr == nil {
		return nil
	}

	var errs []ValidationError
	seen := make([]interface{}, 0, len(inst.arr.filtered))
	seenIndexes := make([]int, 0, len(inst.arr.filtered))
	for _, el := range inst.arr.filtered {
		if el.res.IsUnresolved() {
			// cannot know the concrete value; leave it out of the comparison
			continue
		}
		val := document.NewGoFromAST(el.res.Value)
		duplicate := false
		for i, prior := range seen {
			if equalValues(val, prior) {
				errs = append(errs, newError(RuleID("uniqueItems"), KindConstraintViolation, path.Child(el.index),
					"duplicate of the item at index %d", seenIndexes[i]))
				duplicate = true
				break
			}
		}
		if !duplicate {
			seen = append(seen, val)
			seenIndexes = append(seenIndexes, el.index)
		}
	}
	return errs
}

func validateContains(r *run, s *Schema, inst *instance, path Path) []ValidationError {
	if inst.arr == nil {
		return nil
	}

	for _, el := range inst.arr.filtered {
		if len(r.branch(el.res, s.Contains, path.Child(el.index))) == 0 {
			return nil
		}
	}
	return []ValidationError{newError(RuleID("contains"), KindConstraintViolation, path,
		"no item matches the required schema")}
}
