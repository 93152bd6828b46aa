// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"context"

	"cfnvet.dev/cfnvet/pkg/cfnfn"
	"cfnvet.dev/cfnvet/pkg/document"
)

// Delegate is an external semantic validator dispatched to by the awsType
// keyword (eg an ARN shape check).
type Delegate func(val interface{}, path Path) []ValidationError

// AuxSchemaLookup supplies the named auxiliary schema documents the cfnLint
// keyword delegates to.
type AuxSchemaLookup interface {
	LookupAuxSchema(name string) (*SchemaDocument, bool)
}

// Options carries the caller-supplied extension points of a validation run.
type Options struct {
	AwsTypes   map[string]Delegate
	AuxSchemas AuxSchemaLookup
	// MaxDepth bounds recursive descent; cyclic schema graphs beyond it
	// produce a StructuralError instead of recursing further.
	MaxDepth int
}

const defaultMaxDepth = 128

// Validate checks a document fragment against a schema document, resolving
// intrinsic functions through "resCtx". It is a pure function: inputs are
// never mutated, and validating the same triple twice returns an identical
// Result.
func Validate(ctx context.Context, doc interface{}, schemaDoc *SchemaDocument, resCtx *cfnfn.Context, opts Options) Result {
	if parsed, ok := doc.(*document.Document); ok {
		doc = parsed.Value
	}
	if resCtx == nil {
		resCtx = cfnfn.NewContext("")
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	r := &run{
		ctx:      ctx,
		doc:      schemaDoc,
		resolver: cfnfn.NewResolver(resCtx),
		opts:     opts,
		maxDepth: maxDepth,
		memo:      map[memoKey][]ValidationError{},
		active:    map[memoKey]struct{}{},
		shapeSeen: map[string]struct{}{},
		skipSeen:  map[string]struct{}{},
	}

	errs := r.validate(doc, schemaDoc.Root, nil)
	return Result{Errors: errs, Skipped: r.skips}
}

type memoKey struct {
	schemaPointer string
	docPath       string
}

// run is the state of one top-level Validate call; it carries no state
// across calls.
type run struct {
	ctx      context.Context
	doc      *SchemaDocument
	resolver *cfnfn.Resolver
	opts     Options
	maxDepth int

	depth    int
	canceled bool
	skips    []Skip

	// $ref resolution is memoized per (schema pointer, document path) so a
	// cyclic schema graph terminates; "active" is the current descent chain.
	memo   map[memoKey][]ValidationError
	active map[memoKey]struct{}

	// a child's malformed intrinsic call is reported once per run even when
	// several schemas (allOf arms, dependencies) apply to the same node;
	// skips are deduplicated the same way
	shapeSeen map[string]struct{}
	skipSeen  map[string]struct{}
	muteSkips int
}

// instance is one document value under check, with its resolution and the
// group-keyword views built once per node.
type instance struct {
	val interface{}
	res cfnfn.Resolution
	obj *objectView
	arr *arrayView
}

func (r *run) validate(val interface{}, s *Schema, path Path) []ValidationError {
	return r.validateResolved(r.resolver.Resolve(val), s, path)
}

func (r *run) validateResolved(res cfnfn.Resolution, s *Schema, path Path) []ValidationError {
	if r.canceled {
		return nil
	}
	select {
	case <-r.ctx.Done():
		r.canceled = true
		return []ValidationError{newError(RuleStructural, KindStructural, path,
			"validation canceled: %s", r.ctx.Err())}
	default:
	}

	r.depth++
	defer func() { r.depth-- }()
	if r.depth > r.maxDepth {
		return []ValidationError{newError(RuleStructural, KindStructural, path,
			"maximum descent depth (%d) exceeded", r.maxDepth)}
	}

	if len(s.structureErrs) > 0 {
		// malformed schema: fatal for this subtree only
		var errs []ValidationError
		for _, msg := range s.structureErrs {
			errs = append(errs, newError(RuleSchemaStructure, KindSchemaStructure, path,
				"malformed schema at %s: %s", s.pointer, msg))
		}
		return errs
	}

	if s.Always != nil {
		if *s.Always {
			return nil
		}
		return []ValidationError{newError(RuleFalseSchema, KindConstraintViolation, path,
			"no value is allowed here")}
	}

	if s.Ref != "" {
		return r.validateRef(res, s, path)
	}

	if len(res.ShapeErrors) > 0 {
		// malformed intrinsic call halts this node; siblings continue
		var errs []ValidationError
		for _, shapeErr := range res.ShapeErrors {
			errs = append(errs, newError(RuleIntrinsicShape, KindIntrinsicShape, path,
				"%s", shapeErr.Message))
		}
		return errs
	}

	switch res.State {
	case cfnfn.NoValue:
		// absent; group-level treatment happens in the parent's filtered view
		return nil
	case cfnfn.Unresolved:
		r.recordSkip(path, "value depends on state not known before deployment")
		return nil
	}

	inst := &instance{val: res.Value, res: res}
	switch typedVal := res.Value.(type) {
	case *document.Map:
		inst.obj = newObjectView(r.resolver, typedVal)
	case *document.Array:
		inst.arr = newArrayView(r.resolver, typedVal)
	}

	// malformed intrinsic calls among the children are reported here, by the
	// owning node, whether or not any keyword descends into them; descending
	// keywords skip shape-errored children to avoid double reporting
	var errs []ValidationError
	if inst.obj != nil {
		for _, prop := range inst.obj.all {
			errs = append(errs, r.reportShapeErrors(prop.res, path.Child(prop.key))...)
		}
	}
	if inst.arr != nil {
		for _, el := range inst.arr.all {
			errs = append(errs, r.reportShapeErrors(el.res, path.Child(el.index))...)
		}
	}

	for _, handler := range keywordHandlers {
		if !handler.applies(s) {
			continue
		}
		errs = append(errs, handler.run(r, s, inst, path)...)
	}
	return errs
}

func (r *run) validateRef(res cfnfn.Resolution, s *Schema, path Path) []ValidationError {
	target, found := r.doc.Lookup(s.Ref)
	if !found {
		return []ValidationError{newError(RuleSchemaStructure, KindSchemaStructure, path,
			"unresolvable $ref '%s'", s.Ref)}
	}

	key := memoKey{schemaPointer: target.pointer, docPath: path.String()}
	if _, inChain := r.active[key]; inChain {
		return []ValidationError{newError(RuleStructural, KindStructural, path,
			"cyclic $ref through '%s' did not converge", s.Ref)}
	}
	if memoized, found := r.memo[key]; found {
		return append([]ValidationError{}, memoized...)
	}

	r.active[key] = struct{}{}
	errs := r.validateResolved(res, target, path)
	delete(r.active, key)

	// an evaluation inside a combinator branch has its skips muted, so its
	// outcome must not stand in for a later unmuted visit of the same target
	if r.muteSkips == 0 {
		r.memo[key] = errs
	}
	return errs
}

// recordSkip notes an unevaluated subtree, once per (path, reason) even when
// several schemas descend into the same node.
func (r *run) recordSkip(path Path, reason string) {
	if r.muteSkips > 0 {
		return
	}
	key := path.String() + "|" + reason
	if _, seen := r.skipSeen[key]; seen {
		return
	}
	r.skipSeen[key] = struct{}{}
	r.skips = append(r.skips, Skip{Path: path.DeepCopy(), Reason: reason})
}

func (r *run) reportShapeErrors(res cfnfn.Resolution, path Path) []ValidationError {
	var errs []ValidationError
	for _, shapeErr := range res.ShapeErrors {
		key := path.String() + "|" + shapeErr.Message
		if _, seen := r.shapeSeen[key]; seen {
			continue
		}
		r.shapeSeen[key] = struct{}{}
		errs = append(errs, newError(RuleIntrinsicShape, KindIntrinsicShape, path,
			"%s", shapeErr.Message))
	}
	return errs
}

// branch evaluates a combinator arm for pass/fail plus diagnostics. Skips
// recorded inside non-selected arms must not leak into the result.
func (r *run) branch(res cfnfn.Resolution, s *Schema, path Path) []ValidationError {
	r.muteSkips++
	errs := r.validateResolved(res, s, path)
	r.muteSkips--
	return errs
}
