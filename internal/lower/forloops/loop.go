package forloops

import (
	"github.com/orizon-lang/rangeloop/internal/errors"
	"github.com/orizon-lang/rangeloop/internal/hir"
	"github.com/orizon-lang/rangeloop/internal/intrinsics"
)

// lowerLoop rewrites
//
//	while (it.hasNext()) { val i = it.next(); ... }
//
// for a lowered header into
//
//	if (inductionVariable <= last) {     // >= for decreasing progressions
//	    do {
//	        val i = inductionVariable
//	        inductionVariable = inductionVariable + step
//	        ...
//	    } while (i != last)
//	}
//
// Open ranges are additionally guarded by bound > MIN_VALUE, since decrementing
// the minimum value wraps around. A loop over an existing progression object is
// guarded by !progression.isEmpty() instead. It returns nil when the loop is not
// the inner loop of a lowered header.
func (t *transformer) lowerLoop(loop *hir.WhileLoop) (hir.Statement, error) {
	if loop.Origin != hir.OriginForLoopInnerWhile {
		return nil, nil
	}
	cond, ok := loop.Condition.(*hir.Call)
	if !ok || cond.Origin != hir.OriginForLoopHasNext {
		return nil, nil
	}
	get, ok := cond.Receiver.(*hir.GetValue)
	if !ok {
		return nil, errors.InternalCompilerError(passName, "hasNext() is not called on an iterator variable",
			map[string]interface{}{"loop": hir.Describe(loop)})
	}
	info, ok := t.loops[get.Variable.ID]
	if !ok {
		t.stats.Skipped++
		t.logger.Printf("forloops: %s left in iterator form", loop.Span)
		return nil, nil
	}

	elem := info.Progression.Element
	ops, err := t.loopOperators(info)
	if err != nil {
		return nil, err
	}

	// The body holds the next-value declaration and any nested loops.
	var body hir.Statement
	if loop.Body != nil {
		body = t.Transform(loop.Body)
	}
	if t.err != nil {
		return nil, t.err
	}
	if info.LoopVariable == nil {
		return nil, errors.InternalCompilerError(passName, "loop variable was not lowered",
			map[string]interface{}{"iterator": info.iterator.Name, "loop": hir.Describe(loop)})
	}
	if block, ok := body.(*hir.Block); ok {
		body = &hir.Composite{ID: hir.NewID(), Statements: block.Statements, Type: hir.Unit, Span: block.Span}
	}

	b := t.builder.At(loop.Span)
	newLoop := b.DoWhile(loop.Label,
		b.Call(ops.not, b.Call(ops.equals, b.Get(info.LoopVariable), b.Get(info.Last))),
		body)
	newLoop.Origin = loop.Origin

	t.oldLoopToNewLoop[loop.ID] = newLoop
	info.consumed = true
	t.stats.Loops++

	if check := info.Progression.EmptyCheck; check != nil {
		return b.If(b.Call(ops.not, check), newLoop, nil), nil
	}
	var guarded hir.Statement = newLoop
	if !info.Progression.Closed {
		minValue := b.Const(elem.Type(), elem.MinValue())
		guarded = b.If(b.Call(ops.greater, b.Get(info.Bound), minValue), newLoop, nil)
	}
	return b.If(b.Call(ops.notEmpty, b.Get(info.Induction), b.Get(info.Last)), guarded, nil), nil
}

type loopOperators struct {
	not, equals, notEmpty, greater *hir.FunctionSymbol
}

// loopOperators resolves every operator the rewrite needs before anything is
// mutated, so a missing intrinsic never leaves a half rewritten loop.
func (t *transformer) loopOperators(info *ForLoopInfo) (loopOperators, error) {
	elem := info.Progression.Element
	cmp := intrinsics.IntrinsicLessOrEqual
	if !info.Progression.Increasing {
		cmp = intrinsics.IntrinsicGreaterOrEqual
	}

	var ops loopOperators
	var err error
	if ops.not, err = t.resolver.Intrinsic(intrinsics.IntrinsicNot, elem); err != nil {
		return ops, err
	}
	if ops.equals, err = t.resolver.Intrinsic(intrinsics.IntrinsicEquals, elem); err != nil {
		return ops, err
	}
	if info.Progression.EmptyCheck != nil {
		return ops, nil
	}
	if ops.notEmpty, err = t.resolver.Intrinsic(cmp, elem); err != nil {
		return ops, err
	}
	if !info.Progression.Closed {
		if ops.greater, err = t.resolver.Intrinsic(intrinsics.IntrinsicGreater, elem); err != nil {
			return ops, err
		}
	}
	return ops, nil
}
