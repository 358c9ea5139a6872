package forloops

import (
	"github.com/orizon-lang/rangeloop/internal/errors"
	"github.com/orizon-lang/rangeloop/internal/hir"
	"github.com/orizon-lang/rangeloop/internal/intrinsics"
)

// ForLoopInfo is the lowered header of one for-loop, keyed by its iterator variable.
type ForLoopInfo struct {
	Progression *ProgressionInfo
	Induction   *hir.Variable
	Bound       *hir.Variable
	Last        *hir.Variable
	Step        *hir.Variable
	// LoopVariable is set when the next-value declaration is lowered.
	LoopVariable *hir.Variable

	iterator *hir.Variable
	consumed bool
}

// lowerHeader replaces the iterator declaration
//
//	val it = (first..bound step s).iterator()
//
// with the temporaries
//
//	var inductionVariable = first
//	val bound = bound
//	val step = s            // negated for decreasing progressions
//	val last = getProgressionLast(inductionVariable, bound, step)
//
// and records a ForLoopInfo for it. It returns nil when the iterable is not a
// recognized progression.
func (t *transformer) lowerHeader(v *hir.Variable, init *hir.Call) (hir.Statement, error) {
	if init.Receiver == nil || !v.Type.NotNull().IsSubtypeOf(hir.Iterator) {
		return nil, nil
	}
	if _, dup := t.loops[v.ID]; dup {
		return nil, errors.InternalCompilerError(passName, "iterator lowered twice",
			map[string]interface{}{"iterator": v.Name})
	}

	info, err := t.recognizer.recognize(init.Receiver)
	if info == nil || err != nil {
		return nil, err
	}

	b := t.builder.At(v.Span)
	elem := info.Element
	var stmts []hir.Statement

	first, err := t.narrow(b, info.First, elem)
	if err != nil {
		return nil, err
	}
	induction := t.temporary(b, "inductionVariable", first, true)
	stmts = append(stmts, induction)

	boundExpr, err := t.narrow(b, info.Bound, elem)
	if err != nil {
		return nil, err
	}
	bound := t.temporary(b, "bound", boundExpr, false)
	stmts = append(stmts, bound)

	// last is the inclusive end of the progression so far: dec(bound) for open ranges.
	var last hir.Expression
	if !info.Closed {
		dec, err := t.resolver.Intrinsic(intrinsics.IntrinsicDec, elem)
		if err != nil {
			return nil, err
		}
		last = b.Call(dec, b.Get(bound))
	}
	lastOrBound := func() hir.Expression {
		if last != nil {
			return last
		}
		return b.Get(bound)
	}

	// Every link of a step chain but the final one trims the end of the
	// progression before the next step applies.
	links := stepLinks(info.Step)
	for i := 0; i < len(links)-1; i++ {
		stepExpr, err := t.orientStep(b, links[i], info)
		if err != nil {
			return nil, err
		}
		step := t.temporary(b, "step", stepExpr, false)
		stmts = append(stmts, step)
		if isUnitStep(links[i]) {
			continue
		}
		lastExpr, err := t.progressionLast(b, elem, induction, lastOrBound(), step)
		if err != nil {
			return nil, err
		}
		trimmed := t.temporary(b, "last", lastExpr, false)
		stmts = append(stmts, trimmed)
		last = b.Get(trimmed)
	}

	var stepExpr hir.Expression
	if len(links) == 0 {
		stepExpr = b.Const(elem.StepType(), elem.UnitStep(info.Increasing))
	} else if stepExpr, err = t.orientStep(b, links[len(links)-1], info); err != nil {
		return nil, err
	}
	step := t.temporary(b, "step", stepExpr, false)
	stmts = append(stmts, step)

	lastExpr := lastOrBound()
	if info.NeedsLastCalculation {
		if lastExpr, err = t.progressionLast(b, elem, induction, lastExpr, step); err != nil {
			return nil, err
		}
	}
	lastVar := t.temporary(b, "last", lastExpr, false)
	stmts = append(stmts, lastVar)

	t.loops[v.ID] = &ForLoopInfo{
		Progression: info,
		Induction:   induction,
		Bound:       bound,
		Last:        lastVar,
		Step:        step,
		iterator:    v,
	}
	t.order = append(t.order, v.ID)
	t.stats.Headers++

	return b.Composite(hir.OriginNone, hir.Unit, stmts...), nil
}

func (t *transformer) temporary(b *hir.Builder, hint string, init hir.Expression, mutable bool) *hir.Variable {
	v := b.Temporary(hint, init, mutable)
	v.Origin = hir.OriginForLoopImplicitVariable
	return v
}

// narrow converts e to the element type when its own type differs.
func (t *transformer) narrow(b *hir.Builder, e hir.Expression, elem intrinsics.ElementType) (hir.Expression, error) {
	from, ok := intrinsics.ElementOf(t.resolver.ExpressionType(e).NotNull())
	if !ok {
		return nil, errors.InternalCompilerError(passName, "progression bound is not a number",
			map[string]interface{}{"type": t.resolver.ExpressionType(e).String()})
	}
	cast, err := t.resolver.Cast(from, elem)
	if err != nil || cast == nil {
		return e, err
	}
	return b.Call(cast, e), nil
}

// orientStep negates a validated positive step for decreasing progressions and
// strips nullability.
func (t *transformer) orientStep(b *hir.Builder, step hir.Expression, info *ProgressionInfo) (hir.Expression, error) {
	if !info.Increasing {
		neg, err := t.resolver.Intrinsic(intrinsics.IntrinsicUnaryMinus, info.Element)
		if err != nil {
			return nil, err
		}
		step = b.Call(neg, step)
	}
	if t.resolver.ExpressionType(step).Nullable {
		step = b.NotNull(step)
	}
	return step, nil
}

func (t *transformer) progressionLast(b *hir.Builder, elem intrinsics.ElementType, first *hir.Variable,
	last hir.Expression, step *hir.Variable) (hir.Expression, error) {
	fn, err := t.resolver.Intrinsic(intrinsics.IntrinsicProgressionLast, elem)
	if err != nil {
		return nil, err
	}
	return b.Call(fn, nil, b.Get(first), last, b.Get(step)), nil
}
