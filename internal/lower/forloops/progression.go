package forloops

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/orizon-lang/rangeloop/internal/hir"
	"github.com/orizon-lang/rangeloop/internal/intrinsics"
)

// ProgressionInfo describes a progression recognized in an iterable expression.
// First, Bound and Step are the source expressions; they are moved, not copied, into
// the lowered loop header.
type ProgressionInfo struct {
	Element intrinsics.ElementType
	First   hir.Expression
	Bound   hir.Expression
	// Step is nil for the default unit step. Chained steps are collected into a
	// Composite with origin StepChain, one validated step per link.
	Step                 hir.Expression
	Increasing           bool
	Closed               bool
	NeedsLastCalculation bool
	// EmptyCheck is set when the progression is an existing object: First, Bound
	// and Step read its properties, Bound is its last element, and the loop is
	// guarded by !EmptyCheck instead of comparing first and last.
	EmptyCheck hir.Expression
}

type recognizer struct {
	resolver Resolver
	builder  *hir.Builder

	rangeTo *set.Set[*hir.FunctionSymbol]
	until   *set.Set[*hir.FunctionSymbol]
	downTo  *set.Set[*hir.FunctionSymbol]
	step    *set.Set[*hir.FunctionSymbol]
	indices *set.Set[*hir.FunctionSymbol]
}

func newRecognizer(r Resolver, b *hir.Builder) *recognizer {
	return &recognizer{
		resolver: r,
		builder:  b,
		rangeTo:  set.From(r.Builders(intrinsics.IntrinsicRangeTo)),
		until:    set.From(r.Builders(intrinsics.IntrinsicUntil)),
		downTo:   set.From(r.Builders(intrinsics.IntrinsicDownTo)),
		step:     set.From(r.Builders(intrinsics.IntrinsicStep)),
		indices:  set.From(r.Builders(intrinsics.IntrinsicIndices)),
	}
}

// recognize returns the progression built by e, or nil when e is not a recognized
// builder call. An error means a required intrinsic is missing.
func (rc *recognizer) recognize(e hir.Expression) (*ProgressionInfo, error) {
	if get, ok := e.(*hir.GetValue); ok {
		return rc.variable(get)
	}
	call, ok := e.(*hir.Call)
	if !ok {
		return nil, nil
	}
	elem, ok := intrinsics.ProgressionElement(rc.resolver.ExpressionType(call))
	if !ok {
		return nil, nil
	}

	sym := rc.resolver.ResolveCall(call)
	switch {
	case rc.rangeTo.Contains(sym):
		return rc.builderCall(call, elem, true, true), nil
	case rc.until.Contains(sym):
		return rc.builderCall(call, elem, true, false), nil
	case rc.downTo.Contains(sym):
		return rc.builderCall(call, elem, false, true), nil
	case rc.indices.Contains(sym):
		return rc.indicesCall(call, elem)
	case rc.step.Contains(sym):
		return rc.stepCall(call, elem)
	}
	return nil, nil
}

func (rc *recognizer) builderCall(call *hir.Call, elem intrinsics.ElementType, increasing, closed bool) *ProgressionInfo {
	if call.Receiver == nil || len(call.Args) != 1 {
		return nil
	}
	return &ProgressionInfo{
		Element:    elem,
		First:      call.Receiver,
		Bound:      call.Args[0],
		Increasing: increasing,
		Closed:     closed,
	}
}

// variable recognizes a read of a progression-typed variable. The variable is read
// once per property, which is safe because reads have no side effects.
func (rc *recognizer) variable(get *hir.GetValue) (*ProgressionInfo, error) {
	elem, ok := intrinsics.ProgressionElement(rc.resolver.ExpressionType(get))
	if !ok || get.Variable == nil {
		return nil, nil
	}
	var props [4]*hir.FunctionSymbol
	for i, kind := range []intrinsics.IntrinsicKind{
		intrinsics.IntrinsicFirst, intrinsics.IntrinsicLast, intrinsics.IntrinsicStepValue, intrinsics.IntrinsicIsEmpty,
	} {
		sym, err := rc.resolver.Intrinsic(kind, elem)
		if err != nil {
			return nil, err
		}
		props[i] = sym
	}
	b := rc.builder.At(get.Span)
	return &ProgressionInfo{
		Element:    elem,
		First:      b.Call(props[0], get),
		Bound:      b.Call(props[1], b.Get(get.Variable)),
		Step:       b.Call(props[2], b.Get(get.Variable)),
		Increasing: true,
		Closed:     true,
		EmptyCheck: b.Call(props[3], b.Get(get.Variable)),
	}, nil
}

// indicesCall recognizes list.indices as 0..list.lastIndex().
func (rc *recognizer) indicesCall(call *hir.Call, elem intrinsics.ElementType) (*ProgressionInfo, error) {
	if call.Receiver == nil {
		return nil, nil
	}
	lastIndex, err := rc.resolver.Intrinsic(intrinsics.IntrinsicLastIndex, elem)
	if err != nil {
		return nil, err
	}
	b := rc.builder.At(call.Span)
	return &ProgressionInfo{
		Element:    elem,
		First:      b.Int(0),
		Bound:      b.Call(lastIndex, call.Receiver),
		Increasing: true,
		Closed:     true,
	}, nil
}

func (rc *recognizer) stepCall(call *hir.Call, elem intrinsics.ElementType) (*ProgressionInfo, error) {
	if call.Receiver == nil || len(call.Args) != 1 {
		return nil, nil
	}
	inner, err := rc.recognize(call.Receiver)
	if inner == nil || err != nil {
		return nil, err
	}
	// The direction of an existing progression is only known at run time.
	if inner.EmptyCheck != nil {
		return nil, nil
	}

	check, needsLast, err := rc.checkStep(elem, call.Args[0])
	if err != nil {
		return nil, err
	}

	step := check
	if inner.Step != nil {
		// Earlier steps stay in the chain so they are evaluated in source order.
		if chain, ok := inner.Step.(*hir.Composite); ok && chain.Origin == hir.OriginStepChain {
			chain.Statements = append(chain.Statements, check)
			step = chain
		} else {
			step = rc.builder.At(call.Span).Composite(hir.OriginStepChain, check.GetType(), inner.Step, check)
		}
		needsLast = needsLast || inner.NeedsLastCalculation
	}

	return &ProgressionInfo{
		Element:              elem,
		First:                inner.First,
		Bound:                inner.Bound,
		Step:                 step,
		Increasing:           inner.Increasing,
		Closed:               inner.Closed,
		NeedsLastCalculation: needsLast,
	}, nil
}

// checkStep folds a positive constant step and wraps anything else in the runtime
// positivity check. It also reports whether the last element must be recomputed.
func (rc *recognizer) checkStep(elem intrinsics.ElementType, step hir.Expression) (hir.Expression, bool, error) {
	if c, ok := positiveConst(step); ok {
		return step, c.Value != 1, nil
	}
	check, err := rc.resolver.Intrinsic(intrinsics.IntrinsicCheckStep, elem)
	if err != nil {
		return nil, false, err
	}
	return rc.builder.At(step.GetSpan()).Call(check, nil, step), true, nil
}

func positiveConst(e hir.Expression) (*hir.Const, bool) {
	c, ok := e.(*hir.Const)
	if !ok || c.Value <= 0 {
		return nil, false
	}
	if c.Type.Kind != hir.TypeKindInt && c.Type.Kind != hir.TypeKindLong {
		return nil, false
	}
	return c, true
}

// stepLinks splits a step expression into the validated steps of its chain.
func stepLinks(step hir.Expression) []hir.Expression {
	if step == nil {
		return nil
	}
	chain, ok := step.(*hir.Composite)
	if !ok || chain.Origin != hir.OriginStepChain {
		return []hir.Expression{step}
	}
	links := make([]hir.Expression, 0, len(chain.Statements))
	for _, s := range chain.Statements {
		if e, ok := s.(hir.Expression); ok {
			links = append(links, e)
		}
	}
	return links
}

func isUnitStep(e hir.Expression) bool {
	c, ok := positiveConst(e)
	return ok && c.Value == 1
}
