package forloops

import (
	"github.com/orizon-lang/rangeloop/internal/hir"
	"github.com/orizon-lang/rangeloop/internal/intrinsics"
)

// membership rewrites
//
//	x in first..bound
//
// into
//
//	{ val left = first; val right = bound; val value = x; left <= value and value <= right }
//
// with the comparisons flipped for decreasing progressions and the right one strict
// for open ranges. Only unit-step progressions whose ends and operand share one
// element type are rewritten; anything else is returned unchanged with its children
// transformed.
func (t *transformer) membership(call *hir.Call) (hir.Statement, error) {
	hir.TransformChildren(t, call)
	if t.err != nil {
		return call, t.err
	}
	if call.Receiver == nil || len(call.Args) != 1 {
		return call, nil
	}
	info, err := t.recognizer.recognize(call.Receiver)
	if info == nil || err != nil {
		return call, err
	}
	if info.Step != nil || info.EmptyCheck != nil {
		return call, nil
	}
	for _, e := range []hir.Expression{info.First, info.Bound, call.Args[0]} {
		typ := t.resolver.ExpressionType(e)
		if elem, ok := intrinsics.ElementOf(typ); !ok || typ.Nullable || elem != info.Element {
			return call, nil
		}
	}

	left, right := intrinsics.IntrinsicLessOrEqual, intrinsics.IntrinsicLessOrEqual
	if !info.Closed {
		right = intrinsics.IntrinsicLess
	}
	if !info.Increasing {
		left, right = intrinsics.IntrinsicGreaterOrEqual, intrinsics.IntrinsicGreaterOrEqual
		if !info.Closed {
			right = intrinsics.IntrinsicGreater
		}
	}
	var ops [3]*hir.FunctionSymbol
	for i, kind := range []intrinsics.IntrinsicKind{left, right, intrinsics.IntrinsicAnd} {
		if ops[i], err = t.resolver.Intrinsic(kind, info.Element); err != nil {
			return call, err
		}
	}

	b := t.builder.At(call.Span)
	lo := b.Temporary("leftBound", info.First, false)
	hi := b.Temporary("rightBound", info.Bound, false)
	value := b.Temporary("value", call.Args[0], false)
	t.stats.Contains++
	return b.Composite(hir.OriginNone, hir.Boolean, lo, hi, value,
		b.Call(ops[2],
			b.Call(ops[0], b.Get(lo), b.Get(value)),
			b.Call(ops[1], b.Get(value), b.Get(hi)))), nil
}
