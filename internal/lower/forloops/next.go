package forloops

import (
	"github.com/orizon-lang/rangeloop/internal/errors"
	"github.com/orizon-lang/rangeloop/internal/hir"
	"github.com/orizon-lang/rangeloop/internal/intrinsics"
)

// lowerNext rewrites `val x = it.next()` for a lowered header into
//
//	val x = inductionVariable
//	inductionVariable = inductionVariable + step
//
// and remembers x as the loop variable.
func (t *transformer) lowerNext(v *hir.Variable, init *hir.Call) (hir.Statement, error) {
	get, ok := init.Receiver.(*hir.GetValue)
	if !ok {
		return nil, errors.InternalCompilerError(passName, "next() is not called on an iterator variable",
			map[string]interface{}{"variable": v.Name, "receiver": describe(init.Receiver)})
	}
	info, ok := t.loops[get.Variable.ID]
	if !ok {
		return nil, nil
	}

	plus, err := t.resolver.Intrinsic(intrinsics.IntrinsicPlus, info.Progression.Element)
	if err != nil {
		return nil, err
	}

	b := t.builder.At(init.Span)
	info.LoopVariable = v
	v.Initializer = b.Get(info.Induction)
	increment := b.Set(info.Induction, b.Call(plus, b.Get(info.Induction), b.Get(info.Step)))

	return t.builder.At(v.Span).Composite(hir.OriginForLoopNext, hir.Unit, v, increment), nil
}

func describe(n hir.Node) string {
	if n == nil {
		return "<nil>"
	}
	return hir.Describe(n)
}
