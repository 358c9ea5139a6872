package intrinsics

import "github.com/orizon-lang/rangeloop/internal/hir"

func fn(name string, receiver *hir.Type, ret hir.Type, params ...hir.Type) *hir.FunctionSymbol {
	var recv *hir.Type
	if receiver != nil {
		t := *receiver
		recv = &t
	}
	return &hir.FunctionSymbol{Name: name, Receiver: recv, Params: params, Return: ret}
}

func typ(t hir.Type) *hir.Type { return &t }

// builderOperands lists the receiver/argument combinations the language allows for
// rangeTo, until and downTo, with the element type of the resulting progression.
var builderOperands = []struct {
	receiver, argument, result ElementType
}{
	{ElementInt, ElementInt, ElementInt},
	{ElementInt, ElementLong, ElementLong},
	{ElementLong, ElementInt, ElementLong},
	{ElementLong, ElementLong, ElementLong},
	{ElementChar, ElementChar, ElementChar},
}

func registerBuilders(r *IntrinsicRegistry) {
	for _, ops := range builderOperands {
		recv := ops.receiver.Type()
		arg := ops.argument.Type()
		operands := []ElementType{ops.receiver, ops.argument}

		// a..b and a until b produce ranges; a downTo b produces a progression
		r.Register(&IntrinsicInfo{
			Symbol:   fn("rangeTo", &recv, ops.result.RangeType(), arg),
			Kind:     IntrinsicRangeTo,
			Category: CategoryBuilder,
			Element:  ops.result,
			Operands: operands,
		})
		r.Register(&IntrinsicInfo{
			Symbol:   fn("until", &recv, ops.result.RangeType(), arg),
			Kind:     IntrinsicUntil,
			Category: CategoryBuilder,
			Element:  ops.result,
			Operands: operands,
		})
		r.Register(&IntrinsicInfo{
			Symbol:   fn("downTo", &recv, ops.result.ProgressionType(), arg),
			Kind:     IntrinsicDownTo,
			Category: CategoryBuilder,
			Element:  ops.result,
			Operands: operands,
		})
	}

	// list.indices is the progression 0..list.lastIndex()
	r.Register(&IntrinsicInfo{
		Symbol:   fn("indices", typ(hir.List), hir.IntRange),
		Kind:     IntrinsicIndices,
		Category: CategoryBuilder,
		Element:  ElementInt,
	})

	for _, e := range Elements {
		r.Register(&IntrinsicInfo{
			Symbol:   fn("step", typ(e.ProgressionType()), e.ProgressionType(), e.StepType()),
			Kind:     IntrinsicStep,
			Category: CategoryBuilder,
			Element:  e,
			Operands: []ElementType{e, e.StepElement()},
		})
	}
}

func registerIteratorProtocol(r *IntrinsicRegistry) {
	for _, e := range Elements {
		r.Register(&IntrinsicInfo{
			Symbol:   fn("iterator", typ(e.ProgressionType()), e.IteratorType()),
			Kind:     IntrinsicIterator,
			Category: CategoryIterator,
			Element:  e,
		})
		r.Register(&IntrinsicInfo{
			Symbol:   fn("hasNext", typ(e.IteratorType()), hir.Boolean),
			Kind:     IntrinsicHasNext,
			Category: CategoryIterator,
			Element:  e,
		})
		r.Register(&IntrinsicInfo{
			Symbol:   fn("next", typ(e.IteratorType()), e.Type()),
			Kind:     IntrinsicNext,
			Category: CategoryIterator,
			Element:  e,
		})
	}
}

var castNames = [...]string{ElementInt: "toInt", ElementLong: "toLong", ElementChar: "toChar"}

var comparisons = []IntrinsicKind{
	IntrinsicLess, IntrinsicLessOrEqual, IntrinsicGreater, IntrinsicGreaterOrEqual, IntrinsicEquals,
}

func registerOperators(r *IntrinsicRegistry) {
	for _, e := range Elements {
		t := e.Type()
		r.Register(&IntrinsicInfo{
			Symbol:   fn("dec", &t, t),
			Kind:     IntrinsicDec,
			Category: CategoryArithmetic,
			Element:  e,
		})
		r.Register(&IntrinsicInfo{
			Symbol:   fn("plus", &t, t, e.StepType()),
			Kind:     IntrinsicPlus,
			Category: CategoryArithmetic,
			Element:  e,
		})
		for _, kind := range comparisons {
			r.Register(&IntrinsicInfo{
				Symbol:   fn(kind.String(), &t, hir.Boolean, t),
				Kind:     kind,
				Category: CategoryComparison,
				Element:  e,
			})
		}
		for _, to := range Elements {
			if to == e {
				continue
			}
			r.Register(&IntrinsicInfo{
				Symbol:   fn(castNames[to], &t, to.Type()),
				Kind:     IntrinsicCast,
				Category: CategoryArithmetic,
				Element:  to,
				Operands: []ElementType{e},
			})
		}
	}

	// Negation applies to steps, which are never Char.
	for _, e := range []ElementType{ElementInt, ElementLong} {
		t := e.Type()
		r.Register(&IntrinsicInfo{
			Symbol:   fn("unaryMinus", &t, t),
			Kind:     IntrinsicUnaryMinus,
			Category: CategoryArithmetic,
			Element:  e,
		})
	}
	r.table[tableKey{IntrinsicUnaryMinus, ElementChar}] = r.table[tableKey{IntrinsicUnaryMinus, ElementInt}]

	r.Register(&IntrinsicInfo{
		Symbol:   fn("not", typ(hir.Boolean), hir.Boolean),
		Kind:     IntrinsicNot,
		Category: CategoryComparison,
		Element:  ElementInt,
	})
	// and evaluates both operands.
	r.Register(&IntrinsicInfo{
		Symbol:   fn("and", typ(hir.Boolean), hir.Boolean, hir.Boolean),
		Kind:     IntrinsicAnd,
		Category: CategoryComparison,
		Element:  ElementInt,
	})
}

func registerRuntime(r *IntrinsicRegistry) {
	for _, e := range Elements {
		t := e.Type()
		r.Register(&IntrinsicInfo{
			Symbol:   fn("getProgressionLast", nil, t, t, t, e.StepType()),
			Kind:     IntrinsicProgressionLast,
			Category: CategoryRuntime,
			Element:  e,
		})
	}
	for _, e := range []ElementType{ElementInt, ElementLong} {
		t := e.Type()
		r.Register(&IntrinsicInfo{
			Symbol:   fn("checkProgressionStep", nil, t, t),
			Kind:     IntrinsicCheckStep,
			Category: CategoryRuntime,
			Element:  e,
		})
	}
	r.table[tableKey{IntrinsicCheckStep, ElementChar}] = r.table[tableKey{IntrinsicCheckStep, ElementInt}]

	r.Register(&IntrinsicInfo{
		Symbol:   fn("lastIndex", typ(hir.List), hir.Int),
		Kind:     IntrinsicLastIndex,
		Category: CategoryRuntime,
		Element:  ElementInt,
	})
}

// registerProperties adds the read-only properties of progression objects and the
// membership test behind `x in p`.
func registerProperties(r *IntrinsicRegistry) {
	for _, e := range Elements {
		p := e.ProgressionType()
		props := []struct {
			kind IntrinsicKind
			name string
			ret  hir.Type
		}{
			{IntrinsicFirst, "first", e.Type()},
			{IntrinsicLast, "last", e.Type()},
			{IntrinsicStepValue, "step", e.StepType()},
			{IntrinsicIsEmpty, "isEmpty", hir.Boolean},
		}
		for _, prop := range props {
			r.Register(&IntrinsicInfo{
				Symbol:   fn(prop.name, &p, prop.ret),
				Kind:     prop.kind,
				Category: CategoryProperty,
				Element:  e,
			})
		}
		r.Register(&IntrinsicInfo{
			Symbol:   fn("contains", &p, hir.Boolean, e.Type()),
			Kind:     IntrinsicContains,
			Category: CategoryComparison,
			Element:  e,
		})
	}
}
