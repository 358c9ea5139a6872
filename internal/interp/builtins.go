package interp

import (
	"fmt"

	"github.com/orizon-lang/rangeloop/internal/intrinsics"
	"github.com/orizon-lang/rangeloop/internal/runtime/progression"
)

// builtin evaluates an intrinsic on already evaluated operands.
func builtin(info *intrinsics.IntrinsicInfo, recv *Value, args []Value) (Value, error) {
	elem := info.Element
	operands := make([]Value, 0, len(args)+1)
	if recv != nil {
		operands = append(operands, *recv)
	}
	operands = append(operands, args...)

	bad := func() (Value, error) {
		return Unit, runtimeError("BAD_OPERANDS",
			fmt.Sprintf("bad operands for %s", info.Symbol.Signature()),
			map[string]interface{}{"operands": fmt.Sprint(operands)})
	}
	nums := func(n int) ([]int64, bool) {
		if len(operands) != n {
			return nil, false
		}
		out := make([]int64, n)
		for i, v := range operands {
			if !v.IsNumber() {
				return nil, false
			}
			out[i] = v.Num()
		}
		return out, true
	}

	switch info.Kind {
	case intrinsics.IntrinsicRangeTo, intrinsics.IntrinsicUntil, intrinsics.IntrinsicDownTo:
		n, ok := nums(2)
		if !ok {
			return bad()
		}
		var p progression.Progression
		switch info.Kind {
		case intrinsics.IntrinsicRangeTo:
			p = progression.RangeTo(elem, n[0], n[1])
		case intrinsics.IntrinsicUntil:
			p = progression.Until(elem, n[0], n[1])
		default:
			p = progression.DownTo(elem, n[0], n[1])
		}
		return Value{Tag: VTProgression, Data: p}, nil

	case intrinsics.IntrinsicIndices:
		list, ok := listOperand(operands)
		if !ok {
			return bad()
		}
		return Value{Tag: VTProgression, Data: progression.RangeTo(elem, 0, int64(len(list))-1)}, nil

	case intrinsics.IntrinsicLastIndex:
		list, ok := listOperand(operands)
		if !ok {
			return bad()
		}
		return Int(int32(len(list) - 1)), nil

	case intrinsics.IntrinsicStep:
		if len(operands) != 2 || operands[0].Tag != VTProgression || !operands[1].IsNumber() {
			return bad()
		}
		p, err := operands[0].Data.(progression.Progression).WithStep(operands[1].Num())
		if err != nil {
			return Unit, err
		}
		return Value{Tag: VTProgression, Data: p}, nil

	case intrinsics.IntrinsicIterator:
		if len(operands) != 1 || operands[0].Tag != VTProgression {
			return bad()
		}
		return Value{Tag: VTIterator, Data: operands[0].Data.(progression.Progression).Iterator()}, nil

	case intrinsics.IntrinsicHasNext, intrinsics.IntrinsicNext:
		if len(operands) != 1 || operands[0].Tag != VTIterator {
			return bad()
		}
		it := operands[0].Data.(*progression.Iterator)
		if info.Kind == intrinsics.IntrinsicHasNext {
			return Bool(it.HasNext()), nil
		}
		v, err := it.Next()
		if err != nil {
			return Unit, err
		}
		return Number(elem, v), nil

	case intrinsics.IntrinsicDec:
		n, ok := nums(1)
		if !ok {
			return bad()
		}
		return Number(elem, n[0]-1), nil

	case intrinsics.IntrinsicPlus:
		n, ok := nums(2)
		if !ok {
			return bad()
		}
		return Number(elem, n[0]+n[1]), nil

	case intrinsics.IntrinsicUnaryMinus:
		n, ok := nums(1)
		if !ok {
			return bad()
		}
		return Number(elem, -n[0]), nil

	case intrinsics.IntrinsicCast:
		n, ok := nums(1)
		if !ok {
			return bad()
		}
		return Number(elem, n[0]), nil

	case intrinsics.IntrinsicLess, intrinsics.IntrinsicLessOrEqual, intrinsics.IntrinsicGreater,
		intrinsics.IntrinsicGreaterOrEqual, intrinsics.IntrinsicEquals:
		n, ok := nums(2)
		if !ok {
			return bad()
		}
		return Bool(compare(info.Kind, n[0], n[1])), nil

	case intrinsics.IntrinsicNot:
		if len(operands) != 1 || operands[0].Tag != VTBool {
			return bad()
		}
		return Bool(!operands[0].Truth()), nil

	case intrinsics.IntrinsicProgressionLast:
		n, ok := nums(3)
		if !ok {
			return bad()
		}
		last, err := progression.LastElement(elem, n[0], n[1], n[2])
		if err != nil {
			return Unit, err
		}
		return Number(elem, last), nil

	case intrinsics.IntrinsicFirst, intrinsics.IntrinsicLast, intrinsics.IntrinsicStepValue, intrinsics.IntrinsicIsEmpty:
		if len(operands) != 1 || operands[0].Tag != VTProgression {
			return bad()
		}
		p := operands[0].Data.(progression.Progression)
		switch info.Kind {
		case intrinsics.IntrinsicFirst:
			return Number(elem, p.First), nil
		case intrinsics.IntrinsicLast:
			return Number(elem, p.Last), nil
		case intrinsics.IntrinsicStepValue:
			return Number(elem.StepElement(), p.Step), nil
		}
		return Bool(p.IsEmpty()), nil

	case intrinsics.IntrinsicContains:
		if len(operands) != 2 || operands[0].Tag != VTProgression || !operands[1].IsNumber() {
			return bad()
		}
		return Bool(operands[0].Data.(progression.Progression).Contains(operands[1].Num())), nil

	case intrinsics.IntrinsicAnd:
		if len(operands) != 2 || operands[0].Tag != VTBool || operands[1].Tag != VTBool {
			return bad()
		}
		return Bool(operands[0].Truth() && operands[1].Truth()), nil

	case intrinsics.IntrinsicCheckStep:
		n, ok := nums(1)
		if !ok {
			return bad()
		}
		if elem == intrinsics.ElementLong {
			s, err := progression.CheckStepLong(n[0])
			return Long(s), err
		}
		s, err := progression.CheckStepInt(int32(n[0]))
		return Int(s), err
	}
	return bad()
}

func listOperand(operands []Value) ([]Value, bool) {
	if len(operands) != 1 || operands[0].Tag != VTList {
		return nil, false
	}
	return operands[0].Data.([]Value), true
}

func compare(kind intrinsics.IntrinsicKind, a, b int64) bool {
	switch kind {
	case intrinsics.IntrinsicLess:
		return a < b
	case intrinsics.IntrinsicLessOrEqual:
		return a <= b
	case intrinsics.IntrinsicGreater:
		return a > b
	case intrinsics.IntrinsicGreaterOrEqual:
		return a >= b
	default:
		return a == b
	}
}
