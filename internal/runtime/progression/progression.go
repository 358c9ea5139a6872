// Package progression implements the runtime side of Int, Long and Char progressions:
// the safe last element primitive, step validation and the reference iterator
// semantics that lowered loops must reproduce.
package progression

import (
	"math"

	"github.com/orizon-lang/rangeloop/internal/errors"
	"github.com/orizon-lang/rangeloop/internal/intrinsics"
)

// lastElement returns the last value reachable from start by step without passing
// end. The distance between start and end is computed in uint64, where it always
// fits, so no intermediate value overflows even at the type boundaries.
func lastElement(start, end, step int64) int64 {
	switch {
	case step > 0:
		if start >= end {
			return end
		}
		dist := uint64(end) - uint64(start)
		return int64(uint64(end) - dist%uint64(step))
	default:
		if start <= end {
			return end
		}
		dist := uint64(start) - uint64(end)
		return int64(uint64(end) + dist%(0-uint64(step)))
	}
}

// LastElementInt is getProgressionLast for Int progressions.
func LastElementInt(start, end, step int32) (int32, error) {
	if step == 0 {
		return 0, errors.StepZero()
	}
	return int32(lastElement(int64(start), int64(end), int64(step))), nil
}

// LastElementLong is getProgressionLast for Long progressions.
func LastElementLong(start, end, step int64) (int64, error) {
	if step == 0 {
		return 0, errors.StepZero()
	}
	return lastElement(start, end, step), nil
}

// LastElementChar is getProgressionLast for Char progressions, whose step is an Int.
func LastElementChar(start, end uint16, step int32) (uint16, error) {
	if step == 0 {
		return 0, errors.StepZero()
	}
	return uint16(lastElement(int64(start), int64(end), int64(step))), nil
}

// LastElement dispatches on the element type. Values are carried as int64.
func LastElement(elem intrinsics.ElementType, start, end, step int64) (int64, error) {
	switch elem {
	case intrinsics.ElementInt:
		v, err := LastElementInt(int32(start), int32(end), int32(step))
		return int64(v), err
	case intrinsics.ElementChar:
		v, err := LastElementChar(uint16(start), uint16(end), int32(step))
		return int64(v), err
	default:
		return LastElementLong(start, end, step)
	}
}

// CheckStepInt returns step unchanged when it is positive.
func CheckStepInt(step int32) (int32, error) {
	if step > 0 {
		return step, nil
	}
	return 0, errors.StepNotPositive(int64(step))
}

// CheckStepLong returns step unchanged when it is positive.
func CheckStepLong(step int64) (int64, error) {
	if step > 0 {
		return step, nil
	}
	return 0, errors.StepNotPositive(step)
}

// Narrow truncates v to the width of elem, wrapping like the target arithmetic.
func Narrow(elem intrinsics.ElementType, v int64) int64 {
	switch elem {
	case intrinsics.ElementInt:
		return int64(int32(v))
	case intrinsics.ElementChar:
		return int64(uint16(v))
	default:
		return v
	}
}

// Progression is an arithmetic progression of one element type. First, Last and
// Step hold values already narrowed to the element width.
type Progression struct {
	Element intrinsics.ElementType
	First   int64
	Last    int64
	Step    int64
}

// FromClosedRange builds a progression from start towards endInclusive. As in the
// standard library, Last is trimmed to the last reachable element.
func FromClosedRange(elem intrinsics.ElementType, start, endInclusive, step int64) (Progression, error) {
	if step == 0 {
		return Progression{}, errors.NewStandardError(errors.CategoryRuntime, "STEP_ZERO",
			"Step must be non-zero.", nil)
	}
	if step == stepMin(elem) {
		return Progression{}, errors.NewStandardError(errors.CategoryRuntime, "STEP_OVERFLOW",
			"Step must be greater than the minimum value to avoid overflow on negation.",
			map[string]interface{}{"step": step})
	}
	last, err := LastElement(elem, start, endInclusive, step)
	if err != nil {
		return Progression{}, err
	}
	return Progression{Element: elem, First: start, Last: last, Step: step}, nil
}

func stepMin(elem intrinsics.ElementType) int64 {
	if elem == intrinsics.ElementLong {
		return math.MinInt64
	}
	return math.MinInt32
}

// Empty is the canonical empty range 1..0.
func Empty(elem intrinsics.ElementType) Progression {
	return Progression{Element: elem, First: 1, Last: 0, Step: 1}
}

// RangeTo is first..last.
func RangeTo(elem intrinsics.ElementType, first, last int64) Progression {
	return Progression{Element: elem, First: first, Last: last, Step: 1}
}

// Until is first until bound; empty when bound is the minimum of the element type.
func Until(elem intrinsics.ElementType, first, bound int64) Progression {
	if bound <= elem.MinValue() {
		return Empty(elem)
	}
	return RangeTo(elem, first, bound-1)
}

// DownTo is first downTo last.
func DownTo(elem intrinsics.ElementType, first, last int64) Progression {
	return Progression{Element: elem, First: first, Last: last, Step: -1}
}

// WithStep is `p step s`: s must be positive and keeps the direction of p. The new
// progression starts from p's first element and is bounded by p's last element.
func (p Progression) WithStep(s int64) (Progression, error) {
	if s <= 0 {
		return Progression{}, errors.StepNotPositive(s)
	}
	if p.Step < 0 {
		s = -s
	}
	return FromClosedRange(p.Element, p.First, p.Last, s)
}

// IsEmpty reports whether the progression has no elements.
func (p Progression) IsEmpty() bool {
	if p.Step > 0 {
		return p.First > p.Last
	}
	return p.First < p.Last
}

// Contains reports whether v is one of the elements of p.
func (p Progression) Contains(v int64) bool {
	if p.IsEmpty() {
		return false
	}
	if p.Step > 0 {
		return p.First <= v && v <= p.Last && (uint64(v)-uint64(p.First))%uint64(p.Step) == 0
	}
	return p.Last <= v && v <= p.First && (uint64(p.First)-uint64(v))%uint64(-p.Step) == 0
}

// Iterator returns an iterator positioned before the first element.
func (p Progression) Iterator() *Iterator {
	it := &Iterator{elem: p.Element, final: p.Last, step: p.Step, hasNext: !p.IsEmpty()}
	if it.hasNext {
		it.next = p.First
	} else {
		it.next = p.Last
	}
	return it
}

// Iterator walks a progression.
type Iterator struct {
	elem    intrinsics.ElementType
	final   int64
	step    int64
	next    int64
	hasNext bool
}

func (it *Iterator) HasNext() bool { return it.hasNext }

// Next returns the next element. It fails when the iterator is exhausted.
func (it *Iterator) Next() (int64, error) {
	value := it.next
	if value == it.final {
		if !it.hasNext {
			return 0, errors.NewStandardError(errors.CategoryRuntime, "NO_SUCH_ELEMENT",
				"iterator is exhausted", nil)
		}
		it.hasNext = false
	} else {
		it.next = Narrow(it.elem, it.next+it.step)
	}
	return value, nil
}

// Values collects at most limit elements of p.
func (p Progression) Values(limit int) []int64 {
	var out []int64
	for it := p.Iterator(); it.HasNext() && len(out) < limit; {
		v, _ := it.Next()
		out = append(out, v)
	}
	return out
}
