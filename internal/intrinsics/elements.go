package intrinsics

import (
	"math"

	"github.com/orizon-lang/rangeloop/internal/hir"
)

// ElementType is the element type of a supported progression.
type ElementType int

const (
	ElementInt ElementType = iota
	ElementLong
	ElementChar
)

// Elements lists every element type in table order.
var Elements = [...]ElementType{ElementInt, ElementLong, ElementChar}

func (e ElementType) String() string {
	switch e {
	case ElementInt:
		return "Int"
	case ElementLong:
		return "Long"
	case ElementChar:
		return "Char"
	default:
		return "<invalid element>"
	}
}

// Type returns the primitive type of the elements.
func (e ElementType) Type() hir.Type {
	switch e {
	case ElementLong:
		return hir.Long
	case ElementChar:
		return hir.Char
	default:
		return hir.Int
	}
}

// StepType is Long for Long progressions and Int otherwise.
func (e ElementType) StepType() hir.Type {
	if e == ElementLong {
		return hir.Long
	}
	return hir.Int
}

// StepElement is the element type whose operators apply to the step.
func (e ElementType) StepElement() ElementType {
	if e == ElementLong {
		return ElementLong
	}
	return ElementInt
}

func (e ElementType) ProgressionType() hir.Type {
	switch e {
	case ElementLong:
		return hir.LongProgression
	case ElementChar:
		return hir.CharProgression
	default:
		return hir.IntProgression
	}
}

func (e ElementType) RangeType() hir.Type {
	switch e {
	case ElementLong:
		return hir.LongRange
	case ElementChar:
		return hir.CharRange
	default:
		return hir.IntRange
	}
}

func (e ElementType) IteratorType() hir.Type {
	switch e {
	case ElementLong:
		return hir.LongIterator
	case ElementChar:
		return hir.CharIterator
	default:
		return hir.IntIterator
	}
}

// MinValue is the smallest representable element.
func (e ElementType) MinValue() int64 {
	switch e {
	case ElementLong:
		return math.MinInt64
	case ElementChar:
		return 0
	default:
		return math.MinInt32
	}
}

// MaxValue is the largest representable element.
func (e ElementType) MaxValue() int64 {
	switch e {
	case ElementLong:
		return math.MaxInt64
	case ElementChar:
		return math.MaxUint16
	default:
		return math.MaxInt32
	}
}

// UnitStep is the default step of a progression in the given direction.
func (e ElementType) UnitStep(increasing bool) int64 {
	if increasing {
		return 1
	}
	return -1
}

// ElementOf maps a primitive type to its element type.
func ElementOf(t hir.Type) (ElementType, bool) {
	switch t.Kind {
	case hir.TypeKindInt:
		return ElementInt, true
	case hir.TypeKindLong:
		return ElementLong, true
	case hir.TypeKindChar:
		return ElementChar, true
	}
	return 0, false
}

// ProgressionElement classifies t against the three progression types. It reports
// false when t is not a subtype of any of them.
func ProgressionElement(t hir.Type) (ElementType, bool) {
	for _, e := range Elements {
		if t.IsSubtypeOf(e.ProgressionType()) {
			return e, true
		}
	}
	return 0, false
}
