package forloops

import (
	"context"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/orizon-lang/rangeloop/internal/hir"
	"github.com/orizon-lang/rangeloop/internal/hir/hirtest"
	"github.com/orizon-lang/rangeloop/internal/intrinsics"
	"github.com/orizon-lang/rangeloop/internal/runtime/progression"
)

// maxTrips keeps the grid to progressions the interpreter can walk quickly.
const maxTrips = 64

type loopCase struct {
	elem   intrinsics.ElementType
	kind   intrinsics.IntrinsicKind
	first  int64
	bound  int64
	step   int64 // 0 for no step call
	opaque bool  // step passed through an extern so it is not a constant
	// viaVariable stores the progression in a val and loops over the val.
	viaVariable bool
}

func (c loopCase) String() string {
	s := fmt.Sprintf("%s %d %s %d", c.elem, c.first, c.kind, c.bound)
	if c.step != 0 {
		s += fmt.Sprintf(" step %d", c.step)
		if c.opaque {
			s += " (opaque)"
		}
	}
	if c.viaVariable {
		s += " (variable)"
	}
	return s
}

// trips returns the reference trip count, or -1 when the case is too long.
func (c loopCase) trips() int {
	var p progression.Progression
	switch c.kind {
	case intrinsics.IntrinsicRangeTo:
		p = progression.RangeTo(c.elem, c.first, c.bound)
	case intrinsics.IntrinsicUntil:
		p = progression.Until(c.elem, c.first, c.bound)
	default:
		p = progression.DownTo(c.elem, c.first, c.bound)
	}
	if c.step != 0 {
		var err error
		if p, err = p.WithStep(c.step); err != nil {
			return -1
		}
	}
	n := len(p.Values(maxTrips + 1))
	if n > maxTrips {
		return -1
	}
	return n
}

func (c loopCase) build() *hir.File {
	u := hirtest.New()
	b := u.B
	value := func(v int64) hir.Expression {
		switch c.elem {
		case intrinsics.ElementLong:
			return b.Long(v)
		case intrinsics.ElementChar:
			return b.Char(uint16(v))
		default:
			return b.Int(int32(v))
		}
	}
	var iterable hir.Expression = u.Range(c.kind, value(c.first), value(c.bound))
	if c.step != 0 {
		var step hir.Expression
		if c.elem == intrinsics.ElementLong {
			step = b.Long(c.step)
			if c.opaque {
				step = u.Call(u.Extern("idLong", hir.Long, hir.Long), step)
			}
		} else {
			step = b.Int(int32(c.step))
			if c.opaque {
				step = u.Call(u.Extern("idInt", hir.Int, hir.Int), step)
			}
		}
		iterable = u.Step(iterable, step)
	}
	if c.viaVariable {
		r := u.Let("r", iterable)
		return u.File("unit", r, u.PrintEach(u.B.Get(r)))
	}
	return u.File("unit", u.PrintEach(iterable))
}

func boundaryCases() []loopCase {
	values := map[intrinsics.ElementType][]int64{
		intrinsics.ElementInt: {math.MinInt32, math.MinInt32 + 1, math.MinInt32 + 2, -3, 0, 1, 5,
			math.MaxInt32 - 2, math.MaxInt32 - 1, math.MaxInt32},
		intrinsics.ElementLong: {math.MinInt64, math.MinInt64 + 1, math.MinInt64 + 2, -3, 0, 1, 5,
			math.MaxInt64 - 2, math.MaxInt64 - 1, math.MaxInt64},
		intrinsics.ElementChar: {0, 1, 2, 'a', 'e', math.MaxUint16 - 2, math.MaxUint16 - 1, math.MaxUint16},
	}
	steps := map[intrinsics.ElementType][]int64{
		intrinsics.ElementInt:  {1, 2, 3, math.MaxInt32/2 + 1, math.MaxInt32},
		intrinsics.ElementLong: {1, 2, 3, math.MaxInt64/2 + 1, math.MaxInt64},
		intrinsics.ElementChar: {1, 2, 3, 40000, math.MaxInt32},
	}
	kinds := []intrinsics.IntrinsicKind{intrinsics.IntrinsicRangeTo, intrinsics.IntrinsicUntil, intrinsics.IntrinsicDownTo}

	var cases []loopCase
	for _, elem := range intrinsics.Elements {
		for _, kind := range kinds {
			for _, first := range values[elem] {
				for _, bound := range values[elem] {
					base := loopCase{elem: elem, kind: kind, first: first, bound: bound}
					variable := base
					variable.viaVariable = true
					cases = append(cases, base, variable)
					for _, step := range steps[elem] {
						for _, opaque := range []bool{false, true} {
							c := base
							c.step, c.opaque = step, opaque
							cases = append(cases, c)
						}
						c := base
						c.step, c.viaVariable = step, true
						cases = append(cases, c)
					}
				}
			}
		}
	}
	return cases
}

func TestLoweringPreservesVisitedSequence(t *testing.T) {
	checked := 0
	for _, c := range boundaryCases() {
		want := c.trips()
		if want < 0 {
			continue
		}
		checked++

		before, err := evaluate(c.build(), nil)
		if err != nil {
			t.Errorf("%s: iterator form: %v", c, err)
			continue
		}
		if len(before) != want {
			t.Errorf("%s: iterator form visited %d elements, want %d", c, len(before), want)
		}

		f := c.build()
		stats, err := New(intrinsics.Default()).LowerFile(context.Background(), f)
		if err != nil {
			t.Errorf("%s: LowerFile: %v", c, err)
			continue
		}
		if stats.Loops != 1 {
			t.Errorf("%s: lowered %d loops, want 1", c, stats.Loops)
		}
		if err := hir.Verify(f); err != nil {
			t.Errorf("%s: Verify: %v", c, err)
			continue
		}
		after, err := evaluate(f, nil)
		if err != nil {
			t.Errorf("%s: lowered form: %v", c, err)
			continue
		}
		if strings.Join(before, " ") != strings.Join(after, " ") {
			t.Errorf("%s:\n iterator %v\n lowered  %v", c, before, after)
		}
	}
	if checked < 1000 {
		t.Errorf("only %d cases were short enough to check", checked)
	}
}
