package progression

import (
	"math"
	"reflect"
	"strconv"
	"testing"

	"github.com/orizon-lang/rangeloop/internal/errors"
	"github.com/orizon-lang/rangeloop/internal/intrinsics"
)

func TestLastElementInt(t *testing.T) {
	tests := []struct {
		name             string
		start, end, step int32
		want             int32
	}{
		{"unit step", 0, 4, 1, 4},
		{"trimmed", 0, 9, 2, 8},
		{"descending", 10, 0, -3, 1},
		{"empty ascending", 5, 1, 2, 1},
		{"empty descending", 1, 5, -2, 5},
		{"full width", math.MinInt32, math.MaxInt32, 3, math.MaxInt32},
		{"full width descending", math.MaxInt32, math.MinInt32, -7, math.MinInt32 + 3},
		{"huge step", -5, math.MaxInt32, math.MaxInt32, math.MaxInt32 - 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LastElementInt(tt.start, tt.end, tt.step)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("LastElementInt(%d, %d, %d) = %d, want %d", tt.start, tt.end, tt.step, got, tt.want)
			}
		})
	}
}

func TestLastElementLongBoundaries(t *testing.T) {
	tests := []struct {
		start, end, step int64
		want             int64
	}{
		{math.MinInt64, math.MaxInt64, 2, math.MaxInt64 - 1},
		{math.MinInt64, math.MaxInt64, math.MaxInt64, math.MaxInt64 - 1},
		{math.MaxInt64, math.MinInt64, -3, math.MinInt64},
		{math.MaxInt64, math.MinInt64, math.MinInt64 + 1, math.MinInt64 + 1},
		{0, 10, 5, 10},
	}
	for _, tt := range tests {
		got, err := LastElementLong(tt.start, tt.end, tt.step)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("LastElementLong(%d, %d, %d) = %d, want %d", tt.start, tt.end, tt.step, got, tt.want)
		}
	}
}

func TestLastElementChar(t *testing.T) {
	got, err := LastElementChar('a', 'z', 5)
	if err != nil {
		t.Fatal(err)
	}
	if got != 'z' {
		t.Errorf("got %q, want 'z'", rune(got))
	}
	if got, _ := LastElementChar(math.MaxUint16, 0, -4); got != 3 {
		t.Errorf("got %d, want 3", got)
	}
}

func TestLastElementZeroStep(t *testing.T) {
	if _, err := LastElementInt(0, 1, 0); !errors.IsCategory(err, errors.CategoryRuntime) {
		t.Errorf("err = %v", err)
	}
	if _, err := LastElement(intrinsics.ElementLong, 0, 1, 0); err == nil {
		t.Error("expected error for zero step")
	}
}

func TestCheckStep(t *testing.T) {
	if s, err := CheckStepInt(3); err != nil || s != 3 {
		t.Errorf("CheckStepInt(3) = %d, %v", s, err)
	}
	for _, step := range []int64{0, -1, math.MinInt64} {
		_, err := CheckStepLong(step)
		if err == nil {
			t.Fatalf("CheckStepLong(%d) succeeded", step)
		}
		se := err.(*errors.StandardError)
		if se.Code != "STEP_NOT_POSITIVE" || se.Message != "Step must be positive, was: "+strconv.FormatInt(step, 10)+"." {
			t.Errorf("unexpected error %v", err)
		}
	}
}

func TestProgressionSemantics(t *testing.T) {
	stepped := func(p Progression, s int64) Progression {
		t.Helper()
		q, err := p.WithStep(s)
		if err != nil {
			t.Fatal(err)
		}
		return q
	}
	ints := intrinsics.ElementInt

	tests := []struct {
		name string
		p    Progression
		want []int64
	}{
		{"rangeTo", RangeTo(ints, 0, 4), []int64{0, 1, 2, 3, 4}},
		{"until", Until(ints, 0, 5), []int64{0, 1, 2, 3, 4}},
		{"until min", Until(ints, 0, math.MinInt32), nil},
		{"downTo step", stepped(DownTo(ints, 10, 0), 3), []int64{10, 7, 4, 1}},
		{"empty", RangeTo(ints, 5, 1), nil},
		{"chained step trims", stepped(stepped(RangeTo(ints, 0, 9), 2), 3), []int64{0, 3, 6}},
		{"chained unit step", stepped(stepped(RangeTo(ints, 0, 9), 2), 1), []int64{0, 1, 2, 3, 4, 5, 6, 7, 8}},
		{"char until zero", Until(intrinsics.ElementChar, 'a', 0), nil},
		{"at max", RangeTo(ints, math.MaxInt32-1, math.MaxInt32), []int64{math.MaxInt32 - 1, math.MaxInt32}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Values(100); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Values = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	ints, longs := intrinsics.ElementInt, intrinsics.ElementLong
	byThree, err := DownTo(ints, 10, 0).WithStep(3)
	if err != nil {
		t.Fatal(err)
	}
	wide, err := RangeTo(longs, math.MinInt64, math.MaxInt64).WithStep(math.MaxInt64)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		p    Progression
		v    int64
		want bool
	}{
		{"inside", RangeTo(ints, 0, 4), 4, true},
		{"above", RangeTo(ints, 0, 4), 5, false},
		{"empty", RangeTo(ints, 5, 1), 3, false},
		{"decreasing on step", byThree, 4, true},
		{"decreasing off step", byThree, 5, false},
		{"decreasing past last", byThree, 0, false},
		{"wide on step", wide, math.MaxInt64 - 1, true},
		{"wide off step", wide, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Contains(tt.v); got != tt.want {
				t.Errorf("%v.Contains(%d) = %v", tt.p, tt.v, got)
			}
		})
	}
}

func TestWithStepRejectsNonPositive(t *testing.T) {
	_, err := RangeTo(intrinsics.ElementInt, 0, 3).WithStep(0)
	if !errors.IsCategory(err, errors.CategoryRuntime) {
		t.Errorf("err = %v", err)
	}
}

func TestIteratorExhausted(t *testing.T) {
	it := RangeTo(intrinsics.ElementLong, 1, 1).Iterator()
	if v, err := it.Next(); err != nil || v != 1 {
		t.Fatalf("Next = %d, %v", v, err)
	}
	if it.HasNext() {
		t.Fatal("iterator should be exhausted")
	}
	if _, err := it.Next(); err == nil {
		t.Error("expected error from exhausted iterator")
	}
}

func TestNarrow(t *testing.T) {
	if got := Narrow(intrinsics.ElementInt, math.MaxInt32+1); got != math.MinInt32 {
		t.Errorf("Narrow Int = %d", got)
	}
	if got := Narrow(intrinsics.ElementChar, -1); got != math.MaxUint16 {
		t.Errorf("Narrow Char = %d", got)
	}
}
