package intrinsics

import (
	"sync"
	"testing"

	"github.com/orizon-lang/rangeloop/internal/errors"
	"github.com/orizon-lang/rangeloop/internal/hir"
)

func TestIntrinsicRegistry(t *testing.T) {
	r := NewIntrinsicRegistry()

	// Test lookups by signature
	signatures := []string{
		"Int.rangeTo(Int):IntRange",
		"Int.rangeTo(Long):LongRange",
		"Long.until(Int):LongRange",
		"Char.downTo(Char):CharProgression",
		"CharProgression.step(Int):CharProgression",
		"LongProgression.step(Long):LongProgression",
		"IntProgression.iterator():IntIterator",
		"CharIterator.next():Char",
		"Char.plus(Int):Char",
		"Long.toInt():Int",
		"Boolean.not():Boolean",
		"getProgressionLast(Char,Char,Int):Char",
		"checkProgressionStep(Long):Long",
		"List.indices():IntRange",
		"List.lastIndex():Int",
	}
	for _, sig := range signatures {
		if _, exists := r.Lookup(sig); !exists {
			t.Errorf("intrinsic %s not found", sig)
		}
	}

	if got := len(r.Builders(IntrinsicRangeTo)); got != len(builderOperands) {
		t.Errorf("rangeTo builders = %d, want %d", got, len(builderOperands))
	}
	if got := len(r.GetByCategory(CategoryRuntime)); got != 6 {
		t.Errorf("runtime intrinsics = %d, want 6", got)
	}
	if got := len(r.GetByCategory(CategoryProperty)); got != 4*len(Elements) {
		t.Errorf("progression properties = %d, want %d", got, 4*len(Elements))
	}
	if len(r.Signatures()) != len(r.bySignature) {
		t.Error("Signatures did not list every intrinsic")
	}
}

func TestIntrinsicTable(t *testing.T) {
	r := NewIntrinsicRegistry()
	tests := []struct {
		kind IntrinsicKind
		elem ElementType
		want string
	}{
		{IntrinsicDec, ElementChar, "Char.dec():Char"},
		{IntrinsicPlus, ElementLong, "Long.plus(Long):Long"},
		{IntrinsicUnaryMinus, ElementChar, "Int.unaryMinus():Int"},
		{IntrinsicCheckStep, ElementChar, "checkProgressionStep(Int):Int"},
		{IntrinsicGreaterOrEqual, ElementInt, "Int.greaterOrEqual(Int):Boolean"},
		{IntrinsicNot, ElementLong, "Boolean.not():Boolean"},
		{IntrinsicProgressionLast, ElementLong, "getProgressionLast(Long,Long,Long):Long"},
		{IntrinsicFirst, ElementChar, "CharProgression.first():Char"},
		{IntrinsicStepValue, ElementChar, "CharProgression.step():Int"},
		{IntrinsicIsEmpty, ElementInt, "IntProgression.isEmpty():Boolean"},
		{IntrinsicContains, ElementLong, "LongProgression.contains(Long):Boolean"},
		{IntrinsicAnd, ElementChar, "Boolean.and(Boolean):Boolean"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			sym, err := r.Intrinsic(tt.kind, tt.elem)
			if err != nil {
				t.Fatalf("Intrinsic(%s, %s): %v", tt.kind, tt.elem, err)
			}
			if sym.Signature() != tt.want {
				t.Errorf("got %s", sym.Signature())
			}
			if _, ok := r.Builtin(sym); !ok {
				t.Error("table symbol is not a registered builtin")
			}
		})
	}

	if _, err := r.Intrinsic(IntrinsicRangeTo, ElementInt); !errors.IsCategory(err, errors.CategoryInternal) {
		t.Errorf("builder lookup through the table: err = %v", err)
	}
}

func TestCast(t *testing.T) {
	r := NewIntrinsicRegistry()
	if sym, err := r.Cast(ElementInt, ElementInt); sym != nil || err != nil {
		t.Errorf("identity cast = %v, %v", sym, err)
	}
	sym, err := r.Cast(ElementChar, ElementLong)
	if err != nil {
		t.Fatal(err)
	}
	if sym.Signature() != "Char.toLong():Long" {
		t.Errorf("cast = %s", sym.Signature())
	}
	if _, err := r.Cast(ElementType(7), ElementInt); err == nil {
		t.Error("expected error for invalid element")
	}
}

func TestIteratorSymbols(t *testing.T) {
	r := NewIntrinsicRegistry()
	it, hasNext, next, ok := r.IteratorSymbols(hir.CharRange)
	if !ok {
		t.Fatal("CharRange is not iterable")
	}
	if it.Return != hir.CharIterator || hasNext.Return != hir.Boolean || next.Return != hir.Char {
		t.Errorf("protocol = %s %s %s", it, hasNext, next)
	}
	if _, _, _, ok := r.IteratorSymbols(hir.List); ok {
		t.Error("List should not be iterable through the progression protocol")
	}
}

func TestElementTypes(t *testing.T) {
	tests := []struct {
		typ  hir.Type
		want ElementType
		ok   bool
	}{
		{hir.IntRange, ElementInt, true},
		{hir.LongProgression, ElementLong, true},
		{hir.CharRange, ElementChar, true},
		{hir.Iterator, 0, false},
		{hir.IntRange.OrNull(), 0, false},
	}
	for _, tt := range tests {
		got, ok := ProgressionElement(tt.typ)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ProgressionElement(%s) = %s, %v", tt.typ, got, ok)
		}
	}
	if ElementChar.StepType() != hir.Int || ElementLong.StepType() != hir.Long {
		t.Error("unexpected step types")
	}
	if ElementChar.MinValue() != 0 || ElementInt.MinValue() != -1<<31 {
		t.Error("unexpected minimum values")
	}
}

func TestDefaultIsShared(t *testing.T) {
	var wg sync.WaitGroup
	regs := make([]*IntrinsicRegistry, 8)
	for i := range regs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			regs[i] = Default()
		}(i)
	}
	wg.Wait()
	for _, r := range regs {
		if r != regs[0] {
			t.Fatal("Default returned different registries")
		}
	}
}
