package hir

import (
	"strings"
	"testing"

	"github.com/orizon-lang/rangeloop/internal/errors"
)

// intProtocol is a minimal IteratorProtocol over IntRange.
type intProtocol struct {
	iterator, hasNext, next *FunctionSymbol
}

func newIntProtocol() *intProtocol {
	recv := IntProgression
	it := IntIterator
	return &intProtocol{
		iterator: &FunctionSymbol{Name: "iterator", Receiver: &recv, Return: IntIterator},
		hasNext:  &FunctionSymbol{Name: "hasNext", Receiver: &it, Return: Boolean},
		next:     &FunctionSymbol{Name: "next", Receiver: &it, Return: Int},
	}
}

func (p *intProtocol) IteratorSymbols(t Type) (*FunctionSymbol, *FunctionSymbol, *FunctionSymbol, bool) {
	if !t.IsSubtypeOf(IntProgression) {
		return nil, nil, nil, false
	}
	return p.iterator, p.hasNext, p.next, true
}

func rangeSymbol() *FunctionSymbol {
	recv := Int
	return &FunctionSymbol{Name: "rangeTo", Receiver: &recv, Params: []Type{Int}, Return: IntRange}
}

func TestTypeSubtyping(t *testing.T) {
	tests := []struct {
		sub, super Type
		want       bool
	}{
		{IntRange, IntProgression, true},
		{IntRange, Any, true},
		{IntRange, LongProgression, false},
		{IntProgression, IntRange, false},
		{IntRange.OrNull(), IntProgression, false},
		{IntRange, IntProgression.OrNull(), true},
		{Char, Any.OrNull(), true},
		{IntIterator, Iterator, true},
		{Int, Long, false},
	}
	for _, tt := range tests {
		t.Run(tt.sub.String()+"<:"+tt.super.String(), func(t *testing.T) {
			if got := tt.sub.IsSubtypeOf(tt.super); got != tt.want {
				t.Errorf("IsSubtypeOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseType(t *testing.T) {
	for _, s := range []string{"Int", "Long?", "CharProgression", "IntIterator", "Unit"} {
		typ, err := ParseType(s)
		if err != nil {
			t.Fatalf("ParseType(%q): %v", s, err)
		}
		if typ.String() != s {
			t.Errorf("ParseType(%q).String() = %q", s, typ.String())
		}
	}
	if _, err := ParseType("Float"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestSignature(t *testing.T) {
	if got := rangeSymbol().Signature(); got != "Int.rangeTo(Int):IntRange" {
		t.Errorf("Signature = %q", got)
	}
	top := &FunctionSymbol{Name: "log", Params: []Type{Int, Char}, Return: Unit}
	if got := top.Signature(); got != "log(Int,Char):Unit" {
		t.Errorf("Signature = %q", got)
	}
}

func buildForIn(t *testing.T) (*File, *WhileLoop, *Variable) {
	t.Helper()
	b := NewBuilder()
	var loopVar *Variable
	var loop *WhileLoop
	forIn, err := b.ForIn(newIntProtocol(), "outer", "i", b.Call(rangeSymbol(), b.Int(0), b.Int(4)),
		func(x *Variable, l *WhileLoop) []Statement {
			loopVar, loop = x, l
			return []Statement{b.If(b.Bool(true), b.Break(l), nil)}
		})
	if err != nil {
		t.Fatalf("ForIn: %v", err)
	}
	fn := &Function{ID: NewID(), Name: "main", Body: b.Block(forIn)}
	return &File{ID: NewID(), Name: "unit", Functions: []*Function{fn}}, loop, loopVar
}

func TestForInShape(t *testing.T) {
	file, loop, loopVar := buildForIn(t)
	forIn := file.Functions[0].Body.Statements[0].(*Composite)
	if forIn.Origin != OriginForLoop || len(forIn.Statements) != 2 {
		t.Fatalf("unexpected for-in composite %s", forIn)
	}
	it := forIn.Statements[0].(*Variable)
	if it.Origin != OriginForLoopIterator || it.Type != IntIterator {
		t.Errorf("iterator declaration = %s (%s)", it, it.Origin)
	}
	if c := it.Initializer.(*Call); c.Origin != OriginForLoopIteratorCall {
		t.Errorf("iterator call origin = %s", c.Origin)
	}
	if forIn.Statements[1] != Statement(loop) || loop.Origin != OriginForLoopInnerWhile {
		t.Errorf("loop = %s", forIn.Statements[1])
	}
	if cond := loop.Condition.(*Call); cond.Origin != OriginForLoopHasNext || cond.Receiver.(*GetValue).Variable != it {
		t.Errorf("condition = %s", cond)
	}
	if loopVar.Origin != OriginForLoopVariable || loopVar.Initializer.(*Call).Origin != OriginForLoopNext {
		t.Errorf("loop variable = %s", loopVar)
	}
	if err := Verify(file); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestForInRejectsNonIterable(t *testing.T) {
	b := NewBuilder()
	if _, err := b.ForIn(newIntProtocol(), "", "x", b.Long(3), nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestTemporaryNamesAreShared(t *testing.T) {
	b := NewBuilder()
	a := b.Temporary("first", b.Int(1), false)
	c := b.At(b.Span()).Temporary("second", b.Int(2), true)
	if a.Name != "tmp0_first" || c.Name != "tmp1_second" {
		t.Errorf("names = %s, %s", a.Name, c.Name)
	}
	if a.Origin != OriginIRTemporaryVariable || !c.Mutable {
		t.Errorf("unexpected temporaries %s %s", a, c)
	}
}

func TestDump(t *testing.T) {
	file, _, _ := buildForIn(t)
	got := Dump(file)
	want := strings.Join([]string{
		"// unit",
		"fun main() {",
		"  val tmp0_iterator: IntIterator = 0.rangeTo(4).iterator()",
		"  outer@ while (tmp0_iterator.hasNext()) {",
		"    val i: Int = tmp0_iterator.next()",
		"    if (true) {",
		"      break@outer",
		"    }",
		"  }",
		"}",
		"",
	}, "\n")
	if got != want {
		t.Errorf("Dump mismatch\n got:\n%s\nwant:\n%s", got, want)
	}
	if colored := DumpColored(file); !strings.Contains(colored, ansiKeyword+"while"+ansiReset) {
		t.Errorf("DumpColored did not highlight keywords:\n%s", colored)
	}
}

func TestDumpConstants(t *testing.T) {
	b := NewBuilder()
	tests := []struct {
		c    *Const
		want string
	}{
		{b.Int(-3), "-3"},
		{b.Long(7), "7L"},
		{b.Char('a'), "'a'"},
		{b.Char(0), "'\\u0000'"},
		{b.Bool(false), "false"},
	}
	for _, tt := range tests {
		if got := Dump(tt.c); got != tt.want+"\n" {
			t.Errorf("Dump(%s) = %q, want %q", tt.c, got, tt.want)
		}
	}
}

type replaceConsts struct{ b *Builder }

func (r replaceConsts) Transform(s Statement) Statement {
	if c, ok := s.(*Const); ok && c.Type == Int {
		return r.b.Composite(OriginNone, Int, r.b.Var("k", Int, nil, false, OriginDefined), r.b.Int(int32(c.Value)+1))
	}
	TransformChildren(r, s)
	return s
}

func TestTransformChildren(t *testing.T) {
	b := NewBuilder()
	call := b.Call(rangeSymbol(), b.Int(1), b.Int(2))
	TransformChildren(replaceConsts{b}, call)
	if _, ok := call.Receiver.(*Composite); !ok {
		t.Fatalf("receiver = %T", call.Receiver)
	}
	if got := Dump(call); got != "{ val k: Int; 2 }.rangeTo({ val k: Int; 3 })\n" {
		t.Errorf("Dump = %q", got)
	}

	v := b.Var("v", Int, nil, true, OriginDefined)
	set := b.Set(v, b.Int(5))
	TransformChildren(TransformerFunc(func(s Statement) Statement { return b.Break(b.While("", b.Bool(true), nil)) }), set)
	if c, ok := set.Value.(*Composite); !ok || c.Type != Unit {
		t.Errorf("non-expression result was not wrapped: %T", set.Value)
	}

	fn := &Function{ID: NewID(), Name: "f", Body: b.Block()}
	TransformChildren(TransformerFunc(func(s Statement) Statement { return b.Int(0) }), fn)
	if len(fn.Body.Statements) != 1 {
		t.Errorf("function body was not re-wrapped in a block: %s", fn.Body)
	}
}

func TestWalk(t *testing.T) {
	file, _, _ := buildForIn(t)
	var calls, skipped int
	Walk(file, func(n Node) bool {
		switch n.(type) {
		case *Call:
			calls++
		case *If:
			skipped++
			return false
		}
		return true
	})
	// iterator(), rangeTo(), hasNext(), next(); the If subtree is skipped.
	if calls != 4 || skipped != 1 {
		t.Errorf("calls=%d skipped=%d", calls, skipped)
	}
}

func TestVerifyRejects(t *testing.T) {
	b := NewBuilder()
	mutable := b.Var("m", Int, b.Int(0), true, OriginDefined)
	fixed := b.Var("f", Int, b.Int(0), false, OriginDefined)
	loop := b.While("", b.Bool(true), b.Block())
	shared := b.Int(1)

	tests := []struct {
		name  string
		stmts []Statement
		want  string
	}{
		{"undeclared read", []Statement{b.Get(mutable)}, "undeclared"},
		{"immutable write", []Statement{fixed, b.Set(fixed, b.Int(1))}, "immutable"},
		{"dangling break", []Statement{loop, b.Break(loop)}, "does not enclose"},
		{"break without loop", []Statement{b.While("", b.Bool(true), b.Block(b.Break(nil)))}, "without target"},
		{"continue without loop", []Statement{b.While("", b.Bool(true), b.Block(b.Continue(nil)))}, "without target"},
		{"shared node", []Statement{shared, shared}, "duplicate"},
		{"out of scope", []Statement{b.Block(mutable), b.Get(mutable)}, "undeclared"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := &Function{ID: NewID(), Name: "f", Body: b.Block(tt.stmts...)}
			err := Verify(&File{ID: NewID(), Functions: []*Function{fn}})
			if err == nil {
				t.Fatal("expected verification error")
			}
			if !errors.IsCategory(err, errors.CategoryInternal) || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestVerifyDoWhileConditionSeesBody(t *testing.T) {
	b := NewBuilder()
	x := b.Var("x", Boolean, b.Bool(false), false, OriginDefined)
	loop := b.DoWhile("", b.Get(x), b.Composite(OriginNone, Unit, x))
	fn := &Function{ID: NewID(), Name: "f", Body: b.Block(loop)}
	if err := Verify(&File{ID: NewID(), Functions: []*Function{fn}}); err != nil {
		t.Errorf("Verify: %v", err)
	}
}
