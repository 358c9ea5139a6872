package hir

import (
	"fmt"

	"github.com/orizon-lang/rangeloop/internal/position"
)

// Builder constructs HIR nodes with fresh ids. Builders derived with At share the
// temporary counter of their parent, so temporary names stay unique within a unit.
type Builder struct {
	span  position.Span
	temps *int
}

// NewBuilder creates a builder whose nodes carry no source span.
func NewBuilder() *Builder {
	return &Builder{temps: new(int)}
}

// At returns a builder producing nodes at span.
func (b *Builder) At(span position.Span) *Builder {
	return &Builder{span: span, temps: b.temps}
}

// Span returns the span stamped on nodes built by b.
func (b *Builder) Span() position.Span { return b.span }

func (b *Builder) Const(t Type, v int64) *Const {
	return &Const{ID: NewID(), Type: t, Value: v, Span: b.span}
}

func (b *Builder) Int(v int32) *Const   { return b.Const(Int, int64(v)) }
func (b *Builder) Long(v int64) *Const  { return b.Const(Long, v) }
func (b *Builder) Char(v uint16) *Const { return b.Const(Char, int64(v)) }

func (b *Builder) Bool(v bool) *Const {
	if v {
		return b.Const(Boolean, 1)
	}
	return b.Const(Boolean, 0)
}

func (b *Builder) Get(v *Variable) *GetValue {
	return &GetValue{ID: NewID(), Variable: v, Span: b.span}
}

func (b *Builder) Set(v *Variable, value Expression) *SetValue {
	return &SetValue{ID: NewID(), Variable: v, Value: value, Span: b.span}
}

// Call builds a call whose result type is the symbol's return type.
func (b *Builder) Call(sym *FunctionSymbol, receiver Expression, args ...Expression) *Call {
	return b.CallOrigin(OriginNone, sym, receiver, args...)
}

func (b *Builder) CallOrigin(origin StatementOrigin, sym *FunctionSymbol, receiver Expression, args ...Expression) *Call {
	return &Call{
		ID:       NewID(),
		Symbol:   sym,
		Receiver: receiver,
		Args:     args,
		Type:     sym.Return,
		Origin:   origin,
		Span:     b.span,
	}
}

func (b *Builder) NotNull(e Expression) *ImplicitNotNull {
	return &ImplicitNotNull{ID: NewID(), Argument: e, Type: e.GetType().NotNull(), Span: b.span}
}

// Var declares a named local.
func (b *Builder) Var(name string, t Type, init Expression, mutable bool, origin DeclarationOrigin) *Variable {
	return &Variable{
		ID:          NewID(),
		Name:        name,
		Type:        t,
		Mutable:     mutable,
		Initializer: init,
		Origin:      origin,
		Span:        b.span,
	}
}

// Temporary declares a compiler temporary named after hint, typed by its initializer.
func (b *Builder) Temporary(hint string, init Expression, mutable bool) *Variable {
	name := fmt.Sprintf("tmp%d_%s", *b.temps, hint)
	*b.temps++
	return b.Var(name, init.GetType(), init, mutable, OriginIRTemporaryVariable)
}

func (b *Builder) Block(stmts ...Statement) *Block {
	return &Block{ID: NewID(), Statements: stmts, Span: b.span}
}

func (b *Builder) Composite(origin StatementOrigin, t Type, stmts ...Statement) *Composite {
	return &Composite{ID: NewID(), Statements: stmts, Type: t, Origin: origin, Span: b.span}
}

func (b *Builder) If(cond Expression, then, els Statement) *If {
	return &If{ID: NewID(), Condition: cond, Then: then, Else: els, Span: b.span}
}

func (b *Builder) While(label string, cond Expression, body Statement) *WhileLoop {
	return &WhileLoop{ID: NewID(), Label: label, Condition: cond, Body: body, Span: b.span}
}

func (b *Builder) DoWhile(label string, cond Expression, body Statement) *DoWhileLoop {
	return &DoWhileLoop{ID: NewID(), Label: label, Condition: cond, Body: body, Span: b.span}
}

// Break jumps out of loop. A nil loop builds an unresolved jump.
func (b *Builder) Break(loop Loop) *Break {
	return &Break{ID: NewID(), Loop: loop, Label: labelOf(loop), Span: b.span}
}

func (b *Builder) Continue(loop Loop) *Continue {
	return &Continue{ID: NewID(), Loop: loop, Label: labelOf(loop), Span: b.span}
}

func labelOf(loop Loop) string {
	if loop == nil {
		return ""
	}
	return loop.GetLabel()
}

// IteratorProtocol resolves the iterator(), hasNext() and next() functions of an
// iterable type.
type IteratorProtocol interface {
	IteratorSymbols(iterable Type) (iterator, hasNext, next *FunctionSymbol, ok bool)
}

// ForIn emits the desugared form of `label@ for (name in iterable) { body }`:
//
//	val it = iterable.iterator()
//	label@ while (it.hasNext()) { val name = it.next(); body }
//
// The body callback receives the loop variable and the loop so it can reference them.
// A name of "_" declares an implicit loop variable.
func (b *Builder) ForIn(p IteratorProtocol, label, name string, iterable Expression,
	body func(x *Variable, loop *WhileLoop) []Statement) (*Composite, error) {
	iteratorFn, hasNextFn, nextFn, ok := p.IteratorSymbols(iterable.GetType())
	if !ok {
		return nil, fmt.Errorf("type %s is not iterable", iterable.GetType())
	}

	it := b.Var(fmt.Sprintf("tmp%d_iterator", *b.temps), iteratorFn.Return,
		b.CallOrigin(OriginForLoopIteratorCall, iteratorFn, iterable), false, OriginForLoopIterator)
	*b.temps++

	origin := OriginForLoopVariable
	if name == "_" {
		origin = OriginForLoopImplicitVariable
	}
	x := b.Var(name, nextFn.Return, b.CallOrigin(OriginForLoopNext, nextFn, b.Get(it)), false, origin)

	loop := b.While(label, b.CallOrigin(OriginForLoopHasNext, hasNextFn, b.Get(it)), nil)
	loop.Origin = OriginForLoopInnerWhile

	stmts := []Statement{x}
	if body != nil {
		stmts = append(stmts, body(x, loop)...)
	}
	loop.Body = b.Block(stmts...)

	return b.Composite(OriginForLoop, Unit, it, loop), nil
}
