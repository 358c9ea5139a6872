// Package hirtest builds small HIR units for tests: desugared for-loops over the
// builtin progression builders, plus host externs to observe evaluation order.
package hirtest

import (
	"fmt"

	"github.com/orizon-lang/rangeloop/internal/hir"
	"github.com/orizon-lang/rangeloop/internal/intrinsics"
)

// Unit accumulates the externs of a unit under construction.
type Unit struct {
	B        *hir.Builder
	Registry *intrinsics.IntrinsicRegistry
	// Log is the extern log(Any):Unit.
	Log *hir.FunctionSymbol

	externs []*hir.FunctionSymbol
}

func New() *Unit {
	u := &Unit{B: hir.NewBuilder(), Registry: intrinsics.Default()}
	u.Log = u.Extern("log", hir.Unit, hir.Any.OrNull())
	return u
}

// Extern declares a host function.
func (u *Unit) Extern(name string, ret hir.Type, params ...hir.Type) *hir.FunctionSymbol {
	sym := &hir.FunctionSymbol{Name: name, Params: params, Return: ret}
	u.externs = append(u.externs, sym)
	return sym
}

// Call calls a top-level function.
func (u *Unit) Call(sym *hir.FunctionSymbol, args ...hir.Expression) *hir.Call {
	return u.B.Call(sym, nil, args...)
}

// Print logs the value of e.
func (u *Unit) Print(e hir.Expression) *hir.Call {
	return u.Call(u.Log, e)
}

// Builder returns the builtin builder of kind for the operand types of first and bound.
func (u *Unit) Builder(kind intrinsics.IntrinsicKind, first, bound hir.Type) *hir.FunctionSymbol {
	for _, sym := range u.Registry.Builders(kind) {
		if sym.Receiver != nil && sym.Receiver.Kind == first.Kind &&
			len(sym.Params) == 1 && sym.Params[0].Kind == bound.Kind {
			return sym
		}
	}
	panic(fmt.Sprintf("hirtest: no %s builder for %s, %s", kind, first, bound))
}

// Range builds `first <kind> bound` for rangeTo, until or downTo.
func (u *Unit) Range(kind intrinsics.IntrinsicKind, first, bound hir.Expression) *hir.Call {
	return u.B.Call(u.Builder(kind, first.GetType(), bound.GetType()), first, bound)
}

// Step builds `p step s`.
func (u *Unit) Step(p, s hir.Expression) *hir.Call {
	elem, ok := intrinsics.ProgressionElement(p.GetType())
	if !ok {
		panic("hirtest: step on " + p.GetType().String())
	}
	for _, sym := range u.Registry.Builders(intrinsics.IntrinsicStep) {
		if sym.Receiver.Kind == elem.ProgressionType().Kind {
			return u.B.Call(sym, p, s)
		}
	}
	panic("hirtest: no step builder for " + elem.String())
}

// Indices builds `list.indices`.
func (u *Unit) Indices(list hir.Expression) *hir.Call {
	return u.B.Call(u.Registry.Builders(intrinsics.IntrinsicIndices)[0], list)
}

// In builds `x in p`.
func (u *Unit) In(x, p hir.Expression) *hir.Call {
	elem, ok := intrinsics.ProgressionElement(p.GetType())
	if !ok {
		panic("hirtest: in on " + p.GetType().String())
	}
	sym, err := u.Registry.Intrinsic(intrinsics.IntrinsicContains, elem)
	if err != nil {
		panic(err)
	}
	return u.B.CallOrigin(hir.OriginIn, sym, p, x)
}

// Let declares `val name = init`.
func (u *Unit) Let(name string, init hir.Expression) *hir.Variable {
	return u.B.Var(name, init.GetType(), init, false, hir.OriginDefined)
}

// ForIn desugars a for-loop over iterable. It panics when iterable is not a
// progression.
func (u *Unit) ForIn(label, name string, iterable hir.Expression,
	body func(x *hir.Variable, loop *hir.WhileLoop) []hir.Statement) *hir.Composite {
	c, err := u.B.ForIn(u.Registry, label, name, iterable, body)
	if err != nil {
		panic(err)
	}
	return c
}

// PrintEach is `for (name in iterable) log(name)`.
func (u *Unit) PrintEach(iterable hir.Expression) *hir.Composite {
	return u.ForIn("", "i", iterable, func(x *hir.Variable, _ *hir.WhileLoop) []hir.Statement {
		return []hir.Statement{u.Print(u.B.Get(x))}
	})
}

// File wraps stmts into `fun main()` of a unit declaring every extern made so far.
func (u *Unit) File(name string, stmts ...hir.Statement) *hir.File {
	fn := &hir.Function{ID: hir.NewID(), Name: "main", Body: u.B.Block(stmts...)}
	return &hir.File{
		ID:        hir.NewID(),
		Name:      name,
		Functions: []*hir.Function{fn},
		Externs:   append([]*hir.FunctionSymbol(nil), u.externs...),
	}
}
