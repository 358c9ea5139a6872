package irio

import (
	"fmt"

	"github.com/orizon-lang/rangeloop/internal/errors"
	"github.com/orizon-lang/rangeloop/internal/hir"
	"github.com/orizon-lang/rangeloop/internal/intrinsics"
)

type decoder struct {
	unit      string
	registry  *intrinsics.IntrinsicRegistry
	externs   map[string]*hir.FunctionSymbol
	variables map[int]*hir.Variable
	loops     map[int]hir.Loop
}

func decodeFile(doc *document, reg *intrinsics.IntrinsicRegistry) (*hir.File, error) {
	if doc.Format != Format {
		return nil, errors.Decode("", fmt.Sprintf("unsupported format %q", doc.Format))
	}
	if err := CheckVersion(doc.Version); err != nil {
		return nil, errors.Decode("", err.Error())
	}
	if doc.Unit == nil {
		return nil, errors.Decode("", "document has no unit")
	}
	d := &decoder{
		unit:      doc.Unit.Name,
		registry:  reg,
		externs:   make(map[string]*hir.FunctionSymbol),
		variables: make(map[int]*hir.Variable),
		loops:     make(map[int]hir.Loop),
	}
	f := &hir.File{ID: hir.NewID(), Name: doc.Unit.Name, Span: spanFrom(doc.Unit.Span)}
	for _, ext := range doc.Unit.Externs {
		sym, err := d.extern(ext)
		if err != nil {
			return nil, err
		}
		f.Externs = append(f.Externs, sym)
	}
	for _, fj := range doc.Unit.Functions {
		fn := &hir.Function{ID: hir.NewID(), Name: fj.Name, Span: spanFrom(fj.Span)}
		if fj.Body != nil {
			s, err := d.statement(fj.Body)
			if err != nil {
				return nil, err
			}
			body, ok := s.(*hir.Block)
			if !ok {
				return nil, d.fail("body of %s is a %s, not a block", fj.Name, fj.Body.Kind)
			}
			fn.Body = body
		}
		f.Functions = append(f.Functions, fn)
	}
	return f, nil
}

func (d *decoder) fail(format string, args ...interface{}) error {
	return errors.Decode(d.unit, fmt.Sprintf(format, args...))
}

func (d *decoder) typ(s string) (hir.Type, error) {
	t, err := hir.ParseType(s)
	if err != nil {
		return hir.Type{}, d.fail("%v", err)
	}
	return t, nil
}

func (d *decoder) extern(ext externJSON) (*hir.FunctionSymbol, error) {
	ret, err := d.typ(ext.Return)
	if err != nil {
		return nil, err
	}
	sym := &hir.FunctionSymbol{Name: ext.Name, Return: ret}
	for _, p := range ext.Params {
		t, err := d.typ(p)
		if err != nil {
			return nil, err
		}
		sym.Params = append(sym.Params, t)
	}
	sig := sym.Signature()
	if _, dup := d.externs[sig]; dup {
		return nil, d.fail("extern %s declared twice", sig)
	}
	if _, builtin := d.registry.Lookup(sig); builtin {
		return nil, d.fail("extern %s shadows a builtin", sig)
	}
	d.externs[sig] = sym
	return sym, nil
}

func (d *decoder) function(sig string) (*hir.FunctionSymbol, error) {
	if info, ok := d.registry.Lookup(sig); ok {
		return info.Symbol, nil
	}
	if sym, ok := d.externs[sig]; ok {
		return sym, nil
	}
	return nil, d.fail("unknown function %s", sig)
}

func (d *decoder) statementOrigin(s string) (hir.StatementOrigin, error) {
	o, ok := hir.ParseStatementOrigin(s)
	if !ok {
		return hir.OriginNone, d.fail("unknown statement origin %q", s)
	}
	return o, nil
}

func (d *decoder) statements(nodes []*node) ([]hir.Statement, error) {
	out := make([]hir.Statement, 0, len(nodes))
	for _, n := range nodes {
		s, err := d.statement(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *decoder) expression(n *node) (hir.Expression, error) {
	if n == nil {
		return nil, d.fail("missing expression")
	}
	s, err := d.statement(n)
	if err != nil {
		return nil, err
	}
	e, ok := s.(hir.Expression)
	if !ok {
		return nil, d.fail("%s is not an expression", n.Kind)
	}
	return e, nil
}

func (d *decoder) optional(n *node) (hir.Statement, error) {
	if n == nil {
		return nil, nil
	}
	return d.statement(n)
}

func (d *decoder) variable(id int) (*hir.Variable, error) {
	v, ok := d.variables[id]
	if !ok {
		return nil, d.fail("reference to undeclared variable %d", id)
	}
	return v, nil
}

func (d *decoder) loop(id int) (hir.Loop, error) {
	l, ok := d.loops[id]
	if !ok {
		return nil, d.fail("jump to undeclared loop %d", id)
	}
	return l, nil
}

func (d *decoder) statement(n *node) (hir.Statement, error) {
	if n == nil {
		return nil, d.fail("missing statement")
	}
	span := spanFrom(n.Span)
	switch n.Kind {
	case kindBlock:
		stmts, err := d.statements(n.Statements)
		if err != nil {
			return nil, err
		}
		return &hir.Block{ID: hir.NewID(), Statements: stmts, Span: span}, nil

	case kindComposite:
		t, err := d.typ(n.Type)
		if err != nil {
			return nil, err
		}
		origin, err := d.statementOrigin(n.Origin)
		if err != nil {
			return nil, err
		}
		stmts, err := d.statements(n.Statements)
		if err != nil {
			return nil, err
		}
		return &hir.Composite{ID: hir.NewID(), Statements: stmts, Type: t, Origin: origin, Span: span}, nil

	case kindVar:
		if _, dup := d.variables[n.ID]; dup || n.ID == 0 {
			return nil, d.fail("variable %s has a missing or duplicate id %d", n.Name, n.ID)
		}
		t, err := d.typ(n.Type)
		if err != nil {
			return nil, err
		}
		origin, ok := hir.ParseDeclarationOrigin(n.Origin)
		if !ok {
			return nil, d.fail("unknown declaration origin %q", n.Origin)
		}
		v := &hir.Variable{ID: hir.NewID(), Name: n.Name, Type: t, Mutable: n.Mutable, Origin: origin, Span: span}
		if n.Value != nil {
			// The initializer cannot see the variable it initializes.
			if v.Initializer, err = d.expression(n.Value); err != nil {
				return nil, err
			}
		}
		d.variables[n.ID] = v
		return v, nil

	case kindGet:
		v, err := d.variable(n.Variable)
		if err != nil {
			return nil, err
		}
		return &hir.GetValue{ID: hir.NewID(), Variable: v, Span: span}, nil

	case kindSet:
		v, err := d.variable(n.Variable)
		if err != nil {
			return nil, err
		}
		value, err := d.expression(n.Value)
		if err != nil {
			return nil, err
		}
		return &hir.SetValue{ID: hir.NewID(), Variable: v, Value: value, Span: span}, nil

	case kindConst:
		if n.Const == nil {
			return nil, d.fail("constant without a value")
		}
		t, err := d.typ(n.Type)
		if err != nil {
			return nil, err
		}
		return &hir.Const{ID: hir.NewID(), Type: t, Value: *n.Const, Span: span}, nil

	case kindCall:
		sym, err := d.function(n.Function)
		if err != nil {
			return nil, err
		}
		origin, err := d.statementOrigin(n.Origin)
		if err != nil {
			return nil, err
		}
		call := &hir.Call{ID: hir.NewID(), Symbol: sym, Type: sym.Return, Origin: origin, Span: span}
		if n.Type != "" {
			if call.Type, err = d.typ(n.Type); err != nil {
				return nil, err
			}
		}
		if n.Receiver != nil {
			if call.Receiver, err = d.expression(n.Receiver); err != nil {
				return nil, err
			}
		}
		for _, a := range n.Args {
			arg, err := d.expression(a)
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, arg)
		}
		if len(call.Args) != len(sym.Params) {
			return nil, d.fail("%s called with %d arguments", n.Function, len(call.Args))
		}
		return call, nil

	case kindNotNull:
		arg, err := d.expression(n.Value)
		if err != nil {
			return nil, err
		}
		t := arg.GetType().NotNull()
		if n.Type != "" {
			if t, err = d.typ(n.Type); err != nil {
				return nil, err
			}
		}
		return &hir.ImplicitNotNull{ID: hir.NewID(), Argument: arg, Type: t, Span: span}, nil

	case kindIf:
		cond, err := d.expression(n.Condition)
		if err != nil {
			return nil, err
		}
		then, err := d.optional(n.Then)
		if err != nil {
			return nil, err
		}
		els, err := d.optional(n.Else)
		if err != nil {
			return nil, err
		}
		return &hir.If{ID: hir.NewID(), Condition: cond, Then: then, Else: els, Span: span}, nil

	case kindWhile:
		w := &hir.WhileLoop{ID: hir.NewID(), Label: n.Label, Span: span}
		if err := d.declareLoop(n, w); err != nil {
			return nil, err
		}
		var err error
		if w.Origin, err = d.statementOrigin(n.Origin); err != nil {
			return nil, err
		}
		if w.Condition, err = d.expression(n.Condition); err != nil {
			return nil, err
		}
		if w.Body, err = d.optional(n.Body); err != nil {
			return nil, err
		}
		return w, nil

	case kindDoWhile:
		dw := &hir.DoWhileLoop{ID: hir.NewID(), Label: n.Label, Span: span}
		if err := d.declareLoop(n, dw); err != nil {
			return nil, err
		}
		var err error
		if dw.Origin, err = d.statementOrigin(n.Origin); err != nil {
			return nil, err
		}
		if dw.Body, err = d.optional(n.Body); err != nil {
			return nil, err
		}
		if dw.Condition, err = d.expression(n.Condition); err != nil {
			return nil, err
		}
		return dw, nil

	case kindBreak:
		l, err := d.loop(n.Loop)
		if err != nil {
			return nil, err
		}
		return &hir.Break{ID: hir.NewID(), Loop: l, Label: n.Label, Span: span}, nil

	case kindContinue:
		l, err := d.loop(n.Loop)
		if err != nil {
			return nil, err
		}
		return &hir.Continue{ID: hir.NewID(), Loop: l, Label: n.Label, Span: span}, nil
	}
	return nil, d.fail("unknown node kind %q", n.Kind)
}

// declareLoop registers l before its body is read so jumps inside can refer to it.
func (d *decoder) declareLoop(n *node, l hir.Loop) error {
	if _, dup := d.loops[n.ID]; dup || n.ID == 0 {
		return d.fail("loop has a missing or duplicate id %d", n.ID)
	}
	d.loops[n.ID] = l
	return nil
}
