package irio

import (
	"fmt"

	"github.com/orizon-lang/rangeloop/internal/hir"
)

type encoder struct {
	ids  map[hir.NodeID]int
	next int
}

// local returns the document id of a declaration, assigning one on first use.
func (e *encoder) local(id hir.NodeID) int {
	if n, ok := e.ids[id]; ok {
		return n
	}
	e.next++
	e.ids[id] = e.next
	return e.next
}

func encodeFile(f *hir.File) (*document, error) {
	e := &encoder{ids: make(map[hir.NodeID]int)}
	u := &unitJSON{Name: f.Name, Span: spanOf(f.Span), Functions: []functionJSON{}}
	for _, sym := range f.Externs {
		ext := externJSON{Name: sym.Name, Return: sym.Return.String()}
		for _, p := range sym.Params {
			ext.Params = append(ext.Params, p.String())
		}
		u.Externs = append(u.Externs, ext)
	}
	for _, fn := range f.Functions {
		fj := functionJSON{Name: fn.Name, Span: spanOf(fn.Span)}
		if fn.Body != nil {
			body, err := e.node(fn.Body)
			if err != nil {
				return nil, fmt.Errorf("function %s: %w", fn.Name, err)
			}
			fj.Body = body
		}
		u.Functions = append(u.Functions, fj)
	}
	return &document{Format: Format, Version: Version, Unit: u}, nil
}

func (e *encoder) list(stmts []hir.Statement) ([]*node, error) {
	out := make([]*node, 0, len(stmts))
	for _, s := range stmts {
		n, err := e.node(s)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// optional encodes s, which may be nil.
func (e *encoder) optional(s hir.Statement) (*node, error) {
	if s == nil {
		return nil, nil
	}
	return e.node(s)
}

func (e *encoder) node(s hir.Statement) (*node, error) {
	n := &node{Span: spanOf(s.GetSpan())}
	var err error
	switch s := s.(type) {
	case *hir.Block:
		n.Kind = kindBlock
		n.Statements, err = e.list(s.Statements)
	case *hir.Composite:
		n.Kind = kindComposite
		n.Type = s.Type.String()
		n.Origin = s.Origin.String()
		n.Statements, err = e.list(s.Statements)
	case *hir.Variable:
		n.Kind = kindVar
		n.ID = e.local(s.ID)
		n.Name = s.Name
		n.Type = s.Type.String()
		n.Mutable = s.Mutable
		n.Origin = s.Origin.String()
		n.Value, err = e.optional(s.Initializer)
	case *hir.GetValue:
		n.Kind = kindGet
		n.Variable = e.local(s.Variable.ID)
	case *hir.SetValue:
		n.Kind = kindSet
		n.Variable = e.local(s.Variable.ID)
		n.Value, err = e.node(s.Value)
	case *hir.Const:
		n.Kind = kindConst
		n.Type = s.Type.String()
		v := s.Value
		n.Const = &v
	case *hir.Call:
		n.Kind = kindCall
		n.Function = s.Symbol.Signature()
		n.Type = s.Type.String()
		n.Origin = s.Origin.String()
		if n.Receiver, err = e.optional(s.Receiver); err != nil {
			return nil, err
		}
		for _, a := range s.Args {
			arg, err := e.node(a)
			if err != nil {
				return nil, err
			}
			n.Args = append(n.Args, arg)
		}
	case *hir.ImplicitNotNull:
		n.Kind = kindNotNull
		n.Type = s.Type.String()
		n.Value, err = e.node(s.Argument)
	case *hir.If:
		n.Kind = kindIf
		if n.Condition, err = e.node(s.Condition); err != nil {
			return nil, err
		}
		if n.Then, err = e.optional(s.Then); err != nil {
			return nil, err
		}
		n.Else, err = e.optional(s.Else)
	case *hir.WhileLoop:
		n.Kind = kindWhile
		err = e.loop(n, s)
	case *hir.DoWhileLoop:
		n.Kind = kindDoWhile
		err = e.loop(n, s)
	case *hir.Break:
		n.Kind = kindBreak
		n.Loop = e.local(s.Loop.GetID())
		n.Label = s.Label
	case *hir.Continue:
		n.Kind = kindContinue
		n.Loop = e.local(s.Loop.GetID())
		n.Label = s.Label
	default:
		return nil, fmt.Errorf("cannot encode %s", hir.Describe(s))
	}
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (e *encoder) loop(n *node, l hir.Loop) error {
	n.ID = e.local(l.GetID())
	n.Label = l.GetLabel()
	n.Origin = l.GetOrigin().String()
	var err error
	if n.Condition, err = e.node(l.GetCondition()); err != nil {
		return err
	}
	n.Body, err = e.optional(l.GetBody())
	return err
}
