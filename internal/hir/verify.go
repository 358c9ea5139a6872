package hir

import (
	"fmt"

	"github.com/hashicorp/go-set/v3"

	"github.com/orizon-lang/rangeloop/internal/errors"
)

// Verify checks the structural integrity of a unit:
//   - every node appears in the tree exactly once (ids are unique);
//   - every Break and Continue targets a loop that encloses it;
//   - every GetValue and SetValue references a variable declared earlier in an
//     enclosing scope, and SetValue only targets mutable variables.
//
// The first violation is returned as an INTERNAL error.
func Verify(f *File) error {
	v := &verifier{
		seen:  set.New[NodeID](64),
		loops: set.New[NodeID](8),
	}
	for _, fn := range f.Functions {
		if !v.seen.Insert(fn.ID) {
			return v.fail(fn, "duplicate node id %d", fn.ID)
		}
		if fn.Body == nil {
			continue
		}
		v.stmt(fn.Body)
		if v.err != nil {
			return v.err
		}
	}
	return nil
}

type verifier struct {
	seen   *set.Set[NodeID]
	scopes []*set.Set[NodeID]
	loops  *set.Set[NodeID]
	err    error
}

func (v *verifier) fail(n Node, format string, args ...interface{}) error {
	if v.err == nil {
		v.err = errors.NewStandardError(errors.CategoryInternal, "IR_VERIFY",
			fmt.Sprintf(format, args...),
			map[string]interface{}{"node": Describe(n)})
	}
	return v.err
}

func (v *verifier) push() { v.scopes = append(v.scopes, set.New[NodeID](4)) }
func (v *verifier) pop()  { v.scopes = v.scopes[:len(v.scopes)-1] }

func (v *verifier) declared(variable *Variable) bool {
	for i := len(v.scopes) - 1; i >= 0; i-- {
		if v.scopes[i].Contains(variable.ID) {
			return true
		}
	}
	return false
}

// scoped visits s in a fresh scope. A Block's statements share that scope.
func (v *verifier) scoped(s Statement, after func()) {
	v.push()
	if b, ok := s.(*Block); ok {
		if v.seen.Insert(b.ID) {
			v.list(b.Statements)
		} else {
			v.fail(b, "duplicate node id %d", b.ID)
		}
	} else if s != nil {
		v.stmt(s)
	}
	if after != nil {
		after()
	}
	v.pop()
}

func (v *verifier) list(stmts []Statement) {
	for _, s := range stmts {
		if v.err != nil {
			return
		}
		v.stmt(s)
	}
}

func (v *verifier) stmt(s Statement) {
	if v.err != nil {
		return
	}
	if s == nil {
		v.fail(&Block{}, "nil statement")
		return
	}
	if b, ok := s.(*Block); ok {
		v.scoped(b, nil)
		return
	}
	if !v.seen.Insert(s.GetID()) {
		v.fail(s, "duplicate node id %d", s.GetID())
		return
	}

	switch s := s.(type) {
	case *Composite:
		v.list(s.Statements)
	case *Variable:
		if s.Initializer != nil {
			v.stmt(s.Initializer)
		}
		if len(v.scopes) == 0 {
			v.fail(s, "declaration outside of any scope")
			return
		}
		v.scopes[len(v.scopes)-1].Insert(s.ID)
	case *GetValue:
		if s.Variable == nil || !v.declared(s.Variable) {
			v.fail(s, "read of undeclared variable")
		}
	case *SetValue:
		if s.Variable == nil || !v.declared(s.Variable) {
			v.fail(s, "write to undeclared variable")
			return
		}
		if !s.Variable.Mutable {
			v.fail(s, "write to immutable variable %s", s.Variable.Name)
			return
		}
		v.stmt(s.Value)
	case *Const:
	case *Call:
		if s.Symbol == nil {
			v.fail(s, "call without symbol")
			return
		}
		if s.Receiver != nil {
			v.stmt(s.Receiver)
		}
		for _, a := range s.Args {
			v.stmt(a)
		}
	case *ImplicitNotNull:
		v.stmt(s.Argument)
	case *If:
		v.stmt(s.Condition)
		v.scoped(s.Then, nil)
		if s.Else != nil {
			v.scoped(s.Else, nil)
		}
	case *WhileLoop:
		v.stmt(s.Condition)
		v.loops.Insert(s.ID)
		v.scoped(s.Body, nil)
		v.loops.Remove(s.ID)
	case *DoWhileLoop:
		v.loops.Insert(s.ID)
		v.scoped(s.Body, func() { v.stmt(s.Condition) })
		v.loops.Remove(s.ID)
	case *Break:
		v.jump(s, s.Loop)
	case *Continue:
		v.jump(s, s.Loop)
	default:
		v.fail(s, "unexpected node %T", s)
	}
}

func (v *verifier) jump(s Statement, target Loop) {
	if target == nil {
		v.fail(s, "jump without target loop")
		return
	}
	if !v.loops.Contains(target.GetID()) {
		v.fail(s, "jump targets loop #%d which does not enclose it", target.GetID())
	}
}
