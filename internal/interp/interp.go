// Package interp evaluates HIR directly. It runs both the iterator form the front
// end produces and the counted loops the lowering passes emit, so the two can be
// compared on the same inputs.
package interp

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/hashicorp/go-set/v3"

	"github.com/orizon-lang/rangeloop/internal/errors"
	"github.com/orizon-lang/rangeloop/internal/hir"
	"github.com/orizon-lang/rangeloop/internal/intrinsics"
)

// ExternFunc implements an extern function declared by a unit.
type ExternFunc func(args []Value) (Value, error)

// Interpreter evaluates functions of a unit.
type Interpreter struct {
	registry *intrinsics.IntrinsicRegistry
	externs  map[string]ExternFunc
	limit    int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithExterns supplies the host implementations of extern functions, by name.
func WithExterns(externs map[string]ExternFunc) Option {
	return func(in *Interpreter) {
		for name, fn := range externs {
			in.externs[name] = fn
		}
	}
}

// WithIterationLimit bounds the total number of loop iterations of one Run.
// Zero means unlimited.
func WithIterationLimit(n int) Option {
	return func(in *Interpreter) { in.limit = n }
}

// New creates an interpreter resolving builtins through registry.
func New(registry *intrinsics.IntrinsicRegistry, opts ...Option) *Interpreter {
	in := &Interpreter{
		registry: registry,
		externs:  make(map[string]ExternFunc),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run evaluates the named function of f.
func (in *Interpreter) Run(ctx context.Context, f *hir.File, function string) error {
	fn := f.Function(function)
	if fn == nil {
		return runtimeError("NO_SUCH_FUNCTION", fmt.Sprintf("unit %s has no function %s", f.Name, function), nil)
	}
	fr := &frame{
		ctx:    ctx,
		in:     in,
		unit:   f,
		vars:   make(map[hir.NodeID]Value),
		active: set.New[hir.NodeID](0),
	}
	if fn.Body == nil {
		return nil
	}
	err := fr.exec(fn.Body)
	var j *jump
	if stderrors.As(err, &j) {
		return runtimeError("STRAY_JUMP", "jump escaped its function", map[string]interface{}{"jump": hir.Describe(j.node)})
	}
	return err
}

func runtimeError(code, message string, context map[string]interface{}) *errors.StandardError {
	return errors.NewStandardError(errors.CategoryRuntime, code, message, context)
}

// jump unwinds the evaluation to the loop it targets.
type jump struct {
	node   hir.Statement
	target hir.NodeID
	brk    bool
}

func (j *jump) Error() string { return "unhandled " + hir.Describe(j.node) }

// frame is the state of one function activation. Variables are keyed by the id of
// their declaration.
type frame struct {
	ctx        context.Context
	in         *Interpreter
	unit       *hir.File
	vars       map[hir.NodeID]Value
	active     *set.Set[hir.NodeID]
	iterations int
}

func (fr *frame) exec(s hir.Statement) error {
	switch s := s.(type) {
	case *hir.Block:
		return fr.execList(s.Statements)
	case *hir.Variable:
		v := Unit
		if s.Initializer != nil {
			var err error
			if v, err = fr.eval(s.Initializer); err != nil {
				return err
			}
		}
		fr.vars[s.ID] = v
		return nil
	case *hir.SetValue:
		if _, ok := fr.vars[s.Variable.ID]; !ok {
			return runtimeError("UNDECLARED", "assignment to undeclared variable "+s.Variable.Name, nil)
		}
		v, err := fr.eval(s.Value)
		if err != nil {
			return err
		}
		fr.vars[s.Variable.ID] = v
		return nil
	case *hir.If:
		c, err := fr.eval(s.Condition)
		if err != nil {
			return err
		}
		if c.Truth() {
			return fr.exec(s.Then)
		}
		if s.Else != nil {
			return fr.exec(s.Else)
		}
		return nil
	case *hir.WhileLoop:
		return fr.loop(s, false)
	case *hir.DoWhileLoop:
		return fr.loop(s, true)
	case *hir.Break:
		return fr.jump(s, s.Loop, true)
	case *hir.Continue:
		return fr.jump(s, s.Loop, false)
	case hir.Expression:
		_, err := fr.eval(s)
		return err
	}
	return runtimeError("UNSUPPORTED", "cannot execute "+hir.Describe(s), nil)
}

func (fr *frame) execList(stmts []hir.Statement) error {
	for _, s := range stmts {
		if err := fr.exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (fr *frame) jump(node hir.Statement, target hir.Loop, brk bool) error {
	if target == nil || !fr.active.Contains(target.GetID()) {
		return runtimeError("INACTIVE_LOOP", "jump targets a loop that is not executing",
			map[string]interface{}{"jump": hir.Describe(node)})
	}
	return &jump{node: node, target: target.GetID(), brk: brk}
}

// loop runs a while loop, or a do/while loop when bodyFirst is set.
func (fr *frame) loop(l hir.Loop, bodyFirst bool) error {
	id := l.GetID()
	fr.active.Insert(id)
	defer fr.active.Remove(id)

	for first := true; ; first = false {
		if !(bodyFirst && first) {
			c, err := fr.eval(l.GetCondition())
			if err != nil {
				return err
			}
			if !c.Truth() {
				return nil
			}
		}
		if err := fr.tick(); err != nil {
			return err
		}
		if l.GetBody() == nil {
			continue
		}
		err := fr.exec(l.GetBody())
		if err == nil {
			continue
		}
		var j *jump
		if !stderrors.As(err, &j) || j.target != id {
			return err
		}
		if j.brk {
			return nil
		}
	}
}

func (fr *frame) tick() error {
	fr.iterations++
	if fr.iterations%1024 == 0 {
		if err := fr.ctx.Err(); err != nil {
			return err
		}
	}
	if fr.in.limit > 0 && fr.iterations > fr.in.limit {
		return runtimeError("ITERATION_LIMIT", fmt.Sprintf("more than %d loop iterations", fr.in.limit), nil)
	}
	return nil
}

func (fr *frame) eval(e hir.Expression) (Value, error) {
	switch e := e.(type) {
	case *hir.Const:
		return constant(e)
	case *hir.GetValue:
		v, ok := fr.vars[e.Variable.ID]
		if !ok {
			return Unit, runtimeError("UNDECLARED", "read of undeclared variable "+e.Variable.Name, nil)
		}
		return v, nil
	case *hir.Composite:
		result := Unit
		for _, s := range e.Statements {
			if x, ok := s.(hir.Expression); ok {
				v, err := fr.eval(x)
				if err != nil {
					return Unit, err
				}
				result = v
				continue
			}
			if err := fr.exec(s); err != nil {
				return Unit, err
			}
			result = Unit
		}
		return result, nil
	case *hir.ImplicitNotNull:
		v, err := fr.eval(e.Argument)
		if err != nil {
			return Unit, err
		}
		if v.Tag == VTNull {
			return Unit, runtimeError("NULL_POINTER", "null value where a non-null one was expected", nil)
		}
		return v, nil
	case *hir.Call:
		return fr.call(e)
	}
	return Unit, runtimeError("UNSUPPORTED", "cannot evaluate "+hir.Describe(e), nil)
}

func constant(c *hir.Const) (Value, error) {
	switch c.Type.Kind {
	case hir.TypeKindBoolean:
		return Bool(c.Value != 0), nil
	case hir.TypeKindUnit:
		return Unit, nil
	}
	elem, ok := intrinsics.ElementOf(c.Type)
	if !ok {
		return Unit, runtimeError("UNSUPPORTED", "constant of type "+c.Type.String(), nil)
	}
	return Number(elem, c.Value), nil
}

// call evaluates the receiver, then the arguments from left to right, then
// dispatches to a builtin or a host extern.
func (fr *frame) call(c *hir.Call) (Value, error) {
	var recv *Value
	if c.Receiver != nil {
		v, err := fr.eval(c.Receiver)
		if err != nil {
			return Unit, err
		}
		recv = &v
	}
	args := make([]Value, len(c.Args))
	for i, a := range c.Args {
		v, err := fr.eval(a)
		if err != nil {
			return Unit, err
		}
		args[i] = v
	}

	if info, ok := fr.in.registry.Builtin(c.Symbol); ok {
		return builtin(info, recv, args)
	}
	if fr.unit.Extern(c.Symbol.Name) != nil {
		if fn, ok := fr.in.externs[c.Symbol.Name]; ok {
			if recv != nil {
				args = append([]Value{*recv}, args...)
			}
			return fn(args)
		}
	}
	return Unit, runtimeError("UNRESOLVED_CALL", "no implementation for "+c.Symbol.Signature(), nil)
}
