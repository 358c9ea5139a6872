package hir

import (
	"fmt"
	"strings"

	"github.com/orizon-lang/rangeloop/internal/position"
)

// File is one compilation unit.
type File struct {
	ID        NodeID
	Name      string
	Functions []*Function
	Externs   []*FunctionSymbol // host-provided functions callable from this unit
	Span      position.Span
}

func (f *File) GetID() NodeID          { return f.ID }
func (f *File) GetSpan() position.Span { return f.Span }
func (f *File) GetChildren() []Node {
	children := make([]Node, len(f.Functions))
	for i, fn := range f.Functions {
		children[i] = fn
	}
	return children
}
func (f *File) String() string {
	return fmt.Sprintf("File{%s, %d functions}", f.Name, len(f.Functions))
}

// Function returns the function named name, or nil.
func (f *File) Function(name string) *Function {
	for _, fn := range f.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// Extern returns the extern symbol named name, or nil.
func (f *File) Extern(name string) *FunctionSymbol {
	for _, sym := range f.Externs {
		if sym.Name == name {
			return sym
		}
	}
	return nil
}

// Function is a parameterless function declaration.
type Function struct {
	ID   NodeID
	Name string
	Body *Block
	Span position.Span
}

func (fn *Function) GetID() NodeID          { return fn.ID }
func (fn *Function) GetSpan() position.Span { return fn.Span }
func (fn *Function) GetChildren() []Node {
	if fn.Body == nil {
		return nil
	}
	return []Node{fn.Body}
}
func (fn *Function) String() string { return fmt.Sprintf("Function{%s}", fn.Name) }

// Block is a scoped statement list.
type Block struct {
	ID         NodeID
	Statements []Statement
	Span       position.Span
}

func (b *Block) GetID() NodeID          { return b.ID }
func (b *Block) GetSpan() position.Span { return b.Span }
func (b *Block) GetChildren() []Node    { return statementNodes(b.Statements) }
func (b *Block) hirStatementNode()      {}
func (b *Block) String() string {
	return fmt.Sprintf("Block{%d statements}", len(b.Statements))
}

// Composite is a statement list that does not open a scope: declarations inside it
// are visible to the statements following the composite. As an expression its value
// is the value of the last statement.
type Composite struct {
	ID         NodeID
	Statements []Statement
	Type       Type
	Origin     StatementOrigin
	Span       position.Span
}

func (c *Composite) GetID() NodeID          { return c.ID }
func (c *Composite) GetSpan() position.Span { return c.Span }
func (c *Composite) GetType() Type          { return c.Type }
func (c *Composite) GetChildren() []Node    { return statementNodes(c.Statements) }
func (c *Composite) hirStatementNode()      {}
func (c *Composite) hirExpressionNode()     {}
func (c *Composite) String() string {
	if c.Origin != OriginNone {
		return fmt.Sprintf("Composite{%s, %d statements}", c.Origin, len(c.Statements))
	}
	return fmt.Sprintf("Composite{%d statements}", len(c.Statements))
}

// Variable declares a local binding.
type Variable struct {
	ID          NodeID
	Name        string
	Type        Type
	Mutable     bool
	Initializer Expression // nil for uninitialised declarations
	Origin      DeclarationOrigin
	Span        position.Span
}

func (v *Variable) GetID() NodeID          { return v.ID }
func (v *Variable) GetSpan() position.Span { return v.Span }
func (v *Variable) GetChildren() []Node {
	if v.Initializer == nil {
		return nil
	}
	return []Node{v.Initializer}
}
func (v *Variable) hirStatementNode() {}
func (v *Variable) String() string {
	kw := "val"
	if v.Mutable {
		kw = "var"
	}
	return fmt.Sprintf("Variable{%s %s: %s}", kw, v.Name, v.Type)
}

// GetValue reads a local binding.
type GetValue struct {
	ID       NodeID
	Variable *Variable
	Span     position.Span
}

func (g *GetValue) GetID() NodeID          { return g.ID }
func (g *GetValue) GetSpan() position.Span { return g.Span }
func (g *GetValue) GetType() Type          { return g.Variable.Type }
func (g *GetValue) GetChildren() []Node    { return nil }
func (g *GetValue) hirStatementNode()      {}
func (g *GetValue) hirExpressionNode()     {}
func (g *GetValue) String() string         { return fmt.Sprintf("GetValue{%s}", g.Variable.Name) }

// SetValue assigns a mutable local binding.
type SetValue struct {
	ID       NodeID
	Variable *Variable
	Value    Expression
	Span     position.Span
}

func (s *SetValue) GetID() NodeID          { return s.ID }
func (s *SetValue) GetSpan() position.Span { return s.Span }
func (s *SetValue) GetChildren() []Node    { return []Node{s.Value} }
func (s *SetValue) hirStatementNode()      {}
func (s *SetValue) String() string         { return fmt.Sprintf("SetValue{%s}", s.Variable.Name) }

// Const is a literal of a primitive type. Booleans are stored as 0 or 1, chars as
// their UTF-16 code unit and Ints sign-extended.
type Const struct {
	ID    NodeID
	Type  Type
	Value int64
	Span  position.Span
}

func (c *Const) GetID() NodeID          { return c.ID }
func (c *Const) GetSpan() position.Span { return c.Span }
func (c *Const) GetType() Type          { return c.Type }
func (c *Const) GetChildren() []Node    { return nil }
func (c *Const) hirStatementNode()      {}
func (c *Const) hirExpressionNode()     {}
func (c *Const) String() string         { return fmt.Sprintf("Const{%s %d}", c.Type, c.Value) }

// Call invokes a function symbol. Receiver is nil for top-level functions.
type Call struct {
	ID       NodeID
	Symbol   *FunctionSymbol
	Receiver Expression
	Args     []Expression
	Type     Type
	Origin   StatementOrigin
	Span     position.Span
}

func (c *Call) GetID() NodeID          { return c.ID }
func (c *Call) GetSpan() position.Span { return c.Span }
func (c *Call) GetType() Type          { return c.Type }
func (c *Call) GetChildren() []Node {
	children := make([]Node, 0, len(c.Args)+1)
	if c.Receiver != nil {
		children = append(children, c.Receiver)
	}
	for _, a := range c.Args {
		children = append(children, a)
	}
	return children
}
func (c *Call) hirStatementNode()  {}
func (c *Call) hirExpressionNode() {}
func (c *Call) String() string {
	return fmt.Sprintf("Call{%s}", c.Symbol.Signature())
}

// ImplicitNotNull asserts a nullable value is present.
type ImplicitNotNull struct {
	ID       NodeID
	Argument Expression
	Type     Type
	Span     position.Span
}

func (n *ImplicitNotNull) GetID() NodeID          { return n.ID }
func (n *ImplicitNotNull) GetSpan() position.Span { return n.Span }
func (n *ImplicitNotNull) GetType() Type          { return n.Type }
func (n *ImplicitNotNull) GetChildren() []Node    { return []Node{n.Argument} }
func (n *ImplicitNotNull) hirStatementNode()      {}
func (n *ImplicitNotNull) hirExpressionNode()     {}
func (n *ImplicitNotNull) String() string         { return "ImplicitNotNull{}" }

// If is a conditional statement. Else may be nil.
type If struct {
	ID        NodeID
	Condition Expression
	Then      Statement
	Else      Statement
	Span      position.Span
}

func (i *If) GetID() NodeID          { return i.ID }
func (i *If) GetSpan() position.Span { return i.Span }
func (i *If) GetChildren() []Node {
	if i.Else == nil {
		return []Node{i.Condition, i.Then}
	}
	return []Node{i.Condition, i.Then, i.Else}
}
func (i *If) hirStatementNode() {}
func (i *If) String() string    { return fmt.Sprintf("If{%s}", i.Condition) }

// WhileLoop checks its condition before each iteration.
type WhileLoop struct {
	ID        NodeID
	Label     string
	Condition Expression
	Body      Statement
	Origin    StatementOrigin
	Span      position.Span
}

func (w *WhileLoop) GetID() NodeID              { return w.ID }
func (w *WhileLoop) GetSpan() position.Span     { return w.Span }
func (w *WhileLoop) GetLabel() string           { return w.Label }
func (w *WhileLoop) GetCondition() Expression   { return w.Condition }
func (w *WhileLoop) GetBody() Statement         { return w.Body }
func (w *WhileLoop) GetOrigin() StatementOrigin { return w.Origin }
func (w *WhileLoop) GetChildren() []Node        { return []Node{w.Condition, w.Body} }
func (w *WhileLoop) hirStatementNode()          {}
func (w *WhileLoop) hirLoopNode()               {}
func (w *WhileLoop) String() string {
	return fmt.Sprintf("WhileLoop{%s#%d}", w.Label, w.ID)
}

// DoWhileLoop checks its condition after each iteration. The condition is evaluated
// in the scope of the body.
type DoWhileLoop struct {
	ID        NodeID
	Label     string
	Condition Expression
	Body      Statement
	Origin    StatementOrigin
	Span      position.Span
}

func (d *DoWhileLoop) GetID() NodeID              { return d.ID }
func (d *DoWhileLoop) GetSpan() position.Span     { return d.Span }
func (d *DoWhileLoop) GetLabel() string           { return d.Label }
func (d *DoWhileLoop) GetCondition() Expression   { return d.Condition }
func (d *DoWhileLoop) GetBody() Statement         { return d.Body }
func (d *DoWhileLoop) GetOrigin() StatementOrigin { return d.Origin }
func (d *DoWhileLoop) GetChildren() []Node        { return []Node{d.Body, d.Condition} }
func (d *DoWhileLoop) hirStatementNode()          {}
func (d *DoWhileLoop) hirLoopNode()               {}
func (d *DoWhileLoop) String() string {
	return fmt.Sprintf("DoWhileLoop{%s#%d}", d.Label, d.ID)
}

// Break exits the referenced loop. Loop is a reference, not a child.
type Break struct {
	ID    NodeID
	Loop  Loop
	Label string
	Span  position.Span
}

func (b *Break) GetID() NodeID          { return b.ID }
func (b *Break) GetSpan() position.Span { return b.Span }
func (b *Break) GetChildren() []Node    { return nil }
func (b *Break) hirStatementNode()      {}
func (b *Break) String() string         { return fmt.Sprintf("Break{#%d}", b.Loop.GetID()) }

// Continue starts the next iteration of the referenced loop.
type Continue struct {
	ID    NodeID
	Loop  Loop
	Label string
	Span  position.Span
}

func (c *Continue) GetID() NodeID          { return c.ID }
func (c *Continue) GetSpan() position.Span { return c.Span }
func (c *Continue) GetChildren() []Node    { return nil }
func (c *Continue) hirStatementNode()      {}
func (c *Continue) String() string         { return fmt.Sprintf("Continue{#%d}", c.Loop.GetID()) }

func statementNodes(stmts []Statement) []Node {
	nodes := make([]Node, len(stmts))
	for i, s := range stmts {
		nodes[i] = s
	}
	return nodes
}

// Describe renders a node and its origin tags on one line; used in error contexts.
func Describe(n Node) string {
	var sb strings.Builder
	sb.WriteString(n.String())
	if sp := n.GetSpan(); sp.IsValid() {
		sb.WriteString(" at ")
		sb.WriteString(sp.String())
	}
	return sb.String()
}
