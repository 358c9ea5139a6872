package hir

// Transformer returns the replacement for a statement. Implementations that want to
// descend call TransformChildren themselves, which lets them choose the order in
// which a node and its children are rewritten.
type Transformer interface {
	Transform(s Statement) Statement
}

// TransformerFunc adapts an ordinary function to the Transformer interface.
type TransformerFunc func(s Statement) Statement

func (f TransformerFunc) Transform(s Statement) Statement { return f(s) }

// TransformChildren replaces every child slot of n with t's result for that child,
// in evaluation order. A non-expression result in an expression slot is wrapped in
// a Unit-typed Composite; a function body that is no longer a Block is wrapped in one.
func TransformChildren(t Transformer, n Node) {
	switch n := n.(type) {
	case *File:
		for _, fn := range n.Functions {
			TransformChildren(t, fn)
		}
	case *Function:
		if n.Body != nil {
			n.Body = asBlock(t.Transform(n.Body))
		}
	case *Block:
		n.Statements = transformList(t, n.Statements)
	case *Composite:
		n.Statements = transformList(t, n.Statements)
	case *Variable:
		if n.Initializer != nil {
			n.Initializer = transformExpression(t, n.Initializer)
		}
	case *SetValue:
		n.Value = transformExpression(t, n.Value)
	case *Call:
		if n.Receiver != nil {
			n.Receiver = transformExpression(t, n.Receiver)
		}
		for i, a := range n.Args {
			n.Args[i] = transformExpression(t, a)
		}
	case *ImplicitNotNull:
		n.Argument = transformExpression(t, n.Argument)
	case *If:
		n.Condition = transformExpression(t, n.Condition)
		n.Then = t.Transform(n.Then)
		if n.Else != nil {
			n.Else = t.Transform(n.Else)
		}
	case *WhileLoop:
		n.Condition = transformExpression(t, n.Condition)
		n.Body = t.Transform(n.Body)
	case *DoWhileLoop:
		n.Body = t.Transform(n.Body)
		n.Condition = transformExpression(t, n.Condition)
	case *GetValue, *Const, *Break, *Continue:
		// leaves
	}
}

func transformList(t Transformer, stmts []Statement) []Statement {
	for i, s := range stmts {
		stmts[i] = t.Transform(s)
	}
	return stmts
}

func transformExpression(t Transformer, e Expression) Expression {
	return asExpression(t.Transform(e))
}

func asExpression(s Statement) Expression {
	if e, ok := s.(Expression); ok {
		return e
	}
	return &Composite{ID: NewID(), Statements: []Statement{s}, Type: Unit, Span: s.GetSpan()}
}

func asBlock(s Statement) *Block {
	if b, ok := s.(*Block); ok {
		return b
	}
	return &Block{ID: NewID(), Statements: []Statement{s}, Span: s.GetSpan()}
}

// Walk traverses the tree rooted at n in depth-first pre-order. If fn returns false
// the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.GetChildren() {
		Walk(child, fn)
	}
}
