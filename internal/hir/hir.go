// Package hir defines the tree-shaped High-level Intermediate Representation consumed
// by rangeloop's lowering passes.
//
// HIR keeps source-level control flow (while and do/while loops, break and continue
// that reference their loop by identity) so that loop specializations can be expressed
// as tree rewrites:
// - Every node carries a NodeID assigned at construction and a source span.
// - Declarations and calls carry origin tags left by earlier desugaring phases.
// - Statement lists are either scoped (Block) or transparent (Composite).
package hir

import (
	"sync/atomic"

	"github.com/orizon-lang/rangeloop/internal/position"
)

// NodeID uniquely identifies an HIR node within a process.
type NodeID uint64

var lastNodeID atomic.Uint64

// NewID returns a fresh node id. Ids are monotonically increasing and never reused,
// so they are safe map keys across concurrently lowered units.
func NewID() NodeID {
	return NodeID(lastNodeID.Add(1))
}

// Node is the base interface for all HIR nodes.
type Node interface {
	// GetID returns the unique identifier for this node.
	GetID() NodeID
	// GetSpan returns the source span covered by this node.
	GetSpan() position.Span
	// GetChildren returns child nodes for tree traversal.
	GetChildren() []Node
	// String returns a short human-readable representation of the node.
	String() string
}

// Statement represents all statement nodes in the HIR.
type Statement interface {
	Node
	hirStatementNode() // Marker method to distinguish statements
}

// Expression represents all expression nodes in the HIR. Every expression may
// appear in statement position.
type Expression interface {
	Statement
	// GetType returns the static result type of the expression.
	GetType() Type
	hirExpressionNode() // Marker method to distinguish expressions
}

// Loop is implemented by WhileLoop and DoWhileLoop.
type Loop interface {
	Statement
	GetLabel() string
	GetCondition() Expression
	GetBody() Statement
	GetOrigin() StatementOrigin
	hirLoopNode()
}

// DeclarationOrigin records which phase introduced a variable declaration.
type DeclarationOrigin int

const (
	OriginDefined DeclarationOrigin = iota
	OriginForLoopIterator
	OriginForLoopVariable
	OriginForLoopImplicitVariable
	OriginIRTemporaryVariable
)

var declarationOriginNames = map[DeclarationOrigin]string{
	OriginDefined:                 "DEFINED",
	OriginForLoopIterator:         "FOR_LOOP_ITERATOR",
	OriginForLoopVariable:         "FOR_LOOP_VARIABLE",
	OriginForLoopImplicitVariable: "FOR_LOOP_IMPLICIT_VARIABLE",
	OriginIRTemporaryVariable:     "IR_TEMPORARY_VARIABLE",
}

func (o DeclarationOrigin) String() string {
	if name, ok := declarationOriginNames[o]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseDeclarationOrigin is the inverse of DeclarationOrigin.String.
func ParseDeclarationOrigin(s string) (DeclarationOrigin, bool) {
	for o, name := range declarationOriginNames {
		if name == s {
			return o, true
		}
	}
	return OriginDefined, false
}

// StatementOrigin tags calls, loops and composites produced by desugaring.
type StatementOrigin int

const (
	OriginNone StatementOrigin = iota
	OriginForLoop
	OriginForLoopIteratorCall
	OriginForLoopNext
	OriginForLoopHasNext
	OriginForLoopInnerWhile
	OriginStepChain
	OriginIn
)

var statementOriginNames = map[StatementOrigin]string{
	OriginNone:                "",
	OriginForLoop:             "FOR_LOOP",
	OriginForLoopIteratorCall: "FOR_LOOP_ITERATOR",
	OriginForLoopNext:         "FOR_LOOP_NEXT",
	OriginForLoopHasNext:      "FOR_LOOP_HAS_NEXT",
	OriginForLoopInnerWhile:   "FOR_LOOP_INNER_WHILE",
	OriginStepChain:           "STEP_CHAIN",
	OriginIn:                  "IN",
}

func (o StatementOrigin) String() string {
	return statementOriginNames[o]
}

// ParseStatementOrigin is the inverse of StatementOrigin.String.
func ParseStatementOrigin(s string) (StatementOrigin, bool) {
	for o, name := range statementOriginNames {
		if name == s {
			return o, true
		}
	}
	return OriginNone, false
}
