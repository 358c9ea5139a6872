// Package intrinsics provides the builtin functions the loop lowering passes
// recognize and synthesize: progression builders, the iterator protocol, per element
// type arithmetic, comparison and cast operators, and the runtime helpers for step
// validation and last element computation.
//
// The registry is built once and is read-only afterwards; it is safe for concurrent use.
package intrinsics

import (
	"fmt"
	"sort"
	"sync"

	"github.com/orizon-lang/rangeloop/internal/errors"
	"github.com/orizon-lang/rangeloop/internal/hir"
)

// IntrinsicKind represents the operation an intrinsic performs.
type IntrinsicKind int

const (
	// Progression builders
	IntrinsicRangeTo IntrinsicKind = iota
	IntrinsicUntil
	IntrinsicDownTo
	IntrinsicStep
	IntrinsicIndices

	// Iterator protocol
	IntrinsicIterator
	IntrinsicHasNext
	IntrinsicNext

	// Arithmetic
	IntrinsicDec
	IntrinsicPlus
	IntrinsicUnaryMinus
	IntrinsicCast

	// Comparison
	IntrinsicLess
	IntrinsicLessOrEqual
	IntrinsicGreater
	IntrinsicGreaterOrEqual
	IntrinsicEquals
	IntrinsicNot

	// Runtime helpers
	IntrinsicProgressionLast
	IntrinsicCheckStep
	IntrinsicLastIndex

	// Progression properties
	IntrinsicFirst
	IntrinsicLast
	IntrinsicStepValue
	IntrinsicIsEmpty

	// Membership
	IntrinsicContains
	IntrinsicAnd
)

var kindNames = [...]string{
	IntrinsicRangeTo:         "rangeTo",
	IntrinsicUntil:           "until",
	IntrinsicDownTo:          "downTo",
	IntrinsicStep:            "step",
	IntrinsicIndices:         "indices",
	IntrinsicIterator:        "iterator",
	IntrinsicHasNext:         "hasNext",
	IntrinsicNext:            "next",
	IntrinsicDec:             "dec",
	IntrinsicPlus:            "plus",
	IntrinsicUnaryMinus:      "unaryMinus",
	IntrinsicCast:            "cast",
	IntrinsicLess:            "less",
	IntrinsicLessOrEqual:     "lessOrEqual",
	IntrinsicGreater:         "greater",
	IntrinsicGreaterOrEqual:  "greaterOrEqual",
	IntrinsicEquals:          "equals",
	IntrinsicNot:             "not",
	IntrinsicProgressionLast: "getProgressionLast",
	IntrinsicCheckStep:       "checkProgressionStep",
	IntrinsicLastIndex:       "lastIndex",
	IntrinsicFirst:           "first",
	IntrinsicLast:            "last",
	IntrinsicStepValue:       "stepValue",
	IntrinsicIsEmpty:         "isEmpty",
	IntrinsicContains:        "contains",
	IntrinsicAnd:             "and",
}

func (k IntrinsicKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("IntrinsicKind(%d)", int(k))
}

// IntrinsicCategory categorizes intrinsics
type IntrinsicCategory int

const (
	CategoryBuilder IntrinsicCategory = iota
	CategoryIterator
	CategoryArithmetic
	CategoryComparison
	CategoryRuntime
	CategoryProperty
)

// IntrinsicInfo describes a builtin function.
type IntrinsicInfo struct {
	Symbol   *hir.FunctionSymbol
	Kind     IntrinsicKind
	Category IntrinsicCategory
	// Element is the element type the operation produces or works on. For casts it
	// is the target type.
	Element ElementType
	// Operands holds the element types of the receiver and argument of builders,
	// and the source type of casts.
	Operands []ElementType
}

type tableKey struct {
	kind    IntrinsicKind
	element ElementType
}

// IntrinsicRegistry manages the builtin function symbols.
type IntrinsicRegistry struct {
	bySignature map[string]*IntrinsicInfo
	bySymbol    map[*hir.FunctionSymbol]*IntrinsicInfo
	byCategory  map[IntrinsicCategory][]*IntrinsicInfo
	byKind      map[IntrinsicKind][]*IntrinsicInfo
	table       map[tableKey]*hir.FunctionSymbol
	casts       [len(Elements)][len(Elements)]*hir.FunctionSymbol
}

// NewIntrinsicRegistry creates a registry populated with every builtin.
func NewIntrinsicRegistry() *IntrinsicRegistry {
	r := &IntrinsicRegistry{
		bySignature: make(map[string]*IntrinsicInfo),
		bySymbol:    make(map[*hir.FunctionSymbol]*IntrinsicInfo),
		byCategory:  make(map[IntrinsicCategory][]*IntrinsicInfo),
		byKind:      make(map[IntrinsicKind][]*IntrinsicInfo),
		table:       make(map[tableKey]*hir.FunctionSymbol),
	}
	registerBuilders(r)
	registerIteratorProtocol(r)
	registerOperators(r)
	registerRuntime(r)
	registerProperties(r)
	return r
}

var (
	defaultOnce     sync.Once
	defaultRegistry *IntrinsicRegistry
)

// Default returns the process-wide registry.
func Default() *IntrinsicRegistry {
	defaultOnce.Do(func() {
		defaultRegistry = NewIntrinsicRegistry()
	})
	return defaultRegistry
}

// Register registers an intrinsic. Builders may share a (kind, element) pair; every
// other intrinsic is also entered into the per element table.
func (r *IntrinsicRegistry) Register(info *IntrinsicInfo) {
	sig := info.Symbol.Signature()
	if _, dup := r.bySignature[sig]; dup {
		panic("intrinsics: duplicate registration of " + sig)
	}
	r.bySignature[sig] = info
	r.bySymbol[info.Symbol] = info
	r.byCategory[info.Category] = append(r.byCategory[info.Category], info)
	r.byKind[info.Kind] = append(r.byKind[info.Kind], info)

	switch info.Kind {
	case IntrinsicRangeTo, IntrinsicUntil, IntrinsicDownTo, IntrinsicIndices:
	case IntrinsicNot, IntrinsicAnd:
		for _, e := range Elements {
			r.table[tableKey{info.Kind, e}] = info.Symbol
		}
	case IntrinsicCast:
		r.casts[info.Operands[0]][info.Element] = info.Symbol
	default:
		r.table[tableKey{info.Kind, info.Element}] = info.Symbol
	}
}

// Lookup finds an intrinsic by signature.
func (r *IntrinsicRegistry) Lookup(signature string) (*IntrinsicInfo, bool) {
	info, exists := r.bySignature[signature]
	return info, exists
}

// Builtin reports whether sym is one of the registry's symbols.
func (r *IntrinsicRegistry) Builtin(sym *hir.FunctionSymbol) (*IntrinsicInfo, bool) {
	info, exists := r.bySymbol[sym]
	return info, exists
}

// GetByCategory returns all intrinsics in a category
func (r *IntrinsicRegistry) GetByCategory(category IntrinsicCategory) []*IntrinsicInfo {
	return r.byCategory[category]
}

// Signatures returns every registered signature in sorted order.
func (r *IntrinsicRegistry) Signatures() []string {
	sigs := make([]string, 0, len(r.bySignature))
	for sig := range r.bySignature {
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)
	return sigs
}

// Builders returns the symbols of every progression builder of the given kind.
func (r *IntrinsicRegistry) Builders(kind IntrinsicKind) []*hir.FunctionSymbol {
	infos := r.byKind[kind]
	syms := make([]*hir.FunctionSymbol, len(infos))
	for i, info := range infos {
		syms[i] = info.Symbol
	}
	return syms
}

// Intrinsic returns the operator of the given kind for an element type.
func (r *IntrinsicRegistry) Intrinsic(kind IntrinsicKind, element ElementType) (*hir.FunctionSymbol, error) {
	if sym, ok := r.table[tableKey{kind, element}]; ok {
		return sym, nil
	}
	return nil, errors.InternalCompilerError("intrinsics",
		fmt.Sprintf("no intrinsic %s for element type %s", kind, element), nil)
}

// Cast returns the narrowing or widening conversion between two element types. It
// returns nil without error when no conversion is needed.
func (r *IntrinsicRegistry) Cast(from, to ElementType) (*hir.FunctionSymbol, error) {
	if from == to {
		return nil, nil
	}
	if int(from) >= len(Elements) || int(to) >= len(Elements) || r.casts[from][to] == nil {
		return nil, errors.InternalCompilerError("intrinsics",
			fmt.Sprintf("no conversion from %s to %s", from, to), nil)
	}
	return r.casts[from][to], nil
}

// ResolveCall returns the function a call resolves to.
func (r *IntrinsicRegistry) ResolveCall(call *hir.Call) *hir.FunctionSymbol {
	return call.Symbol
}

// ExpressionType returns the static type of e.
func (r *IntrinsicRegistry) ExpressionType(e hir.Expression) hir.Type {
	return e.GetType()
}

// IteratorSymbols implements hir.IteratorProtocol for the progression types.
func (r *IntrinsicRegistry) IteratorSymbols(iterable hir.Type) (*hir.FunctionSymbol, *hir.FunctionSymbol, *hir.FunctionSymbol, bool) {
	elem, ok := ProgressionElement(iterable)
	if !ok {
		return nil, nil, nil, false
	}
	return r.table[tableKey{IntrinsicIterator, elem}],
		r.table[tableKey{IntrinsicHasNext, elem}],
		r.table[tableKey{IntrinsicNext, elem}],
		true
}
