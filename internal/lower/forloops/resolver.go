package forloops

import (
	"github.com/orizon-lang/rangeloop/internal/hir"
	"github.com/orizon-lang/rangeloop/internal/intrinsics"
)

//go:generate mockgen -source=resolver.go -destination=mock_resolver_test.go -package=forloops

// Resolver is what the pass needs from symbol resolution. *intrinsics.IntrinsicRegistry
// implements it.
type Resolver interface {
	// ExpressionType returns the static result type of e.
	ExpressionType(e hir.Expression) hir.Type
	// ResolveCall returns the function a call resolves to.
	ResolveCall(call *hir.Call) *hir.FunctionSymbol
	// Builders returns every builder function of a progression kind.
	Builders(kind intrinsics.IntrinsicKind) []*hir.FunctionSymbol
	// Intrinsic returns an operator or runtime helper for an element type.
	Intrinsic(kind intrinsics.IntrinsicKind, element intrinsics.ElementType) (*hir.FunctionSymbol, error)
	// Cast returns the conversion between element types, or nil when from == to.
	Cast(from, to intrinsics.ElementType) (*hir.FunctionSymbol, error)
}

var _ Resolver = (*intrinsics.IntrinsicRegistry)(nil)
