// Package forloops specializes desugared for-loops over Int, Long and Char
// progressions into counted loops.
//
// The front end lowers `for (x in e) body` into
//
//	val it = e.iterator()
//	while (it.hasNext()) { val x = it.next(); body }
//
// When e is built by rangeTo, until, downTo, step or indices, the iterator and its
// progression object are replaced by an induction variable, a precomputed last
// element and a guarded do/while loop that stops after visiting last. Loops over
// anything else are left untouched.
package forloops

import (
	"context"
	"io"
	"log"

	"github.com/orizon-lang/rangeloop/internal/errors"
	"github.com/orizon-lang/rangeloop/internal/hir"
	"github.com/orizon-lang/rangeloop/internal/pipeline"
)

const passName = "forloops"

// Stats counts what one Lower call did.
type Stats struct {
	Headers    int
	Loops      int
	Retargeted int
	Skipped    int
	// Contains counts `x in progression` checks rewritten into comparisons.
	Contains int
}

// Counters converts s to the generic form reported by the pipeline.
func (s Stats) Counters() pipeline.Stats {
	return pipeline.Stats{
		"headers":    s.Headers,
		"lowered":    s.Loops,
		"retargeted": s.Retargeted,
		"skipped":    s.Skipped,
		"contains":   s.Contains,
	}
}

// Lowering is the for-loop lowering pass.
type Lowering struct {
	resolver Resolver
	logger   *log.Logger
}

// Option configures a Lowering.
type Option func(*Lowering)

// WithLogger sets the logger used for per-loop diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(p *Lowering) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates the pass over the given symbol resolver.
func New(resolver Resolver, opts ...Option) *Lowering {
	p := &Lowering{
		resolver: resolver,
		logger:   log.New(io.Discard, "[rangeloop] ", 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements pipeline.Pass.
func (p *Lowering) Name() string { return passName }

// Lower implements pipeline.Pass.
func (p *Lowering) Lower(ctx context.Context, f *hir.File) (pipeline.Stats, error) {
	stats, err := p.LowerFile(ctx, f)
	if err != nil {
		return nil, err
	}
	return stats.Counters(), nil
}

// LowerFile rewrites every recognized for-loop in f in place. On error f may be
// partially rewritten and must be discarded.
func (p *Lowering) LowerFile(ctx context.Context, f *hir.File) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}

	t := newTransformer(p.resolver, p.logger)
	for _, fn := range f.Functions {
		if err := ctx.Err(); err != nil {
			return t.stats, err
		}
		hir.TransformChildren(t, fn)
		if t.err != nil {
			return t.stats, t.err
		}
	}
	if err := t.checkConsumed(); err != nil {
		return t.stats, err
	}
	t.stats.Retargeted = retarget(f, t.oldLoopToNewLoop)

	p.logger.Printf("%s: headers=%d lowered=%d skipped=%d retargeted=%d contains=%d",
		f.Name, t.stats.Headers, t.stats.Loops, t.stats.Skipped, t.stats.Retargeted, t.stats.Contains)
	return t.stats, nil
}

// transformer holds the working state of one Lower call.
type transformer struct {
	resolver   Resolver
	builder    *hir.Builder
	recognizer *recognizer
	logger     *log.Logger

	loops            map[hir.NodeID]*ForLoopInfo
	order            []hir.NodeID
	oldLoopToNewLoop map[hir.NodeID]hir.Loop
	stats            Stats
	err              error
}

func newTransformer(r Resolver, logger *log.Logger) *transformer {
	b := hir.NewBuilder()
	return &transformer{
		resolver:         r,
		builder:          b,
		recognizer:       newRecognizer(r, b),
		logger:           logger,
		loops:            make(map[hir.NodeID]*ForLoopInfo),
		oldLoopToNewLoop: make(map[hir.NodeID]hir.Loop),
	}
}

// Transform implements hir.Transformer. After the first error every node is
// returned unchanged.
func (t *transformer) Transform(s hir.Statement) hir.Statement {
	if t.err != nil || s == nil {
		return s
	}

	var (
		replaced hir.Statement
		err      error
	)
	switch n := s.(type) {
	case *hir.Variable:
		replaced, err = t.variable(n)
	case *hir.WhileLoop:
		replaced, err = t.lowerLoop(n)
	case *hir.Call:
		if n.Origin == hir.OriginIn {
			replaced, err = t.membership(n)
		}
	}
	if err != nil {
		t.err = err
		return s
	}
	if replaced != nil {
		return replaced
	}

	hir.TransformChildren(t, s)
	return s
}

func (t *transformer) variable(v *hir.Variable) (hir.Statement, error) {
	init, ok := v.Initializer.(*hir.Call)
	if !ok {
		return nil, nil
	}
	switch {
	case v.Origin == hir.OriginForLoopIterator && init.Origin == hir.OriginForLoopIteratorCall:
		header, err := t.lowerHeader(v, init)
		if header == nil || err != nil {
			return nil, err
		}
		// The moved first, bound and step expressions may contain loops of their own.
		hir.TransformChildren(t, header)
		return header, t.err
	case (v.Origin == hir.OriginForLoopVariable || v.Origin == hir.OriginForLoopImplicitVariable) &&
		init.Origin == hir.OriginForLoopNext:
		return t.lowerNext(v, init)
	}
	return nil, nil
}

// checkConsumed reports a header whose loop was never rewritten.
func (t *transformer) checkConsumed() error {
	for _, id := range t.order {
		info := t.loops[id]
		if !info.consumed {
			return errors.InternalCompilerError(passName, "for-loop header was never consumed by a loop",
				map[string]interface{}{"iterator": info.iterator.Name})
		}
	}
	return nil
}
