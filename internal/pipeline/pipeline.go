// Package pipeline runs lowering passes over many compilation units concurrently.
// Every unit gets fresh pass instances, so passes never share working state.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/hashicorp/go-set/v3"
	"golang.org/x/sync/errgroup"

	"github.com/orizon-lang/rangeloop/internal/hir"
)

// Stats holds the named counters a pass reports for one unit.
type Stats map[string]int

// String renders the counters as sorted key=value pairs.
func (s Stats) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, s[k])
	}
	return strings.Join(parts, " ")
}

// Pass rewrites one unit in place. A failed pass may leave the unit partially
// rewritten.
type Pass interface {
	Name() string
	Lower(ctx context.Context, f *hir.File) (Stats, error)
}

// Factory creates a fresh pass instance for one unit.
type Factory func() Pass

// Result is the outcome of lowering one unit. Unit is nil when Err is set.
type Result struct {
	Name  string
	Unit  *hir.File
	Stats map[string]Stats
	Err   error
}

// Pipeline is an ordered list of passes.
type Pipeline struct {
	factories []Factory
	workers   int
	verify    bool
	disabled  *set.Set[string]
	logger    *log.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithWorkers bounds the number of units lowered at once.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithVerify runs hir.Verify on every unit after its last pass.
func WithVerify(v bool) Option {
	return func(p *Pipeline) { p.verify = v }
}

// WithDisabled skips the passes with the given names.
func WithDisabled(names ...string) Option {
	return func(p *Pipeline) { p.disabled.InsertSlice(names) }
}

// WithLogger sets the logger for failure and per-unit reports. A nil logger is ignored.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a pipeline running the passes built by factories, in order.
func New(factories []Factory, opts ...Option) *Pipeline {
	p := &Pipeline{
		factories: factories,
		workers:   runtime.NumCPU(),
		disabled:  set.New[string](0),
		logger:    log.New(io.Discard, "[rangeloop] ", 0),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run lowers every unit and returns one result per unit, in input order. A failing
// unit does not stop the others; the returned error is only set when ctx is
// cancelled.
func (p *Pipeline) Run(ctx context.Context, units []*hir.File) ([]Result, error) {
	results := make([]Result, len(units))
	semaphore := make(chan struct{}, p.workers)

	var mu sync.Mutex
	failed := 0

	g, gctx := errgroup.WithContext(ctx)
	for i, unit := range units {
		i, unit := i, unit

		g.Go(func() error {
			select {
			case semaphore <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-semaphore }()

			res := p.RunUnit(gctx, unit)
			results[i] = res
			if res.Err != nil {
				mu.Lock()
				failed++
				mu.Unlock()
			}
			return gctx.Err()
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if failed > 0 {
		p.logger.Printf("%d of %d units failed", failed, len(units))
	}
	return results, nil
}

// RunUnit runs every enabled pass over f, then verifies it when configured.
func (p *Pipeline) RunUnit(ctx context.Context, f *hir.File) Result {
	res := Result{Name: f.Name, Stats: make(map[string]Stats)}
	for _, factory := range p.factories {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		pass := factory()
		if p.disabled.Contains(pass.Name()) {
			continue
		}
		stats, err := pass.Lower(ctx, f)
		if err != nil {
			res.Err = fmt.Errorf("%s: %s: %w", f.Name, pass.Name(), err)
			p.logger.Print(res.Err)
			return res
		}
		res.Stats[pass.Name()] = stats
		p.logger.Printf("%s: %s %s", f.Name, pass.Name(), stats)
	}
	if p.verify {
		if err := hir.Verify(f); err != nil {
			res.Err = fmt.Errorf("%s: verify: %w", f.Name, err)
			p.logger.Print(res.Err)
			return res
		}
	}
	res.Unit = f
	return res
}

// Err joins the errors of all failed results, or returns nil.
func Err(results []Result) error {
	var msgs []string
	var first error
	for _, r := range results {
		if r.Err != nil {
			if first == nil {
				first = r.Err
			}
			msgs = append(msgs, r.Err.Error())
		}
	}
	switch len(msgs) {
	case 0:
		return nil
	case 1:
		return first
	}
	return fmt.Errorf("%d units failed:\n%s", len(msgs), strings.Join(msgs, "\n"))
}
