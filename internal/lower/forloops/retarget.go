package forloops

import "github.com/orizon-lang/rangeloop/internal/hir"

// retarget points every break and continue that referenced a rewritten while loop at
// its replacement. It runs after the whole unit has been lowered, because a jump can
// be visited before the loop it targets has been rewritten. Jumps without a target
// are left for hir.Verify to report.
func retarget(f *hir.File, oldLoopToNewLoop map[hir.NodeID]hir.Loop) int {
	if len(oldLoopToNewLoop) == 0 {
		return 0
	}
	n := 0
	hir.Walk(f, func(node hir.Node) bool {
		switch jump := node.(type) {
		case *hir.Break:
			if jump.Loop == nil {
				return true
			}
			if newLoop, ok := oldLoopToNewLoop[jump.Loop.GetID()]; ok {
				jump.Loop = newLoop
				n++
			}
		case *hir.Continue:
			if jump.Loop == nil {
				return true
			}
			if newLoop, ok := oldLoopToNewLoop[jump.Loop.GetID()]; ok {
				jump.Loop = newLoop
				n++
			}
		}
		return true
	})
	return n
}
