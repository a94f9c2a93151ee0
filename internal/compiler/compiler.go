// Package compiler orchestrates the core pipeline stage: running the
// intrinsics rewrite and arithmetic legalization passes to a fixed point
// on every method, in parallel across methods, then optionally verifying
// the hardware hazard invariants the lowering passes are responsible for.
package compiler

import (
	"runtime"
	"sync"

	"github.com/xyproto/vc4c/internal/config"
	"github.com/xyproto/vc4c/internal/intrinsics"
	"github.com/xyproto/vc4c/internal/ir"
)

// Compile legalizes every method's instructions in place. Methods are
// independent units of work - none of the rewrite passes reach across a
// method boundary - so they run on a worker pool bounded by the host's
// CPU count, mirroring the teacher's per-function optimizer pool.
func Compile(mod *ir.Module, cfg config.Config) error {
	logger := cfg.Logger
	logger.Debug("compiling %d method(s) from %s", len(mod.Methods), mod.SourceName)

	sem := make(chan struct{}, runtime.NumCPU())
	var wg sync.WaitGroup
	errs := make([]error, len(mod.Methods))

	for i, m := range mod.Methods {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, m *ir.Method) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[i] = compileMethod(m)
		}(i, m)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	if cfg.VerifyOutput {
		for _, m := range mod.Methods {
			if err := verifyHazards(m); err != nil {
				return err
			}
		}
	}

	logger.Info("compiled %d kernel(s)", len(mod.Kernels()))
	return nil
}

// compileMethod runs the rewrite/legalize/precalculate passes to a fixed
// point: each pass over a method's instructions may rewrite an
// instruction into a form that itself becomes foldable or reroutable
// (e.g. a legalized mul producing two literal operands that precalculate
// away), so the pass keeps going until a full sweep makes no change.
func compileMethod(m *ir.Method) error {
	for {
		changed := false
		for _, b := range m.Blocks() {
			w := b.Begin()
			for w.Has() {
				ins := w.Get()
				switch ins.Kind {
				case ir.KindMethodCall:
					handled, err := intrinsics.RewriteCall(w, m, ins)
					if err != nil {
						return err
					}
					if handled {
						changed = true
						continue
					}
				case ir.KindOperation:
					handled, err := intrinsics.LegalizeOperation(w, m, ins)
					if err != nil {
						return err
					}
					if handled {
						changed = true
						continue
					}
					if folded, ok := ir.TryPrecalculate(ins); ok {
						w.Reset(folded)
						changed = true
						continue
					}
				}
				w.NextInBlock()
			}
		}
		if !changed {
			return nil
		}
	}
}
