package site

import (
	"context"
	"fmt"
	log "log/slog"
	"time"

	"discord-blog/eventloop"
)

// Run describes one generator run.
type Run struct {
	Started  time.Time
	Duration time.Duration
	Clean    bool
	Err      error
}

// Regenerator debounces rebuild requests onto the event loop.
type Regenerator struct {
	slot      *eventloop.Slot
	gen       Generator
	delay     time.Duration
	outputDir string
	retain    []string
	observe   func(Run)
}

// RegeneratorOptions configures a Regenerator.
type RegeneratorOptions struct {
	Delay     time.Duration
	OutputDir string
	// Retain lists top-level output entries kept by a clean rebuild.
	Retain []string
	// Observe, when set, is called after every run.
	Observe func(Run)
}

// NewRegenerator creates a regenerator using a slot named "regenerate".
func NewRegenerator(loop *eventloop.Loop, gen Generator, opts RegeneratorOptions) *Regenerator {
	return &Regenerator{
		slot:      loop.NewSlot("regenerate"),
		gen:       gen,
		delay:     opts.Delay,
		outputDir: opts.OutputDir,
		retain:    opts.Retain,
		observe:   opts.Observe,
	}
}

// Request schedules a rebuild after the debounce delay, replacing any
// rebuild already pending.
func (r *Regenerator) Request() {
	r.slot.Arm(r.delay, func() {
		if err := r.run(context.Background(), false); err != nil {
			log.Error("scheduled site rebuild failed", "err", err)
		}
	})
}

// Pending reports whether a rebuild is scheduled.
func (r *Regenerator) Pending() bool {
	return r.slot.Pending()
}

// RunNow cancels any pending rebuild and rebuilds immediately, first
// emptying the output directory when clean is set.
func (r *Regenerator) RunNow(ctx context.Context, clean bool) error {
	r.slot.Cancel()
	return r.run(ctx, clean)
}

func (r *Regenerator) run(ctx context.Context, clean bool) (err error) {
	start := time.Now()
	defer func() {
		if r.observe != nil {
			r.observe(Run{Started: start, Duration: time.Since(start), Clean: clean, Err: err})
		}
	}()

	if clean {
		if err := CleanOutputDir(r.outputDir, r.retain); err != nil {
			return err
		}
	}
	if err := r.gen.Generate(ctx); err != nil {
		return fmt.Errorf("failed to generate site: %w", err)
	}
	log.Info("site rebuilt", "clean", clean, "took", time.Since(start))
	return nil
}
