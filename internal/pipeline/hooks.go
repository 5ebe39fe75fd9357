package pipeline

import (
	"context"

	"github.com/electwix/shoplab/internal/explain"
	"github.com/electwix/shoplab/internal/profile"
	"github.com/electwix/shoplab/internal/seed"
)

// Artifact is a file the demo stage is about to write.
type Artifact struct {
	Path string
	Data []byte
}

// Hooks provides extension points in the pipeline execution.
// Each hook is called at a specific stage and can modify behavior or perform side effects.
type Hooks struct {
	// BeforeInit is called before the schema is created.
	// Return an error to abort the pipeline.
	BeforeInit func(ctx context.Context, dbPath string) error

	// AfterInit is called after the schema is ready.
	// Return an error to abort the pipeline.
	AfterInit func(ctx context.Context, dbPath string) error

	// BeforeSeed is called before synthetic data is generated.
	// Return an error to abort the pipeline.
	BeforeSeed func(ctx context.Context, prof profile.Profile) error

	// AfterSeed is called after the database is seeded.
	// Return an error to abort the pipeline.
	AfterSeed func(ctx context.Context, stats seed.Stats) error

	// BeforeDemo is called before the analytics demo runs.
	// Return an error to abort the pipeline.
	BeforeDemo func(ctx context.Context, outDir string) error

	// AfterExplain is called once every query plan has been captured.
	// Return an error to abort the pipeline.
	AfterExplain func(ctx context.Context, reports []explain.Report) error

	// BeforeWrite is called before each artifact file is written.
	// Return an error to abort the pipeline.
	BeforeWrite func(ctx context.Context, artifact Artifact) error

	// AfterRun is called with the final summary.
	// This is the final hook, called even if earlier stages failed.
	AfterRun func(ctx context.Context, summary Summary) error
}

// Chain combines two Hooks, calling h's hooks first, then other's hooks.
// If a hook in h returns an error, other's hook is not called.
func (h Hooks) Chain(other Hooks) Hooks {
	return Hooks{
		BeforeInit:   chainHook(h.BeforeInit, other.BeforeInit),
		AfterInit:    chainHook(h.AfterInit, other.AfterInit),
		BeforeSeed:   chainHook(h.BeforeSeed, other.BeforeSeed),
		AfterSeed:    chainHook(h.AfterSeed, other.AfterSeed),
		BeforeDemo:   chainHook(h.BeforeDemo, other.BeforeDemo),
		AfterExplain: chainHook(h.AfterExplain, other.AfterExplain),
		BeforeWrite:  chainHook(h.BeforeWrite, other.BeforeWrite),
		AfterRun:     chainHook(h.AfterRun, other.AfterRun),
	}
}

// chainHook chains two hooks of the same type.
func chainHook[T any](first, second func(context.Context, T) error) func(context.Context, T) error {
	if first == nil {
		return second
	}
	if second == nil {
		return first
	}
	return func(ctx context.Context, arg T) error {
		if err := first(ctx, arg); err != nil {
			return err
		}
		return second(ctx, arg)
	}
}

// callHook invokes a hook when it is set.
func callHook[T any](ctx context.Context, hook func(context.Context, T) error, arg T) error {
	if hook == nil {
		return nil
	}
	return hook(ctx, arg)
}

// NoHooks returns a Hooks with all nil functions (no-op).
func NoHooks() Hooks {
	return Hooks{}
}
