package ffi_fixtures

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/google/uuid"
	"github.com/statsig-io/ffi-fixtures/abi"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultStressGoroutines = 100
	DefaultStressCalls      = 1000
)

type StressOptions struct {
	Goroutines int
	Calls      int
	Logger     *zap.Logger
}

type StressResult struct {
	RunID      string
	Goroutines int
	Calls      int
	TotalCalls int64
	Duration   time.Duration
}

// Stress calls every export of lib from many goroutines at once and fails
// on the first result that differs from the values seen before the run.
func Stress(ctx context.Context, lib *Library, opts StressOptions) (StressResult, error) {
	if opts.Goroutines <= 0 {
		opts.Goroutines = DefaultStressGoroutines
	}
	if opts.Calls <= 0 {
		opts.Calls = DefaultStressCalls
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	result := StressResult{
		RunID:      uuid.NewString(),
		Goroutines: opts.Goroutines,
		Calls:      opts.Calls,
	}
	logger = logger.With(zap.String("run_id", result.RunID))

	wantMsgPtr, err := lib.MessagePointer()
	if err != nil {
		return result, err
	}

	var wantFooPtr unsafe.Pointer
	if lib.ExportsFoo() {
		if wantFooPtr, err = lib.FooPointer(); err != nil {
			return result, err
		}
	}

	logger.Info("stress run starting",
		zap.String("path", lib.Path()),
		zap.Int("goroutines", opts.Goroutines),
		zap.Int("calls", opts.Calls),
		zap.Bool("exports_foo", wantFooPtr != nil))

	var total atomic.Int64
	start := time.Now()

	eg, egCtx := errgroup.WithContext(ctx)
	for g := 0; g < opts.Goroutines; g++ {
		worker := g
		eg.Go(func() error {
			for i := 0; i < opts.Calls; i++ {
				if i%64 == 0 {
					if err := egCtx.Err(); err != nil {
						return err
					}
				}

				if err := stressCall(lib, wantMsgPtr, wantFooPtr); err != nil {
					return fmt.Errorf("worker %d call %d: %w", worker, i, err)
				}
				total.Add(1)
			}
			return nil
		})
	}

	err = eg.Wait()
	result.Duration = time.Since(start)
	result.TotalCalls = total.Load()

	if err != nil {
		logger.Error("stress run failed", zap.Error(err), zap.Int64("total_calls", result.TotalCalls))
		return result, err
	}

	logger.Info("stress run finished",
		zap.Int64("total_calls", result.TotalCalls),
		zap.Duration("duration", result.Duration))

	return result, nil
}

func stressCall(lib *Library, wantMsgPtr, wantFooPtr unsafe.Pointer) error {
	msg, err := lib.Message()
	if err != nil {
		return err
	}
	if msg != abi.Message {
		return fmt.Errorf("%w: got %q", ErrMessageMismatch, msg)
	}

	ptr, err := lib.MessagePointer()
	if err != nil {
		return err
	}
	if ptr != wantMsgPtr {
		return fmt.Errorf("%w: message moved from %p to %p", ErrMessageMismatch, wantMsgPtr, ptr)
	}

	if wantFooPtr == nil {
		return nil
	}

	fooPtr, foo, err := lib.fooSnapshot()
	if err != nil {
		return err
	}
	if fooPtr != wantFooPtr {
		return fmt.Errorf("%w: got %p, want %p", ErrFooUnstable, fooPtr, wantFooPtr)
	}
	if foo != abi.SampleFoo {
		return fmt.Errorf("%w: got %v", ErrFooMismatch, foo)
	}

	return nil
}
