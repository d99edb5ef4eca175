// Package batch runs a per-file task over many MusicXML files with bounded
// parallelism and progress reporting.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ndisidore/scorebind/internal/progress"
	"github.com/ndisidore/scorebind/pkg/slogctx"
)

// Sentinel errors for batch input validation.
var (
	ErrNilTask    = errors.New("batch task must not be nil")
	ErrNilDisplay = errors.New("batch display must not be nil")
)

// _eventBuffer is the per-file event channel capacity.
const _eventBuffer = 32

// Task processes one file, reporting measure-level progress on events. It
// must not close events.
type Task func(ctx context.Context, file string, events chan<- progress.Event) error

// Input holds parameters for a batch run.
type Input struct {
	// Files are processed in order of submission; completion order varies.
	Files []string
	// Task is run once per file.
	Task Task
	// Display renders per-file progress (TUI, plain, or quiet).
	Display progress.Display
	// Parallelism bounds concurrent tasks; 0 means one per CPU.
	Parallelism int
}

// Run executes in.Task for every file. A failing file does not stop the
// others; every failure is returned, joined, in file order.
func Run(ctx context.Context, in Input) error {
	if in.Task == nil {
		return ErrNilTask
	}
	if in.Display == nil {
		return ErrNilDisplay
	}
	limit := in.Parallelism
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	if err := in.Display.Start(ctx); err != nil {
		return fmt.Errorf("starting display: %w", err)
	}

	errs := make([]error, len(in.Files))
	chans := make([]chan progress.Event, len(in.Files))
	for i, file := range in.Files {
		chans[i] = make(chan progress.Event, _eventBuffer)
		if err := in.Display.Attach(ctx, file, chans[i]); err != nil {
			// Close what was attached so the display consumers finish.
			for _, ch := range chans[:i+1] {
				close(ch)
			}
			in.Display.Seal()
			return errors.Join(fmt.Errorf("attaching %s: %w", file, err), in.Display.Wait())
		}
	}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(limit)
	for i, file := range in.Files {
		g.Go(func() error {
			err := runOne(ctx, in.Task, file, chans[i])
			if err != nil {
				mu.Lock()
				errs[i] = fmt.Errorf("%s: %w", file, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	in.Display.Seal()
	if err := in.Display.Wait(); err != nil {
		return errors.Join(append(errs, fmt.Errorf("display: %w", err))...)
	}
	return errors.Join(errs...)
}

// runOne runs task for file, bracketing it with started and done/failed
// events, and closes ch.
func runOne(ctx context.Context, task Task, file string, ch chan progress.Event) (err error) {
	defer close(ch)
	start := time.Now()

	ctx = slogctx.With(ctx, slog.String("file", file))
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
		dur := time.Since(start)
		if err != nil {
			ch <- progress.Event{Kind: progress.EventFailed, Err: err, Duration: dur}
			return
		}
		ch <- progress.Event{Kind: progress.EventDone, Duration: dur}
	}()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("not started: %w", err)
	}
	ch <- progress.Event{Kind: progress.EventStarted}
	return task(ctx, file, ch)
}
