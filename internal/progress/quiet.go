package progress

import (
	"context"
	"sync"
)

// Quiet logs failures only; every other event is suppressed.
type Quiet struct {
	wg sync.WaitGroup
}

// Start is a no-op for Quiet.
func (*Quiet) Start(_ context.Context) error { return nil }

// Attach spawns a goroutine that consumes the file's events.
func (q *Quiet) Attach(ctx context.Context, file string, ch <-chan Event) error {
	q.wg.Go(func() {
		consume(ctx, file, ch, logFailure)
	})
	return nil
}

// Seal is a no-op for Quiet.
func (*Quiet) Seal() {}

// Wait blocks until all attached files complete.
func (q *Quiet) Wait() error {
	q.wg.Wait()
	return nil
}
