package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ndisidore/scorebind/pkg/slogctx"
)

// Plain emits progress events as slog records. The slog handler
// (pretty/json/text) decides how to render.
type Plain struct {
	wg sync.WaitGroup
}

// Start is a no-op for Plain.
func (*Plain) Start(_ context.Context) error { return nil }

// Attach spawns a goroutine that logs the file's events.
func (p *Plain) Attach(ctx context.Context, file string, ch <-chan Event) error {
	p.wg.Go(func() {
		consume(ctx, file, ch, logEvent)
	})
	return nil
}

// Seal is a no-op for Plain; every Attach has returned before the caller
// reaches Wait.
func (*Plain) Seal() {}

// Wait blocks until all attached files complete.
func (p *Plain) Wait() error {
	p.wg.Wait()
	return nil
}

// consume feeds events to fn until ch closes. After cancellation the
// channel is still drained so the sender can finish and close it.
func consume(ctx context.Context, file string, ch <-chan Event, fn func(context.Context, *slog.Logger, string, Event)) {
	log := slogctx.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			//revive:disable-next-line:empty-block // draining
			for range ch {
			}
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			fn(ctx, log, file, ev)
		}
	}
}

func logEvent(ctx context.Context, log *slog.Logger, file string, ev Event) {
	base := []slog.Attr{
		slog.String("file", file),
		slog.String("event", ev.Kind.String()),
	}

	switch ev.Kind {
	case EventStarted:
		//nolint:sloglint // dynamic msg encodes user-facing formatted output
		log.LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf("[%s] started", file), base...)
	case EventMeasure:
		attrs := append(base, slog.String("measure", ev.Measure))
		//nolint:sloglint // dynamic msg encodes user-facing formatted output
		log.LogAttrs(ctx, slog.LevelDebug, fmt.Sprintf("[%s] measure %s %s", file, ev.Measure, ev.Message), attrs...)
	case EventWarning:
		attrs := append(base, slog.String("measure", ev.Measure))
		//nolint:sloglint // dynamic msg encodes user-facing formatted output
		log.LogAttrs(ctx, slog.LevelWarn, fmt.Sprintf("[%s] %s", file, ev.Message), attrs...)
	case EventFailed:
		logFailure(ctx, log, file, ev)
	case EventDone:
		attrs := append(base, slog.Duration("duration", ev.Duration))
		msg := "done"
		if ev.Message != "" {
			msg = "done " + ev.Message
		}
		//nolint:sloglint // dynamic msg encodes user-facing formatted output
		log.LogAttrs(ctx, slog.LevelInfo, fmt.Sprintf("[%s] %s", file, msg), attrs...)
	default:
	}
}

func logFailure(ctx context.Context, log *slog.Logger, file string, ev Event) {
	if ev.Kind != EventFailed {
		return
	}
	attrs := []slog.Attr{
		slog.String("file", file),
		slog.String("event", ev.Kind.String()),
		slog.Duration("duration", ev.Duration),
	}
	detail := ev.Message
	if ev.Err != nil {
		attrs = append(attrs, slog.String("error", ev.Err.Error()))
		detail = ev.Err.Error()
	}
	//nolint:sloglint // dynamic msg encodes user-facing formatted output
	log.LogAttrs(ctx, slog.LevelError, fmt.Sprintf("[%s] FAIL %s", file, detail), attrs...)
}
