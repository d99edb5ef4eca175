package progress

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndisidore/scorebind/pkg/slogctx"
)

func feed(events ...Event) <-chan Event {
	ch := make(chan Event, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return ch
}

func TestPlain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		events       []Event
		wantLogs     []string
		wantLogCount map[string]int
		wantEmpty    bool
	}{
		{
			name: "started then done",
			events: []Event{
				{Kind: EventStarted},
				{Kind: EventDone, Message: "4 measures", Duration: 1500 * time.Millisecond},
			},
			wantLogs: []string{"[a.musicxml] started", "[a.musicxml] done 4 measures", "duration=1.5s"},
		},
		{
			name:     "measure at debug",
			events:   []Event{{Kind: EventMeasure, Measure: "3", Message: "ok"}},
			wantLogs: []string{"measure 3 ok", "level=DEBUG"},
		},
		{
			name:     "warning",
			events:   []Event{{Kind: EventWarning, Measure: "7", Message: "round-trip mismatch"}},
			wantLogs: []string{"level=WARN", "round-trip mismatch", "measure=7"},
		},
		{
			name:     "failure",
			events:   []Event{{Kind: EventFailed, Err: errors.New("boom")}},
			wantLogs: []string{"level=ERROR", "FAIL boom", "error=boom"},
		},
		{
			name:      "no events",
			wantEmpty: true,
		},
		{
			name: "one line per event",
			events: []Event{
				{Kind: EventStarted},
				{Kind: EventMeasure, Measure: "1"},
				{Kind: EventMeasure, Measure: "2"},
			},
			wantLogCount: map[string]int{"event=measure": 2, "event=started": 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			ctx := slogctx.ContextWithLogger(context.Background(), log)

			p := &Plain{}
			require.NoError(t, p.Start(ctx))
			require.NoError(t, p.Attach(ctx, "a.musicxml", feed(tt.events...)))
			p.Seal()
			require.NoError(t, p.Wait())

			output := buf.String()
			if tt.wantEmpty {
				assert.Empty(t, output)
			}
			for _, want := range tt.wantLogs {
				assert.Contains(t, output, want)
			}
			for substr, count := range tt.wantLogCount {
				assert.Equal(t, count, strings.Count(output, substr), substr)
			}
		})
	}
}

func TestQuiet(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := slogctx.ContextWithLogger(context.Background(), log)

	q := &Quiet{}
	require.NoError(t, q.Start(ctx))
	require.NoError(t, q.Attach(ctx, "ok.musicxml", feed(Event{Kind: EventStarted}, Event{Kind: EventDone})))
	require.NoError(t, q.Attach(ctx, "bad.musicxml", feed(
		Event{Kind: EventStarted},
		Event{Kind: EventWarning, Message: "skipped"},
		Event{Kind: EventFailed, Message: "missing number"},
	)))
	q.Seal()
	require.NoError(t, q.Wait())

	output := buf.String()
	assert.Contains(t, output, "[bad.musicxml] FAIL missing number")
	assert.NotContains(t, output, "ok.musicxml")
	assert.NotContains(t, output, "skipped")
}

func TestPlainCancelledDrains(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ch := make(chan Event)
	p := &Plain{}
	require.NoError(t, p.Attach(ctx, "a.musicxml", ch))

	sent := make(chan struct{})
	go func() {
		ch <- Event{Kind: EventStarted}
		close(ch)
		close(sent)
	}()

	select {
	case <-sent:
	case <-time.After(3 * time.Second):
		t.Fatal("sender blocked after cancellation")
	}
	require.NoError(t, p.Wait())
}

func TestEventKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "started", EventStarted.String())
	assert.Equal(t, "done", EventDone.String())
	assert.Equal(t, "unknown", EventKind(42).String())
}
