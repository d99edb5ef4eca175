package progress

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// TUI renders batch progress with a bubbletea interactive display.
type TUI struct {
	Boring bool // use ASCII icons instead of emoji

	opts []tea.ProgramOption // test hooks

	mu       sync.Mutex
	prog     *tea.Program
	fwd      sync.WaitGroup
	exited   chan struct{}
	runErr   error
	sealOnce sync.Once
}

// Start launches the bubbletea program. Calling Start again is a no-op.
func (t *TUI) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.prog != nil {
		return nil
	}

	opts := append([]tea.ProgramOption{tea.WithContext(ctx)}, t.opts...)
	t.prog = tea.NewProgram(newMultiModel(t.Boring), opts...)
	t.exited = make(chan struct{})

	go func() {
		defer close(t.exited)
		if _, err := t.prog.Run(); err != nil {
			t.runErr = fmt.Errorf("running TUI: %w", err)
		}
	}()
	return nil
}

// Attach registers file and forwards its events into the program.
func (t *TUI) Attach(ctx context.Context, file string, ch <-chan Event) error {
	prog := t.program()
	if prog == nil {
		return ErrNotStarted
	}
	prog.Send(fileAddedMsg{name: file})
	t.fwd.Go(func() {
		consume(ctx, file, ch, func(_ context.Context, _ *slog.Logger, name string, ev Event) {
			prog.Send(fileEventMsg{name: name, event: ev})
		})
	})
	return nil
}

// Seal tells the program to exit once every attached file has finished.
func (t *TUI) Seal() {
	prog := t.program()
	if prog == nil {
		return
	}
	t.sealOnce.Do(func() {
		go func() {
			t.fwd.Wait()
			prog.Send(allDoneMsg{})
		}()
	})
}

// Wait blocks until the program exits.
func (t *TUI) Wait() error {
	t.mu.Lock()
	exited := t.exited
	t.mu.Unlock()
	if exited == nil {
		return ErrNotStarted
	}
	<-exited
	return t.runErr
}

func (t *TUI) program() *tea.Program {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prog
}
