package progress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Sentinel errors for logger construction.
var (
	ErrUnknownFormat = errors.New("unknown log format")
	ErrUnknownLevel  = errors.New("unknown log level")
)

// Formats lists the accepted --format values.
var Formats = []string{"pretty", "json", "text"}

var _ slog.Handler = (*PrettyHandler)(nil)

// PrettyHandler writes one colored line per record for terminal use. The
// file, part and measure attributes, whether attached with WithAttrs or
// passed to the log call, locate the message: the file as a "[file]" lead
// and part/measure in trailing parentheses, each skipped when the message
// already names it. An "error" attribute follows the message and "duration"
// is appended in cyan. Other WithAttrs attributes are prefixed as key=val;
// other record attributes are dropped (json and text formats keep them).
type PrettyHandler struct {
	out     io.Writer
	level   slog.Leveler
	mu      *sync.Mutex
	loc     location
	prefix  string // "key=val " and "group." fragments from WithAttrs/WithGroup
	grouped bool   // attributes added after WithGroup are never location
}

// location is where in a batch a record happened.
type location struct {
	file, part, measure string
}

func (l *location) set(a slog.Attr) bool {
	switch a.Key {
	case "file":
		l.file = a.Value.String()
	case "part":
		l.part = a.Value.String()
	case "measure":
		l.measure = a.Value.String()
	default:
		return false
	}
	return true
}

// suffix renders part and measure not already present in msg.
func (l location) suffix(msg string) string {
	var parts []string
	if l.part != "" && !strings.Contains(msg, "part "+l.part) {
		parts = append(parts, "part "+l.part)
	}
	if l.measure != "" && !strings.Contains(msg, "measure "+l.measure) {
		parts = append(parts, "measure "+l.measure)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// NewPrettyHandler returns a PrettyHandler that writes to out at the given level.
func NewPrettyHandler(out io.Writer, level slog.Leveler) *PrettyHandler {
	return &PrettyHandler{out: out, level: level, mu: &sync.Mutex{}}
}

var (
	_warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // yellow
	_errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // red
	_debugStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // dim
	_cyanStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")) // cyan
)

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats the record and writes it as a single line.
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	loc := h.loc
	var dur, errText string
	r.Attrs(func(a slog.Attr) bool {
		if loc.set(a) {
			return true
		}
		switch a.Key {
		case "duration":
			dur = a.Value.String()
		case "error":
			errText = a.Value.String()
		}
		return true
	})

	var b strings.Builder
	if loc.file != "" && !strings.HasPrefix(r.Message, "["+loc.file+"]") {
		b.WriteString("[" + loc.file + "] ")
	}
	b.WriteString(h.prefix)
	b.WriteString(r.Message)
	b.WriteString(loc.suffix(r.Message))
	if errText != "" && !strings.Contains(r.Message, errText) {
		b.WriteString(": " + errText)
	}

	line := b.String()
	switch {
	case r.Level >= slog.LevelError:
		line = _errorStyle.Render(line)
	case r.Level >= slog.LevelWarn:
		line = _warnStyle.Render(line)
	case r.Level < slog.LevelInfo:
		line = _debugStyle.Render(line)
	}
	if dur != "" {
		line += " " + _cyanStyle.Render(dur)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, line+"\n")
	return err
}

// WithAttrs returns a handler carrying attrs on every record.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	c := *h
	var b strings.Builder
	b.WriteString(h.prefix)
	for _, a := range attrs {
		if !c.grouped && c.loc.set(a) {
			continue
		}
		fmt.Fprintf(&b, "%s=%s ", a.Key, a.Value)
	}
	c.prefix = b.String()
	return &c
}

// WithGroup returns a handler that qualifies later attributes with name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix += name + "."
	c.grouped = true
	return &c
}

// NewLogger creates a logger for the given format and level.
func NewLogger(out io.Writer, format string, level slog.Level) (*slog.Logger, error) {
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})
	case "pretty":
		handler = NewPrettyHandler(out, level)
	default:
		return nil, fmt.Errorf("unknown format %q (valid: %s): %w", format, strings.Join(Formats, ", "), ErrUnknownFormat)
	}
	return slog.New(handler), nil
}

// ParseLevel converts debug, info, warn or error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrUnknownLevel)
	}
	return level, nil
}
