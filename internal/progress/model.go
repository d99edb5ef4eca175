package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"
)

// fileStatus is the render state of one file.
type fileStatus int

const (
	statusPending fileStatus = iota
	statusRunning
	statusDone
	statusError
)

var _emojiIcons = map[fileStatus]string{
	statusDone:    "✅",
	statusRunning: "\U0001f3bc",
	statusPending: "⏳",
	statusError:   "❌",
}

var _boringIcons = map[fileStatus]string{
	statusDone:    "[done]  ",
	statusRunning: "[read]  ",
	statusPending: "[      ]",
	statusError:   "[FAIL]  ",
}

// fileState tracks a single file's render state.
type fileState struct {
	name     string
	status   fileStatus
	measures int
	warnings int
	last     string // last measure seen
	duration time.Duration
	detail   string
}

// multiModel is the bubbletea model for a batch of files. Pointer
// receivers keep mutations on one instance.
type multiModel struct {
	files  map[string]*fileState
	order  []string // attach order
	notes  []string // recent warnings and failures (capped)
	width  int
	boring bool
	done   bool
}

// _maxNotes caps the warning and failure lines kept for display.
const _maxNotes = 10

func newMultiModel(boring bool) *multiModel {
	return &multiModel{
		boring: boring,
		files:  make(map[string]*fileState),
	}
}

// fileAddedMsg registers a file.
type fileAddedMsg struct{ name string }

// fileEventMsg carries one event for a file.
type fileEventMsg struct {
	name  string
	event Event
}

// allDoneMsg signals every attached file has finished.
type allDoneMsg struct{}

// Init implements tea.Model.
func (*multiModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *multiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case fileAddedMsg:
		m.file(msg.name)
	case fileEventMsg:
		m.apply(m.file(msg.name), msg.event)
	case allDoneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *multiModel) file(name string) *fileState {
	st, ok := m.files[name]
	if !ok {
		st = &fileState{name: name}
		m.files[name] = st
		m.order = append(m.order, name)
	}
	return st
}

func (m *multiModel) apply(st *fileState, ev Event) {
	if st.status == statusDone || st.status == statusError {
		return
	}
	switch ev.Kind {
	case EventStarted:
		st.status = statusRunning
	case EventMeasure:
		st.status = statusRunning
		st.measures++
		st.last = ev.Measure
	case EventWarning:
		st.warnings++
		m.note(fmt.Sprintf("%s: %s", st.name, ev.Message))
	case EventFailed:
		st.status = statusError
		st.duration = ev.Duration
		st.detail = ev.Message
		if ev.Err != nil {
			st.detail = ev.Err.Error()
		}
		m.note(fmt.Sprintf("%s: %s", st.name, st.detail))
	case EventDone:
		st.status = statusDone
		st.duration = ev.Duration
		st.detail = ev.Message
	default:
	}
}

func (m *multiModel) note(s string) {
	m.notes = append(m.notes, s)
	if len(m.notes) > _maxNotes {
		m.notes = m.notes[len(m.notes)-_maxNotes:]
	}
}

var (
	_headerStyle = lipgloss.NewStyle().Bold(true)
	_noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// View implements tea.Model.
func (m *multiModel) View() string {
	var b strings.Builder

	finished := 0
	for _, name := range m.order {
		if s := m.files[name].status; s == statusDone || s == statusError {
			finished++
		}
	}
	_, _ = b.WriteString(_headerStyle.Render(fmt.Sprintf("Files: %d/%d", finished, len(m.order))))
	_ = b.WriteByte('\n')

	icons := _emojiIcons
	if m.boring {
		icons = _boringIcons
	}

	for _, name := range m.order {
		st := m.files[name]

		info := "--"
		switch {
		case st.duration > 0:
			info = st.duration.Round(time.Millisecond).String()
		case st.status == statusRunning && st.last != "":
			info = "measure " + st.last
		case st.status == statusRunning:
			info = "..."
		}
		_, _ = fmt.Fprintf(&b, "  %s %s  %d measures  %s\n", icons[st.status], st.name, st.measures, info)
	}

	if len(m.notes) > 0 {
		_ = b.WriteByte('\n')
		for _, n := range m.notes {
			_, _ = b.WriteString(_noteStyle.Render("    > " + n))
			_ = b.WriteByte('\n')
		}
	}

	return b.String()
}
