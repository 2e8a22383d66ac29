// Package ui renders the interactive progress view of `lisle check`.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"lisle/internal/driver"
)

type fileState uint8

const (
	stateQueued fileState = iota
	stateChecking
	stateOK
	stateFailed
)

var stateLabels = [...]string{
	stateQueued:   "queued",
	stateChecking: "checking",
	stateOK:       "ok",
	stateFailed:   "error",
}

var stateStyles = [...]lipgloss.Style{
	stateQueued:   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	stateChecking: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	stateOK:       lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	stateFailed:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
}

func (s fileState) String() string { return stateLabels[s] }

func (s fileState) finished() bool { return s >= stateOK }

type fileRow struct {
	path   string
	state  fileState
	lines  int
	cached bool
}

// detail is the dim suffix after a finished file.
func (r fileRow) detail() string {
	if !r.state.finished() {
		return ""
	}
	if r.cached {
		return fmt.Sprintf("%d lines, cached", r.lines)
	}
	return fmt.Sprintf("%d lines", r.lines)
}

type progressModel struct {
	title    string
	events   <-chan driver.Event
	spinner  spinner.Model
	bar      progress.Model
	rows     []fileRow
	byPath   map[string]int
	finished int
	failed   int
	width    int
	done     bool
}

type eventMsg driver.Event
type doneMsg struct{}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	detailStyle = lipgloss.NewStyle().Faint(true)
)

// NewProgressModel returns a Bubble Tea model listing files with their
// check state. It quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient()),
		rows:    make([]fileRow, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	m.bar.Width = 76
	for i, file := range files {
		m.rows[i] = fileRow{path: file}
		m.byPath[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.waitEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
		return m, nil
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.header()))
	b.WriteString("\n\n")

	nameWidth := max(m.width-26, 20)
	for _, row := range m.rows {
		label := stateStyles[row.state].Render(fmt.Sprintf("%8s", row.state))
		fmt.Fprintf(&b, "  %s %s", label, truncate(row.path, nameWidth))
		if d := row.detail(); d != "" {
			b.WriteString(" " + detailStyle.Render("("+d+")"))
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

func (m *progressModel) header() string {
	h := fmt.Sprintf("%s %d/%d", m.title, m.finished, len(m.rows))
	if m.failed > 0 {
		h += fmt.Sprintf(", %d failed", m.failed)
	}
	if m.done {
		return "done: " + h
	}
	return m.spinner.View() + " " + h
}

func (m *progressModel) waitEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

// apply records ev. Events for unknown files are ignored; a file finishes
// at most once.
func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	idx, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[idx]
	if row.state.finished() {
		return nil
	}
	switch ev.Stage {
	case driver.StageQueued:
		row.state = stateQueued
		return nil
	case driver.StageChecking:
		row.state = stateChecking
		return nil
	}

	row.state, row.lines, row.cached = stateOK, ev.Lines, ev.Cached
	if ev.Failed {
		row.state = stateFailed
		m.failed++
	}
	m.finished++
	return m.bar.SetPercent(float64(m.finished) / float64(len(m.rows)))
}

// truncate shortens value to at most width cells, marking the cut with
// "..." when there is room for it.
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	tail := "..."
	if width <= len(tail) {
		tail = ""
	}
	return runewidth.Truncate(value, width, tail)
}
