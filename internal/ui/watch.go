package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"typewatch/internal/diagfmt"
	"typewatch/internal/source"
	"typewatch/internal/task"
	"typewatch/internal/typecheck"
)

const (
	statusWaiting  = "waiting"
	statusChecking = "checking"
	statusPass     = "pass"
	statusFail     = "fail"
	statusSkip     = "skip"
)

type watchModel struct {
	title   string
	baseDir string
	events  <-chan Event
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	summary diagfmt.Summary
	passes  int
	lastErr error
	width   int
	busy    bool
	done    bool
}

type fileItem struct {
	path   string
	status string
	errors int
	first  string // first error of the file, shown under the row
}

type eventMsg Event
type doneMsg struct{}

// NewWatchModel returns a Bubble Tea model that renders watch-mode results
// for files as events arrive. The program quits when events is closed.
func NewWatchModel(title, baseDir string, files []string, events <-chan Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fileItem, 0, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items = append(items, fileItem{path: file, status: statusWaiting})
		index[file] = i
	}
	return &watchModel{
		title:   title,
		baseDir: baseDir,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
		busy:    true,
	}
}

func (m *watchModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.done = true
			return m, tea.Quit
		}
		return m, nil
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
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *watchModel) View() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	switch {
	case m.done:
		header = fmt.Sprintf("stopped: %s", header)
	case m.busy:
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	default:
		header = fmt.Sprintf("  %s (pass %d)", header, m.passes)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 8
	nameWidth := m.width - statusWidth - 4
	if nameWidth < 20 {
		nameWidth = 20
	}
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	for _, item := range m.items {
		name := truncate(source.RelativePath(item.path, m.baseDir), nameWidth)
		statusStyled := styleStatus(item.status).Render(fmt.Sprintf("%8s", item.status))
		b.WriteString(fmt.Sprintf("  %s %s", statusStyled, name))
		if item.errors > 0 {
			b.WriteString(fmt.Sprintf(" (%d)", item.errors))
		}
		b.WriteString("\n")
		if item.first != "" {
			b.WriteString(errStyle.Render("           " + truncate(item.first, nameWidth)))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.prog.View())
	b.WriteString("\n")
	if m.passes > 0 {
		line := fmt.Sprintf("%d/%d files pass, %d type errors", m.summary.PassedFiles, m.summary.Files, m.summary.TypeErrors)
		if m.summary.SourceErrors > 0 {
			line += fmt.Sprintf(", %d source errors", m.summary.SourceErrors)
		}
		b.WriteString(line + "\n")
	}
	if m.lastErr != nil {
		b.WriteString(styleStatus(statusFail).Render("error: " + m.lastErr.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *watchModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *watchModel) applyEvent(ev Event) tea.Cmd {
	switch ev.Kind {
	case EventRerun:
		m.busy = true
		for i := range m.items {
			m.items[i] = fileItem{path: m.items[i].path, status: statusWaiting}
		}
		return m.prog.SetPercent(0)
	case EventChecking:
		m.busy = true
		for i := range m.items {
			m.items[i].status = statusChecking
		}
		return nil
	case EventError:
		m.busy = false
		m.lastErr = ev.Err
		return nil
	case EventResult:
		m.busy = false
		m.lastErr = nil
		m.passes++
		return m.applySnapshot(ev.Snapshot)
	}
	return nil
}

func (m *watchModel) applySnapshot(snap *typecheck.Snapshot) tea.Cmd {
	m.summary = diagfmt.Summarize(snap)
	if snap == nil {
		return nil
	}
	for _, f := range snap.Files {
		idx, ok := m.index[f.Name]
		if !ok {
			continue
		}
		item := fileItem{path: f.Name}
		switch f.State() {
		case task.StateFail:
			item.status = statusFail
		case task.StateSkip, task.StateTodo:
			item.status = statusSkip
		default:
			item.status = statusPass
		}
		f.Walk(func(t *task.Task) bool {
			if !t.Meta.Typecheck || t.Result == nil {
				return true
			}
			for _, err := range t.Result.Errors {
				item.errors++
				if item.first == "" {
					item.first = err.Error()
				}
			}
			return true
		})
		m.items[idx] = item
	}
	if len(m.items) == 0 {
		return nil
	}
	passed := 0
	for _, item := range m.items {
		if item.status == statusPass || item.status == statusSkip {
			passed++
		}
	}
	return m.prog.SetPercent(float64(passed) / float64(len(m.items)))
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case statusPass:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case statusFail:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case statusChecking:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	case statusSkip:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
