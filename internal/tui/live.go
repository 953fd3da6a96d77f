package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/fold/internal/experiment"
)

const historyCapacity = 600

type recordMsg experiment.StepRecord

type closedMsg struct{}

type doneMsg struct{ err error }

// Model is the live view of a running scenario. Records arrive on a channel
// fed by an experiment observer; pausing stops draining it, which stalls the
// runner until resumed.
type Model struct {
	name     string
	records  <-chan experiment.StepRecord
	done     <-chan error
	history  []experiment.StepRecord
	series   []string
	selected int
	paused   bool
	waiting  bool
	closed   bool
	finished bool
	err      error
}

func NewModel(name string, dofs int, records <-chan experiment.StepRecord, done <-chan error) Model {
	series := []string{SeriesEnergy, SeriesIterations, SeriesBeta}
	for i := 0; i < dofs && i < 9; i++ {
		series = append(series, fmt.Sprintf("x%d", i))
	}
	return Model{
		name:    name,
		records: records,
		done:    done,
		history: make([]experiment.StepRecord, 0, historyCapacity),
		series:  series,
		waiting: true,
	}
}

func waitForRecord(ch <-chan experiment.StepRecord) tea.Cmd {
	return func() tea.Msg {
		rec, ok := <-ch
		if !ok {
			return closedMsg{}
		}
		return recordMsg(rec)
	}
}

func waitForDone(ch <-chan error) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{err: <-ch}
	}
}

func (m Model) Init() tea.Cmd {
	return waitForRecord(m.records)
}

// next asks for another record unless a read is already in flight.
func (m *Model) next() tea.Cmd {
	if m.paused || m.closed || m.waiting {
		return nil
	}
	m.waiting = true
	return waitForRecord(m.records)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
			return m, m.next()
		case "tab":
			m.selected = (m.selected + 1) % len(m.series)
		case "shift+tab":
			m.selected = (m.selected + len(m.series) - 1) % len(m.series)
		}
	case recordMsg:
		m.waiting = false
		m.history = append(m.history, experiment.StepRecord(msg))
		if len(m.history) > historyCapacity {
			m.history = m.history[1:]
		}
		return m, m.next()
	case closedMsg:
		m.waiting = false
		m.closed = true
		return m, waitForDone(m.done)
	case doneMsg:
		m.finished = true
		m.err = msg.err
	}
	return m, nil
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return errStyle.Render("failed: " + m.err.Error())
	case m.finished:
		return okStyle.Render("finished")
	case m.paused:
		return warnStyle.Render("paused")
	}
	return okStyle.Render("running")
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("fold live · "+m.name) + "  " + m.status() + "\n\n")

	if len(m.history) == 0 {
		b.WriteString("waiting for first step...\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}

	last := m.history[len(m.history)-1]
	converged := okStyle.Render("yes")
	if !last.Converged {
		converged = warnStyle.Render("no")
	}
	var stats strings.Builder
	stats.WriteString(row("step", fmt.Sprintf("%d", last.Step)))
	stats.WriteString(row("time", fmt.Sprintf("%.3fs", last.Time)))
	stats.WriteString(row("iterations", fmt.Sprintf("%d", last.Iterations)))
	stats.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render("converged"), converged) + "\n")
	stats.WriteString(row("beta", fmt.Sprintf("%.6g", last.Beta)))
	stats.WriteString(row("energy", fmt.Sprintf("%.3e", last.Energy)))

	name := m.series[m.selected]
	chart := ""
	if data, err := Extract(m.history, name); err == nil {
		chart = graphStyle.Render(Plot(data, name, 50, 8))
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		panelStyle.Render(strings.TrimRight(stats.String(), "\n")),
		"  ",
		chart))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space pause · tab series · q quit"))
	return b.String()
}
