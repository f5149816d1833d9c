// Package watchtui is a thin demonstration TUI: a live dashboard of running
// per-event-type counters driven by a bus.Iterator, in the TUI-as-sink
// pattern glow's pager uses for its document viewer — repurposed here as an
// event monitor instead of a Markdown pager.
package watchtui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alaa-eddine/tokenloom"
)

// Puller is the subset of bus.Iterator the dashboard needs, kept narrow so
// tests can supply a fake without pulling in the bus package.
type Puller interface {
	Next(ctx context.Context) (tokenloom.Event, bool)
}

// eventMsg wraps one delivered event as a tea.Msg.
type eventMsg tokenloom.Event

// doneMsg signals the iterator is exhausted (the bus was disposed).
type doneMsg struct{}

// Model is a bubbletea model rendering live per-event-type counts.
type Model struct {
	puller  Puller
	spinner spinner.Model
	counts  map[tokenloom.EventType]int
	total   int
	done    bool
}

// New builds a dashboard Model pulling events from puller.
func New(puller Puller) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		puller:  puller,
		spinner: sp,
		counts:  make(map[tokenloom.EventType]int),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		e, ok := m.puller.Next(context.Background())
		if !ok {
			return doneMsg{}
		}
		return eventMsg(e)
	}
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
	case eventMsg:
		m.counts[tokenloom.EventType(msg.Type)]++
		m.total++
		return m, m.waitForEvent()
	case doneMsg:
		m.done = true
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	countStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	if m.done {
		b.WriteString(titleStyle.Render("tokenloom — stream finished"))
	} else {
		b.WriteString(m.spinner.View() + " " + titleStyle.Render("tokenloom — listening"))
	}
	b.WriteString(fmt.Sprintf("  (total: %d)\n\n", m.total))

	types := make([]string, 0, len(m.counts))
	for t := range m.counts {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		b.WriteString(fmt.Sprintf("  %-20s %s\n", t, countStyle.Render(fmt.Sprintf("%d", m.counts[tokenloom.EventType(t)]))))
	}
	if !m.done {
		b.WriteString("\n(press q to quit)\n")
	}
	return b.String()
}
