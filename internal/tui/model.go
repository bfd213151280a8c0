// Package tui is the interactive playback screen: it shows loop progress and
// maps keys to player controls.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Controller is the subset of the player driven by the screen.
type Controller interface {
	Restart()
	TogglePause() bool
	Stop() error
	Progress() (frame, total, loops int)
}

const (
	refreshInterval = 100 * time.Millisecond
	barWidth        = 40
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	pauseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
)

type Model struct {
	Title      string
	Player     Controller
	SampleRate int

	frame, total, loops int
	paused              bool
	quitting            bool
	err                 error
}

type tickMsg time.Time

func NewModel(title string, player Controller, sampleRate int) Model {
	return Model{Title: title, Player: player, SampleRate: sampleRate}
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			m.err = m.Player.Stop()
			return m, tea.Quit
		case "n", "r":
			m.Player.Restart()
			m.paused = false
		case " ", "p":
			m.paused = m.Player.TogglePause()
		}
		m.frame, m.total, m.loops = m.Player.Progress()

	case tickMsg:
		m.frame, m.total, m.loops = m.Player.Progress()
		return m, tick()
	}
	return m, nil
}

// Err is the error returned by the player's Stop, if any.
func (m Model) Err() error { return m.err }

func (m Model) View() string {
	if m.quitting {
		return dimStyle.Render("stopped") + "\n"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.Title))
	b.WriteString("\n\n")

	filled := 0
	if m.total > 0 {
		filled = min(barWidth, m.frame*barWidth/m.total)
	}
	b.WriteString(barStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(dimStyle.Render(strings.Repeat("░", barWidth-filled)))
	fmt.Fprintf(&b, " %s / %s", m.clock(m.frame), m.clock(m.total))
	if m.loops > 0 {
		fmt.Fprintf(&b, "  loop %d", m.loops+1)
	}
	if m.paused {
		b.WriteString("  " + pauseStyle.Render("paused"))
	}
	b.WriteString("\n\n")
	b.WriteString(dimStyle.Render("space pause · n restart · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) clock(frames int) string {
	if m.SampleRate <= 0 {
		return "0:00.0"
	}
	d := time.Duration(frames) * time.Second / time.Duration(m.SampleRate)
	return fmt.Sprintf("%d:%04.1f", int(d.Minutes()), d.Seconds()-float64(int(d.Minutes())*60))
}
