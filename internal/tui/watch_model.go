package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/punchd/internal/models"
	"github.com/balkashynov/punchd/internal/timeutil"
)

// TrackerLoader fetches the current active trackers for the watch view.
type TrackerLoader func() ([]models.SessionTracker, error)

// WatchModel is the live "who is in" view: a table of active liveness
// trackers refreshed once per second.
type WatchModel struct {
	load      TrackerLoader
	threshold time.Duration

	trackers []models.SessionTracker
	err      error
	width    int
}

type refreshMsg struct{}

// NewWatchModel builds the watch view. threshold is the inactivity threshold
// used to color sessions that are about to be swept.
func NewWatchModel(load TrackerLoader, threshold time.Duration) WatchModel {
	m := WatchModel{load: load, threshold: threshold}
	m.trackers, m.err = load()
	return m
}

func (m WatchModel) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case refreshMsg:
		m.trackers, m.err = m.load()
		return m, tick()
	}
	return m, nil
}

func (m WatchModel) View() string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentMain)).
		Bold(true).
		Render("punchd — active sessions")
	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Render("q to quit")

	if m.err != nil {
		errLine := lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Render(fmt.Sprintf("error: %v", m.err))
		return fmt.Sprintf("%s\n\n%s\n\n%s\n", title, errLine, help)
	}

	body := RenderTrackers(m.trackers, m.threshold, time.Now())
	return fmt.Sprintf("%s\n\n%s\n%s\n", title, body, help)
}

// RenderTrackers renders the tracker table. It is shared by the watch view
// and the one-shot status command.
func RenderTrackers(trackers []models.SessionTracker, threshold time.Duration, now time.Time) string {
	if len(trackers) == 0 {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorDisabledText)).
			Render("No active sessions")
	}

	header := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Bold(true).
		Render(fmt.Sprintf("%-20s %-12s %-12s %-10s", "LOGIN", "LOGIN TIME", "LAST SEEN", "IDLE"))

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBorder)).
		Render(strings.Repeat("-", 58)))
	b.WriteString("\n")

	for _, t := range trackers {
		idle := t.IdleFor(now)
		color := ColorSuccess
		switch {
		case idle > threshold:
			color = ColorError
		case idle > threshold/2:
			color = ColorWarning
		}

		login := t.Identity.Login
		if len(login) > 18 {
			login = login[:15] + "..."
		}
		row := fmt.Sprintf("%-20s %-12s %-12s %-10s",
			login,
			t.LoginTime.Local().Format("15:04:05"),
			t.LastActivity.Local().Format("15:04:05"),
			timeutil.FormatDuration(idle))
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(row))
		b.WriteString("\n")
	}
	return b.String()
}

// RunWatchTUI starts the interactive watch view.
func RunWatchTUI(load TrackerLoader, threshold time.Duration) error {
	p := tea.NewProgram(NewWatchModel(load, threshold), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
