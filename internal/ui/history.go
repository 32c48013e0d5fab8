package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noborus/ov/oviewer"

	"verdant/internal/api"
	"verdant/internal/domain"
	"verdant/internal/timefmt"
)

// HistoryOps fetches a plant's care history and shows it in the ov
// pager. The pager takes over the terminal, so the Bubble Tea program
// releases it first and restores it afterwards.
type HistoryOps struct {
	client  *api.Client
	program *tea.Program
}

// NewHistoryOps creates a new history operations handler
func NewHistoryOps(client *api.Client) *HistoryOps {
	return &HistoryOps{client: client}
}

// SetProgram hands over the program reference once it exists.
func (h *HistoryOps) SetProgram(p *tea.Program) {
	h.program = p
}

// Fetch loads the care history of one plant.
func (h *HistoryOps) Fetch(plantID string) tea.Cmd {
	return func() tea.Msg {
		ps, err := h.client.LoadPageState(context.Background(), "/get_plant_state/"+plantID)
		if err != nil {
			return historyMsg{plantID: plantID, err: err}
		}
		var events []domain.CareEvent
		if err := api.Hydrate(ps.State, "events", &events); err != nil {
			return historyMsg{plantID: plantID, err: err}
		}
		return historyMsg{plantID: plantID, events: events}
	}
}

// ShowInPager renders the history and pages it with ov.
func (h *HistoryOps) ShowInPager(plant domain.Plant, events []domain.CareEvent) tea.Cmd {
	content := renderHistory(plant, events, time.Now())
	return func() tea.Msg {
		return historyPagerMsg{err: h.runPager(content)}
	}
}

func (h *HistoryOps) runPager(content string) error {
	if h.program == nil {
		return fmt.Errorf("program not set")
	}

	// Release terminal control to run ov
	if err := h.program.ReleaseTerminal(); err != nil {
		return err
	}
	defer func() {
		// Small delay so ov has fully exited before the terminal is restored
		time.Sleep(100 * time.Millisecond)
		_ = h.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(content))
	if err != nil {
		return err
	}

	// Keep ov from writing to our screen on exit
	cfg := oviewer.NewConfig()
	cfg.IsWriteOnExit = false
	cfg.IsWriteOriginal = false
	root.SetConfig(cfg)

	return root.Run()
}

func renderHistory(plant domain.Plant, events []domain.CareEvent, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s — care history\n\n", plant.DisplayName())
	if len(events) == 0 {
		b.WriteString("No care events recorded yet.\n")
		return b.String()
	}
	for _, ev := range events {
		line := fmt.Sprintf("%s  %-10s  %s",
			ev.Timestamp.Local().Format("2006-01-02 15:04"),
			ev.Kind,
			timefmt.Relative(ev.Timestamp, now))
		if ev.Note != "" {
			line += "  — " + ev.Note
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
