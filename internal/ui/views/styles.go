package views

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains all the style definitions for the UI
type Styles struct {
	Title       lipgloss.Style
	GroupHeader lipgloss.Style
	Cursor      lipgloss.Style
	SelectionBg lipgloss.Style
	Marker      lipgloss.Style
	Dim         lipgloss.Style
	Archived    lipgloss.Style
	CareTime    lipgloss.Style
	Overdue     lipgloss.Style
	Toast       lipgloss.Style
	Status      lipgloss.Style
	Help        lipgloss.Style
	Main        lipgloss.Style
	ErrorTitle  lipgloss.Style
	ErrorBox    lipgloss.Style
	ModalBox    lipgloss.Style
}

// NewStyles creates a new Styles instance with default values
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("78")). // green
			MarginBottom(1),
		GroupHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		Cursor:      lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true),
		SelectionBg: lipgloss.NewStyle().Background(lipgloss.Color("238")),
		Marker:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Dim:         lipgloss.NewStyle().Faint(true),
		Archived:    lipgloss.NewStyle().Faint(true).Strikethrough(true),
		CareTime:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Overdue:     lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Toast:       lipgloss.NewStyle().Foreground(lipgloss.Color("78")),
		Status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		Help: lipgloss.NewStyle().Faint(true),
		Main: lipgloss.NewStyle().Padding(1, 2),
		ErrorTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("203")),
		ErrorBox: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			Padding(1).
			BorderForeground(lipgloss.Color("203")),
		ModalBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(1, 2).
			BorderForeground(lipgloss.Color("203")),
	}
}
