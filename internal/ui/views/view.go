package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PlantRow is one renderable plant line
type PlantRow struct {
	Name       string
	Species    string
	Selected   bool
	Cursor     bool
	Archived   bool
	Watered    string // preformatted relative time, "" to hide
	Fertilized string
	Overdue    bool // highlight the watering time
}

// GroupSection is one group header plus its plant rows
type GroupSection struct {
	Name string
	Rows []PlantRow
}

// Renderer handles rendering of the overview
type Renderer struct {
	styles        *Styles
	showCareTimes bool
}

// NewRenderer creates a new view renderer
func NewRenderer(showCareTimes bool) *Renderer {
	return &Renderer{
		styles:        NewStyles(),
		showCareTimes: showCareTimes,
	}
}

// SetShowCareTimes toggles the care-time columns (config hot-reload)
func (r *Renderer) SetShowCareTimes(show bool) {
	r.showCareTimes = show
}

// Overview renders the grouped plant list
func (r *Renderer) Overview(title string, sections []GroupSection, status, toast, helpView string) string {
	var b strings.Builder

	b.WriteString(r.styles.Title.Render(title))
	b.WriteString("\n")

	for _, section := range sections {
		count := fmt.Sprintf(" (%d)", len(section.Rows))
		b.WriteString(r.styles.GroupHeader.Render("▸ "+section.Name) + r.styles.Dim.Render(count))
		b.WriteString("\n")
		for _, row := range section.Rows {
			b.WriteString(r.renderRow(row))
			b.WriteString("\n")
		}
	}

	if toast != "" {
		b.WriteString("\n" + r.styles.Toast.Render(toast))
	}
	b.WriteString("\n" + r.styles.Status.Render(status))
	if helpView != "" {
		b.WriteString("\n" + r.styles.Help.Render(helpView))
	}

	return r.styles.Main.Render(b.String())
}

func (r *Renderer) renderRow(row PlantRow) string {
	cursor := "  "
	if row.Cursor {
		cursor = r.styles.Cursor.Render("> ")
	}
	marker := "[ ] "
	if row.Selected {
		marker = r.styles.Marker.Render("[x] ")
	}

	name := row.Name
	switch {
	case row.Archived:
		name = r.styles.Archived.Render(name)
	case row.Cursor:
		name = r.styles.Cursor.Render(name)
	}
	line := cursor + marker + name
	if row.Species != "" {
		line += r.styles.Dim.Render("  " + row.Species)
	}

	if r.showCareTimes {
		var times []string
		if row.Watered != "" {
			watered := "watered " + row.Watered
			if row.Overdue {
				watered = r.styles.Overdue.Render(watered + " ⚠")
			}
			times = append(times, watered)
		}
		if row.Fertilized != "" {
			times = append(times, "fed "+row.Fertilized)
		}
		if len(times) > 0 {
			line += r.styles.CareTime.Render("  · " + strings.Join(times, ", "))
		}
	}

	if row.Selected {
		return r.styles.SelectionBg.Render(line)
	}
	return line
}

// Loading renders the initial loading screen
func (r *Renderer) Loading(spinnerView string) string {
	return r.styles.Main.Render(spinnerView + " loading plants…")
}

// ErrorPage renders the loader's permission denied / unexpected error page
func (r *Renderer) ErrorPage(status int, message string, width, height int) string {
	title := "Unexpected error"
	if status == 403 {
		title = "Permission denied"
	}
	box := r.styles.ErrorBox.Render(
		r.styles.ErrorTitle.Render(title) + "\n\n" +
			message + "\n\n" +
			r.styles.Dim.Render("press q to quit"))
	return r.place(box, width, height)
}

// SessionExpiredPage tells the user to log in again
func (r *Renderer) SessionExpiredPage(loginURL string, width, height int) string {
	box := r.styles.ErrorBox.Render(
		r.styles.ErrorTitle.Render("Session expired") + "\n\n" +
			"Log in again with `verdant login`.\n" +
			r.styles.Dim.Render(loginURL) + "\n\n" +
			r.styles.Dim.Render("press q to quit"))
	return r.place(box, width, height)
}

// ConfirmPrompt asks the user to confirm a bulk action
func (r *Renderer) ConfirmPrompt(prompt string, width, height int) string {
	box := r.styles.ModalBox.Render(
		prompt + "\n\n" +
			r.styles.Dim.Render("y to confirm, n to cancel"))
	return r.place(box, width, height)
}

// ErrorModal overlays raw server error text on top of the view
func (r *Renderer) ErrorModal(text string, width, height int) string {
	box := r.styles.ModalBox.Render(
		r.styles.ErrorTitle.Render("Server error") + "\n\n" +
			text + "\n\n" +
			r.styles.Dim.Render("press enter to dismiss"))
	return r.place(box, width, height)
}

func (r *Renderer) place(content string, width, height int) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
