package ui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"verdant/internal/api"
	"verdant/internal/config"
	"verdant/internal/domain"
	"verdant/internal/eventbus"
	"verdant/internal/timefmt"
	"verdant/internal/ui/services/selection"
	"verdant/internal/ui/views"
)

// ungroupedName labels plants that belong to no group
const ungroupedName = "Ungrouped"

// Model represents the UI state
type Model struct {
	bus    eventbus.EventBus
	cfg    *config.Config
	client *api.Client
	log    zerolog.Logger

	careOps    *CareOps
	historyOps *HistoryOps
	renderer   *views.Renderer

	keys    KeyMap
	help    help.Model
	spinner spinner.Model
	search  textinput.Model

	// Selection rides its own synchronous controller, not the async
	// bus: toggles must be observable in call order.
	sel            *selection.Controller
	unsubscribeSel func()
	selVersion     int // bumped by the subscription on every notification

	plants     map[string]domain.Plant
	plantAttrs map[string]selection.Attrs // metadata cache for filtering the selection
	groups     []domain.Group
	rows       []string // visible plant UUIDs, cursor order
	cursor     int

	width, height int
	loading       bool
	searching     bool
	filter        string
	showArchived  bool
	pagerActive   bool

	confirm *pendingBulk // pending bulk action awaiting y/n

	errText    string // global error modal when non-empty
	loadErr    *api.LoadError
	sessionURL string
	toast      string
	toastID    int
}

// pendingBulk is a bulk action held back for confirmation.
type pendingBulk struct {
	kind    domain.EventKind
	archive bool
	ids     []string
}

func (p *pendingBulk) prompt() string {
	verb := string(p.kind)
	if p.archive {
		verb = "archive"
	}
	return fmt.Sprintf("%s %d plants? (y/n)", verb, len(p.ids))
}

// NewModel creates a new UI model
func NewModel(cfg *config.Config, client *api.Client, bus eventbus.EventBus, log zerolog.Logger) *Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	search := textinput.New()
	search.Placeholder = "search plants"
	search.CharLimit = 64

	m := &Model{
		bus:          bus,
		cfg:          cfg,
		client:       client,
		log:          log,
		careOps:      NewCareOps(client, bus),
		historyOps:   NewHistoryOps(client),
		renderer:     views.NewRenderer(cfg.UISettings.ShowCareTimes),
		keys:         DefaultKeyMap(),
		help:         help.New(),
		spinner:      sp,
		search:       search,
		sel:          selection.New(nil),
		plants:       make(map[string]domain.Plant),
		plantAttrs:   make(map[string]selection.Attrs),
		showArchived: cfg.UISettings.ShowArchived,
		loading:      true,
	}
	m.unsubscribeSel = m.sel.Subscribe(func() { m.selVersion++ })
	return m
}

// HistoryOps exposes the history handler so main can hand it the
// program reference for the pager.
func (m *Model) HistoryOps() *HistoryOps {
	return m.historyOps
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadState())
}

func (m *Model) loadState() tea.Cmd {
	return func() tea.Msg {
		state, err := m.client.LoadOverview(context.Background())
		if err != nil {
			var loadErr *api.LoadError
			if errors.As(err, &loadErr) {
				return stateFailedMsg{loadErr: loadErr}
			}
			return stateFailedMsg{err: err}
		}
		return stateLoadedMsg{state: state}
	}
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stateLoadedMsg:
		m.loading = false
		m.applyState(msg.state)
		m.bus.Publish(eventbus.StateLoadedEvent{Page: "overview", State: *msg.state})
		return m, nil

	case stateFailedMsg:
		m.loading = false
		if msg.loadErr != nil {
			m.loadErr = msg.loadErr
		} else if errors.Is(msg.err, api.ErrSessionExpired) {
			m.sessionURL = m.client.LoginURL("/get_overview_state")
		} else if msg.err != nil {
			m.loadErr = &api.LoadError{Message: msg.err.Error()}
		}
		return m, nil

	case EventMsg:
		return m.handleEvent(msg.Event)

	case backendErrorMsg:
		m.errText = msg.text
		return m, nil

	case careDoneMsg:
		return m.handleCareDone(msg)

	case careFailedMsg:
		m.log.Error().Err(msg.err).Str("kind", string(msg.kind)).Msg("care action failed")
		m.errText = msg.err.Error()
		return m, nil

	case careRejectedMsg:
		// Error text is already on the modal, or the session expired.
		return m, nil

	case archiveDoneMsg:
		return m.handleArchiveDone(msg)

	case historyMsg:
		if msg.err != nil {
			if !errors.Is(msg.err, api.ErrSessionExpired) {
				m.errText = msg.err.Error()
			}
			return m, nil
		}
		plant, ok := m.plants[msg.plantID]
		if !ok {
			return m, nil
		}
		m.pagerActive = true
		return m, m.historyOps.ShowInPager(plant, msg.events)

	case historyPagerMsg:
		m.pagerActive = false
		if msg.err != nil {
			m.errText = msg.err.Error()
		}
		return m, nil

	case toastClearMsg:
		if msg.id == m.toastID {
			m.toast = ""
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleEvent(event eventbus.DomainEvent) (tea.Model, tea.Cmd) {
	switch e := event.(type) {
	case eventbus.SessionExpiredEvent:
		m.sessionURL = e.LoginURL
	case eventbus.ErrorEvent:
		m.errText = e.Message
	case eventbus.ConfigChangedEvent:
		m.applyConfig(e)
		return m, m.setToast("config reloaded")
	}
	return m, nil
}

// applyConfig carries a hot-reloaded config file into the running view.
// The server URL is deliberately not switched mid-session.
func (m *Model) applyConfig(e eventbus.ConfigChangedEvent) {
	m.cfg.Timezone = e.Timezone
	m.cfg.UISettings.ShowCareTimes = e.ShowCareTimes
	m.cfg.UISettings.ConfirmBulkActions = e.ConfirmBulkActions
	m.cfg.UISettings.ShowArchived = e.ShowArchived

	m.renderer.SetShowCareTimes(e.ShowCareTimes)
	m.showArchived = e.ShowArchived
	m.rebuildRows()
}

func (m *Model) handleCareDone(msg careDoneMsg) (tea.Model, tea.Cmd) {
	ts := msg.timestamp
	for _, id := range msg.plants {
		plant, ok := m.plants[id]
		if !ok {
			continue
		}
		switch msg.kind {
		case domain.EventWater:
			plant.LastWatered = &ts
		case domain.EventFertilize:
			plant.LastFertilized = &ts
		}
		m.plants[id] = plant
	}
	m.sel.BulkUnselect(msg.plants)

	text := fmt.Sprintf("%s: %d plants", pastTense(msg.kind), len(msg.plants))
	if len(msg.failed) > 0 {
		text += fmt.Sprintf(" (%d failed)", len(msg.failed))
	}
	return m, m.setToast(text)
}

func (m *Model) handleArchiveDone(msg archiveDoneMsg) (tea.Model, tea.Cmd) {
	for _, id := range msg.plants {
		plant, ok := m.plants[id]
		if !ok {
			continue
		}
		plant.Archived = true
		m.plants[id] = plant
		m.plantAttrs[id] = plantAttrs(plant)
	}
	m.sel.BulkUnselect(msg.plants)
	m.rebuildRows()
	return m, m.setToast(fmt.Sprintf("archived %d plants", len(msg.plants)))
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The modal captures input until dismissed
	if m.errText != "" {
		switch msg.String() {
		case "enter", "esc", "q":
			m.errText = ""
		}
		return m, nil
	}

	if m.confirm != nil {
		return m.handleConfirmKey(msg)
	}

	if m.searching {
		return m.handleSearchKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.unsubscribeSel()
		m.client.ClearErrorSurface()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keys.Toggle):
		if id := m.cursorPlant(); id != "" {
			m.sel.Toggle(id)
		}

	case key.Matches(msg, m.keys.Clear):
		m.sel.BulkUnselect(m.sel.Selected())

	case key.Matches(msg, m.keys.Water):
		return m, m.bulkCare(domain.EventWater)

	case key.Matches(msg, m.keys.Fertilize):
		return m, m.bulkCare(domain.EventFertilize)

	case key.Matches(msg, m.keys.Prune):
		return m, m.bulkCare(domain.EventPrune)

	case key.Matches(msg, m.keys.Archive):
		return m, m.bulkArchive()

	case key.Matches(msg, m.keys.History):
		if id := m.cursorPlant(); id != "" {
			return m, m.historyOps.Fetch(id)
		}

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.search.SetValue(m.filter)
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Refresh):
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.loadState())

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.filter = m.search.Value()
		m.search.Blur()
		m.rebuildRows()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// handleConfirmKey resolves a pending bulk action: y runs it, n or esc
// cancels.
func (m *Model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	pending := m.confirm
	switch msg.String() {
	case "y", "Y", "enter":
		m.confirm = nil
		return m, m.runBulk(pending)
	case "n", "N", "esc", "q":
		m.confirm = nil
	}
	return m, nil
}

// bulkCare submits a care action for the filtered selection. Archived
// plants never make it into the request even when their keys linger in
// the selection.
func (m *Model) bulkCare(kind domain.EventKind) tea.Cmd {
	return m.requestBulk(&pendingBulk{kind: kind, ids: m.submittable()})
}

func (m *Model) bulkArchive() tea.Cmd {
	return m.requestBulk(&pendingBulk{archive: true, ids: m.submittable()})
}

// requestBulk either runs the action or parks it behind a confirmation
// prompt, per the confirm_bulk_actions setting.
func (m *Model) requestBulk(pending *pendingBulk) tea.Cmd {
	if len(pending.ids) == 0 {
		return m.setToast("nothing selected")
	}
	if m.cfg.UISettings.ConfirmBulkActions {
		m.confirm = pending
		return nil
	}
	return m.runBulk(pending)
}

func (m *Model) runBulk(pending *pendingBulk) tea.Cmd {
	if pending.archive {
		return m.careOps.ArchivePlants(pending.ids)
	}
	return m.careOps.LogEvents(pending.kind, pending.ids)
}

func (m *Model) submittable() []string {
	return selection.FilterSelected(m.sel.Selected(), m.plantAttrs, selection.Attrs{"archived": false})
}

func (m *Model) cursorPlant() string {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return ""
	}
	return m.rows[m.cursor]
}

func (m *Model) setToast(text string) tea.Cmd {
	m.toast = text
	m.toastID++
	id := m.toastID
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return toastClearMsg{id: id}
	})
}

func (m *Model) applyState(state *domain.OverviewState) {
	m.plants = make(map[string]domain.Plant, len(state.Plants))
	m.plantAttrs = make(map[string]selection.Attrs, len(state.Plants))
	for _, plant := range state.Plants {
		m.plants[plant.UUID] = plant
		m.plantAttrs[plant.UUID] = plantAttrs(plant)
	}
	m.groups = state.Groups
	if state.ShowArchive {
		m.showArchived = true
	}
	// Selections referring to plants that no longer exist are dropped
	// at submit time by the filter; prune them here too so the count
	// in the status bar stays honest.
	var stale []string
	for _, id := range m.sel.Selected() {
		if _, ok := m.plants[id]; !ok {
			stale = append(stale, id)
		}
	}
	m.sel.BulkUnselect(stale)
	m.rebuildRows()
}

func plantAttrs(plant domain.Plant) selection.Attrs {
	return selection.Attrs{
		"archived": plant.Archived,
		"group":    plant.Group,
	}
}

// rebuildRows recomputes the visible cursor order: grouped plants in
// group order, ungrouped last, search filter applied.
func (m *Model) rebuildRows() {
	m.rows = m.rows[:0]
	for _, section := range m.sections() {
		m.rows = append(m.rows, section.ids...)
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

type section struct {
	name string
	ids  []string
}

func (m *Model) sections() []section {
	assigned := make(map[string]bool)
	var sections []section
	for _, g := range m.groups {
		var ids []string
		for _, id := range g.Plants {
			plant, ok := m.plants[id]
			if !ok {
				continue
			}
			assigned[id] = true
			if m.visible(plant) {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			sections = append(sections, section{name: g.Name, ids: ids})
		}
	}

	var loose []string
	for id, plant := range m.plants {
		if !assigned[id] && m.visible(plant) {
			loose = append(loose, id)
		}
	}
	if len(loose) > 0 {
		sort.Slice(loose, func(i, j int) bool {
			return m.plants[loose[i]].DisplayName() < m.plants[loose[j]].DisplayName()
		})
		sections = append(sections, section{name: ungroupedName, ids: loose})
	}
	return sections
}

func (m *Model) visible(plant domain.Plant) bool {
	if plant.Archived && !m.showArchived {
		return false
	}
	if m.filter == "" {
		return true
	}
	needle := strings.ToLower(m.filter)
	return strings.Contains(strings.ToLower(plant.Name), needle) ||
		strings.Contains(strings.ToLower(plant.Species), needle)
}

// View implements tea.Model
func (m *Model) View() string {
	if m.pagerActive {
		return ""
	}
	if m.loading {
		return m.renderer.Loading(m.spinner.View())
	}
	if m.sessionURL != "" {
		return m.renderer.SessionExpiredPage(m.sessionURL, m.width, m.height)
	}
	if m.loadErr != nil {
		return m.renderer.ErrorPage(m.loadErr.Status, m.loadErr.Message, m.width, m.height)
	}
	if m.errText != "" {
		return m.renderer.ErrorModal(m.errText, m.width, m.height)
	}
	if m.confirm != nil {
		return m.renderer.ConfirmPrompt(m.confirm.prompt(), m.width, m.height)
	}

	now := time.Now()
	var viewSections []views.GroupSection
	idx := 0
	for _, s := range m.sections() {
		vs := views.GroupSection{Name: s.name}
		for _, id := range s.ids {
			plant := m.plants[id]
			row := views.PlantRow{
				Name:     plant.DisplayName(),
				Species:  plant.Species,
				Selected: m.sel.Has(id),
				Cursor:   idx == m.cursor,
				Archived: plant.Archived,
			}
			if plant.LastWatered != nil {
				row.Watered = timefmt.Relative(*plant.LastWatered, now)
				row.Overdue = wateringOverdue(plant, now)
			}
			if plant.LastFertilized != nil {
				row.Fertilized = timefmt.Relative(*plant.LastFertilized, now)
			}
			vs.Rows = append(vs.Rows, row)
			idx++
		}
		viewSections = append(viewSections, vs)
	}

	status := fmt.Sprintf("%d plants · %d selected", len(m.rows), m.sel.Count())
	if m.filter != "" {
		status += " · filter: " + m.filter
	}
	if m.searching {
		status = m.search.View()
	}

	return m.renderer.Overview("verdant 🌱", viewSections, status, m.toast, m.help.View(m.keys))
}

// overdueAfter is how long a plant may go unwatered before its care
// time is highlighted.
const overdueAfter = 7 * 24 * time.Hour

func wateringOverdue(plant domain.Plant, now time.Time) bool {
	return plant.LastWatered != nil && now.Sub(*plant.LastWatered) > overdueAfter
}

func pastTense(kind domain.EventKind) string {
	switch kind {
	case domain.EventWater:
		return "watered"
	case domain.EventFertilize:
		return "fertilized"
	case domain.EventPrune:
		return "pruned"
	case domain.EventRepot:
		return "repotted"
	default:
		return string(kind)
	}
}
