// Package tui is a terminal front end for the dashboard: a virtualized,
// sortable project table next to a map pane that follows the selection.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Overland-East-Bay/geo-projects-view/internal/app/dashboard"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/listview"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/mapview"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/selection"
	"github.com/Overland-East-Bay/geo-projects-view/internal/app/window"
	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/camera"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/notifier"
)

const (
	tickInterval     = 100 * time.Millisecond
	clusterPrecision = 3
	// chromeLines is everything above and below the table body.
	chromeLines     = 12
	defaultBodyRows = 10
)

// Notifications exposes the most recent toast.
type Notifications interface {
	Last() (notifier.Notification, bool)
}

// Resetter drops a cached record set so the next load refetches.
type Resetter interface {
	Reset()
}

type Deps struct {
	Dashboard     *dashboard.Service
	Table         *listview.View
	Selection     *selection.Coordinator
	Camera        camera.Camera
	Notifications Notifications
	// Cache is optional; when set, "r" refetches instead of reusing it.
	Cache Resetter
	Log   *slog.Logger
}

// WindowOptions sizes rows in terminal lines.
func WindowOptions() window.Options {
	return window.Options{EstimateSize: 1, Overscan: 2}
}

type loadedMsg struct {
	n   int
	err error
}

type tickMsg time.Time

// measuredMsg carries row heights laid out since the last measurement.
type measuredMsg []listview.Measurement

type Model struct {
	svc   *dashboard.Service
	table *listview.View
	sel   *selection.Coordinator
	cam   camera.Camera
	notes Notifications
	cache Resetter
	log   *slog.Logger

	search    textinput.Model
	searching bool

	width, height int
	cursor        int
	scroll        float64
	loading       bool
	quitting      bool
}

func New(d Deps) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search projects"
	ti.CharLimit = 120

	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	return Model{
		svc:     d.Dashboard,
		table:   d.Table,
		sel:     d.Selection,
		cam:     d.Camera,
		notes:   d.Notifications,
		cache:   d.Cache,
		log:     log,
		search:  ti,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), tick())
}

func (m Model) load() tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		n, err := svc.Load(context.Background())
		return loadedMsg{n: n, err: err}
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.handle(msg)
	if next.quitting {
		return next, cmd
	}
	return next, tea.Batch(cmd, next.measure())
}

func (m Model) handle(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.revealCursor()
		return m, nil
	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.log.Warn("tui_load_error", "err", msg.err)
		}
		m.clampCursor()
		return m, nil
	case measuredMsg:
		m.table.MeasureAll(msg)
		return m, nil
	case tickMsg:
		// Keeps the camera line current while a flight is running.
		return m, tick()
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

// measure lays out the rows around the viewport and returns their heights
// as a measuredMsg when any differ from what the table holds.
func (m Model) measure() tea.Cmd {
	tbl := m.table.Render(m.scroll, float64(m.bodyRows()))
	var ms measuredMsg
	for _, r := range tbl.Rows {
		if h := float64(lipgloss.Height(rowLine(r))); !r.Measured || h != r.Size {
			ms = append(ms, listview.Measurement{ID: r.ID, Height: h})
		}
	}
	if len(ms) == 0 {
		return nil
	}
	return func() tea.Msg { return ms }
}

func (m Model) updateSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
		m.search.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	q := m.search.Value()
	if _, err := m.svc.UpdateFilter(dashboard.FilterInput{Search: &q}); err != nil {
		m.log.Warn("tui_filter_error", "err", err)
	}
	m.clampCursor()
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "s":
		next := string(nextStatus(m.svc.Store().Filter().Status))
		if _, err := m.svc.UpdateFilter(dashboard.FilterInput{Status: &next}); err != nil {
			m.log.Warn("tui_filter_error", "err", err)
		}
		m.clampCursor()
	case "1", "2", "3", "4", "5":
		keys := domain.SortKeys()
		if i := int(key[0] - '1'); i < len(keys) {
			if _, err := m.svc.SetSort(string(keys[i])); err != nil {
				m.log.Warn("tui_sort_error", "err", err)
			}
		}
		m.revealSelected()
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "pgup":
		m.move(-m.bodyRows())
	case "pgdown":
		m.move(m.bodyRows())
	case "home", "g":
		m.move(-len(m.svc.Store().Projection()))
	case "end", "G":
		m.move(len(m.svc.Store().Projection()))
	case "enter":
		proj := m.svc.Store().Projection()
		if m.cursor < len(proj) {
			m.sel.Click(proj[m.cursor].ID)
			m.revealSelected()
		}
	case "esc":
		m.sel.Clear()
	case "r":
		if m.cache != nil {
			m.cache.Reset()
		}
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func nextStatus(cur domain.Status) domain.Status {
	cycle := append([]domain.Status{domain.StatusAll}, domain.RecordStatuses()...)
	for i, st := range cycle {
		if st == cur {
			return cycle[(i+1)%len(cycle)]
		}
	}
	return domain.StatusAll
}

func (m *Model) move(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.svc.Store().Projection())
	m.cursor = min(max(m.cursor, 0), max(n-1, 0))
	m.revealCursor()
}

func (m *Model) revealCursor() {
	h := float64(m.bodyRows())
	m.table.Do(func(v *window.Virtualizer) {
		v.SetViewport(m.scroll, h)
		if off, ok := v.OffsetForIndex(m.cursor, window.AlignAuto); ok {
			m.scroll = off
		} else {
			m.scroll = 0
		}
	})
}

// revealSelected scrolls the selected row into view and moves the cursor
// onto it.
func (m *Model) revealSelected() {
	h := float64(m.bodyRows())
	m.table.Do(func(v *window.Virtualizer) {
		v.SetViewport(m.scroll, h)
		if off, ok := m.sel.ScrollTarget(v, window.AlignCenter); ok {
			m.scroll = off
			if i, ok := v.IndexOf(m.svc.Store().Selection().ID); ok {
				m.cursor = i
			}
		}
	})
}

func (m Model) bodyRows() int {
	if m.height == 0 {
		return defaultBodyRows
	}
	return max(1, m.height-chromeLines)
}

func (m Model) View() string {
	h := m.bodyRows()
	tbl := m.table.Render(m.scroll, float64(h))

	var b strings.Builder
	b.WriteString(titleStyle.Render("Geo Projects"))
	b.WriteString("  ")
	if m.loading {
		b.WriteString(dimStyle.Render("loading..."))
	} else {
		b.WriteString(dimStyle.Render(tbl.Summary()))
	}
	b.WriteString("\n")
	b.WriteString(m.filterLine())
	b.WriteString("\n")
	b.WriteString(headerRow(tbl.Columns))
	b.WriteString("\n")
	b.WriteString(m.body(tbl, h))
	b.WriteString("\n")
	b.WriteString(paneStyle.Render(m.mapPane()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ move • enter select • esc clear • / search • s status • 1-5 sort • r reload • q quit"))
	return b.String()
}

func (m Model) filterLine() string {
	if m.searching {
		return m.search.View()
	}
	f := m.svc.Store().Filter()
	search := f.Search
	if search == "" {
		search = dimStyle.Render("(none)")
	}
	return fmt.Sprintf("search: %s   status: %s", search, f.Status)
}

func headerRow(cols []listview.Column) string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		label := fmt.Sprintf("%d %s", i+1, c.Label)
		switch c.Direction {
		case domain.Ascending:
			label += " ▲"
		case domain.Descending:
			label += " ▼"
		}
		cells[i] = cell(headerStyle.Render(label), i)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func cell(s string, i int) string {
	w := colWidths[len(colWidths)-1]
	if i < len(colWidths) {
		w = colWidths[i]
	}
	return lipgloss.NewStyle().Width(w).PaddingRight(1).Render(s)
}

func rowLine(r listview.Row) string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		cell(r.Name, 0),
		cell(r.Latitude, 1),
		cell(r.Longitude, 2),
		cell(string(r.Status), 3),
		cell(r.LastUpdated, 4),
	)
}

// body renders the rows intersecting the viewport.
func (m Model) body(tbl listview.Table, h int) string {
	if len(tbl.Rows) == 0 {
		if m.loading {
			return dimStyle.Render("Loading projects...")
		}
		return dimStyle.Render("No projects match the current filter.")
	}

	top, bottom := tbl.ScrollOffset, tbl.ScrollOffset+float64(h)
	var lines []string
	for _, r := range tbl.Rows {
		if r.Start+r.Size <= top || r.Start >= bottom {
			continue
		}
		line := rowLine(r)
		switch {
		case r.Index == m.cursor:
			line = cursorStyle.Render(line)
		case r.Highlighted:
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
	}

	out := strings.Split(strings.Join(lines, "\n"), "\n")
	if len(out) > h {
		out = out[:h]
	}
	return strings.Join(out, "\n")
}

func (m Model) mapPane() string {
	store := m.svc.Store()
	proj := store.Projection()
	markers := mapview.Markers(proj, store.Selection())
	center := mapview.Center(proj)
	clusters := mapview.Clusters(markers, clusterPrecision)
	pos := m.cam.Position()

	lines := []string{
		fmt.Sprintf("Map  %d markers in %d areas  center %s, %s",
			len(markers), len(clusters), domain.FormatCoord(center.Latitude), domain.FormatCoord(center.Longitude)),
		fmt.Sprintf("Camera %s, %s  zoom %.1f",
			domain.FormatCoord(pos.Latitude), domain.FormatCoord(pos.Longitude), pos.Zoom),
	}
	if t, ok := m.sel.Target(); ok && (t.Latitude != pos.Latitude || t.Longitude != pos.Longitude || t.Zoom != pos.Zoom) {
		lines[1] += dimStyle.Render(fmt.Sprintf("  flying to %s, %s", domain.FormatCoord(t.Latitude), domain.FormatCoord(t.Longitude)))
	}

	popup := dimStyle.Render("Nothing selected")
	for i, mk := range markers {
		if mk.Icon.Selected {
			popup = selectedStyle.Render(mapview.Popup(proj[i]))
			break
		}
	}
	return strings.Join(lines, "\n") + "\n" + popup
}

func (m Model) statusLine() string {
	if m.notes == nil {
		return ""
	}
	n, ok := m.notes.Last()
	if !ok {
		return ""
	}
	if n.Level == notifier.LevelError {
		return errorStyle.Render(n.Message)
	}
	return okStyle.Render(n.Message)
}
