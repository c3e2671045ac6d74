// Package console renders the operator TUI over the state store using
// bubbletea. The model is pure view state; every mutation of fleet,
// selection, or mapping goes through the store, and the model repaints from
// the snapshots the store publishes.
package console

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"droneops-console/internal/config"
	"droneops-console/internal/geo"
	"droneops-console/internal/selection"
	"droneops-console/internal/store"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// Commander issues fleet commands for the current selection.
type Commander interface {
	Takeoff(uavIDs []string) error
	Land(uavIDs []string) error
	ReturnHome(uavIDs []string) error
}

// stateMsg carries a fresh store snapshot.
type stateMsg struct{ snap store.Snapshot }

// logMsg carries a log line for the event viewport.
type logMsg struct{ line string }

// notifyMsg carries a transient status-line notification.
type notifyMsg struct{ text string }

// feedMsg reports telemetry feed connectivity.
type feedMsg struct{ connected bool }

type tickMsg time.Time

const (
	maxLogLines       = 1000
	defaultStaleAfter = 30 * time.Second
	gridCellWidth     = 14
)

// Options tune console behavior beyond the static config.
type Options struct {
	StaleAfter time.Duration // fleet members unseen this long are dropped
}

// Console runs the TUI and bridges it to the store.
type Console struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// New builds the model, subscribes it to the store, and starts the program.
func New(cfg *config.ConsoleConfig, st *store.Store, cmdr Commander, opts Options) *Console {
	c := &Console{done: make(chan struct{})}
	c.sendSignal.Store(true)
	m := newModel(cfg, st, cmdr, opts)
	p := tea.NewProgram(m, tea.WithAltScreen())
	c.program = p
	st.Subscribe(func(snap store.Snapshot) {
		c.program.Send(stateMsg{snap: snap})
	})
	go func() {
		_, _ = p.Run()
		close(c.done)
		if c.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return c
}

// Log appends a line to the event viewport.
func (c *Console) Log(line string) {
	c.program.Send(logMsg{line: line})
}

// Notify shows a transient message on the status line.
func (c *Console) Notify(text string) {
	c.program.Send(notifyMsg{text: text})
}

// SetFeedStatus updates the feed indicator.
func (c *Console) SetFeedStatus(connected bool) {
	c.program.Send(feedMsg{connected: connected})
}

// Done is closed when the program has exited.
func (c *Console) Done() <-chan struct{} { return c.done }

// Close shuts the program down and waits for cleanup.
func (c *Console) Close() error {
	c.sendSignal.Store(false)
	if c.program != nil {
		c.program.Send(tea.Quit())
	}
	if c.done != nil {
		<-c.done
	}
	return nil
}

type section int

const (
	sectionMain section = iota
	sectionSpares
)

type model struct {
	cfg  *config.ConsoleConfig
	st   *store.Store
	cmdr Commander

	snap    store.Snapshot
	lists   store.DisplayedLists
	selInfo store.SelectionInfo
	sel     selection.Handler

	section section
	cursor  int

	layers []config.Layer

	table        table.Model
	vp           viewport.Model
	logs         []string
	wrap         bool
	autoscroll   bool
	summary      bool
	help         bool
	feedUp       bool
	notification string
	header       string
	headerHeight int
	width        int
	height       int

	showMap        bool
	mapCenterLat   float64
	mapCenterLon   float64
	mapLatSpan     float64
	mapLonSpan     float64
	mapInitialized bool

	importInput  textinput.Model
	importDialog bool
	assignInput  textinput.Model
	assignDialog bool

	staleAfter time.Duration
}

func newModel(cfg *config.ConsoleConfig, st *store.Store, cmdr Commander, opts Options) model {
	cols := []table.Column{
		{Title: "Config", Width: 20},
		{Title: "Value", Width: 24},
		{Title: "Config", Width: 20},
		{Title: "Value", Width: 24},
	}
	rows := []table.Row{
		{"Broker", cfg.MQTT.Broker, "Mission Slots", fmt.Sprintf("%d", cfg.MissionSlots)},
		{"Telemetry Topic", cfg.MQTT.TelemetryTopic, "Command Topic", cfg.MQTT.CommandTopic},
		{"Grid Columns", fmt.Sprintf("%d", cfg.Display.GridColumns), "Zones", fmt.Sprintf("%d", len(cfg.Zones))},
	}
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	staleAfter := opts.StaleAfter
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	layers := make([]config.Layer, len(cfg.Layers))
	copy(layers, cfg.Layers)
	m := model{
		cfg:        cfg,
		st:         st,
		cmdr:       cmdr,
		table:      t,
		vp:         viewport.New(0, 0),
		layers:     layers,
		autoscroll: true,
		staleAfter: staleAfter,
		snap:       st.Snapshot(),
	}
	m.refreshDerived()
	return m
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd { return tickCmd() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
		m.refreshViewport()
	case tickMsg:
		removed := m.st.ExpireStale(m.staleAfter)
		for _, id := range removed {
			m.pushLog(fmt.Sprintf("%s[%s]%s %sSTALE%s %s dropped after %s silence",
				colorGray, time.Now().Format(time.RFC3339), colorReset,
				colorYellow, colorReset, id, m.staleAfter))
		}
		return m, tickCmd()
	case stateMsg:
		m.snap = msg.snap
		m.refreshDerived()
		m.header = m.renderHeader()
		m.headerHeight = lipgloss.Height(m.header)
		m.updateViewportHeight()
	case logMsg:
		m.pushLog(msg.line)
	case notifyMsg:
		m.notification = msg.text
	case feedMsg:
		m.feedUp = msg.connected
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.importDialog {
		switch msg.Type {
		case tea.KeyEnter:
			path := strings.TrimSpace(m.importInput.Value())
			m.importDialog = false
			m.updateViewportHeight()
			if path != "" {
				m.importZones(path)
			}
		case tea.KeyEsc:
			m.importDialog = false
			m.updateViewportHeight()
		default:
			var cmd tea.Cmd
			m.importInput, cmd = m.importInput.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	if m.assignDialog {
		switch msg.Type {
		case tea.KeyEnter:
			m.assignDialog = false
			m.updateViewportHeight()
			m.applyAssignment(m.assignInput.Value())
		case tea.KeyEsc:
			m.assignDialog = false
			m.updateViewportHeight()
		default:
			var cmd tea.Cmd
			m.assignInput, cmd = m.assignInput.Update(msg)
			return m, cmd
		}
		return m, nil
	}
	if m.help {
		switch msg.String() {
		case "?", "h", "esc":
			m.help = false
			m.updateViewportHeight()
		}
		return m, nil
	}
	if m.showMap {
		switch msg.String() {
		case "+", "=":
			m.mapLatSpan *= 0.8
			m.mapLonSpan *= 0.8
			if m.mapLatSpan < 0.0001 {
				m.mapLatSpan = 0.0001
			}
			if m.mapLonSpan < 0.0001 {
				m.mapLonSpan = 0.0001
			}
			return m, nil
		case "-":
			m.mapLatSpan *= 1.25
			m.mapLonSpan *= 1.25
			return m, nil
		case "left":
			m.mapCenterLon -= m.mapLonSpan * 0.1
			return m, nil
		case "right":
			m.mapCenterLon += m.mapLonSpan * 0.1
			return m, nil
		case "up":
			m.mapCenterLat += m.mapLatSpan * 0.1
			return m, nil
		case "down":
			m.mapCenterLat -= m.mapLatSpan * 0.1
			return m, nil
		}
		if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(m.layers) {
			m.layers[n-1].Visible = !m.layers[n-1].Visible
			return m, nil
		}
	}
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "h", "?":
		m.help = !m.help
		m.updateViewportHeight()
		return m, nil
	case "m":
		m.showMap = !m.showMap
		if m.showMap && !m.mapInitialized {
			m.initMapViewport()
		}
		m.updateViewportHeight()
		return m, nil
	case "g":
		if m.snap.Settings.Layout == store.LayoutList {
			m.st.SetLayout(store.LayoutGrid)
		} else {
			m.st.SetLayout(store.LayoutList)
		}
		return m, nil
	case "i":
		m.st.SetShowMissionIDs(!m.snap.Settings.ShowMissionIDs)
		return m, nil
	case "w":
		m.wrap = !m.wrap
		m.refreshViewport()
		return m, nil
	case "s":
		m.autoscroll = !m.autoscroll
		if m.autoscroll {
			m.vp.GotoBottom()
		}
		return m, nil
	case "t":
		m.summary = !m.summary
		m.updateViewportHeight()
		return m, nil
	case "tab":
		if m.section == sectionMain {
			m.section = sectionSpares
		} else {
			m.section = sectionMain
		}
		m.cursor = 0
		m.clampCursor()
		return m, nil
	case "j", "down":
		m.cursor++
		m.clampCursor()
		return m, nil
	case "k", "up":
		m.cursor--
		m.clampCursor()
		return m, nil
	case "pgdown":
		m.vp.LineDown(10)
		return m, nil
	case "pgup":
		m.vp.LineUp(10)
		return m, nil
	case " ":
		m.activate(selection.Toggle)
		return m, nil
	case "enter":
		return m.handleEnter()
	case "v":
		m.activate(selection.Range)
		return m, nil
	case "a":
		entries := m.sectionEntries(m.section)
		m.st.SetSelectedUAVIDs(store.ToggleBucket(entries, m.snap.Selection))
		return m, nil
	case "e":
		if m.snap.Editor.Active {
			m.st.FinishMappingEditorSession()
			return m, nil
		}
		slot := store.SlotUnassigned
		if e, ok := m.currentEntry(); ok && m.section == sectionMain {
			slot = e.Slot
		}
		m.st.StartMappingEditorSessionAtSlot(slot)
		return m, nil
	case "esc":
		if m.snap.Editor.Active {
			m.st.FinishMappingEditorSession()
		}
		return m, nil
	case "x":
		m.unassignAtCursor()
		return m, nil
	case "T":
		m.commandSelection("takeoff", m.cmdr.Takeoff)
		return m, nil
	case "L":
		m.commandSelection("land", m.cmdr.Land)
		return m, nil
	case "R":
		m.commandSelection("return_home", m.cmdr.ReturnHome)
		return m, nil
	case "o":
		m.importInput = textinput.New()
		m.importInput.Placeholder = "zones.geojson"
		m.importInput.Focus()
		m.importDialog = true
		m.updateViewportHeight()
		return m, nil
	case "A":
		m.assignInput = textinput.New()
		m.assignInput.Placeholder = "uav,slot"
		m.assignInput.Focus()
		m.assignDialog = true
		m.updateViewportHeight()
		return m, nil
	}
	return m, nil
}

// handleEnter either commits a spare into the edited slot or replaces the
// selection with the entry under the cursor.
func (m model) handleEnter() (tea.Model, tea.Cmd) {
	e, ok := m.currentEntry()
	if !ok {
		return m, nil
	}
	if m.snap.Editor.Active {
		switch {
		case e.Kind == store.KindSpare && m.snap.Editor.Slot != store.SlotUnassigned:
			m.st.AdjustMissionMapping(e.UAVID, m.snap.Editor.Slot)
			m.pushLog(fmt.Sprintf("%s[%s]%s %sMAP%s %s -> %s",
				colorGray, time.Now().Format(time.RFC3339), colorReset,
				colorCyan, colorReset, e.UAVID, store.FormatMissionID(m.snap.Editor.Slot)))
			return m, nil
		case m.section == sectionMain:
			m.st.StartMappingEditorSessionAtSlot(e.Slot)
			return m, nil
		}
	}
	m.activate(selection.Replace)
	return m, nil
}

// activate applies a selection gesture to the entry under the cursor.
func (m *model) activate(mode selection.Mode) {
	e, ok := m.currentEntry()
	if !ok || e.UAVID == "" {
		return
	}
	order := store.RealIDs(m.sectionEntries(m.section))
	m.st.SetSelectedUAVIDs(m.sel.Apply(m.snap.Selection, order, e.UAVID, mode))
}

// unassignAtCursor moves the UAV under the cursor back to the spares.
func (m *model) unassignAtCursor() {
	if !m.snap.Editor.Active {
		return
	}
	e, ok := m.currentEntry()
	if !ok || e.Kind != store.KindMapped {
		return
	}
	m.st.AdjustMissionMapping(e.UAVID, store.SlotUnassigned)
	m.pushLog(fmt.Sprintf("%s[%s]%s %sMAP%s %s -> spares",
		colorGray, time.Now().Format(time.RFC3339), colorReset,
		colorCyan, colorReset, e.UAVID))
}

func (m *model) importZones(path string) {
	zones, err := geo.ImportZonesFile(path)
	if err != nil {
		m.notification = fmt.Sprintf("zone import failed: %v", err)
		return
	}
	m.st.SetZones(zones)
	m.mapInitialized = false
	m.notification = fmt.Sprintf("imported %d zones from %s", len(zones), path)
	m.pushLog(fmt.Sprintf("%s[%s]%s %sZONES%s %d zones loaded from %s",
		colorGray, time.Now().Format(time.RFC3339), colorReset,
		colorGreen, colorReset, len(zones), path))
}

// applyAssignment parses "uav,slot" and moves the UAV. slot 0 unassigns.
func (m *model) applyAssignment(val string) {
	parts := strings.Split(val, ",")
	if len(parts) != 2 {
		m.notification = "expected uav,slot"
		return
	}
	id := strings.TrimSpace(parts[0])
	n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || id == "" {
		m.notification = "expected uav,slot"
		return
	}
	if _, ok := m.snap.UAV(id); !ok {
		m.notification = fmt.Sprintf("unknown UAV %q", id)
		return
	}
	slot := n - 1
	if n <= 0 {
		slot = store.SlotUnassigned
	}
	m.st.AdjustMissionMapping(id, slot)
}

func (m *model) commandSelection(name string, fn func([]string) error) {
	ids := sortedIDs(m.snap.Selection)
	if len(ids) == 0 {
		m.notification = "no UAVs selected"
		return
	}
	if err := fn(ids); err != nil {
		m.notification = fmt.Sprintf("%s failed: %v", name, err)
		return
	}
	m.pushLog(fmt.Sprintf("%s[%s]%s %sCMD%s %s%s%s -> %d UAVs",
		colorGray, time.Now().Format(time.RFC3339), colorReset,
		colorMagenta, colorReset, colorWhite(), name, colorReset, len(ids)))
	m.notification = fmt.Sprintf("%s sent to %d UAVs", name, len(ids))
}

func (m *model) pushLog(line string) {
	m.logs = append(m.logs, line)
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
	m.refreshViewport()
}

func (m *model) refreshDerived() {
	m.lists = store.DisplayedIDLists(m.snap)
	m.selInfo = store.DeriveSelectionInfo(m.lists, m.snap.Selection)
	m.clampCursor()
}

func (m *model) clampCursor() {
	entries := m.sectionEntries(m.section)
	if m.cursor >= len(entries) {
		m.cursor = len(entries) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m model) sectionEntries(sec section) []store.ListEntry {
	if sec == sectionSpares {
		return m.lists.Spares
	}
	return m.lists.Main
}

func (m model) currentEntry() (store.ListEntry, bool) {
	entries := m.sectionEntries(m.section)
	if len(entries) == 0 || m.cursor < 0 || m.cursor >= len(entries) {
		return store.ListEntry{}, false
	}
	return entries[m.cursor], true
}

// proposedLabels previews the target mission id on the spare under the cursor
// while a slot is being edited.
func (m model) proposedLabels() map[string]string {
	if !m.snap.Editor.Active || m.snap.Editor.Slot == store.SlotUnassigned || m.section != sectionSpares {
		return nil
	}
	e, ok := m.currentEntry()
	if !ok || e.Kind != store.KindSpare {
		return nil
	}
	return map[string]string{e.UAVID: store.FormatMissionID(m.snap.Editor.Slot)}
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
