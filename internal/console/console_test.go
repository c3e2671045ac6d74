package console

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"droneops-console/internal/config"
	"droneops-console/internal/store"
	"droneops-console/internal/telemetry"
)

type fakeProgram struct{ msgs []tea.Msg }

func (f *fakeProgram) Send(msg tea.Msg) { f.msgs = append(f.msgs, msg) }

type fakeCommander struct {
	calls []string
	ids   [][]string
	err   error
}

func (f *fakeCommander) Takeoff(ids []string) error    { return f.record("takeoff", ids) }
func (f *fakeCommander) Land(ids []string) error       { return f.record("land", ids) }
func (f *fakeCommander) ReturnHome(ids []string) error { return f.record("return_home", ids) }

func (f *fakeCommander) record(name string, ids []string) error {
	if f.err != nil {
		return f.err
	}
	f.calls = append(f.calls, name)
	f.ids = append(f.ids, ids)
	return nil
}

func testConfig() *config.ConsoleConfig {
	return &config.ConsoleConfig{
		MissionSlots: 2,
		Display:      config.Display{Layout: config.LayoutList, ShowMissionIDs: true, GridColumns: 2},
		Layers: []config.Layer{
			{Type: config.LayerGraticule, Label: "Graticule", Visible: true},
			{Type: config.LayerZones, Label: "Zones", Visible: true},
			{Type: config.LayerUAVs, Label: "UAVs", Visible: true},
		},
	}
}

func newTestModel(t *testing.T, cmdr Commander) (model, *store.Store) {
	t.Helper()
	st := store.New(2, store.DisplaySettings{ShowMissionIDs: true})
	for _, id := range []string{"A", "B", "C"} {
		st.ApplyTelemetry(telemetry.TelemetryRow{UAVID: id, Battery: 80, Timestamp: time.Now()})
	}
	st.AdjustMissionMapping("A", 0)
	m := newModel(testConfig(), st, cmdr, Options{StaleAfter: 30 * time.Second})
	return m, st
}

// press applies a key and then syncs the model with the store, the way the
// running program does through the subscription.
func press(t *testing.T, m model, st *store.Store, msg tea.Msg) model {
	t.Helper()
	mi, _ := m.Update(msg)
	m = mi.(model)
	mi, _ = m.Update(stateMsg{snap: st.Snapshot()})
	return mi.(model)
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestToggleSelectSpare(t *testing.T) {
	m, st := newTestModel(t, &fakeCommander{})
	m = press(t, m, st, tea.KeyMsg{Type: tea.KeyTab})
	if m.section != sectionSpares {
		t.Fatalf("section %v", m.section)
	}
	m = press(t, m, st, tea.KeyMsg{Type: tea.KeySpace})
	sel := st.SelectedUAVIDs()
	if _, ok := sel["B"]; !ok || len(sel) != 1 {
		t.Fatalf("selection %v", sel)
	}
	m = press(t, m, st, runeKey('j'))
	m = press(t, m, st, tea.KeyMsg{Type: tea.KeySpace})
	sel = st.SelectedUAVIDs()
	if len(sel) != 2 {
		t.Fatalf("selection %v", sel)
	}
	// enter replaces the whole selection with the cursor entry
	m = press(t, m, st, tea.KeyMsg{Type: tea.KeyEnter})
	sel = st.SelectedUAVIDs()
	if _, ok := sel["C"]; !ok || len(sel) != 1 {
		t.Fatalf("selection after replace %v", sel)
	}
}

func TestBucketHeaderToggle(t *testing.T) {
	m, st := newTestModel(t, &fakeCommander{})
	m = press(t, m, st, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, st, runeKey('a'))
	sel := st.SelectedUAVIDs()
	if len(sel) != 2 {
		t.Fatalf("expected both spares selected, got %v", sel)
	}
	m = press(t, m, st, runeKey('a'))
	if sel := st.SelectedUAVIDs(); len(sel) != 0 {
		t.Fatalf("expected cleared selection, got %v", sel)
	}
}

func TestEditorAssignFlow(t *testing.T) {
	m, st := newTestModel(t, &fakeCommander{})
	m = press(t, m, st, runeKey('j')) // empty slot 2
	m = press(t, m, st, runeKey('e'))
	if ed := st.Snapshot().Editor; !ed.Active || ed.Slot != 1 {
		t.Fatalf("editor %+v", ed)
	}
	m = press(t, m, st, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, st, tea.KeyMsg{Type: tea.KeyEnter})
	if got := st.Snapshot().Mapping[1]; got != "B" {
		t.Fatalf("mapping[1] = %q", got)
	}
	m = press(t, m, st, runeKey('e'))
	if ed := st.Snapshot().Editor; ed.Active {
		t.Fatalf("editor still active: %+v", ed)
	}
}

func TestEditorUnassign(t *testing.T) {
	m, st := newTestModel(t, &fakeCommander{})
	m = press(t, m, st, runeKey('e')) // cursor on slot 1, mapped to A
	m = press(t, m, st, runeKey('x'))
	if got := st.Snapshot().Mapping[0]; got != "" {
		t.Fatalf("mapping[0] = %q", got)
	}
	lists := store.DisplayedIDLists(st.Snapshot())
	ids := store.RealIDs(lists.Spares)
	if len(ids) != 3 {
		t.Fatalf("spares %v", ids)
	}
}

func TestLayoutAndMissionIDKeys(t *testing.T) {
	m, st := newTestModel(t, &fakeCommander{})
	m = press(t, m, st, runeKey('g'))
	if st.Snapshot().Settings.Layout != store.LayoutGrid {
		t.Fatalf("layout not toggled")
	}
	m = press(t, m, st, runeKey('i'))
	if st.Snapshot().Settings.ShowMissionIDs {
		t.Fatalf("mission ids not toggled")
	}
	if got := store.DisplayedIDLists(st.Snapshot()).Main[0].Label; got != "A" {
		t.Fatalf("label %q", got)
	}
}

func TestCommandKeys(t *testing.T) {
	cmdr := &fakeCommander{}
	m, st := newTestModel(t, cmdr)
	m = press(t, m, st, runeKey('L'))
	if len(cmdr.calls) != 0 {
		t.Fatalf("command sent with empty selection: %v", cmdr.calls)
	}
	if m.notification == "" {
		t.Fatalf("expected notification")
	}
	st.SetSelectedUAVIDs(map[string]struct{}{"B": {}, "A": {}})
	m = press(t, m, st, tea.KeyMsg{}) // sync only
	m = press(t, m, st, runeKey('T'))
	if len(cmdr.calls) != 1 || cmdr.calls[0] != "takeoff" {
		t.Fatalf("calls %v", cmdr.calls)
	}
	if got := cmdr.ids[0]; len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("ids %v", got)
	}
}

func TestDirectAssignmentDialog(t *testing.T) {
	m, st := newTestModel(t, &fakeCommander{})
	m = press(t, m, st, runeKey('A'))
	if !m.assignDialog {
		t.Fatalf("dialog not open")
	}
	m.assignInput.SetValue("C,1")
	m = press(t, m, st, tea.KeyMsg{Type: tea.KeyEnter})
	if got := st.Snapshot().Mapping[0]; got != "C" {
		t.Fatalf("mapping[0] = %q", got)
	}
	m = press(t, m, st, runeKey('A'))
	m.assignInput.SetValue("nope")
	m = press(t, m, st, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.notification, "uav,slot") {
		t.Fatalf("notification %q", m.notification)
	}
}

func TestStaleTickDropsFleet(t *testing.T) {
	cmdr := &fakeCommander{}
	st := store.New(1, store.DisplaySettings{})
	st.ApplyTelemetry(telemetry.TelemetryRow{UAVID: "old", Timestamp: time.Now().Add(-time.Hour)})
	m := newModel(testConfig(), st, cmdr, Options{StaleAfter: 30 * time.Second})
	mi, cmd := m.Update(tickMsg(time.Now()))
	m = mi.(model)
	if cmd == nil {
		t.Fatalf("expected next tick scheduled")
	}
	if got := len(st.Snapshot().Fleet); got != 0 {
		t.Fatalf("fleet size %d", got)
	}
	if len(m.logs) == 0 || !strings.Contains(m.logs[len(m.logs)-1], "old") {
		t.Fatalf("expected stale log, got %v", m.logs)
	}
}

func TestMapLayerToggle(t *testing.T) {
	m, st := newTestModel(t, &fakeCommander{})
	m = press(t, m, st, runeKey('m'))
	if !m.showMap || !m.mapInitialized {
		t.Fatalf("map not shown")
	}
	m = press(t, m, st, runeKey('1'))
	if m.layers[0].Visible {
		t.Fatalf("layer 1 still visible")
	}
	m = press(t, m, st, runeKey('1'))
	if !m.layers[0].Visible {
		t.Fatalf("layer 1 not restored")
	}
}

func TestConsoleSendHelpers(t *testing.T) {
	p := &fakeProgram{}
	c := &Console{program: p, done: make(chan struct{})}
	c.Log("hello")
	c.Notify("hi")
	c.SetFeedStatus(true)
	if _, ok := p.msgs[0].(logMsg); !ok {
		t.Fatalf("expected logMsg, got %T", p.msgs[0])
	}
	if _, ok := p.msgs[1].(notifyMsg); !ok {
		t.Fatalf("expected notifyMsg, got %T", p.msgs[1])
	}
	if _, ok := p.msgs[2].(feedMsg); !ok {
		t.Fatalf("expected feedMsg, got %T", p.msgs[2])
	}
}
