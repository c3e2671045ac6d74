package store

import (
	"testing"
	"time"

	"droneops-console/internal/telemetry"
)

func feedFleet(s *Store, ids ...string) {
	for _, id := range ids {
		s.ApplyTelemetry(telemetry.TelemetryRow{UAVID: id, Timestamp: time.Now()})
	}
}

func mappedSlots(mapping []string, uavID string) []int {
	var slots []int
	for i, id := range mapping {
		if id == uavID {
			slots = append(slots, i)
		}
	}
	return slots
}

func TestAdjustMissionMappingUniqueSlot(t *testing.T) {
	s := New(4, DisplaySettings{})
	feedFleet(s, "A", "B", "C")
	s.AdjustMissionMapping("A", 0)
	s.AdjustMissionMapping("A", 2)
	s.AdjustMissionMapping("B", 1)
	s.AdjustMissionMapping("A", 1)

	snap := s.Snapshot()
	if got := mappedSlots(snap.Mapping, "A"); len(got) != 1 || got[0] != 1 {
		t.Fatalf("A mapped to slots %v, want [1]", got)
	}
	if got := mappedSlots(snap.Mapping, "B"); len(got) != 0 {
		t.Fatalf("B still mapped to %v after being displaced", got)
	}
}

func TestAdjustMissionMappingIdempotent(t *testing.T) {
	s := New(3, DisplaySettings{})
	feedFleet(s, "A")
	s.AdjustMissionMapping("A", 1)
	first := s.Snapshot().Mapping
	s.AdjustMissionMapping("A", 1)
	second := s.Snapshot().Mapping
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("second identical move changed mapping: %v vs %v", first, second)
		}
	}
}

func TestAdjustMissionMappingUnassign(t *testing.T) {
	s := New(2, DisplaySettings{})
	feedFleet(s, "A")
	s.AdjustMissionMapping("A", 0)
	s.AdjustMissionMapping("A", SlotUnassigned)
	snap := s.Snapshot()
	if got := mappedSlots(snap.Mapping, "A"); len(got) != 0 {
		t.Fatalf("A still mapped to %v after unassign", got)
	}
	lists := DisplayedIDLists(snap)
	if len(lists.Spares) != 1 || lists.Spares[0].UAVID != "A" {
		t.Fatalf("A not spare after unassign: %+v", lists.Spares)
	}
}

func TestDisplacedUAVBecomesSpare(t *testing.T) {
	s := New(2, DisplaySettings{})
	feedFleet(s, "A", "B")
	s.AdjustMissionMapping("B", 0)
	s.AdjustMissionMapping("A", 0)
	lists := DisplayedIDLists(s.Snapshot())
	if lists.Main[0].UAVID != "A" {
		t.Fatalf("slot 0 holds %q, want A", lists.Main[0].UAVID)
	}
	if len(lists.Spares) != 1 || lists.Spares[0].UAVID != "B" {
		t.Fatalf("B not spare: %+v", lists.Spares)
	}
}

func TestFleetPartition(t *testing.T) {
	s := New(3, DisplaySettings{})
	feedFleet(s, "A", "B", "C", "D")
	s.AdjustMissionMapping("B", 0)
	s.AdjustMissionMapping("D", 2)

	snap := s.Snapshot()
	lists := DisplayedIDLists(snap)
	if len(lists.Main) != 3 {
		t.Fatalf("main length %d, want slot count 3", len(lists.Main))
	}
	seen := make(map[string]int)
	for _, e := range lists.Main {
		if e.UAVID != "" {
			seen[e.UAVID]++
		}
	}
	for _, e := range lists.Spares {
		seen[e.UAVID]++
	}
	for _, id := range snap.FleetIDs() {
		if seen[id] != 1 {
			t.Fatalf("fleet id %q appears %d times across buckets", id, seen[id])
		}
	}
}

func TestEditorSentinelStates(t *testing.T) {
	s := New(2, DisplaySettings{})
	if e := s.Snapshot().Editor; e.Active || e.Slot != SlotUnassigned {
		t.Fatalf("fresh store editor %+v", e)
	}
	s.StartMappingEditorSessionAtSlot(SlotUnassigned)
	if e := s.Snapshot().Editor; !e.Active || e.Slot != SlotUnassigned {
		t.Fatalf("editor without slot: %+v", e)
	}
	s.StartMappingEditorSessionAtSlot(1)
	if e := s.Snapshot().Editor; !e.Active || e.Slot != 1 {
		t.Fatalf("editor at slot: %+v", e)
	}
	// Last write wins; there is only one cursor.
	s.StartMappingEditorSessionAtSlot(0)
	if e := s.Snapshot().Editor; e.Slot != 0 {
		t.Fatalf("cursor did not move: %+v", e)
	}
	s.FinishMappingEditorSession()
	if e := s.Snapshot().Editor; e.Active || e.Slot != SlotUnassigned {
		t.Fatalf("editor after finish: %+v", e)
	}
}

func TestSetSelectedUAVIDsReplacesWholesale(t *testing.T) {
	s := New(1, DisplaySettings{})
	feedFleet(s, "A", "B")
	s.SetSelectedUAVIDs(map[string]struct{}{"A": {}})
	s.SetSelectedUAVIDs(map[string]struct{}{"B": {}})
	sel := s.SelectedUAVIDs()
	if _, ok := sel["A"]; ok {
		t.Fatal("A survived a wholesale replace")
	}
	if _, ok := sel["B"]; !ok {
		t.Fatal("B missing from selection")
	}
}

func TestExpireStaleDropsSelectionButToleratesMapping(t *testing.T) {
	s := New(2, DisplaySettings{})
	base := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	s.ApplyTelemetry(telemetry.TelemetryRow{UAVID: "A", Timestamp: base})
	s.ApplyTelemetry(telemetry.TelemetryRow{UAVID: "B", Timestamp: base.Add(50 * time.Second)})
	s.AdjustMissionMapping("A", 0)
	s.SetSelectedUAVIDs(map[string]struct{}{"A": {}, "B": {}})

	s.now = func() time.Time { return base.Add(time.Minute) }
	removed := s.ExpireStale(30 * time.Second)
	if len(removed) != 1 || removed[0] != "A" {
		t.Fatalf("removed %v, want [A]", removed)
	}
	snap := s.Snapshot()
	if _, ok := snap.Selection["A"]; ok {
		t.Fatal("expired UAV still selected")
	}
	if snap.Mapping[0] != "A" {
		t.Fatal("mapping entry for expired UAV should be tolerated")
	}
	if _, ok := snap.UAV("B"); !ok {
		t.Fatal("fresh UAV was expired")
	}
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	s := New(1, DisplaySettings{})
	var got []Snapshot
	s.Subscribe(func(snap Snapshot) { got = append(got, snap) })
	feedFleet(s, "A")
	s.SetSelectedUAVIDs(map[string]struct{}{"A": {}})
	if len(got) != 2 {
		t.Fatalf("listener called %d times, want 2", len(got))
	}
	if _, ok := got[1].Selection["A"]; !ok {
		t.Fatal("second snapshot missing selection")
	}
}

func TestSetSlotCountResizes(t *testing.T) {
	s := New(2, DisplaySettings{})
	feedFleet(s, "A")
	s.AdjustMissionMapping("A", 1)
	s.StartMappingEditorSessionAtSlot(1)
	s.SetSlotCount(1)
	snap := s.Snapshot()
	if len(snap.Mapping) != 1 {
		t.Fatalf("mapping length %d", len(snap.Mapping))
	}
	if !snap.Editor.Active || snap.Editor.Slot != SlotUnassigned {
		t.Fatalf("editor after shrink: %+v", snap.Editor)
	}
	s.SetSlotCount(3)
	if got := len(s.Snapshot().Mapping); got != 3 {
		t.Fatalf("mapping length %d after grow", got)
	}
}
