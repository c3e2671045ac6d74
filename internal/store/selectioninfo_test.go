package store

import "testing"

func TestSelectionInfoTriState(t *testing.T) {
	snap := snapshotWith(t, 2, DisplaySettings{}, func(s *Store) {
		feedFleet(s, "A", "B", "C")
		s.AdjustMissionMapping("A", 0)
		s.SetSelectedUAVIDs(map[string]struct{}{"B": {}})
	})
	lists := DisplayedIDLists(snap)
	info := DeriveSelectionInfo(lists, snap.Selection)

	if info.Main.Checked || info.Main.Indeterminate || info.Main.Disabled {
		t.Fatalf("main: %+v", info.Main)
	}
	if !info.Spares.Indeterminate || info.Spares.Checked {
		t.Fatalf("spares with B of {B,C} selected: %+v", info.Spares)
	}
	// No real ids in the extra bucket: disabled, vacuously checked.
	if !info.Extra.Disabled || !info.Extra.Checked {
		t.Fatalf("extra: %+v", info.Extra)
	}
}

func TestSelectionInfoFullyChecked(t *testing.T) {
	snap := snapshotWith(t, 1, DisplaySettings{}, func(s *Store) {
		feedFleet(s, "A", "B")
		s.AdjustMissionMapping("A", 0)
		s.SetSelectedUAVIDs(map[string]struct{}{"A": {}})
	})
	lists := DisplayedIDLists(snap)
	info := DeriveSelectionInfo(lists, snap.Selection)
	if !info.Main.Checked || info.Main.Indeterminate {
		t.Fatalf("main: %+v", info.Main)
	}
}

func TestToggleBucketHeaderUnionThenDifference(t *testing.T) {
	// fleet = {A,B,C}, mapping = [A]; B selected, C not. Toggling the
	// spares header first selects the whole bucket, toggling again removes
	// it, leaving unrelated selections alone.
	snap := snapshotWith(t, 1, DisplaySettings{}, func(s *Store) {
		feedFleet(s, "A", "B", "C")
		s.AdjustMissionMapping("A", 0)
		s.SetSelectedUAVIDs(map[string]struct{}{"A": {}, "B": {}})
	})
	lists := DisplayedIDLists(snap)

	next := ToggleBucket(lists.Spares, snap.Selection)
	for _, id := range []string{"A", "B", "C"} {
		if _, ok := next[id]; !ok {
			t.Fatalf("after union, %s missing: %v", id, next)
		}
	}

	next = ToggleBucket(lists.Spares, next)
	if _, ok := next["B"]; ok {
		t.Fatalf("B survived difference: %v", next)
	}
	if _, ok := next["C"]; ok {
		t.Fatalf("C survived difference: %v", next)
	}
	if _, ok := next["A"]; !ok {
		t.Fatalf("unrelated selection A dropped: %v", next)
	}
}

func TestToggleDisabledBucketIsNoop(t *testing.T) {
	lists := DisplayedLists{Extra: []ListEntry{{Kind: KindExtraDropTarget, Slot: SlotUnassigned}}}
	sel := map[string]struct{}{"A": {}}
	next := ToggleBucket(lists.Extra, sel)
	if len(next) != 1 {
		t.Fatalf("toggle on placeholder bucket changed selection: %v", next)
	}
}
