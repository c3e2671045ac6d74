package store

import "fmt"

// EntryKind tags the variant of a ListEntry.
type EntryKind int

const (
	// KindMapped is a slot occupied by a UAV; carries UAVID and Slot.
	KindMapped EntryKind = iota
	// KindEmptySlot is an unfilled slot; carries Slot only.
	KindEmptySlot
	// KindSpare is a fleet member outside the mapping; carries UAVID only.
	KindSpare
	// KindExtraDropTarget is the synthetic "drop here to unassign" entry
	// shown during an edit session; carries neither id nor slot.
	KindExtraDropTarget
)

// ListEntry is one row of a display bucket. Kind determines which fields are
// meaningful; Slot is SlotUnassigned for spare and extra entries.
type ListEntry struct {
	Kind  EntryKind
	UAVID string
	Slot  int
	Label string
}

// DisplayedLists holds the three display buckets derived from a snapshot.
type DisplayedLists struct {
	Main   []ListEntry
	Spares []ListEntry
	Extra  []ListEntry
}

// FormatMissionID renders a slot index as the short mission id shown in list
// and grid items.
func FormatMissionID(slot int) string {
	return fmt.Sprintf("s%d", slot+1)
}

// EntryLabel derives the display label for an entry. A proposed
// (drag-preview) label always wins. With mission-id display enabled, the
// formatted mission id is shown for entries that have a slot index, except
// that an occupied slot keeps the raw UAV id while the mapping editor is
// active; empty slots show the mission id even then. With mission-id display
// disabled the UAV id is shown unconditionally.
func EntryLabel(e ListEntry, proposed string, settings DisplaySettings, editing bool) string {
	if proposed != "" {
		return proposed
	}
	hasSlot := e.Kind == KindMapped || e.Kind == KindEmptySlot
	if settings.ShowMissionIDs && hasSlot && (!editing || e.UAVID == "") {
		return FormatMissionID(e.Slot)
	}
	return e.UAVID
}

// DisplayedIDLists derives the display buckets: one Main entry per mapping
// slot in slot order, Spares for fleet members outside the mapping in arrival
// order, and a single extra drop target while an edit session is active.
// Mapping entries for UAVs that already left the fleet are kept; they render
// like any occupied slot and simply never appear among the spares.
func DisplayedIDLists(s Snapshot) DisplayedLists {
	editing := s.Editor.Active
	lists := DisplayedLists{Main: make([]ListEntry, 0, len(s.Mapping))}
	mapped := make(map[string]struct{}, len(s.Mapping))
	for i, id := range s.Mapping {
		e := ListEntry{Kind: KindMapped, UAVID: id, Slot: i}
		if id == "" {
			e = ListEntry{Kind: KindEmptySlot, Slot: i}
		} else {
			mapped[id] = struct{}{}
		}
		e.Label = EntryLabel(e, "", s.Settings, editing)
		lists.Main = append(lists.Main, e)
	}
	for _, u := range s.Fleet {
		if _, ok := mapped[u.ID]; ok {
			continue
		}
		e := ListEntry{Kind: KindSpare, UAVID: u.ID, Slot: SlotUnassigned}
		e.Label = EntryLabel(e, "", s.Settings, editing)
		lists.Spares = append(lists.Spares, e)
	}
	if editing {
		lists.Extra = []ListEntry{{Kind: KindExtraDropTarget, Slot: SlotUnassigned}}
	}
	return lists
}
