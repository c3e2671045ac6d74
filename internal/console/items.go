package console

import (
	"droneops-console/internal/store"
)

// Item is one renderable list or grid cell.
type Item struct {
	Entry      store.ListEntry
	Label      string
	Selected   bool
	EditTarget bool
	Info       *store.UAVInfo // nil for placeholder entries
}

// Section groups one bucket with its header checkbox state.
type Section struct {
	Title  string
	Header store.BucketSelection
	Items  []Item
}

// BuildSections turns the derived buckets into renderable sections. proposed
// carries drag-preview labels keyed by UAV id; the override rule is the same
// for the grid and the list builder. The extra bucket only appears while an
// edit session is active.
func BuildSections(snap store.Snapshot, lists store.DisplayedLists, info store.SelectionInfo, proposed map[string]string) []Section {
	sections := []Section{
		{Title: "Mission slots", Header: info.Main, Items: buildItems(snap, lists.Main, proposed)},
		{Title: "Spares", Header: info.Spares, Items: buildItems(snap, lists.Spares, proposed)},
	}
	if len(lists.Extra) > 0 {
		sections = append(sections, Section{Title: "Extra", Header: info.Extra, Items: buildItems(snap, lists.Extra, proposed)})
	}
	return sections
}

func buildItems(snap store.Snapshot, entries []store.ListEntry, proposed map[string]string) []Item {
	items := make([]Item, len(entries))
	for i, e := range entries {
		it := Item{Entry: e, Label: e.Label}
		if e.UAVID != "" {
			if p, ok := proposed[e.UAVID]; ok {
				it.Label = store.EntryLabel(e, p, snap.Settings, snap.Editor.Active)
			}
			if _, ok := snap.Selection[e.UAVID]; ok {
				it.Selected = true
			}
			if u, ok := snap.UAV(e.UAVID); ok {
				info := u
				it.Info = &info
			}
		}
		if snap.Editor.Active && e.Slot != store.SlotUnassigned && e.Slot == snap.Editor.Slot {
			it.EditTarget = true
		}
		items[i] = it
	}
	return items
}

// Checkbox renders the tri-state header checkbox.
func Checkbox(b store.BucketSelection) string {
	switch {
	case b.Disabled:
		return "[ ]"
	case b.Indeterminate:
		return "[-]"
	case b.Checked:
		return "[x]"
	default:
		return "[ ]"
	}
}
