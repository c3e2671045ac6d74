// Application state store for the operator console.
//
// All state transitions happen synchronously through Store methods. Every
// mutation notifies subscribers with a fresh Snapshot; the pure selectors in
// derive.go and selectioninfo.go recompute display state from that snapshot.
package store

import (
	"sync"
	"time"

	"droneops-console/internal/config"
	"droneops-console/internal/telemetry"
)

// SlotUnassigned marks "no slot": spare entries, the editor's "no slot
// picked yet" state, and the unassign target of AdjustMissionMapping.
const SlotUnassigned = -1

// ListLayout selects how the UAV buckets are rendered.
type ListLayout int

const (
	LayoutList ListLayout = iota
	LayoutGrid
)

// DisplaySettings holds layout and labeling preferences.
type DisplaySettings struct {
	Layout         ListLayout
	ShowMissionIDs bool
}

// MappingEditor is the single mapping-edit cursor. At most one slot is under
// edit store-wide; a later StartMappingEditorSessionAtSlot simply moves the
// cursor (last write wins).
type MappingEditor struct {
	Active bool
	Slot   int // SlotUnassigned while active with no slot picked
}

// UAVInfo holds the last known runtime state of one fleet member.
type UAVInfo struct {
	ID         string
	Position   telemetry.Position
	Battery    float64
	HeadingDeg float64
	Status     string
	LastSeen   time.Time
}

// Snapshot is a copy of console state handed to subscribers. Maps and slices
// are copies; callers may keep them without racing the store.
type Snapshot struct {
	Fleet     []UAVInfo // arrival order
	Selection map[string]struct{}
	Mapping   []string // "" marks an empty slot
	Editor    MappingEditor
	Settings  DisplaySettings
	Zones     []config.Zone
}

// FleetIDs returns the fleet identifiers in arrival order.
func (s Snapshot) FleetIDs() []string {
	ids := make([]string, len(s.Fleet))
	for i, u := range s.Fleet {
		ids[i] = u.ID
	}
	return ids
}

// UAV looks up a fleet member by id.
func (s Snapshot) UAV(id string) (UAVInfo, bool) {
	for _, u := range s.Fleet {
		if u.ID == id {
			return u, true
		}
	}
	return UAVInfo{}, false
}

// Listener receives a snapshot after every store mutation.
type Listener func(Snapshot)

// Store owns all mutable console state.
type Store struct {
	mu        sync.Mutex
	order     []string
	uavs      map[string]*UAVInfo
	selection map[string]struct{}
	mapping   []string
	editor    MappingEditor
	settings  DisplaySettings
	zones     []config.Zone
	listeners []Listener
	now       func() time.Time
}

// New creates a store with the given mission slot count and display settings.
func New(slotCount int, settings DisplaySettings) *Store {
	if slotCount < 0 {
		slotCount = 0
	}
	return &Store{
		uavs:      make(map[string]*UAVInfo),
		selection: make(map[string]struct{}),
		mapping:   make([]string, slotCount),
		editor:    MappingEditor{Slot: SlotUnassigned},
		settings:  settings,
		now:       time.Now,
	}
}

// Subscribe registers a listener invoked after every mutation. Listeners are
// called outside the store lock, in subscription order.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Fleet:     make([]UAVInfo, 0, len(s.order)),
		Selection: make(map[string]struct{}, len(s.selection)),
		Mapping:   make([]string, len(s.mapping)),
		Editor:    s.editor,
		Settings:  s.settings,
		Zones:     make([]config.Zone, len(s.zones)),
	}
	for _, id := range s.order {
		snap.Fleet = append(snap.Fleet, *s.uavs[id])
	}
	for id := range s.selection {
		snap.Selection[id] = struct{}{}
	}
	copy(snap.Mapping, s.mapping)
	copy(snap.Zones, s.zones)
	return snap
}

func (s *Store) mutate(f func()) {
	s.mu.Lock()
	f()
	snap := s.snapshotLocked()
	ls := make([]Listener, len(s.listeners))
	copy(ls, s.listeners)
	s.mu.Unlock()
	for _, l := range ls {
		l(snap)
	}
}

// ApplyTelemetry upserts a fleet member from a telemetry row. Rows without a
// UAV id are dropped.
func (s *Store) ApplyTelemetry(row telemetry.TelemetryRow) {
	if row.UAVID == "" {
		return
	}
	s.mutate(func() {
		u, ok := s.uavs[row.UAVID]
		if !ok {
			u = &UAVInfo{ID: row.UAVID}
			s.uavs[row.UAVID] = u
			s.order = append(s.order, row.UAVID)
		}
		u.Position = telemetry.Position{Lat: row.Lat, Lon: row.Lon, Alt: row.Alt}
		u.Battery = row.Battery
		u.HeadingDeg = row.HeadingDeg
		u.Status = row.Status
		u.LastSeen = row.Timestamp
		if u.LastSeen.IsZero() {
			u.LastSeen = s.now()
		}
	})
}

// ExpireStale removes fleet members unseen for longer than maxAge and drops
// them from the selection. Mapping slots referencing an expired UAV are left
// alone; the displayed-list selector tolerates them. Returns the removed ids.
func (s *Store) ExpireStale(maxAge time.Duration) []string {
	var removed []string
	s.mutate(func() {
		cutoff := s.now().Add(-maxAge)
		kept := s.order[:0]
		for _, id := range s.order {
			if s.uavs[id].LastSeen.Before(cutoff) {
				removed = append(removed, id)
				delete(s.uavs, id)
				delete(s.selection, id)
				continue
			}
			kept = append(kept, id)
		}
		s.order = kept
	})
	return removed
}

// SetSelectedUAVIDs replaces the selection wholesale. There is no
// partial-update API; callers compute the full next set first.
func (s *Store) SetSelectedUAVIDs(ids map[string]struct{}) {
	s.mutate(func() {
		s.selection = make(map[string]struct{}, len(ids))
		for id := range ids {
			s.selection[id] = struct{}{}
		}
	})
}

// SelectedUAVIDs returns a copy of the current selection set.
func (s *Store) SelectedUAVIDs() map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]struct{}, len(s.selection))
	for id := range s.selection {
		out[id] = struct{}{}
	}
	return out
}

// StartMappingEditorSessionAtSlot opens the mapping editor at a slot. A
// negative or out-of-range slot means "editor active, no slot picked yet".
func (s *Store) StartMappingEditorSessionAtSlot(slot int) {
	s.mutate(func() {
		s.editor.Active = true
		if slot < 0 || slot >= len(s.mapping) {
			s.editor.Slot = SlotUnassigned
			return
		}
		s.editor.Slot = slot
	})
}

// FinishMappingEditorSession ends the edit session, whether confirmed or
// cancelled: the cursor is cleared and the mapping stays as last adjusted.
func (s *Store) FinishMappingEditorSession() {
	s.mutate(func() {
		s.editor = MappingEditor{Slot: SlotUnassigned}
	})
}

// AdjustMissionMapping moves uavID into toSlot as one atomic step: the UAV's
// previous slot is vacated, and a different previous occupant of toSlot
// becomes spare. A toSlot of SlotUnassigned removes the UAV from the mapping.
// Out-of-range slots are ignored.
func (s *Store) AdjustMissionMapping(uavID string, toSlot int) {
	if uavID == "" {
		return
	}
	s.mutate(func() {
		if toSlot >= len(s.mapping) {
			return
		}
		for i, id := range s.mapping {
			if id == uavID {
				s.mapping[i] = ""
			}
		}
		if toSlot >= 0 {
			s.mapping[toSlot] = uavID
		}
	})
}

// SetSlotCount resizes the mapping, keeping existing assignments that still
// fit. An edit cursor beyond the new count loses its slot but stays active.
func (s *Store) SetSlotCount(n int) {
	if n < 0 {
		n = 0
	}
	s.mutate(func() {
		next := make([]string, n)
		copy(next, s.mapping)
		s.mapping = next
		if s.editor.Slot >= n {
			s.editor.Slot = SlotUnassigned
		}
	})
}

// SetLayout switches between list and grid rendering.
func (s *Store) SetLayout(l ListLayout) {
	s.mutate(func() { s.settings.Layout = l })
}

// SetShowMissionIDs toggles mission-id labels.
func (s *Store) SetShowMissionIDs(v bool) {
	s.mutate(func() { s.settings.ShowMissionIDs = v })
}

// SetZones replaces the operational zones drawn on the map.
func (s *Store) SetZones(zones []config.Zone) {
	s.mutate(func() {
		s.zones = make([]config.Zone, len(zones))
		copy(s.zones, zones)
	})
}
