package store

// BucketSelection is the tri-state checkbox of one bucket header.
type BucketSelection struct {
	Checked       bool
	Indeterminate bool
	Disabled      bool
}

// SelectionInfo holds the header checkbox state of all three buckets.
type SelectionInfo struct {
	Main   BucketSelection
	Spares BucketSelection
	Extra  BucketSelection
}

// RealIDs returns the non-placeholder UAV ids of a bucket in display order.
func RealIDs(entries []ListEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.UAVID != "" {
			ids = append(ids, e.UAVID)
		}
	}
	return ids
}

func bucketSelection(entries []ListEntry, sel map[string]struct{}) BucketSelection {
	ids := RealIDs(entries)
	if len(ids) == 0 {
		// Vacuously checked.
		return BucketSelection{Checked: true, Disabled: true}
	}
	n := 0
	for _, id := range ids {
		if _, ok := sel[id]; ok {
			n++
		}
	}
	return BucketSelection{
		Checked:       n == len(ids),
		Indeterminate: n > 0 && n < len(ids),
	}
}

// DeriveSelectionInfo computes header checkbox state for all buckets against
// the global selection set.
func DeriveSelectionInfo(lists DisplayedLists, sel map[string]struct{}) SelectionInfo {
	return SelectionInfo{
		Main:   bucketSelection(lists.Main, sel),
		Spares: bucketSelection(lists.Spares, sel),
		Extra:  bucketSelection(lists.Extra, sel),
	}
}

// ToggleBucket returns the next selection set for a bucket-header toggle: a
// fully checked bucket is removed from the selection (set difference),
// anything else is added wholesale (set union).
func ToggleBucket(entries []ListEntry, sel map[string]struct{}) map[string]struct{} {
	next := make(map[string]struct{}, len(sel))
	for id := range sel {
		next[id] = struct{}{}
	}
	info := bucketSelection(entries, sel)
	for _, id := range RealIDs(entries) {
		if info.Checked {
			delete(next, id)
		} else {
			next[id] = struct{}{}
		}
	}
	return next
}
