// Package selection implements the generic multi-select semantics shared by
// the list and grid widgets: plain activation replaces the selection,
// toggle-add flips a single entry, and range selection spans from the last
// anchor to the target over the bucket's display order.
package selection

// Mode selects how an activation changes the selection set.
type Mode int

const (
	// Replace makes the target the sole selected entry.
	Replace Mode = iota
	// Toggle flips the target in and out of the selection.
	Toggle
	// Range replaces the selection with the span from the anchor to the
	// target; without a usable anchor it degrades to Replace.
	Range
)

// Handler tracks the range anchor across activations.
type Handler struct {
	anchor string
}

// Apply computes the next selection set from the current one. order is the
// bucket's full id list in display order; target must be one of its entries
// for range selection to span correctly.
func (h *Handler) Apply(current map[string]struct{}, order []string, target string, mode Mode) map[string]struct{} {
	switch mode {
	case Toggle:
		next := cloneSet(current)
		if _, ok := next[target]; ok {
			delete(next, target)
		} else {
			next[target] = struct{}{}
		}
		h.anchor = target
		return next
	case Range:
		ai, ti := indexOf(order, h.anchor), indexOf(order, target)
		if ai < 0 || ti < 0 {
			h.anchor = target
			return map[string]struct{}{target: {}}
		}
		if ai > ti {
			ai, ti = ti, ai
		}
		next := make(map[string]struct{}, ti-ai+1)
		for _, id := range order[ai : ti+1] {
			next[id] = struct{}{}
		}
		return next
	default:
		h.anchor = target
		return map[string]struct{}{target: {}}
	}
}

func cloneSet(s map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

func indexOf(order []string, id string) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}
