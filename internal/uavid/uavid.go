// Package uavid classifies and converts global object identifiers.
//
// The console addresses every selectable object by a global identifier.
// UAVs use the "uav:" namespace; other namespaces (zones, features) belong
// to collaborating subsystems and are ignored here.
package uavid

import "strings"

const prefix = "uav:"

// GlobalID returns the global object identifier for a UAV identifier.
func GlobalID(uavID string) string {
	return prefix + uavID
}

// ToUAVID converts a global object identifier back to a UAV identifier.
// The second return value is false for identifiers outside the UAV namespace.
func ToUAVID(globalID string) (string, bool) {
	if !strings.HasPrefix(globalID, prefix) {
		return "", false
	}
	id := globalID[len(prefix):]
	if id == "" {
		return "", false
	}
	return id, true
}

// IsUAV reports whether a global object identifier names a UAV.
func IsUAV(globalID string) bool {
	_, ok := ToUAVID(globalID)
	return ok
}

// FilterUAVIDs converts a list of global identifiers to UAV identifiers,
// silently skipping entries from other namespaces.
func FilterUAVIDs(globalIDs []string) []string {
	out := make([]string, 0, len(globalIDs))
	for _, g := range globalIDs {
		if id, ok := ToUAVID(g); ok {
			out = append(out, id)
		}
	}
	return out
}
