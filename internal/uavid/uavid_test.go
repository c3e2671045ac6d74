package uavid

import (
	"reflect"
	"testing"
)

func TestGlobalIDRoundTrip(t *testing.T) {
	g := GlobalID("COLIBRI-17")
	if g != "uav:COLIBRI-17" {
		t.Fatalf("unexpected global id %q", g)
	}
	id, ok := ToUAVID(g)
	if !ok || id != "COLIBRI-17" {
		t.Fatalf("round trip failed: %q %v", id, ok)
	}
}

func TestToUAVIDRejectsOtherNamespaces(t *testing.T) {
	for _, g := range []string{"zone:alpha", "COLIBRI-17", "uav:", ""} {
		if _, ok := ToUAVID(g); ok {
			t.Errorf("expected %q to be rejected", g)
		}
		if IsUAV(g) {
			t.Errorf("IsUAV(%q) = true", g)
		}
	}
}

func TestFilterUAVIDs(t *testing.T) {
	got := FilterUAVIDs([]string{"uav:a", "zone:z", "uav:b", "junk"})
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
