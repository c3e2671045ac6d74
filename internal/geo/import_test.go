package geo

import (
	"math"
	"testing"
)

func TestImportPointZone(t *testing.T) {
	data := []byte(`{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature",
	     "properties": {"name": "alpha", "radius_km": 5},
	     "geometry": {"type": "Point", "coordinates": [16.4, 48.2]}}
	  ]
	}`)
	zones, err := ImportZones(data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(zones) != 1 {
		t.Fatalf("got %d zones", len(zones))
	}
	z := zones[0]
	if z.Name != "alpha" || z.CenterLat != 48.2 || z.CenterLon != 16.4 || z.RadiusKM != 5 {
		t.Fatalf("zone: %+v", z)
	}
}

func TestImportPolygonZone(t *testing.T) {
	data := []byte(`{
	  "type": "FeatureCollection",
	  "features": [
	    {"type": "Feature",
	     "properties": {},
	     "geometry": {"type": "Polygon", "coordinates": [[[16.0, 48.0], [16.2, 48.0], [16.2, 48.2], [16.0, 48.2]]]}}
	  ]
	}`)
	zones, err := ImportZones(data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	z := zones[0]
	if z.Name != "zone-1" {
		t.Fatalf("default name %q", z.Name)
	}
	if math.Abs(z.CenterLat-48.1) > 1e-9 || math.Abs(z.CenterLon-16.1) > 1e-9 {
		t.Fatalf("centroid (%f, %f)", z.CenterLat, z.CenterLon)
	}
	if z.RadiusKM <= 0 {
		t.Fatalf("radius %f", z.RadiusKM)
	}
}

func TestImportRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"invalid json":       `{not json`,
		"wrong type":         `{"type": "Feature"}`,
		"bad geometry":       `{"type": "FeatureCollection", "features": [{"geometry": {"type": "LineString", "coordinates": []}}]}`,
		"bad point coords":   `{"type": "FeatureCollection", "features": [{"geometry": {"type": "Point", "coordinates": [1]}}]}`,
		"bad polygon coords": `{"type": "FeatureCollection", "features": [{"geometry": {"type": "Polygon", "coordinates": [[[1,2]]]}}]}`,
	}
	for name, data := range cases {
		if _, err := ImportZones([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
