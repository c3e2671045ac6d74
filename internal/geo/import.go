// Package geo imports operational zones from GeoJSON. Malformed input yields
// an error for the console to surface as a notification; nothing is applied
// partially.
package geo

import (
	"fmt"
	"math"
	"os"

	jsoniter "github.com/json-iterator/go"

	"droneops-console/internal/config"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultRadiusKM = 1.0

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string     `json:"type"`
	Properties properties `json:"properties"`
	Geometry   geometry   `json:"geometry"`
}

type properties struct {
	Name     string  `json:"name"`
	RadiusKM float64 `json:"radius_km"`
}

type geometry struct {
	Type        string              `json:"type"`
	Coordinates jsoniter.RawMessage `json:"coordinates"`
}

// ImportZones parses a GeoJSON FeatureCollection into zones. Point features
// become circular zones using the radius_km property; Polygon features are
// reduced to their outer-ring centroid with a radius covering all vertices.
func ImportZones(data []byte) ([]config.Zone, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse GeoJSON: %w", err)
	}
	if fc.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected FeatureCollection, got %q", fc.Type)
	}

	zones := make([]config.Zone, 0, len(fc.Features))
	for i, f := range fc.Features {
		z, err := zoneFromFeature(f)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		if z.Name == "" {
			z.Name = fmt.Sprintf("zone-%d", i+1)
		}
		zones = append(zones, z)
	}
	return zones, nil
}

// ImportZonesFile reads and parses a GeoJSON file.
func ImportZonesFile(path string) ([]config.Zone, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ImportZones(data)
}

func zoneFromFeature(f feature) (config.Zone, error) {
	switch f.Geometry.Type {
	case "Point":
		var coords []float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &coords); err != nil || len(coords) < 2 {
			return config.Zone{}, fmt.Errorf("invalid Point coordinates")
		}
		radius := f.Properties.RadiusKM
		if radius <= 0 {
			radius = defaultRadiusKM
		}
		return config.Zone{
			Name:      f.Properties.Name,
			CenterLat: coords[1],
			CenterLon: coords[0],
			RadiusKM:  radius,
		}, nil
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(f.Geometry.Coordinates, &rings); err != nil || len(rings) == 0 || len(rings[0]) < 3 {
			return config.Zone{}, fmt.Errorf("invalid Polygon coordinates")
		}
		return zoneFromRing(f.Properties.Name, rings[0])
	default:
		return config.Zone{}, fmt.Errorf("unsupported geometry %q", f.Geometry.Type)
	}
}

func zoneFromRing(name string, ring [][]float64) (config.Zone, error) {
	var sumLat, sumLon float64
	for _, pt := range ring {
		if len(pt) < 2 {
			return config.Zone{}, fmt.Errorf("invalid Polygon vertex")
		}
		sumLon += pt[0]
		sumLat += pt[1]
	}
	n := float64(len(ring))
	centerLat := sumLat / n
	centerLon := sumLon / n

	// Flat-earth radius covering every vertex; fine at zone scale.
	kmPerLat := 111.0
	kmPerLon := 111.0 * math.Cos(centerLat*math.Pi/180)
	var radius float64
	for _, pt := range ring {
		dLat := (pt[1] - centerLat) * kmPerLat
		dLon := (pt[0] - centerLon) * kmPerLon
		if d := math.Hypot(dLat, dLon); d > radius {
			radius = d
		}
	}
	if radius <= 0 {
		radius = defaultRadiusKM
	}
	return config.Zone{Name: name, CenterLat: centerLat, CenterLon: centerLon, RadiusKM: radius}, nil
}
