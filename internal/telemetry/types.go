// Telemetry structs shared by the feed, the store, and the archivers.
package telemetry

import (
	"os"
	"time"
)

// TelemetryRow represents one telemetry record received from the fleet.
type TelemetryRow struct {
	UAVID      string    `json:"uav_id"`      // TAG
	Lat        float64   `json:"lat"`         // FIELD
	Lon        float64   `json:"lon"`         // FIELD
	Alt        float64   `json:"alt"`         // FIELD
	Battery    float64   `json:"battery"`     // FIELD
	HeadingDeg float64   `json:"heading_deg"` // FIELD
	Status     string    `json:"status"`      // FIELD
	Timestamp  time.Time `json:"ts"`          // TIME INDEX
}

// TelemetryTableName holds the table name used when archiving to GreptimeDB.
// It defaults to "uav_telemetry" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var TelemetryTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "uav_telemetry"
}()

func (TelemetryRow) TableName() string {
	return TelemetryTableName
}

// Position holds latitude, longitude, and altitude.
type Position struct {
	Lat float64
	Lon float64
	Alt float64
}

// UAV status constants as reported by the fleet.
const (
	StatusOK         = "ok"
	StatusLowBattery = "low_battery"
	StatusFailure    = "failed"
)
