// Package feed ingests fleet telemetry into the console state store, from a
// live MQTT subscription or a recorded JSONL log, and optionally fans rows
// out to archivers.
package feed

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"droneops-console/internal/telemetry"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Sink receives decoded telemetry rows. The store implements this.
type Sink interface {
	ApplyTelemetry(telemetry.TelemetryRow)
}

// Archiver records telemetry rows passing through the feed.
type Archiver interface {
	Archive(telemetry.TelemetryRow) error
}

// DecodeRow parses one telemetry row from its JSON payload.
func DecodeRow(payload []byte) (telemetry.TelemetryRow, error) {
	var row telemetry.TelemetryRow
	if err := json.Unmarshal(payload, &row); err != nil {
		return telemetry.TelemetryRow{}, fmt.Errorf("decode telemetry row: %w", err)
	}
	if row.UAVID == "" {
		return telemetry.TelemetryRow{}, fmt.Errorf("telemetry row without uav_id")
	}
	return row, nil
}
