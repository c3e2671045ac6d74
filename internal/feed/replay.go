package feed

import (
	"io"
	"os"
	"time"

	"droneops-console/internal/telemetry"
)

// Replay feeds recorded telemetry rows from r into the sink. A speed > 0
// replays the original timestamp gaps scaled by speed; speed <= 0 inserts no
// artificial delay. Archivers see every replayed row.
func Replay(r io.Reader, sink Sink, speed float64, archivers ...Archiver) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	// dec.More skips trailing whitespace; without it jsoniter reports a
	// parse error instead of io.EOF after the final newline.
	for dec.More() {
		var row telemetry.TelemetryRow
		if err := dec.Decode(&row); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if row.UAVID == "" {
			// Skip rows without an id; a partial recording should not
			// abort the whole replay.
			continue
		}
		if !prev.IsZero() && speed > 0 {
			diff := row.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		sink.ApplyTelemetry(row)
		for _, a := range archivers {
			_ = a.Archive(row)
		}
		prev = row.Timestamp
	}
	return nil
}

// ReplayFile opens a JSONL recording and replays its telemetry rows.
func ReplayFile(path string, sink Sink, speed float64, archivers ...Archiver) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Replay(f, sink, speed, archivers...)
}
