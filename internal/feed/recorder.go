package feed

import (
	"os"

	jsoniter "github.com/json-iterator/go"

	"droneops-console/internal/telemetry"
)

// FileRecorder archives telemetry rows to a JSONL file suitable for Replay.
type FileRecorder struct {
	file *os.File
	enc  *jsoniter.Encoder
}

// NewFileRecorder creates (truncating) the recording file.
func NewFileRecorder(path string) (*FileRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileRecorder{file: f, enc: json.NewEncoder(f)}, nil
}

// Archive appends one row to the recording.
func (r *FileRecorder) Archive(row telemetry.TelemetryRow) error {
	return r.enc.Encode(row)
}

// Close closes the recording file.
func (r *FileRecorder) Close() error {
	return r.file.Close()
}
