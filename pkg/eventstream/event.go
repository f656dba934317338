package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeGraphBuilt is emitted after a neighbor graph build is persisted.
	EventTypeGraphBuilt = "folio.graph.built"
)

// GraphBuiltEvent is a transport-neutral event payload for a finished
// neighbor graph build.
type GraphBuiltEvent struct {
	SchemaVersion int            `json:"schema_version"`
	EventType     string         `json:"event_type"`
	EventID       string         `json:"event_id"`
	EmittedAt     time.Time      `json:"emitted_at"`
	Build         GraphBuildMeta `json:"build"`
}

// GraphBuildMeta describes one build.
type GraphBuildMeta struct {
	Language   string    `json:"language"`
	Threshold  float64   `json:"threshold"`
	Documents  int       `json:"documents"`
	Edges      int       `json:"edges"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}

// NewGraphBuiltEvent stamps meta with a fresh event id and the emit time.
func NewGraphBuiltEvent(meta GraphBuildMeta, now time.Time) *GraphBuiltEvent {
	return &GraphBuiltEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeGraphBuilt,
		EventID:       uuid.NewString(),
		EmittedAt:     now.UTC(),
		Build:         meta,
	}
}
