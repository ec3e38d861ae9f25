package model

import (
	"time"

	"github.com/google/uuid"
)

// RunRecord captures one aggregation run for the history database.
type RunRecord struct {
	// ID is a random UUID assigned when the run starts.
	ID string

	// StartedAt is when input processing began.
	StartedAt time.Time

	// FinishedAt is when the output document was assembled.
	FinishedAt time.Time

	// TokenCount is the model token count of the final document.
	TokenCount int

	// Sources lists the per-input outcomes in processing order.
	Sources []SourceRecord

	// ProcessedURLs is the union of all crawl-visited URLs in the run,
	// in processing order.
	ProcessedURLs []string
}

// NewRunRecord creates a run record with a fresh ID and the start time set.
func NewRunRecord() *RunRecord {
	return &RunRecord{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// AddSource appends one input outcome, assigning its position.
func (r *RunRecord) AddSource(input string, kind SourceKind, errText string) {
	r.Sources = append(r.Sources, SourceRecord{
		Position: len(r.Sources),
		Input:    input,
		Kind:     kind,
		Err:      errText,
	})
}

// FailedSources counts inputs that degraded to an error block.
func (r *RunRecord) FailedSources() int {
	n := 0
	for _, s := range r.Sources {
		if s.Err != "" {
			n++
		}
	}
	return n
}

// Duration is the wall-clock time of the run. Zero until finished.
func (r *RunRecord) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
