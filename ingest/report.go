package ingest

import (
	"time"

	"github.com/google/uuid"
)

// SourceStatus describes how one source's work unit terminated.
type SourceStatus string

const (
	// SourceSucceeded means the source completed its full fetch-to-persist pass.
	SourceSucceeded SourceStatus = "succeeded"
	// SourceFailed means the source's fetch failed after exhausting retries.
	SourceFailed SourceStatus = "failed"
	// SourceCancelled means the run was cancelled before the source finished.
	SourceCancelled SourceStatus = "cancelled"
)

// SourceOutcome aggregates the per-record results of one source in one run.
// An operator should be able to tell from the counts why a fetched record
// did not end up stored.
type SourceOutcome struct {
	SourceKey          string
	Status             SourceStatus
	Fetched            int
	Normalized         int
	Stored             int
	DuplicatesExact    int
	DuplicatesSemantic int
	Failed             int
	// FailureReason carries the terminal error text for failed sources.
	FailureReason string
}

// RunReport is the aggregated outcome of one full pipeline run.
type RunReport struct {
	RunId     uuid.UUID
	StartedAt time.Time
	Duration  time.Duration
	Sources   []SourceOutcome

	TotalFetched            int
	TotalStored             int
	TotalDuplicatesExact    int
	TotalDuplicatesSemantic int
	TotalFailed             int

	// AnalysisError records a downstream analysis failure. Analysis never
	// changes per-source outcomes.
	AnalysisError string
}

// newRunReport creates an empty report with a fresh run ID.
func newRunReport() *RunReport {
	return &RunReport{
		RunId:     uuid.New(),
		StartedAt: time.Now().UTC(),
	}
}

// add folds one source outcome into the report totals.
func (r *RunReport) add(outcome SourceOutcome) {
	r.Sources = append(r.Sources, outcome)
	r.TotalFetched += outcome.Fetched
	r.TotalStored += outcome.Stored
	r.TotalDuplicatesExact += outcome.DuplicatesExact
	r.TotalDuplicatesSemantic += outcome.DuplicatesSemantic
	r.TotalFailed += outcome.Failed
}
