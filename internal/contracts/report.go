package contracts

import (
	"fmt"
	"time"
)

// MonthlyBucket is the aggregated statistics for one store in one calendar
// month. Exactly one bucket exists per distinct (store, period) pair.
type MonthlyBucket struct {
	StoreID         string  `json:"store_id"`
	Period          string  `json:"period"` // "YYYY-MM"
	AvgPercentage   float64 `json:"avg_percentage"`
	AvgScore        float64 `json:"avg_score"`
	SubmissionCount int     `json:"submission_count"`
}

// Observation is one timestamped metric value for a store, in ingestion
// order within its source slice.
type Observation struct {
	StoreID   string    `json:"store_id"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// LatestValue is the most recent observation for a store at or before the
// cutoff instant.
type LatestValue struct {
	StoreID         string    `json:"store_id"`
	Cutoff          time.Time `json:"cutoff"`
	Value           float64   `json:"value"`
	SourceTimestamp time.Time `json:"source_timestamp"`
}

// DeltaEntry is one store's period-over-period percentage change.
type DeltaEntry struct {
	StoreID       string  `json:"store_id"`
	StoreName     string  `json:"store_name"`
	PreviousValue float64 `json:"previous_value"`
	CurrentValue  float64 `json:"current_value"`
	DeltaPct      float64 `json:"delta_pct"`
}

// Movers holds ranked period-over-period movement. Gainers are sorted by
// delta descending, decliners ascending; the caller selects top-N.
type Movers struct {
	Gainers   []DeltaEntry `json:"gainers"`
	Decliners []DeltaEntry `json:"decliners"`
}

// RejectedRecord identifies a raw record excluded during normalization.
type RejectedRecord struct {
	Index  int    `json:"index"` // position in the input batch
	Reason string `json:"reason"`
}

// BatchReport is the full derived output for one batch of raw records.
// Partial-success semantics: rejected records never block the ones that
// normalized cleanly.
type BatchReport struct {
	Scored   []ScoredSubmission `json:"scored"`
	Buckets  []MonthlyBucket    `json:"buckets"`
	Movers   Movers             `json:"movers"`
	Rejected []RejectedRecord   `json:"rejected"`

	ProcessedCount int `json:"processed_count"`
	RejectedCount  int `json:"rejected_count"`
}

// RejectionMessage renders the caller-visible partial-failure summary, or
// "" when every record parsed.
func (r *BatchReport) RejectionMessage() string {
	if r.RejectedCount == 0 {
		return ""
	}
	total := r.ProcessedCount + r.RejectedCount
	return fmt.Sprintf("%d of %d records could not be parsed", r.RejectedCount, total)
}
