package pit

import (
	"time"

	"github.com/wonny/storepulse/backend/internal/contracts"
)

// Resolver answers "what was store X's latest observed value at or before
// instant T". The cutoff is always an injected reference instant — there is
// deliberately no ambient-clock path here, so a back-test over last
// quarter's snapshot and a live dashboard query run the same code.
// ⭐ SSOT: as-of 조회는 여기서만
type Resolver struct{}

// NewResolver creates a point-in-time resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// LatestAsOf filters the observations to the given store and timestamp <=
// cutoff, and returns the one with the maximum timestamp. Ties are broken
// by ingestion order — the later element of the slice wins — so the result
// is deterministic. Nil when no observation qualifies: a cutoff earlier
// than the store's first observation is "no data", never a default.
func (r *Resolver) LatestAsOf(observations []contracts.Observation, storeID string, cutoff time.Time) *contracts.LatestValue {
	var best *contracts.Observation

	for i := range observations {
		o := &observations[i]
		if o.StoreID != storeID || o.Timestamp.After(cutoff) {
			continue
		}
		if best == nil || !o.Timestamp.Before(best.Timestamp) {
			best = o
		}
	}

	if best == nil {
		return nil
	}

	return &contracts.LatestValue{
		StoreID:         storeID,
		Cutoff:          cutoff,
		Value:           best.Value,
		SourceTimestamp: best.Timestamp,
	}
}

// StoreIDs returns the distinct store ids present in the observations, in
// first-seen order.
func StoreIDs(observations []contracts.Observation) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, o := range observations {
		if !seen[o.StoreID] {
			seen[o.StoreID] = true
			ids = append(ids, o.StoreID)
		}
	}
	return ids
}

// PreviousMonthEnd returns the last instant of the calendar month preceding
// cutoff's month, in cutoff's location. Calling LatestAsOf once with the
// cutoff and once with this value yields the current-vs-previous-period
// pair at submission granularity, without bucket-boundary artifacts.
func PreviousMonthEnd(cutoff time.Time) time.Time {
	firstOfMonth := time.Date(cutoff.Year(), cutoff.Month(), 1, 0, 0, 0, 0, cutoff.Location())
	return firstOfMonth.Add(-time.Nanosecond)
}
