package trend

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/wonny/storepulse/backend/internal/contracts"
	"github.com/wonny/storepulse/backend/pkg/logger"
)

// Options controls aggregation. ExcludePeriods lists caller-supplied
// "YYYY-MM" periods to drop entirely (a known bad-data month is the
// caller's call, never hard-coded here).
type Options struct {
	ExcludePeriods map[string]bool
}

// Aggregator buckets scored submissions by (store, calendar month).
// ⭐ SSOT: 월별 트렌드 집계는 여기서만
type Aggregator struct {
	logger *logger.Logger
}

// NewAggregator creates a new trend aggregator.
func NewAggregator(log *logger.Logger) *Aggregator {
	return &Aggregator{logger: log}
}

// Aggregate groups the scored submissions into monthly buckets. Output
// ordering is deterministic: period descending, then store id ascending —
// calling twice on identical input yields identical output.
//
// The context is checked between per-store groups; a cancelled call returns
// (nil, ctx.Err()) and never a partial aggregate mislabeled as complete.
func (a *Aggregator) Aggregate(ctx context.Context, scored []contracts.ScoredSubmission, opts Options) ([]contracts.MonthlyBucket, error) {
	type key struct {
		storeID string
		period  string
	}
	type group struct {
		sumPercentage float64
		sumScore      float64
		count         int
	}

	groups := make(map[key]*group)
	order := make([]key, 0)

	for _, s := range scored {
		period := s.SubmittedAt.UTC().Format("2006-01")
		if opts.ExcludePeriods[period] {
			continue
		}

		k := key{storeID: s.StoreID, period: period}
		g, ok := groups[k]
		if !ok {
			g = &group{}
			groups[k] = g
			order = append(order, k)
		}
		g.sumPercentage += float64(s.Overall.Percentage)
		g.sumScore += s.Overall.Earned
		g.count++
	}

	buckets := make([]contracts.MonthlyBucket, 0, len(groups))
	for _, k := range order {
		// Cancellation checkpoint between per-store groups.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("aggregate cancelled: %w", err)
		}

		g := groups[k]
		buckets = append(buckets, contracts.MonthlyBucket{
			StoreID:         k.storeID,
			Period:          k.period,
			AvgPercentage:   round2(g.sumPercentage / float64(g.count)),
			AvgScore:        round2(g.sumScore / float64(g.count)),
			SubmissionCount: g.count,
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Period != buckets[j].Period {
			return buckets[i].Period > buckets[j].Period
		}
		return buckets[i].StoreID < buckets[j].StoreID
	})

	if a.logger != nil {
		a.logger.WithFields(map[string]interface{}{
			"submissions": len(scored),
			"buckets":     len(buckets),
		}).Debug("Trend aggregation completed")
	}

	return buckets, nil
}

// round2 rounds to two decimal places, the precision the dashboard renders.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
