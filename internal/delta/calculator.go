package delta

import (
	"sort"

	"github.com/wonny/storepulse/backend/internal/contracts"
)

// Input is one store's previous- and current-period values, as resolved by
// two point-in-time queries.
type Input struct {
	StoreID   string
	StoreName string
	Previous  *float64
	Current   *float64
}

// Calculator ranks stores by period-over-period percentage change.
// ⭐ SSOT: MoM 델타 계산은 여기서만
type Calculator struct{}

// NewCalculator creates a delta calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// Rank computes deltas for every store that has both a previous and a
// current value. A store whose previous value is 0 is excluded outright —
// the output never contains NaN or Inf. Gainers are sorted by delta
// descending, decliners ascending; ties fall back to store id for
// deterministic output.
func (c *Calculator) Rank(inputs []Input) contracts.Movers {
	entries := make([]contracts.DeltaEntry, 0, len(inputs))

	for _, in := range inputs {
		if in.Previous == nil || in.Current == nil {
			continue
		}
		// Divide-by-zero guard: no delta is better than an infinite one.
		if *in.Previous == 0 {
			continue
		}

		entries = append(entries, contracts.DeltaEntry{
			StoreID:       in.StoreID,
			StoreName:     in.StoreName,
			PreviousValue: *in.Previous,
			CurrentValue:  *in.Current,
			DeltaPct:      (*in.Current - *in.Previous) / *in.Previous * 100,
		})
	}

	gainers := make([]contracts.DeltaEntry, len(entries))
	copy(gainers, entries)
	sort.SliceStable(gainers, func(i, j int) bool {
		if gainers[i].DeltaPct != gainers[j].DeltaPct {
			return gainers[i].DeltaPct > gainers[j].DeltaPct
		}
		return gainers[i].StoreID < gainers[j].StoreID
	})

	decliners := make([]contracts.DeltaEntry, len(entries))
	copy(decliners, entries)
	sort.SliceStable(decliners, func(i, j int) bool {
		if decliners[i].DeltaPct != decliners[j].DeltaPct {
			return decliners[i].DeltaPct < decliners[j].DeltaPct
		}
		return decliners[i].StoreID < decliners[j].StoreID
	})

	return contracts.Movers{Gainers: gainers, Decliners: decliners}
}

// TopN trims both sides of the ranking to at most n entries (the dashboard
// shows 5).
func TopN(m contracts.Movers, n int) contracts.Movers {
	if len(m.Gainers) > n {
		m.Gainers = m.Gainers[:n]
	}
	if len(m.Decliners) > n {
		m.Decliners = m.Decliners[:n]
	}
	return m
}
