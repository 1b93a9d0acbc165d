package delta

import (
	"math"
	"testing"

	"github.com/wonny/storepulse/backend/internal/contracts"
)

func in(store string, prev, cur float64) Input {
	return Input{StoreID: store, StoreName: store + " branch", Previous: &prev, Current: &cur}
}

func TestRank_MonthOverMonth(t *testing.T) {
	c := NewCalculator()

	// 70 -> 90 is +28.57%.
	movers := c.Rank([]Input{in("S2", 70, 90)})

	if len(movers.Gainers) != 1 {
		t.Fatalf("gainers = %d, want 1", len(movers.Gainers))
	}
	got := movers.Gainers[0].DeltaPct
	if math.Abs(got-28.57) > 0.01 {
		t.Errorf("delta = %.4f, want ~28.57", got)
	}
}

func TestRank_Ordering(t *testing.T) {
	c := NewCalculator()

	movers := c.Rank([]Input{
		in("S1", 50, 60),  // +20%
		in("S2", 80, 40),  // -50%
		in("S3", 100, 95), // -5%
		in("S4", 10, 15),  // +50%
	})

	if g := movers.Gainers; g[0].StoreID != "S4" || g[1].StoreID != "S1" {
		t.Errorf("gainers head = %s, %s; want S4, S1", g[0].StoreID, g[1].StoreID)
	}
	if d := movers.Decliners; d[0].StoreID != "S2" || d[1].StoreID != "S3" {
		t.Errorf("decliners head = %s, %s; want S2, S3", d[0].StoreID, d[1].StoreID)
	}
}

func TestRank_ZeroPreviousExcluded(t *testing.T) {
	c := NewCalculator()

	movers := c.Rank([]Input{
		in("S1", 0, 80), // previous 0: excluded, not Inf
		in("S2", 40, 80),
	})

	if len(movers.Gainers) != 1 || movers.Gainers[0].StoreID != "S2" {
		t.Fatalf("zero-previous store leaked into ranking: %+v", movers.Gainers)
	}
	for _, e := range append(movers.Gainers, movers.Decliners...) {
		if math.IsNaN(e.DeltaPct) || math.IsInf(e.DeltaPct, 0) {
			t.Errorf("non-finite delta in output: %+v", e)
		}
	}
}

func TestRank_MissingSideExcluded(t *testing.T) {
	c := NewCalculator()

	cur := 80.0
	movers := c.Rank([]Input{
		{StoreID: "S1", Current: &cur},               // no previous value
		{StoreID: "S2", Previous: &cur},              // no current value
		{StoreID: "S3", Previous: &cur, Current: &cur}, // flat, included
	})

	if len(movers.Gainers) != 1 || movers.Gainers[0].StoreID != "S3" {
		t.Fatalf("stores without both values must be excluded: %+v", movers.Gainers)
	}
	if movers.Gainers[0].DeltaPct != 0 {
		t.Errorf("flat store delta = %v, want 0", movers.Gainers[0].DeltaPct)
	}
}

func TestTopN(t *testing.T) {
	m := contracts.Movers{
		Gainers:   make([]contracts.DeltaEntry, 8),
		Decliners: make([]contracts.DeltaEntry, 3),
	}

	top := TopN(m, 5)
	if len(top.Gainers) != 5 {
		t.Errorf("gainers = %d, want 5", len(top.Gainers))
	}
	if len(top.Decliners) != 3 {
		t.Errorf("decliners = %d, want 3", len(top.Decliners))
	}
}
