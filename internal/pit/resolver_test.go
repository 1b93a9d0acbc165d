package pit

import (
	"testing"
	"time"

	"github.com/wonny/storepulse/backend/internal/contracts"
)

func obs(store string, ts time.Time, value float64) contracts.Observation {
	return contracts.Observation{StoreID: store, Timestamp: ts, Value: value}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestLatestAsOf(t *testing.T) {
	r := NewResolver()

	observations := []contracts.Observation{
		obs("S1", day(2024, 1, 5), 70),
		obs("S1", day(2024, 2, 10), 80),
		obs("S2", day(2024, 2, 15), 55),
		obs("S1", day(2024, 3, 1), 90),
	}

	tests := []struct {
		name    string
		store   string
		cutoff  time.Time
		want    *float64
		wantTS  time.Time
	}{
		{"latest within cutoff", "S1", day(2024, 2, 28), f(80), day(2024, 2, 10)},
		{"cutoff after everything", "S1", day(2024, 12, 31), f(90), day(2024, 3, 1)},
		{"cutoff exactly on observation", "S1", day(2024, 2, 10), f(80), day(2024, 2, 10)},
		{"cutoff before first observation", "S1", day(2023, 12, 31), nil, time.Time{}},
		{"unknown store", "S9", day(2024, 12, 31), nil, time.Time{}},
		{"other store unaffected", "S2", day(2024, 2, 28), f(55), day(2024, 2, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.LatestAsOf(observations, tt.store, tt.cutoff)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("want nil, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("want value, got nil")
			}
			if got.Value != *tt.want {
				t.Errorf("value = %v, want %v", got.Value, *tt.want)
			}
			if !got.SourceTimestamp.Equal(tt.wantTS) {
				t.Errorf("source timestamp = %v, want %v", got.SourceTimestamp, tt.wantTS)
			}
			if !got.Cutoff.Equal(tt.cutoff) {
				t.Errorf("cutoff = %v, want %v", got.Cutoff, tt.cutoff)
			}
		})
	}
}

// Equal timestamps: the later-ingested observation wins.
func TestLatestAsOf_TieBreaksByIngestionOrder(t *testing.T) {
	r := NewResolver()

	ts := day(2024, 1, 5)
	observations := []contracts.Observation{
		obs("S1", ts, 70),
		obs("S1", ts, 75),
	}

	got := r.LatestAsOf(observations, "S1", day(2024, 1, 31))
	if got == nil || got.Value != 75 {
		t.Fatalf("got %+v, want later-ingested value 75", got)
	}
}

func TestPreviousMonthEnd(t *testing.T) {
	tests := []struct {
		cutoff time.Time
		want   time.Time
	}{
		{
			time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
			time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
		{
			// Year boundary.
			time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond),
		},
	}

	for _, tt := range tests {
		got := PreviousMonthEnd(tt.cutoff)
		if !got.Equal(tt.want) {
			t.Errorf("PreviousMonthEnd(%v) = %v, want %v", tt.cutoff, got, tt.want)
		}
		if !got.Before(time.Date(tt.cutoff.Year(), tt.cutoff.Month(), 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("PreviousMonthEnd(%v) = %v leaks into the cutoff month", tt.cutoff, got)
		}
	}
}

func TestStoreIDs(t *testing.T) {
	observations := []contracts.Observation{
		obs("S2", day(2024, 1, 1), 1),
		obs("S1", day(2024, 1, 2), 2),
		obs("S2", day(2024, 1, 3), 3),
	}

	ids := StoreIDs(observations)
	if len(ids) != 2 || ids[0] != "S2" || ids[1] != "S1" {
		t.Errorf("StoreIDs = %v, want [S2 S1]", ids)
	}
}

func f(v float64) *float64 { return &v }
