package trend

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/wonny/storepulse/backend/internal/contracts"
)

func scoredAt(storeID string, ts time.Time, percentage int, earned float64) contracts.ScoredSubmission {
	return contracts.ScoredSubmission{
		StoreID:     storeID,
		SubmittedAt: ts,
		Overall: contracts.OverallScore{
			Earned:     earned,
			Max:        100,
			Percentage: percentage,
		},
	}
}

func TestAggregate_SameMonthSameBucket(t *testing.T) {
	a := NewAggregator(nil)

	scored := []contracts.ScoredSubmission{
		scoredAt("S1", time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC), 80, 40),
		scoredAt("S1", time.Date(2024, 1, 28, 17, 0, 0, 0, time.UTC), 90, 45),
	}

	buckets, err := a.Aggregate(context.Background(), scored, Options{})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if len(buckets) != 1 {
		t.Fatalf("buckets = %d, want 1", len(buckets))
	}
	b := buckets[0]
	if b.Period != "2024-01" || b.StoreID != "S1" {
		t.Errorf("bucket key = (%s, %s)", b.StoreID, b.Period)
	}
	if b.SubmissionCount != 2 {
		t.Errorf("count = %d, want 2", b.SubmissionCount)
	}
	if b.AvgPercentage != 85 {
		t.Errorf("avg percentage = %v, want 85", b.AvgPercentage)
	}
	if b.AvgScore != 42.5 {
		t.Errorf("avg score = %v, want 42.5", b.AvgScore)
	}
}

func TestAggregate_SingleSubmissionBucket(t *testing.T) {
	a := NewAggregator(nil)

	buckets, err := a.Aggregate(context.Background(), []contracts.ScoredSubmission{
		scoredAt("S1", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), 70, 35),
	}, Options{})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if len(buckets) != 1 || buckets[0].SubmissionCount != 1 {
		t.Fatalf("single submission must still yield a valid bucket: %+v", buckets)
	}
}

func TestAggregate_DeterministicOrdering(t *testing.T) {
	a := NewAggregator(nil)

	scored := []contracts.ScoredSubmission{
		scoredAt("S2", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), 60, 30),
		scoredAt("S1", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 70, 35),
		scoredAt("S1", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), 80, 40),
		scoredAt("S3", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 90, 45),
	}

	buckets, err := a.Aggregate(context.Background(), scored, Options{})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	// Period descending, then store id ascending.
	wantOrder := []struct{ period, store string }{
		{"2024-02", "S1"},
		{"2024-02", "S3"},
		{"2024-01", "S1"},
		{"2024-01", "S2"},
	}
	for i, w := range wantOrder {
		if buckets[i].Period != w.period || buckets[i].StoreID != w.store {
			t.Errorf("buckets[%d] = (%s, %s), want (%s, %s)",
				i, buckets[i].StoreID, buckets[i].Period, w.store, w.period)
		}
	}

	// Idempotence: identical inputs, identical output.
	again, err := a.Aggregate(context.Background(), scored, Options{})
	if err != nil {
		t.Fatalf("second Aggregate failed: %v", err)
	}
	if !reflect.DeepEqual(buckets, again) {
		t.Error("repeated aggregation produced different output")
	}
}

func TestAggregate_ExcludePeriods(t *testing.T) {
	a := NewAggregator(nil)

	scored := []contracts.ScoredSubmission{
		scoredAt("S1", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), 80, 40),
		scoredAt("S1", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 90, 45),
	}

	buckets, err := a.Aggregate(context.Background(), scored, Options{
		ExcludePeriods: map[string]bool{"2024-01": true},
	})
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}

	if len(buckets) != 1 || buckets[0].Period != "2024-02" {
		t.Fatalf("excluded period leaked into output: %+v", buckets)
	}
}

func TestAggregate_CancelledReturnsNothing(t *testing.T) {
	a := NewAggregator(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scored := []contracts.ScoredSubmission{
		scoredAt("S1", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), 80, 40),
	}

	buckets, err := a.Aggregate(ctx, scored, Options{})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if buckets != nil {
		t.Errorf("cancelled call returned a partial aggregate: %+v", buckets)
	}
}
