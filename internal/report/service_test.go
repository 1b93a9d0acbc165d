package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/storepulse/backend/internal/contracts"
	"github.com/wonny/storepulse/backend/internal/rubricconfig"
	"github.com/wonny/storepulse/backend/pkg/config"
	"github.com/wonny/storepulse/backend/pkg/logger"
)

func testDocument() *rubricconfig.Document {
	return &rubricconfig.Document{
		Rubric: contracts.Rubric{
			ID:      "store_audit",
			Version: "test",
			Sections: []contracts.Section{
				{
					ID:    "ops",
					Title: "Operations",
					Questions: []contracts.Question{
						{ID: "clean", Title: "Store is clean", Type: contracts.QuestionBinary, Weight: 1},
					},
				},
			},
		},
		Aliases: contracts.AliasTable{
			"store_id":     {"Shop_ID"},
			"submitted_at": {"Audit_Date"},
		},
	}
}

func testService(t *testing.T) *Service {
	t.Helper()
	log := logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
	svc, err := NewService(testDocument(), nil, log)
	require.NoError(t, err)
	return svc
}

func record(storeID, date, clean string) contracts.RawRecord {
	return contracts.RawRecord{Fields: map[string]interface{}{
		"store_id":     storeID,
		"submitted_at": date,
		"clean":        clean,
	}}
}

func TestBuildReportEndToEnd(t *testing.T) {
	svc := testService(t)

	records := []contracts.RawRecord{
		record("store-001", "2025-04-20", "yes"),
		record("store-001", "2025-05-10", "no"),
		record("store-002", "2025-05-05", "yes"),
		{Fields: map[string]interface{}{"submitted_at": "2025-05-06", "clean": "yes"}}, // no store id
	}

	cutoff := time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC)
	rep, err := svc.BuildReport(context.Background(), records, cutoff)
	require.NoError(t, err)

	assert.Equal(t, 3, rep.ProcessedCount)
	assert.Equal(t, 1, rep.RejectedCount)
	assert.Equal(t, "1 of 4 records could not be parsed", rep.RejectionMessage())
	require.Len(t, rep.Rejected, 1)
	assert.Equal(t, 3, rep.Rejected[0].Index)

	// Buckets sorted period desc, then store asc.
	require.Len(t, rep.Buckets, 3)
	assert.Equal(t, "2025-05", rep.Buckets[0].Period)
	assert.Equal(t, "store-001", rep.Buckets[0].StoreID)
	assert.Equal(t, 0.0, rep.Buckets[0].AvgPercentage)
	assert.Equal(t, "store-002", rep.Buckets[1].StoreID)
	assert.Equal(t, 100.0, rep.Buckets[1].AvgPercentage)
	assert.Equal(t, "2025-04", rep.Buckets[2].Period)

	// store-001 went 100 -> 0; store-002 has no April value and is excluded.
	require.Len(t, rep.Movers.Decliners, 1)
	d := rep.Movers.Decliners[0]
	assert.Equal(t, "store-001", d.StoreID)
	assert.Equal(t, 100.0, d.PreviousValue)
	assert.Equal(t, 0.0, d.CurrentValue)
	assert.Equal(t, -100.0, d.DeltaPct)
	assert.Empty(t, rep.Movers.Gainers)
}

func TestBuildReportDeterministic(t *testing.T) {
	svc := testService(t)

	records := []contracts.RawRecord{
		record("store-002", "2025-05-05", "yes"),
		record("store-001", "2025-05-10", "no"),
		record("store-001", "2025-04-20", "yes"),
	}

	cutoff := time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC)

	first, err := svc.BuildReport(context.Background(), records, cutoff)
	require.NoError(t, err)
	second, err := svc.BuildReport(context.Background(), records, cutoff)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildReportEmptyBatch(t *testing.T) {
	svc := testService(t)

	rep, err := svc.BuildReport(context.Background(), nil, time.Now().UTC())
	require.NoError(t, err)

	assert.Equal(t, 0, rep.ProcessedCount)
	assert.Equal(t, 0, rep.RejectedCount)
	assert.Empty(t, rep.Buckets)
	assert.Empty(t, rep.Movers.Gainers)
	assert.Empty(t, rep.Movers.Decliners)
	assert.Equal(t, "", rep.RejectionMessage())
}

func TestFingerprintStability(t *testing.T) {
	a := []contracts.RawRecord{record("store-001", "2025-05-10", "yes")}
	b := []contracts.RawRecord{record("store-001", "2025-05-10", "yes")}
	c := []contracts.RawRecord{record("store-001", "2025-05-10", "no")}

	fa, err := Fingerprint(a)
	require.NoError(t, err)
	fb, err := Fingerprint(b)
	require.NoError(t, err)
	fc, err := Fingerprint(c)
	require.NoError(t, err)

	assert.Equal(t, fa, fb)
	assert.NotEqual(t, fa, fc)
	assert.Len(t, fa, 64)
}

func TestObservationsPreserveOrder(t *testing.T) {
	ts := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	scored := []contracts.ScoredSubmission{
		{StoreID: "store-001", SubmittedAt: ts, Overall: contracts.OverallScore{Percentage: 80}},
		{StoreID: "store-001", SubmittedAt: ts, Overall: contracts.OverallScore{Percentage: 90}},
	}

	obs := Observations(scored)
	require.Len(t, obs, 2)
	assert.Equal(t, 80.0, obs[0].Value)
	assert.Equal(t, 90.0, obs[1].Value)
}
