package scheduler

import (
	"testing"
	"time"
)

func TestJobHistoryKeepsLast100(t *testing.T) {
	h := &JobHistory{}

	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{JobName: "trend_refresh", Success: true, StartTime: time.Now()})
	}

	if len(h.Results) != 100 {
		t.Errorf("history length = %d, want 100", len(h.Results))
	}
}

func TestJobHistorySuccessRate(t *testing.T) {
	h := &JobHistory{}

	if got := h.GetSuccessRate(); got != 0.0 {
		t.Errorf("empty history success rate = %v, want 0", got)
	}

	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: true})
	h.AddResult(JobResult{Success: false})
	h.AddResult(JobResult{Success: true})

	if got := h.GetSuccessRate(); got != 0.75 {
		t.Errorf("success rate = %v, want 0.75", got)
	}
}

func TestJobHistoryLatestResults(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 5; i++ {
		h.AddResult(JobResult{JobName: "feed_ingest"})
	}

	if got := len(h.GetLatestResults(3)); got != 3 {
		t.Errorf("latest results = %d, want 3", got)
	}
	if got := len(h.GetLatestResults(10)); got != 5 {
		t.Errorf("latest results capped = %d, want 5", got)
	}
}
