package rubricconfig

import (
	"errors"
	"testing"

	"github.com/wonny/storepulse/backend/internal/contracts"
)

const sampleYAML = `
rubric:
  id: store_audit
  version: v3
  sections:
    - id: ops
      title: Operations
      questions:
        - id: q1
          title: Uniform worn
          type: binary
        - id: q2
          title: Cleanliness
          type: scored_choice
          choices:
            - {label: Excellent, score: 5}
            - {label: Good, score: 3}
            - {label: Poor, score: 1}
    - id: svc
      title: Service
      questions:
        - id: wait
          title: Wait time score
          type: numeric_input
          max_score: 10
aliases:
  store_id: [storeId, shop_id]
  submitted_at: [submittedAt, audit_date]
  q2: [cleanliness_rating]
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if doc.Rubric.ID != "store_audit" {
		t.Errorf("rubric id = %q, want store_audit", doc.Rubric.ID)
	}
	if len(doc.Rubric.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(doc.Rubric.Sections))
	}
	if got := doc.Rubric.Sections[0].Questions[1].Type; got != contracts.QuestionScoredChoice {
		t.Errorf("q2 type = %q, want scored_choice", got)
	}
	if len(doc.Aliases["store_id"]) != 2 {
		t.Errorf("store_id aliases = %v", doc.Aliases["store_id"])
	}
}

func TestParse_UnknownFieldFails(t *testing.T) {
	bad := `
rubric:
  id: x
  version: v1
  sektions: []
`
	_, err := Parse([]byte(bad))
	if err == nil {
		t.Fatal("expected unknown-field error")
	}
}

func TestParse_StructuralDefectIsInvalidRubric(t *testing.T) {
	bad := `
rubric:
  id: x
  version: v1
  sections:
    - id: s1
      questions:
        - id: q1
          type: scored_choice
`
	_, err := Parse([]byte(bad))
	if !errors.Is(err, contracts.ErrInvalidRubric) {
		t.Fatalf("err = %v, want ErrInvalidRubric", err)
	}
}

func TestHash_Deterministic(t *testing.T) {
	doc, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	h1, err := Hash(doc)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64", len(h1))
	}

	h2, _ := Hash(doc)
	if h1 != h2 {
		t.Error("hash not deterministic")
	}

	// A weight change must change the hash.
	changed, _ := Parse([]byte(sampleYAML))
	changed.Rubric.Sections[0].Questions[0].Weight = 2
	h3, _ := Hash(changed)
	if h3 == h1 {
		t.Error("hash ignored a weight change")
	}
}
