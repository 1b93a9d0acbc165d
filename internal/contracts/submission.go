package contracts

import "time"

// Reserved canonical field ids resolved through the alias table.
const (
	FieldStoreID     = "store_id"
	FieldSubmittedAt = "submitted_at"
	FieldRemarks     = "remarks"
	FieldPhotoRefs   = "photo_refs"
)

// RawRecord is one loosely structured checklist record as delivered by the
// submission feed. Field names drift across product history; the alias
// table maps canonical ids to every spelling that has been observed.
type RawRecord struct {
	Fields map[string]interface{} `json:"fields"`

	// Passthrough content the engine never interprets.
	Remarks   string   `json:"remarks,omitempty"`
	PhotoRefs []string `json:"photo_refs,omitempty"`
}

// Submission is a normalized checklist response.
// Invariant: StoreID is non-empty and SubmittedAt parsed successfully —
// records that fail either are rejected, never defaulted.
type Submission struct {
	StoreID     string                 `json:"store_id"`
	SubmittedAt time.Time              `json:"submitted_at"`
	Answers     map[string]interface{} `json:"answers"`

	Remarks   string   `json:"remarks,omitempty"`
	PhotoRefs []string `json:"photo_refs,omitempty"`
}

// QuestionScore is the scored outcome of one question.
// Invariant: Max >= Earned >= 0. An NA answer contributes (0, 0).
type QuestionScore struct {
	RawValue interface{} `json:"raw_value"`
	IsNA     bool        `json:"is_na"`
	Earned   float64     `json:"earned"`
	Max      float64     `json:"max"`
}

// SectionScore is the subtotal for one rubric section.
type SectionScore struct {
	Earned float64 `json:"earned"`
	Max    float64 `json:"max"`
}

// OverallScore is the submission total. Percentage is the integer-rounded
// ratio, 0 by convention when Max is 0 (all questions NA).
type OverallScore struct {
	Earned     float64 `json:"earned"`
	Max        float64 `json:"max"`
	Percentage int     `json:"percentage"`
}

// ScoredSubmission is a fully evaluated submission.
// ⭐ SSOT: 점수 계산 결과 타입은 여기서만 정의
type ScoredSubmission struct {
	StoreID     string    `json:"store_id"`
	SubmittedAt time.Time `json:"submitted_at"`

	PerQuestion map[string]QuestionScore `json:"per_question"`
	PerSection  map[string]SectionScore  `json:"per_section"`
	Overall     OverallScore             `json:"overall"`

	// AllNA flags a submission where every question was not applicable.
	// Percentage is 0 by convention; callers preferring "no data" can
	// branch on this instead.
	AllNA bool `json:"all_na"`
}

// AliasTable maps a canonical question or field id to the historical key
// spellings that have been used for it over the product's lifetime.
// ⭐ SSOT: 필드 별칭 해석은 이 타입에서만 (인라인 fallback 체인 금지)
type AliasTable map[string][]string

// Resolve looks up the canonical id in fields, trying the canonical
// spelling first and then each alias in declared order. Key comparison is
// case-insensitive and the first non-empty value wins.
func (a AliasTable) Resolve(fields map[string]interface{}, canonical string) (interface{}, bool) {
	candidates := make([]string, 0, 1+len(a[canonical]))
	candidates = append(candidates, canonical)
	candidates = append(candidates, a[canonical]...)

	for _, key := range candidates {
		if v, ok := lookupFold(fields, key); ok {
			return v, true
		}
	}
	return nil, false
}

// lookupFold finds a field by case-insensitive key match, skipping empty
// string values so a blank legacy column never shadows a populated one.
func lookupFold(fields map[string]interface{}, key string) (interface{}, bool) {
	if v, ok := fields[key]; ok && !isEmptyValue(v) {
		return v, true
	}
	for k, v := range fields {
		if equalFold(k, key) && !isEmptyValue(v) {
			return v, true
		}
	}
	return nil, false
}

func isEmptyValue(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// equalFold is ASCII case-insensitive comparison; legacy field names only
// ever used ASCII.
func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
