package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/wonny/storepulse/backend/internal/contracts"
	"github.com/wonny/storepulse/backend/pkg/logger"
)

// Evaluator scores one submission against a rubric.
// ⭐ SSOT: 채점 로직은 여기서만 — 리포트 렌더링/트렌드 집계가 각자
// 점수표를 재계산하지 않는다.
type Evaluator struct {
	logger *logger.Logger
}

// NewEvaluator creates a new score evaluator.
func NewEvaluator(log *logger.Logger) *Evaluator {
	return &Evaluator{logger: log}
}

// Evaluate produces a fully scored submission. It is a pure function of
// (rubric, aliases, submission): identical inputs always yield an identical
// result, and no input is mutated.
func (e *Evaluator) Evaluate(rubric *contracts.Rubric, aliases contracts.AliasTable, sub contracts.Submission) (*contracts.ScoredSubmission, error) {
	if err := rubric.Validate(); err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	scored := &contracts.ScoredSubmission{
		StoreID:     sub.StoreID,
		SubmittedAt: sub.SubmittedAt,
		PerQuestion: make(map[string]contracts.QuestionScore),
		PerSection:  make(map[string]contracts.SectionScore),
	}

	applicable := 0

	for _, section := range rubric.Sections {
		var sectionScore contracts.SectionScore

		for _, q := range section.Questions {
			qs := e.scoreQuestion(&q, aliases, sub.Answers)
			scored.PerQuestion[q.ID] = qs

			if !qs.IsNA {
				applicable++
			}

			sectionScore.Earned += qs.Earned
			sectionScore.Max += qs.Max
		}

		scored.PerSection[section.ID] = sectionScore
		scored.Overall.Earned += sectionScore.Earned
		scored.Overall.Max += sectionScore.Max
	}

	scored.AllNA = applicable == 0
	scored.Overall.Percentage = percentage(scored.Overall.Earned, scored.Overall.Max)

	if scored.AllNA && e.logger != nil {
		e.logger.WithFields(map[string]interface{}{
			"store_id":     sub.StoreID,
			"submitted_at": sub.SubmittedAt,
		}).Warn("Every question answered not-applicable, percentage defaults to 0")
	}

	return scored, nil
}

// scoreQuestion scores a single question in rubric-declared order:
// resolve the answer through the alias table, handle the NA policy, then
// dispatch on question type.
func (e *Evaluator) scoreQuestion(q *contracts.Question, aliases contracts.AliasTable, answers map[string]interface{}) contracts.QuestionScore {
	raw, found := aliases.Resolve(answers, q.ID)

	// Explicit NA: excluded from numerator and denominator.
	if found && isNotApplicable(raw) {
		return contracts.QuestionScore{RawValue: raw, IsNA: true}
	}

	max := q.MaxAttainable()

	// Missing or empty answer: zero credit, but the question still counts
	// against the denominator. Skipping an applicable question is penalized,
	// not excused.
	if !found {
		return contracts.QuestionScore{Max: max}
	}

	var earned float64
	switch q.Type {
	case contracts.QuestionBinary:
		earned = scoreBinary(q, raw)
	case contracts.QuestionScoredChoice:
		earned = scoreChoice(q, raw)
	case contracts.QuestionNumericInput, contracts.QuestionCompositeSubscore:
		earned = scoreNumeric(raw)
	}

	// Invariant: max >= earned >= 0 at every level.
	if earned < 0 {
		earned = 0
	}
	if earned > max {
		earned = max
	}

	return contracts.QuestionScore{RawValue: raw, Earned: earned, Max: max}
}

// scoreBinary awards the question weight for an affirmative answer. A
// reversed question (NegativeWeight configured) awards that credit for an
// explicit negative answer instead, and an affirmative earns nothing.
func scoreBinary(q *contracts.Question, raw interface{}) float64 {
	answer := strings.ToLower(strings.TrimSpace(valueToString(raw)))

	switch answer {
	case "yes", "true", "y":
		if q.NegativeWeight > 0 {
			return 0
		}
		return q.BinaryWeight()
	case "no", "false", "n":
		if q.NegativeWeight > 0 {
			return q.NegativeWeight
		}
	}
	return 0
}

// scoreChoice matches the answer against the choice table, case-insensitive
// exact match. No match earns 0.
func scoreChoice(q *contracts.Question, raw interface{}) float64 {
	answer := strings.TrimSpace(valueToString(raw))
	for _, c := range q.Choices {
		if strings.EqualFold(c.Label, answer) {
			return c.Score
		}
	}
	return 0
}

// scoreNumeric parses a numeric answer (or pre-computed subscore); an
// unparsable value earns 0.
func scoreNumeric(raw interface{}) float64 {
	v, ok := parseNumeric(raw)
	if !ok {
		return 0
	}
	return v
}

// naMarkers are the recognized not-applicable spellings after lowercasing
// and stripping punctuation and whitespace ("N/A", "n.a.", "Not Applicable").
var naMarkers = map[string]bool{
	"na":            true,
	"notapplicable": true,
}

// isNotApplicable reports whether the raw answer is an explicit NA marker.
func isNotApplicable(raw interface{}) bool {
	s, ok := raw.(string)
	if !ok {
		return false
	}

	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return naMarkers[b.String()]
}

// valueToString renders a raw feed value for text matching.
func valueToString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// parseNumeric extracts a float from the value types the feed delivers.
func parseNumeric(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// percentage is the integer-rounded score ratio; 0 by convention when max
// is 0 (all questions NA).
func percentage(earned, max float64) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(100 * earned / max))
}
