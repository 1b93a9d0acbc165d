package contracts

import "fmt"

// QuestionType identifies how a question's answer is scored.
type QuestionType string

const (
	// QuestionBinary is a yes/no question worth a fixed weight.
	QuestionBinary QuestionType = "binary"

	// QuestionScoredChoice is a single choice from a scored choice table.
	QuestionScoredChoice QuestionType = "scored_choice"

	// QuestionNumericInput is a free numeric entry capped at MaxScore.
	QuestionNumericInput QuestionType = "numeric_input"

	// QuestionCompositeSubscore is a pre-computed subscore recorded as-is.
	QuestionCompositeSubscore QuestionType = "composite_subscore"
)

// Choice is one entry of a ScoredChoice question's choice table.
type Choice struct {
	Label string  `json:"label" yaml:"label"`
	Score float64 `json:"score" yaml:"score"`
}

// Question is a single checklist item inside a section.
// ⭐ SSOT: 문항 가중치/배점 정의는 여기서만 (중복 점수표 금지)
type Question struct {
	ID    string       `json:"id" yaml:"id"`
	Title string       `json:"title" yaml:"title"`
	Type  QuestionType `json:"type" yaml:"type"`

	// Choices is required for scored_choice questions.
	Choices []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`

	// MaxScore caps numeric_input and composite_subscore answers (commonly 10).
	MaxScore float64 `json:"max_score,omitempty" yaml:"max_score,omitempty"`

	// Weight is the credit for a positive binary answer. Zero means 1.
	Weight float64 `json:"weight,omitempty" yaml:"weight,omitempty"`

	// NegativeWeight, when set on a binary question, is the credit earned by
	// an explicit "no" (reversed question).
	NegativeWeight float64 `json:"negative_weight,omitempty" yaml:"negative_weight,omitempty"`
}

// Section groups ordered questions under one checklist heading.
type Section struct {
	ID        string     `json:"id" yaml:"id"`
	Title     string     `json:"title" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// Rubric is the versioned checklist definition a submission is scored
// against. It is immutable for the duration of a computation; callers may
// hand a freshly loaded rubric to every call.
type Rubric struct {
	ID       string    `json:"id" yaml:"id"`
	Version  string    `json:"version" yaml:"version"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// BinaryWeight returns the effective weight of a binary question.
func (q *Question) BinaryWeight() float64 {
	if q.Weight > 0 {
		return q.Weight
	}
	return 1
}

// MaxAttainable returns the denominator contribution of an applicable,
// answered-or-skipped question.
func (q *Question) MaxAttainable() float64 {
	switch q.Type {
	case QuestionBinary:
		return q.BinaryWeight()
	case QuestionScoredChoice:
		max := 0.0
		for _, c := range q.Choices {
			if c.Score > max {
				max = c.Score
			}
		}
		return max
	case QuestionNumericInput, QuestionCompositeSubscore:
		return q.MaxScore
	default:
		return 0
	}
}

// Validate checks the rubric for structural defects. Any defect is fatal:
// nothing meaningful can be scored against a broken rubric.
func (r *Rubric) Validate() error {
	if r == nil || len(r.Sections) == 0 {
		return fmt.Errorf("%w: no sections", ErrInvalidRubric)
	}

	seen := make(map[string]bool)
	questions := 0

	for _, s := range r.Sections {
		if s.ID == "" {
			return fmt.Errorf("%w: section with empty id", ErrInvalidRubric)
		}
		for _, q := range s.Questions {
			questions++
			if q.ID == "" {
				return fmt.Errorf("%w: question with empty id in section %q", ErrInvalidRubric, s.ID)
			}
			if seen[q.ID] {
				return fmt.Errorf("%w: duplicate question id %q", ErrInvalidRubric, q.ID)
			}
			seen[q.ID] = true

			switch q.Type {
			case QuestionBinary:
				// weight defaults to 1, nothing to check
			case QuestionScoredChoice:
				if len(q.Choices) == 0 {
					return fmt.Errorf("%w: question %q has no choices", ErrInvalidRubric, q.ID)
				}
				if q.MaxAttainable() <= 0 {
					return fmt.Errorf("%w: question %q has no positive choice score", ErrInvalidRubric, q.ID)
				}
			case QuestionNumericInput, QuestionCompositeSubscore:
				if q.MaxScore <= 0 {
					return fmt.Errorf("%w: question %q requires max_score > 0", ErrInvalidRubric, q.ID)
				}
			default:
				return fmt.Errorf("%w: question %q has unknown type %q", ErrInvalidRubric, q.ID, q.Type)
			}
		}
	}

	if questions == 0 {
		return fmt.Errorf("%w: no questions", ErrInvalidRubric)
	}

	return nil
}
