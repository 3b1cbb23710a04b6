// Package merge combines independently authored question collections into
// one consistent collection: per-question validation, identifier collision
// resolution, and the orchestrating merge engine.
package merge

import (
	"fmt"
	"strconv"

	"github.com/exambank/backend/internal/models"
	"github.com/exambank/backend/internal/notation"
)

// proseField names a question field that may embed math and therefore gets
// delimiter checks.
type proseField struct {
	name string
	text string
}

// Validate checks a single question for structural completeness and
// type-specific invariants. It returns every violation found, nil when the
// question is clean. Recoverable content problems never panic; only the
// caller passing garbage at the type level would.
func Validate(q models.Question) []models.Violation {
	var violations []models.Violation

	add := func(field string, kind models.ViolationKind, format string, args ...interface{}) {
		violations = append(violations, models.Violation{
			QuestionID: q.ID,
			Field:      field,
			Kind:       kind,
			Message:    fmt.Sprintf(format, args...),
		})
	}

	if q.Text == "" {
		add("text", models.ViolationEmptyText, "question text is empty")
	}

	if !models.ValidQuestionTypes[q.Type] {
		add("type", models.ViolationUnknownType, "unrecognized question type %q", q.Type)
	}

	switch q.Type {
	case models.TypeMultipleChoice:
		if len(q.Choices) == 0 {
			add("choices", models.ViolationMissingChoices, "multiple_choice requires at least one choice")
		} else if !containsString(q.Choices, q.CorrectAnswer) {
			add("correct_answer", models.ViolationAnswerNotInChoices,
				"correct answer %q is not one of the choices", q.CorrectAnswer)
		}
	case models.TypeNumerical:
		if _, err := strconv.ParseFloat(q.CorrectAnswer, 64); err != nil {
			add("correct_answer", models.ViolationAnswerNotNumeric,
				"correct answer %q does not parse as a number", q.CorrectAnswer)
		}
	case models.TypeTrueFalse:
		if q.CorrectAnswer != "True" && q.CorrectAnswer != "False" {
			add("correct_answer", models.ViolationAnswerNotBoolean,
				"correct answer must be exactly \"True\" or \"False\", got %q", q.CorrectAnswer)
		}
	}

	if q.Points <= 0 {
		add("points", models.ViolationBadPoints, "points must be positive, got %g", q.Points)
	}
	if q.Tolerance < 0 {
		add("tolerance", models.ViolationBadTolerance, "tolerance must not be negative, got %g", q.Tolerance)
	}

	// Difficulty is a recognized metadata key with a fixed domain; other
	// metadata keys pass through without inspection.
	if d := q.Difficulty(); d != "" && !models.ValidDifficulties[models.Difficulty(d)] {
		add("metadata.difficulty", models.ViolationBadDifficulty,
			"difficulty must be Easy, Medium or Hard, got %q", d)
	}

	fields := []proseField{
		{"text", q.Text},
		{"feedback_correct", q.FeedbackCorrect},
		{"feedback_incorrect", q.FeedbackIncorrect},
	}
	for i, choice := range q.Choices {
		fields = append(fields, proseField{fmt.Sprintf("choices[%d]", i), choice})
	}

	for _, f := range fields {
		if err := notation.CheckBalance(f.text); err != nil {
			add(f.name, models.ViolationDelimiterImbalance, "%v", err)
		}
		if notation.ContainsTarget(f.text) {
			add(f.name, models.ViolationTargetDialect,
				"field already contains target-dialect math delimiters")
		}
	}

	return violations
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
