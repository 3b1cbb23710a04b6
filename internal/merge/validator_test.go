package merge

import (
	"testing"

	"github.com/exambank/backend/internal/models"
)

func validMC(id string) models.Question {
	return models.Question{
		ID:            id,
		Type:          models.TypeMultipleChoice,
		Text:          "What is $2+2$?",
		Choices:       []string{"3", "4", "5"},
		CorrectAnswer: "4",
		Points:        1,
		Metadata:      map[string]string{"topic": "arithmetic", "difficulty": "Easy"},
	}
}

func hasViolation(vs []models.Violation, kind models.ViolationKind, field string) bool {
	for _, v := range vs {
		if v.Kind == kind && v.Field == field {
			return true
		}
	}
	return false
}

func TestValidate_CleanQuestion(t *testing.T) {
	if vs := Validate(validMC("Q1")); len(vs) != 0 {
		t.Errorf("expected no violations, got %v", vs)
	}
}

func TestValidate_FieldChecks(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*models.Question)
		kind     models.ViolationKind
		field    string
	}{
		{"empty text", func(q *models.Question) { q.Text = "" }, models.ViolationEmptyText, "text"},
		{"unknown type", func(q *models.Question) { q.Type = "matching" }, models.ViolationUnknownType, "type"},
		{"no choices", func(q *models.Question) { q.Choices = nil }, models.ViolationMissingChoices, "choices"},
		{"answer not a choice", func(q *models.Question) { q.CorrectAnswer = "7" }, models.ViolationAnswerNotInChoices, "correct_answer"},
		{"zero points", func(q *models.Question) { q.Points = 0 }, models.ViolationBadPoints, "points"},
		{"negative tolerance", func(q *models.Question) { q.Tolerance = -0.5 }, models.ViolationBadTolerance, "tolerance"},
		{"unbalanced text delimiter", func(q *models.Question) { q.Text = "cost is $5" }, models.ViolationDelimiterImbalance, "text"},
		{"unbalanced choice delimiter", func(q *models.Question) { q.Choices[1] = "$4" }, models.ViolationDelimiterImbalance, "choices[1]"},
		{"unbalanced feedback delimiter", func(q *models.Question) { q.FeedbackIncorrect = "try $x" }, models.ViolationDelimiterImbalance, "feedback_incorrect"},
		{"target dialect present", func(q *models.Question) { q.Text = `already \(x\) converted` }, models.ViolationTargetDialect, "text"},
		{"unrecognized difficulty", func(q *models.Question) { q.Metadata["difficulty"] = "brutal" }, models.ViolationBadDifficulty, "metadata.difficulty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validMC("Q1")
			tt.mutate(&q)
			vs := Validate(q)
			if len(vs) == 0 {
				t.Fatal("expected violations, got none")
			}
			if !hasViolation(vs, tt.kind, tt.field) {
				t.Errorf("missing %s violation on %s; got %v", tt.kind, tt.field, vs)
			}
		})
	}
}

func TestValidate_TypeSpecificAnswers(t *testing.T) {
	numerical := models.Question{
		ID: "N1", Type: models.TypeNumerical, Text: "How many?",
		CorrectAnswer: "not-a-number", Points: 1,
	}
	if vs := Validate(numerical); !hasViolation(vs, models.ViolationAnswerNotNumeric, "correct_answer") {
		t.Errorf("numerical with non-numeric answer: got %v", vs)
	}

	numerical.CorrectAnswer = "3.14"
	numerical.Tolerance = 0.01
	if vs := Validate(numerical); len(vs) != 0 {
		t.Errorf("valid numerical question: got %v", vs)
	}

	tf := models.Question{
		ID: "T1", Type: models.TypeTrueFalse, Text: "Is it so?",
		CorrectAnswer: "true", Points: 1,
	}
	if vs := Validate(tf); !hasViolation(vs, models.ViolationAnswerNotBoolean, "correct_answer") {
		t.Errorf("true_false with lowercase answer: got %v", vs)
	}

	tf.CorrectAnswer = "False"
	if vs := Validate(tf); len(vs) != 0 {
		t.Errorf("valid true_false question: got %v", vs)
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	q := models.Question{ID: "B1", Type: "bogus", Points: -1}
	vs := Validate(q)
	if len(vs) < 3 {
		t.Errorf("expected text, type and points violations together, got %v", vs)
	}
}
