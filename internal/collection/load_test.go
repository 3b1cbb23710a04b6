package collection

import (
	"errors"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/exambank/backend/internal/models"
)

const sampleJSON = `{
  "questions": [
    {
      "id": "Q1",
      "type": "multiple_choice",
      "text": "What is $2+2$?",
      "choices": ["3", "4"],
      "correct_answer": "4",
      "points": 2,
      "feedback_correct": "Right.",
      "metadata": {"topic": "arithmetic", "difficulty": "Easy", "reviewer": "ams"}
    },
    {
      "id": "Q2",
      "type": "numerical",
      "text": "Evaluate $$\\int_0^1 x\\,dx$$",
      "correct_answer": "0.5",
      "tolerance": 0.01
    }
  ],
  "metadata": {"subject": "Calculus", "format_version": "1.0", "created_date": "2026-03-01"}
}`

func TestParse_JSON(t *testing.T) {
	col, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(col.Questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(col.Questions))
	}

	q1 := col.Questions[0]
	if q1.ID != "Q1" || q1.Type != models.TypeMultipleChoice || q1.Points != 2 {
		t.Errorf("Q1 decoded wrong: %+v", q1)
	}
	if len(q1.Choices) != 2 || q1.Choices[1] != "4" {
		t.Errorf("Q1 choices decoded wrong: %v", q1.Choices)
	}
	// Unrecognized metadata keys pass through unchanged.
	if q1.Metadata["reviewer"] != "ams" {
		t.Errorf("passthrough metadata lost: %v", q1.Metadata)
	}

	q2 := col.Questions[1]
	if q2.Points != 1 {
		t.Errorf("missing points should default to 1, got %g", q2.Points)
	}
	if q2.Tolerance != 0.01 {
		t.Errorf("tolerance = %g, want 0.01", q2.Tolerance)
	}

	if col.Metadata.Subject != "Calculus" || col.Metadata.CreatedDate != "2026-03-01" {
		t.Errorf("collection metadata decoded wrong: %+v", col.Metadata)
	}
}

func TestParse_StructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty input", ""},
		{"invalid JSON", `{"questions": [`},
		{"missing questions key", `{"metadata": {"subject": "x"}}`},
		{"questions not an array", `{"questions": {"id": "Q1"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			var serr *models.StructuralError
			if !errors.As(err, &serr) {
				t.Errorf("Parse(%q) error = %v, want *models.StructuralError", tt.input, err)
			}
		})
	}
}

func TestParse_YAML(t *testing.T) {
	input := `
questions:
  - id: Q1
    type: true_false
    text: The integral of $x$ is $x^2/2$.
    correct_answer: "True"
    metadata:
      topic: calculus
metadata:
  subject: Calculus
`
	col, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(col.Questions) != 1 {
		t.Fatalf("got %d questions, want 1", len(col.Questions))
	}
	q := col.Questions[0]
	if q.Type != models.TypeTrueFalse || q.CorrectAnswer != "True" || q.Points != 1 {
		t.Errorf("question decoded wrong: %+v", q)
	}
	if col.Metadata.Subject != "Calculus" {
		t.Errorf("subject = %q", col.Metadata.Subject)
	}
}

func TestParse_YAMLMissingQuestions(t *testing.T) {
	_, err := Parse([]byte("metadata:\n  subject: x\n"))
	var serr *models.StructuralError
	if !errors.As(err, &serr) {
		t.Errorf("error = %v, want *models.StructuralError", err)
	}
}

func TestMarshal_StampsMetadata(t *testing.T) {
	col := models.Collection{Questions: []models.Question{{
		ID: "Q1", Type: models.TypeEssay, Text: "Discuss.", Points: 5,
	}}}

	out, err := Marshal(col)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	root := gjson.ParseBytes(out)
	if got := root.Get("metadata.format_version").String(); got != CurrentFormatVersion {
		t.Errorf("format_version = %q, want %q", got, CurrentFormatVersion)
	}
	if root.Get("metadata.created_date").String() == "" {
		t.Error("created_date not stamped")
	}
	if root.Get("questions.0.id").String() != "Q1" {
		t.Error("questions not preserved through marshal")
	}
}

func TestParseMarshal_RoundTrip(t *testing.T) {
	col, err := Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	out, err := Marshal(col)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	again, err := Parse(out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if len(again.Questions) != len(col.Questions) {
		t.Fatalf("question count changed: %d vs %d", len(again.Questions), len(col.Questions))
	}
	for i := range col.Questions {
		if again.Questions[i].ID != col.Questions[i].ID || again.Questions[i].Text != col.Questions[i].Text {
			t.Errorf("question %d changed across round trip", i)
		}
	}
}
