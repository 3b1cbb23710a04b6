package models

import (
	"fmt"
	"strings"
)

// ViolationKind classifies one per-question validation problem.
type ViolationKind string

const (
	ViolationEmptyText          ViolationKind = "empty_text"
	ViolationUnknownType        ViolationKind = "unknown_type"
	ViolationMissingChoices     ViolationKind = "missing_choices"
	ViolationAnswerNotInChoices ViolationKind = "answer_not_in_choices"
	ViolationAnswerNotNumeric   ViolationKind = "answer_not_numeric"
	ViolationAnswerNotBoolean   ViolationKind = "answer_not_boolean"
	ViolationDelimiterImbalance ViolationKind = "delimiter_imbalance"
	ViolationTargetDialect      ViolationKind = "target_dialect_present"
	ViolationDuplicateID        ViolationKind = "duplicate_id"
	ViolationBadDifficulty      ViolationKind = "bad_difficulty"
	ViolationBadPoints          ViolationKind = "bad_points"
	ViolationBadTolerance       ViolationKind = "bad_tolerance"
)

// Violation is one validation finding, located by question id and field.
// SourceIndex is filled in by the merge engine; single-question validation
// leaves it zero.
type Violation struct {
	SourceIndex int           `json:"source_index"`
	QuestionID  string        `json:"question_id"`
	Field       string        `json:"field"`
	Kind        ViolationKind `json:"kind"`
	Message     string        `json:"message"`
}

// ValidationError carries every violation found across all input
// collections. The merge engine never short-circuits on the first problem;
// callers get the complete remediation list in one pass.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("source %d question %q %s: %s",
			v.SourceIndex, v.QuestionID, v.Field, v.Message))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// StructuralError means an input collection is malformed at the container
// level (invalid JSON, missing questions key). Fatal before any merge work.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error: %s", e.Reason)
}

// PackagingError means the target format could not serialize a question.
// It names the offending question id, not just that the build failed.
type PackagingError struct {
	QuestionID string
	Reason     string
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("packaging question %q: %s", e.QuestionID, e.Reason)
}
