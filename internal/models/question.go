package models

// QuestionType identifies one of the closed set of question variants.
type QuestionType string

const (
	TypeMultipleChoice QuestionType = "multiple_choice"
	TypeTrueFalse      QuestionType = "true_false"
	TypeNumerical      QuestionType = "numerical"
	TypeFillInBlank    QuestionType = "fill_in_blank"
	TypeShortAnswer    QuestionType = "short_answer"
	TypeEssay          QuestionType = "essay"
)

var ValidQuestionTypes = map[QuestionType]bool{
	TypeMultipleChoice: true,
	TypeTrueFalse:      true,
	TypeNumerical:      true,
	TypeFillInBlank:    true,
	TypeShortAnswer:    true,
	TypeEssay:          true,
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy:   true,
	DifficultyMedium: true,
	DifficultyHard:   true,
}

// Recognized metadata keys. Anything else in a question's metadata map is
// passed through unchanged.
const (
	MetaTopic      = "topic"
	MetaSubtopic   = "subtopic"
	MetaDifficulty = "difficulty"
)

// ── Core Structs ───────────────────────────────────────

// Question is the unit of content. Text, choices and feedback may embed math
// in the portable dialect (single-dollar inline, double-dollar block).
type Question struct {
	ID                string            `json:"id"`
	Type              QuestionType      `json:"type"`
	Text              string            `json:"text"`
	Choices           []string          `json:"choices,omitempty"`
	CorrectAnswer     string            `json:"correct_answer"`
	Tolerance         float64           `json:"tolerance,omitempty"`
	Points            float64           `json:"points"`
	FeedbackCorrect   string            `json:"feedback_correct,omitempty"`
	FeedbackIncorrect string            `json:"feedback_incorrect,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// Clone returns a deep copy. Merge and export never mutate their inputs, so
// any stage that rewrites a field works on a clone.
func (q Question) Clone() Question {
	out := q
	if q.Choices != nil {
		out.Choices = make([]string, len(q.Choices))
		copy(out.Choices, q.Choices)
	}
	if q.Metadata != nil {
		out.Metadata = make(map[string]string, len(q.Metadata))
		for k, v := range q.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Topic returns the recognized topic metadata value, if present.
func (q Question) Topic() string { return q.Metadata[MetaTopic] }

// Difficulty returns the recognized difficulty metadata value, if present.
func (q Question) Difficulty() string { return q.Metadata[MetaDifficulty] }

// CollectionMetadata describes one input source as a whole.
type CollectionMetadata struct {
	Subject       string `json:"subject,omitempty"`
	FormatVersion string `json:"format_version,omitempty"`
	CreatedDate   string `json:"created_date,omitempty"`
}

// Collection is an ordered sequence of questions plus source metadata.
// Order is display-significant and survives merge unchanged.
type Collection struct {
	Questions []Question         `json:"questions"`
	Metadata  CollectionMetadata `json:"metadata,omitempty"`
}

// ── Merge Types ────────────────────────────────────────

// SourceID addresses a question by its input collection and original id.
type SourceID struct {
	SourceIndex int    `json:"source_index"`
	OriginalID  string `json:"original_id"`
}

// ConflictRecord is an audit entry for one renamed question. The merged
// collection is self-consistent without it; records exist purely for
// reporting.
type ConflictRecord struct {
	SourceIndex int    `json:"source_index"`
	OriginalID  string `json:"original_id"`
	FinalID     string `json:"final_id"`
}

// MergeReport summarizes one merge run. TotalIn always equals TotalOut;
// merge never drops data.
type MergeReport struct {
	TotalIn    int              `json:"total_in"`
	TotalOut   int              `json:"total_out"`
	Collisions int              `json:"collisions"`
	Conflicts  []ConflictRecord `json:"conflicts"`
}

// ── Export Types ───────────────────────────────────────

// ExportFormat selects the package builder target.
type ExportFormat string

const (
	FormatQTI ExportFormat = "qti"
	FormatCSV ExportFormat = "csv"
)

var ValidExportFormats = map[ExportFormat]bool{
	FormatQTI: true,
	FormatCSV: true,
}

// IssueSeverity distinguishes fatal export problems from advisory ones.
type IssueSeverity string

const (
	SeverityFatal    IssueSeverity = "fatal"
	SeverityAdvisory IssueSeverity = "advisory"
)

// ExportIssue is one finding from the post-build export check.
type ExportIssue struct {
	Severity   IssueSeverity `json:"severity"`
	QuestionID string        `json:"question_id,omitempty"`
	Message    string        `json:"message"`
}
