// Package collection reads and writes the portable authoring format: a JSON
// (or YAML) document with a questions array and a metadata record. Math
// inside prose fields stays in the portable dialect; this package never
// touches delimiters.
package collection

import (
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/exambank/backend/internal/models"
)

// Parse decodes one input source into a Collection. Invalid JSON/YAML or a
// missing questions array is a *models.StructuralError, fatal before any
// merge work begins. Unknown keys inside a question's metadata map are kept
// verbatim; content is not validated here (that is the merge engine's job).
func Parse(data []byte) (models.Collection, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return models.Collection{}, &models.StructuralError{Reason: "empty input"}
	}

	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return parseJSON(trimmed)
	}
	return parseYAML(data)
}

func parseJSON(doc string) (models.Collection, error) {
	if !gjson.Valid(doc) {
		return models.Collection{}, &models.StructuralError{Reason: "invalid JSON"}
	}

	root := gjson.Parse(doc)
	questions := root.Get("questions")
	if !questions.Exists() {
		return models.Collection{}, &models.StructuralError{Reason: "missing questions key"}
	}
	if !questions.IsArray() {
		return models.Collection{}, &models.StructuralError{Reason: "questions is not an array"}
	}

	col := models.Collection{
		Metadata: models.CollectionMetadata{
			Subject:       root.Get("metadata.subject").String(),
			FormatVersion: root.Get("metadata.format_version").String(),
			CreatedDate:   root.Get("metadata.created_date").String(),
		},
	}

	questions.ForEach(func(_, item gjson.Result) bool {
		col.Questions = append(col.Questions, questionFromJSON(item))
		return true
	})
	return col, nil
}

func questionFromJSON(item gjson.Result) models.Question {
	q := models.Question{
		ID:                item.Get("id").String(),
		Type:              models.QuestionType(item.Get("type").String()),
		Text:              item.Get("text").String(),
		CorrectAnswer:     item.Get("correct_answer").String(),
		Tolerance:         item.Get("tolerance").Float(),
		Points:            1,
		FeedbackCorrect:   item.Get("feedback_correct").String(),
		FeedbackIncorrect: item.Get("feedback_incorrect").String(),
	}
	if points := item.Get("points"); points.Exists() {
		q.Points = points.Float()
	}
	item.Get("choices").ForEach(func(_, choice gjson.Result) bool {
		q.Choices = append(q.Choices, choice.String())
		return true
	})
	if meta := item.Get("metadata"); meta.IsObject() {
		q.Metadata = make(map[string]string)
		meta.ForEach(func(key, value gjson.Result) bool {
			q.Metadata[key.String()] = value.String()
			return true
		})
	}
	return q
}

// YAML mirrors of the portable schema. Field names match the JSON keys.
type yamlCollection struct {
	Questions []yamlQuestion `yaml:"questions"`
	Metadata  struct {
		Subject       string `yaml:"subject"`
		FormatVersion string `yaml:"format_version"`
		CreatedDate   string `yaml:"created_date"`
	} `yaml:"metadata"`
}

type yamlQuestion struct {
	ID                string            `yaml:"id"`
	Type              string            `yaml:"type"`
	Text              string            `yaml:"text"`
	Choices           []string          `yaml:"choices"`
	CorrectAnswer     string            `yaml:"correct_answer"`
	Tolerance         float64           `yaml:"tolerance"`
	Points            *float64          `yaml:"points"`
	FeedbackCorrect   string            `yaml:"feedback_correct"`
	FeedbackIncorrect string            `yaml:"feedback_incorrect"`
	Metadata          map[string]string `yaml:"metadata"`
}

func parseYAML(data []byte) (models.Collection, error) {
	var doc yamlCollection
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return models.Collection{}, &models.StructuralError{Reason: "invalid YAML: " + err.Error()}
	}
	if doc.Questions == nil {
		return models.Collection{}, &models.StructuralError{Reason: "missing questions key"}
	}

	col := models.Collection{}
	col.Metadata.Subject = doc.Metadata.Subject
	col.Metadata.FormatVersion = doc.Metadata.FormatVersion
	col.Metadata.CreatedDate = doc.Metadata.CreatedDate

	for _, yq := range doc.Questions {
		q := models.Question{
			ID:                yq.ID,
			Type:              models.QuestionType(yq.Type),
			Text:              yq.Text,
			Choices:           yq.Choices,
			CorrectAnswer:     yq.CorrectAnswer,
			Tolerance:         yq.Tolerance,
			Points:            1,
			FeedbackCorrect:   yq.FeedbackCorrect,
			FeedbackIncorrect: yq.FeedbackIncorrect,
			Metadata:          yq.Metadata,
		}
		if yq.Points != nil {
			q.Points = *yq.Points
		}
		col.Questions = append(col.Questions, q)
	}
	return col, nil
}
