package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/exambank/backend/internal/models"
)

// Fixed leading columns of the tabular format; choice columns and the two
// feedback columns follow.
var tabularHeader = []string{"id", "type", "text", "points", "topic", "difficulty"}

// buildCSV flattens each question into one row. The number of choice columns
// is the widest choice list in the collection; questions with fewer choices
// leave the extra cells empty. No manifest or archive is involved.
func buildCSV(col models.Collection) ([]byte, error) {
	maxChoices := 0
	for _, q := range col.Questions {
		if len(q.Choices) > maxChoices {
			maxChoices = len(q.Choices)
		}
	}

	header := append([]string{}, tabularHeader...)
	for i := 1; i <= maxChoices; i++ {
		header = append(header, fmt.Sprintf("choice_%d", i))
	}
	header = append(header, "feedback_correct", "feedback_incorrect")

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for _, q := range col.Questions {
		transformed, err := transformProse(q)
		if err != nil {
			return nil, err
		}
		row := []string{
			transformed.ID,
			string(transformed.Type),
			transformed.Text,
			formatFloat(transformed.Points),
			transformed.Topic(),
			transformed.Difficulty(),
		}
		for i := 0; i < maxChoices; i++ {
			if i < len(transformed.Choices) {
				row = append(row, transformed.Choices[i])
			} else {
				row = append(row, "")
			}
		}
		row = append(row, transformed.FeedbackCorrect, transformed.FeedbackIncorrect)
		if err := w.Write(row); err != nil {
			return nil, &models.PackagingError{QuestionID: q.ID, Reason: err.Error()}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush rows: %w", err)
	}
	return buf.Bytes(), nil
}

// TabularRow is the re-readable slice of one exported row. Text and choices
// are one-way transformed and not expected to round-trip; the structural
// columns are.
type TabularRow struct {
	ID         string
	Type       string
	Text       string
	Points     float64
	Topic      string
	Difficulty string
}

// ParseTabular re-reads a tabular export. Used by the export checker and by
// callers that want to audit what was written.
func ParseTabular(data []byte) ([]TabularRow, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse tabular export: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("tabular export has no header row")
	}

	rows := make([]TabularRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < len(tabularHeader) {
			return nil, fmt.Errorf("row has %d columns, want at least %d", len(rec), len(tabularHeader))
		}
		points, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("row %q: bad points %q", rec[0], rec[3])
		}
		rows = append(rows, TabularRow{
			ID:         rec[0],
			Type:       rec[1],
			Text:       rec[2],
			Points:     points,
			Topic:      rec[4],
			Difficulty: rec[5],
		})
	}
	return rows, nil
}
