package merge

import (
	"github.com/exambank/backend/internal/models"
)

// Merge combines N collections into one. Every input question is validated
// first; if anything fails, no partial merge happens: the returned error is
// a *models.ValidationError carrying every violation across every source,
// keyed by source index and question id. On success the output concatenates
// the collections in source order, each internally in original order, with
// only the id field rewritten where the resolver renamed a collision. Inputs
// are never mutated.
func Merge(cols []models.Collection) (models.Collection, models.MergeReport, error) {
	var violations []models.Violation
	for s, col := range cols {
		for _, q := range col.Questions {
			for _, v := range Validate(q) {
				v.SourceIndex = s
				violations = append(violations, v)
			}
		}
	}
	if len(violations) > 0 {
		return models.Collection{}, models.MergeReport{}, &models.ValidationError{Violations: violations}
	}

	finalIDs, conflicts := Resolve(cols)

	totalIn := 0
	for _, col := range cols {
		totalIn += len(col.Questions)
	}

	merged := models.Collection{Questions: make([]models.Question, 0, totalIn)}
	for s, col := range cols {
		for i, q := range col.Questions {
			out := q.Clone()
			out.ID = finalIDs[s][i]
			merged.Questions = append(merged.Questions, out)
		}
	}
	if len(cols) > 0 {
		merged.Metadata = cols[0].Metadata
	}

	report := models.MergeReport{
		TotalIn:    totalIn,
		TotalOut:   len(merged.Questions),
		Collisions: len(conflicts),
		Conflicts:  conflicts,
	}
	return merged, report, nil
}
