package merge

import (
	"fmt"

	"github.com/exambank/backend/internal/models"
)

// Resolve walks the collections in supplied order and produces a
// collision-free id space. The first return value is aligned with the input:
// finalIDs[s][i] is the id assigned to cols[s].Questions[i]. The second is
// the audit trail, one record per renamed question.
//
// First-seen wins the unsuffixed id. Later duplicates get "_<n>" appended,
// where n is the smallest positive integer whose result is absent from the
// set of ALL ids seen so far, original and generated alike, so an input that
// already contains "Q1_1" can never be silently collided with. Resolution is
// purely additive renaming: no question is dropped or overwritten, and the
// outcome is deterministic for a given input order.
func Resolve(cols []models.Collection) ([][]string, []models.ConflictRecord) {
	seen := make(map[string]bool)
	finalIDs := make([][]string, len(cols))
	var conflicts []models.ConflictRecord

	for s, col := range cols {
		finalIDs[s] = make([]string, len(col.Questions))
		for i, q := range col.Questions {
			if !seen[q.ID] {
				seen[q.ID] = true
				finalIDs[s][i] = q.ID
				continue
			}

			renamed := nextFreeID(q.ID, seen)
			seen[renamed] = true
			finalIDs[s][i] = renamed
			conflicts = append(conflicts, models.ConflictRecord{
				SourceIndex: s,
				OriginalID:  q.ID,
				FinalID:     renamed,
			})
		}
	}

	return finalIDs, conflicts
}

// IDSpace flattens resolved ids into the (source, original id) -> final id
// mapping used for reporting.
func IDSpace(cols []models.Collection, finalIDs [][]string) map[models.SourceID]string {
	space := make(map[models.SourceID]string)
	for s, col := range cols {
		for i, q := range col.Questions {
			space[models.SourceID{SourceIndex: s, OriginalID: q.ID}] = finalIDs[s][i]
		}
	}
	return space
}

// nextFreeID appends the smallest positive suffix that yields an id not yet
// seen anywhere in the merged id space.
func nextFreeID(base string, seen map[string]bool) string {
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if !seen[candidate] {
			return candidate
		}
	}
}
