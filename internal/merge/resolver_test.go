package merge

import (
	"reflect"
	"testing"

	"github.com/exambank/backend/internal/models"
)

func collectionWithIDs(ids ...string) models.Collection {
	col := models.Collection{}
	for _, id := range ids {
		q := validMC(id)
		col.Questions = append(col.Questions, q)
	}
	return col
}

func TestResolve_NoCollisions(t *testing.T) {
	cols := []models.Collection{
		collectionWithIDs("Q1", "Q2"),
		collectionWithIDs("Q3"),
	}

	finalIDs, conflicts := Resolve(cols)
	if len(conflicts) != 0 {
		t.Errorf("expected no conflicts, got %v", conflicts)
	}
	want := [][]string{{"Q1", "Q2"}, {"Q3"}}
	if !reflect.DeepEqual(finalIDs, want) {
		t.Errorf("finalIDs = %v, want %v", finalIDs, want)
	}
}

func TestResolve_FirstSeenWinsUnsuffixed(t *testing.T) {
	cols := []models.Collection{
		collectionWithIDs("Q1"),
		collectionWithIDs("Q1", "Q2"),
	}

	finalIDs, conflicts := Resolve(cols)
	want := [][]string{{"Q1"}, {"Q1_1", "Q2"}}
	if !reflect.DeepEqual(finalIDs, want) {
		t.Errorf("finalIDs = %v, want %v", finalIDs, want)
	}
	if len(conflicts) != 1 {
		t.Fatalf("expected one conflict, got %v", conflicts)
	}
	wantRecord := models.ConflictRecord{SourceIndex: 1, OriginalID: "Q1", FinalID: "Q1_1"}
	if conflicts[0] != wantRecord {
		t.Errorf("conflict = %+v, want %+v", conflicts[0], wantRecord)
	}
}

func TestResolve_SmallestFreeSuffix(t *testing.T) {
	cols := []models.Collection{
		collectionWithIDs("Q1"),
		collectionWithIDs("Q1"),
		collectionWithIDs("Q1"),
	}

	finalIDs, _ := Resolve(cols)
	want := [][]string{{"Q1"}, {"Q1_1"}, {"Q1_2"}}
	if !reflect.DeepEqual(finalIDs, want) {
		t.Errorf("finalIDs = %v, want %v", finalIDs, want)
	}
}

// An input that already carries "Q1_1" must not be collided with by a
// generated suffix: the free-suffix scan checks against every id seen so
// far, original and generated alike.
func TestResolve_PreexistingSuffixedID(t *testing.T) {
	cols := []models.Collection{
		collectionWithIDs("Q1", "Q1_1"),
		collectionWithIDs("Q1"),
	}

	finalIDs, conflicts := Resolve(cols)
	want := [][]string{{"Q1", "Q1_1"}, {"Q1_2"}}
	if !reflect.DeepEqual(finalIDs, want) {
		t.Errorf("finalIDs = %v, want %v", finalIDs, want)
	}
	if len(conflicts) != 1 || conflicts[0].FinalID != "Q1_2" {
		t.Errorf("conflicts = %v, want single record with final id Q1_2", conflicts)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	cols := []models.Collection{
		collectionWithIDs("Q1", "Q2"),
		collectionWithIDs("Q2", "Q1", "Q3"),
		collectionWithIDs("Q1"),
	}

	firstIDs, firstConflicts := Resolve(cols)
	secondIDs, secondConflicts := Resolve(cols)
	if !reflect.DeepEqual(firstIDs, secondIDs) {
		t.Errorf("id assignment not reproducible: %v vs %v", firstIDs, secondIDs)
	}
	if !reflect.DeepEqual(firstConflicts, secondConflicts) {
		t.Errorf("conflict records not reproducible: %v vs %v", firstConflicts, secondConflicts)
	}
}

func TestResolve_AllOutputIDsUnique(t *testing.T) {
	cols := []models.Collection{
		collectionWithIDs("Q1", "Q1_1", "Q2"),
		collectionWithIDs("Q1", "Q1", "Q2", "Q2_1"),
	}

	finalIDs, _ := Resolve(cols)
	seen := map[string]bool{}
	for _, src := range finalIDs {
		for _, id := range src {
			if seen[id] {
				t.Errorf("duplicate output id %q", id)
			}
			seen[id] = true
		}
	}
}

func TestIDSpace(t *testing.T) {
	cols := []models.Collection{
		collectionWithIDs("Q1"),
		collectionWithIDs("Q1"),
	}
	finalIDs, _ := Resolve(cols)
	space := IDSpace(cols, finalIDs)

	if got := space[models.SourceID{SourceIndex: 1, OriginalID: "Q1"}]; got != "Q1_1" {
		t.Errorf("id space maps (1, Q1) to %q, want Q1_1", got)
	}
	if got := space[models.SourceID{SourceIndex: 0, OriginalID: "Q1"}]; got != "Q1" {
		t.Errorf("id space maps (0, Q1) to %q, want Q1", got)
	}
}
