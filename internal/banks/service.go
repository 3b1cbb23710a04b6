package banks

import (
	"errors"
	"fmt"
	"log"

	"github.com/exambank/backend/internal/collection"
	"github.com/exambank/backend/internal/export"
	"github.com/exambank/backend/internal/merge"
	"github.com/exambank/backend/internal/models"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// ImportBank parses one uploaded source file and persists it. Structural
// problems (bad JSON, missing questions key) and per-question violations both
// surface to the caller; nothing broken is stored.
func (s *Service) ImportBank(name string, payload []byte) (*models.Bank, error) {
	col, err := collection.Parse(payload)
	if err != nil {
		return nil, err
	}

	// Ids must be unique within a single stored collection; only the merge
	// engine is allowed to resolve collisions, and only across sources.
	var violations []models.Violation
	seen := make(map[string]bool, len(col.Questions))
	for _, q := range col.Questions {
		if seen[q.ID] {
			violations = append(violations, models.Violation{
				QuestionID: q.ID,
				Field:      "id",
				Kind:       models.ViolationDuplicateID,
				Message:    fmt.Sprintf("id %q appears more than once in this collection", q.ID),
			})
		}
		seen[q.ID] = true
		violations = append(violations, merge.Validate(q)...)
	}
	if len(violations) > 0 {
		return nil, &models.ValidationError{Violations: violations}
	}

	bank, err := s.store.SaveBank(name, col)
	if err != nil {
		return nil, err
	}
	log.Printf("imported bank %d (%q) with %d questions", bank.ID, name, bank.QuestionCount)
	return bank, nil
}

// MergeBanks loads the named banks in request order, runs the merge engine
// and persists the result together with its conflict audit trail.
func (s *Service) MergeBanks(name string, bankIDs []int64) (*models.Bank, models.MergeReport, error) {
	if len(bankIDs) < 2 {
		return nil, models.MergeReport{}, errors.New("merging requires at least two banks")
	}

	cols := make([]models.Collection, 0, len(bankIDs))
	for _, id := range bankIDs {
		col, err := s.store.LoadCollection(id)
		if err != nil {
			return nil, models.MergeReport{}, fmt.Errorf("load bank %d: %w", id, err)
		}
		cols = append(cols, col)
	}

	merged, report, err := merge.Merge(cols)
	if err != nil {
		return nil, models.MergeReport{}, err
	}

	bank, err := s.store.SaveBank(name, merged)
	if err != nil {
		return nil, models.MergeReport{}, err
	}
	if err := s.store.SaveMergeRecords(bank.ID, report.Conflicts); err != nil {
		return nil, models.MergeReport{}, err
	}

	log.Printf("merged banks %v into bank %d: %d questions, %d collisions",
		bankIDs, bank.ID, report.TotalOut, report.Collisions)
	return bank, report, nil
}

// ExportResult carries the built package plus any advisory findings from the
// post-build check. Fatal findings never make it here; they abort the
// export instead.
type ExportResult struct {
	Bytes    []byte
	Format   models.ExportFormat
	Warnings []models.ExportIssue
}

// ExportBank builds a package from a stored bank and sanity-checks it before
// handing the bytes back.
func (s *Service) ExportBank(bankID int64, format models.ExportFormat) (*ExportResult, error) {
	if !models.ValidExportFormats[format] {
		return nil, fmt.Errorf("unknown export format %q", format)
	}

	col, err := s.store.LoadCollection(bankID)
	if err != nil {
		return nil, err
	}

	built, err := export.Build(col, format)
	if err != nil {
		return nil, err
	}

	issues := export.Check(built, format, col)
	if export.HasFatal(issues) {
		return nil, fmt.Errorf("export integrity check failed: %s", issues[0].Message)
	}
	if len(issues) > 0 {
		log.Printf("bank %d export has %d advisory issues", bankID, len(issues))
	}

	return &ExportResult{Bytes: built, Format: format, Warnings: issues}, nil
}

// GetCollection serializes a stored bank back to the portable JSON format,
// stamping format_version and created_date when the source lacked them. The
// output is a valid input for a future import or merge.
func (s *Service) GetCollection(bankID int64) ([]byte, error) {
	col, err := s.store.LoadCollection(bankID)
	if err != nil {
		return nil, err
	}
	return collection.Marshal(col)
}

func (s *Service) GetBank(bankID int64) (*models.Bank, error) {
	return s.store.GetBank(bankID)
}

func (s *Service) ListBanks(limit, offset int) ([]models.Bank, error) {
	return s.store.ListBanks(limit, offset)
}

func (s *Service) GetMergeRecords(bankID int64) ([]models.ConflictRecord, error) {
	return s.store.GetMergeRecords(bankID)
}
