// Package banks persists question collections and exposes the HTTP surface
// that feeds them through the merge and export pipeline. Everything in here
// calls the core packages with plain data; no pipeline stage touches the
// database itself.
package banks

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/exambank/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ── Bank Management ─────────────────────────────────────

// SaveBank persists a collection as a new bank. Question order is kept in a
// position column so the collection loads back exactly as supplied.
func (s *Store) SaveBank(name string, col models.Collection) (*models.Bank, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin save bank: %w", err)
	}
	defer tx.Rollback()

	var bank models.Bank
	err = tx.QueryRow(
		`INSERT INTO banks (name, subject, format_version, created_date, question_count)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, name, subject, format_version, created_date, question_count, created_at`,
		name, col.Metadata.Subject, col.Metadata.FormatVersion, col.Metadata.CreatedDate,
		len(col.Questions),
	).Scan(&bank.ID, &bank.Name, &bank.Subject, &bank.FormatVersion, &bank.CreatedDate,
		&bank.QuestionCount, &bank.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert bank: %w", err)
	}

	for i, q := range col.Questions {
		choices, err := json.Marshal(q.Choices)
		if err != nil {
			return nil, fmt.Errorf("encode choices for %q: %w", q.ID, err)
		}
		metadata, err := json.Marshal(q.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode metadata for %q: %w", q.ID, err)
		}
		if q.Choices == nil {
			choices = []byte("[]")
		}
		if q.Metadata == nil {
			metadata = []byte("{}")
		}
		_, err = tx.Exec(
			`INSERT INTO bank_questions
			 (bank_id, position, question_id, question_type, text, choices, correct_answer,
			  tolerance, points, feedback_correct, feedback_incorrect, metadata)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			bank.ID, i, q.ID, q.Type, q.Text, choices, q.CorrectAnswer,
			q.Tolerance, q.Points, q.FeedbackCorrect, q.FeedbackIncorrect, metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("insert question %q: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit save bank: %w", err)
	}
	return &bank, nil
}

func (s *Store) GetBank(bankID int64) (*models.Bank, error) {
	var bank models.Bank
	err := s.db.QueryRow(
		`SELECT id, name, subject, format_version, created_date, question_count, created_at
		 FROM banks WHERE id = $1`,
		bankID,
	).Scan(&bank.ID, &bank.Name, &bank.Subject, &bank.FormatVersion, &bank.CreatedDate,
		&bank.QuestionCount, &bank.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get bank: %w", err)
	}
	return &bank, nil
}

func (s *Store) ListBanks(limit, offset int) ([]models.Bank, error) {
	rows, err := s.db.Query(
		`SELECT id, name, subject, format_version, created_date, question_count, created_at
		 FROM banks ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list banks: %w", err)
	}
	defer rows.Close()

	var banks []models.Bank
	for rows.Next() {
		var b models.Bank
		if err := rows.Scan(&b.ID, &b.Name, &b.Subject, &b.FormatVersion, &b.CreatedDate,
			&b.QuestionCount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bank: %w", err)
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

// LoadCollection reads a bank back into the plain collection value the core
// pipeline consumes.
func (s *Store) LoadCollection(bankID int64) (models.Collection, error) {
	bank, err := s.GetBank(bankID)
	if err != nil {
		return models.Collection{}, err
	}

	rows, err := s.db.Query(
		`SELECT question_id, question_type, text, choices, correct_answer,
		        tolerance, points, feedback_correct, feedback_incorrect, metadata
		 FROM bank_questions WHERE bank_id = $1 ORDER BY position`,
		bankID,
	)
	if err != nil {
		return models.Collection{}, fmt.Errorf("load bank questions: %w", err)
	}
	defer rows.Close()

	col := models.Collection{Metadata: models.CollectionMetadata{
		Subject:       bank.Subject,
		FormatVersion: bank.FormatVersion,
		CreatedDate:   bank.CreatedDate,
	}}
	for rows.Next() {
		var q models.Question
		var choices, metadata []byte
		if err := rows.Scan(&q.ID, &q.Type, &q.Text, &choices, &q.CorrectAnswer,
			&q.Tolerance, &q.Points, &q.FeedbackCorrect, &q.FeedbackIncorrect, &metadata); err != nil {
			return models.Collection{}, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(choices, &q.Choices); err != nil {
			return models.Collection{}, fmt.Errorf("decode choices for %q: %w", q.ID, err)
		}
		if err := json.Unmarshal(metadata, &q.Metadata); err != nil {
			return models.Collection{}, fmt.Errorf("decode metadata for %q: %w", q.ID, err)
		}
		col.Questions = append(col.Questions, q)
	}
	return col, rows.Err()
}

// ── Merge Audit Trail ───────────────────────────────────

func (s *Store) SaveMergeRecords(bankID int64, conflicts []models.ConflictRecord) error {
	for _, c := range conflicts {
		_, err := s.db.Exec(
			`INSERT INTO merge_records (bank_id, source_index, original_id, final_id)
			 VALUES ($1, $2, $3, $4)`,
			bankID, c.SourceIndex, c.OriginalID, c.FinalID,
		)
		if err != nil {
			return fmt.Errorf("save merge record: %w", err)
		}
	}
	return nil
}

func (s *Store) GetMergeRecords(bankID int64) ([]models.ConflictRecord, error) {
	rows, err := s.db.Query(
		`SELECT source_index, original_id, final_id
		 FROM merge_records WHERE bank_id = $1 ORDER BY id`,
		bankID,
	)
	if err != nil {
		return nil, fmt.Errorf("get merge records: %w", err)
	}
	defer rows.Close()

	var records []models.ConflictRecord
	for rows.Next() {
		var r models.ConflictRecord
		if err := rows.Scan(&r.SourceIndex, &r.OriginalID, &r.FinalID); err != nil {
			return nil, fmt.Errorf("scan merge record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
