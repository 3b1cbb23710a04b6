package models

import "time"

// Bank is a persisted question collection: one imported source file or the
// result of merging several banks.
type Bank struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Subject       string    `json:"subject,omitempty"`
	FormatVersion string    `json:"format_version,omitempty"`
	CreatedDate   string    `json:"created_date,omitempty"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ── Request Types ─────────────────────────────────────

type ImportBankRequest struct {
	Name    string `json:"name"`
	Payload string `json:"payload"`
}

type MergeBanksRequest struct {
	Name    string  `json:"name"`
	BankIDs []int64 `json:"bank_ids"`
}

// ── Response Types ────────────────────────────────────

type BankListResponse struct {
	Banks []Bank `json:"banks"`
	Total int    `json:"total"`
}

type MergeBanksResponse struct {
	Bank   Bank        `json:"bank"`
	Report MergeReport `json:"report"`
}

type ErrorResponse struct {
	Error      string      `json:"error"`
	Violations []Violation `json:"violations,omitempty"`
}
