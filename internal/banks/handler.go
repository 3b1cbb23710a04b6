package banks

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/exambank/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ImportBank accepts one portable collection (JSON or YAML payload) and
// stores it as a new bank.
func (h *Handler) ImportBank(w http.ResponseWriter, r *http.Request) {
	var req models.ImportBankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "name is required"})
		return
	}

	bank, err := h.service.ImportBank(req.Name, []byte(req.Payload))
	if err != nil {
		writeImportError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bank)
}

func (h *Handler) ListBanks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := intQueryParam(query, "limit", 20)
	offset := intQueryParam(query, "offset", 0)

	banks, err := h.service.ListBanks(limit, offset)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list banks"})
		return
	}
	writeJSON(w, http.StatusOK, models.BankListResponse{Banks: banks, Total: len(banks)})
}

func (h *Handler) GetBank(w http.ResponseWriter, r *http.Request) {
	bankID, ok := pathID(w, r)
	if !ok {
		return
	}
	bank, err := h.service.GetBank(bankID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Bank not found"})
		return
	}
	writeJSON(w, http.StatusOK, bank)
}

// GetCollection returns a stored bank in the portable authoring format,
// ready to feed back into another import or merge.
func (h *Handler) GetCollection(w http.ResponseWriter, r *http.Request) {
	bankID, ok := pathID(w, r)
	if !ok {
		return
	}
	payload, err := h.service.GetCollection(bankID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Bank not found"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// GetMergeRecords returns the conflict audit trail for a merged bank.
func (h *Handler) GetMergeRecords(w http.ResponseWriter, r *http.Request) {
	bankID, ok := pathID(w, r)
	if !ok {
		return
	}
	records, err := h.service.GetMergeRecords(bankID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load merge records"})
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) MergeBanks(w http.ResponseWriter, r *http.Request) {
	var req models.MergeBanksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "name is required"})
		return
	}
	if len(req.BankIDs) < 2 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "bank_ids must list at least two banks"})
		return
	}

	bank, report, err := h.service.MergeBanks(req.Name, req.BankIDs)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{
				Error:      "Merge blocked by validation failures",
				Violations: verr.Violations,
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Merge failed: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, models.MergeBanksResponse{Bank: *bank, Report: report})
}

// ExportBank streams a built package. QTI exports are zip archives, CSV
// exports plain text; both carry advisory warnings in a response header so
// the body stays raw bytes.
func (h *Handler) ExportBank(w http.ResponseWriter, r *http.Request) {
	bankID, ok := pathID(w, r)
	if !ok {
		return
	}
	format := models.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = models.FormatQTI
	}

	result, err := h.service.ExportBank(bankID, format)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: "Export failed: " + err.Error()})
		return
	}

	if len(result.Warnings) > 0 {
		w.Header().Set("X-Export-Warnings", strconv.Itoa(len(result.Warnings)))
	}
	switch format {
	case models.FormatQTI:
		w.Header().Set("Content-Type", "application/zip")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bank_%d_qti.zip"`, bankID))
	case models.FormatCSV:
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="bank_%d.csv"`, bankID))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(result.Bytes)
}

func writeImportError(w http.ResponseWriter, err error) {
	var serr *models.StructuralError
	if errors.As(err, &serr) {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: serr.Error()})
		return
	}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:      "Import blocked by validation failures",
			Violations: verr.Violations,
		})
		return
	}
	writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Import failed: " + err.Error()})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["bank_id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid bank id"})
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}
