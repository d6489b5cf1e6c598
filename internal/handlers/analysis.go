package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/document-analyzer-api/internal/models"
	"github.com/BerylCAtieno/document-analyzer-api/internal/services"
	"github.com/BerylCAtieno/document-analyzer-api/internal/utils"
)

type AnalysisHandler struct {
	service services.AnalysisService
	logger  *utils.Logger
}

func NewAnalysisHandler(service services.AnalysisService, logger *utils.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		service: service,
		logger:  logger,
	}
}

// AnalyzeDocument triggers analysis for a document. The response is the
// placeholder row on first trigger, or the existing row on any later one.
func (h *AnalysisHandler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	analysis, err := h.service.TriggerAnalysis(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, analysis)
}

func (h *AnalysisHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.GetHistory(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

func (h *AnalysisHandler) MultiDocumentSummary(w http.ResponseWriter, r *http.Request) {
	var req models.MultiDocumentSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid request body"))
		return
	}

	resp, err := h.service.MultiDocumentSummary(r.Context(), req.DocumentIDs)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// DownloadSummary serves the analysis as a text/plain attachment.
func (h *AnalysisHandler) DownloadSummary(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	filename, content, err := h.service.SummaryDownload(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(content))
}
