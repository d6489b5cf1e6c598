package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/document-analyzer-api/internal/models"
	"github.com/BerylCAtieno/document-analyzer-api/internal/services"
	"github.com/BerylCAtieno/document-analyzer-api/internal/utils"
)

type DocumentHandler struct {
	service     services.DocumentService
	maxFileSize int64
	logger      *utils.Logger
}

func NewDocumentHandler(service services.DocumentService, maxFileSize int64, logger *utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		service:     service,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	// Reject oversized requests before reading the body.
	if r.ContentLength > h.maxFileSize {
		respondError(w, h.logger, utils.NewPayloadTooLargeError("File exceeds the upload size limit"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			respondError(w, h.logger, utils.NewPayloadTooLargeError("File exceeds the upload size limit"))
			return
		}
		respondError(w, h.logger, utils.NewBadRequestError("Invalid form data"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		respondError(w, h.logger, utils.NewInternalError("Failed to read file"))
		return
	}

	if int64(len(data)) > h.maxFileSize {
		respondError(w, h.logger, utils.NewPayloadTooLargeError("File exceeds the upload size limit"))
		return
	}

	if len(data) == 0 {
		respondError(w, h.logger, utils.NewBadRequestError("Uploaded file is empty"))
		return
	}

	doc, err := h.service.UploadDocument(r.Context(), &models.UploadRequest{
		File:     data,
		Filename: header.Filename,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.service.ListDocuments(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}

	respondJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	doc, err := h.service.GetDocument(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.service.DeleteDocument(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, models.DeleteResponse{Message: "Document deleted successfully"})
}

func (h *DocumentHandler) UpdateTags(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.TagUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid request body"))
		return
	}

	if err := h.service.UpdateTags(r.Context(), id, req.Tags); err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, models.DeleteResponse{Message: "Tags updated successfully"})
}

func (h *DocumentHandler) SearchDocuments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		respondError(w, h.logger, utils.NewBadRequestError("Query parameter is required"))
		return
	}

	docs, err := h.service.SearchDocuments(r.Context(), query)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if docs == nil {
		docs = []*models.Document{}
	}

	respondJSON(w, http.StatusOK, docs)
}
