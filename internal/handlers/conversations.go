package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/document-analyzer-api/internal/models"
	"github.com/BerylCAtieno/document-analyzer-api/internal/services"
	"github.com/BerylCAtieno/document-analyzer-api/internal/utils"
)

type ConversationHandler struct {
	service services.ConversationService
	logger  *utils.Logger
}

func NewConversationHandler(service services.ConversationService, logger *utils.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ConversationHandler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	conversation, err := h.service.CreateConversation(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, conversation)
}

func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	conversation, err := h.service.GetConversation(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, conversation)
}

func (h *ConversationHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid request body"))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		respondError(w, h.logger, utils.NewBadRequestError("Message content is required"))
		return
	}

	message, err := h.service.PostMessage(r.Context(), id, req.Content)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, message)
}

func (h *ConversationHandler) MultiDocumentQA(w http.ResponseWriter, r *http.Request) {
	var req models.MultiDocumentQARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid request body"))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		respondError(w, h.logger, utils.NewBadRequestError("Question is required"))
		return
	}

	message, err := h.service.MultiDocumentQA(r.Context(), req.Question, req.DocumentIDs)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, message)
}
