package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/BerylCAtieno/document-analyzer-api/internal/utils"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, logger *utils.Logger, err error) {
	var status int
	var message string

	switch e := err.(type) {
	case *utils.AppError:
		status = e.StatusCode
		message = e.Message
	default:
		status = http.StatusInternalServerError
		message = "Internal server error"
	}

	logger.Error("Request error", "status", status, "error", message)

	respondJSON(w, status, map[string]string{"error": message})
}
