package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/document-analyzer-api/internal/handlers"
	"github.com/BerylCAtieno/document-analyzer-api/internal/metrics"
	"github.com/BerylCAtieno/document-analyzer-api/internal/middleware"
	"github.com/BerylCAtieno/document-analyzer-api/internal/utils"
)

type Deps struct {
	Documents     *handlers.DocumentHandler
	Analysis      *handlers.AnalysisHandler
	Conversations *handlers.ConversationHandler
	Metrics       *metrics.Metrics
	Logger        *utils.Logger
}

func New(deps Deps) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Metrics(deps.Metrics))

	r.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	// Document endpoints; search before {id} so it is not shadowed.
	docs := api.PathPrefix("/documents").Subrouter()
	docs.HandleFunc("/upload", deps.Documents.UploadDocument).Methods(http.MethodPost)
	docs.HandleFunc("/search", deps.Documents.SearchDocuments).Methods(http.MethodGet)
	docs.HandleFunc("", deps.Documents.ListDocuments).Methods(http.MethodGet)
	docs.HandleFunc("/{id}", deps.Documents.GetDocument).Methods(http.MethodGet)
	docs.HandleFunc("/{id}", deps.Documents.DeleteDocument).Methods(http.MethodDelete)
	docs.HandleFunc("/{id}/tags", deps.Documents.UpdateTags).Methods(http.MethodPut)

	// Analysis and conversation endpoints
	analysis := api.PathPrefix("/analysis").Subrouter()
	analysis.HandleFunc("/documents/{id}/analyze", deps.Analysis.AnalyzeDocument).Methods(http.MethodPost)
	analysis.HandleFunc("/documents/{id}/summary/download", deps.Analysis.DownloadSummary).Methods(http.MethodGet)
	analysis.HandleFunc("/documents/{id}/conversations", deps.Conversations.CreateConversation).Methods(http.MethodPost)
	analysis.HandleFunc("/conversations/{id}", deps.Conversations.GetConversation).Methods(http.MethodGet)
	analysis.HandleFunc("/conversations/{id}/messages", deps.Conversations.PostMessage).Methods(http.MethodPost)
	analysis.HandleFunc("/multi-document-qa", deps.Conversations.MultiDocumentQA).Methods(http.MethodPost)
	analysis.HandleFunc("/multi-document-summary", deps.Analysis.MultiDocumentSummary).Methods(http.MethodPost)
	analysis.HandleFunc("/history", deps.Analysis.GetHistory).Methods(http.MethodGet)

	return r
}
