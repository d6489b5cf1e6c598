package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BerylCAtieno/document-analyzer-api/internal/analyzer"
	"github.com/BerylCAtieno/document-analyzer-api/internal/models"
	"github.com/BerylCAtieno/document-analyzer-api/internal/orchestrator"
	"github.com/BerylCAtieno/document-analyzer-api/internal/repository"
	"github.com/BerylCAtieno/document-analyzer-api/internal/utils"
)

type AnalysisService interface {
	TriggerAnalysis(ctx context.Context, documentID string) (*models.Analysis, error)
	GetHistory(ctx context.Context) ([]*models.HistoryEntry, error)
	MultiDocumentSummary(ctx context.Context, documentIDs []string) (*models.MultiDocumentSummaryResponse, error)
	SummaryDownload(ctx context.Context, documentID string) (filename, content string, err error)
}

type analysisService struct {
	docs     repository.DocumentRepository
	analyses repository.AnalysisRepository
	runner   *orchestrator.Runner
	analyzer analyzer.Analyzer
	logger   *utils.Logger
}

func NewAnalysisService(docs repository.DocumentRepository, analyses repository.AnalysisRepository, runner *orchestrator.Runner, a analyzer.Analyzer, logger *utils.Logger) AnalysisService {
	return &analysisService{
		docs:     docs,
		analyses: analyses,
		runner:   runner,
		analyzer: a,
		logger:   logger,
	}
}

// TriggerAnalysis is idempotent: a document that already has an analysis gets
// that row back unchanged, whatever state it is in. Otherwise a placeholder
// row is created and the work queued.
func (s *analysisService) TriggerAnalysis(ctx context.Context, documentID string) (*models.Analysis, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		s.logger.Error("Failed to get document", "error", err, "id", documentID)
		return nil, utils.NewInternalError("Failed to retrieve document")
	}
	if doc == nil {
		return nil, utils.NewNotFoundError("Document not found")
	}

	existing, err := s.analyses.GetByDocumentID(ctx, documentID)
	if err != nil {
		s.logger.Error("Failed to look up analysis", "error", err, "document_id", documentID)
		return nil, utils.NewInternalError("Failed to look up analysis")
	}
	if existing != nil {
		return existing, nil
	}

	analysis := &models.Analysis{
		ID:         utils.GenerateID(),
		DocumentID: documentID,
		Summary:    models.AnalysisPlaceholder,
		KeyTopics:  []string{},
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.analyses.Create(ctx, analysis); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Lost the race against a concurrent trigger; the winner's row
			// is the analysis for this document.
			winner, err := s.analyses.GetByDocumentID(ctx, documentID)
			if err != nil || winner == nil {
				s.logger.Error("Failed to read winning analysis after conflict", "error", err, "document_id", documentID)
				return nil, utils.NewInternalError("Failed to trigger analysis")
			}
			return winner, nil
		}
		s.logger.Error("Failed to create analysis", "error", err, "document_id", documentID)
		return nil, utils.NewInternalError("Failed to trigger analysis")
	}

	job := orchestrator.Job{
		AnalysisID:   analysis.ID,
		DocumentID:   documentID,
		DocumentText: doc.Content,
		EnqueuedAt:   time.Now(),
	}

	if err := s.runner.Enqueue(job); err != nil {
		// No retry path exists, so an unqueueable analysis goes terminal
		// right away instead of staying in-progress forever.
		s.logger.Error("Failed to enqueue analysis", "error", err, "analysis_id", analysis.ID)
		analysis.Summary = models.AnalysisFailedPrefix + err.Error()
		if updateErr := s.analyses.UpdateSummary(ctx, analysis.ID, analysis.Summary); updateErr != nil {
			s.logger.Error("Failed to persist enqueue failure", "error", updateErr, "analysis_id", analysis.ID)
		}
	}

	return analysis, nil
}

func (s *analysisService) GetHistory(ctx context.Context) ([]*models.HistoryEntry, error) {
	entries, err := s.analyses.ListHistory(ctx)
	if err != nil {
		s.logger.Error("Failed to list history", "error", err)
		return nil, utils.NewInternalError("Failed to list analysis history")
	}

	if entries == nil {
		entries = []*models.HistoryEntry{}
	}
	return entries, nil
}

// MultiDocumentSummary summarizes several documents as one combined text.
// Gateway failures are embedded in the summary, not surfaced as HTTP errors.
func (s *analysisService) MultiDocumentSummary(ctx context.Context, documentIDs []string) (*models.MultiDocumentSummaryResponse, error) {
	docs, err := s.docs.ListByIDs(ctx, documentIDs)
	if err != nil {
		s.logger.Error("Failed to load documents", "error", err)
		return nil, utils.NewInternalError("Failed to load documents")
	}
	if len(docs) == 0 {
		return nil, utils.NewNotFoundError("No documents found")
	}

	combined := combineDocuments(docs)

	result, err := s.analyzer.AnalyzeDocument(ctx, combined)
	if err != nil {
		s.logger.Error("Multi-document summary failed", "error", err, "documents", len(docs))
		return &models.MultiDocumentSummaryResponse{
			Summary: fmt.Sprintf("Error generating summary: %v", err),
		}, nil
	}

	return &models.MultiDocumentSummaryResponse{Summary: result.Summary}, nil
}

// SummaryDownload renders an analysis as a downloadable text file named
// after the source document.
func (s *analysisService) SummaryDownload(ctx context.Context, documentID string) (string, string, error) {
	analysis, err := s.analyses.GetByDocumentID(ctx, documentID)
	if err != nil {
		s.logger.Error("Failed to look up analysis", "error", err, "document_id", documentID)
		return "", "", utils.NewInternalError("Failed to look up analysis")
	}
	if analysis == nil {
		return "", "", utils.NewNotFoundError("Analysis not found for this document")
	}

	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		s.logger.Error("Failed to get document", "error", err, "id", documentID)
		return "", "", utils.NewInternalError("Failed to retrieve document")
	}
	if doc == nil {
		return "", "", utils.NewNotFoundError("Document not found")
	}

	var sb strings.Builder
	sb.WriteString(analysis.Summary)
	if len(analysis.KeyTopics) > 0 {
		sb.WriteString("\n\nKEY TOPICS:\n")
		for _, topic := range analysis.KeyTopics {
			sb.WriteString("- ")
			sb.WriteString(topic)
			sb.WriteString("\n")
		}
	}

	base := doc.Filename
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	filename := base + "_summary.txt"

	return filename, sb.String(), nil
}

// combineDocuments labels and joins multiple documents' content for
// cross-document prompts.
func combineDocuments(docs []*models.Document) string {
	parts := make([]string, 0, len(docs))
	for _, doc := range docs {
		parts = append(parts, fmt.Sprintf("Document: %s\n%s", doc.Filename, doc.Content))
	}
	return strings.Join(parts, "\n\n---\n\n")
}
