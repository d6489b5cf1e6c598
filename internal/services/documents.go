package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/BerylCAtieno/document-analyzer-api/internal/extractor"
	"github.com/BerylCAtieno/document-analyzer-api/internal/models"
	"github.com/BerylCAtieno/document-analyzer-api/internal/repository"
	"github.com/BerylCAtieno/document-analyzer-api/internal/storage"
	"github.com/BerylCAtieno/document-analyzer-api/internal/utils"
)

type DocumentService interface {
	UploadDocument(ctx context.Context, req *models.UploadRequest) (*models.Document, error)
	ListDocuments(ctx context.Context) ([]*models.Document, error)
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	UpdateTags(ctx context.Context, id string, tags []string) error
	SearchDocuments(ctx context.Context, query string) ([]*models.Document, error)
}

type documentService struct {
	docs     repository.DocumentRepository
	storage  storage.Storage
	analysis AnalysisService
	logger   *utils.Logger
}

func NewDocumentService(docs repository.DocumentRepository, blobStore storage.Storage, analysis AnalysisService, logger *utils.Logger) DocumentService {
	return &documentService{
		docs:     docs,
		storage:  blobStore,
		analysis: analysis,
		logger:   logger,
	}
}

// UploadDocument ingests a file: extract text, persist the blob and the
// record, then kick off analysis in the background. Content is set exactly
// once here and never mutated afterwards.
func (s *documentService) UploadDocument(ctx context.Context, req *models.UploadRequest) (*models.Document, error) {
	format, err := extractor.FormatFromFilename(req.Filename)
	if err != nil {
		s.logger.Warn("Unsupported file type", "filename", req.Filename)
		return nil, utils.NewBadRequestError(fmt.Sprintf("Unsupported file type: %s", req.Filename))
	}

	content, err := extractor.Extract(req.File, format)
	if err != nil {
		s.logger.Warn("Failed to extract text", "error", err, "filename", req.Filename)
		return nil, extractionError(err)
	}

	docID := utils.GenerateID()
	storagePath := fmt.Sprintf("documents/%s/%s", docID, req.Filename)

	if err := s.storage.Upload(ctx, storagePath, req.File, contentTypeFor(format)); err != nil {
		s.logger.Error("Failed to store file", "error", err, "storage_path", storagePath)
		return nil, utils.NewInternalError("Failed to store document file")
	}

	doc := &models.Document{
		ID:          docID,
		Filename:    req.Filename,
		StoragePath: storagePath,
		Format:      format,
		Content:     content,
		Tags:        []string{},
		UploadedAt:  time.Now().UTC(),
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		s.logger.Error("Failed to save document", "error", err, "doc_id", docID)
		// Best-effort blob cleanup.
		_ = s.storage.Delete(ctx, storagePath)
		return nil, utils.NewInternalError("Failed to save document metadata")
	}

	s.logger.Info("Document uploaded",
		"id", docID,
		"filename", req.Filename,
		"format", format,
		"text_length", len(content))

	// Analysis starts automatically; the explicit analyze endpoint then
	// returns this same row.
	if _, err := s.analysis.TriggerAnalysis(ctx, docID); err != nil {
		s.logger.Error("Failed to start analysis after upload", "error", err, "doc_id", docID)
	}

	result := *doc
	result.Content = ""
	return &result, nil
}

func (s *documentService) ListDocuments(ctx context.Context) ([]*models.Document, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list documents", "error", err)
		return nil, utils.NewInternalError("Failed to list documents")
	}

	return withoutContent(docs), nil
}

func (s *documentService) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get document", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve document")
	}
	if doc == nil {
		return nil, utils.NewNotFoundError("Document not found")
	}

	return doc, nil
}

// DeleteDocument removes the record and, best-effort, the backing file. A
// blob deletion failure never blocks the record deletion.
func (s *documentService) DeleteDocument(ctx context.Context, id string) error {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get document", "error", err, "id", id)
		return utils.NewInternalError("Failed to retrieve document")
	}
	if doc == nil {
		return utils.NewNotFoundError("Document not found")
	}

	if err := s.storage.Delete(ctx, doc.StoragePath); err != nil {
		s.logger.Warn("Failed to delete backing file", "error", err, "storage_path", doc.StoragePath)
	}

	found, err := s.docs.Delete(ctx, id)
	if err != nil {
		s.logger.Error("Failed to delete document", "error", err, "id", id)
		return utils.NewInternalError("Failed to delete document")
	}
	if !found {
		return utils.NewNotFoundError("Document not found")
	}

	s.logger.Info("Document deleted", "id", id)
	return nil
}

func (s *documentService) UpdateTags(ctx context.Context, id string, tags []string) error {
	found, err := s.docs.UpdateTags(ctx, id, tags)
	if err != nil {
		s.logger.Error("Failed to update tags", "error", err, "id", id)
		return utils.NewInternalError("Failed to update tags")
	}
	if !found {
		return utils.NewNotFoundError("Document not found")
	}

	return nil
}

// SearchDocuments unions case-insensitive content matches with tag substring
// matches, de-duplicated by document identity.
func (s *documentService) SearchDocuments(ctx context.Context, query string) ([]*models.Document, error) {
	contentMatches, err := s.docs.SearchByContent(ctx, query)
	if err != nil {
		s.logger.Error("Content search failed", "error", err, "query", query)
		return nil, utils.NewInternalError("Search failed")
	}

	all, err := s.docs.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list documents for tag search", "error", err)
		return nil, utils.NewInternalError("Search failed")
	}

	seen := make(map[string]bool, len(contentMatches))
	results := make([]*models.Document, 0, len(contentMatches))
	for _, doc := range contentMatches {
		seen[doc.ID] = true
		results = append(results, doc)
	}

	lowered := strings.ToLower(query)
	for _, doc := range all {
		if seen[doc.ID] {
			continue
		}
		for _, tag := range doc.Tags {
			if strings.Contains(strings.ToLower(tag), lowered) {
				results = append(results, doc)
				break
			}
		}
	}

	return withoutContent(results), nil
}

func withoutContent(docs []*models.Document) []*models.Document {
	out := make([]*models.Document, 0, len(docs))
	for _, doc := range docs {
		trimmed := *doc
		trimmed.Content = ""
		out = append(out, &trimmed)
	}
	return out
}

func extractionError(err error) error {
	switch {
	case errors.Is(err, extractor.ErrUnsupportedFormat):
		return utils.NewBadRequestError("Only PDF, DOCX and TXT files are supported")
	case errors.Is(err, extractor.ErrCorruptFile):
		return utils.NewBadRequestError("The file appears to be corrupted and could not be read")
	case errors.Is(err, extractor.ErrEncoding):
		return utils.NewBadRequestError("The text file is not valid UTF-8")
	case errors.Is(err, extractor.ErrEmptyDocument):
		return utils.NewBadRequestError("No text could be extracted from the document")
	default:
		return utils.NewInternalError("Failed to extract text from document")
	}
}

func contentTypeFor(format string) string {
	switch format {
	case models.FormatPDF:
		return "application/pdf"
	case models.FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "text/plain"
	}
}
