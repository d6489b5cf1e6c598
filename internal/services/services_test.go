package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/BerylCAtieno/document-analyzer-api/internal/analyzer"
	"github.com/BerylCAtieno/document-analyzer-api/internal/models"
	"github.com/BerylCAtieno/document-analyzer-api/internal/repository"
	"github.com/BerylCAtieno/document-analyzer-api/internal/utils"
)

// In-memory fakes for the repository interfaces, shared by the service tests.

type fakeDocumentRepo struct {
	mu   sync.Mutex
	docs map[string]*models.Document
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[string]*models.Document)}
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *models.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, id string) (*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, nil
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeDocumentRepo) List(_ context.Context) ([]*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Document
	for _, doc := range r.docs {
		copied := *doc
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeDocumentRepo) ListByIDs(_ context.Context, ids []string) ([]*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Document
	for _, id := range ids {
		if doc, ok := r.docs[id]; ok {
			copied := *doc
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) SearchByContent(_ context.Context, query string) ([]*models.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Document
	for _, doc := range r.docs {
		if containsFold(doc.Content, query) {
			copied := *doc
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) UpdateTags(_ context.Context, id string, tags []string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return false, nil
	}
	doc.Tags = tags
	return true, nil
}

func (r *fakeDocumentRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return false, nil
	}
	delete(r.docs, id)
	return true, nil
}

type fakeAnalysisRepo struct {
	mu         sync.Mutex
	byID       map[string]*models.Analysis
	byDocument map[string]*models.Analysis
	history    []*models.HistoryEntry
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{
		byID:       make(map[string]*models.Analysis),
		byDocument: make(map[string]*models.Analysis),
	}
}

func (r *fakeAnalysisRepo) Create(_ context.Context, analysis *models.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byDocument[analysis.DocumentID]; exists {
		return fmt.Errorf("%w: analysis for document %s", repository.ErrConflict, analysis.DocumentID)
	}
	copied := *analysis
	r.byID[analysis.ID] = &copied
	r.byDocument[analysis.DocumentID] = &copied
	return nil
}

func (r *fakeAnalysisRepo) GetByID(_ context.Context, id string) (*models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	analysis, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *analysis
	return &copied, nil
}

func (r *fakeAnalysisRepo) GetByDocumentID(_ context.Context, documentID string) (*models.Analysis, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	analysis, ok := r.byDocument[documentID]
	if !ok {
		return nil, nil
	}
	copied := *analysis
	return &copied, nil
}

func (r *fakeAnalysisRepo) UpdateResult(_ context.Context, id, summary string, keyTopics []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if analysis, ok := r.byID[id]; ok {
		analysis.Summary = summary
		analysis.KeyTopics = keyTopics
	}
	return nil
}

func (r *fakeAnalysisRepo) UpdateSummary(_ context.Context, id, summary string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if analysis, ok := r.byID[id]; ok {
		analysis.Summary = summary
	}
	return nil
}

func (r *fakeAnalysisRepo) ListHistory(context.Context) ([]*models.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history, nil
}

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*models.Conversation
	messages      []*models.Message
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[string]*models.Conversation)}
}

func (r *fakeConversationRepo) Create(_ context.Context, conversation *models.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *conversation
	r.conversations[conversation.ID] = &copied
	return nil
}

func (r *fakeConversationRepo) GetByID(_ context.Context, id string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conversation, ok := r.conversations[id]
	if !ok {
		return nil, nil
	}
	copied := *conversation
	return &copied, nil
}

func (r *fakeConversationRepo) CreateMessage(_ context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *message
	r.messages = append(r.messages, &copied)
	return nil
}

func (r *fakeConversationRepo) ListMessages(_ context.Context, conversationID string) ([]*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Message
	for _, message := range r.messages {
		if message.ConversationID != nil && *message.ConversationID == conversationID {
			copied := *message
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeBlobStore struct {
	mu        sync.Mutex
	blobs     map[string][]byte
	deleteErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (s *fakeBlobStore) Upload(_ context.Context, key string, data []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

func (s *fakeBlobStore) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return data, nil
}

func (s *fakeBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.blobs, key)
	return nil
}

type stubAnalyzer struct {
	result    *analyzer.Result
	answer    string
	err       error
	questions []string
	contexts  []string
}

func (a *stubAnalyzer) AnalyzeDocument(_ context.Context, text string) (*analyzer.Result, error) {
	a.contexts = append(a.contexts, text)
	if a.err != nil {
		return nil, a.err
	}
	if a.result != nil {
		return a.result, nil
	}
	return &analyzer.Result{Summary: "stub summary", KeyTopics: []string{"stub"}}, nil
}

func (a *stubAnalyzer) AnswerQuestion(_ context.Context, question, documentText string) (string, error) {
	a.questions = append(a.questions, question)
	a.contexts = append(a.contexts, documentText)
	if a.err != nil {
		return "", a.err
	}
	if a.answer != "" {
		return a.answer, nil
	}
	return "stub answer", nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func testLogger() *utils.Logger {
	return utils.NewLogger("error")
}

func seedDocument(repo *fakeDocumentRepo, id, filename, content string, tags ...string) *models.Document {
	doc := &models.Document{
		ID:          id,
		Filename:    filename,
		StoragePath: "documents/" + id + "/" + filename,
		Format:      models.FormatTXT,
		Content:     content,
		Tags:        tags,
		UploadedAt:  time.Now().UTC(),
	}
	_ = repo.Create(context.Background(), doc)
	return doc
}
