package services

import (
	"context"
	"time"

	"github.com/BerylCAtieno/document-analyzer-api/internal/analyzer"
	"github.com/BerylCAtieno/document-analyzer-api/internal/models"
	"github.com/BerylCAtieno/document-analyzer-api/internal/repository"
	"github.com/BerylCAtieno/document-analyzer-api/internal/utils"
)

type ConversationService interface {
	CreateConversation(ctx context.Context, documentID string) (*models.Conversation, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	PostMessage(ctx context.Context, conversationID, content string) (*models.Message, error)
	MultiDocumentQA(ctx context.Context, question string, documentIDs []string) (*models.Message, error)
}

type conversationService struct {
	docs          repository.DocumentRepository
	conversations repository.ConversationRepository
	analyzer      analyzer.Analyzer
	logger        *utils.Logger
}

func NewConversationService(docs repository.DocumentRepository, conversations repository.ConversationRepository, a analyzer.Analyzer, logger *utils.Logger) ConversationService {
	return &conversationService{
		docs:          docs,
		conversations: conversations,
		analyzer:      a,
		logger:        logger,
	}
}

func (s *conversationService) CreateConversation(ctx context.Context, documentID string) (*models.Conversation, error) {
	doc, err := s.docs.GetByID(ctx, documentID)
	if err != nil {
		s.logger.Error("Failed to get document", "error", err, "id", documentID)
		return nil, utils.NewInternalError("Failed to retrieve document")
	}
	if doc == nil {
		return nil, utils.NewNotFoundError("Document not found")
	}

	conversation := &models.Conversation{
		ID:         utils.GenerateID(),
		DocumentID: &documentID,
		CreatedAt:  time.Now().UTC(),
		Messages:   []*models.Message{},
	}

	if err := s.conversations.Create(ctx, conversation); err != nil {
		s.logger.Error("Failed to create conversation", "error", err, "document_id", documentID)
		return nil, utils.NewInternalError("Failed to create conversation")
	}

	return conversation, nil
}

func (s *conversationService) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	conversation, err := s.conversations.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get conversation", "error", err, "id", id)
		return nil, utils.NewInternalError("Failed to retrieve conversation")
	}
	if conversation == nil {
		return nil, utils.NewNotFoundError("Conversation not found")
	}

	messages, err := s.conversations.ListMessages(ctx, id)
	if err != nil {
		s.logger.Error("Failed to list messages", "error", err, "conversation_id", id)
		return nil, utils.NewInternalError("Failed to load conversation messages")
	}
	if messages == nil {
		messages = []*models.Message{}
	}
	conversation.Messages = messages

	return conversation, nil
}

// PostMessage persists the user turn durably before any model call and
// always pairs it with an assistant turn: the answer on success, the error
// text on failure. A user message never hangs without a response.
func (s *conversationService) PostMessage(ctx context.Context, conversationID, content string) (*models.Message, error) {
	conversation, err := s.conversations.GetByID(ctx, conversationID)
	if err != nil {
		s.logger.Error("Failed to get conversation", "error", err, "id", conversationID)
		return nil, utils.NewInternalError("Failed to retrieve conversation")
	}
	if conversation == nil {
		return nil, utils.NewNotFoundError("Conversation not found")
	}

	userMessage := &models.Message{
		ID:             utils.GenerateID(),
		ConversationID: &conversationID,
		Content:        content,
		Author:         models.AuthorUser,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.conversations.CreateMessage(ctx, userMessage); err != nil {
		s.logger.Error("Failed to save user message", "error", err, "conversation_id", conversationID)
		return nil, utils.NewInternalError("Failed to save message")
	}

	var documentText string
	if conversation.DocumentID != nil {
		doc, err := s.docs.GetByID(ctx, *conversation.DocumentID)
		if err != nil {
			s.logger.Error("Failed to get document", "error", err, "id", *conversation.DocumentID)
			return nil, utils.NewInternalError("Failed to retrieve document")
		}
		if doc == nil {
			return nil, utils.NewNotFoundError("Document not found")
		}
		documentText = doc.Content
	}

	answer, err := s.analyzer.AnswerQuestion(ctx, content, documentText)
	if err != nil {
		s.logger.Error("Failed to generate answer", "error", err, "conversation_id", conversationID)
		answer = models.AnswerFailedPrefix + err.Error()
	}

	assistantMessage := &models.Message{
		ID:             utils.GenerateID(),
		ConversationID: &conversationID,
		Content:        answer,
		Author:         models.AuthorAssistant,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.conversations.CreateMessage(ctx, assistantMessage); err != nil {
		s.logger.Error("Failed to save assistant message", "error", err, "conversation_id", conversationID)
		return nil, utils.NewInternalError("Failed to save response")
	}

	return assistantMessage, nil
}

// MultiDocumentQA answers across several documents without a conversation
// thread; the result is a standalone message.
func (s *conversationService) MultiDocumentQA(ctx context.Context, question string, documentIDs []string) (*models.Message, error) {
	docs, err := s.docs.ListByIDs(ctx, documentIDs)
	if err != nil {
		s.logger.Error("Failed to load documents", "error", err)
		return nil, utils.NewInternalError("Failed to load documents")
	}
	if len(docs) == 0 {
		return nil, utils.NewNotFoundError("No documents found")
	}

	answer, err := s.analyzer.AnswerQuestion(ctx, question, combineDocuments(docs))
	if err != nil {
		s.logger.Error("Multi-document QA failed", "error", err, "documents", len(docs))
		answer = models.AnswerFailedPrefix + err.Error()
	}

	message := &models.Message{
		ID:             utils.GenerateID(),
		ConversationID: nil,
		Content:        answer,
		Author:         models.AuthorAssistant,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.conversations.CreateMessage(ctx, message); err != nil {
		s.logger.Error("Failed to save standalone message", "error", err)
		return nil, utils.NewInternalError("Failed to save response")
	}

	return message, nil
}
