package models

import (
	"time"
)

// Document formats accepted at upload.
const (
	FormatPDF  = "pdf"
	FormatDOCX = "docx"
	FormatTXT  = "txt"
)

// Message author values as exposed on the wire. Internally messages carry
// the is_user flag; these are its two projections.
const (
	AuthorUser      = "user"
	AuthorAssistant = "assistant"
)

// Sentinel texts written into Analysis records. The placeholder marks an
// in-flight analysis; the failure prefix marks a terminal error state.
const (
	AnalysisPlaceholder   = "Analysis in progress..."
	AnalysisFailedPrefix  = "Analysis failed: "
	AnswerFailedPrefix    = "Error generating response: "
	TopicExtractionFailed = "Topic extraction failed"
)

type Document struct {
	ID          string    `json:"id" db:"id"`
	Filename    string    `json:"filename" db:"filename"`
	StoragePath string    `json:"storage_path" db:"storage_path"`
	Format      string    `json:"format" db:"format"`
	Tags        []string  `json:"tags" db:"-"`
	Content     string    `json:"content,omitempty" db:"content"`
	UploadedAt  time.Time `json:"uploaded_at" db:"uploaded_at"`
}

type Analysis struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"document_id" db:"document_id"`
	Summary    string    `json:"summary" db:"summary"`
	KeyTopics  []string  `json:"key_topics" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type Conversation struct {
	ID         string     `json:"id" db:"id"`
	DocumentID *string    `json:"document_id" db:"document_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	Messages   []*Message `json:"messages,omitempty" db:"-"`
}

type Message struct {
	ID             string    `json:"id" db:"id"`
	ConversationID *string   `json:"conversation_id" db:"conversation_id"`
	Content        string    `json:"content" db:"content"`
	Author         string    `json:"author" db:"-"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type UploadRequest struct {
	File     []byte
	Filename string
}

type DeleteResponse struct {
	Message string `json:"message"`
}

type TagUpdateRequest struct {
	Tags []string `json:"tags"`
}

type MessageRequest struct {
	Content string `json:"content"`
}

type MultiDocumentQARequest struct {
	Question    string   `json:"question"`
	DocumentIDs []string `json:"document_ids"`
}

type MultiDocumentSummaryRequest struct {
	DocumentIDs []string `json:"document_ids"`
}

type MultiDocumentSummaryResponse struct {
	Summary string `json:"summary"`
}

// HistoryEntry pairs an analysis with its owning document's metadata.
type HistoryEntry struct {
	Analysis *Analysis `json:"analysis"`
	Document *Document `json:"document"`
}
