package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/BerylCAtieno/document-analyzer-api/internal/models"
)

type ConversationRepository interface {
	Create(ctx context.Context, conversation *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error)
}

type conversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepository(db *sqlx.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, conversation *models.Conversation) error {
	query := `INSERT INTO conversations (id, document_id, created_at) VALUES ($1, $2, $3)`

	_, err := r.db.ExecContext(ctx, query,
		conversation.ID,
		conversation.DocumentID,
		conversation.CreatedAt,
	)
	return err
}

func (r *conversationRepository) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	var conversation models.Conversation

	query := `SELECT id, document_id, created_at FROM conversations WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&conversation.ID,
		&conversation.DocumentID,
		&conversation.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &conversation, nil
}

func (r *conversationRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (id, conversation_id, content, is_user, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	isUser := 0
	if message.Author == models.AuthorUser {
		isUser = 1
	}

	_, err := r.db.ExecContext(ctx, query,
		message.ID,
		message.ConversationID,
		message.Content,
		isUser,
		message.CreatedAt,
	)
	return err
}

// ListMessages returns a conversation's messages in creation order.
func (r *conversationRepository) ListMessages(ctx context.Context, conversationID string) ([]*models.Message, error) {
	query := `
		SELECT id, conversation_id, content, is_user, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		var message models.Message
		var isUser int

		err := rows.Scan(
			&message.ID,
			&message.ConversationID,
			&message.Content,
			&isUser,
			&message.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		message.Author = models.AuthorAssistant
		if isUser == 1 {
			message.Author = models.AuthorUser
		}

		messages = append(messages, &message)
	}

	return messages, rows.Err()
}
