package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/BerylCAtieno/document-analyzer-api/internal/models"
)

type AnalysisRepository interface {
	Create(ctx context.Context, analysis *models.Analysis) error
	GetByID(ctx context.Context, id string) (*models.Analysis, error)
	GetByDocumentID(ctx context.Context, documentID string) (*models.Analysis, error)
	UpdateResult(ctx context.Context, id, summary string, keyTopics []string) error
	UpdateSummary(ctx context.Context, id, summary string) error
	ListHistory(ctx context.Context) ([]*models.HistoryEntry, error)
}

type analysisRepository struct {
	db *sqlx.DB
}

func NewAnalysisRepository(db *sqlx.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

// Create inserts a new analysis row. The UNIQUE constraint on document_id
// means the loser of a concurrent trigger gets ErrConflict and should
// re-read the winner's row.
func (r *analysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	topicsJSON, err := marshalStrings(analysis.KeyTopics)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO analyses (id, document_id, summary, key_topics, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = r.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.DocumentID,
		analysis.Summary,
		topicsJSON,
		analysis.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: analysis for document %s", ErrConflict, analysis.DocumentID)
	}

	return err
}

func (r *analysisRepository) GetByID(ctx context.Context, id string) (*models.Analysis, error) {
	return r.getOne(ctx, `SELECT id, document_id, summary, key_topics, created_at FROM analyses WHERE id = $1`, id)
}

func (r *analysisRepository) GetByDocumentID(ctx context.Context, documentID string) (*models.Analysis, error) {
	return r.getOne(ctx, `SELECT id, document_id, summary, key_topics, created_at FROM analyses WHERE document_id = $1`, documentID)
}

func (r *analysisRepository) getOne(ctx context.Context, query, arg string) (*models.Analysis, error) {
	var analysis models.Analysis
	var topicsJSON string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&analysis.ID,
		&analysis.DocumentID,
		&analysis.Summary,
		&topicsJSON,
		&analysis.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	analysis.KeyTopics, err = unmarshalStrings(topicsJSON)
	if err != nil {
		return nil, err
	}

	return &analysis, nil
}

// UpdateResult writes the terminal success state: summary and topics.
func (r *analysisRepository) UpdateResult(ctx context.Context, id, summary string, keyTopics []string) error {
	topicsJSON, err := marshalStrings(keyTopics)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`UPDATE analyses SET summary = $2, key_topics = $3 WHERE id = $1`,
		id, summary, topicsJSON,
	)
	return err
}

// UpdateSummary writes the terminal failure state, leaving key_topics at
// whatever value the row already has.
func (r *analysisRepository) UpdateSummary(ctx context.Context, id, summary string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE analyses SET summary = $2 WHERE id = $1`, id, summary)
	return err
}

// ListHistory returns analyses newest-first joined with their documents. The
// inner join drops analyses whose document is gone.
func (r *analysisRepository) ListHistory(ctx context.Context) ([]*models.HistoryEntry, error) {
	query := `
		SELECT a.id, a.document_id, a.summary, a.key_topics, a.created_at,
		       d.id, d.filename, d.storage_path, d.format, d.tags, d.uploaded_at
		FROM analyses a
		INNER JOIN documents d ON d.id = a.document_id
		ORDER BY a.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.HistoryEntry
	for rows.Next() {
		var analysis models.Analysis
		var doc models.Document
		var topicsJSON, tagsJSON string

		err := rows.Scan(
			&analysis.ID,
			&analysis.DocumentID,
			&analysis.Summary,
			&topicsJSON,
			&analysis.CreatedAt,
			&doc.ID,
			&doc.Filename,
			&doc.StoragePath,
			&doc.Format,
			&tagsJSON,
			&doc.UploadedAt,
		)
		if err != nil {
			return nil, err
		}

		if analysis.KeyTopics, err = unmarshalStrings(topicsJSON); err != nil {
			return nil, err
		}
		if doc.Tags, err = unmarshalStrings(tagsJSON); err != nil {
			return nil, err
		}

		entries = append(entries, &models.HistoryEntry{Analysis: &analysis, Document: &doc})
	}

	return entries, rows.Err()
}
