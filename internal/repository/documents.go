package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/BerylCAtieno/document-analyzer-api/internal/models"
)

// ErrConflict is returned when an insert violates a uniqueness constraint.
var ErrConflict = errors.New("record already exists")

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id string) (*models.Document, error)
	List(ctx context.Context) ([]*models.Document, error)
	ListByIDs(ctx context.Context, ids []string) ([]*models.Document, error)
	SearchByContent(ctx context.Context, query string) ([]*models.Document, error)
	UpdateTags(ctx context.Context, id string, tags []string) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) DocumentRepository {
	return &documentRepository{db: db}
}

const documentColumns = `id, filename, storage_path, format, content, tags, uploaded_at`

func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	tagsJSON, err := marshalStrings(doc.Tags)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO documents (id, filename, storage_path, format, content, tags, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		doc.ID,
		doc.Filename,
		doc.StoragePath,
		doc.Format,
		doc.Content,
		tagsJSON,
		doc.UploadedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: storage_path %s", ErrConflict, doc.StoragePath)
	}

	return err
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return doc, nil
}

func (r *documentRepository) List(ctx context.Context) ([]*models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents ORDER BY uploaded_at DESC`
	return r.queryDocuments(ctx, query)
}

func (r *documentRepository) ListByIDs(ctx context.Context, ids []string) ([]*models.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`SELECT `+documentColumns+` FROM documents WHERE id IN (?) ORDER BY uploaded_at`, ids)
	if err != nil {
		return nil, err
	}

	return r.queryDocuments(ctx, r.db.Rebind(query), args...)
}

func (r *documentRepository) SearchByContent(ctx context.Context, query string) ([]*models.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents
		WHERE lower(content) LIKE '%' || lower($1) || '%' ORDER BY uploaded_at DESC`
	return r.queryDocuments(ctx, q, query)
}

func (r *documentRepository) UpdateTags(ctx context.Context, id string, tags []string) (bool, error) {
	tagsJSON, err := marshalStrings(tags)
	if err != nil {
		return false, err
	}

	result, err := r.db.ExecContext(ctx, `UPDATE documents SET tags = $2 WHERE id = $1`, id, tagsJSON)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *documentRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func (r *documentRepository) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]*models.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var doc models.Document
	var tagsJSON string

	err := row.Scan(
		&doc.ID,
		&doc.Filename,
		&doc.StoragePath,
		&doc.Format,
		&doc.Content,
		&tagsJSON,
		&doc.UploadedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.Tags, err = unmarshalStrings(tagsJSON)
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// Tags and topics live as JSON array text in sqlite; the Go models only ever
// see []string.
func marshalStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalStrings(data string) ([]string, error) {
	if data == "" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}
