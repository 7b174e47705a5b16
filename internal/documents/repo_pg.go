package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const uniqueViolation = "23505"

const documentColumns = `
id, user_id, filename, original_filename, document_type, description,
file_path, file_size, content_hash, mime_type, status,
processing_started_at, processing_completed_at, processing_error,
analysis_results, confidence_score, extracted_text,
is_password_protected, password_required, tags, is_archived,
created_at, updated_at`

// Create inserts a new document. A per-owner (user_id, content_hash) unique
// index may reject byte-identical re-uploads; that surfaces as ErrDuplicate.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id, user_id, filename, original_filename, document_type, description,
    file_path, file_size, content_hash, mime_type, status,
    processing_started_at, processing_completed_at, processing_error,
    analysis_results, confidence_score, extracted_text,
    is_password_protected, password_required, tags, is_archived,
    created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`

	results, tags, err := marshalJSONFields(doc)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(ctx, query,
		doc.ID,
		doc.UserID,
		doc.Filename,
		orDefault(doc.OriginalFilename, doc.Filename),
		string(doc.DocumentType),
		nullString(doc.Description),
		doc.FilePath,
		doc.FileSize,
		doc.ContentHash,
		doc.MimeType,
		string(doc.Status),
		doc.ProcessingStartedAt,
		doc.ProcessingCompletedAt,
		nullString(doc.ProcessingError),
		results,
		doc.ConfidenceScore,
		nullString(doc.ExtractedText),
		doc.IsPasswordProtected,
		doc.PasswordRequired,
		tags,
		doc.IsArchived,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetByID fetches one document scoped to its owner.
func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 AND id = $2 LIMIT 1`
	return scanDocument(r.DB.QueryRowContext(ctx, query, userID, id))
}

// Update persists mutated lifecycle fields.
func (r *PGRepo) Update(ctx context.Context, doc Document) error {
	const query = `
UPDATE documents SET
    filename = $3,
    document_type = $4,
    description = $5,
    status = $6,
    processing_started_at = $7,
    processing_completed_at = $8,
    processing_error = $9,
    analysis_results = $10,
    confidence_score = $11,
    extracted_text = $12,
    tags = $13,
    is_archived = $14,
    updated_at = $15
WHERE user_id = $1 AND id = $2`

	results, tags, err := marshalJSONFields(doc)
	if err != nil {
		return err
	}

	res, err := r.DB.ExecContext(ctx, query,
		doc.UserID,
		doc.ID,
		doc.Filename,
		string(doc.DocumentType),
		nullString(doc.Description),
		string(doc.Status),
		doc.ProcessingStartedAt,
		doc.ProcessingCompletedAt,
		nullString(doc.ProcessingError),
		results,
		doc.ConfidenceScore,
		nullString(doc.ExtractedText),
		tags,
		doc.IsArchived,
		doc.UpdatedAt,
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record. The storage artifact is the service's problem.
func (r *PGRepo) Delete(ctx context.Context, userID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM documents WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser lists documents newest-first with optional filters.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, f ListFilter) ([]Document, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	skip := f.Skip
	if skip < 0 {
		skip = 0
	}

	var conds []string
	args := []any{userID}
	conds = append(conds, "user_id = $1")
	if !f.IncludeArchived {
		conds = append(conds, "is_archived = FALSE")
	}
	if f.Type != "" {
		args = append(args, string(f.Type))
		conds = append(conds, fmt.Sprintf("document_type = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	args = append(args, limit, skip)

	query := `SELECT ` + documentColumns + `
FROM documents
WHERE ` + strings.Join(conds, " AND ") + `
ORDER BY created_at DESC
LIMIT $` + fmt.Sprint(len(args)-1) + ` OFFSET $` + fmt.Sprint(len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// FindByHash is the per-owner deduplication lookup.
func (r *PGRepo) FindByHash(ctx context.Context, userID, contentHash string) (Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE user_id = $1 AND content_hash = $2 LIMIT 1`
	return scanDocument(r.DB.QueryRowContext(ctx, query, userID, contentHash))
}

// StatsByUser aggregates counts and total bytes in one pass.
func (r *PGRepo) StatsByUser(ctx context.Context, userID string) (Stats, error) {
	const query = `
SELECT
    COUNT(*),
    COALESCE(SUM(file_size), 0),
    COUNT(*) FILTER (WHERE status = 'uploaded'),
    COUNT(*) FILTER (WHERE status = 'processing'),
    COUNT(*) FILTER (WHERE status = 'completed'),
    COUNT(*) FILTER (WHERE status = 'failed'),
    COUNT(*) FILTER (WHERE is_archived)
FROM documents
WHERE user_id = $1`

	stats := Stats{ByType: make(map[DocumentType]int)}
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&stats.TotalDocuments,
		&stats.TotalSizeBytes,
		&stats.Uploaded,
		&stats.Processing,
		&stats.Completed,
		&stats.Failed,
		&stats.Archived,
	)
	if err != nil {
		return Stats{}, err
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT document_type, COUNT(*) FROM documents WHERE user_id = $1 GROUP BY document_type`, userID)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var docType string
		var count int
		if err := rows.Scan(&docType, &count); err != nil {
			return Stats{}, err
		}
		stats.ByType[DocumentType(docType)] = count
	}
	return stats, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var description, processingError, extractedText sql.NullString
	var startedAt, completedAt sql.NullTime
	var confidence sql.NullFloat64
	var docType, status string
	var results, tags []byte

	err := row.Scan(
		&doc.ID,
		&doc.UserID,
		&doc.Filename,
		&doc.OriginalFilename,
		&docType,
		&description,
		&doc.FilePath,
		&doc.FileSize,
		&doc.ContentHash,
		&doc.MimeType,
		&status,
		&startedAt,
		&completedAt,
		&processingError,
		&results,
		&confidence,
		&extractedText,
		&doc.IsPasswordProtected,
		&doc.PasswordRequired,
		&tags,
		&doc.IsArchived,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}

	doc.DocumentType = DocumentType(docType)
	doc.Status = Status(status)
	if description.Valid {
		doc.Description = description.String
	}
	if processingError.Valid {
		doc.ProcessingError = processingError.String
	}
	if extractedText.Valid {
		doc.ExtractedText = extractedText.String
	}
	if startedAt.Valid {
		t := startedAt.Time
		doc.ProcessingStartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		doc.ProcessingCompletedAt = &t
	}
	if confidence.Valid {
		v := confidence.Float64
		doc.ConfidenceScore = &v
	}
	if len(results) > 0 {
		if err := json.Unmarshal(results, &doc.AnalysisResults); err != nil {
			return Document{}, fmt.Errorf("decode analysis results: %w", err)
		}
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &doc.Tags); err != nil {
			return Document{}, fmt.Errorf("decode tags: %w", err)
		}
	}
	return doc, nil
}

func marshalJSONFields(doc Document) (results, tags []byte, err error) {
	resultsMap := doc.AnalysisResults
	if resultsMap == nil {
		resultsMap = map[string]any{}
	}
	results, err = json.Marshal(resultsMap)
	if err != nil {
		return nil, nil, fmt.Errorf("encode analysis results: %w", err)
	}
	tagList := doc.Tags
	if tagList == nil {
		tagList = []string{}
	}
	tags, err = json.Marshal(tagList)
	if err != nil {
		return nil, nil, fmt.Errorf("encode tags: %w", err)
	}
	return results, tags, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

var _ Repo = (*PGRepo)(nil)
