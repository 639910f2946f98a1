package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/docvault-ai/docvault/internal/core/domain"
)

const documentColumns = `id, filename, mime_type, file_size, storage_path, folder, classification, confidence, extracted_text, tags, entities, status, error_message, created_at, updated_at`

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	tagsJSON, err := json.Marshal(doc.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	entitiesJSON, err := json.Marshal(doc.Entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO documents (
	id, filename, mime_type, file_size, storage_path, folder, classification, confidence, extracted_text, tags, entities, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
`,
		doc.ID, doc.Filename, doc.MimeType, doc.FileSize, doc.StoragePath, doc.Folder,
		doc.Classification, doc.Confidence, doc.ExtractedText, tagsJSON, entitiesJSON,
		string(doc.Status), doc.Error, doc.CreatedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE id = $1
`, id)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (r *DocumentRepository) List(ctx context.Context, filter domain.DocumentFilter, limit, offset int) ([]domain.Document, int, error) {
	where, args := listFilterClause(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM documents` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	query := `SELECT ` + documentColumns + ` FROM documents` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0, limit)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan document row: %w", err)
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate documents: %w", err)
	}
	return out, total, nil
}

func listFilterClause(filter domain.DocumentFilter) (string, []any) {
	var clauses []string
	var args []any
	if filter.Classification != "" {
		args = append(args, filter.Classification)
		clauses = append(clauses, fmt.Sprintf("classification = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireRow(result, domain.ErrDocumentNotFound, "delete document", id)
}

// ClaimForProcessing is the exactly-once gate: only the caller that flips
// pending-to-processing runs the pipeline and, later, workflow evaluation.
func (r *DocumentRepository) ClaimForProcessing(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, updated_at = $3
WHERE id = $1 AND status = $4
`, id, string(domain.StatusProcessing), time.Now().UTC(), string(domain.StatusPending))
	if err != nil {
		return false, fmt.Errorf("claim document: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("claim document rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *DocumentRepository) SaveProcessingResult(ctx context.Context, id string, res domain.ProcessingResult) error {
	entitiesJSON, err := json.Marshal(res.Entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET classification = $2, confidence = $3, extracted_text = $4, entities = $5, status = $6, error_message = '', updated_at = $7
WHERE id = $1
`, id, res.Classification, res.Confidence, res.Text, entitiesJSON, string(domain.StatusProcessed), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save processing result: %w", err)
	}
	return requireRow(result, domain.ErrDocumentNotFound, "save processing result", id)
}

func (r *DocumentRepository) MarkError(ctx context.Context, id string, message string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(domain.StatusError), message, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark document error: %w", err)
	}
	return requireRow(result, domain.ErrDocumentNotFound, "mark document error", id)
}

// MergeTags unions new tags into the JSONB tag array in a single
// statement, so concurrent merges cannot lose updates and re-adding an
// existing tag is a no-op.
func (r *DocumentRepository) MergeTags(ctx context.Context, id string, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET tags = (
	SELECT COALESCE(jsonb_agg(DISTINCT value), '[]'::jsonb)
	FROM jsonb_array_elements_text(tags || $2::jsonb) AS value
), updated_at = $3
WHERE id = $1
`, id, tagsJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("merge tags: %w", err)
	}
	return requireRow(result, domain.ErrDocumentNotFound, "merge tags", id)
}

func (r *DocumentRepository) ReplaceTags(ctx context.Context, id string, tags []string) error {
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET tags = $2, updated_at = $3
WHERE id = $1
`, id, tagsJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("replace tags: %w", err)
	}
	return requireRow(result, domain.ErrDocumentNotFound, "replace tags", id)
}

func (r *DocumentRepository) SetFolder(ctx context.Context, id string, folder string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE documents
SET folder = $2, updated_at = $3
WHERE id = $1
`, id, folder, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set folder: %w", err)
	}
	return requireRow(result, domain.ErrDocumentNotFound, "set folder", id)
}

// SearchCandidates does the coarse ILIKE pass; relevance scoring happens
// in the search use case.
func (r *DocumentRepository) SearchCandidates(ctx context.Context, query domain.SearchQuery) ([]domain.Document, error) {
	pattern := "%" + query.Text + "%"
	args := []any{pattern}
	sqlQuery := `
SELECT ` + documentColumns + `
FROM documents
WHERE (filename ILIKE $1 OR extracted_text ILIKE $1 OR entities::text ILIKE $1)
`
	if query.Classification != "" {
		args = append(args, query.Classification)
		sqlQuery += fmt.Sprintf("AND classification = $%d\n", len(args))
	}
	sqlQuery += "ORDER BY created_at DESC LIMIT 500"

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}
	defer rows.Close()

	var out []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan search candidate: %w", err)
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search candidates: %w", err)
	}
	return out, nil
}

func (r *DocumentRepository) ClassificationStats(ctx context.Context) (*domain.ClassificationStats, error) {
	stats := &domain.ClassificationStats{
		ByClassification: map[string]int{},
		ByStatus:         map[string]int{},
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT COALESCE(NULLIF(classification, ''), 'unclassified'), COUNT(*)
FROM documents
GROUP BY 1
`)
	if err != nil {
		return nil, fmt.Errorf("classification stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("scan classification stat: %w", err)
		}
		stats.ByClassification[label] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate classification stats: %w", err)
	}

	statusRows, err := r.db.QueryContext(ctx, `
SELECT status, COUNT(*)
FROM documents
GROUP BY status
`)
	if err != nil {
		return nil, fmt.Errorf("status stats: %w", err)
	}
	defer statusRows.Close()
	for statusRows.Next() {
		var status string
		var count int
		if err := statusRows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status stat: %w", err)
		}
		stats.ByStatus[status] = count
	}
	if err := statusRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status stats: %w", err)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var tagsRaw, entitiesRaw []byte
	var status string

	err := row.Scan(
		&doc.ID, &doc.Filename, &doc.MimeType, &doc.FileSize, &doc.StoragePath, &doc.Folder,
		&doc.Classification, &doc.Confidence, &doc.ExtractedText, &tagsRaw, &entitiesRaw,
		&status, &doc.Error, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(tagsRaw, &doc.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if err := json.Unmarshal(entitiesRaw, &doc.Entities); err != nil {
		return nil, fmt.Errorf("unmarshal entities: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

func requireRow(result sql.Result, kind error, operation, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if rows == 0 {
		return domain.WrapError(kind, operation, fmt.Errorf("id=%s", id))
	}
	return nil
}
