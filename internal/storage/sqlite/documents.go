package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fyrsmithlabs/folio/internal/storage"
)

const documentColumns = `id, filename, content_type, size_bytes, checksum, status, text, word_count,
  page_count, summary, insights, chunk_count, error, created_at, updated_at`

func scanDocument(row rowScanner) (storage.KnowledgeDocument, error) {
	var d storage.KnowledgeDocument
	var status, insights string
	var created, updated int64
	err := row.Scan(&d.ID, &d.Filename, &d.ContentType, &d.SizeBytes, &d.Checksum, &status, &d.Text,
		&d.WordCount, &d.PageCount, &d.Summary, &insights, &d.ChunkCount, &d.Error, &created, &updated)
	if err != nil {
		return d, err
	}
	d.Status = storage.DocumentStatus(status)
	if insights != "" {
		if err := json.Unmarshal([]byte(insights), &d.Insights); err != nil {
			return d, fmt.Errorf("decode insights for %s: %w", d.ID, err)
		}
	}
	d.CreatedAt, d.UpdatedAt = fromMillis(created), fromMillis(updated)
	return d, nil
}

func encodeInsights(in storage.DocumentInsights) (string, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("encode insights: %w", err)
	}
	return string(b), nil
}

// CreateDocument inserts a knowledge document. Checksums are unique so the
// same file cannot be ingested twice.
func (s *Store) CreateDocument(ctx context.Context, d storage.KnowledgeDocument) (storage.KnowledgeDocument, error) {
	if err := s.ready(ctx); err != nil {
		return d, err
	}
	d.ID = newID(d.ID)
	if d.Status == "" {
		d.Status = storage.DocumentProcessing
	}
	d.CreatedAt, d.UpdatedAt = stamp(d.CreatedAt, d.UpdatedAt, s.now())
	insights, err := encodeInsights(d.Insights)
	if err != nil {
		return d, err
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO knowledge_documents (`+documentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Filename, d.ContentType, d.SizeBytes, d.Checksum, string(d.Status), d.Text, d.WordCount,
		d.PageCount, d.Summary, insights, d.ChunkCount, d.Error, toMillis(d.CreatedAt), toMillis(d.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return d, storage.ErrAlreadyExists
		}
		return d, fmt.Errorf("create knowledge document: %w", err)
	}
	return d, nil
}

// UpdateDocument writes the pipeline results of a document.
func (s *Store) UpdateDocument(ctx context.Context, d storage.KnowledgeDocument) (storage.KnowledgeDocument, error) {
	if err := s.ready(ctx); err != nil {
		return d, err
	}
	insights, err := encodeInsights(d.Insights)
	if err != nil {
		return d, err
	}
	d.UpdatedAt = s.now()
	err = s.execAffectingOne(ctx, "update knowledge document",
		`UPDATE knowledge_documents SET status = ?, text = ?, word_count = ?, page_count = ?, summary = ?,
		   insights = ?, chunk_count = ?, error = ?, updated_at = ?
		 WHERE id = ?`,
		string(d.Status), d.Text, d.WordCount, d.PageCount, d.Summary, insights, d.ChunkCount, d.Error,
		toMillis(d.UpdatedAt), d.ID,
	)
	return d, err
}

// GetDocument returns a document by id.
func (s *Store) GetDocument(ctx context.Context, id string) (storage.KnowledgeDocument, error) {
	if err := s.ready(ctx); err != nil {
		return storage.KnowledgeDocument{}, err
	}
	d, err := scanDocument(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM knowledge_documents WHERE id = ?`, id))
	return d, notFound(err)
}

// GetDocumentByChecksum returns the document with the given content hash.
func (s *Store) GetDocumentByChecksum(ctx context.Context, checksum string) (storage.KnowledgeDocument, error) {
	if err := s.ready(ctx); err != nil {
		return storage.KnowledgeDocument{}, err
	}
	d, err := scanDocument(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM knowledge_documents WHERE checksum = ?`, checksum))
	return d, notFound(err)
}

// ListDocuments returns documents newest first, optionally by status.
func (s *Store) ListDocuments(ctx context.Context, status storage.DocumentStatus) ([]storage.KnowledgeDocument, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	query := `SELECT ` + documentColumns + ` FROM knowledge_documents`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list knowledge documents: %w", err)
	}
	defer rows.Close()

	out := []storage.KnowledgeDocument{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan knowledge document: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDocument removes a document row.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.execAffectingOne(ctx, "delete knowledge document", `DELETE FROM knowledge_documents WHERE id = ?`, id)
}
