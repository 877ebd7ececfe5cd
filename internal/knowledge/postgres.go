package knowledge

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB implements Querier on PostgreSQL + pgvector.
// All statements are parameterized; metadata filters use JSONB
// containment (@>) which is indexed with GIN.
type DB struct {
	pool *pgxpool.Pool
}

// NewDB creates a Querier backed by the given connection pool.
// The pool's lifecycle is owned by the caller.
func NewDB(pool *pgxpool.Pool) *DB {
	return &DB{pool: pool}
}

const insertDocumentSQL = `
INSERT INTO documents (id, content, embedding, metadata, created_at)
VALUES ($1, $2, $3, $4, COALESCE($5, now()))
ON CONFLICT (id) DO NOTHING`

// InsertDocument inserts a document row, skipping existing IDs.
func (db *DB) InsertDocument(ctx context.Context, arg InsertDocumentParams) (bool, error) {
	tag, err := db.pool.Exec(ctx, insertDocumentSQL,
		arg.ID, arg.Content, arg.Embedding, arg.Metadata, arg.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert document: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

const searchDocumentsSQL = `
SELECT id, content, metadata, embedding <=> $1 AS distance
FROM documents
WHERE $2::jsonb IS NULL OR metadata @> $2
ORDER BY embedding <=> $1
LIMIT $3`

// SearchDocuments runs a cosine-distance search with an optional
// metadata containment filter.
func (db *DB) SearchDocuments(ctx context.Context, arg SearchDocumentsParams) ([]SearchDocumentsRow, error) {
	rows, err := db.pool.Query(ctx, searchDocumentsSQL,
		arg.QueryEmbedding, arg.FilterMetadata, arg.ResultLimit)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}
	defer rows.Close()

	var out []SearchDocumentsRow
	for rows.Next() {
		var r SearchDocumentsRow
		if err := rows.Scan(&r.ID, &r.Content, &r.Metadata, &r.Distance); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search rows: %w", err)
	}
	return out, nil
}

const listDocumentsSQL = `
SELECT id, content, metadata
FROM documents
WHERE $1::jsonb IS NULL OR metadata @> $1
ORDER BY created_at, id`

// ListDocuments returns documents matching the metadata filter in
// insertion order.
func (db *DB) ListDocuments(ctx context.Context, filterMetadata []byte) ([]ListDocumentsRow, error) {
	rows, err := db.pool.Query(ctx, listDocumentsSQL, filterMetadata)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []ListDocumentsRow
	for rows.Next() {
		var r ListDocumentsRow
		if err := rows.Scan(&r.ID, &r.Content, &r.Metadata); err != nil {
			return nil, fmt.Errorf("scan list row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rows: %w", err)
	}
	return out, nil
}

const countDocumentsSQL = `
SELECT count(*) FROM documents
WHERE $1::jsonb IS NULL OR metadata @> $1`

// CountDocuments counts documents matching the metadata filter.
func (db *DB) CountDocuments(ctx context.Context, filterMetadata []byte) (int64, error) {
	var count int64
	if err := db.pool.QueryRow(ctx, countDocumentsSQL, filterMetadata).Scan(&count); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

const deleteDocumentSQL = `DELETE FROM documents WHERE id = $1`

// DeleteDocument removes a document row by ID.
func (db *DB) DeleteDocument(ctx context.Context, id string) error {
	if _, err := db.pool.Exec(ctx, deleteDocumentSQL, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
