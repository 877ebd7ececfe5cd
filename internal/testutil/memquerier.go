package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/cloudwalk/assistant/internal/knowledge"
)

// MemQuerier is an in-memory knowledge.Querier with real cosine
// distance ranking. It mirrors the semantics of the PostgreSQL
// implementation closely enough for unit tests: idempotent inserts,
// JSONB-style containment filters, distance-ordered search and stable
// insertion-order listing.
//
// Thread-safe for concurrent use.
type MemQuerier struct {
	mu   sync.RWMutex
	docs []memDoc
}

type memDoc struct {
	id        string
	content   string
	embedding []float32
	metadata  map[string]string
	raw       []byte
}

// NewMemQuerier creates an empty in-memory querier.
func NewMemQuerier() *MemQuerier {
	return &MemQuerier{}
}

// InsertDocument appends the document unless its ID already exists.
func (q *MemQuerier) InsertDocument(_ context.Context, arg knowledge.InsertDocumentParams) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, d := range q.docs {
		if d.id == arg.ID {
			return false, nil
		}
	}

	var metadata map[string]string
	if err := json.Unmarshal(arg.Metadata, &metadata); err != nil {
		return false, fmt.Errorf("invalid metadata JSON: %w", err)
	}

	var embedding []float32
	if arg.Embedding != nil {
		embedding = append(embedding, arg.Embedding.Slice()...)
	}

	q.docs = append(q.docs, memDoc{
		id:        arg.ID,
		content:   arg.Content,
		embedding: embedding,
		metadata:  metadata,
		raw:       append([]byte(nil), arg.Metadata...),
	})
	return true, nil
}

// SearchDocuments ranks matching documents by cosine distance.
func (q *MemQuerier) SearchDocuments(_ context.Context, arg knowledge.SearchDocumentsParams) ([]knowledge.SearchDocumentsRow, error) {
	filter, err := parseFilter(arg.FilterMetadata)
	if err != nil {
		return nil, err
	}

	var query []float32
	if arg.QueryEmbedding != nil {
		query = arg.QueryEmbedding.Slice()
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	var rows []knowledge.SearchDocumentsRow
	for _, d := range q.docs {
		if !containsAll(d.metadata, filter) {
			continue
		}
		rows = append(rows, knowledge.SearchDocumentsRow{
			ID:       d.id,
			Content:  d.content,
			Metadata: d.raw,
			Distance: cosineDistance(query, d.embedding),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Distance < rows[j].Distance
	})

	if arg.ResultLimit > 0 && len(rows) > int(arg.ResultLimit) {
		rows = rows[:arg.ResultLimit]
	}
	return rows, nil
}

// ListDocuments returns matching documents in insertion order.
func (q *MemQuerier) ListDocuments(_ context.Context, filterMetadata []byte) ([]knowledge.ListDocumentsRow, error) {
	filter, err := parseFilter(filterMetadata)
	if err != nil {
		return nil, err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	var rows []knowledge.ListDocumentsRow
	for _, d := range q.docs {
		if !containsAll(d.metadata, filter) {
			continue
		}
		rows = append(rows, knowledge.ListDocumentsRow{
			ID:       d.id,
			Content:  d.content,
			Metadata: d.raw,
		})
	}
	return rows, nil
}

// CountDocuments counts matching documents.
func (q *MemQuerier) CountDocuments(_ context.Context, filterMetadata []byte) (int64, error) {
	filter, err := parseFilter(filterMetadata)
	if err != nil {
		return 0, err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	var count int64
	for _, d := range q.docs {
		if containsAll(d.metadata, filter) {
			count++
		}
	}
	return count, nil
}

// DeleteDocument removes a document by ID. Missing IDs are a no-op,
// matching SQL DELETE semantics.
func (q *MemQuerier) DeleteDocument(_ context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, d := range q.docs {
		if d.id == id {
			q.docs = append(q.docs[:i], q.docs[i+1:]...)
			return nil
		}
	}
	return nil
}

func parseFilter(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var filter map[string]string
	if err := json.Unmarshal(raw, &filter); err != nil {
		return nil, fmt.Errorf("invalid filter JSON: %w", err)
	}
	return filter, nil
}

func containsAll(metadata, filter map[string]string) bool {
	for k, v := range filter {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// cosineDistance returns 1 - cosine similarity, the pgvector <=> operator.
func cosineDistance(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
