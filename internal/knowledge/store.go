// Package knowledge manages the merchant-facing knowledge base with
// vector search.
//
// Documents are embedded once at insert time and retrieved by cosine
// distance, optionally filtered on flat string metadata (language,
// product, category). Storage is PostgreSQL + pgvector behind the
// Querier interface, so tests can swap in an in-memory implementation.
package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"
)

// InsertDocumentParams carries one document row for insertion.
type InsertDocumentParams struct {
	ID        string
	Content   string
	Embedding *pgvector.Vector
	Metadata  []byte
	CreatedAt pgtype.Timestamptz
}

// SearchDocumentsParams carries a vector search request.
// FilterMetadata is a JSONB containment filter; nil means unfiltered.
type SearchDocumentsParams struct {
	QueryEmbedding *pgvector.Vector
	FilterMetadata []byte
	ResultLimit    int32
}

// SearchDocumentsRow is one vector search hit.
type SearchDocumentsRow struct {
	ID       string
	Content  string
	Metadata []byte
	Distance float64
}

// ListDocumentsRow is one row from a metadata-filtered listing.
type ListDocumentsRow struct {
	ID       string
	Content  string
	Metadata []byte
}

// Querier defines the database operations the store needs.
// Following Go best practices: interfaces are defined by the consumer,
// not the provider (similar to http.RoundTripper, io.Reader).
type Querier interface {
	// InsertDocument inserts a document, skipping rows whose ID already
	// exists. Reports whether a row was actually written.
	InsertDocument(ctx context.Context, arg InsertDocumentParams) (bool, error)

	// SearchDocuments performs filtered vector search ordered by distance.
	SearchDocuments(ctx context.Context, arg SearchDocumentsParams) ([]SearchDocumentsRow, error)

	// ListDocuments returns documents matching the metadata filter
	// (nil = all), in stable insertion order.
	ListDocuments(ctx context.Context, filterMetadata []byte) ([]ListDocumentsRow, error)

	// CountDocuments counts documents matching the metadata filter (nil = all).
	CountDocuments(ctx context.Context, filterMetadata []byte) (int64, error)

	// DeleteDocument deletes a document by ID.
	DeleteDocument(ctx context.Context, id string) error
}

// Store manages knowledge documents with vector search capabilities.
// It handles embedding generation and similarity search.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	queries  Querier
	embedder ai.Embedder
	logger   *slog.Logger
}

// New creates a new Store instance.
//
// Example (production):
//
//	store := knowledge.New(knowledge.NewDB(pool), embedder, logger)
//
// Example (testing):
//
//	store := knowledge.New(memQuerier, mockEmbedder, log.NewNop())
func New(querier Querier, embedder ai.Embedder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		queries:  querier,
		embedder: embedder,
		logger:   logger,
	}
}

// Upsert adds documents to the knowledge base and reports how many
// were actually inserted. Documents whose ID already exists are
// skipped, which makes re-seeding idempotent. A document with an empty
// ID gets one derived from its title and content.
func (s *Store) Upsert(ctx context.Context, docs ...Document) (int, error) {
	inserted := 0
	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = ContentID(doc.Title + "_" + doc.Content)
		}

		embedding, err := s.embed(ctx, doc.Content)
		if err != nil {
			return inserted, fmt.Errorf("embedding document %q: %w", doc.ID, err)
		}

		metadataJSON, err := json.Marshal(doc.metadata())
		if err != nil {
			return inserted, fmt.Errorf("marshaling metadata for %q: %w", doc.ID, err)
		}

		ok, err := s.queries.InsertDocument(ctx, InsertDocumentParams{
			ID:        doc.ID,
			Content:   doc.Content,
			Embedding: embedding,
			Metadata:  metadataJSON,
			CreatedAt: pgtype.Timestamptz{Time: doc.LastUpdated, Valid: !doc.LastUpdated.IsZero()},
		})
		if err != nil {
			return inserted, fmt.Errorf("inserting document %q: %w", doc.ID, err)
		}
		if ok {
			inserted++
			s.logger.Debug("added document", "id", doc.ID, "title", doc.Title)
		}
	}
	return inserted, nil
}

// AddCustom adds a single ad-hoc document and returns its ID.
// The ID is derived from title and content, so adding the same
// knowledge twice is a no-op.
func (s *Store) AddCustom(ctx context.Context, doc Document) (string, error) {
	if doc.ID == "" {
		doc.ID = ContentID(doc.Title + "_" + doc.Content)
	}
	if doc.Language == "" {
		doc.Language = "en"
	}

	if _, err := s.Upsert(ctx, doc); err != nil {
		return "", err
	}

	s.logger.Info("added custom knowledge", "id", doc.ID, "title", doc.Title)
	return doc.ID, nil
}

// Search performs semantic search over the knowledge base.
// Results are ordered by ascending cosine distance. A timeout guards
// both embedding generation and the vector query.
//
// Example:
//
//	results, err := store.Search(ctx, "card machine fees",
//	    knowledge.WithTopK(3),
//	    knowledge.WithFilter("language", "pt-BR"))
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	cfg := buildSearchConfig(opts)

	queryCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	embedding, err := s.embed(queryCtx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("embedding generation timeout: %w", err)
		}
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	// filterJSON is always produced by json.Marshal and consumed by a
	// parameterized JSONB containment query, never concatenated into SQL.
	var filterJSON []byte
	if len(cfg.filter) > 0 {
		filterJSON, err = json.Marshal(cfg.filter)
		if err != nil {
			return nil, fmt.Errorf("marshaling filter: %w", err)
		}
	}

	limit := cfg.topK
	if limit <= 0 || limit > math.MaxInt32 {
		limit = 5
	}

	rows, err := s.queries.SearchDocuments(queryCtx, SearchDocumentsParams{
		QueryEmbedding: embedding,
		FilterMetadata: filterJSON,
		ResultLimit:    int32(limit),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("search query timeout: %w", err)
		}
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, Result{
			Document: documentFromMetadata(row.ID, row.Content, s.parseMetadata(row.ID, row.Metadata)),
			Distance: row.Distance,
		})
	}
	return results, nil
}

// ByCategory returns every document in a category, optionally
// restricted to one language.
func (s *Store) ByCategory(ctx context.Context, category, language string) ([]Document, error) {
	filter := map[string]string{"category": category}
	if language != "" {
		filter["language"] = language
	}
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("marshaling filter: %w", err)
	}

	rows, err := s.queries.ListDocuments(ctx, filterJSON)
	if err != nil {
		return nil, fmt.Errorf("listing category %q: %w", category, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, documentFromMetadata(row.ID, row.Content, s.parseMetadata(row.ID, row.Metadata)))
	}
	return docs, nil
}

// ProductInfo gathers a product's documents and buckets them into
// overview, features and pricing slots, using the subcategory and
// title as signals. When several documents land in the same slot the
// last one in ranking order wins.
func (s *Store) ProductInfo(ctx context.Context, product, language string) (*ProductInfo, error) {
	results, err := s.Search(ctx, product,
		WithTopK(10),
		WithFilter("product", strings.ToLower(product)),
		WithFilter("language", language),
	)
	if err != nil {
		return nil, fmt.Errorf("product info search for %q: %w", product, err)
	}

	info := &ProductInfo{}
	for _, r := range results {
		sub := r.Document.Subcategory
		title := strings.ToLower(r.Document.Title)

		switch {
		case strings.Contains(sub, "overview") || strings.Contains(title, "overview"):
			info.Overview = r.Document.Content
		case strings.Contains(sub, "feature") || strings.Contains(title, "feature"):
			info.Features = r.Document.Content
		case strings.Contains(sub, "fee") || strings.Contains(sub, "pricing") || strings.Contains(sub, "taxa"):
			info.Pricing = r.Document.Content
		default:
			info.Other = append(info.Other, r.Document.Content)
		}
	}
	return info, nil
}

// Count returns the number of documents matching the given filter.
// A nil or empty filter counts all documents.
func (s *Store) Count(ctx context.Context, filter map[string]string) (int, error) {
	var filterJSON []byte
	if len(filter) > 0 {
		var err error
		filterJSON, err = json.Marshal(filter)
		if err != nil {
			return 0, fmt.Errorf("marshaling filter: %w", err)
		}
	}

	count, err := s.queries.CountDocuments(ctx, filterJSON)
	if err != nil {
		return 0, fmt.Errorf("count failed: %w", err)
	}

	// Overflow protection for 32-bit platforms.
	if count > math.MaxInt {
		return 0, fmt.Errorf("document count %d exceeds platform int capacity", count)
	}
	return int(count), nil
}

// Delete removes a document from the knowledge base.
func (s *Store) Delete(ctx context.Context, docID string) error {
	if err := s.queries.DeleteDocument(ctx, docID); err != nil {
		return fmt.Errorf("deleting document %q: %w", docID, err)
	}
	s.logger.Debug("deleted document", "id", docID)
	return nil
}

// embed generates the embedding vector for a piece of text.
func (s *Store) embed(ctx context.Context, text string) (*pgvector.Vector, error) {
	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{
			{Content: []*ai.Part{ai.NewTextPart(text)}},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Embedding) == 0 {
		return nil, errors.New("embedder returned empty embedding")
	}

	v := pgvector.NewVector(resp.Embeddings[0].Embedding)
	return &v, nil
}

// parseMetadata unmarshals stored metadata, degrading to an empty map
// on corruption so a single bad row cannot break retrieval.
func (s *Store) parseMetadata(id string, raw []byte) map[string]string {
	var meta map[string]string
	if err := json.Unmarshal(raw, &meta); err != nil {
		s.logger.Warn("failed to parse metadata", "document_id", id, "error", err)
		return map[string]string{}
	}
	return meta
}
