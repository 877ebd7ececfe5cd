package knowledge

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"time"
)

// Document represents one entry in the knowledge base.
//
// Content is what gets embedded and retrieved; everything else is
// stored as flat string metadata so searches can filter on it with
// JSONB containment.
type Document struct {
	ID          string    // Content-derived identifier, see ContentID
	Title       string    // Human-readable title
	Content     string    // Document text content (embedded)
	Category    string    // Top-level grouping: company, products, technology, support
	Subcategory string    // Finer grouping: fees, hardware, overview, ...
	Tags        []string  // Free-form labels
	Language    string    // BCP 47-ish code: "en", "pt-BR"
	Product     string    // Product key: "infinitepay", "jim", "stratus" (empty = company-wide)
	LastUpdated time.Time // Zero value means "now" at insert time
}

// Result is a single search hit. Distance is the cosine distance of
// the document to the query: lower is closer.
type Result struct {
	Document Document
	Distance float64
}

// ProductInfo aggregates a product's documents by role.
// Overview, Features and Pricing hold at most one document's content
// each; everything unclassified lands in Other.
type ProductInfo struct {
	Overview string
	Features string
	Pricing  string
	Other    []string
}

// ContentID derives a stable document identifier from a content key.
// Same input, same ID, which is what makes seeding idempotent.
// MD5 is used for fingerprinting only, not security.
func ContentID(key string) string {
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}

// metadata flattens the document's descriptive fields into the string
// map persisted as JSONB next to the embedding.
func (d Document) metadata() map[string]string {
	lastUpdated := d.LastUpdated
	if lastUpdated.IsZero() {
		lastUpdated = time.Now()
	}
	return map[string]string{
		"title":        d.Title,
		"category":     d.Category,
		"subcategory":  d.Subcategory,
		"tags":         strings.Join(d.Tags, ","),
		"language":     d.Language,
		"product":      d.Product,
		"last_updated": lastUpdated.Format(time.RFC3339),
	}
}

// documentFromMetadata rebuilds a Document from a stored row.
func documentFromMetadata(id, content string, meta map[string]string) Document {
	doc := Document{
		ID:          id,
		Content:     content,
		Title:       meta["title"],
		Category:    meta["category"],
		Subcategory: meta["subcategory"],
		Language:    meta["language"],
		Product:     meta["product"],
	}
	if tags := meta["tags"]; tags != "" {
		doc.Tags = strings.Split(tags, ",")
	}
	if ts := meta["last_updated"]; ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			doc.LastUpdated = parsed
		}
	}
	return doc
}

// SearchOption configures search behavior using the functional options pattern.
type SearchOption func(*searchConfig)

// searchConfig holds internal search configuration.
type searchConfig struct {
	topK    int
	filter  map[string]string
	timeout time.Duration
}

// WithTopK sets the maximum number of results to return.
// Default is 5 if not specified.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		c.topK = k
	}
}

// WithFilter adds a metadata filter to restrict search results.
// Multiple calls to WithFilter add additional filters (AND logic).
// Example: WithFilter("language", "pt-BR")
func WithFilter(key, value string) SearchOption {
	return func(c *searchConfig) {
		if c.filter == nil {
			c.filter = make(map[string]string)
		}
		c.filter[key] = value
	}
}

// WithTimeout overrides the default search timeout.
func WithTimeout(d time.Duration) SearchOption {
	return func(c *searchConfig) {
		c.timeout = d
	}
}

// buildSearchConfig applies search options and returns the final configuration.
func buildSearchConfig(opts []SearchOption) *searchConfig {
	cfg := &searchConfig{
		topK:    5,
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
