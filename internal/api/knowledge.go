package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cloudwalk/assistant/internal/knowledge"
	"github.com/cloudwalk/assistant/internal/log"
)

type knowledgeHandler struct {
	store  *knowledge.Store
	logger log.Logger
}

type addDocumentRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Category    string   `json:"category,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Language    string   `json:"language,omitempty"`
	Product     string   `json:"product,omitempty"`
}

type documentResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	Category    string    `json:"category,omitempty"`
	Subcategory string    `json:"subcategory,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Language    string    `json:"language,omitempty"`
	Product     string    `json:"product,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

func toDocumentResponse(doc knowledge.Document) documentResponse {
	return documentResponse{
		ID:          doc.ID,
		Title:       doc.Title,
		Content:     doc.Content,
		Category:    doc.Category,
		Subcategory: doc.Subcategory,
		Tags:        doc.Tags,
		Language:    doc.Language,
		Product:     doc.Product,
		LastUpdated: doc.LastUpdated,
	}
}

// add handles POST /api/v1/knowledge. Adding the same title and
// content twice returns the same document id.
func (h *knowledgeHandler) add(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req addDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid request body", h.logger)
		return
	}
	if req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "title and content are required", h.logger)
		return
	}

	id, err := h.store.AddCustom(r.Context(), knowledge.Document{
		Title:       req.Title,
		Content:     req.Content,
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Tags:        req.Tags,
		Language:    req.Language,
		Product:     req.Product,
	})
	if err != nil {
		h.logger.Error("adding knowledge document", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id}, h.logger)
}

// byCategory handles GET /api/v1/knowledge/categories/{category}.
// An optional ?language= query narrows results to one language.
func (h *knowledgeHandler) byCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	language := r.URL.Query().Get("language")

	docs, err := h.store.ByCategory(r.Context(), category, language)
	if err != nil {
		h.logger.Error("listing knowledge by category",
			slog.String("category", category),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", h.logger)
		return
	}

	out := make([]documentResponse, len(docs))
	for i, doc := range docs {
		out[i] = toDocumentResponse(doc)
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": out}, h.logger)
}

type productInfoResponse struct {
	Product  string   `json:"product"`
	Overview string   `json:"overview,omitempty"`
	Features string   `json:"features,omitempty"`
	Pricing  string   `json:"pricing,omitempty"`
	Other    []string `json:"other,omitempty"`
}

// productInfo handles GET /api/v1/knowledge/products/{product}.
func (h *knowledgeHandler) productInfo(w http.ResponseWriter, r *http.Request) {
	product := r.PathValue("product")
	language := r.URL.Query().Get("language")
	if language == "" {
		language = "en"
	}

	info, err := h.store.ProductInfo(r.Context(), product, language)
	if err != nil {
		h.logger.Error("building product info",
			slog.String("product", product),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, productInfoResponse{
		Product:  product,
		Overview: info.Overview,
		Features: info.Features,
		Pricing:  info.Pricing,
		Other:    info.Other,
	}, h.logger)
}
