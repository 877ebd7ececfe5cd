// Package chat orchestrates a single conversational turn: language
// detection, intent classification, knowledge retrieval, prompt
// assembly and model generation.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/cloudwalk/assistant/internal/config"
	"github.com/cloudwalk/assistant/internal/intent"
	"github.com/cloudwalk/assistant/internal/knowledge"
	"github.com/cloudwalk/assistant/internal/language"
	"github.com/cloudwalk/assistant/internal/log"
	"github.com/cloudwalk/assistant/internal/session"
)

const (
	// Apology is returned verbatim when generation fails. The session
	// is left untouched so the user can simply retry.
	Apology = "I apologize, but I encountered an error. Please try again."

	// languageOverrideThreshold is the detection confidence required
	// before a turn switches the session's language.
	languageOverrideThreshold = 0.6

	// retrievalTimeout bounds the knowledge search per turn.
	retrievalTimeout = 5 * time.Second

	// historyWindow is how many trailing history messages are replayed
	// to the model each turn.
	historyWindow = 4
)

// Sentinel errors for assistant construction and execution.
var (
	ErrGenkitRequired     = errors.New("genkit instance is required")
	ErrKnowledgeRequired  = errors.New("knowledge store is required")
	ErrDetectorRequired   = errors.New("language detector is required")
	ErrClassifierRequired = errors.New("intent classifier is required")
	ErrSessionRequired    = errors.New("session is required")
	ErrEmptyMessage       = errors.New("message is empty")
)

// Reply is the outcome of one conversational turn.
type Reply struct {
	Text     string
	Language string
	Intents  []intent.Kind
	Fallback bool // true when Text is the apology fallback
}

// Config carries the dependencies and tuning for an Assistant.
type Config struct {
	Genkit     *genkit.Genkit
	Knowledge  *knowledge.Store
	Detector   *language.Detector
	Classifier *intent.Classifier
	Logger     log.Logger

	ModelName string
	MaxTokens int
	Brand     config.Brand
	Style     config.StylePreset

	// RetrievalTopK documents are retrieved per turn; <= 0 uses 3.
	RetrievalTopK int

	// RateLimiter throttles outbound model calls. Nil disables
	// throttling.
	RateLimiter *rate.Limiter
}

func (cfg Config) validate() error {
	if cfg.Genkit == nil {
		return ErrGenkitRequired
	}
	if cfg.Knowledge == nil {
		return ErrKnowledgeRequired
	}
	if cfg.Detector == nil {
		return ErrDetectorRequired
	}
	if cfg.Classifier == nil {
		return ErrClassifierRequired
	}
	return nil
}

// Assistant answers merchant questions about the company and its
// products. All configuration is captured at construction, so a single
// Assistant is safe for concurrent use across sessions.
type Assistant struct {
	g          *genkit.Genkit
	knowledge  *knowledge.Store
	detector   *language.Detector
	classifier *intent.Classifier
	logger     log.Logger

	modelName   string
	temperature float32
	maxTokens   int
	brand       config.Brand
	persona     string
	topK        int
	limiter     *rate.Limiter
}

// New creates an Assistant from cfg.
func New(cfg Config) (*Assistant, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	modelName := cfg.ModelName
	if modelName == "" {
		modelName = config.DefaultModelName
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}
	topK := cfg.RetrievalTopK
	if topK <= 0 {
		topK = 3
	}

	a := &Assistant{
		g:           cfg.Genkit,
		knowledge:   cfg.Knowledge,
		detector:    cfg.Detector,
		classifier:  cfg.Classifier,
		logger:      logger,
		modelName:   modelName,
		temperature: cfg.Style.Temperature,
		maxTokens:   maxTokens,
		brand:       cfg.Brand,
		persona:     personaPrompt(cfg.Brand, cfg.Style),
		topK:        topK,
		limiter:     cfg.RateLimiter,
	}

	a.logger.Info("assistant initialized",
		slog.String("model", a.modelName),
		slog.Int("retrieval_top_k", a.topK),
	)
	return a, nil
}

// Respond runs one turn of the conversation. On success the exchange
// is appended to the session history and the detected intents are
// recorded. When generation fails the session is left unchanged and
// the apology fallback is returned with Fallback set; the error return
// is reserved for invalid input and cancelled contexts.
func (a *Assistant) Respond(ctx context.Context, conv *session.Context, message string) (*Reply, error) {
	if conv == nil {
		return nil, ErrSessionRequired
	}
	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	detection := a.detector.Detect(message)
	if detection.Confidence > languageOverrideThreshold && detection.Language != conv.Language() {
		a.logger.Debug("switching session language",
			slog.String("session_id", conv.ID()),
			slog.String("from", conv.Language()),
			slog.String("to", detection.Language),
			slog.Float64("confidence", detection.Confidence),
		)
		conv.SetLanguage(detection.Language)
	}
	lang := conv.Language()

	kinds := a.classifier.Detect(message)

	knowledgeText := a.retrieve(ctx, conv, message, lang)

	messages := a.buildMessages(conv, message, lang, knowledgeText)

	resp, err := genkit.Generate(ctx, a.g,
		ai.WithModelName(a.modelName),
		ai.WithMessages(messages...),
		ai.WithConfig(&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(a.temperature),
			MaxOutputTokens: int32(a.maxTokens),
		}),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("generating response: %w", err)
		}
		a.logger.Error("model generation failed",
			slog.String("session_id", conv.ID()),
			slog.String("error", err.Error()),
		)
		return &Reply{Text: Apology, Language: lang, Intents: kinds, Fallback: true}, nil
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		a.logger.Warn("model returned empty response",
			slog.String("session_id", conv.ID()))
		return &Reply{Text: Apology, Language: lang, Intents: kinds, Fallback: true}, nil
	}

	conv.AppendTurn(message, text)
	conv.RecordIntents(kinds)

	return &Reply{Text: text, Language: lang, Intents: kinds}, nil
}

// SignOff appends the brand signature to a reply unless the model
// already worked a brand emoji into the text. Presentation layers call
// this before display; session history keeps the undecorated reply.
func (a *Assistant) SignOff(text string) string {
	if strings.Contains(text, "💜") || strings.Contains(text, "🚀") {
		return text
	}
	return fmt.Sprintf("%s\n\n💜 %s - %s", text, a.brand.Name, a.brand.Tagline)
}

// retrieve searches the knowledge store for context relevant to the
// message. Retrieval is best-effort: failures are logged and the turn
// proceeds without knowledge.
func (a *Assistant) retrieve(ctx context.Context, conv *session.Context, message, lang string) string {
	opts := []knowledge.SearchOption{
		knowledge.WithTopK(a.topK),
		knowledge.WithTimeout(retrievalTimeout),
	}
	if lang != a.detector.DefaultLanguage() {
		opts = append(opts, knowledge.WithFilter("language", lang))
	}
	if product := conv.CurrentProduct(); product != "" {
		opts = append(opts, knowledge.WithFilter("product", strings.ToLower(product)))
	}

	results, err := a.knowledge.Search(ctx, message, opts...)
	if err != nil {
		a.logger.Warn("knowledge search failed",
			slog.String("session_id", conv.ID()),
			slog.String("error", err.Error()),
		)
		return ""
	}
	if len(results) == 0 {
		return ""
	}

	sections := make([]string, len(results))
	for i, r := range results {
		sections[i] = r.Document.Title + "\n" + r.Document.Content
	}
	return strings.Join(sections, "\n\n")
}

// buildMessages assembles the model conversation: persona system
// message, optional retrieved knowledge, a trailing window of history
// and the current user message.
func (a *Assistant) buildMessages(conv *session.Context, message, lang, knowledgeText string) []*ai.Message {
	messages := []*ai.Message{
		ai.NewSystemMessage(ai.NewTextPart(a.systemPrompt(lang, conv.Profile()))),
	}
	if knowledgeText != "" {
		messages = append(messages, ai.NewSystemMessage(ai.NewTextPart(
			"Use this information to answer the user's question:\n"+knowledgeText)))
	}
	for _, m := range conv.LastHistory(historyWindow) {
		switch m.Role {
		case session.RoleUser:
			messages = append(messages, ai.NewUserMessage(ai.NewTextPart(m.Content)))
		case session.RoleAssistant:
			messages = append(messages, ai.NewModelMessage(ai.NewTextPart(m.Content)))
		}
	}
	return append(messages, ai.NewUserMessage(ai.NewTextPart(message)))
}
