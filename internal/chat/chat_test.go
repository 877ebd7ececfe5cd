package chat_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/firebase/genkit/go/genkit"

	"github.com/cloudwalk/assistant/internal/chat"
	"github.com/cloudwalk/assistant/internal/config"
	"github.com/cloudwalk/assistant/internal/intent"
	"github.com/cloudwalk/assistant/internal/knowledge"
	"github.com/cloudwalk/assistant/internal/language"
	"github.com/cloudwalk/assistant/internal/log"
	"github.com/cloudwalk/assistant/internal/session"
	"github.com/cloudwalk/assistant/internal/testutil"
)

type fixture struct {
	assistant *chat.Assistant
	mock      *testutil.MockLLM
	store     *knowledge.Store
	sessions  *session.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	g := genkit.Init(context.Background())
	mock := testutil.NewMockLLM("mock fallback answer")
	mock.RegisterModel(g)

	store := knowledge.New(testutil.NewMemQuerier(), testutil.NewMockEmbedder(8), log.NewNop())

	style, ok := config.Style("friendly")
	if !ok {
		t.Fatal(`config.Style("friendly") not found`)
	}
	brand := config.Brand{
		Name:    "CloudWalk",
		Tagline: "Democratizing the financial ecosystem",
		Mission: "Create the best payment network on Earth.",
		Products: []config.BrandProduct{
			{Key: "infinitepay", Name: "InfinitePay", Description: "Payment solutions for merchants."},
		},
	}

	assistant, err := chat.New(chat.Config{
		Genkit:     g,
		Knowledge:  store,
		Detector:   language.NewDetector("en"),
		Classifier: intent.NewClassifier(),
		Logger:     log.NewNop(),
		ModelName:  "mock/test-model",
		Brand:      brand,
		Style:      style,
	})
	if err != nil {
		t.Fatalf("chat.New() error = %v", err)
	}

	return &fixture{
		assistant: assistant,
		mock:      mock,
		store:     store,
		sessions:  session.NewManager("en", log.NewNop()),
	}
}

func TestNewMissingDependencies(t *testing.T) {
	g := genkit.Init(context.Background())
	store := knowledge.New(testutil.NewMemQuerier(), testutil.NewMockEmbedder(8), log.NewNop())
	detector := language.NewDetector("en")
	classifier := intent.NewClassifier()

	tests := []struct {
		name    string
		cfg     chat.Config
		wantErr error
	}{
		{
			name:    "missing genkit",
			cfg:     chat.Config{Knowledge: store, Detector: detector, Classifier: classifier},
			wantErr: chat.ErrGenkitRequired,
		},
		{
			name:    "missing knowledge",
			cfg:     chat.Config{Genkit: g, Detector: detector, Classifier: classifier},
			wantErr: chat.ErrKnowledgeRequired,
		},
		{
			name:    "missing detector",
			cfg:     chat.Config{Genkit: g, Knowledge: store, Classifier: classifier},
			wantErr: chat.ErrDetectorRequired,
		},
		{
			name:    "missing classifier",
			cfg:     chat.Config{Genkit: g, Knowledge: store, Detector: detector},
			wantErr: chat.ErrClassifierRequired,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := chat.New(tt.cfg); !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRespondSuccess(t *testing.T) {
	f := newFixture(t)
	f.mock.AddResponse("fees", "Our credit card fees start at 0.75%.")

	if _, err := f.store.Upsert(context.Background(), knowledge.Document{
		Title:    "InfinitePay Fees",
		Content:  "Credit card fees start at 0.75% per transaction.",
		Category: "product",
		Language: "en",
		Product:  "infinitepay",
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	conv := f.sessions.Create()
	reply, err := f.assistant.Respond(context.Background(), conv, "What are the fees for credit cards?")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if reply.Fallback {
		t.Error("Respond() returned fallback reply")
	}
	if reply.Text != "Our credit card fees start at 0.75%." {
		t.Errorf("Respond() text = %q", reply.Text)
	}
	if reply.Language != "en" {
		t.Errorf("Respond() language = %q, want %q", reply.Language, "en")
	}

	wantIntents := []intent.Kind{intent.PricingQuestion, intent.FeatureExplanation}
	if len(reply.Intents) != len(wantIntents) {
		t.Fatalf("Respond() intents = %v, want %v", reply.Intents, wantIntents)
	}
	for i := range wantIntents {
		if reply.Intents[i] != wantIntents[i] {
			t.Errorf("Respond() intents[%d] = %q, want %q", i, reply.Intents[i], wantIntents[i])
		}
	}

	history := conv.History()
	if len(history) != 2 {
		t.Fatalf("session history has %d messages, want 2", len(history))
	}
	if history[0].Role != session.RoleUser || history[1].Role != session.RoleAssistant {
		t.Errorf("history roles = %q/%q", history[0].Role, history[1].Role)
	}
	if got := conv.Intents(); len(got) != len(wantIntents) {
		t.Errorf("session recorded %d intents, want %d", len(got), len(wantIntents))
	}

	calls := f.mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("mock received %d calls, want 1", len(calls))
	}
	if !strings.Contains(calls[0].System, "CloudWalk") {
		t.Error("system prompt missing brand name")
	}
	if !strings.Contains(calls[0].System, "Respond in English.") {
		t.Error("system prompt missing language instruction")
	}
	if !strings.Contains(calls[0].System, "Use this information to answer the user's question:") {
		t.Error("system prompt missing knowledge preamble")
	}
	if !strings.Contains(calls[0].System, "Credit card fees start at 0.75% per transaction.") {
		t.Error("system prompt missing retrieved document content")
	}
}

func TestRespondSwitchesLanguage(t *testing.T) {
	f := newFixture(t)
	f.mock.AddResponse("taxas", "As taxas começam em 0,75%.")

	conv := f.sessions.Create()
	reply, err := f.assistant.Respond(context.Background(), conv, "quais são as taxas da maquininha?")
	if err != nil {
		t.Fatalf("Respond() error = %v", err)
	}
	if reply.Language != "pt-BR" {
		t.Errorf("Respond() language = %q, want %q", reply.Language, "pt-BR")
	}
	if got := conv.Language(); got != "pt-BR" {
		t.Errorf("session language = %q, want %q", got, "pt-BR")
	}

	calls := f.mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("mock received %d calls, want 1", len(calls))
	}
	if !strings.Contains(calls[0].System, "Respond in Brazilian Portuguese.") {
		t.Error("system prompt missing Portuguese language instruction")
	}
}

func TestRespondFiltersRetrieval(t *testing.T) {
	f := newFixture(t)
	f.mock.AddResponse("taxas", "As taxas começam em 0,75%.")

	docs := []knowledge.Document{
		{
			Title:    "Taxas InfinitePay",
			Content:  "As taxas do cartão de crédito começam em 0,75%.",
			Category: "product",
			Language: "pt-BR",
			Product:  "infinitepay",
		},
		{
			Title:    "JIM Fees",
			Content:  "JIM charges a flat 1.99% per transaction.",
			Category: "product",
			Language: "en",
			Product:  "jim",
		},
	}
	for _, doc := range docs {
		if _, err := f.store.Upsert(context.Background(), doc); err != nil {
			t.Fatalf("Upsert(%q) error = %v", doc.Title, err)
		}
	}

	conv := f.sessions.Create()
	conv.SetCurrentProduct("InfinitePay")

	if _, err := f.assistant.Respond(context.Background(), conv, "quais são as taxas da maquininha?"); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}

	calls := f.mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("mock received %d calls, want 1", len(calls))
	}
	if !strings.Contains(calls[0].System, "As taxas do cartão de crédito começam em 0,75%.") {
		t.Error("system prompt missing the language+product matched document")
	}
	if strings.Contains(calls[0].System, "JIM charges a flat 1.99% per transaction.") {
		t.Error("system prompt contains a document that should be filtered out")
	}
}

func TestRespondFailureReturnsApology(t *testing.T) {
	f := newFixture(t)
	f.mock.FailWith(errors.New("upstream unavailable"))

	conv := f.sessions.Create()
	reply, err := f.assistant.Respond(context.Background(), conv, "hello there")
	if err != nil {
		t.Fatalf("Respond() error = %v, want nil on generation failure", err)
	}
	if !reply.Fallback {
		t.Error("Respond() Fallback = false, want true")
	}
	if reply.Text != chat.Apology {
		t.Errorf("Respond() text = %q, want apology", reply.Text)
	}
	if len(conv.History()) != 0 {
		t.Error("failed turn must not be appended to history")
	}
	if len(conv.Intents()) != 0 {
		t.Error("failed turn must not record intents")
	}

	// The same session recovers once the model does.
	f.mock.FailWith(nil)
	reply, err = f.assistant.Respond(context.Background(), conv, "hello there")
	if err != nil {
		t.Fatalf("Respond() after recovery error = %v", err)
	}
	if reply.Fallback {
		t.Error("Respond() after recovery still returned fallback")
	}
	if len(conv.History()) != 2 {
		t.Errorf("session history has %d messages after recovery, want 2", len(conv.History()))
	}
}

func TestRespondEmptyMessage(t *testing.T) {
	f := newFixture(t)
	conv := f.sessions.Create()

	if _, err := f.assistant.Respond(context.Background(), conv, "   "); !errors.Is(err, chat.ErrEmptyMessage) {
		t.Errorf("Respond() error = %v, want ErrEmptyMessage", err)
	}
	if _, err := f.assistant.Respond(context.Background(), nil, "hi"); !errors.Is(err, chat.ErrSessionRequired) {
		t.Errorf("Respond(nil session) error = %v, want ErrSessionRequired", err)
	}
}

func TestRespondHistoryWindow(t *testing.T) {
	f := newFixture(t)
	conv := f.sessions.Create()
	for range 3 {
		conv.AppendTurn("earlier question", "earlier answer")
	}

	if _, err := f.assistant.Respond(context.Background(), conv, "zzz qqq"); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}

	calls := f.mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("mock received %d calls, want 1", len(calls))
	}
	// One persona system message, four replayed history messages and
	// the current user message. Nothing matches in the empty knowledge
	// store, so no knowledge message is added.
	if got := calls[0].MessageCount; got != 6 {
		t.Errorf("request carried %d messages, want 6", got)
	}
}

func TestRespondProfileGuidance(t *testing.T) {
	f := newFixture(t)
	conv := f.sessions.Create()
	conv.SetProfile(session.ProfileNewMerchant)

	if _, err := f.assistant.Respond(context.Background(), conv, "how do I start selling?"); err != nil {
		t.Fatalf("Respond() error = %v", err)
	}

	calls := f.mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("mock received %d calls, want 1", len(calls))
	}
	if !strings.Contains(calls[0].System, "new merchant") {
		t.Error("system prompt missing new-merchant guidance")
	}
}

func TestSignOff(t *testing.T) {
	f := newFixture(t)

	got := f.assistant.SignOff("Our fees start at 0.75%.")
	want := "Our fees start at 0.75%.\n\n💜 CloudWalk - Democratizing the financial ecosystem"
	if got != want {
		t.Errorf("SignOff() = %q, want %q", got, want)
	}

	branded := "We're growing fast 🚀"
	if got := f.assistant.SignOff(branded); got != branded {
		t.Errorf("SignOff() decorated an already branded reply: %q", got)
	}
}
