// Package intent classifies user messages into conversation intents.
//
// Classification is rule-based: each intent carries a set of compiled
// regular expressions, and a message can match several intents at once.
// A message that matches nothing is classified as general chat, so the
// result is never empty.
package intent

import (
	"regexp"
	"strings"
)

// Kind identifies a conversation intent.
type Kind string

// Intents, in classification order.
const (
	Greeting           Kind = "greeting"
	ProductInquiry     Kind = "product_inquiry"
	PricingQuestion    Kind = "pricing_question"
	TechnicalSupport   Kind = "technical_support"
	CompanyInfo        Kind = "company_info"
	FeatureExplanation Kind = "feature_explanation"
	Comparison         Kind = "comparison"
	HowToStart         Kind = "how_to_start"
	ContactSales       Kind = "contact_sales"
	GeneralChat        Kind = "general_chat"
)

// Kinds returns every intent in classification order.
// GeneralChat is last: it is the fallback, not a pattern match.
func Kinds() []Kind {
	return []Kind{
		Greeting, ProductInquiry, PricingQuestion, TechnicalSupport,
		CompanyInfo, FeatureExplanation, Comparison, HowToStart,
		ContactSales, GeneralChat,
	}
}

type rule struct {
	kind     Kind
	patterns []*regexp.Regexp
}

// Classifier matches messages against per-intent patterns.
// Safe for concurrent use: rules are immutable after construction.
type Classifier struct {
	rules []rule
}

// terms builds a case-preserving alternation anchored on non-letter
// boundaries. RE2's \b is ASCII-only and fails on accented Portuguese
// words like "olá", so boundaries are expressed as character classes.
func terms(words ...string) *regexp.Regexp {
	pattern := `(?:^|[^\p{L}\p{N}])(?:` + strings.Join(words, "|") + `)(?:[^\p{L}\p{N}]|$)`
	return regexp.MustCompile(pattern)
}

// NewClassifier creates a classifier with the built-in intent rules.
// Patterns are matched against lowercased input.
func NewClassifier() *Classifier {
	return &Classifier{rules: []rule{
		{Greeting, []*regexp.Regexp{
			terms("hi", "hello", "hey", "ola", "olá", "oi", "hola",
				"bom dia", "boa tarde", "boa noite",
				"good morning", "good afternoon", "good evening"),
		}},
		{ProductInquiry, []*regexp.Regexp{
			terms("infinitepay", "jim", "stratus", "product", "products",
				"produto", "produtos", "maquininha", "card machine", "terminal"),
		}},
		{PricingQuestion, []*regexp.Regexp{
			terms("price", "prices", "pricing", "fee", "fees", "rate", "rates",
				"cost", "costs", "taxa", "taxas", "preço", "preco", "custo",
				"quanto custa", "how much"),
		}},
		{TechnicalSupport, []*regexp.Regexp{
			terms("help", "support", "problem", "issue", "error", "bug",
				"not working", "broken", "suporte", "problema", "erro",
				"ajuda", "não funciona", "nao funciona"),
		}},
		{CompanyInfo, []*regexp.Regexp{
			terms("cloudwalk", "company", "mission", "history", "founded",
				"about you", "empresa", "missão", "missao", "história", "historia"),
		}},
		{FeatureExplanation, []*regexp.Regexp{
			terms("feature", "features", "funcionalidade", "funcionalidades",
				"recurso", "recursos", "como funciona", "o que é", "o que e"),
			regexp.MustCompile(`how (?:does|do) .* work`),
			regexp.MustCompile(`what (?:is|are) `),
		}},
		{Comparison, []*regexp.Regexp{
			terms("compare", "comparison", "versus", "vs", "difference",
				"better than", "comparar", "comparação", "comparacao",
				"diferença", "diferenca", "melhor que"),
		}},
		{HowToStart, []*regexp.Regexp{
			terms("get started", "getting started", "sign up", "signup",
				"register", "how to start", "start selling", "começar",
				"comecar", "cadastro", "cadastrar", "abrir conta"),
		}},
		{ContactSales, []*regexp.Regexp{
			terms("sales", "contact", "phone", "email", "whatsapp",
				"talk to someone", "speak to someone", "falar com",
				"contato", "vendas", "comercial"),
		}},
	}}
}

// Detect returns every intent whose patterns match the message, in
// classification order. A message with no matches yields [GeneralChat].
func (c *Classifier) Detect(text string) []Kind {
	lower := strings.ToLower(text)

	var detected []Kind
	for _, r := range c.rules {
		for _, p := range r.patterns {
			if p.MatchString(lower) {
				detected = append(detected, r.kind)
				break
			}
		}
	}

	if len(detected) == 0 {
		detected = append(detected, GeneralChat)
	}
	return detected
}
