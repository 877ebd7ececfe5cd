package language

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// localizedContent holds canned strings keyed by dotted paths.
// English doubles as the fallback for unknown languages.
var localizedContent = map[string]map[string]string{
	"pt-BR": {
		"company_intro":                 "A CloudWalk está revolucionando o mercado de pagamentos no Brasil com a InfinitePay!",
		"products.infinitepay":          "InfinitePay - A maquininha que está transformando negócios brasileiros",
		"products.jim":                  "JIM - Nossa solução de pagamentos instantâneos para os EUA",
		"products.stratus":              "STRATUS - Blockchain de alta performance para soluções financeiras",
		"common_questions.fees":         "Nossas taxas começam em 0% no Pix, 0.75% no débito e 2.69% no crédito à vista!",
		"common_questions.support":      "Temos suporte RA1000 - o melhor do Brasil!",
		"common_questions.how_it_works": "É simples: você vende, recebe na hora ou em 1 dia útil, com as menores taxas!",
		"cta":                           "Quer saber mais? Posso explicar sobre nossas maquininhas, taxas ou qualquer dúvida!",
	},
	"en": {
		"company_intro":                 "CloudWalk is revolutionizing payments globally with AI-powered solutions!",
		"products.infinitepay":          "InfinitePay - Brazil's game-changing payment platform",
		"products.jim":                  "JIM - Instant payments meet AI magic in the US",
		"products.stratus":              "STRATUS - High-performance blockchain for financial solutions",
		"common_questions.fees":         "Our fees start at 0% for Pix, 0.75% for debit, and 2.69% for credit!",
		"common_questions.support":      "We have RA1000-rated support - Brazil's best!",
		"common_questions.how_it_works": "It's simple: sell, get paid instantly or next day, lowest fees!",
		"cta":                           "Want to know more? Ask me about our products, fees, or anything else!",
	},
}

// productNames maps product keys to their localized display names.
// Names mostly stay the same across languages, with added context
// where the market needs it.
var productNames = map[string]map[string]string{
	"infinitepay": {
		"pt-BR": "InfinitePay",
		"en":    "InfinitePay",
	},
	"jim": {
		"pt-BR": "JIM (para os EUA)",
		"en":    "JIM",
	},
	"stratus": {
		"pt-BR": "STRATUS (Blockchain)",
		"en":    "STRATUS",
	},
}

// Greeting returns a random localized greeting. Unknown languages fall
// back to English. Selection draws from the source set with SetRand,
// or the shared global source when none is set.
func (d *Detector) Greeting(lang string) string {
	greetings := d.greetings(lang)
	if len(greetings) == 0 {
		return ""
	}
	if d.rng != nil {
		return greetings[d.rng.IntN(len(greetings))]
	}
	return greetings[rand.IntN(len(greetings))]
}

// SetRand overrides the random source used for greeting selection so
// tests can pin a seed. Not safe to call concurrently with Greeting.
func (d *Detector) SetRand(r *rand.Rand) {
	d.rng = r
}

func (d *Detector) greetings(lang string) []string {
	var fallback []string
	for _, p := range d.profiles {
		if p.code == lang {
			return p.greetings
		}
		if p.code == "en" {
			fallback = p.greetings
		}
	}
	return fallback
}

// Content returns the localized string for a dotted key such as
// "products.infinitepay". Unknown languages fall back to English;
// unknown keys yield a visible "[Missing: key]" marker so broken
// lookups surface in responses instead of silently vanishing.
func Content(key, lang string) string {
	content, ok := localizedContent[lang]
	if !ok {
		content = localizedContent["en"]
	}
	if s, ok := content[key]; ok {
		return s
	}
	return fmt.Sprintf("[Missing: %s]", key)
}

// ProductName returns the localized display name for a product key.
// Unknown products are returned as-is.
func ProductName(product, lang string) string {
	names, ok := productNames[strings.ToLower(product)]
	if !ok {
		return product
	}
	if name, ok := names[lang]; ok {
		return name
	}
	return product
}
