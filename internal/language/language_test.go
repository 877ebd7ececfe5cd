package language

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestDetect_Portuguese(t *testing.T) {
	d := NewDetector("en")

	got := d.Detect("Olá, bom dia! Gostaria de saber as taxas da maquininha")

	if got.Language != "pt-BR" {
		t.Errorf("Language = %q, want pt-BR (result %+v)", got.Language, got)
	}
	if got.Confidence <= 0 {
		t.Errorf("Confidence = %v, want > 0", got.Confidence)
	}
}

func TestDetect_English(t *testing.T) {
	d := NewDetector("en")

	got := d.Detect("Hello! I want to know the fees for the card terminal")

	if got.Language != "en" {
		t.Errorf("Language = %q, want en (result %+v)", got.Language, got)
	}
	if got.Confidence <= 0 {
		t.Errorf("Confidence = %v, want > 0", got.Confidence)
	}
}

func TestDetect_NoSignalFallsBackToDefault(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"whitespace", "   \t\n"},
		{"gibberish", "xyzzy plugh qwfp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector("pt-BR")
			got := d.Detect(tt.text)

			if got.Language != "pt-BR" {
				t.Errorf("Language = %q, want default pt-BR", got.Language)
			}
			if got.Confidence != 0 {
				t.Errorf("Confidence = %v, want 0", got.Confidence)
			}
			if got.Alternative != "" {
				t.Errorf("Alternative = %q, want empty", got.Alternative)
			}
		})
	}
}

func TestDetect_ConfidenceScaling(t *testing.T) {
	d := NewDetector("en")

	// One stop word in four tokens: score 1/4, confidence 0.25/0.5 = 0.5.
	got := d.Detect("zz yy ww the")
	if got.Language != "en" {
		t.Fatalf("Language = %q, want en", got.Language)
	}
	if got.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", got.Confidence)
	}

	// A term match counts double: score 2/1, capped at 1.
	got = d.Detect("hello")
	if got.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want capped 1.0", got.Confidence)
	}
}

func TestDetect_AlternativeWithinRatio(t *testing.T) {
	d := NewDetector("en")

	// "taxa" scores for pt-BR, "fee" for en; exact tie, profile order
	// puts pt-BR first and en becomes the alternative.
	got := d.Detect("taxa fee")

	if got.Language != "pt-BR" {
		t.Errorf("Language = %q, want pt-BR", got.Language)
	}
	if got.Alternative != "en" {
		t.Errorf("Alternative = %q, want en", got.Alternative)
	}
	if got.AlternativeConfidence != 1.0 {
		t.Errorf("AlternativeConfidence = %v, want 1.0", got.AlternativeConfidence)
	}
}

func TestDetect_NoAlternativeWhenFarBehind(t *testing.T) {
	d := NewDetector("en")

	// Heavy Portuguese signal, single weak English stop word.
	got := d.Detect("olá maquininha pix boleto cartão pagamento a")

	if got.Language != "pt-BR" {
		t.Fatalf("Language = %q, want pt-BR", got.Language)
	}
	if got.Alternative != "" {
		t.Errorf("Alternative = %q, want empty", got.Alternative)
	}
}

func TestDetect_TermBoundaries(t *testing.T) {
	d := NewDetector("en")

	// "pix2026" must not match the term "pix".
	got := d.Detect("pix2026")
	if got.Confidence != 0 {
		t.Errorf("Confidence = %v for embedded term, want 0", got.Confidence)
	}

	// Punctuation around accented terms still matches.
	got = d.Detect("olá!")
	if got.Language != "pt-BR" || got.Confidence == 0 {
		t.Errorf("Detect(olá!) = %+v, want pt-BR with signal", got)
	}
}

func TestDetect_PhraseTermConsumesWords(t *testing.T) {
	d := NewDetector("en")

	// "thank you" is a single phrase match; the embedded "you" must
	// not score again. 8 tokens, 1 match: score 2/8 = 0.25,
	// confidence 0.25/0.5 = 0.5. Double-counting would cap at 1.
	got := d.Detect("thank you zz zz zz zz zz zz")
	if got.Language != "en" {
		t.Fatalf("Language = %q, want en", got.Language)
	}
	if got.Confidence != 0.5 {
		t.Errorf("Confidence = %v, want 0.5", got.Confidence)
	}

	// Repeated standalone words each count once.
	got = d.Detect("you you zz zz zz zz zz zz")
	// 8 tokens, 2 matches: score 4/8 = 0.5, confidence 0.5/0.5 = 1.
	if got.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want 1.0 for repeated term", got.Confidence)
	}
}

func TestDetect_CaseInsensitive(t *testing.T) {
	d := NewDetector("en")

	if got := d.Detect("OLÁ MAQUININHA"); got.Language != "pt-BR" {
		t.Errorf("Language = %q, want pt-BR", got.Language)
	}
}

func TestSupported(t *testing.T) {
	d := NewDetector("en")

	if !d.Supported("pt-BR") || !d.Supported("en") {
		t.Error("built-in profiles reported unsupported")
	}
	if d.Supported("fr") {
		t.Error("fr reported supported")
	}
}

func TestGreeting(t *testing.T) {
	d := NewDetector("en")

	ptGreetings := DefaultProfiles()[0].Greetings
	for range 10 {
		g := d.Greeting("pt-BR")
		if !slices.Contains(ptGreetings, g) {
			t.Fatalf("Greeting(pt-BR) = %q, not in profile set", g)
		}
	}

	// Unknown language falls back to English greetings.
	enGreetings := DefaultProfiles()[1].Greetings
	if g := d.Greeting("fr"); !slices.Contains(enGreetings, g) {
		t.Errorf("Greeting(fr) = %q, want English fallback", g)
	}
}

func TestGreetingFixedSeed(t *testing.T) {
	draw := func() []string {
		d := NewDetector("en")
		d.SetRand(rand.New(rand.NewPCG(7, 13)))
		out := make([]string, 10)
		for i := range out {
			out[i] = d.Greeting("pt-BR")
		}
		return out
	}

	if first, second := draw(), draw(); !slices.Equal(first, second) {
		t.Errorf("greeting sequences differ for the same seed:\n%v\n%v", first, second)
	}
}
