// Package language provides conversation language detection and localization.
//
// Detection is lexical: each supported language has a profile of marker
// terms and stop words, and input is scored against every profile. No
// external service or model is involved, so detection is deterministic
// and cheap enough to run on every message.
package language

import (
	"math/rand/v2"
	"sort"
	"strings"
	"unicode"
)

// Result holds the outcome of a detection pass.
// Confidence is in [0, 1]. Alternative is set only when a second
// language scored within 70% of the winner.
type Result struct {
	Language              string
	Confidence            float64
	Alternative           string
	AlternativeConfidence float64
}

// Profile describes the lexical fingerprint of one language.
//
// Terms are words or short phrases strongly associated with the
// language (greetings, pronouns, domain vocabulary). Each occurrence
// counts double. StopWords are weak signals counted once per token.
type Profile struct {
	Code      string
	Terms     []string
	StopWords []string
	Greetings []string
}

type compiledProfile struct {
	code      string
	terms     []string
	stopWords map[string]struct{}
	greetings []string
}

// Detector scores text against a fixed set of language profiles.
// Safe for concurrent use: all state is immutable after construction.
type Detector struct {
	profiles        []compiledProfile
	defaultLanguage string
	rng             *rand.Rand
}

// NewDetector creates a detector for the given profiles. Profile order
// matters: when two languages tie exactly, the earlier profile wins.
// With no profiles the DefaultProfiles set is used.
func NewDetector(defaultLanguage string, profiles ...Profile) *Detector {
	if len(profiles) == 0 {
		profiles = DefaultProfiles()
	}

	compiled := make([]compiledProfile, 0, len(profiles))
	for _, p := range profiles {
		cp := compiledProfile{
			code:      p.Code,
			terms:     make([]string, len(p.Terms)),
			stopWords: make(map[string]struct{}, len(p.StopWords)),
			greetings: p.Greetings,
		}
		for i, t := range p.Terms {
			cp.terms[i] = strings.ToLower(t)
		}
		// Longest terms first: multi-word terms consume their words
		// before shorter terms see them, so "thank you" scores one
		// match instead of also hitting "you".
		sort.SliceStable(cp.terms, func(i, j int) bool {
			return len(cp.terms[i]) > len(cp.terms[j])
		})
		for _, w := range p.StopWords {
			cp.stopWords[strings.ToLower(w)] = struct{}{}
		}
		compiled = append(compiled, cp)
	}

	return &Detector{profiles: compiled, defaultLanguage: defaultLanguage}
}

// DefaultLanguage returns the language used when detection finds no signal.
func (d *Detector) DefaultLanguage() string {
	return d.defaultLanguage
}

// Supported reports whether the detector has a profile for the language.
func (d *Detector) Supported(code string) bool {
	for _, p := range d.profiles {
		if p.code == code {
			return true
		}
	}
	return false
}

// Detect scores the text against every profile and returns the winner.
//
// Per profile: score = (2*termOccurrences + stopWordHits) / tokenCount.
// Terms are matched longest-first and each span is consumed, so a
// phrase term does not also score its embedded words.
// Confidence = min(score/0.5, 1). When every profile scores zero (or
// the input is empty) the detector falls back to the default language
// with zero confidence.
func (d *Detector) Detect(text string) Result {
	lower := strings.ToLower(text)
	words := strings.Fields(lower)
	padded := padWords(lower)

	type langScore struct {
		code  string
		score float64
	}
	scores := make([]langScore, 0, len(d.profiles))

	for _, p := range d.profiles {
		matches := 0
		remaining := padded
		for _, term := range p.terms {
			padTerm := " " + term + " "
			for {
				n := strings.Count(remaining, padTerm)
				if n == 0 {
					break
				}
				matches += n
				// Blank consumed spans with a non-word marker:
				// nested terms cannot re-match inside them and the
				// removal cannot stitch surrounding words into a
				// new phrase.
				remaining = strings.ReplaceAll(remaining, padTerm, " \x00 ")
			}
		}

		score := float64(2 * matches)
		for _, w := range words {
			if _, ok := p.stopWords[w]; ok {
				score++
			}
		}

		if len(words) > 0 {
			score /= float64(len(words))
		} else {
			score = 0
		}
		scores = append(scores, langScore{code: p.code, score: score})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if len(scores) == 0 || scores[0].score == 0 {
		return Result{Language: d.defaultLanguage, Confidence: 0}
	}

	top := scores[0]
	result := Result{
		Language:   top.code,
		Confidence: min(top.score/0.5, 1.0),
	}

	if len(scores) > 1 && scores[1].score > 0 {
		if scores[1].score/top.score > 0.7 {
			result.Alternative = scores[1].code
			result.AlternativeConfidence = min(scores[1].score/0.5, 1.0)
		}
	}

	return result
}

// padWords maps punctuation to spaces and pads the ends so every term
// occurrence, including multi-word phrases, is bounded by spaces.
// Letters and digits are kept: "pix2026" must not match the term "pix".
func padWords(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(' ')
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteByte(' ')
	return b.String()
}
