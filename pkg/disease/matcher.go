package disease

import (
	"strings"
	"unicode/utf8"

	"github.com/xhad/medscan/internal/models"
	"github.com/xhad/medscan/pkg/vocabulary"
)

type MatcherConfig struct {
	// Threshold is the Ratio a token must exceed to count as a keyword hit.
	Threshold int
	// MinTokenLength skips shorter tokens in the fuzzy pass.
	MinTokenLength int
}

// Pass says how a keyword was found.
type Pass string

const (
	PassExact Pass = "exact"
	PassFuzzy Pass = "fuzzy"
)

// Match explains one text hit.
type Match struct {
	Disease string
	Keyword string
	Token   string
	Score   int
	Pass    Pass
}

// Matcher finds disease mentions in lower-cased text, tolerating OCR
// misspellings. Work is diseases x keywords x tokens per document.
type Matcher struct {
	config  MatcherConfig
	entries []vocabulary.Entry
}

func NewMatcher(vocab *vocabulary.Vocabulary, config MatcherConfig) *Matcher {
	if config.Threshold == 0 {
		config.Threshold = 85
	}
	if config.MinTokenLength == 0 {
		config.MinTokenLength = 4
	}
	return &Matcher{
		config:  config,
		entries: vocab.Diseases(),
	}
}

// Match returns the diseases mentioned in text in vocabulary order.
func (m *Matcher) Match(text string) *models.DiseaseSet {
	set := models.NewDiseaseSet()
	for _, hit := range m.MatchDetailed(text) {
		set.Add(hit.Disease)
	}
	return set
}

// MatchDetailed returns the first hit for every disease found.
func (m *Matcher) MatchDetailed(text string) []Match {
	tokens := m.tokens(text)

	var hits []Match
	for _, entry := range m.entries {
		if hit, ok := m.matchEntry(entry, text, tokens); ok {
			hits = append(hits, hit)
		}
	}
	return hits
}

func (m *Matcher) matchEntry(entry vocabulary.Entry, text string, tokens []string) (Match, bool) {
	for _, keyword := range entry.Keywords {
		if strings.Contains(text, keyword) {
			return Match{Disease: entry.Name, Keyword: keyword, Score: 100, Pass: PassExact}, true
		}
		for _, token := range tokens {
			if score := Ratio(keyword, token); score > m.config.Threshold {
				return Match{Disease: entry.Name, Keyword: keyword, Token: token, Score: score, Pass: PassFuzzy}, true
			}
		}
	}
	return Match{}, false
}

func (m *Matcher) tokens(text string) []string {
	var out []string
	for _, t := range strings.Fields(text) {
		if utf8.RuneCountInString(t) >= m.config.MinTokenLength {
			out = append(out, t)
		}
	}
	return out
}
