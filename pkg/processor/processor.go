package processor

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/xhad/medscan/internal/models"
	"golang.org/x/text/unicode/norm"
)

type ProcessorConfig struct {
	// SkipUnicodeNormalization leaves compatibility characters (ligatures,
	// full-width digits) as the OCR engine produced them.
	SkipUnicodeNormalization bool
	// FlattenLineBreaks joins lines into one. Patterns that stop at a line
	// break will then run to the end of the text.
	FlattenLineBreaks bool
}

type Processor struct {
	config ProcessorConfig
}

func NewWithConfig(config ProcessorConfig) Processor {
	return Processor{
		config: config,
	}
}

func New() Processor {
	return NewWithConfig(ProcessorConfig{})
}

// Normalize cleans OCR output and returns it together with the lower-cased
// copy used for matching.
func (p *Processor) Normalize(text string) models.NormalizedText {
	clean := p.cleanText(text)
	return models.NormalizedText{
		Original: clean,
		Lower:    strings.ToLower(clean),
	}
}

func (p *Processor) cleanText(text string) string {
	if text == "" {
		return ""
	}

	text = sanitizeUTF8(text)

	if !p.config.SkipUnicodeNormalization {
		text = norm.NFKC.String(text)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = collapseSpaces(line)
	}

	sep := "\n"
	if p.config.FlattenLineBreaks {
		sep = " "
	}

	return strings.TrimSpace(strings.Join(lines, sep))
}

// collapseSpaces turns every run of whitespace inside a line into one space.
func collapseSpaces(line string) string {
	var b strings.Builder
	b.Grow(len(line))
	prevSpace := false
	for _, r := range line {
		if unicode.IsSpace(r) {
			if !prevSpace {
				b.WriteRune(' ')
			}
			prevSpace = true
			continue
		}
		b.WriteRune(r)
		prevSpace = false
	}
	return strings.TrimSpace(b.String())
}

func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	v := make([]rune, 0, len(s))
	for i, r := range s {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(s[i:])
			if size == 1 {
				continue
			}
		}
		v = append(v, r)
	}
	return string(v)
}
