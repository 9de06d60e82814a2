package allergy

import (
	"regexp"
	"strings"

	"github.com/xhad/medscan/pkg/extractor"
	"github.com/xhad/medscan/pkg/vocabulary"
)

// sectionPatterns capture the rest of a labelled allergy line. Only known
// terms are taken from the captured text.
var sectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`allergies?:\s*([^\n]+)`),
	regexp.MustCompile(`allergic to:\s*([^\n]+)`),
	regexp.MustCompile(`known allergies?:\s*([^\n]+)`),
	regexp.MustCompile(`drug allergies?:\s*([^\n]+)`),
	regexp.MustCompile(`food allergies?:\s*([^\n]+)`),
}

// freeForm picks up "allergic to x, y" anywhere in the text. Every comma
// separated item up to the end of the line is taken, known term or not.
var freeForm = regexp.MustCompile(`allergic to ([a-z \t,]+)`)

// Extractor finds allergy mentions in lower-cased text.
type Extractor struct {
	terms []string
}

func NewExtractor(vocab *vocabulary.Vocabulary) *Extractor {
	return &Extractor{terms: vocab.Allergies()}
}

// Extract returns title-cased allergy labels, de-duplicated, in the order
// they were first found.
func (e *Extractor) Extract(text string) []string {
	found := newLabels()

	for _, p := range sectionPatterns {
		for _, m := range p.FindAllStringSubmatch(text, -1) {
			for _, term := range e.terms {
				if strings.Contains(m[1], term) {
					found.add(extractor.TitleCase(term))
				}
			}
		}
	}

	for _, m := range freeForm.FindAllStringSubmatch(text, -1) {
		for _, item := range strings.Split(m[1], ",") {
			item = strings.TrimSpace(item)
			if len(item) > 2 {
				found.add(extractor.TitleCase(item))
			}
		}
	}

	return found.order
}

type labels struct {
	order []string
	seen  map[string]bool
}

func newLabels() *labels {
	return &labels{order: []string{}, seen: make(map[string]bool)}
}

func (l *labels) add(label string) {
	if l.seen[label] {
		return
	}
	l.seen[label] = true
	l.order = append(l.order, label)
}
