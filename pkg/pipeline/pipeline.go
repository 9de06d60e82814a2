package pipeline

import (
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/xhad/medscan/internal/models"
	"github.com/xhad/medscan/pkg/allergy"
	"github.com/xhad/medscan/pkg/disease"
	"github.com/xhad/medscan/pkg/extractor"
	"github.com/xhad/medscan/pkg/processor"
	"github.com/xhad/medscan/pkg/vocabulary"
)

const (
	DefaultMinLength     = 10
	DefaultPreviewLength = 500
)

// Pipeline turns report text into an ExtractionResult. It holds only
// read-only rules and vocabulary and is safe for concurrent use.
type Pipeline struct {
	vocab     *vocabulary.Vocabulary
	processor processor.Processor
	fields    extractor.FieldExtractor
	labs      extractor.LabExtractor
	matcher   *disease.Matcher
	allergies *allergy.Extractor
	logger    zerolog.Logger

	minLength     int
	previewLength int
	matcherConfig disease.MatcherConfig
	procConfig    processor.ProcessorConfig
}

type Option func(*Pipeline)

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithMinLength sets how many runes of trimmed text are needed before
// extraction runs.
func WithMinLength(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.minLength = n
		}
	}
}

func WithPreviewLength(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.previewLength = n
		}
	}
}

func WithMatcherConfig(config disease.MatcherConfig) Option {
	return func(p *Pipeline) {
		p.matcherConfig = config
	}
}

func WithProcessorConfig(config processor.ProcessorConfig) Option {
	return func(p *Pipeline) {
		p.procConfig = config
	}
}

// New builds a pipeline over vocab. A nil vocab uses the built-in one.
func New(vocab *vocabulary.Vocabulary, opts ...Option) *Pipeline {
	if vocab == nil {
		vocab = vocabulary.Default()
	}

	p := &Pipeline{
		vocab:         vocab,
		logger:        zerolog.Nop(),
		minLength:     DefaultMinLength,
		previewLength: DefaultPreviewLength,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.processor = processor.NewWithConfig(p.procConfig)
	p.fields = extractor.NewFieldExtractor()
	p.labs = extractor.NewLabExtractor()
	p.matcher = disease.NewMatcher(vocab, p.matcherConfig)
	p.allergies = allergy.NewExtractor(vocab)

	return p
}

// Extract runs every stage over text. It never panics and always returns a
// well-formed result; failures carry Success false and a reason.
func (p *Pipeline) Extract(text string) models.ExtractionResult {
	return p.run(text, p.logger)
}

// ExtractDocument is Extract over doc.Content with the document identity
// attached to log lines.
func (p *Pipeline) ExtractDocument(doc models.Document) models.ExtractionResult {
	logger := p.logger.With().
		Str("document_id", doc.ID).
		Str("source", doc.Source).
		Logger()
	return p.run(doc.Content, logger)
}

// SupportedDiseases returns the labels the pipeline can report, in
// vocabulary order.
func (p *Pipeline) SupportedDiseases() []string {
	return p.vocab.DiseaseNames()
}

func (p *Pipeline) run(text string, logger zerolog.Logger) (result models.ExtractionResult) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < p.minLength {
		logger.Debug().Int("length", utf8.RuneCountInString(text)).Msg("input too short")
		return failure(ErrInputTooShort.Error())
	}

	stage := "normalize"
	defer func() {
		if r := recover(); r != nil {
			err := recovered(stage, r)
			logger.Error().Err(err.Cause).Str("stage", err.Stage).Msg("extraction failed")
			result = failure(err.Error())
		}
	}()

	normalized := p.processor.Normalize(text)
	lower := normalized.Lower

	stage = "fields"
	details, errs := p.fields.Extract(lower)

	stage = "labs"
	labs, labErrs := p.labs.Extract(lower)
	errs = append(errs, labErrs...)
	for _, err := range errs {
		logger.Warn().Err(err).Msg("skipped capture")
	}

	stage = "diseases"
	fromText := p.matcher.Match(lower)
	fromLabs := disease.InferFromLabs(labs)
	diseases := fromText.Union(fromLabs).Slice()
	if len(diseases) == 0 {
		diseases = []string{models.NoDisease}
	}

	stage = "allergies"
	allergies := p.allergies.Extract(lower)

	logger.Debug().
		Int("text_diseases", fromText.Len()).
		Int("lab_diseases", fromLabs.Len()).
		Int("lab_values", len(labs)).
		Int("allergies", len(allergies)).
		Msg("extraction complete")

	return models.ExtractionResult{
		PatientDetails: details,
		Diseases:       diseases,
		Allergies:      strings.Join(allergies, ", "),
		LabValues:      labs,
		RawTextPreview: preview(text, p.previewLength),
		Success:        true,
	}
}

func failure(reason string) models.ExtractionResult {
	return models.ExtractionResult{
		Diseases:  []string{},
		Allergies: "",
		Success:   false,
		Error:     reason,
	}
}

func preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "..."
}
