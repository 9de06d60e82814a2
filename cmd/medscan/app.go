package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xhad/medscan/pkg/config"
	"github.com/xhad/medscan/pkg/disease"
	"github.com/xhad/medscan/pkg/logger"
	"github.com/xhad/medscan/pkg/pipeline"
	"github.com/xhad/medscan/pkg/processor"
	"github.com/xhad/medscan/pkg/vocabulary"
)

// app is what every command needs: validated config, a logger and a
// pipeline over the configured vocabulary.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	pipeline *pipeline.Pipeline
}

func newApp(opts *globalOptions) (*app, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid config:\n  %s", strings.Join(msgs, "\n  "))
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	vocab, err := vocabulary.LoadFiles(cfg.Vocabulary.DiseasesFile, cfg.Vocabulary.AllergiesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}

	p := pipeline.New(vocab,
		pipeline.WithLogger(log),
		pipeline.WithMinLength(cfg.Extraction.MinLength),
		pipeline.WithPreviewLength(cfg.Extraction.PreviewLength),
		pipeline.WithMatcherConfig(disease.MatcherConfig{
			Threshold:      cfg.Extraction.FuzzyThreshold,
			MinTokenLength: cfg.Extraction.MinTokenLength,
		}),
		pipeline.WithProcessorConfig(processor.ProcessorConfig{
			FlattenLineBreaks: cfg.Extraction.FlattenLineBreaks,
		}),
	)

	return &app{cfg: cfg, logger: log, pipeline: p}, nil
}
