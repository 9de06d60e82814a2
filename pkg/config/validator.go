package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"

	"github.com/rs/zerolog"
)

var tableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Extraction config
	if c.Extraction.MinLength < 1 {
		errors = append(errors, ValidationError{
			Field:   "extraction.min_length",
			Message: "min_length must be positive",
		})
	}

	if c.Extraction.PreviewLength < 1 {
		errors = append(errors, ValidationError{
			Field:   "extraction.preview_length",
			Message: "preview_length must be positive",
		})
	}

	if c.Extraction.FuzzyThreshold < 0 || c.Extraction.FuzzyThreshold > 100 {
		errors = append(errors, ValidationError{
			Field:   "extraction.fuzzy_threshold",
			Message: "fuzzy_threshold must be between 0 and 100",
		})
	}

	if c.Extraction.MinTokenLength < 1 {
		errors = append(errors, ValidationError{
			Field:   "extraction.min_token_length",
			Message: "min_token_length must be positive",
		})
	}

	// Validate Vocabulary files
	files := []struct{ field, path string }{
		{"vocabulary.diseases_file", c.Vocabulary.DiseasesFile},
		{"vocabulary.allergies_file", c.Vocabulary.AllergiesFile},
	}
	for _, f := range files {
		if f.path == "" {
			continue
		}
		if _, err := os.Stat(f.path); err != nil {
			errors = append(errors, ValidationError{
				Field:   f.field,
				Message: fmt.Sprintf("cannot read %s", f.path),
			})
		}
	}

	// Validate Server config
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "server.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if c.Server.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "server.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Server.Burst < 1 {
		errors = append(errors, ValidationError{
			Field:   "server.burst",
			Message: "burst must be positive",
		})
	}

	// Validate Source config
	if c.Source.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "source.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	// Validate Database config
	if c.Database.URL != "" {
		if u, err := url.Parse(c.Database.URL); err != nil || u.Scheme == "" {
			errors = append(errors, ValidationError{
				Field:   "database.url",
				Message: "invalid database URL",
			})
		}
	}

	if !tableName.MatchString(c.Database.TableName) {
		errors = append(errors, ValidationError{
			Field:   "database.table_name",
			Message: "table_name must be a plain SQL identifier",
		})
	}

	if c.Database.BatchSize < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.batch_size",
			Message: "batch_size must be positive",
		})
	}

	// Validate Log config
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown log level: %s", c.Log.Level),
		})
	}

	if c.Log.Format != "console" && c.Log.Format != "json" {
		errors = append(errors, ValidationError{
			Field:   "log.format",
			Message: "format must be console or json",
		})
	}

	return errors
}
