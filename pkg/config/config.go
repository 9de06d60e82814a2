package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Extraction ExtractionConfig `yaml:"extraction"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Server     ServerConfig     `yaml:"server"`
	Source     SourceConfig     `yaml:"source"`
	Database   DatabaseConfig   `yaml:"database"`
	Log        LogConfig        `yaml:"log"`
}

type ExtractionConfig struct {
	MinLength         int  `yaml:"min_length"`
	PreviewLength     int  `yaml:"preview_length"`
	FuzzyThreshold    int  `yaml:"fuzzy_threshold"`
	MinTokenLength    int  `yaml:"min_token_length"`
	FlattenLineBreaks bool `yaml:"flatten_line_breaks"`
}

// VocabularyConfig points at YAML files replacing the built-in lists. Empty
// paths keep the defaults.
type VocabularyConfig struct {
	DiseasesFile  string `yaml:"diseases_file"`
	AllergiesFile string `yaml:"allergies_file"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	RateLimit    float64       `yaml:"rate_limit"`
	Burst        int           `yaml:"burst"`
	StoreResults bool          `yaml:"store_results"`
}

type SourceConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rate_limit"`
	UserAgent string        `yaml:"user_agent"`
}

type DatabaseConfig struct {
	URL       string `yaml:"url"`
	TableName string `yaml:"table_name"`
	BatchSize int    `yaml:"batch_size"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"medscan.yaml",
			"medscan.yml",
			filepath.Join(os.Getenv("HOME"), ".config/medscan/config.yaml"),
			"/etc/medscan/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Extraction.MinLength == 0 {
		config.Extraction.MinLength = 10
	}
	if config.Extraction.PreviewLength == 0 {
		config.Extraction.PreviewLength = 500
	}
	if config.Extraction.FuzzyThreshold == 0 {
		config.Extraction.FuzzyThreshold = 85
	}
	if config.Extraction.MinTokenLength == 0 {
		config.Extraction.MinTokenLength = 4
	}

	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.ReadTimeout == 0 {
		config.Server.ReadTimeout = 15 * time.Second
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 30 * time.Second
	}
	if config.Server.RateLimit == 0 {
		config.Server.RateLimit = 10
	}
	if config.Server.Burst == 0 {
		config.Server.Burst = 20
	}

	if config.Source.Timeout == 0 {
		config.Source.Timeout = 30 * time.Second
	}
	if config.Source.RateLimit == 0 {
		config.Source.RateLimit = 2.0
	}
	if config.Source.UserAgent == "" {
		config.Source.UserAgent = "medscan/1.0"
	}

	if config.Database.TableName == "" {
		config.Database.TableName = "extractions"
	}
	if config.Database.BatchSize == 0 {
		config.Database.BatchSize = 50
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "console"
	}
}

func mergeWithEnv(config *Config) {
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
	if port := os.Getenv("MEDSCAN_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if level := os.Getenv("MEDSCAN_LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
}
