package types

import (
	"context"
	"time"

	"github.com/xhad/medscan/internal/models"
)

// Core interfaces
type TextSource interface {
	Fetch(ctx context.Context, location string) (models.Document, error)
}

type Extractor interface {
	Extract(text string) models.ExtractionResult
	ExtractDocument(doc models.Document) models.ExtractionResult
	SupportedDiseases() []string
}

// StoredResult is one persisted extraction.
type StoredResult struct {
	ID        string
	Source    string
	Result    models.ExtractionResult
	CreatedAt time.Time
	Distance  float64
}

type ResultStore interface {
	Save(ctx context.Context, docs []models.ProcessedDocument) ([]string, error)
	Get(ctx context.Context, id string) (*StoredResult, error)
	Similar(ctx context.Context, labs models.LabValues, limit int) ([]StoredResult, error)
	Close()
}
