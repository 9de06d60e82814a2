package models

// Document is a piece of acquired report text together with where it came from.
type Document struct {
	ID       string
	Source   string
	Title    string
	Content  string
	Metadata map[string]interface{}
}

// NormalizedText keeps the cleaned original alongside the lower-cased copy
// that every pattern runs against.
type NormalizedText struct {
	Original string
	Lower    string
}

// ProcessedDocument pairs a document with its extraction.
type ProcessedDocument struct {
	Document
	Result ExtractionResult
}
