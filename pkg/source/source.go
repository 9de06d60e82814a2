package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xhad/medscan/internal/models"
	"github.com/xhad/medscan/internal/types"
	"golang.org/x/time/rate"
)

// ErrUnsupportedType is returned for files and responses that are neither
// plain text nor HTML.
var ErrUnsupportedType = errors.New("unsupported document type")

// ErrTooLarge is returned when a response body exceeds MaxBodyBytes.
var ErrTooLarge = errors.New("document too large")

// SupportedExtensions lists the file types Read accepts.
var SupportedExtensions = []string{".txt", ".text", ".html", ".htm"}

type SourceConfig struct {
	Timeout      time.Duration
	RateLimit    float64 // requests per second
	UserAgent    string
	MaxBodyBytes int64 // response size cap, 16 MiB by default
	// Selectors are tried in order to find the report body in HTML. The
	// whole body is used when none match.
	Selectors  []string
	OnProgress func(location string)
}

// Source fetches report text from local files or URLs.
type Source struct {
	file *FileSource
	http *HTTPSource
}

func NewWithConfig(config SourceConfig) *Source {
	if len(config.Selectors) == 0 {
		config.Selectors = defaultSelectors
	}
	return &Source{
		file: &FileSource{config: config},
		http: NewHTTPSource(config),
	}
}

func New() *Source {
	return NewWithConfig(SourceConfig{})
}

// ForPath picks the HTTP source for http(s) URLs and the file source for
// everything else.
func (s *Source) ForPath(location string) types.TextSource {
	if u, err := url.Parse(location); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return s.http
	}
	return s.file
}

func (s *Source) Fetch(ctx context.Context, location string) (models.Document, error) {
	return s.ForPath(location).Fetch(ctx, location)
}

// Supported reports whether name has an extension Read understands.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Read builds a document from r, choosing the parser by the extension of
// name.
func Read(name string, r io.Reader) (models.Document, error) {
	return read(name, r, defaultSelectors)
}

func read(name string, r io.Reader, selectors []string) (models.Document, error) {
	doc := models.Document{
		ID:     uuid.NewString(),
		Source: name,
		Metadata: map[string]interface{}{
			"time": time.Now(),
		},
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text":
		data, err := io.ReadAll(r)
		if err != nil {
			return models.Document{}, fmt.Errorf("error reading %s: %w", name, err)
		}
		doc.Title = filepath.Base(name)
		doc.Content = string(data)
		doc.Metadata["contentType"] = "text/plain"
	case ".html", ".htm":
		title, content, err := parseHTML(r, selectors)
		if err != nil {
			return models.Document{}, fmt.Errorf("error parsing %s: %w", name, err)
		}
		doc.Title = title
		doc.Content = content
		doc.Metadata["contentType"] = "text/html"
	default:
		return models.Document{}, fmt.Errorf("%w: %s", ErrUnsupportedType, name)
	}

	return doc, nil
}

// FileSource reads OCR output and saved HTML reports from disk.
type FileSource struct {
	config SourceConfig
}

func (f *FileSource) Fetch(ctx context.Context, path string) (models.Document, error) {
	if err := ctx.Err(); err != nil {
		return models.Document{}, err
	}
	if f.config.OnProgress != nil {
		f.config.OnProgress(path)
	}

	file, err := os.Open(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("error opening report: %w", err)
	}
	defer file.Close()

	doc, err := read(path, file, f.config.Selectors)
	if err != nil {
		return models.Document{}, err
	}
	if info, err := file.Stat(); err == nil {
		doc.Metadata["lastModified"] = info.ModTime()
	}
	return doc, nil
}

// HTTPSource fetches reports from a URL, rate limited across all callers.
type HTTPSource struct {
	config  SourceConfig
	client  *http.Client
	limiter *rate.Limiter
}

func NewHTTPSource(config SourceConfig) *HTTPSource {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2 // 2 requests per second by default
	}
	if config.UserAgent == "" {
		config.UserAgent = "medscan/1.0"
	}
	if config.MaxBodyBytes == 0 {
		config.MaxBodyBytes = 16 << 20
	}
	if len(config.Selectors) == 0 {
		config.Selectors = defaultSelectors
	}

	return &HTTPSource{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
	}
}

func (h *HTTPSource) Fetch(ctx context.Context, urlStr string) (models.Document, error) {
	if h.config.OnProgress != nil {
		h.config.OnProgress(urlStr)
	}

	// Apply rate limiting
	if err := h.limiter.Wait(ctx); err != nil {
		return models.Document{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return models.Document{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", h.config.UserAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return models.Document{}, fmt.Errorf("error fetching %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Document{}, fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, urlStr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.config.MaxBodyBytes+1))
	if err != nil {
		return models.Document{}, fmt.Errorf("error reading response: %w", err)
	}
	if int64(len(body)) > h.config.MaxBodyBytes {
		return models.Document{}, fmt.Errorf("%w: %s is over %d bytes", ErrTooLarge, urlStr, h.config.MaxBodyBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = http.DetectContentType(body)
		mediaType, _, _ = mime.ParseMediaType(mediaType)
	}

	var name string
	switch mediaType {
	case "text/html":
		name = "report.html"
	case "text/plain":
		name = "report.txt"
	default:
		return models.Document{}, fmt.Errorf("%w: %s from %s", ErrUnsupportedType, mediaType, urlStr)
	}

	doc, err := read(name, bytes.NewReader(body), h.config.Selectors)
	if err != nil {
		return models.Document{}, err
	}
	doc.Source = urlStr
	if doc.Title == name {
		doc.Title = urlStr
	}
	doc.Metadata["contentType"] = contentType
	doc.Metadata["lastModified"] = resp.Header.Get("Last-Modified")
	return doc, nil
}
