package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportHTML = `
<html>
	<head><title>Lab Report</title><style>p { color: red; }</style></head>
	<body>
		<nav>Home | Results</nav>
		<div class="report">
			<p>NAME - Mr. Amarasena</p>
			<p>AGE   - 56 years</p>
			<table><tr><td>TOTAL CHOLESTEROL -</td><td>225.8 mg/dl</td></tr></table>
			HDL - 45.8 mg/dl<br>LDL - 147.3 mg/dl
		</div>
	</body>
</html>`

func TestRead_HTML(t *testing.T) {
	doc, err := Read("report.html", strings.NewReader(reportHTML))
	require.NoError(t, err)

	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "Lab Report", doc.Title)
	assert.Equal(t, "report.html", doc.Source)
	assert.Equal(t, "NAME - Mr. Amarasena\nAGE - 56 years\nTOTAL CHOLESTEROL - 225.8 mg/dl\nHDL - 45.8 mg/dl\nLDL - 147.3 mg/dl", doc.Content)
	assert.NotContains(t, doc.Content, "Home")
}

func TestRead_HTMLBodyFallback(t *testing.T) {
	doc, err := Read("page.htm", strings.NewReader(`<html><body><script>var x = 1;</script><p>Blood Sugar: 87 mg/dl</p></body></html>`))
	require.NoError(t, err)
	assert.Equal(t, "Blood Sugar: 87 mg/dl", doc.Content)
}

func TestRead_Text(t *testing.T) {
	text := "AGE - 56 years\n\nBlood Sugar: 87 mg/dl\n"
	doc, err := Read("scan.TXT", strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, text, doc.Content)
	assert.Equal(t, "scan.TXT", doc.Title)
}

func TestRead_Unsupported(t *testing.T) {
	_, err := Read("scan.pdf", strings.NewReader("%PDF-1.4"))
	assert.True(t, errors.Is(err, ErrUnsupportedType))
}

func TestSupported(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"report.txt", true},
		{"report.HTML", true},
		{"report.htm", true},
		{"report.pdf", false},
		{"report", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Supported(tt.name))
		})
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("TOTAL CHOLESTEROL - 225.8 mg/dl"), 0644))

	var progress []string
	s := NewWithConfig(SourceConfig{OnProgress: func(location string) { progress = append(progress, location) }})

	doc, err := s.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "TOTAL CHOLESTEROL - 225.8 mg/dl", doc.Content)
	assert.Equal(t, path, doc.Source)
	assert.Equal(t, []string{path}, progress)

	_, err = s.Fetch(context.Background(), filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestForPath(t *testing.T) {
	s := New()

	assert.IsType(t, &HTTPSource{}, s.ForPath("https://example.com/report.html"))
	assert.IsType(t, &HTTPSource{}, s.ForPath("http://example.com/report"))
	assert.IsType(t, &FileSource{}, s.ForPath("/tmp/report.txt"))
	assert.IsType(t, &FileSource{}, s.ForPath("report.txt"))
}

func TestHTTPSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "medscan-test", r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/report.html":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write([]byte(reportHTML))
		case "/report.txt":
			w.Header().Set("Content-Type", "text/plain")
			w.Write([]byte("HbA1c: 7.2%"))
		case "/scan.png":
			w.Header().Set("Content-Type", "image/png")
			w.Write([]byte{0x89, 'P', 'N', 'G'})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	h := NewHTTPSource(SourceConfig{RateLimit: 100, UserAgent: "medscan-test"})
	ctx := context.Background()

	doc, err := h.Fetch(ctx, server.URL+"/report.html")
	require.NoError(t, err)
	assert.Equal(t, "Lab Report", doc.Title)
	assert.Equal(t, server.URL+"/report.html", doc.Source)
	assert.Contains(t, doc.Content, "AGE - 56 years")

	doc, err = h.Fetch(ctx, server.URL+"/report.txt")
	require.NoError(t, err)
	assert.Equal(t, "HbA1c: 7.2%", doc.Content)
	assert.Equal(t, server.URL+"/report.txt", doc.Title)

	_, err = h.Fetch(ctx, server.URL+"/scan.png")
	assert.True(t, errors.Is(err, ErrUnsupportedType))

	_, err = h.Fetch(ctx, server.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "received status code 404")
}

func TestHTTPSource_TooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(strings.Repeat("a", 64)))
	}))
	defer server.Close()

	h := NewHTTPSource(SourceConfig{RateLimit: 100, MaxBodyBytes: 32})
	_, err := h.Fetch(context.Background(), server.URL+"/report.txt")
	assert.True(t, errors.Is(err, ErrTooLarge))

	h = NewHTTPSource(SourceConfig{RateLimit: 100, MaxBodyBytes: 64})
	doc, err := h.Fetch(context.Background(), server.URL+"/report.txt")
	require.NoError(t, err)
	assert.Len(t, doc.Content, 64)
}

func TestHTTPSource_ContextCancelled(t *testing.T) {
	h := NewHTTPSource(SourceConfig{RateLimit: 0.001, Timeout: time.Second})
	// Drain the single token so the next call has to wait.
	h.limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Fetch(ctx, "http://127.0.0.1:1/report.txt")
	assert.Error(t, err)
}
