package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/xhad/medscan/internal/models"
	"github.com/xhad/medscan/internal/types"
	"github.com/xhad/medscan/pkg/metrics"
	"github.com/xhad/medscan/pkg/pipeline"
	"github.com/xhad/medscan/pkg/source"
	"github.com/xhad/medscan/pkg/store"
	"golang.org/x/time/rate"
)

const defaultMaxUploadBytes = 16 << 20

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is the WebSocket envelope in both directions.
type Message struct {
	Type    string      `json:"type"`
	Content string      `json:"content,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type Config struct {
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RateLimit      float64 // requests per second across all clients
	Burst          int
	MaxUploadBytes int64 // caps every request body
}

type Server struct {
	config    Config
	extractor types.Extractor
	store     types.ResultStore
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	limiter   *rate.Limiter
	logger    zerolog.Logger
}

type Option func(*Server)

// WithStore persists every extraction the server runs.
func WithStore(rs types.ResultStore) Option {
	return func(s *Server) {
		s.store = rs
	}
}

// WithMetrics records extractions on m and serves g on /metrics.
func WithMetrics(m *metrics.Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

func New(config Config, extractor types.Extractor, opts ...Option) *Server {
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = 15 * time.Second
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 30 * time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 10
	}
	if config.Burst == 0 {
		config.Burst = 20
	}
	if config.MaxUploadBytes == 0 {
		config.MaxUploadBytes = defaultMaxUploadBytes
	}

	s := &Server{
		config:    config,
		extractor: extractor,
		limiter:   rate.NewLimiter(rate.Limit(config.RateLimit), config.Burst),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routes. Everything under /api/ and /ws is rate limited.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/extract", s.handleExtract)
	api.HandleFunc("POST /api/process-report", s.handleProcessReport)
	api.HandleFunc("POST /api/profile/merge", s.handleMergeProfile)
	api.HandleFunc("GET /api/diseases", s.handleDiseases)
	api.HandleFunc("GET /api/extractions/{id}", s.handleGetExtraction)
	api.HandleFunc("POST /api/extractions/similar", s.handleSimilar)
	api.HandleFunc("GET /ws", s.handleWebSocket)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	mux.Handle("/", s.rateLimit(api))
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Int("port", s.config.Port).Msg("starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info().Msg("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			if s.metrics != nil {
				s.metrics.RateLimited.Inc()
			}
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractResponse is an ExtractionResult plus the id it was stored under.
type extractResponse struct {
	models.ExtractionResult
	ID string `json:"id,omitempty"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	doc := models.Document{Source: "api", Content: req.Text}
	writeJSON(w, http.StatusOK, s.process(r.Context(), doc))
}

func (s *Server) handleProcessReport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	doc, status, err := s.readUpload(r)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.process(r.Context(), doc))
}

// handleMergeProfile takes a profile as the "data" form field and an
// optional report "file", and returns the profile with the report merged in.
func (s *Server) handleMergeProfile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
		if tooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeError(w, http.StatusBadRequest, "expected multipart form")
		return
	}

	var profile models.Profile
	if err := json.Unmarshal([]byte(r.FormValue("data")), &profile); err != nil {
		writeError(w, http.StatusBadRequest, "Missing data field in form")
		return
	}

	resp := struct {
		Success    bool                     `json:"success"`
		Profile    models.Profile           `json:"profile"`
		Extraction *models.ExtractionResult `json:"extraction,omitempty"`
	}{Success: true, Profile: profile}

	if len(r.MultipartForm.File["file"]) > 0 {
		doc, status, err := s.readUpload(r)
		if err != nil {
			writeError(w, status, err.Error())
			return
		}
		result := s.process(r.Context(), doc)
		if !result.Success {
			s.logger.Warn().Str("file", doc.Source).Str("reason", result.Error).Msg("report not merged")
		}
		resp.Profile = pipeline.MergeProfile(profile, result.ExtractionResult)
		resp.Extraction = &result.ExtractionResult
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDiseases(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"diseases": s.extractor.SupportedDiseases(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"store":     s.store != nil,
	})
}

func (s *Server) handleGetExtraction(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "result store not configured")
		return
	}

	rec, err := s.store.Get(r.Context(), r.PathValue("id"))
	s.observeStore("get", err)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to load extraction")
		writeError(w, http.StatusInternalServerError, "failed to load extraction")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "result store not configured")
		return
	}

	var req struct {
		LabValues models.LabValues `json:"lab_values"`
		Limit     int              `json:"limit"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	results, err := s.store.Similar(r.Context(), req.LabValues, req.Limit)
	s.observeStore("similar", err)
	if err != nil {
		s.logger.Error().Err(err).Msg("similarity search failed")
		writeError(w, http.StatusInternalServerError, "similarity search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"results": results,
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	send := func(msg Message) {
		mu.Lock()
		defer mu.Unlock()
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Debug().Err(err).Msg("error sending message")
		}
	}
	defer wg.Wait()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn().Err(err).Msg("error reading message")
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			send(Message{Type: "error", Content: "invalid message"})
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			send(s.handleMessage(r.Context(), msg))
		}()
	}
}

func (s *Server) handleMessage(ctx context.Context, msg Message) Message {
	switch msg.Type {
	case "extract":
		result := s.process(ctx, models.Document{Source: "ws", Content: msg.Content})
		return Message{Type: "result", Data: result}
	case "diseases":
		return Message{Type: "diseases", Data: s.extractor.SupportedDiseases()}
	default:
		return Message{Type: "error", Content: fmt.Sprintf("unknown message type: %s", msg.Type)}
	}
}

// process runs one document through the extractor, records metrics and
// stores the result when a store is configured. Store failures are logged;
// the extraction is still returned.
func (s *Server) process(ctx context.Context, doc models.Document) extractResponse {
	start := time.Now()
	result := s.extractor.ExtractDocument(doc)
	if s.metrics != nil {
		s.metrics.ObserveExtraction(result, time.Since(start))
	}

	resp := extractResponse{ExtractionResult: result}
	if s.store == nil {
		return resp
	}

	ids, err := s.store.Save(ctx, []models.ProcessedDocument{{Document: doc, Result: result}})
	s.observeStore("save", err)
	if err != nil {
		s.logger.Error().Err(err).Str("source", doc.Source).Msg("failed to store extraction")
		return resp
	}
	resp.ID = ids[0]
	return resp
}

func (s *Server) observeStore(op string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveStore(op, err)
	}
}

func (s *Server) readUpload(r *http.Request) (models.Document, int, error) {
	file, header, err := r.FormFile("file")
	if tooLarge(err) {
		return models.Document{}, http.StatusRequestEntityTooLarge, errors.New("File too large")
	}
	if err != nil {
		return models.Document{}, http.StatusBadRequest, errors.New("No file uploaded")
	}
	defer file.Close()

	if header.Filename == "" {
		return models.Document{}, http.StatusBadRequest, errors.New("No file selected")
	}
	if !source.Supported(header.Filename) {
		return models.Document{}, http.StatusBadRequest, fmt.Errorf("File type not allowed. Supported: %s", strings.Join(source.SupportedExtensions, ", "))
	}

	doc, err := source.Read(header.Filename, file)
	if err != nil {
		return models.Document{}, http.StatusBadRequest, err
	}
	return doc, http.StatusOK, nil
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}
