package web

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/corey/glossa/internal/domain/annotate"
	"github.com/corey/glossa/internal/domain/lexicon"
)

// Options configures the HTTP server. Zero timeouts fall back to defaults.
type Options struct {
	PortFile        string // written with the bound port; empty disables
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBody         int64 // request body limit in bytes; zero means 4 MiB
}

// Server serves the annotation API over HTTP.
type Server struct {
	engine   *annotate.Engine
	logger   *slog.Logger
	traffic  *Throughput
	opts     Options
	listener net.Listener
	httpSrv  *http.Server
	port     int
	started  time.Time
	stopOnce sync.Once
}

// NewServer creates an HTTP server around engine.
func NewServer(engine *annotate.Engine, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 10 * time.Second
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if opts.MaxBody <= 0 {
		opts.MaxBody = 4 << 20
	}
	return &Server{
		engine:  engine,
		logger:  logger,
		traffic: NewThroughput(5 * time.Minute),
		opts:    opts,
		started: time.Now(),
	}
}

// DefaultPort computes a project-specific port: 19000 + (hash(abs_path) % 1000).
func DefaultPort(projectRoot string) int {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		abs = projectRoot
	}
	h := sha256.Sum256([]byte(abs))
	// Use first 4 bytes as uint32
	n := uint32(h[0])<<24 | uint32(h[1])<<16 | uint32(h[2])<<8 | uint32(h[3])
	return 19000 + int(n%1000)
}

// Handler returns the routing table. Exposed for httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /", http.FileServerFS(staticFS))
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/lookup", s.handleLookup)
	mux.HandleFunc("POST /api/annotate", s.handleAnnotate)
	return secureHeaders(mux)
}

// playgroundPolicy allows only same-origin scripts. Annotated HTML shown
// by the playground cannot run inline scripts or event handlers.
const playgroundPolicy = "default-src 'self'; script-src 'self'; style-src 'self' 'unsafe-inline'; object-src 'none'; base-uri 'none'"

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Security-Policy", playgroundPolicy)
		h.Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

// Start begins listening on host:preferredPort and writes the bound port
// to the port file.
func (s *Server) Start(host string, preferredPort int) error {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", preferredPort))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln
	s.port = ln.Addr().(*net.TCPAddr).Port
	s.started = time.Now()

	s.httpSrv = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	// Write port file for discovery
	if s.opts.PortFile != "" {
		if err := os.WriteFile(s.opts.PortFile, []byte(fmt.Sprintf("%d", s.port)), 0644); err != nil {
			s.logger.Warn("write port file", slog.String("path", s.opts.PortFile), slog.Any("error", err))
		}
	}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", slog.Any("error", err))
		}
	}()
	s.logger.Info("http server listening", slog.String("addr", ln.Addr().String()))
	return nil
}

// Stop gracefully shuts down the HTTP server. Idempotent.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
			defer cancel()
			if err := s.httpSrv.Shutdown(ctx); err != nil {
				s.logger.Warn("http shutdown", slog.Any("error", err))
			}
		}
		if s.opts.PortFile != "" {
			os.Remove(s.opts.PortFile)
		}
	})
}

// Port returns the bound port number.
func (s *Server) Port() int {
	return s.port
}

// URL returns the playground URL.
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.port)
}

// HealthResult is the /api/health response.
type HealthResult struct {
	Status     string `json:"status"`
	Generation uint64 `json:"generation"`
	Phrases    int    `json:"phrases"`
	Words      int    `json:"words"`
	Uptime     string `json:"uptime"`
}

// StatsResult is the /api/stats response: the current snapshot plus
// request throughput.
type StatsResult struct {
	annotate.Stats
	Documents    int64   `json:"documents"`
	InputBytes   int64   `json:"input_bytes"`
	BytesPerMin  float64 `json:"bytes_per_min"`
	UptimeSecond int64   `json:"uptime_seconds"`
}

// LookupResult is the /api/lookup response.
type LookupResult struct {
	Query  string           `json:"query"`
	Groups []*lexicon.Group `json:"groups"`
	Count  int              `json:"count"`
}

// AnnotateRequest is the /api/annotate request body. Either Text or Chunks
// is set.
type AnnotateRequest struct {
	Text   string   `json:"text"`
	Chunks []string `json:"chunks,omitempty"`
	Format string   `json:"format,omitempty"`
}

// AnnotateResult is the /api/annotate response for chunked requests.
type AnnotateResult struct {
	Documents []*annotate.Document `json:"documents"`
	Count     int                  `json:"count"`
}

type errorResult struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResult{Error: err.Error()})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, staticFS, "static/index.html")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.engine.Snapshot().Stats()
	writeJSON(w, http.StatusOK, HealthResult{
		Status:     "ok",
		Generation: st.Generation,
		Phrases:    st.Counts.Phrases,
		Words:      st.Counts.Words,
		Uptime:     time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	docs, bytes := s.traffic.Totals()
	writeJSON(w, http.StatusOK, StatsResult{
		Stats:        s.engine.Snapshot().Stats(),
		Documents:    docs,
		InputBytes:   bytes,
		BytesPerMin:  s.traffic.BytesPerMinAt(time.Now()),
		UptimeSecond: int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing q parameter"))
		return
	}
	groups := s.engine.Lookup(q)
	if groups == nil {
		groups = []*lexicon.Group{}
	}
	writeJSON(w, http.StatusOK, LookupResult{Query: q, Groups: groups, Count: len(groups)})
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBody)
	var req AnnotateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, err)
			return
		}
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}
	format, err := annotate.ParseFormat(req.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.Chunks != nil {
		docs, err := s.engine.AnnotateChunks(r.Context(), req.Chunks, format)
		if err != nil {
			s.writeAnnotateError(w, err)
			return
		}
		for _, c := range req.Chunks {
			s.traffic.Record(len(c))
		}
		writeJSON(w, http.StatusOK, AnnotateResult{Documents: docs, Count: len(docs)})
		return
	}

	doc, err := s.engine.Annotate(req.Text, format)
	if err != nil {
		s.writeAnnotateError(w, err)
		return
	}
	s.traffic.Record(len(req.Text))
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) writeAnnotateError(w http.ResponseWriter, err error) {
	switch {
	case annotate.IsInputTooLarge(err):
		writeError(w, http.StatusRequestEntityTooLarge, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.logger.Error("annotate failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, err)
	}
}
