// Package api serves build history and build requests over HTTP.
//
// Routes:
//
//	GET  /healthz       liveness and version
//	GET  /builds        recent build records (?limit=N, default 20)
//	GET  /builds/{id}   one build record
//	POST /builds        run a build; body {"entries": [...], "sourcepath": [...], "output": "..."}
//
// Builds run one at a time. Fields missing from a POST body fall back to the
// server's configured defaults. Paths a request does supply must lie inside
// the default search-path roots or the default output root; a server started
// without defaults accepts no request paths.
package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/sourcepath/pkg/build"
	"github.com/matzehuels/sourcepath/pkg/buildinfo"
	"github.com/matzehuels/sourcepath/pkg/errors"
	"github.com/matzehuels/sourcepath/pkg/history"
	"github.com/matzehuels/sourcepath/pkg/observability"
	"github.com/matzehuels/sourcepath/pkg/pipeline"
	"github.com/matzehuels/sourcepath/pkg/unit"
)

// DefaultListLimit is the number of records GET /builds returns by default.
const DefaultListLimit = 20

// Server is the HTTP API.
type Server struct {
	runner   *pipeline.Runner
	defaults pipeline.Options
	logger   *log.Logger
	router   chi.Router
	roots    []string // absolute, cleaned

	// builds against one output root must not overlap
	mu sync.Mutex
}

// New creates a server running builds through runner. defaults supplies
// fields a request leaves empty.
func New(runner *pipeline.Runner, defaults pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{runner: runner, defaults: defaults, logger: logger}
	for _, p := range append(slices.Clone(defaults.SourcePath), defaults.Output) {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			s.roots = append(s.roots, abs)
		}
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Route("/builds", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleBuild)
		r.Get("/{id}", s.handleGet)
	})
	return r
}

// observe logs each request and reports it to the HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Read()
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": info.Version,
		"commit":  info.ShortCommit(),
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	records, err := s.runner.History.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []*history.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rec, err := s.runner.History.Get(r.Context(), chi.URLParam(r, "id"))
	if stderrors.Is(err, history.ErrNotFound) {
		writeError(w, errors.Wrap(errors.ErrCodeBuildNotFound, err, "build %s", chi.URLParam(r, "id")))
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// buildRequest is the body of POST /builds.
type buildRequest struct {
	Entries    []string `json:"entries"`
	SourcePath []string `json:"sourcepath"`
	Output     string   `json:"output"`
	Refresh    bool     `json:"refresh"`
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	opts := s.defaults
	if len(req.Entries) > 0 {
		opts.Entries = req.Entries
	}
	if len(req.SourcePath) > 0 {
		opts.SourcePath = req.SourcePath
	}
	if req.Output != "" {
		opts.Output = req.Output
	}
	opts.Refresh = req.Refresh
	if err := s.checkPaths(req, opts.SourceSuffix); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	out, err := s.runner.Build(r.Context(), opts)
	s.mu.Unlock()

	if out == nil {
		writeError(w, err)
		return
	}
	if err != nil {
		writeJSON(w, statusFor(err), out.Record)
		return
	}
	writeJSON(w, http.StatusCreated, out.Record)
}

// checkPaths rejects request paths outside the server's roots.
func (s *Server) checkPaths(req buildRequest, suffix string) error {
	if suffix == "" {
		suffix = build.DefaultSourceSuffix
	}
	paths := slices.Clone(req.SourcePath)
	if req.Output != "" {
		paths = append(paths, req.Output)
	}
	for _, e := range req.Entries {
		if unit.IsFileEntry(e, suffix) {
			paths = append(paths, e)
		}
	}
	for _, p := range paths {
		if !s.allowed(p) {
			return errors.New(errors.ErrCodeInvalidPath, "path %s is outside the server's source and output roots", p)
		}
	}
	return nil
}

func (s *Server) allowed(p string) bool {
	abs, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	for _, root := range s.roots {
		rel, err := filepath.Rel(root, abs)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
