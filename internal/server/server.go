// Package server exposes the chart pipeline over a small HTTP API.
//
// The server accepts inline datasets only. Requests never name files on the
// host, so a deployment can run the preview API without granting filesystem
// access to callers.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/buildinfo"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/errors"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/observability"
	"github.com/MATLAB-Graphics-and-App-Building/bubble-pie-chart/pkg/pipeline"
)

// MaxRequestBody bounds render request bodies. Datasets are small; anything
// larger is a client error.
const MaxRequestBody = 4 << 20 // 4 MiB

// ShutdownTimeout is how long in-flight requests get to finish on shutdown.
const ShutdownTimeout = 10 * time.Second

// contentTypes maps output formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

// Server serves chart rendering requests.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a server backed by the given runner.
// If logger is nil, the default logger is used.
func New(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)
	r.Post("/layout", s.handleLayout)

	return r
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// observe reports requests to the observability hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(req.Context(), req.Method, req.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		observability.HTTP().OnResponse(req.Context(), req.Method, req.URL.Path, ww.Status(), time.Since(start))
		s.logger.Debug("request",
			"method", req.Method,
			"path", req.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// renderResponse is the multi-format render payload. Artifact bytes are
// base64-encoded by encoding/json.
type renderResponse struct {
	DatasetHash string             `json:"dataset_hash"`
	CacheInfo   pipeline.CacheInfo `json:"cache_info"`
	Artifacts   map[string][]byte  `json:"artifacts"`
}

func (s *Server) handleRender(w http.ResponseWriter, req *http.Request) {
	opts, ok := s.decodeOptions(w, req)
	if !ok {
		return
	}

	result, err := s.runner.Execute(req.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// A single requested format streams raw bytes with its content type.
	if len(opts.Formats) == 1 {
		format := opts.Formats[0]
		w.Header().Set("Content-Type", contentTypes[format])
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Artifacts[format])
		return
	}

	writeJSON(w, http.StatusOK, renderResponse{
		DatasetHash: result.DatasetHash,
		CacheInfo:   result.CacheInfo,
		Artifacts:   result.Artifacts,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, req *http.Request) {
	opts, ok := s.decodeOptions(w, req)
	if !ok {
		return
	}

	ds, err := s.runner.Load(req.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	layout, err := s.runner.ComputeLayout(req.Context(), ds, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, layout)
}

// decodeOptions parses pipeline options from the request body and rejects
// file-backed inputs.
func (s *Server) decodeOptions(w http.ResponseWriter, req *http.Request) (pipeline.Options, bool) {
	var opts pipeline.Options

	body := http.MaxBytesReader(w, req.Body, MaxRequestBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode request"))
		return pipeline.Options{}, false
	}

	if opts.Input != "" {
		s.writeError(w, errors.New(errors.ErrCodeUnsupported, "file inputs are not accepted, send the dataset inline"))
		return pipeline.Options{}, false
	}
	if opts.Dataset == nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidDataset, "request has no dataset"))
		return pipeline.Options{}, false
	}

	opts.Logger = s.logger
	return opts, true
}

// errorResponse is the JSON error payload.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	} else {
		s.logger.Debug("request rejected", "error", err)
	}

	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  string(code),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidDataset,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidTheme,
		errors.ErrCodeInvalidViewport,
		errors.ErrCodeSizeMismatch:
		return http.StatusBadRequest
	case errors.ErrCodeDegenerateComposition,
		errors.ErrCodeDegenerateLimits:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
