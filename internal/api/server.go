// Package api implements the HTTP collaborator surface for SliceGrid.
//
// The API exposes the same pipeline the CLI uses: clients POST a raw
// descriptor document plus resolution parameters and receive the resolved
// composition with per-slice drop diagnostics. Partial data never turns
// into a hard failure — structural errors map to 4xx responses, per-slice
// problems ride along in the response body.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/slicegrid/slicegrid/pkg/errors"
	"github.com/slicegrid/slicegrid/pkg/pipeline"
)

// maxDescriptorBytes caps request bodies. Real composition exports are a
// few hundred KB at most.
const maxDescriptorBytes = 8 << 20

// Server serves the resolve API on top of a pipeline Runner.
type Server struct {
	runner *pipeline.Runner
	logger *log.Logger
}

// NewServer creates a server around the given runner.
func NewServer(runner *pipeline.Runner, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, logger: logger}
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/resolve", s.handleResolve)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resolveRequest is the POST /v1/resolve body. Descriptor holds the raw
// document text (XML or JSON); the pipeline sniffs the format.
type resolveRequest struct {
	Descriptor string `json:"descriptor"`
	View       string `json:"view,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Refresh    bool   `json:"refresh,omitempty"`
}

// resolveResponse wraps the pipeline output.
type resolveResponse struct {
	Result         json.RawMessage `json:"result"`
	DescriptorHash string          `json:"descriptor_hash"`
	CacheHit       bool            `json:"cache_hit"`
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxDescriptorBytes)

	var req resolveRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "decode request: %v", err))
		return
	}
	if req.Descriptor == "" {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "descriptor is required"))
		return
	}

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Data:    []byte(req.Descriptor),
		View:    req.View,
		Width:   req.Width,
		Height:  req.Height,
		Refresh: req.Refresh,
		Logger:  s.logger,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resultJSON, err := json.Marshal(res.Result)
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "encode result"))
		return
	}

	writeJSON(w, http.StatusOK, resolveResponse{
		Result:         resultJSON,
		DescriptorHash: res.DescriptorHash,
		CacheHit:       res.CacheHit,
	})
}

// =============================================================================
// Response Helpers
// =============================================================================

// errorBody is the JSON error envelope.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// statusFor maps error codes to HTTP statuses. Unknown codes are internal
// errors.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidView,
		errors.ErrCodeInvalidResolution,
		errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeMissingRoot, errors.ErrCodeInvalidDescriptor:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}

	var body errorBody
	body.Error.Code = string(code)
	body.Error.Message = errors.UserMessage(err)
	writeJSON(w, statusFor(code), body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
