package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/todomcp/todo/internal/db"
)

const (
	serviceName    = "Todo Service API"
	serviceVersion = "1.0.0"
)

// Server is the todo HTTP API server.
type Server struct {
	store  db.Store
	mux    *http.ServeMux
	config Config
	logger *slog.Logger
}

// New creates a new Server with the given store and config. A nil logger
// discards request logs.
func New(store db.Store, cfg Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		store:  store,
		mux:    http.NewServeMux(),
		config: cfg,
		logger: logger,
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	if s.config.APIToken != "" {
		handler = s.authMiddleware(handler)
	}
	return s.loggingMiddleware(handler)
}

// ListenAndServe starts the server and shuts it down gracefully when ctx is
// cancelled. Uses TLS if configured.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		if s.config.HasTLS() {
			s.logger.Info("todo server listening", "url", "https://"+srv.Addr)
			errc <- srv.ListenAndServeTLS(s.config.TLSCert, s.config.TLSKey)
			return
		}
		s.logger.Info("todo server listening", "url", "http://"+srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/stats", s.handleStats)

	s.mux.HandleFunc("GET /api/v1/tasks", s.handleListTasks)
	s.mux.HandleFunc("POST /api/v1/tasks", s.handleCreateTask)
	s.mux.HandleFunc("GET /api/v1/tasks/{id}", s.handleGetTask)
	s.mux.HandleFunc("PUT /api/v1/tasks/{id}", s.handleUpdateTask)
	s.mux.HandleFunc("PATCH /api/v1/tasks/{id}", s.handleUpdateTask)
	s.mux.HandleFunc("PATCH /api/v1/tasks/{id}/status", s.handleUpdateStatus)
	s.mux.HandleFunc("DELETE /api/v1/tasks/{id}", s.handleDeleteTask)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CountByStatus()
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":     total,
		"by_status": counts,
	})
}

// --- Tasks ---

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	var opts db.ListOptions
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := db.ParseStatus(raw)
		if err != nil {
			writeValidation(w, db.FieldError{Field: "query.status", Message: "must be one of: pending, in_progress, done"})
			return
		}
		opts.Status = status
	}

	tasks, err := s.store.ListTasks(opts)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []*db.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := s.store.GetTask(id)
	if err != nil {
		s.storeError(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var input db.CreateTaskInput
	if err := readJSON(r, &input); err != nil {
		writeValidation(w, db.FieldError{Field: "body", Message: err.Error()})
		return
	}

	task, err := s.store.CreateTask(input)
	if err != nil {
		s.storeError(w, r, 0, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var input db.UpdateTaskInput
	if err := readJSON(r, &input); err != nil {
		writeValidation(w, db.FieldError{Field: "body", Message: err.Error()})
		return
	}

	task, err := s.store.UpdateTask(id, input)
	if err != nil {
		s.storeError(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := readJSON(r, &body); err != nil {
		writeValidation(w, db.FieldError{Field: "body", Message: err.Error()})
		return
	}
	if body.Status == "" {
		writeValidation(w, db.FieldError{Field: "body.status", Message: "field required"})
		return
	}
	status, err := db.ParseStatus(body.Status)
	if err != nil {
		writeValidation(w, db.FieldError{Field: "body.status", Message: "must be one of: pending, in_progress, done"})
		return
	}

	task, err := s.store.UpdateTaskStatus(id, status)
	if err != nil {
		s.storeError(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteTask(id); err != nil {
		s.storeError(w, r, id, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true, "id": id})
}

// --- Helpers ---

// pathID parses the {id} path segment, writing a 400 when it is not a
// positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.PathValue("id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeValidation(w, db.FieldError{Field: "path.task_id", Message: "value is not a valid integer"})
		return 0, false
	}
	return id, true
}

// storeError maps store failures onto HTTP responses.
func (s *Server) storeError(w http.ResponseWriter, r *http.Request, id int64, err error) {
	var verr *db.ValidationError
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, fmt.Sprintf("Task with id %d not found", id))
	case errors.As(err, &verr):
		fields := make([]db.FieldError, len(verr.Fields))
		for i, f := range verr.Fields {
			fields[i] = db.FieldError{Field: "body." + f.Field, Message: f.Message}
		}
		writeValidation(w, fields...)
	default:
		s.internalError(w, r, err)
	}
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error":   "Internal Server Error",
		"message": "An unexpected error occurred",
	})
}

func readJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("empty request body")
	}
	return json.Unmarshal(body, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeValidation(w http.ResponseWriter, fields ...db.FieldError) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":   "Validation Error",
		"details": fields,
	})
}
