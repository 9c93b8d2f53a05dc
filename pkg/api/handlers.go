package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rdblue/avro"
	"github.com/rdblue/avro/pkg/registry"
)

// Server holds the API server state
type Server struct {
	registry IRegistry
	config   ServerConfig
	metrics  *Metrics
}

// NewServer creates a new API server
func NewServer(reg IRegistry, config ServerConfig, metrics *Metrics) *Server {
	return &Server{
		registry: reg,
		config:   config,
		metrics:  metrics,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleRegister parses and stores a schema, responding with its ID.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.observe("register", start, err)
		sendError(w, "invalid JSON in request body", http.StatusBadRequest)
		return
	}
	if req.Schema == "" {
		s.observe("register", start, errors.New("empty schema"))
		sendError(w, "schema is required", http.StatusBadRequest)
		return
	}

	id, err := s.registry.Register([]byte(req.Schema))
	s.observe("register", start, err)
	if err != nil {
		if avro.IsKind(err, avro.KindInvalidSchema) {
			sendError(w, fmt.Sprintf("invalid schema: %v", err), http.StatusBadRequest)
			return
		}
		sendError(w, fmt.Sprintf("failed to register schema: %v", err), http.StatusInternalServerError)
		return
	}

	s.refreshSchemaCount()
	sendSuccess(w, RegisterResponse{ID: id})
}

// handleGetSchema returns the canonical JSON of a stored schema.
func (s *Server) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id := chi.URLParam(r, "id")
	if id == "" {
		s.observe("get", start, errors.New("missing id"))
		sendError(w, "schema ID is required", http.StatusBadRequest)
		return
	}

	_, canonical, err := s.registry.Get(id)
	s.observe("get", start, err)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			sendError(w, "schema not found", http.StatusNotFound)
			return
		}
		sendError(w, fmt.Sprintf("failed to fetch schema: %v", err), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, SchemaResponse{ID: id, Schema: string(canonical)})
}

// handleListSchemas returns every registered schema.
func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	entries, err := s.registry.List()
	s.observe("list", start, err)
	if err != nil {
		sendError(w, fmt.Sprintf("failed to list schemas: %v", err), http.StatusInternalServerError)
		return
	}

	if s.metrics != nil {
		s.metrics.SetSchemaCount(len(entries))
	}
	sendSuccess(w, entries)
}

// handleCompat answers whether data written under one stored schema can
// be read under another.
func (s *Server) handleCompat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CompatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.observe("compat", start, err)
		sendError(w, "invalid JSON in request body", http.StatusBadRequest)
		return
	}
	if req.WriterID == "" || req.ReaderID == "" {
		s.observe("compat", start, errors.New("missing id"))
		sendError(w, "writer_id and reader_id are required", http.StatusBadRequest)
		return
	}

	compatible, err := s.registry.CheckCompat(req.WriterID, req.ReaderID)
	s.observe("compat", start, err)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			sendError(w, "schema not found", http.StatusNotFound)
			return
		}
		sendError(w, fmt.Sprintf("failed to check compatibility: %v", err), http.StatusInternalServerError)
		return
	}

	sendSuccess(w, CompatResponse{Compatible: compatible})
}

func (s *Server) observe(operation string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.Observe(operation, start, err)
	}
}

func (s *Server) refreshSchemaCount() {
	if s.metrics == nil {
		return
	}
	if entries, err := s.registry.List(); err == nil {
		s.metrics.SetSchemaCount(len(entries))
	}
}
