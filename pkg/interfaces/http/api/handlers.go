package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vsinha/bomplanner/pkg/application/services/bom"
	"github.com/vsinha/bomplanner/pkg/application/services/diagram"
	"github.com/vsinha/bomplanner/pkg/domain/entities"
	"github.com/vsinha/bomplanner/pkg/domain/services"
	"github.com/vsinha/bomplanner/pkg/infrastructure/events"
	"github.com/vsinha/bomplanner/pkg/infrastructure/metrics"
	"github.com/vsinha/bomplanner/pkg/logger"
)

// maxNodeBodyBytes caps POST /api/nodes bodies
const maxNodeBodyBytes = 4 << 10

// Server holds the HTTP server dependencies
type Server struct {
	service  *bom.Service
	recorder *metrics.Recorder
	store    events.EventStore
}

// New creates a new API server. recorder and store may be nil.
func New(service *bom.Service, recorder *metrics.Recorder, store events.EventStore) *Server {
	return &Server{service: service, recorder: recorder, store: store}
}

// Router builds the chi router with all routes mounted
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.HealthCheck)
	if s.recorder != nil {
		r.Method(http.MethodGet, "/metrics", s.recorder.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/nodes", s.CreateNode)
		r.Get("/nodes/{name}", s.GetNode)
		r.Get("/tree", s.GetTree)
		r.Get("/relationships", s.ListRelationships)
		r.Get("/mrp", s.CalculateMRP)
		r.Get("/explosion", s.Explode)
		r.Get("/diagram", s.GetDiagram)
		r.Get("/check", s.Check)
		if s.store != nil {
			r.Get("/events", s.ListEvents)
		}
	})

	return r
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string   `json:"error"`
	Kind  string   `json:"kind"`
	Hints []string `json:"hints,omitempty"`
}

// CreateNodeResponse is the response for creating a node
type CreateNodeResponse struct {
	Name     entities.MaterialName `json:"name"`
	Parent   entities.MaterialName `json:"parent,omitempty"`
	Quantity entities.Quantity     `json:"quantity"`
	Root     bool                  `json:"root"`
}

// TreeNode is the JSON form of a forest node
type TreeNode struct {
	Name     entities.MaterialName `json:"name"`
	Quantity entities.Quantity     `json:"quantity"`
	Children []TreeNode            `json:"children"`
}

// TreeResponse is the response for GET /api/tree
type TreeResponse struct {
	Roots      []TreeNode                                  `json:"roots"`
	Quantities map[entities.MaterialName]entities.Quantity `json:"quantities"`
}

// HealthCheck handles GET /health
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateNode handles POST /api/nodes
func (s *Server) CreateNode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxNodeBodyBytes)

	var req services.NodeInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "request body too large", Kind: "validation"})
			return
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error(), Kind: "validation"})
		return
	}

	insertion, err := s.service.AddNode(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateNodeResponse{
		Name:     insertion.Name,
		Parent:   insertion.Parent,
		Quantity: insertion.Quantity,
		Root:     insertion.IsRoot(),
	})
}

// GetTree handles GET /api/tree
func (s *Server) GetTree(w http.ResponseWriter, r *http.Request) {
	forest := s.service.Snapshot()

	resp := TreeResponse{
		Roots:      make([]TreeNode, 0, len(forest.Roots)),
		Quantities: forest.Quantities,
	}
	for _, root := range forest.Roots {
		resp.Roots = append(resp.Roots, toTreeNode(root))
	}
	writeJSON(w, http.StatusOK, resp)
}

// NodeResponse is the response for GET /api/nodes/{name}
type NodeResponse struct {
	Node            TreeNode          `json:"node"`
	CatalogQuantity entities.Quantity `json:"catalog_quantity"`
}

// GetNode handles GET /api/nodes/{name}
// Returns the first node with that name and its subtree
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	material, err := s.service.FindMaterial(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NodeResponse{
		Node:            toTreeNode(material.Node),
		CatalogQuantity: material.CatalogQuantity,
	})
}

// ListRelationships handles GET /api/relationships
func (s *Server) ListRelationships(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Relationships())
}

// CalculateMRP handles GET /api/mrp
func (s *Server) CalculateMRP(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.CalculateMRP(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Explode handles GET /api/explosion
func (s *Server) Explode(w http.ResponseWriter, r *http.Request) {
	rows, err := s.service.Explode(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// GetDiagram handles GET /api/diagram
func (s *Server) GetDiagram(w http.ResponseWriter, r *http.Request) {
	d, err := diagram.Build(s.service.Snapshot())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Check handles GET /api/check
func (s *Server) Check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Check())
}

// EventResponse is the JSON form of a recorded event
type EventResponse struct {
	Type      string      `json:"type"`
	Stream    string      `json:"stream"`
	Version   int         `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// ListEvents handles GET /api/events
// Supports ?from=N to skip the first N events and ?stream= to read one stream
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
	from := 0
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid from parameter", Kind: "validation"})
			return
		}
		from = parsed
	}

	var recorded []events.Event
	var err error
	if stream := r.URL.Query().Get("stream"); stream != "" {
		// stream versions start at 1
		recorded, err = s.store.ReadEvents(stream, from+1)
	} else {
		recorded, err = s.store.ReadAllEvents(from)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]EventResponse, 0, len(recorded))
	for _, e := range recorded {
		resp = append(resp, EventResponse{
			Type:      e.Type(),
			Stream:    e.StreamID(),
			Version:   e.Version(),
			Timestamp: e.Timestamp(),
			Data:      e.Data(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func toTreeNode(node *entities.Node) TreeNode {
	tn := TreeNode{
		Name:     node.Name,
		Quantity: node.Quantity,
		Children: make([]TreeNode, 0, len(node.Children)),
	}
	for _, child := range node.Children {
		tn.Children = append(tn.Children, toTreeNode(child))
	}
	return tn
}

// writeError maps domain errors to status codes
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := "internal"

	switch {
	case errors.Is(err, entities.ErrValidation):
		status, kind = http.StatusBadRequest, "validation"
	case errors.Is(err, entities.ErrParentNotFound):
		status, kind = http.StatusNotFound, "parent_not_found"
	case errors.Is(err, bom.ErrMaterialNotFound):
		status, kind = http.StatusNotFound, "not_found"
	case errors.Is(err, entities.ErrEmptyTree):
		status, kind = http.StatusConflict, "empty_tree"
	default:
		logger.Error("request failed", "error", err)
	}

	writeJSON(w, status, ErrorResponse{
		Error: err.Error(),
		Kind:  kind,
		Hints: errors.GetAllHints(err),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", "error", err)
	}
}
