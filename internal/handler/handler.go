package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"fluidnet/internal/canvas"
	"fluidnet/internal/codec"
	"fluidnet/internal/domain"
	"fluidnet/internal/editor"
	"fluidnet/internal/repository"
	"fluidnet/internal/service"
)

// maxBodyBytes bounds request bodies; diagrams are small
const maxBodyBytes = 1 << 20

// DiagramHandler exposes one diagram session over HTTP
type DiagramHandler struct {
	session *service.Session
	journal repository.SolveJournal
}

// NewDiagramHandler creates a new diagram handler. journal may be nil.
func NewDiagramHandler(session *service.Session, journal repository.SolveJournal) *DiagramHandler {
	return &DiagramHandler{session: session, journal: journal}
}

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// AddComponentRequest is the body of POST /api/components
type AddComponentRequest struct {
	Type string `json:"type"`
}

// AddComponentResponse describes a placed component and its ports
type AddComponentResponse struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Parameters map[string]string `json:"parameters"`
	Ports      domain.Ports      `json:"ports"`
}

// Register installs every route on mux
func (h *DiagramHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/catalog", h.GetCatalog)
	mux.HandleFunc("GET /api/diagram", h.GetDiagram)

	mux.HandleFunc("POST /api/components", h.AddComponent)
	mux.HandleFunc("GET /api/components/{id}", h.GetComponent)
	mux.HandleFunc("DELETE /api/components/{id}", h.DeleteComponent)
	mux.HandleFunc("POST /api/components/{id}/edit", h.Edit)
	mux.HandleFunc("POST /api/components/{id}/parameters", h.SaveParameters)

	mux.HandleFunc("GET /api/editor", h.GetEditor)
	mux.HandleFunc("PUT /api/editor/fields", h.SetFields)
	mux.HandleFunc("DELETE /api/editor", h.CancelEditor)

	mux.HandleFunc("GET /api/connections", h.ListConnections)
	mux.HandleFunc("POST /api/connections", h.Connect)
	mux.HandleFunc("DELETE /api/connections", h.Disconnect)

	mux.HandleFunc("POST /api/solve", h.Solve)
	mux.HandleFunc("GET /api/solve", h.GetLastSolve)
	mux.HandleFunc("GET /api/solves", h.ListSolves)
	mux.HandleFunc("GET /api/solves/{id}", h.GetSolve)

	mux.HandleFunc("GET /api/overlays", h.GetOverlays)
	mux.HandleFunc("GET /api/notification", h.GetNotification)

	mux.HandleFunc("GET /api/export/{format}", h.Export)
}

// GetCatalog lists the available component types
func (h *DiagramHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.session.Catalog(), http.StatusOK)
}

// GetDiagram returns the diagram in solve request shape
func (h *DiagramHandler) GetDiagram(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.session.Snapshot(), http.StatusOK)
}

// AddComponent places a new component
func (h *DiagramHandler) AddComponent(w http.ResponseWriter, r *http.Request) {
	var req AddComponentRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Type == "" {
		h.writeError(w, "Component type is required", "", http.StatusBadRequest)
		return
	}

	comp, ports, err := h.session.AddComponent(req.Type)
	if err != nil {
		h.writeDomainError(w, "Failed to add component", err)
		return
	}

	h.writeJSON(w, AddComponentResponse{
		ID:         comp.ID,
		Type:       comp.Type,
		Parameters: comp.Parameters,
		Ports:      ports,
	}, http.StatusCreated)
}

// GetComponent returns a single component
func (h *DiagramHandler) GetComponent(w http.ResponseWriter, r *http.Request) {
	comp, err := h.session.Component(r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, "Failed to get component", err)
		return
	}
	h.writeJSON(w, map[string]interface{}{
		"id":          comp.ID,
		"type":        comp.Type,
		"parameters":  comp.Parameters,
		"connections": comp.Connections,
	}, http.StatusOK)
}

// DeleteComponent removes a component and everything attached to it
func (h *DiagramHandler) DeleteComponent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.session.DeleteComponent(id); err != nil {
		h.writeDomainError(w, "Failed to delete component", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Edit toggles the parameter editor on a component
func (h *DiagramHandler) Edit(w http.ResponseWriter, r *http.Request) {
	state, err := h.session.Edit(r.PathValue("id"))
	if err != nil {
		h.writeDomainError(w, "Failed to open editor", err)
		return
	}
	h.writeJSON(w, state, http.StatusOK)
}

// SaveParameters commits the open editor. The optional body overrides
// field values before saving.
func (h *DiagramHandler) SaveParameters(w http.ResponseWriter, r *http.Request) {
	overrides := map[string]string{}
	if err := decodeBody(r, &overrides); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	comp, err := h.session.Save(r.PathValue("id"), overrides)
	if err != nil {
		h.writeDomainError(w, "Failed to save parameters", err)
		return
	}
	h.writeJSON(w, map[string]interface{}{
		"id":         comp.ID,
		"parameters": comp.Parameters,
	}, http.StatusOK)
}

// GetEditor returns the editor state
func (h *DiagramHandler) GetEditor(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.session.EditorState(), http.StatusOK)
}

// SetFields edits fields of the open form
func (h *DiagramHandler) SetFields(w http.ResponseWriter, r *http.Request) {
	var values map[string]string
	if err := decodeBody(r, &values); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	state, err := h.session.SetFields(values)
	if err != nil {
		h.writeDomainError(w, "Failed to edit fields", err)
		return
	}
	h.writeJSON(w, state, http.StatusOK)
}

// CancelEditor closes the editor without saving
func (h *DiagramHandler) CancelEditor(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.session.Cancel(), http.StatusOK)
}

// ListConnections returns the live canvas edges
func (h *DiagramHandler) ListConnections(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.session.Edges(), http.StatusOK)
}

// Connect draws an edge on the canvas
func (h *DiagramHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var conn domain.Connection
	if err := decodeBody(r, &conn); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if err := conn.Validate(); err != nil {
		h.writeError(w, "Invalid connection", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.session.Connect(conn.From, conn.To); err != nil {
		h.writeDomainError(w, "Failed to connect", err)
		return
	}
	h.writeJSON(w, conn, http.StatusCreated)
}

// Disconnect removes an edge from the canvas
func (h *DiagramHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	var conn domain.Connection
	if err := decodeBody(r, &conn); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.session.Disconnect(conn.From, conn.To); err != nil {
		h.writeDomainError(w, "Failed to disconnect", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Solve submits the diagram and returns the classified outcome. Solver
// failures are part of the outcome, so this always answers 200.
func (h *DiagramHandler) Solve(w http.ResponseWriter, r *http.Request) {
	report := h.session.Solve(r.Context())
	h.writeJSON(w, report, http.StatusOK)
}

// GetLastSolve returns the most recently resolved solve
func (h *DiagramHandler) GetLastSolve(w http.ResponseWriter, r *http.Request) {
	report, ok := h.session.LastSolve()
	if !ok {
		h.writeError(w, "Not found", "no solve has completed yet", http.StatusNotFound)
		return
	}
	h.writeJSON(w, report, http.StatusOK)
}

// ListSolves returns journal entries, newest first
func (h *DiagramHandler) ListSolves(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		h.writeJSON(w, []domain.SolveRecord{}, http.StatusOK)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, "Invalid limit", v, http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.journal.ListSolves(r.Context(), limit)
	if err != nil {
		log.Printf("Failed to list solves: %v", err)
		h.writeError(w, "Failed to list solves", err.Error(), http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, records, http.StatusOK)
}

// GetSolve returns one journal entry
func (h *DiagramHandler) GetSolve(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if h.journal == nil {
		h.writeError(w, "Not found", "solve "+id, http.StatusNotFound)
		return
	}

	rec, err := h.journal.GetSolve(r.Context(), id)
	if err != nil {
		log.Printf("Failed to get solve: %v", err)
		h.writeError(w, "Failed to get solve", err.Error(), http.StatusInternalServerError)
		return
	}
	if rec == nil {
		h.writeError(w, "Not found", "solve "+id, http.StatusNotFound)
		return
	}
	h.writeJSON(w, rec, http.StatusOK)
}

// GetOverlays returns the overlays currently attached
func (h *DiagramHandler) GetOverlays(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.session.Overlays(), http.StatusOK)
}

// GetNotification returns the visible notification, or 204 when none is
// showing
func (h *DiagramHandler) GetNotification(w http.ResponseWriter, r *http.Request) {
	n, ok := h.session.Notification()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeJSON(w, n, http.StatusOK)
}

// Export writes the diagram in the requested format
func (h *DiagramHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")
	c, err := codec.ForFormat(format)
	if err != nil {
		h.writeError(w, "Unsupported export format", err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := c.Export(h.session.Snapshot(), &buf); err != nil {
		log.Printf("Failed to export %s: %v", format, err)
		h.writeError(w, "Failed to export diagram", err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", c.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename=diagram."+c.Format())
	w.Write(buf.Bytes())
}

// Helper methods

func (h *DiagramHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *DiagramHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// writeDomainError maps contract errors to status codes
func (h *DiagramHandler) writeDomainError(w http.ResponseWriter, msg string, err error) {
	h.writeError(w, msg, err.Error(), statusFor(err))
}

func statusFor(err error) int {
	var unknownType *domain.UnknownTypeError
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, canvas.ErrNoSuchEdge):
		return http.StatusNotFound
	case errors.As(err, &unknownType),
		errors.Is(err, editor.ErrNotEditable),
		errors.Is(err, canvas.ErrUnknownPort),
		errors.Is(err, canvas.ErrDirection):
		return http.StatusBadRequest
	case errors.Is(err, editor.ErrNotOpen), errors.Is(err, canvas.ErrPortBusy):
		return http.StatusConflict
	}
	log.Printf("Unexpected error: %v", err)
	return http.StatusInternalServerError
}

func decodeBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}
