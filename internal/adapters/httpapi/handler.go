// Package httpapi exposes the command gateway and query service over HTTP.
package httpapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/grievd/internal/core/grievance"
	"github.com/example/grievd/internal/ports/primary"
	"github.com/example/grievd/internal/ports/secondary"
)

// maxBodyBytes caps command request bodies.
const maxBodyBytes = 64 << 10

// Handler holds all HTTP handler dependencies.
type Handler struct {
	gateway primary.CommandGateway
	queries primary.QueryService
	auth    secondary.Authenticator
	mux     *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(gateway primary.CommandGateway, queries primary.QueryService, auth secondary.Authenticator, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{gateway: gateway, queries: queries, auth: auth, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/grievances", h.requireActor(h.submitGrievance))
	h.mux.HandleFunc("POST /v1/grievances/{id}/commands", h.requireActor(h.submitCommand))
	h.mux.HandleFunc("GET /v1/grievances/{id}", h.requireActor(h.getGrievance))
	h.mux.HandleFunc("GET /v1/grievances/{id}/events", h.requireActor(h.getEventLog))
	h.mux.HandleFunc("GET /v1/departments", h.requireActor(h.listDepartments))
	h.mux.HandleFunc("GET /v1/departments/{id}/stats", h.requireActor(h.getDepartmentStats))
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(logger, h.mux)
}

// POST /v1/grievances: file a new grievance. Body: {"payload": {...}}.
func (h *Handler) submitGrievance(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decodeCommand(w, r)
	if !ok {
		return
	}
	cmd.GrievanceID = ""
	cmd.EventType = grievance.EventSubmitted
	h.submit(w, r, cmd, http.StatusCreated)
}

// POST /v1/grievances/{id}/commands: record an event against a grievance.
func (h *Handler) submitCommand(w http.ResponseWriter, r *http.Request) {
	cmd, ok := decodeCommand(w, r)
	if !ok {
		return
	}
	if cmd.EventType == "" {
		writeError(w, http.StatusBadRequest, "eventType is required")
		return
	}
	cmd.GrievanceID = r.PathValue("id")
	h.submit(w, r, cmd, http.StatusOK)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, cmd primary.Command, status int) {
	cmd.Actor = actorFrom(r)
	res, err := h.gateway.Submit(r.Context(), cmd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, status, res)
}

func decodeCommand(w http.ResponseWriter, r *http.Request) (primary.Command, bool) {
	var cmd primary.Command
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cmd); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return primary.Command{}, false
	}
	return cmd, true
}

// GET /v1/grievances/{id}: current view with a live SLA status.
func (h *Handler) getGrievance(w http.ResponseWriter, r *http.Request) {
	view, err := h.queries.GetGrievanceView(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GET /v1/grievances/{id}/events: full event log in sequence order.
func (h *Handler) getEventLog(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	events, err := h.queries.GetEventLog(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"grievanceId": id,
		"events":      events,
	})
}

// GET /v1/departments: leaderboard, best SLA score first.
func (h *Handler) listDepartments(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queries.ListDepartmentStats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"departments": stats,
	})
}

// GET /v1/departments/{id}/stats: one department's aggregate.
func (h *Handler) getDepartmentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queries.GetDepartmentStats(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GET /healthz: always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
