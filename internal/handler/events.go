package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/medportal/medportal/internal/handler/dto"
	"github.com/medportal/medportal/internal/service"
)

// EventsHandler exposes the auth audit trail. Mounted in development only.
type EventsHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(svc *service.AuthService, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{svc: svc, logger: logger}
}

// List handles GET /api/events?kind=login&kind=signup&limit=50.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if l := query.Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "limit must be a positive integer", Code: "INVALID_LIMIT"})
			return
		}
		limit = parsed
	}

	events, err := h.svc.ListEvents(r.Context(), query["kind"], limit)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEventKind):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "kind must be login or signup", Code: "INVALID_KIND"})
		case errors.Is(err, service.ErrAuditDisabled):
			writeJSON(w, http.StatusServiceUnavailable, dto.ErrorResponse{Error: "audit trail is not configured", Code: "AUDIT_DISABLED"})
		default:
			h.logger.Error("internal_error", "error", err)
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "An internal error occurred", Code: "INTERNAL_ERROR"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.ToAuthEventListResponse(events))
}
