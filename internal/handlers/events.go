package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/bioenroll/gateway/internal/services"
	"github.com/bioenroll/gateway/types"
	"github.com/go-chi/chi/v5"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// EventHandler serves the enrollment audit trail.
type EventHandler struct {
	enrollmentService *services.EnrollmentService
}

// NewEventHandler constructs a handler over the enrollment service.
func NewEventHandler(enrollmentService *services.EnrollmentService) *EventHandler {
	return &EventHandler{enrollmentService: enrollmentService}
}

// EventRouter registers audit routes on the given router.
func EventRouter(r chi.Router, enrollmentService *services.EnrollmentService) {
	handler := NewEventHandler(enrollmentService)
	r.Get("/", handler.ListEvents)
}

// EventListResponse is the paginated audit listing.
type EventListResponse struct {
	Items []types.EnrollmentEvent `json:"items"`
	Page  int                     `json:"page"`
	Limit int                     `json:"limit"`
	Total int                     `json:"total"`
}

func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := h.enrollmentService.Events(r.Context(), offset, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, EventListResponse{
		Items: items,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

func parsePagination(r *http.Request) (page, limit, offset int, err error) {
	page = defaultPage
	limit = defaultLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, 0, errors.New("invalid page")
		}
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return 0, 0, 0, errors.New("invalid limit")
		}
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	offset = (page - 1) * limit
	return page, limit, offset, nil
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
