package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bioenroll/gateway/internal/enrollment"
	"github.com/bioenroll/gateway/internal/facegate"
	"github.com/bioenroll/gateway/internal/services"
	"github.com/bioenroll/gateway/types"
	"github.com/go-chi/chi/v5"
)

// UserHandler provides HTTP handlers for the user roster.
type UserHandler struct {
	enrollmentService *services.EnrollmentService
}

// NewUserHandler constructs a handler over the enrollment service.
func NewUserHandler(enrollmentService *services.EnrollmentService) *UserHandler {
	return &UserHandler{enrollmentService: enrollmentService}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, enrollmentService *services.EnrollmentService) {
	handler := NewUserHandler(enrollmentService)

	r.Get("/", handler.ListUsers)
	r.Post("/", handler.CreateUser)
	r.Route("/{uid}", func(r chi.Router) {
		r.Put("/", handler.UpdateUser)
		r.Delete("/", handler.DeleteUser)
	})
}

// ListUsers proxies the roster, narrowed by the optional q parameter.
// The body is the normalized list envelope in both outcomes, so mobile
// clients keep a single decode path.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	result := h.enrollmentService.ListUsers(r.Context(), query)
	if result.Success {
		writeJSON(w, http.StatusOK, result)
		return
	}
	writeJSON(w, failureStatus(result.Error), result)
}

// RegistrationPayload is the JSON body for creating a user. ForceFace
// acknowledges a face capture outside the size bounds.
type RegistrationPayload struct {
	UserID          string                    `json:"userId"`
	Name            string                    `json:"name"`
	Role            types.Role                `json:"role"`
	Methods         types.VerificationMethods `json:"verificationMethods"`
	Password        string                    `json:"password"`
	ConfirmPassword string                    `json:"confirmPassword"`
	BadgeNumber     string                    `json:"badgeNumber"`
	FaceImage       string                    `json:"faceImage"`
	ForceFace       bool                      `json:"forceFaceImage"`
}

// ValidationResponse reports field-level validation failures.
type ValidationResponse struct {
	Errors enrollment.FieldErrors `json:"errors"`
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload RegistrationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	actor, err := actorFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if payload.Methods.Face && payload.FaceImage != "" && !payload.ForceFace {
		if verdict := facegate.Evaluate(payload.FaceImage); verdict != facegate.VerdictOK {
			writeError(w, http.StatusUnprocessableEntity, verdict.Message())
			return
		}
	}

	form := enrollment.RegistrationForm{
		UserID:          payload.UserID,
		Name:            payload.Name,
		Role:            payload.Role,
		Methods:         payload.Methods,
		Password:        payload.Password,
		ConfirmPassword: payload.ConfirmPassword,
		BadgeNumber:     payload.BadgeNumber,
		FaceImage:       payload.FaceImage,
	}

	errs, result := h.enrollmentService.Register(r.Context(), form, actor)
	if !errs.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{Errors: errs})
		return
	}

	if result.Success {
		writeJSON(w, http.StatusCreated, result)
		return
	}
	writeJSON(w, failureStatus(result.Error), result)
}

// UpdatePayload is the JSON body for editing a user. Only the name and
// role are editable; enrollment flags are server-owned.
type UpdatePayload struct {
	Name string     `json:"name"`
	Role types.Role `json:"role"`
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	var payload UpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, ValidationResponse{
			Errors: enrollment.FieldErrors{enrollment.FieldName: "Name is required"},
		})
		return
	}

	actor, err := actorFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	result := h.enrollmentService.Rename(r.Context(), uid, strings.TrimSpace(payload.Name), payload.Role, actor)
	if result.Success {
		writeJSON(w, http.StatusOK, result)
		return
	}
	writeJSON(w, failureStatus(result.Error), result)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")

	actor, err := actorFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	result := h.enrollmentService.Delete(r.Context(), uid, actor)
	if result.Success {
		writeJSON(w, http.StatusOK, result)
		return
	}
	writeJSON(w, failureStatus(result.Error), result)
}

// failureStatus distinguishes transport failures, which the terminal
// client reports with its uniform network message, from backend
// business refusals.
func failureStatus(errMsg string) int {
	if errMsg == "Network error occurred" {
		return http.StatusBadGateway
	}
	return http.StatusBadRequest
}
