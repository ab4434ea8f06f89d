package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bioenroll/gateway/internal/facegate"
	"github.com/bioenroll/gateway/internal/storage"
	"github.com/go-chi/chi/v5"
)

// FaceHandler sizes face captures ahead of registration so a mobile
// client can retry a bad shot before the form is ever submitted.
type FaceHandler struct {
	archive *storage.Archive
}

// NewFaceHandler constructs a handler. A nil archive disables storage;
// captures are then only checked.
func NewFaceHandler(archive *storage.Archive) *FaceHandler {
	return &FaceHandler{archive: archive}
}

// FaceRouter registers face-capture routes on the given router.
func FaceRouter(r chi.Router, archive *storage.Archive) {
	handler := NewFaceHandler(archive)
	r.Post("/{userId}/face", handler.CheckCapture)
}

// CapturePayload is the JSON body for a capture check. Force accepts
// the capture despite a size warning.
type CapturePayload struct {
	Image string `json:"image"`
	Force bool   `json:"force"`
}

// CaptureResponse reports the gate's decision. Key is set when the
// capture was archived.
type CaptureResponse struct {
	Accepted bool   `json:"accepted"`
	Error    string `json:"error,omitempty"`
	Key      string `json:"key,omitempty"`
}

func (h *FaceHandler) CheckCapture(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var payload CapturePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if strings.TrimSpace(payload.Image) == "" {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}

	verdict := facegate.Evaluate(payload.Image)
	if verdict != facegate.VerdictOK && !payload.Force {
		writeJSON(w, http.StatusUnprocessableEntity, CaptureResponse{
			Accepted: false,
			Error:    verdict.Message(),
		})
		return
	}

	response := CaptureResponse{Accepted: true}
	if h.archive != nil {
		image, err := base64.StdEncoding.DecodeString(payload.Image)
		if err != nil {
			writeError(w, http.StatusBadRequest, "image is not valid base64")
			return
		}
		key, err := h.archive.SaveCapture(r.Context(), userID, image)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to archive capture")
			return
		}
		response.Key = key
	}
	writeJSON(w, http.StatusOK, response)
}
