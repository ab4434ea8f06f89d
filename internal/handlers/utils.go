package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const contextActorKey contextKey = "actor"

// actorFromContext returns the operator identity the auth middleware
// stored for the request.
func actorFromContext(ctx context.Context) (string, error) {
	actor, ok := ctx.Value(contextActorKey).(string)
	if !ok || strings.TrimSpace(actor) == "" {
		return "", errors.New("missing actor")
	}
	return actor, nil
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// ErrorResponse is a simple error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
