package terminal

import (
	"bytes"
	"encoding/json"

	"github.com/bioenroll/gateway/types"
)

// The terminal backend answers in one of two wire shapes: a conformant
// envelope that carries an explicit "success" boolean, or a legacy shape
// without one. Conformant envelopes pass through unchanged. For legacy
// bodies success is synthesized from the HTTP status class, list data is
// taken from data.users falling back to a top-level users array, entity
// data from data, and the error message from message with a
// per-operation fallback. Nothing past this file ever sees the
// ambiguity.

// ListResult is the normalized outcome of a list operation.
type ListResult struct {
	Success bool                  `json:"success"`
	Users   []types.BiometricUser `json:"users"`
	Error   string                `json:"error,omitempty"`
}

// EntityResult is the normalized outcome of a create or update.
type EntityResult struct {
	Success bool                 `json:"success"`
	Data    *types.BiometricUser `json:"data,omitempty"`
	Message string               `json:"message,omitempty"`

	// NextStep signals that further out-of-band enrollment on the
	// device is still required.
	NextStep string `json:"nextStep,omitempty"`
	Error    string `json:"error,omitempty"`
}

// DeleteResult is the normalized outcome of a delete.
type DeleteResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// rawEnvelope probes a response body for both wire shapes. A non-nil
// Success marks the body as conformant.
type rawEnvelope struct {
	Success  *bool                 `json:"success"`
	Users    []types.BiometricUser `json:"users"`
	Data     json.RawMessage       `json:"data"`
	Message  string                `json:"message"`
	Error    string                `json:"error"`
	NextStep string                `json:"nextStep"`
}

func statusOK(status int) bool {
	return status >= 200 && status < 300
}

// emptyBody maps bodyless responses (204s and friends) onto the legacy
// shape instead of failing to decode.
func emptyBody(body []byte) []byte {
	if len(bytes.TrimSpace(body)) == 0 {
		return []byte("{}")
	}
	return body
}

func normalizeList(status int, body []byte, fallback string) (ListResult, bool) {
	var raw rawEnvelope
	if err := json.Unmarshal(emptyBody(body), &raw); err != nil {
		return ListResult{}, false
	}

	if raw.Success != nil {
		result := ListResult{
			Success: *raw.Success,
			Users:   raw.Users,
			Error:   raw.Error,
		}
		if result.Users == nil {
			result.Users = []types.BiometricUser{}
		}
		return result, true
	}

	result := ListResult{
		Success: statusOK(status),
		Users:   []types.BiometricUser{},
	}

	if len(raw.Data) > 0 {
		var nested struct {
			Users []types.BiometricUser `json:"users"`
		}
		if err := json.Unmarshal(raw.Data, &nested); err == nil && nested.Users != nil {
			result.Users = nested.Users
		}
	}
	if len(result.Users) == 0 && raw.Users != nil {
		result.Users = raw.Users
	}

	if !result.Success {
		result.Error = raw.Message
		if result.Error == "" {
			result.Error = fallback
		}
	}
	return result, true
}

func normalizeEntity(status int, body []byte, fallback string) (EntityResult, bool) {
	var raw rawEnvelope
	if err := json.Unmarshal(emptyBody(body), &raw); err != nil {
		return EntityResult{}, false
	}

	if raw.Success != nil {
		result := EntityResult{
			Success:  *raw.Success,
			Message:  raw.Message,
			NextStep: raw.NextStep,
			Error:    raw.Error,
		}
		if len(raw.Data) > 0 {
			var user types.BiometricUser
			if err := json.Unmarshal(raw.Data, &user); err == nil {
				result.Data = &user
			}
		}
		return result, true
	}

	result := EntityResult{
		Success:  statusOK(status),
		Message:  raw.Message,
		NextStep: raw.NextStep,
	}
	if len(raw.Data) > 0 {
		var user types.BiometricUser
		if err := json.Unmarshal(raw.Data, &user); err == nil {
			result.Data = &user
		}
	}
	if !result.Success {
		result.Error = raw.Message
		if result.Error == "" {
			result.Error = fallback
		}
	}
	return result, true
}

func normalizeDelete(status int, body []byte, fallback string) (DeleteResult, bool) {
	var raw rawEnvelope
	if err := json.Unmarshal(emptyBody(body), &raw); err != nil {
		return DeleteResult{}, false
	}

	if raw.Success != nil {
		return DeleteResult{
			Success: *raw.Success,
			Message: raw.Message,
			Error:   raw.Error,
		}, true
	}

	result := DeleteResult{
		Success: statusOK(status),
		Message: raw.Message,
	}
	if !result.Success {
		result.Error = raw.Message
		if result.Error == "" {
			result.Error = fallback
		}
	}
	return result, true
}
