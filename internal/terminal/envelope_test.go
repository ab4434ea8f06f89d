package terminal

import (
	"net/http"
	"testing"

	"github.com/bioenroll/gateway/types"
)

func TestNormalizeListConformantPassThrough(t *testing.T) {
	body := []byte(`{"success":true,"users":[{"uid":"u-1","userId":"100","name":"Alice"}]}`)

	result, ok := normalizeList(http.StatusOK, body, fallbackList)
	if !ok {
		t.Fatal("expected body to decode")
	}
	if !result.Success {
		t.Error("expected success to pass through")
	}
	if len(result.Users) != 1 || result.Users[0].Name != "Alice" {
		t.Errorf("unexpected users: %+v", result.Users)
	}
	if result.Error != "" {
		t.Errorf("expected no error, got %q", result.Error)
	}
}

func TestNormalizeListConformantFailurePassThrough(t *testing.T) {
	// An explicit success:false passes through even on HTTP 200.
	body := []byte(`{"success":false,"users":[],"error":"device offline"}`)

	result, ok := normalizeList(http.StatusOK, body, fallbackList)
	if !ok {
		t.Fatal("expected body to decode")
	}
	if result.Success {
		t.Error("expected success:false to pass through")
	}
	if result.Error != "device offline" {
		t.Errorf("unexpected error: %q", result.Error)
	}
}

func TestNormalizeListLegacyNestedUsers(t *testing.T) {
	body := []byte(`{"data":{"users":[{"uid":"u-1"},{"uid":"u-2"}]}}`)

	result, ok := normalizeList(http.StatusOK, body, fallbackList)
	if !ok {
		t.Fatal("expected body to decode")
	}
	if !result.Success {
		t.Error("expected success synthesized from HTTP 200")
	}
	if len(result.Users) != 2 {
		t.Errorf("expected 2 users, got %d", len(result.Users))
	}
}

func TestNormalizeListLegacyTopLevelUsers(t *testing.T) {
	body := []byte(`{"users":[{"uid":"u-1"}]}`)

	result, ok := normalizeList(http.StatusOK, body, fallbackList)
	if !ok {
		t.Fatal("expected body to decode")
	}
	if !result.Success || len(result.Users) != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestNormalizeListLegacyFailure(t *testing.T) {
	body := []byte(`{"message":"not found"}`)

	result, ok := normalizeList(http.StatusNotFound, body, fallbackList)
	if !ok {
		t.Fatal("expected body to decode")
	}
	if result.Success {
		t.Error("expected success false for HTTP 404")
	}
	if len(result.Users) != 0 || result.Users == nil {
		t.Errorf("expected empty users slice, got %+v", result.Users)
	}
	if result.Error != "not found" {
		t.Errorf("expected message as error, got %q", result.Error)
	}
}

func TestNormalizeListLegacyFailureFallback(t *testing.T) {
	result, ok := normalizeList(http.StatusInternalServerError, []byte(`{}`), fallbackList)
	if !ok {
		t.Fatal("expected body to decode")
	}
	if result.Error != fallbackList {
		t.Errorf("expected fallback message, got %q", result.Error)
	}
}

func TestNormalizeListMalformedBody(t *testing.T) {
	if _, ok := normalizeList(http.StatusOK, []byte(`<html>`), fallbackList); ok {
		t.Error("expected malformed body to be rejected")
	}
}

func TestNormalizeEntityLegacySuccess(t *testing.T) {
	body := []byte(`{"data":{"uid":"u-9","userId":"42","name":"Bea"},"nextStep":"enroll-fingerprint"}`)

	result, ok := normalizeEntity(http.StatusCreated, body, fallbackCreate)
	if !ok {
		t.Fatal("expected body to decode")
	}
	if !result.Success {
		t.Error("expected success synthesized from HTTP 201")
	}
	if result.Data == nil || result.Data.UID != "u-9" {
		t.Errorf("unexpected data: %+v", result.Data)
	}
	if result.NextStep != "enroll-fingerprint" {
		t.Errorf("unexpected next step: %q", result.NextStep)
	}
}

func TestNormalizeEntityConformantPassThrough(t *testing.T) {
	body := []byte(`{"success":false,"message":"duplicate employee code","error":"duplicate employee code"}`)

	result, ok := normalizeEntity(http.StatusOK, body, fallbackCreate)
	if !ok {
		t.Fatal("expected body to decode")
	}
	if result.Success {
		t.Error("expected explicit success to win over status")
	}
	if result.Error != "duplicate employee code" {
		t.Errorf("unexpected error: %q", result.Error)
	}
}

func TestNormalizeEntityLegacyFailureFallback(t *testing.T) {
	result, ok := normalizeEntity(http.StatusBadRequest, []byte(`{}`), fallbackUpdate)
	if !ok {
		t.Fatal("expected body to decode")
	}
	if result.Success || result.Error != fallbackUpdate {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestNormalizeDeleteLegacy(t *testing.T) {
	result, ok := normalizeDelete(http.StatusOK, []byte(`{"message":"removed"}`), fallbackDelete)
	if !ok {
		t.Fatal("expected body to decode")
	}
	if !result.Success || result.Message != "removed" {
		t.Errorf("unexpected result: %+v", result)
	}

	result, ok = normalizeDelete(http.StatusNotFound, []byte(`{"message":"no such user"}`), fallbackDelete)
	if !ok {
		t.Fatal("expected body to decode")
	}
	if result.Success || result.Error != "no such user" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestNormalizeDeleteEmptyBody(t *testing.T) {
	result, ok := normalizeDelete(http.StatusNoContent, nil, fallbackDelete)
	if !ok {
		t.Fatal("expected empty body to be treated as legacy")
	}
	if !result.Success {
		t.Error("expected success for HTTP 204 with no body")
	}
}

func TestNormalizeListIdempotent(t *testing.T) {
	users := []types.BiometricUser{{UID: "u-1", UserID: "100", Name: "Alice"}}
	first := ListResult{Success: true, Users: users}

	body := []byte(`{"success":true,"users":[{"uid":"u-1","userId":"100","name":"Alice"}]}`)
	result, ok := normalizeList(http.StatusOK, body, fallbackList)
	if !ok {
		t.Fatal("expected body to decode")
	}
	if result.Success != first.Success || len(result.Users) != len(first.Users) ||
		result.Users[0] != first.Users[0] || result.Error != first.Error {
		t.Errorf("normalization changed a conformant envelope: %+v", result)
	}
}
