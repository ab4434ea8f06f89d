package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bioenroll/gateway/internal/enrollment"
	"github.com/bioenroll/gateway/internal/facegate"
	"github.com/bioenroll/gateway/internal/services"
	"github.com/bioenroll/gateway/internal/terminal"
	"github.com/bioenroll/gateway/types"
	"github.com/go-chi/chi/v5"
)

type fakeTerminal struct {
	users []types.BiometricUser

	failList   bool
	failCreate bool

	createCalls int
	lastCreate  types.CreateUserRequest
	lastUpdate  types.BiometricUser
	lastDelete  string
}

func (f *fakeTerminal) ListUsers(ctx context.Context) terminal.ListResult {
	if f.failList {
		return terminal.ListResult{Users: []types.BiometricUser{}, Error: "Network error occurred"}
	}
	return terminal.ListResult{Success: true, Users: f.users}
}

func (f *fakeTerminal) CreateUser(ctx context.Context, req types.CreateUserRequest) terminal.EntityResult {
	f.createCalls++
	f.lastCreate = req
	if f.failCreate {
		return terminal.EntityResult{Error: "Failed to create user"}
	}
	return terminal.EntityResult{
		Success: true,
		Data:    &types.BiometricUser{UID: "u-new", UserID: req.UserID, Name: req.Name},
		Message: "User created",
	}
}

func (f *fakeTerminal) UpdateUser(ctx context.Context, user types.BiometricUser) terminal.EntityResult {
	f.lastUpdate = user
	return terminal.EntityResult{Success: true, Data: &user, Message: "User updated"}
}

func (f *fakeTerminal) DeleteUser(ctx context.Context, uid string) terminal.DeleteResult {
	f.lastDelete = uid
	return terminal.DeleteResult{Success: true, Message: "User deleted"}
}

type fakeRecorder struct {
	events []types.EnrollmentEvent
}

func (f *fakeRecorder) Record(ctx context.Context, event types.EnrollmentEvent) (types.EnrollmentEvent, error) {
	f.events = append(f.events, event)
	return event, nil
}

func (f *fakeRecorder) List(ctx context.Context, offset, limit int) ([]types.EnrollmentEvent, int, error) {
	return f.events, len(f.events), nil
}

// testActor injects a fixed operator identity the way the auth
// middleware would.
func testActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), contextActorKey, "tester")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newUserRouter(backend *fakeTerminal, recorder *fakeRecorder, authed bool) chi.Router {
	service := services.NewEnrollmentService(backend, recorder, nil, nil)
	r := chi.NewRouter()
	r.Route("/users", func(r chi.Router) {
		if authed {
			r.Use(testActor)
		}
		UserRouter(r, service)
	})
	return r
}

func validRegistration() RegistrationPayload {
	return RegistrationPayload{
		UserID:  "100",
		Name:    "Alice",
		Role:    types.RoleNormalUser,
		Methods: types.VerificationMethods{Fingerprint: true},
	}
}

func postJSON(t *testing.T, router chi.Router, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestListUsers(t *testing.T) {
	backend := &fakeTerminal{users: []types.BiometricUser{
		{UID: "u-1", UserID: "100", Name: "Alice"},
		{UID: "u-2", UserID: "200", Name: "Bob"},
	}}
	router := newUserRouter(backend, &fakeRecorder{}, true)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var result terminal.ListResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Success || len(result.Users) != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestListUsersQueryFilter(t *testing.T) {
	backend := &fakeTerminal{users: []types.BiometricUser{
		{UID: "u-1", UserID: "100", Name: "Alice"},
		{UID: "u-2", UserID: "200", Name: "Bob"},
	}}
	router := newUserRouter(backend, &fakeRecorder{}, true)

	req := httptest.NewRequest(http.MethodGet, "/users?q=ali", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var result terminal.ListResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Users) != 1 || result.Users[0].Name != "Alice" {
		t.Errorf("unexpected filtered result: %+v", result.Users)
	}
}

func TestListUsersBackendDown(t *testing.T) {
	backend := &fakeTerminal{failList: true}
	router := newUserRouter(backend, &fakeRecorder{}, true)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var result terminal.ListResult
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Success || result.Users == nil || result.Error != "Network error occurred" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestCreateUser(t *testing.T) {
	backend := &fakeTerminal{}
	recorder := &fakeRecorder{}
	router := newUserRouter(backend, recorder, true)

	rec := postJSON(t, router, "/users", validRegistration())
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	if backend.createCalls != 1 {
		t.Errorf("create calls = %d, want 1", backend.createCalls)
	}
	if len(recorder.events) != 1 {
		t.Fatalf("recorded events = %d, want 1", len(recorder.events))
	}
	event := recorder.events[0]
	if event.Action != types.EventActionCreate || event.Actor != "tester" || !event.Succeeded {
		t.Errorf("unexpected audit event: %+v", event)
	}
}

func TestCreateUserValidationFailure(t *testing.T) {
	backend := &fakeTerminal{}
	router := newUserRouter(backend, &fakeRecorder{}, true)

	rec := postJSON(t, router, "/users", RegistrationPayload{})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	var resp ValidationResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, field := range []string{enrollment.FieldUserID, enrollment.FieldName, enrollment.FieldMethods} {
		if _, ok := resp.Errors[field]; !ok {
			t.Errorf("missing error for %s: %v", field, resp.Errors)
		}
	}
	if backend.createCalls != 0 {
		t.Errorf("invalid form reached the backend %d times", backend.createCalls)
	}
}

func TestCreateUserFaceTooSmall(t *testing.T) {
	backend := &fakeTerminal{}
	router := newUserRouter(backend, &fakeRecorder{}, true)

	payload := validRegistration()
	payload.Methods = types.VerificationMethods{Face: true}
	payload.FaceImage = strings.Repeat("A", 1000)

	rec := postJSON(t, router, "/users", payload)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != facegate.MsgTooSmall {
		t.Errorf("error = %q, want %q", resp.Error, facegate.MsgTooSmall)
	}
	if backend.createCalls != 0 {
		t.Errorf("rejected capture reached the backend %d times", backend.createCalls)
	}
}

func TestCreateUserForceFaceBypassesGate(t *testing.T) {
	backend := &fakeTerminal{}
	router := newUserRouter(backend, &fakeRecorder{}, true)

	payload := validRegistration()
	payload.Methods = types.VerificationMethods{Face: true}
	payload.FaceImage = strings.Repeat("A", 1000)
	payload.ForceFace = true

	rec := postJSON(t, router, "/users", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
	if backend.lastCreate.FaceImage == "" {
		t.Error("forced capture was dropped from the create payload")
	}
}

func TestCreateUserBackendRefusal(t *testing.T) {
	backend := &fakeTerminal{failCreate: true}
	recorder := &fakeRecorder{}
	router := newUserRouter(backend, recorder, true)

	rec := postJSON(t, router, "/users", validRegistration())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(recorder.events) != 1 || recorder.events[0].Succeeded {
		t.Errorf("refusal not audited as a failure: %+v", recorder.events)
	}
}

func TestUpdateUser(t *testing.T) {
	backend := &fakeTerminal{users: []types.BiometricUser{
		{UID: "u-1", UserID: "100", Name: "Alice", HasFingerprint: true},
	}}
	router := newUserRouter(backend, &fakeRecorder{}, true)

	body := bytes.NewBufferString(`{"name":"Alicia","role":"SuperAdmin"}`)
	req := httptest.NewRequest(http.MethodPut, "/users/u-1/", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	sent := backend.lastUpdate
	if sent.Name != "Alicia" || sent.Role != types.RoleSuperAdmin {
		t.Errorf("edited fields not applied: %+v", sent)
	}
	if !sent.HasFingerprint || sent.UserID != "100" {
		t.Errorf("server-owned fields changed: %+v", sent)
	}
}

func TestUpdateUserRequiresName(t *testing.T) {
	router := newUserRouter(&fakeTerminal{}, &fakeRecorder{}, true)

	body := bytes.NewBufferString(`{"name":"   "}`)
	req := httptest.NewRequest(http.MethodPut, "/users/u-1/", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var resp ValidationResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Errors[enrollment.FieldName] != "Name is required" {
		t.Errorf("unexpected errors: %v", resp.Errors)
	}
}

func TestDeleteUser(t *testing.T) {
	backend := &fakeTerminal{}
	recorder := &fakeRecorder{}
	router := newUserRouter(backend, recorder, true)

	req := httptest.NewRequest(http.MethodDelete, "/users/u-1/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if backend.lastDelete != "u-1" {
		t.Errorf("deleted %q, want u-1", backend.lastDelete)
	}
	if len(recorder.events) != 1 || recorder.events[0].Action != types.EventActionDelete {
		t.Errorf("delete not audited: %+v", recorder.events)
	}
}

func TestWritesRejectMissingActor(t *testing.T) {
	router := newUserRouter(&fakeTerminal{}, &fakeRecorder{}, false)

	rec := postJSON(t, router, "/users", validRegistration())
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}
