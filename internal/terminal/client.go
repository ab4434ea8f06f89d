package terminal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bioenroll/gateway/types"
)

// Per-operation fallback messages for legacy failure bodies that carry
// no message of their own.
const (
	fallbackList   = "Failed to load users"
	fallbackCreate = "Failed to create user"
	fallbackUpdate = "Failed to update user"
	fallbackDelete = "Failed to delete user"
)

// networkErrMsg is the uniform message for any transport-level failure,
// including a body that cannot be decoded.
const networkErrMsg = "Network error occurred"

const defaultTimeout = 30 * time.Second

// Client performs user operations against the terminal backend. It is
// stateless: each call reads the latest token, builds its own request,
// and converts any transport failure into a result rather than an
// error, so callers never need to recover from a failed call.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient constructs a client for the backend at baseURL. A zero
// timeout falls back to the default.
func NewClient(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ListUsers fetches the full user roster.
func (c *Client) ListUsers(ctx context.Context) ListResult {
	status, body, err := c.do(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		return ListResult{Users: []types.BiometricUser{}, Error: networkErrMsg}
	}
	result, ok := normalizeList(status, body, fallbackList)
	if !ok {
		return ListResult{Users: []types.BiometricUser{}, Error: networkErrMsg}
	}
	return result
}

// CreateUser registers a new user. The employee code doubles as a
// routing hint in the request target, which the backend requires.
func (c *Client) CreateUser(ctx context.Context, req types.CreateUserRequest) EntityResult {
	target := "/users?empCode=" + url.QueryEscape(req.UserID)
	status, body, err := c.do(ctx, http.MethodPost, target, req)
	if err != nil {
		return EntityResult{Error: networkErrMsg}
	}
	result, ok := normalizeEntity(status, body, fallbackCreate)
	if !ok {
		return EntityResult{Error: networkErrMsg}
	}
	return result
}

// UpdateUser sends the full user record to the backend.
func (c *Client) UpdateUser(ctx context.Context, user types.BiometricUser) EntityResult {
	target := "/users/" + url.PathEscape(user.UID)
	status, body, err := c.do(ctx, http.MethodPut, target, user)
	if err != nil {
		return EntityResult{Error: networkErrMsg}
	}
	result, ok := normalizeEntity(status, body, fallbackUpdate)
	if !ok {
		return EntityResult{Error: networkErrMsg}
	}
	return result
}

// DeleteUser removes the user with the given backend UID.
func (c *Client) DeleteUser(ctx context.Context, uid string) DeleteResult {
	target := "/users/" + url.PathEscape(uid)
	status, body, err := c.do(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return DeleteResult{Error: networkErrMsg}
	}
	result, ok := normalizeDelete(status, body, fallbackDelete)
	if !ok {
		return DeleteResult{Error: networkErrMsg}
	}
	return result
}

func (c *Client) do(ctx context.Context, method, target string, payload any) (int, []byte, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return 0, nil, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+target, body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}
