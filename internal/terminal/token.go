package terminal

import (
	"errors"
	"os"
	"strings"
)

// TokenSource yields the bearer token for the terminal backend. The
// client asks for the token on every call so that an out-of-band token
// rotation takes effect without a restart.
type TokenSource interface {
	Token() (string, error)
}

// FileTokenSource reads the token from a file on each call.
type FileTokenSource struct {
	Path string
}

// Token reads and trims the token file.
func (s FileTokenSource) Token() (string, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return "", err
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", errors.New("token file is empty")
	}
	return token, nil
}

// StaticTokenSource returns a fixed token. Intended for tests and for
// environments that inject the token directly.
type StaticTokenSource string

// Token returns the fixed token.
func (s StaticTokenSource) Token() (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", errors.New("token is empty")
	}
	return string(s), nil
}
