package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
)

const captureContentType = "image/jpeg"

// Backend defines the object operations the archive needs, implemented
// by the MinIO and GCS clients.
type Backend interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Bucket() string
}

// Archive stores accepted face captures so a registration can be
// replayed against the device if the backend loses the template.
type Archive struct {
	backend Backend
}

// NewArchive constructs an Archive over the provided backend.
func NewArchive(backend Backend) *Archive {
	return &Archive{backend: backend}
}

// EnsureBucket ensures the capture bucket exists.
func (a *Archive) EnsureBucket(ctx context.Context) error {
	return a.backend.EnsureBucket(ctx)
}

// SaveCapture stores a decoded face image under a fresh key in the
// user's prefix and returns that key.
func (a *Archive) SaveCapture(ctx context.Context, userID string, image []byte) (string, error) {
	key := fmt.Sprintf("faces/%s/%s.jpg", userID, uuid.NewString())
	err := a.backend.Put(ctx, key, bytes.NewReader(image), int64(len(image)), captureContentType)
	if err != nil {
		return "", err
	}
	return key, nil
}

// Open opens a reader for a stored capture.
func (a *Archive) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return a.backend.Get(ctx, key)
}

// Remove deletes a stored capture.
func (a *Archive) Remove(ctx context.Context, key string) error {
	return a.backend.Delete(ctx, key)
}

// Bucket returns the configured bucket name.
func (a *Archive) Bucket() string {
	return a.backend.Bucket()
}
