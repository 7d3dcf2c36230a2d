package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores public objects such as player avatars.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

// NewObjectKey returns a unique key under prefix, e.g. "players/7/avatar/<uuid>.png".
func NewObjectKey(prefix, ext string) string {
	name := uuid.NewString()
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join(strings.Trim(prefix, "/"), name+ext)
}
