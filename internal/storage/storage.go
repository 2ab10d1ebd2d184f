// Package storage persists uploaded images to a local directory or an
// S3-compatible bucket.
package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore saves an uploaded file and returns where it ended up: an
// absolute path for local storage, a URL for S3.
type ImageStore interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader, size int64) (string, error)
}

// UniqueName returns a random file name that keeps the extension of the
// original, or no extension when there is none.
func UniqueName(original string) string {
	ext := filepath.Ext(original)
	if ext == original || strings.ContainsAny(ext, `/\`) {
		ext = ""
	}
	return uuid.NewString() + strings.ToLower(ext)
}
