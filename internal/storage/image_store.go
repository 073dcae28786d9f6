package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"
)

// ErrImageNotFound is returned by ImageStore.Get for unknown keys.
var ErrImageNotFound = errors.New("image not found")

// ErrInvalidKey is returned for keys that would escape the store root.
var ErrInvalidKey = errors.New("invalid image key")

// ImageStore persists report photos.
type ImageStore interface {
	// Put stores data under key and returns a URL that identifies it.
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes the image under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ReportImageKey builds the object key for a report photo:
// reports/<unix-ms>_<sanitized name>.
func ReportImageKey(at time.Time, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "image"
	}
	return fmt.Sprintf("reports/%d_%s", at.UnixMilli(), name)
}

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
