// Package filestorage persists uploaded files on local disk. Public files
// are written as-is and served by URL; private files are encrypted at rest
// and only streamed back to authorized callers.
package filestorage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage abstracts a blob store keyed by category and year.
type Storage interface {
	// Save stores content under a generated key and returns that key.
	Save(ctx context.Context, category string, filename string, content io.Reader) (string, error)
	// Open returns a reader for the stored object.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the stored object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// buildKey produces "{category}/{year}/{uuid}_{slug}" so listings group by
// upload campaign and names never collide.
func buildKey(category, filename string, now time.Time) string {
	return path.Join(category, fmt.Sprintf("%d", now.Year()), uuid.New().String()+"_"+slugify(filename))
}

// slugify reduces a client filename to a safe ascii slug, keeping the
// extension.
func slugify(filename string) string {
	ext := path.Ext(filename)
	base := strings.TrimSuffix(filename, ext)

	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	slug := b.String()
	if slug == "" {
		slug = "file"
	}
	return slug + strings.ToLower(ext)
}
