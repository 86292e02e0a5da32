package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dentalscribe/submission-api/internal/core/domain"
)

// URLPrefix is the path under which the API serves the local upload directory.
const URLPrefix = "/uploads"

// LocalStore writes artifacts into a directory served by the API under
// URLPrefix.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates dir if needed. baseURL is the externally reachable
// address of the API, e.g. http://localhost:8080.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local store: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory artifacts are written to.
func (s *LocalStore) Dir() string { return s.dir }

func (s *LocalStore) Store(ctx context.Context, upload domain.Upload) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := ObjectName(upload.MimeType, upload.Filename)
	if err := os.WriteFile(filepath.Join(s.dir, name), upload.Data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return s.baseURL + URLPrefix + "/" + name, nil
}
