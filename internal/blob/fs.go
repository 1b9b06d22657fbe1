// Package blob stores product images. The corpus backend is a local
// directory served by the HTTP layer, anything implementing
// port.BlobStorage can replace it.
package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikolayk812/marketgo/internal/port"
)

type fsStorage struct {
	dir     string
	baseURL string
}

func NewFS(dir, baseURL string) port.BlobStorage {
	return &fsStorage{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

func (s *fsStorage) Upload(_ context.Context, path string, data []byte) error {
	full := filepath.Join(s.dir, filepath.FromSlash(path))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("os.WriteFile: %w", err)
	}

	return nil
}

func (s *fsStorage) URL(_ context.Context, path string) (string, error) {
	return s.baseURL + "/" + strings.TrimPrefix(path, "/"), nil
}
