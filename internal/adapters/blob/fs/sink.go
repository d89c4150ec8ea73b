// Package fs stores exports as files under a root directory.
package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/exportsink"
)

// Sink implements exportsink.Sink on the local filesystem. Writes go to a
// temporary file first, so a reader never sees a partial export.
type Sink struct {
	root string
}

// New returns a sink rooted at root, creating the directory if needed.
func New(root string) (*Sink, error) {
	if root == "" {
		root = "./exports"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Sink{root: root}, nil
}

// sanitizeKey keeps keys relative and inside root.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key contains '..'")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key")
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}

func (s *Sink) Put(ctx context.Context, key string, contentType string, body io.Reader) (exportsink.Object, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return exportsink.Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return exportsink.Object{}, err
	}
	dst := filepath.Join(s.root, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return exportsink.Object{}, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".export-*")
	if err != nil {
		return exportsink.Object{}, err
	}
	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return exportsink.Object{}, fmt.Errorf("write %s: %w", k, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		_ = os.Remove(tmp.Name())
		return exportsink.Object{}, err
	}

	loc, err := filepath.Abs(dst)
	if err != nil {
		loc = dst
	}
	return exportsink.Object{Key: k, ContentType: contentType, Size: n, Location: loc}, nil
}
