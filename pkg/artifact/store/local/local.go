// Package local implements a filesystem artifact backend.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/davidthor/chainctl/pkg/artifact/store"
)

const (
	backendType = "local"

	// DefaultPath is used when the config has no "path".
	DefaultPath = "output"

	tempPattern = ".chainctl-*"
)

func init() {
	store.Register(backendType, NewBackend)
}

// Backend keeps artifacts as files below a root directory.
type Backend struct {
	root string
}

// NewBackend creates a local backend rooted at config "path", creating the
// directory when needed.
func NewBackend(config map[string]string) (store.Backend, error) {
	dir := config["path"]
	if dir == "" {
		dir = DefaultPath
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Backend{root: root}, nil
}

func (b *Backend) Type() string { return backendType }

// Location is the absolute file path of an artifact.
func (b *Backend) Location(path string) string {
	return filepath.Join(b.root, filepath.FromSlash(path))
}

// resolve returns the file path of an artifact, refusing paths that would
// leave the root.
func (b *Backend) resolve(path string) (string, error) {
	if !b.Contains(path) {
		return "", fmt.Errorf("artifact path %q is outside %s", path, b.root)
	}
	return b.Location(path), nil
}

func (b *Backend) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := b.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}
	return f, nil
}

// Write replaces the artifact through a temp file and rename, so readers
// never observe a partially written chain.
func (b *Backend) Write(ctx context.Context, path string, data io.Reader) error {
	target, err := b.resolve(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	_, copyErr := io.Copy(tmp, data)
	err = errors.Join(copyErr, tmp.Close())
	if err == nil {
		err = os.Chmod(tmp.Name(), 0644)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), target)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, path string) error {
	file, err := b.resolve(path)
	if err != nil {
		return err
	}
	err = os.Remove(file)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to delete %s: %w", file, err)
}

// List walks below prefix and returns slash-separated artifact paths,
// sorted. In-flight temp files are skipped.
func (b *Backend) List(ctx context.Context, prefix string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(b.Location(prefix), func(p string, d fs.DirEntry, err error) error {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil
		case err != nil:
			return err
		case d.IsDir():
			return nil
		}
		if ok, _ := filepath.Match(tempPattern, d.Name()); ok {
			return nil
		}
		rel, err := filepath.Rel(b.root, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	info, err := os.Stat(b.Location(path))
	switch {
	case err == nil:
		return !info.IsDir(), nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
}

// Contains reports whether path stays inside the backend root.
func (b *Backend) Contains(path string) bool {
	rel, err := filepath.Rel(b.root, b.Location(path))
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
