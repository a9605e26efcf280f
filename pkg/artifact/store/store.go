// Package store defines the artifact store interface and backend registry.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when an artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// Backend persists artifacts by slash-separated relative path.
type Backend interface {
	// Type returns the backend type name.
	Type() string

	// Read opens an artifact. Returns ErrNotFound if it doesn't exist.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write creates or replaces an artifact.
	Write(ctx context.Context, path string, data io.Reader) error

	// Delete removes an artifact. Deleting a missing artifact is not an error.
	Delete(ctx context.Context, path string) error

	// List returns artifact paths under a prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists reports whether an artifact exists.
	Exists(ctx context.Context, path string) (bool, error)

	// Location returns the user-facing location (file path or URL) of path.
	Location(path string) string
}

// Factory creates a backend from string configuration.
type Factory func(config map[string]string) (Backend, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes a backend type available to Create. Backends register
// themselves from init.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[name] = factory
}

// Create instantiates a registered backend.
func Create(name string, config map[string]string) (Backend, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown artifact backend %q (available: %s)", name, strings.Join(Types(), ", "))
	}
	if config == nil {
		config = map[string]string{}
	}
	return factory(config)
}

// Types returns the registered backend names, sorted.
func Types() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Put writes content to path.
func Put(ctx context.Context, b Backend, path string, content []byte) error {
	return b.Write(ctx, path, bytes.NewReader(content))
}

// Get reads the full content of path.
func Get(ctx context.Context, b Backend, path string) ([]byte, error) {
	r, err := b.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// ContentType returns the MIME type recorded for an artifact path.
func ContentType(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".chain", ".12dattmf":
		return "application/xml"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// Join joins a key prefix and a relative artifact path.
func Join(prefix, p string) string {
	if prefix == "" {
		return p
	}
	return path.Join(prefix, p)
}

// Keyspace maps artifact paths onto object keys below an optional prefix.
// Object store backends share it so every backend lays out keys the same way.
type Keyspace struct {
	prefix string
}

// NewKeyspace trims surrounding slashes from prefix.
func NewKeyspace(prefix string) Keyspace {
	return Keyspace{prefix: strings.Trim(prefix, "/")}
}

// Key returns the object key of an artifact path.
func (k Keyspace) Key(p string) string {
	return Join(k.prefix, strings.TrimPrefix(p, "/"))
}

// Path returns the artifact path of an object key. It reports false for
// keys outside the prefix and for folder placeholder objects.
func (k Keyspace) Path(key string) (string, bool) {
	if strings.HasSuffix(key, "/") {
		return "", false
	}
	if k.prefix == "" {
		return key, true
	}
	rel := strings.TrimPrefix(key, k.prefix+"/")
	if rel == key {
		return "", false
	}
	return rel, true
}

// Collect gathers the artifact paths of listed object keys, sorted.
func (k Keyspace) Collect(keys []string) []string {
	paths := make([]string, 0, len(keys))
	for _, key := range keys {
		if p, ok := k.Path(key); ok {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}
