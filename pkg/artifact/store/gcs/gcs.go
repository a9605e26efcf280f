// Package gcs implements a Google Cloud Storage artifact backend.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/davidthor/chainctl/pkg/artifact/store"
)

const backendType = "gcs"

func init() {
	store.Register(backendType, NewBackend)
}

// Backend keeps chain artifacts as objects in one GCS bucket.
type Backend struct {
	bucket *storage.BucketHandle
	name   string
	keys   store.Keyspace
}

// clientOptions translates the backend configuration into client options.
// An endpoint selects an emulator, which takes no credentials.
func clientOptions(cfg map[string]string) []option.ClientOption {
	var opts []option.ClientOption
	switch {
	case cfg["endpoint"] != "":
		return append(opts, option.WithEndpoint(cfg["endpoint"]), option.WithoutAuthentication())
	case cfg["credentials_json"] != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg["credentials_json"])))
	case cfg["credentials"] != "":
		opts = append(opts, option.WithCredentialsFile(cfg["credentials"]))
	}
	return opts
}

// NewBackend creates a GCS backend. Keys: bucket (required), prefix,
// credentials (file), credentials_json, endpoint (emulator).
func NewBackend(cfg map[string]string) (store.Backend, error) {
	name := cfg["bucket"]
	if name == "" {
		return nil, fmt.Errorf("gcs backend requires 'bucket' configuration")
	}

	client, err := storage.NewClient(context.Background(), clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &Backend{
		bucket: client.Bucket(name),
		name:   name,
		keys:   store.NewKeyspace(cfg["prefix"]),
	}, nil
}

func (b *Backend) Type() string { return backendType }

func (b *Backend) Location(path string) string {
	return "gs://" + b.name + "/" + b.keys.Key(path)
}

func (b *Backend) object(path string) *storage.ObjectHandle {
	return b.bucket.Object(b.keys.Key(path))
}

func (b *Backend) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	r, err := b.object(path).NewReader(ctx)
	if err != nil {
		return nil, b.fail("read", path, err)
	}
	return r, nil
}

// Write streams into the object. The upload is only committed by Close.
func (b *Backend) Write(ctx context.Context, path string, data io.Reader) error {
	w := b.object(path).NewWriter(ctx)
	w.ContentType = store.ContentType(path)

	_, copyErr := io.Copy(w, data)
	closeErr := w.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		return b.fail("write", path, err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, path string) error {
	err := b.fail("delete", path, b.object(path).Delete(ctx))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

func (b *Backend) List(ctx context.Context, prefix string) ([]string, error) {
	it := b.bucket.Objects(ctx, &storage.Query{Prefix: b.keys.Key(prefix)})

	var keys []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, b.fail("list", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return b.keys.Collect(keys), nil
}

func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	_, err := b.object(path).Attrs(ctx)
	switch err = b.fail("stat", path, err); {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func (b *Backend) fail(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return store.ErrNotFound
	}
	return fmt.Errorf("failed to %s %s: %w", op, b.Location(path), err)
}
