// Package s3 implements an S3-compatible artifact backend.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/davidthor/chainctl/pkg/artifact/store"
)

const backendType = "s3"

func init() {
	store.Register(backendType, NewBackend)
}

// options is the parsed backend configuration.
type options struct {
	bucket    string
	region    string
	prefix    string
	endpoint  string
	pathStyle bool
	accessKey string
	secretKey string
}

func parseOptions(cfg map[string]string) (options, error) {
	o := options{
		bucket:    cfg["bucket"],
		region:    cfg["region"],
		prefix:    cfg["key"],
		endpoint:  cfg["endpoint"],
		pathStyle: cfg["force_path_style"] == "true",
		accessKey: cfg["access_key"],
		secretKey: cfg["secret_key"],
	}
	if o.bucket == "" {
		return o, fmt.Errorf("s3 backend requires 'bucket' configuration")
	}
	if o.region == "" {
		o.region = "us-east-1"
	}
	return o, nil
}

// Backend keeps chain artifacts as objects in one bucket.
type Backend struct {
	api    *s3.Client
	bucket string
	keys   store.Keyspace
}

// NewBackend creates an S3 backend. Keys: bucket (required), region,
// key (object prefix), endpoint, force_path_style, access_key, secret_key.
// Without access_key the default AWS credential chain is used.
func NewBackend(cfg map[string]string) (store.Backend, error) {
	o, err := parseOptions(cfg)
	if err != nil {
		return nil, err
	}

	loaders := []func(*config.LoadOptions) error{config.WithRegion(o.region)}
	if o.accessKey != "" {
		static := credentials.NewStaticCredentialsProvider(o.accessKey, o.secretKey, "")
		loaders = append(loaders, config.WithCredentialsProvider(static))
	}
	awsCfg, err := config.LoadDefaultConfig(context.Background(), loaders...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(so *s3.Options) {
		so.UsePathStyle = o.pathStyle
		// MinIO, R2 and other S3-compatible stores.
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
		}
	})

	return &Backend{api: api, bucket: o.bucket, keys: store.NewKeyspace(o.prefix)}, nil
}

func (b *Backend) Type() string { return backendType }

func (b *Backend) Location(path string) string {
	return "s3://" + b.bucket + "/" + b.keys.Key(path)
}

func (b *Backend) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := b.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.keys.Key(path)),
	})
	if err != nil {
		return nil, b.fail("read", path, err)
	}
	return out.Body, nil
}

// Write buffers the artifact so PutObject gets a seekable body with a known
// length. Chains are small.
func (b *Backend) Write(ctx context.Context, path string, data io.Reader) error {
	body, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to buffer %s: %w", path, err)
	}
	_, err = b.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.keys.Key(path)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(store.ContentType(path)),
	})
	if err != nil {
		return b.fail("write", path, err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, path string) error {
	_, err := b.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.keys.Key(path)),
	})
	if err = b.fail("delete", path, err); errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

func (b *Backend) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	pages := s3.NewListObjectsV2Paginator(b.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.keys.Key(prefix)),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, b.fail("list", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return b.keys.Collect(keys), nil
}

func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	_, err := b.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.keys.Key(path)),
	})
	switch err = b.fail("stat", path, err); {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// fail maps a missing object to store.ErrNotFound and wraps anything else
// with the object location.
func (b *Backend) fail(op, path string, err error) error {
	if err == nil {
		return nil
	}
	if missing(err) {
		return store.ErrNotFound
	}
	return fmt.Errorf("failed to %s %s: %w", op, b.Location(path), err)
}

// missing covers GetObject's NoSuchKey and the bare 404 HeadObject returns.
func missing(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}
