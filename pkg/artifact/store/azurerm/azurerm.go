// Package azurerm implements an Azure Blob Storage artifact backend.
package azurerm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/davidthor/chainctl/pkg/artifact/store"
)

const backendType = "azurerm"

func init() {
	store.Register(backendType, NewBackend)
}

// Backend keeps chain artifacts as block blobs in one container.
type Backend struct {
	container *container.Client
	name      string
	keys      store.Keyspace
}

// NewBackend creates an Azure Blob Storage backend. Keys:
// storage_account_name and container_name (required), key (blob prefix),
// endpoint, and one of access_key, sas_token or connection_string. Without
// explicit credentials DefaultAzureCredential is used.
func NewBackend(cfg map[string]string) (store.Backend, error) {
	account := cfg["storage_account_name"]
	if account == "" {
		return nil, fmt.Errorf("azurerm backend requires 'storage_account_name' configuration")
	}
	name := cfg["container_name"]
	if name == "" {
		return nil, fmt.Errorf("azurerm backend requires 'container_name' configuration")
	}

	client, err := serviceClient(cfg, account, serviceURL(cfg, account))
	if err != nil {
		return nil, err
	}

	return &Backend{
		container: client.ServiceClient().NewContainerClient(name),
		name:      name,
		keys:      store.NewKeyspace(cfg["key"]),
	}, nil
}

// serviceURL honours an explicit endpoint for Azurite and sovereign clouds.
func serviceURL(cfg map[string]string, account string) string {
	if endpoint := cfg["endpoint"]; endpoint != "" {
		return endpoint
	}
	return "https://" + account + ".blob.core.windows.net/"
}

// withSAS appends a SAS token to a service URL.
func withSAS(serviceURL, token string) string {
	sep := "?"
	if strings.Contains(serviceURL, "?") {
		sep = "&"
	}
	return serviceURL + sep + strings.TrimPrefix(token, "?")
}

func serviceClient(cfg map[string]string, account, url string) (*azblob.Client, error) {
	var (
		client *azblob.Client
		err    error
		method string
	)
	switch {
	case cfg["connection_string"] != "":
		method = "connection string"
		client, err = azblob.NewClientFromConnectionString(cfg["connection_string"], nil)
	case cfg["access_key"] != "":
		method = "shared key"
		var cred *azblob.SharedKeyCredential
		if cred, err = azblob.NewSharedKeyCredential(account, cfg["access_key"]); err == nil {
			client, err = azblob.NewClientWithSharedKeyCredential(url, cred, nil)
		}
	case cfg["sas_token"] != "":
		method = "SAS token"
		client, err = azblob.NewClientWithNoCredential(withSAS(url, cfg["sas_token"]), nil)
	default:
		method = "default credential"
		var cred *azidentity.DefaultAzureCredential
		if cred, err = azidentity.NewDefaultAzureCredential(nil); err == nil {
			client, err = azblob.NewClient(url, cred, nil)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure client (%s): %w", method, err)
	}
	return client, nil
}

func (b *Backend) Type() string { return backendType }

func (b *Backend) Location(path string) string {
	return "azure://" + b.name + "/" + b.keys.Key(path)
}

func (b *Backend) blob(path string) *blockblob.Client {
	return b.container.NewBlockBlobClient(b.keys.Key(path))
}

func (b *Backend) Read(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, err := b.blob(path).DownloadStream(ctx, nil)
	if err != nil {
		return nil, b.fail("read", path, err)
	}
	return resp.Body, nil
}

func (b *Backend) Write(ctx context.Context, path string, data io.Reader) error {
	body, err := io.ReadAll(data)
	if err != nil {
		return fmt.Errorf("failed to buffer %s: %w", path, err)
	}
	contentType := store.ContentType(path)
	_, err = b.blob(path).UploadBuffer(ctx, body, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", b.Location(path), err)
	}
	return nil
}

func (b *Backend) Delete(ctx context.Context, path string) error {
	_, err := b.blob(path).Delete(ctx, nil)
	if err = b.fail("delete", path, err); errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

func (b *Backend) List(ctx context.Context, prefix string) ([]string, error) {
	full := b.keys.Key(prefix)
	pager := b.container.NewListBlobsFlatPager(&container.ListBlobsFlatOptions{Prefix: &full})

	var keys []string
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, b.fail("list", prefix, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				keys = append(keys, *item.Name)
			}
		}
	}
	return b.keys.Collect(keys), nil
}

func (b *Backend) Exists(ctx context.Context, path string) (bool, error) {
	_, err := b.blob(path).GetProperties(ctx, nil)
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
	if missing(err) {
		return store.ErrNotFound
	}
	return fmt.Errorf("failed to %s %s: %w", op, b.Location(path), err)
}

// missing covers BlobNotFound and the bodiless 404 returned for HEAD.
func missing(err error) bool {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return true
	}
	var respErr *azcore.ResponseError
	return errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
