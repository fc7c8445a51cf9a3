package attachments

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureBackend stores blobs in one Azure Blob Storage container.
type AzureBackend struct {
	client    *azblob.Client
	container string
}

// NewAzureBackend creates the client from a connection string. No request
// is made until Ensure or Put.
func NewAzureBackend(connectionString, container string) (*AzureBackend, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &AzureBackend{client: client, container: container}, nil
}

// Ensure creates the container if it does not exist.
func (a *AzureBackend) Ensure(ctx context.Context) error {
	_, err := a.client.CreateContainer(ctx, a.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("create container %s: %w", a.container, err)
	}
	return nil
}

func (a *AzureBackend) Put(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}

	opts := &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{
			BlobContentType: &contentType,
		},
	}

	if _, err := a.client.UploadStream(ctx, a.container, key, r, opts); err != nil {
		return "", fmt.Errorf("upload blob %s: %w", key, err)
	}

	return a.BlobURL(key), nil
}

// BlobURL returns the URL of key in the container.
func (a *AzureBackend) BlobURL(key string) string {
	return a.client.ServiceClient().
		NewContainerClient(a.container).
		NewBlobClient(key).
		URL()
}
