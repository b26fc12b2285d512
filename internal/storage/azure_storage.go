package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// MaxValueSize is the largest value, in bytes, the blob store accepts
const MaxValueSize = 1 << 20

// ErrValueTooLarge is returned for values over MaxValueSize
var ErrValueTooLarge = errors.New("value exceeds the maximum stored size")

type azureStorage struct {
	client    *azblob.Client
	container string
}

// NewAzureStorage creates a TextStore keeping one block blob per key in the
// given container.
func NewAzureStorage(accountName, accountKey, container string) (TextStore, error) {
	if accountName == "" || container == "" {
		return nil, fmt.Errorf("azure storage requires an account name and a container")
	}

	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("could not create azure client: %w", err)
	}

	return &azureStorage{client: client, container: container}, nil
}

// EnsureContainer creates the container unless it already exists
func (s *azureStorage) EnsureContainer(ctx context.Context) error {
	_, err := s.client.CreateContainer(ctx, s.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("create container %s: %w", s.container, err)
	}
	return nil
}

func (s *azureStorage) Get(ctx context.Context, key string) (string, error) {
	downloadResponse, err := s.client.DownloadStream(ctx, s.container, key, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("download failed: %w", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	return readValue(retryReader, key)
}

func (s *azureStorage) Put(ctx context.Context, key, value string) error {
	if len(value) > MaxValueSize {
		return fmt.Errorf("blob %s: %w", key, ErrValueTooLarge)
	}
	contentType := "text/plain; charset=utf-8"
	_, err := s.client.UploadBuffer(ctx, s.container, key, []byte(value), &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	return nil
}

func (s *azureStorage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteBlob(ctx, s.container, key, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// readValue reads one byte past MaxValueSize so an oversized blob fails
// instead of being truncated.
func readValue(r io.Reader, key string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxValueSize+1))
	if err != nil {
		return "", fmt.Errorf("read blob %s: %w", key, err)
	}
	if len(data) > MaxValueSize {
		return "", fmt.Errorf("blob %s: %w", key, ErrValueTooLarge)
	}
	return string(data), nil
}
