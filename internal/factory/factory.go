package factory

import (
	"context"
	"fmt"
	"strings"

	"go-xai-analyzer/internal/config"
	"go-xai-analyzer/internal/storage"
)

// StorageType represents different types of prompt store backends
type StorageType string

const (
	// MemoryStorage keeps values in the process
	MemoryStorage StorageType = config.PromptStoreMemory
	// AzureStorage keeps values in Azure blob storage
	AzureStorage StorageType = config.PromptStoreAzure
)

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(ctx context.Context, storageType StorageType) (storage.TextStore, error)
}

type containerInitializer interface {
	EnsureContainer(ctx context.Context) error
}

// storageFactory implements StorageFactory
type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(ctx context.Context, storageType StorageType) (storage.TextStore, error) {
	switch StorageType(strings.ToLower(string(storageType))) {
	case MemoryStorage, "":
		return storage.NewMemoryStore(), nil
	case AzureStorage:
		store, err := storage.NewAzureStorage(f.cfg.AzureAccount, f.cfg.AzureKey, f.cfg.AzureContainer)
		if err != nil {
			return nil, err
		}
		if initializer, ok := store.(containerInitializer); ok {
			if err := initializer.EnsureContainer(ctx); err != nil {
				return nil, err
			}
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}
