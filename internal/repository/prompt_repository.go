package repository

import (
	"context"
	"errors"
	"fmt"

	"go-xai-analyzer/internal/storage"
)

// StorePromptRepository implements PromptRepository on a TextStore under a fixed key
type StorePromptRepository struct {
	store storage.TextStore
	key   string
}

// NewPromptRepository creates a prompt repository over the given store
func NewPromptRepository(store storage.TextStore, key string) PromptRepository {
	return &StorePromptRepository{store: store, key: key}
}

func (r *StorePromptRepository) Load(ctx context.Context) (string, error) {
	prompt, err := r.store.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrPromptNotFound
		}
		return "", fmt.Errorf("%w: %w", ErrRepositoryUnavailable, err)
	}
	return prompt, nil
}

func (r *StorePromptRepository) Save(ctx context.Context, prompt string) error {
	if err := r.store.Put(ctx, r.key, prompt); err != nil {
		return fmt.Errorf("%w: %w", ErrRepositoryUnavailable, err)
	}
	return nil
}

func (r *StorePromptRepository) Clear(ctx context.Context) error {
	if err := r.store.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("%w: %w", ErrRepositoryUnavailable, err)
	}
	return nil
}
