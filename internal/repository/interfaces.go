package repository

import (
	"context"

	"go-xai-analyzer/pkg/models"
)

// PromptRepository defines the interface for the persisted analysis prompt
type PromptRepository interface {
	// Load returns the saved prompt or ErrPromptNotFound
	Load(ctx context.Context) (string, error)

	// Save replaces the saved prompt
	Save(ctx context.Context, prompt string) error

	// Clear removes the saved prompt
	Clear(ctx context.Context) error
}

// ReportRepository defines the interface for generated report history
type ReportRepository interface {
	// Save stores a report record, replacing any record with the same id
	Save(ctx context.Context, record *models.ReportRecord) error

	// Get retrieves a stored report record
	Get(ctx context.Context, id string) (*models.ReportRecord, error)

	// List returns stored records, most recent first
	List(ctx context.Context) ([]*models.ReportRecord, error)
}
