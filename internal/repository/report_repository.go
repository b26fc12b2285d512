package repository

import (
	"context"
	"sync"

	"go-xai-analyzer/pkg/models"
)

const defaultHistoryLimit = 50

// MemoryReportRepository keeps the most recent reports in memory
type MemoryReportRepository struct {
	mu      sync.RWMutex
	limit   int
	order   []string // oldest first
	records map[string]*models.ReportRecord
}

// NewMemoryReportRepository creates a report history holding at most limit records
func NewMemoryReportRepository(limit int) *MemoryReportRepository {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	return &MemoryReportRepository{
		limit:   limit,
		records: make(map[string]*models.ReportRecord),
	}
}

func (r *MemoryReportRepository) Save(ctx context.Context, record *models.ReportRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[record.ID]; exists {
		r.removeFromOrder(record.ID)
	}
	stored := *record
	r.records[record.ID] = &stored
	r.order = append(r.order, record.ID)

	for len(r.order) > r.limit {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.records, oldest)
	}
	return nil
}

func (r *MemoryReportRepository) Get(ctx context.Context, id string) (*models.ReportRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	out := *record
	return &out, nil
}

func (r *MemoryReportRepository) List(ctx context.Context) ([]*models.ReportRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.ReportRecord, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		record := *r.records[r.order[i]]
		out = append(out, &record)
	}
	return out, nil
}

func (r *MemoryReportRepository) removeFromOrder(id string) {
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
