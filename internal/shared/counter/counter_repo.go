package counter

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -destination=mock/counter_repo_mock.go -package=mock . Repository
type Repository interface {
	GetNextValue(ctx context.Context, companyID string, counterType string) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// GetNextValue issues sequence numbers per (company, type), e.g. calculation
// batch numbers. Atomic UPSERT so concurrent triggers never share a value.
func (r *repository) GetNextValue(ctx context.Context, companyID string, counterType string) (int64, error) {
	var nextValue int64

	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO company_counters (company_id, counter_type, last_value, updated_at)
		VALUES (?, ?, 1, now())
		ON CONFLICT (company_id, counter_type) DO UPDATE
		SET last_value = company_counters.last_value + 1, updated_at = now()
		RETURNING last_value
	`, companyID, counterType).Scan(&nextValue).Error

	if err != nil {
		return 0, err
	}

	return nextValue, nil
}
