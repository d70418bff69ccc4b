package recalc

import (
	"context"
	"database/sql"
	"time"

	"go-attend/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=batch_repo.go -destination=mock/batch_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	Create(ctx context.Context, b *CalculationBatch) error
	FindByIDAndCompany(ctx context.Context, companyID, id string) (*CalculationBatch, error)

	// MarkProcessing moves a PENDING batch to PROCESSING. It reports false
	// when the batch was already picked up or finished, which makes redelivered
	// trigger events no-ops.
	MarkProcessing(ctx context.Context, id string, total int) (bool, error)

	UpdateProgress(ctx context.Context, id string, processed, failed int) error

	// Finish writes a terminal status. The guard clause refuses to overwrite
	// a batch that is already terminal.
	Finish(ctx context.Context, id, status string, processed, failed int, message string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, b *CalculationBatch) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*CalculationBatch, error) {
	var b CalculationBatch
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&b, "id = ?", id).Error
	return &b, err
}

func (r *repository) MarkProcessing(ctx context.Context, id string, total int) (bool, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&CalculationBatch{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]interface{}{
			"status":      StatusProcessing,
			"total_count": total,
			"started_at":  now,
		})
	return res.RowsAffected == 1, res.Error
}

func (r *repository) UpdateProgress(ctx context.Context, id string, processed, failed int) error {
	return r.db.WithContext(ctx).
		Model(&CalculationBatch{}).
		Where("id = ? AND status = ?", id, StatusProcessing).
		Updates(map[string]interface{}{
			"processed_count": processed,
			"failed_count":    failed,
		}).Error
}

func (r *repository) Finish(ctx context.Context, id, status string, processed, failed int, message string) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&CalculationBatch{}).
		Where("id = ? AND status NOT IN ?", id, []string{StatusCompleted, StatusCompletedWithErrors, StatusFailed}).
		Updates(map[string]interface{}{
			"status":          status,
			"processed_count": processed,
			"failed_count":    failed,
			"message":         message,
			"finished_at":     now,
		}).Error
}
