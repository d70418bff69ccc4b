package recalc

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending             = "PENDING"
	StatusProcessing          = "PROCESSING"
	StatusCompleted           = "COMPLETED"
	StatusCompletedWithErrors = "COMPLETED_WITH_ERRORS"
	StatusFailed              = "FAILED"
)

// IsTerminal reports whether a batch status can no longer change.
func IsTerminal(status string) bool {
	switch status {
	case StatusCompleted, StatusCompletedWithErrors, StatusFailed:
		return true
	}
	return false
}

// CalculationBatch tracks one asynchronous recalculation run. A batch walks
// PENDING -> PROCESSING -> terminal and never leaves a terminal status.
type CalculationBatch struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	BatchNo   string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_calculation_batches_no"`

	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`

	// Optional employee subset as a JSON array of UUID strings; empty means
	// every active employee of the company.
	EmployeeFilter []byte `gorm:"type:jsonb"`

	Status         string `gorm:"type:varchar(30);not null;default:'PENDING';index"`
	TotalCount     int    `gorm:"not null;default:0"`
	ProcessedCount int    `gorm:"not null;default:0"`
	FailedCount    int    `gorm:"not null;default:0"`
	Message        string `gorm:"type:text"`

	TriggeredBy uuid.UUID `gorm:"type:uuid;not null"`

	CreatedAt  time.Time
	UpdatedAt  time.Time
	StartedAt  *time.Time
	FinishedAt *time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

func (CalculationBatch) TableName() string {
	return "calculation_batches"
}
