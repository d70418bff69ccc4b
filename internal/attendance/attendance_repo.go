package attendance

import (
	"context"
	"database/sql"
	"time"

	"go-attend/internal/tenant"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecordFilter struct {
	EmployeeID   string
	DepartmentID string
	Status       string
	StartDate    time.Time
	EndDate      time.Time
	Page         int
	Limit        int
}

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreatePunch(ctx context.Context, p *Punch) error
	FindPunchesForDates(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]Punch, error)

	UpsertDailyRecord(ctx context.Context, rec *DailyRecord) error
	FindRecordByID(ctx context.Context, companyID, id string) (*DailyRecord, error)
	FindRecordByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*DailyRecord, error)
	FindRecords(ctx context.Context, companyID string, f RecordFilter) ([]DailyRecord, int64, error)
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

func (r *repository) CreatePunch(ctx context.Context, p *Punch) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// FindPunchesForDates loads the raw punch log wide enough to cover every
// session window that can touch [from, to]: one day of slack on each side
// absorbs overnight sessions and generous check-in offsets.
func (r *repository) FindPunchesForDates(ctx context.Context, companyID, employeeID string, from, to time.Time) ([]Punch, error) {
	var rows []Punch
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("employee_id = ?", employeeID).
		Where("clock_time >= ? AND clock_time < ?", from.AddDate(0, 0, -1), to.AddDate(0, 0, 2)).
		Order("clock_time ASC").
		Find(&rows).Error
	return rows, err
}

// UpsertDailyRecord writes the derived fields for (employee, work_date),
// inserting the row on first calculation.
func (r *repository) UpsertDailyRecord(ctx context.Context, rec *DailyRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "employee_id"}, {Name: "work_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"shift_id", "sessions_snapshot", "status",
				"late_minutes", "early_leave_minutes", "absent_minutes",
				"leave_minutes", "work_minutes", "calculated_at", "updated_at",
			}),
		}).
		Create(rec).Error
}

func (r *repository) FindRecordByID(ctx context.Context, companyID, id string) (*DailyRecord, error) {
	var rec DailyRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Employee").
		First(&rec, "id = ?", id).Error
	return &rec, err
}

func (r *repository) FindRecordByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*DailyRecord, error) {
	var rec DailyRecord
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&rec, "employee_id = ? AND work_date = ?", employeeID, date).Error
	return &rec, err
}

func (r *repository) FindRecords(ctx context.Context, companyID string, f RecordFilter) ([]DailyRecord, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&DailyRecord{}).
		Scopes(tenant.Scope(companyID))

	if f.EmployeeID != "" {
		q = q.Where("employee_id = ?", f.EmployeeID)
	}
	if f.DepartmentID != "" {
		q = q.Joins("JOIN employees ON employees.id = daily_records.employee_id").
			Where("employees.department_id = ?", f.DepartmentID)
	}
	if f.Status != "" {
		q = q.Where("daily_records.status = ?", f.Status)
	}
	if !f.StartDate.IsZero() {
		q = q.Where("work_date >= ?", f.StartDate)
	}
	if !f.EndDate.IsZero() {
		q = q.Where("work_date <= ?", f.EndDate)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []DailyRecord
	err := q.
		Preload("Employee").
		Order("work_date DESC, employee_id ASC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&rows).Error
	return rows, total, err
}
