package shift

import (
	"context"
	"database/sql"

	"go-attend/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=shift_repo.go -destination=mock/shift_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreatePeriod(ctx context.Context, p *TimePeriod) error
	UpdatePeriod(ctx context.Context, p *TimePeriod) error
	FindPeriodByIDAndCompany(ctx context.Context, companyID, id string) (*TimePeriod, error)
	FindPeriodsByIDs(ctx context.Context, companyID string, ids []string) ([]TimePeriod, error)
	FindAllPeriodsByCompany(ctx context.Context, companyID string) ([]TimePeriod, error)
	CountShiftsReferencingPeriod(ctx context.Context, companyID, periodID string) (int64, error)

	CreateShift(ctx context.Context, s *Shift) error
	ReplaceShiftPeriods(ctx context.Context, shiftID string, rows []ShiftPeriod) error
	UpdateShift(ctx context.Context, s *Shift) error
	FindShiftByIDAndCompany(ctx context.Context, companyID, id string) (*Shift, error)
	FindAllShiftsByCompany(ctx context.Context, companyID string) ([]Shift, error)

	UpsertAssignment(ctx context.Context, a *ShiftAssignment) error
	FindAssignmentByEmployee(ctx context.Context, companyID, employeeID string) (*ShiftAssignment, error)
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

func (r *repository) CreatePeriod(ctx context.Context, p *TimePeriod) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) UpdatePeriod(ctx context.Context, p *TimePeriod) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *repository) FindPeriodByIDAndCompany(ctx context.Context, companyID, id string) (*TimePeriod, error) {
	var p TimePeriod
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repository) FindPeriodsByIDs(ctx context.Context, companyID string, ids []string) ([]TimePeriod, error) {
	var rows []TimePeriod
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id IN ?", ids).
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindAllPeriodsByCompany(ctx context.Context, companyID string) ([]TimePeriod, error) {
	var rows []TimePeriod
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Order("start_time ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) CountShiftsReferencingPeriod(ctx context.Context, companyID, periodID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("shift_periods").
		Joins("JOIN shifts ON shifts.id = shift_periods.shift_id").
		Where("shifts.company_id = ?", companyID).
		Where("shifts.deleted_at IS NULL").
		Where("shift_periods.period_id = ?", periodID).
		Distinct("shift_periods.shift_id").
		Count(&count).Error
	return count, err
}

func (r *repository) CreateShift(ctx context.Context, s *Shift) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) ReplaceShiftPeriods(ctx context.Context, shiftID string, rows []ShiftPeriod) error {
	if err := r.db.WithContext(ctx).
		Where("shift_id = ?", shiftID).
		Delete(&ShiftPeriod{}).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *repository) UpdateShift(ctx context.Context, s *Shift) error {
	return r.db.WithContext(ctx).Omit("Periods").Save(s).Error
}

func (r *repository) FindShiftByIDAndCompany(ctx context.Context, companyID, id string) (*Shift, error) {
	var s Shift
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Periods", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_of_cycle ASC, sort_order ASC")
		}).
		Preload("Periods.Period").
		First(&s, "id = ?", id).Error
	return &s, err
}

func (r *repository) FindAllShiftsByCompany(ctx context.Context, companyID string) ([]Shift, error) {
	var rows []Shift
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Periods", func(db *gorm.DB) *gorm.DB {
			return db.Order("day_of_cycle ASC, sort_order ASC")
		}).
		Preload("Periods.Period").
		Order("name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) UpsertAssignment(ctx context.Context, a *ShiftAssignment) error {
	var existing ShiftAssignment
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(a.CompanyID.String())).
		First(&existing, "employee_id = ?", a.EmployeeID).Error
	if err == nil {
		existing.ShiftID = a.ShiftID
		existing.AnchorDate = a.AnchorDate
		*a = existing
		return r.db.WithContext(ctx).Save(&existing).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) FindAssignmentByEmployee(ctx context.Context, companyID, employeeID string) (*ShiftAssignment, error) {
	var a ShiftAssignment
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		First(&a, "employee_id = ?", employeeID).Error
	return &a, err
}
