package employee

import (
	"context"
	"database/sql"
	"go-attend/internal/tenant"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error)
	FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error)
	FindOptionsByCompany(ctx context.Context, companyID string) ([]Employee, error)
	ListActiveIDs(ctx context.Context, companyID string) ([]string, error)
	DepartmentExists(ctx context.Context, companyID, departmentID string) (bool, error)
	Update(ctx context.Context, empl *Employee) error
	Delete(ctx context.Context, companyID string, id string) error
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).Omit("Department").Create(empl).Error
}

func (r *repository) FindAllByCompany(ctx context.Context, companyID string) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Department").
		Order("full_name ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) FindByIDAndCompany(ctx context.Context, companyID string, id string) (*Employee, error) {
	var empl Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Preload("Department").
		First(&empl, "id = ?", id).Error
	return &empl, err
}

func (r *repository) FindOptionsByCompany(ctx context.Context, companyID string) ([]Employee, error) {
	var empls []Employee
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Select("id", "company_id", "full_name", "email", "employee_number", "employment_status", "hire_date").
		Where("employment_status = ?", EmploymentStatusActive).
		Order("full_name ASC").
		Find(&empls).Error
	return empls, err
}

func (r *repository) ListActiveIDs(ctx context.Context, companyID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&Employee{}).
		Scopes(tenant.Scope(companyID)).
		Where("employment_status = ?", EmploymentStatusActive).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *repository) DepartmentExists(ctx context.Context, companyID, departmentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("departments").
		Where("id = ?", departmentID).
		Where("company_id = ?", companyID).
		Where("deleted_at IS NULL").
		Count(&count).Error
	return count > 0, err
}

func (r *repository) Update(ctx context.Context, empl *Employee) error {
	return r.db.WithContext(ctx).Omit("Department").Save(empl).Error
}

func (r *repository) Delete(ctx context.Context, companyID string, id string) error {
	return r.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Delete(&Employee{}, "id = ?", id).Error
}
