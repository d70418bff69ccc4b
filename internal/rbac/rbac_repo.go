package rbac

import "gorm.io/gorm"

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	GetEmployeeRoles(companyID string) ([]EmployeeRoleRow, error)
	GetRolePermissions(companyID string) ([]RolePermissionRow, error)

	ListRoles(companyID string) ([]RoleRow, error)
	GetPermissionsByRoleID(roleID string) ([]PermissionRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type RoleRow struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CompanyID   string `gorm:"type:uuid"`
	Name        string
	Description string
	CreatedAt   string
	UpdatedAt   string
}

func (RoleRow) TableName() string { return "roles" }

type PermissionRow struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Resource string
	Action   string
	Label    string
	Category string
}

func (PermissionRow) TableName() string { return "permissions" }

type EmployeeRoleRow struct {
	EmployeeID string
	RoleID     string
}

type RolePermissionRow struct {
	RoleID   string
	Resource string
	Action   string
}

func (r *repository) GetEmployeeRoles(companyID string) ([]EmployeeRoleRow, error) {
	var result []EmployeeRoleRow

	err := r.db.
		Table("employee_roles").
		Select("employee_roles.employee_id, employee_roles.role_id").
		Joins("JOIN roles ON roles.id = employee_roles.role_id").
		Where("roles.company_id = ?", companyID).
		Scan(&result).Error

	return result, err
}

func (r *repository) GetRolePermissions(companyID string) ([]RolePermissionRow, error) {
	var result []RolePermissionRow

	err := r.db.
		Table("role_permissions").
		Select("role_permissions.role_id, permissions.resource, permissions.action").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Where("roles.company_id = ?", companyID).
		Scan(&result).Error

	return result, err
}

func (r *repository) ListRoles(companyID string) ([]RoleRow, error) {
	var result []RoleRow
	err := r.db.Where("company_id = ?", companyID).Order("name ASC").Find(&result).Error
	return result, err
}

func (r *repository) GetPermissionsByRoleID(roleID string) ([]PermissionRow, error) {
	var result []PermissionRow
	err := r.db.
		Table("permissions").
		Select("permissions.*").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Scan(&result).Error
	return result, err
}
