package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	EmploymentStatusActive   = "ACTIVE"
	EmploymentStatusInactive = "INACTIVE"
)

type Employee struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CompanyID        uuid.UUID  `gorm:"type:uuid;index"`
	DepartmentID     *uuid.UUID `gorm:"type:uuid"`
	EmployeeNumber   string     `gorm:"uniqueIndex:uq_employee_number"`
	FullName         string
	Email            string `gorm:"uniqueIndex:uq_employee_email"`
	Phone            string
	HireDate         time.Time `gorm:"type:date"`
	EmploymentStatus string    `gorm:"default:ACTIVE"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
	DeletedAt        gorm.DeletedAt `gorm:"index"`

	Department *DepartmentRef `gorm:"foreignKey:DepartmentID"`
}

// DepartmentRef is a read-only projection of the departments table,
// preloaded for display without importing the department package.
type DepartmentRef struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string
}

func (DepartmentRef) TableName() string { return "departments" }
