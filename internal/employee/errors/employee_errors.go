package employeeerrors

import (
	"go-attend/internal/shared/apperror"
	"net/http"
)

var (
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found",
		http.StatusNotFound,
	)
	ErrEmployeeAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee with the same email already exists",
		http.StatusConflict,
	)
	ErrEmployeeNumberAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"Employee number already exists in this company",
		http.StatusConflict,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid employee ID",
		http.StatusBadRequest,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid company ID",
		http.StatusBadRequest,
	)
	ErrInvalidHireDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid hire date, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrDepartmentNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"Department not found for this company",
		http.StatusBadRequest,
	)
)
