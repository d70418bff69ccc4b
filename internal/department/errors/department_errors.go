package departmenterrors

import (
	"go-attend/internal/shared/apperror"
	"net/http"
)

var (
	ErrDepartmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Department not found",
		http.StatusNotFound,
	)
	ErrDepartmentNameTaken = apperror.New(
		apperror.CodeConflict,
		"Department with the same name already exists",
		http.StatusConflict,
	)
	ErrInvalidCompanyID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid company ID",
		http.StatusBadRequest,
	)
)
