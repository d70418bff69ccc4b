package employee_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-attend/internal/employee"
	employeeerrors "go-attend/internal/employee/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubService struct {
	created   *employee.CreateEmployeeRequest
	createErr error
	list      []employee.EmployeeResponse
	byIDErr   error
}

func (s *stubService) Create(ctx context.Context, companyID string, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if s.createErr != nil {
		return employee.EmployeeResponse{}, s.createErr
	}
	s.created = &req
	return employee.EmployeeResponse{ID: uuid.NewString(), FullName: req.FullName, Email: req.Email}, nil
}

func (s *stubService) GetAll(ctx context.Context, companyID string) ([]employee.EmployeeResponse, error) {
	return s.list, nil
}

func (s *stubService) GetOptions(ctx context.Context, companyID string) ([]employee.EmployeeResponse, error) {
	return s.list, nil
}

func (s *stubService) GetByID(ctx context.Context, companyID, id string) (employee.EmployeeResponse, error) {
	if s.byIDErr != nil {
		return employee.EmployeeResponse{}, s.byIDErr
	}
	return employee.EmployeeResponse{ID: id}, nil
}

func (s *stubService) ListActiveIDs(ctx context.Context, companyID string) ([]string, error) {
	return nil, nil
}

func (s *stubService) Update(ctx context.Context, companyID, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	return employee.EmployeeResponse{ID: id, FullName: req.FullName}, nil
}

func (s *stubService) Delete(ctx context.Context, companyID, id string) error { return nil }

func setupRouter(svc employee.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("company_id", uuid.NewString())
		c.Next()
	})
	h := employee.NewHandler(svc)
	r.GET("/employees", h.GetAll)
	r.GET("/employees/:id", h.GetById)
	r.POST("/employees", h.Create)
	return r
}

func TestHandlerCreateReturnsCreated(t *testing.T) {
	svc := &stubService{}
	r := setupRouter(svc)

	body, _ := json.Marshal(employee.CreateEmployeeRequest{
		FullName: "Arief Santoso",
		Email:    "arief@example.com",
		HireDate: "2026-01-05",
	})
	req := httptest.NewRequest(http.MethodPost, "/employees", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotNil(t, svc.created)
}

func TestHandlerCreateRejectsBadEmail(t *testing.T) {
	r := setupRouter(&stubService{})

	body := []byte(`{"full_name":"Arief","email":"not-an-email","hire_date":"2026-01-05"}`)
	req := httptest.NewRequest(http.MethodPost, "/employees", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerGetAllPaginatesAndSorts(t *testing.T) {
	svc := &stubService{list: []employee.EmployeeResponse{
		{ID: "3", FullName: "Citra", Email: "citra@example.com"},
		{ID: "1", FullName: "Arief", Email: "arief@example.com"},
		{ID: "2", FullName: "Budi", Email: "budi@example.com"},
	}}
	r := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/employees?page=1&page_size=2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []employee.EmployeeResponse `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 2)
	assert.Equal(t, int64(3), envelope.Meta.Total)
	assert.Equal(t, "Arief", envelope.Data[0].FullName)
	assert.Equal(t, "Budi", envelope.Data[1].FullName)
}

func TestHandlerGetByIDNotFound(t *testing.T) {
	svc := &stubService{byIDErr: employeeerrors.ErrEmployeeNotFound}
	r := setupRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/employees/"+uuid.NewString(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
