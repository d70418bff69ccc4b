package department

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	departmenterrors "go-attend/internal/department/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=department_service.go -destination=mock/department_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateDepartmentRequest) (DepartmentResponse, error)
	GetAll(ctx context.Context, companyID string) ([]DepartmentResponse, error)
	GetByID(ctx context.Context, companyID, id string) (DepartmentResponse, error)
	Update(ctx context.Context, companyID, id string, req UpdateDepartmentRequest) (DepartmentResponse, error)
	Delete(ctx context.Context, companyID, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("department.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("department.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateDepartmentRequest,
) (DepartmentResponse, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return DepartmentResponse{}, departmenterrors.ErrInvalidCompanyID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create department begin tx failed", zap.Error(err))
		return DepartmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dept := &Department{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		CompanyID:   companyUUID,
	}

	if err := qtx.Create(ctx, dept); err != nil {
		s.logger.Error("create department persist failed", zap.Error(err))
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return DepartmentResponse{}, err
	}

	s.logger.Info("create department success", zap.String("department_id", dept.ID.String()))

	return mapToResponse(*dept), nil
}

func (s *service) GetAll(
	ctx context.Context,
	companyID string,
) ([]DepartmentResponse, error) {
	depts, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		s.logger.Error("get all departments failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(depts), nil
}

func (s *service) GetByID(
	ctx context.Context,
	companyID, id string,
) (DepartmentResponse, error) {
	dept, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*dept), nil
}

func (s *service) Update(
	ctx context.Context,
	companyID, id string,
	req UpdateDepartmentRequest,
) (DepartmentResponse, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("update department begin tx failed", zap.Error(err))
		return DepartmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	dept, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	dept.Name = req.Name
	dept.Description = req.Description

	if err := qtx.Update(ctx, dept); err != nil {
		s.logger.Error("update department persist failed", zap.Error(err))
		return DepartmentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return DepartmentResponse{}, err
	}

	s.logger.Info("update department success", zap.String("department_id", id))

	return mapToResponse(*dept), nil
}

func (s *service) Delete(
	ctx context.Context,
	companyID, id string,
) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("delete department begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.Delete(ctx, companyID, id); err != nil {
		s.logger.Error("delete department failed", zap.Error(err))
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("delete department success", zap.String("department_id", id))
	return nil
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return departmenterrors.ErrDepartmentNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return departmenterrors.ErrDepartmentNameTaken
	}
	if strings.Contains(strings.ToLower(err.Error()), "duplicate key value") {
		return departmenterrors.ErrDepartmentNameTaken
	}

	return err
}

func mapToResponse(dept Department) DepartmentResponse {
	return DepartmentResponse{
		ID:          dept.ID.String(),
		Name:        dept.Name,
		Description: dept.Description,
		CompanyID:   dept.CompanyID.String(),
		CreatedAt:   dept.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   dept.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func mapToListResponse(depts []Department) []DepartmentResponse {
	res := make([]DepartmentResponse, len(depts))
	for i, d := range depts {
		res[i] = mapToResponse(d)
	}
	return res
}
