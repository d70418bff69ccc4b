package leave

import (
	"context"
	"database/sql"
	"errors"
	"time"

	leaveerrors "go-attend/internal/leave/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreateLeaveRequest) (LeaveResponse, error)
	GetAll(ctx context.Context, companyID string) ([]LeaveResponse, error)
	GetByID(ctx context.Context, companyID, id string) (LeaveResponse, error)
	Submit(ctx context.Context, companyID, actorID, id string) (LeaveResponse, error)
	Approve(ctx context.Context, companyID, actorID, id string) (LeaveResponse, error)
	Reject(ctx context.Context, companyID, actorID, id, rejectionReason string) (LeaveResponse, error)
	Cancel(ctx context.Context, companyID, actorID, id string) (LeaveResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(ctx context.Context, companyID, actorID string, req CreateLeaveRequest) (LeaveResponse, error) {
	companyUUID, employeeUUID, createdByUUID, startDate, endDate, err := validateCreateRequest(companyID, actorID, req)
	if err != nil {
		s.logger.Warn("create leave validation failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("create leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	belongs, err := qtx.EmployeeBelongsToCompany(ctx, companyID, req.EmployeeID)
	if err != nil {
		s.logger.Error("create leave employee company check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !belongs {
		return LeaveResponse{}, leaveerrors.ErrEmployeeNotInCompany
	}

	overlap, err := qtx.HasOverlappingPeriod(ctx, companyID, req.EmployeeID, startDate, endDate, nil)
	if err != nil {
		s.logger.Error("create leave overlap check failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if overlap {
		s.logger.Warn("create leave overlap detected",
			zap.String("employee_id", req.EmployeeID),
			zap.String("start_date", req.StartDate),
			zap.String("end_date", req.EndDate),
		)
		return LeaveResponse{}, leaveerrors.ErrLeaveOverlap
	}

	totalDays := int(endDate.Sub(startDate).Hours()/24) + 1
	l := &Leave{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		EmployeeID: employeeUUID,
		LeaveType:  req.LeaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		TotalDays:  totalDays,
		Reason:     req.Reason,
		Status:     StatusPending,
		CreatedBy:  createdByUUID,
	}

	if err := qtx.Create(ctx, l); err != nil {
		s.logger.Error("create leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("create leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("create leave success",
		zap.String("leave_id", l.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("leave_type", l.LeaveType),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp, nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (LeaveResponse, error) {
	l, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) Submit(ctx context.Context, companyID, actorID, id string) (LeaveResponse, error) {
	return s.transition(ctx, companyID, actorID, id, StatusSubmitted, nil)
}

func (s *service) Approve(ctx context.Context, companyID, actorID, id string) (LeaveResponse, error) {
	return s.transition(ctx, companyID, actorID, id, StatusApproved, nil)
}

func (s *service) Reject(ctx context.Context, companyID, actorID, id, rejectionReason string) (LeaveResponse, error) {
	return s.transition(ctx, companyID, actorID, id, StatusRejected, &rejectionReason)
}

func (s *service) Cancel(ctx context.Context, companyID, actorID, id string) (LeaveResponse, error) {
	return s.transition(ctx, companyID, actorID, id, StatusCanceled, nil)
}

// PENDING -> SUBMITTED | CANCELLED, SUBMITTED -> APPROVED | REJECTED.
// APPROVED, REJECTED and CANCELLED are terminal.
func isAllowedStatusTransition(currentStatus, targetStatus string) bool {
	switch currentStatus {
	case StatusPending:
		return targetStatus == StatusSubmitted || targetStatus == StatusCanceled
	case StatusSubmitted:
		return targetStatus == StatusApproved || targetStatus == StatusRejected
	default:
		return false
	}
}

func (s *service) transition(ctx context.Context, companyID, actorID, id, targetStatus string, rejectionReason *string) (LeaveResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidActorID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("leave transition begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	l, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}
	if !isAllowedStatusTransition(l.Status, targetStatus) {
		s.logger.Warn("leave transition rejected",
			zap.String("leave_id", id),
			zap.String("from_status", l.Status),
			zap.String("to_status", targetStatus),
		)
		return LeaveResponse{}, leaveerrors.ErrInvalidStatusTransition
	}

	l.Status = targetStatus
	switch targetStatus {
	case StatusApproved:
		now := time.Now().UTC()
		l.ApprovedBy = &actorUUID
		l.ApprovedAt = &now
		l.RejectionReason = nil
	case StatusRejected:
		if rejectionReason == nil || *rejectionReason == "" {
			return LeaveResponse{}, leaveerrors.ErrRejectionReasonRequired
		}
		l.ApprovedBy = nil
		l.ApprovedAt = nil
		l.RejectionReason = rejectionReason
	default:
		l.ApprovedBy = nil
		l.ApprovedAt = nil
		l.RejectionReason = nil
	}

	if err := qtx.Update(ctx, l); err != nil {
		s.logger.Error("leave transition persist failed",
			zap.String("leave_id", id),
			zap.String("target_status", targetStatus),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("leave transition commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("leave transition success",
		zap.String("leave_id", id),
		zap.String("status", targetStatus),
	)
	return mapToResponse(*l), nil
}

func validateCreateRequest(companyID, actorID string, req CreateLeaveRequest) (uuid.UUID, uuid.UUID, uuid.UUID, time.Time, time.Time, error) {
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidCompanyID
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidEmployeeID
	}
	createdByUUID, err := uuid.Parse(actorID)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidActorID
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, time.Time{}, time.Time{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, time.Time{}, time.Time{}, err
	}
	if startDate.After(endDate) {
		return uuid.Nil, uuid.Nil, uuid.Nil, time.Time{}, time.Time{}, leaveerrors.ErrInvalidDateRange
	}
	return companyUUID, employeeUUID, createdByUUID, startDate, endDate, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:         l.ID.String(),
		CompanyID:  l.CompanyID.String(),
		EmployeeID: l.EmployeeID.String(),
		LeaveType:  l.LeaveType,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		TotalDays:  l.TotalDays,
		Reason:     l.Reason,
		Status:     l.Status,
		CreatedBy:  l.CreatedBy.String(),
	}
	if l.Employee != nil {
		resp.EmployeeName = l.Employee.FullName
	}
	if l.ApprovedBy != nil {
		v := l.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if l.ApprovedAt != nil {
		v := l.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	resp.RejectionReason = l.RejectionReason
	return resp
}
