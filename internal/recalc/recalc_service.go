package recalc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-attend/internal/events"
	"go-attend/internal/messaging/kafka"
	recalcerrors "go-attend/internal/recalc/errors"
	"go-attend/internal/shared/contextutil"
	"go-attend/internal/shared/counter"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	// Longest range one batch may cover. Wider recalculations are split by
	// the caller into multiple batches.
	maxRangeDays = 92

	batchCounterType       = "CALCULATION_BATCH"
	batchStatusKeyPrefix   = "recalc:batch:"
	terminalStatusCacheTTL = 30 * time.Minute
)

func batchStatusKey(batchID string) string {
	return batchStatusKeyPrefix + batchID
}

//go:generate mockgen -source=recalc_service.go -destination=mock/recalc_service_mock.go -package=mock
type Service interface {
	// Trigger records a calculation batch and enqueues it for the worker.
	// The batch row and its outbox event commit atomically.
	Trigger(ctx context.Context, companyID, actorID string, req TriggerRequest) (BatchResponse, error)

	// GetStatus reads a batch. Terminal statuses are served from cache;
	// concurrent polls for the same batch collapse into one database read.
	GetStatus(ctx context.Context, companyID, id string) (BatchResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	counter counter.Repository
	outbox  kafka.OutboxRepository
	rdb     *redis.Client
	sf      *singleflight.Group
	logger  *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("recalc.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("recalc.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		counter: counterRepo,
		outbox:  outboxRepo,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		logger:  l,
	}
}

func (s *service) Trigger(ctx context.Context, companyID, actorID string, req TriggerRequest) (BatchResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return BatchResponse{}, recalcerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return BatchResponse{}, recalcerrors.ErrInvalidActorID
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return BatchResponse{}, recalcerrors.ErrInvalidDateFormat
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return BatchResponse{}, recalcerrors.ErrInvalidDateFormat
	}
	if startDate.After(endDate) {
		return BatchResponse{}, recalcerrors.ErrInvalidDateRange
	}
	if int(endDate.Sub(startDate).Hours()/24)+1 > maxRangeDays {
		return BatchResponse{}, recalcerrors.ErrRangeTooLarge
	}

	var filter []byte
	if len(req.EmployeeIDs) > 0 {
		for _, id := range req.EmployeeIDs {
			if _, err := uuid.Parse(id); err != nil {
				return BatchResponse{}, recalcerrors.ErrInvalidEmployeeFilter
			}
		}
		if filter, err = json.Marshal(req.EmployeeIDs); err != nil {
			return BatchResponse{}, err
		}
	}

	seq, err := s.counter.GetNextValue(ctx, companyID, batchCounterType)
	if err != nil {
		s.logger.Error("trigger recalculation counter failed", zap.Error(err))
		return BatchResponse{}, err
	}

	b := &CalculationBatch{
		ID:             uuid.New(),
		CompanyID:      companyUUID,
		BatchNo:        fmt.Sprintf("CALC-%06d", seq),
		StartDate:      startDate,
		EndDate:        endDate,
		EmployeeFilter: filter,
		Status:         StatusPending,
		TriggeredBy:    actorUUID,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("trigger recalculation begin tx failed", zap.Error(err))
		return BatchResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, b); err != nil {
		s.logger.Error("trigger recalculation persist failed", zap.Error(err))
		return BatchResponse{}, err
	}

	event := events.RecalculationRequestedEvent{
		EventType:   "recalculation_requested",
		RequestID:   rid,
		BatchID:     b.ID.String(),
		CompanyID:   companyID,
		RequestedBy: actorID,
		OccurredAt:  time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return BatchResponse{}, err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "calculation_batch",
		AggregateID:   b.ID.String(),
		EventType:     event.EventType,
		Topic:         events.RecalculationRequestedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("trigger recalculation outbox persist failed",
			zap.String("batch_id", b.ID.String()),
			zap.Error(err),
		)
		return BatchResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("trigger recalculation commit failed", zap.Error(err))
		return BatchResponse{}, err
	}

	s.logger.Info("recalculation batch triggered",
		zap.String("request_id", rid),
		zap.String("batch_id", b.ID.String()),
		zap.String("batch_no", b.BatchNo),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
		zap.Int("employee_filter", len(req.EmployeeIDs)),
	)
	return mapBatchResponse(*b), nil
}

func (s *service) GetStatus(ctx context.Context, companyID, id string) (BatchResponse, error) {
	if _, err := uuid.Parse(companyID); err != nil {
		return BatchResponse{}, recalcerrors.ErrInvalidCompanyID
	}
	if _, err := uuid.Parse(id); err != nil {
		return BatchResponse{}, recalcerrors.ErrBatchNotFound
	}

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, batchStatusKey(id)).Result(); err == nil {
			var resp BatchResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(batchStatusKey(id), func() (interface{}, error) {
		b, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return BatchResponse{}, recalcerrors.ErrBatchNotFound
			}
			return BatchResponse{}, err
		}

		resp := mapBatchResponse(*b)

		// Only terminal statuses are cacheable; in-flight progress must stay
		// fresh for pollers.
		if s.rdb != nil && IsTerminal(resp.Status) {
			if data, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, batchStatusKey(id), string(data), terminalStatusCacheTTL)
			}
		}
		return resp, nil
	})
	if err != nil {
		return BatchResponse{}, err
	}
	return v.(BatchResponse), nil
}

func mapBatchResponse(b CalculationBatch) BatchResponse {
	resp := BatchResponse{
		ID:             b.ID.String(),
		BatchNo:        b.BatchNo,
		Status:         b.Status,
		StartDate:      b.StartDate.Format("2006-01-02"),
		EndDate:        b.EndDate.Format("2006-01-02"),
		TotalCount:     b.TotalCount,
		ProcessedCount: b.ProcessedCount,
		FailedCount:    b.FailedCount,
		Message:        b.Message,
		TriggeredBy:    b.TriggeredBy.String(),
		CreatedAt:      b.CreatedAt.Format(time.RFC3339),
	}
	if len(b.EmployeeFilter) > 0 {
		_ = json.Unmarshal(b.EmployeeFilter, &resp.EmployeeIDs)
	}
	if b.StartedAt != nil {
		v := b.StartedAt.Format(time.RFC3339)
		resp.StartedAt = &v
	}
	if b.FinishedAt != nil {
		v := b.FinishedAt.Format(time.RFC3339)
		resp.FinishedAt = &v
	}
	return resp
}
