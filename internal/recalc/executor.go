package recalc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-attend/internal/attendance"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Recalculator rebuilds a single daily record. Satisfied by
// attendance.Service.
type Recalculator interface {
	Recalculate(ctx context.Context, companyID, employeeID string, date time.Time) (*attendance.DailyRecord, error)
}

// EmployeeDirectory lists the employees a company-wide batch covers.
// Satisfied by employee.Service.
type EmployeeDirectory interface {
	ListActiveIDs(ctx context.Context, companyID string) ([]string, error)
}

const progressFlushEvery = 50

// Executor drains one calculation batch: every (employee, date) pair in the
// batch gets its daily record rebuilt from the punch log. One failing pair
// never aborts the rest of the batch.
type Executor struct {
	repo      Repository
	calc      Recalculator
	directory EmployeeDirectory
	logger    *zap.Logger
}

func NewExecutor(repo Repository, calc Recalculator, directory EmployeeDirectory, logger ...*zap.Logger) *Executor {
	l := zap.L().Named("recalc.executor")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("recalc.executor")
	}
	return &Executor{repo: repo, calc: calc, directory: directory, logger: l}
}

// Execute runs the batch to a terminal status. Redelivered events are safe:
// a batch that already left PENDING is skipped.
func (e *Executor) Execute(ctx context.Context, companyID, batchID string) error {
	b, err := e.repo.FindByIDAndCompany(ctx, companyID, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			e.logger.Warn("batch not found, dropping", zap.String("batch_id", batchID))
			return nil
		}
		return err
	}

	employeeIDs, err := e.resolveEmployees(ctx, companyID, b)
	if err != nil {
		e.logger.Error("resolve batch employees failed",
			zap.String("batch_id", batchID),
			zap.Error(err),
		)
		return e.repo.Finish(ctx, batchID, StatusFailed, 0, 0, err.Error())
	}

	days := int(b.EndDate.Sub(b.StartDate).Hours()/24) + 1
	total := len(employeeIDs) * days

	claimed, err := e.repo.MarkProcessing(ctx, batchID, total)
	if err != nil {
		return err
	}
	if !claimed {
		e.logger.Info("batch already claimed, skipping",
			zap.String("batch_id", batchID),
			zap.String("status", b.Status),
		)
		return nil
	}

	e.logger.Info("batch execution started",
		zap.String("batch_id", batchID),
		zap.String("batch_no", b.BatchNo),
		zap.Int("employees", len(employeeIDs)),
		zap.Int("days", days),
	)

	processed, failed := 0, 0
	var firstFailure string

	for _, employeeID := range employeeIDs {
		for d := 0; d < days; d++ {
			if ctx.Err() != nil {
				return e.repo.Finish(ctx, batchID, StatusFailed, processed, failed, "execution interrupted")
			}
			date := b.StartDate.AddDate(0, 0, d)

			// A nil record with a nil error is a rest day; it still counts as
			// processed. Configuration errors count as failed but the batch
			// keeps going.
			if _, err := e.calc.Recalculate(ctx, companyID, employeeID, date); err != nil {
				failed++
				if firstFailure == "" {
					firstFailure = fmt.Sprintf("%s@%s: %s", employeeID, date.Format("2006-01-02"), err.Error())
				}
				e.logger.Warn("recalculate pair failed",
					zap.String("batch_id", batchID),
					zap.String("employee_id", employeeID),
					zap.Time("work_date", date),
					zap.Error(err),
				)
			} else {
				processed++
			}

			if (processed+failed)%progressFlushEvery == 0 {
				if err := e.repo.UpdateProgress(ctx, batchID, processed, failed); err != nil {
					e.logger.Error("update batch progress failed", zap.String("batch_id", batchID), zap.Error(err))
				}
			}
		}
	}

	status := StatusCompleted
	message := ""
	if failed > 0 {
		status = StatusCompletedWithErrors
		message = fmt.Sprintf("%d of %d pairs failed, first: %s", failed, total, firstFailure)
	}

	if err := e.repo.Finish(ctx, batchID, status, processed, failed, message); err != nil {
		return err
	}

	e.logger.Info("batch execution finished",
		zap.String("batch_id", batchID),
		zap.String("status", status),
		zap.Int("processed", processed),
		zap.Int("failed", failed),
	)
	return nil
}

func (e *Executor) resolveEmployees(ctx context.Context, companyID string, b *CalculationBatch) ([]string, error) {
	if len(b.EmployeeFilter) > 0 {
		var ids []string
		if err := json.Unmarshal(b.EmployeeFilter, &ids); err != nil {
			return nil, err
		}
		return ids, nil
	}
	return e.directory.ListActiveIDs(ctx, companyID)
}
