package consumer

import (
	"context"
	"encoding/json"

	"go-attend/internal/events"
	"go-attend/internal/recalc"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeRecalculationRequested drives calculation batches from the trigger
// topic. Batch execution is idempotent (a claimed batch is skipped), so a
// message may safely be redelivered after a crash between execute and
// commit.
func ConsumeRecalculationRequested(
	ctx context.Context,
	reader *kafkago.Reader,
	executor *recalc.Executor,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.recalculation")
	log.Info("recalculation consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("recalculation consumer stopped")
				return
			}
			log.Error("fetch recalculation message failed", zap.Error(err))
			continue
		}

		var event events.RecalculationRequestedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode recalculation event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := executor.Execute(ctx, event.CompanyID, event.BatchID); err != nil {
			log.Error("execute calculation batch failed",
				zap.String("batch_id", event.BatchID),
				zap.String("company_id", event.CompanyID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit recalculation message failed", zap.Error(err))
			continue
		}

		log.Info("calculation batch handled",
			zap.String("batch_id", event.BatchID),
			zap.String("company_id", event.CompanyID),
		)
	}
}
