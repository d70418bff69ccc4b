package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-attend/internal/attendance"
	"go-attend/internal/employee"
	"go-attend/internal/events"
	"go-attend/internal/leave"
	"go-attend/internal/messaging/kafka"
	"go-attend/internal/messaging/kafka/consumer"
	"go-attend/internal/messaging/kafka/producer"
	"go-attend/internal/recalc"
	"go-attend/internal/shared/connection"
	"go-attend/internal/shared/counter"
	"go-attend/internal/shift"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunWorker hosts the outbox relay and the recalculation consumer in one
// process.
func RunWorker() error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(kafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	shiftRepo := shift.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	recalcRepo := recalc.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)

	shiftService := shift.NewService(sqlDB, shiftRepo)
	attendanceService := attendance.NewService(sqlDB, attendanceRepo, shiftService, leave.NewSpanSource(leaveRepo))
	employeeService := employee.NewService(sqlDB, employeeRepo, counterRepo, nil)

	executor := recalc.NewExecutor(recalcRepo, attendanceService, employeeService)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.RecalculationRequestedTopic,
		GroupID:        "go-attend-recalculation",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		3*time.Second,
	)

	go consumer.ConsumeRecalculationRequested(ctx, reader, executor, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}
