package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-payroll/internal/attendance"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/holiday"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/messaging/kafka/producer"
	"go-payroll/internal/observability"
	"go-payroll/internal/payroll"
	"go-payroll/internal/shared/connection"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// RunWorker publishes the outbox and runs the weekly period scheduler until
// SIGINT/SIGTERM.
func RunWorker(cfg Config) error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connectDatabase(cfg)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if cfg.KafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(cfg.KafkaBroker, cfg.DBRetries)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	metrics := observability.NewMetrics(nil)
	audit := bootstrap.NewStdoutAuditLogger(logger.Named("audit"))
	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	holidayService := holiday.NewService(sqlDB, holiday.NewRepository(gormDB))
	attendanceService := attendance.NewService(sqlDB, attendance.NewRepository(gormDB), holidayService)
	payrollService := payroll.NewServiceWithOptions(sqlDB, payroll.NewRepository(gormDB), attendanceService, payroll.Options{
		Outbox:  outboxRepo,
		Metrics: metrics,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		metrics,
		logger,
		cfg.OutboxPollInterval,
	)

	scheduler, err := newPeriodScheduler(ctx, cfg.WeeklyPeriodCron, payrollService, audit, logger)
	if err != nil {
		return err
	}
	scheduler.Start()
	// Catch up immediately so a worker started mid-week does not wait for Monday.
	ensureWeeklyPeriods(ctx, payrollService, audit, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	<-scheduler.Stop().Done()
	cancel()

	return nil
}

// PeriodEnsurer creates the current week's payroll periods.
type PeriodEnsurer interface {
	EnsureWeeklyPeriods(ctx context.Context, now time.Time) (int, error)
}

func newPeriodScheduler(
	ctx context.Context,
	spec string,
	ensurer PeriodEnsurer,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
) (*cron.Cron, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(spec, func() { ensureWeeklyPeriods(ctx, ensurer, audit, logger) }); err != nil {
		return nil, fmt.Errorf("invalid WEEKLY_PERIOD_CRON %q: %w", spec, err)
	}
	return c, nil
}

func ensureWeeklyPeriods(ctx context.Context, ensurer PeriodEnsurer, audit bootstrap.AuditLogger, logger *zap.Logger) {
	created, err := ensurer.EnsureWeeklyPeriods(ctx, time.Now().UTC())
	if err != nil {
		logger.Error("ensure weekly payroll periods failed", zap.Int("created", created), zap.Error(err))
		return
	}
	logger.Info("weekly payroll periods checked", zap.Int("created", created))
	if created > 0 {
		audit.Log(ctx, bootstrap.AuditLog{
			Action:  "WEEKLY_PERIODS_ENSURED",
			Message: "weekly payroll periods created",
			Meta:    map[string]any{"created": created},
		})
	}
}
