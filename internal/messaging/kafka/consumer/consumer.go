package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	employeerateerrors "go-payroll/internal/employeerate/errors"
	"go-payroll/internal/events"
	"go-payroll/internal/observability"
	"go-payroll/internal/shared/contextutil"

	"github.com/jackc/pgx/v5/pgconn"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumers need.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// RateSeeder opens the rate history of a newly hired employee.
type RateSeeder interface {
	SeedInitialRate(ctx context.Context, event events.EmployeeCreatedEvent) error
}

// ConsumeEmployeeLifecycle seeds the daily rate of every created employee.
// A rate that already exists for the hire date means the event was delivered
// twice, so it is committed and skipped.
func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	seeder RateSeeder,
	metrics *observability.Metrics,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_lifecycle")
	log.Info("employee lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("employee lifecycle consumer stopped")
				return
			}
			log.Error("fetch employee lifecycle message failed", zap.Error(err))
			continue
		}

		handleEmployeeLifecycle(ctx, reader, seeder, metrics, log, msg)
	}
}

func handleEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	seeder RateSeeder,
	metrics *observability.Metrics,
	log *zap.Logger,
	msg kafkago.Message,
) {
	var event events.EmployeeCreatedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode employee_created event failed", zap.Error(err))
		metrics.ConsumedMessage(msg.Topic, "invalid")
		_ = reader.CommitMessages(ctx, msg)
		return
	}

	if event.EventType != "" && event.EventType != events.EventTypeEmployeeCreated {
		_ = reader.CommitMessages(ctx, msg)
		return
	}

	ctx = contextutil.WithRequestID(ctx, event.RequestID)
	if event.HireDate == "" {
		event.HireDate = time.Now().UTC().Format("2006-01-02")
	}

	attempts := 0
	err := withRetry(ctx, isDuplicateRate, func(ctx context.Context) error {
		attempts++
		return seeder.SeedInitialRate(ctx, event)
	})
	switch {
	case err == nil:
	case isDuplicateRate(err):
		log.Warn("employee rate already exists for event, skipping",
			zap.String("employee_id", event.EmployeeID),
			zap.String("company_id", event.CompanyID),
		)
		metrics.ConsumedMessage(msg.Topic, "duplicate")
		_ = reader.CommitMessages(ctx, msg)
		return
	case ctx.Err() != nil:
		// Shutting down mid-retry: the committed offset has not passed this
		// message yet, so the next member of the group reads it again.
		log.Warn("employee lifecycle consumer stopped before seeding",
			zap.String("employee_id", event.EmployeeID),
			zap.Error(err),
		)
		return
	default:
		// Committed anyway so the partition keeps moving. The rate has to be
		// added by hand through the employee rate API.
		log.Error("seed employee rate failed, event dropped",
			zap.String("employee_id", event.EmployeeID),
			zap.String("company_id", event.CompanyID),
			zap.String("daily_rate", event.DailyRate.StringFixed(2)),
			zap.String("hire_date", event.HireDate),
			zap.Int("attempts", attempts),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		metrics.ConsumedMessage(msg.Topic, "failed")
		_ = reader.CommitMessages(ctx, msg)
		return
	}

	if err := reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit employee lifecycle message failed", zap.Error(err))
		return
	}

	metrics.ConsumedMessage(msg.Topic, "processed")
	log.Info("employee rate seeded from employee_created event",
		zap.String("employee_id", event.EmployeeID),
		zap.String("company_id", event.CompanyID),
		zap.String("daily_rate", event.DailyRate.StringFixed(2)),
	)
}

func isDuplicateRate(err error) bool {
	if errors.Is(err, employeerateerrors.ErrRateAlreadyExists) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_employee_rate_effective"
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_employee_rate_effective")
}
