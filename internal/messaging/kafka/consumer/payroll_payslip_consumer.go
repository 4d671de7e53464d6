package consumer

import (
	"context"
	"encoding/json"
	"net/http"

	"go-payroll/internal/events"
	"go-payroll/internal/observability"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/contextutil"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type PayslipGenerator interface {
	RenderPayslip(ctx context.Context, companyID, entryID string) error
}

func ConsumePayrollPayslipRequested(
	ctx context.Context,
	reader MessageReader,
	generator PayslipGenerator,
	metrics *observability.Metrics,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.payroll_payslip")
	log.Info("payroll payslip consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("payroll payslip consumer stopped")
				return
			}
			log.Error("fetch payroll payslip message failed", zap.Error(err))
			continue
		}

		handlePayslipRequested(ctx, reader, generator, metrics, log, msg)
	}
}

// isClientError reports failures a retry cannot fix, such as an unknown or
// unapproved entry.
func isClientError(err error) bool {
	return apperror.ToHTTP(err).Status < http.StatusInternalServerError
}

func handlePayslipRequested(
	ctx context.Context,
	reader MessageReader,
	generator PayslipGenerator,
	metrics *observability.Metrics,
	log *zap.Logger,
	msg kafkago.Message,
) {
	var event events.PayrollPayslipRequestedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode payroll payslip event failed", zap.Error(err))
		metrics.ConsumedMessage(msg.Topic, "invalid")
		_ = reader.CommitMessages(ctx, msg)
		return
	}

	ctx = contextutil.WithRequestID(ctx, event.RequestID)
	attempts := 0
	err := withRetry(ctx, isClientError, func(ctx context.Context) error {
		attempts++
		return generator.RenderPayslip(ctx, event.CompanyID, event.EntryID)
	})
	if err != nil {
		if ctx.Err() != nil {
			log.Warn("payroll payslip consumer stopped before rendering",
				zap.String("entry_id", event.EntryID),
				zap.Error(err),
			)
			return
		}
		// payslip masih bisa dibuat ulang lewat POST /payroll-entries/:id/payslip
		log.Error("generate payslip failed, event dropped",
			zap.String("entry_id", event.EntryID),
			zap.String("company_id", event.CompanyID),
			zap.Int("attempts", attempts),
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		metrics.ConsumedMessage(msg.Topic, "failed")
		_ = reader.CommitMessages(ctx, msg)
		return
	}

	if err := reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit payroll payslip message failed", zap.Error(err))
		return
	}

	metrics.ConsumedMessage(msg.Topic, "processed")
	log.Info("payroll payslip generated",
		zap.String("entry_id", event.EntryID),
		zap.String("company_id", event.CompanyID),
	)
}
