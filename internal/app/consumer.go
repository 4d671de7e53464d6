package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go-payroll/internal/attendance"
	"go-payroll/internal/employeerate"
	"go-payroll/internal/events"
	"go-payroll/internal/holiday"
	"go-payroll/internal/messaging/kafka/consumer"
	"go-payroll/internal/observability"
	"go-payroll/internal/payroll"
	"go-payroll/internal/shared/counter"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const consumerGroupPrefix = "go-payroll-"

// RunConsumer reads employee lifecycle and payslip request topics until
// SIGINT/SIGTERM.
func RunConsumer(cfg Config) error {
	logger := zap.L().Named("app.consumer")

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

	metrics := observability.NewMetrics(nil)

	employeeRateService := employeerate.NewService(sqlDB, employeerate.NewRepository(gormDB))

	holidayService := holiday.NewService(sqlDB, holiday.NewRepository(gormDB))
	attendanceService := attendance.NewService(sqlDB, attendance.NewRepository(gormDB), holidayService)
	payrollService := payroll.NewServiceWithOptions(sqlDB, payroll.NewRepository(gormDB), attendanceService, payroll.Options{
		Counter:        counter.NewRepository(gormDB),
		PayslipDir:     cfg.PayslipDir,
		PayslipBaseURL: cfg.PayslipBaseURL,
	})

	lifecycleReader := newReader(cfg.KafkaBroker, events.EmployeeCreatedTopic, "employee-rate")
	defer lifecycleReader.Close()
	payslipReader := newReader(cfg.KafkaBroker, events.PayrollPayslipRequestedTopic, "payslip")
	defer payslipReader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		consumer.ConsumeEmployeeLifecycle(ctx, lifecycleReader, employeeRateService, metrics, logger)
	}()
	go func() {
		defer wg.Done()
		consumer.ConsumePayrollPayslipRequested(ctx, payslipReader, payrollService, metrics, logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	wg.Wait()

	return nil
}

func newReader(broker, topic, group string) *kafkago.Reader {
	return kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{broker},
		Topic:          topic,
		GroupID:        consumerGroupPrefix + group,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
}
