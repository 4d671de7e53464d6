package kafka_test

import (
	"context"
	"testing"
	"time"

	"go-payroll/internal/messaging/kafka"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	event, err := kafka.NewEvent("rid-1", "payroll_entry", "entry-1", "payroll.payslip.requested", "topic.v1", map[string]string{"entry_id": "entry-1"})

	require.NoError(t, err)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, kafka.OutboxStatusPending, event.Status)
	assert.JSONEq(t, `{"entry_id":"entry-1"}`, string(event.Payload))
}

func TestNewEvent_RequiresTopic(t *testing.T) {
	_, err := kafka.NewEvent("", "payroll_entry", "entry-1", "x", "", map[string]string{})
	assert.EqualError(t, err, "outbox topic is required")
}

func TestOutboxRepository_CreateUsesTx(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs("ob-1", "rid-1", "payroll_entry", "entry-1", "payroll.payslip.requested", "topic.v1", []byte(`{}`), kafka.OutboxStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	repo := kafka.NewOutboxRepository(db).WithTx(tx)
	err = repo.Create(context.Background(), kafka.OutboxEvent{
		ID:            "ob-1",
		RequestID:     "rid-1",
		AggregateType: "payroll_entry",
		AggregateID:   "entry-1",
		EventType:     "payroll.payslip.requested",
		Topic:         "topic.v1",
		Payload:       []byte(`{}`),
		Status:        kafka.OutboxStatusPending,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "request_id", "aggregate_type", "aggregate_id", "event_type", "topic", "payload", "status", "retry_count", "next_retry_at"}).
		AddRow("ob-1", "rid-1", "employee", "emp-1", "employee.created", "hr.employee.lifecycle.v1", []byte(`{}`), "pending", 0, now)
	mock.ExpectQuery("FROM outbox_events").
		WithArgs(kafka.OutboxStatusPending, kafka.OutboxStatusFailed, kafka.MaxOutboxAttempts, 10).
		WillReturnRows(rows)

	events, err := kafka.NewOutboxRepository(db).ListPending(context.Background(), 10)

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "rid-1", events[0].RequestID)
	assert.Equal(t, "hr.employee.lifecycle.v1", events[0].Topic)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_MarkFailedParksExhaustedEvents(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE outbox_events").
		WithArgs("ob-1", kafka.OutboxStatusFailed, "broker unavailable", kafka.MaxOutboxAttempts, kafka.OutboxStatusDead).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = kafka.NewOutboxRepository(db).MarkFailed(context.Background(), "ob-1", "broker unavailable")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepository_CreateRejectsInvalidEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = kafka.NewOutboxRepository(db).Create(context.Background(), kafka.OutboxEvent{ID: "ob-1", Topic: "t", Payload: []byte(`{}`), Status: "queued"})

	assert.EqualError(t, err, "invalid outbox status: queued")
	assert.NoError(t, mock.ExpectationsWereMet())
}
