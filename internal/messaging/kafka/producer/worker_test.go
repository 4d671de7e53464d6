package producer_test

import (
	"context"
	"errors"
	"testing"

	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/messaging/kafka/mock"
	"go-payroll/internal/messaging/kafka/producer"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

type fakeWriter struct {
	writeFn  func(msgs ...kafkago.Message) error
	messages []kafkago.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.messages = append(f.messages, msgs...)
	if f.writeFn != nil {
		return f.writeFn(msgs...)
	}
	return nil
}

func TestProcessPendingEvents(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes and marks sent", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockOutboxRepository(ctrl)
		writer := &fakeWriter{}

		event := kafka.OutboxEvent{
			ID:            "ob-1",
			RequestID:     "rid-1",
			AggregateType: "payroll_entry",
			AggregateID:   "entry-1",
			EventType:     "payroll.payslip.requested",
			Topic:         "hr.payroll.payslip.requested.v1",
			Payload:       []byte(`{"entry_id":"entry-1"}`),
		}
		repo.EXPECT().ListPending(ctx, 50).Return([]kafka.OutboxEvent{event}, nil)
		repo.EXPECT().MarkSent(ctx, "ob-1").Return(nil)

		err := producer.ProcessPendingEvents(ctx, repo, writer, nil, zap.NewNop())

		require.NoError(t, err)
		require.Len(t, writer.messages, 1)
		assert.Equal(t, "hr.payroll.payslip.requested.v1", writer.messages[0].Topic)
		assert.Equal(t, []byte("entry-1"), writer.messages[0].Key)
		assert.Contains(t, writer.messages[0].Headers, kafkago.Header{Key: "request_id", Value: []byte("rid-1")})
	})

	t.Run("publish failure marks failed and continues", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockOutboxRepository(ctrl)
		writer := &fakeWriter{writeFn: func(msgs ...kafkago.Message) error {
			if string(msgs[0].Key) == "bad" {
				return errors.New("broker down")
			}
			return nil
		}}

		repo.EXPECT().ListPending(ctx, 50).Return([]kafka.OutboxEvent{
			{ID: "ob-1", AggregateID: "bad", Topic: "t", Payload: []byte("{}")},
			{ID: "ob-2", AggregateID: "good", Topic: "t", Payload: []byte("{}")},
		}, nil)
		repo.EXPECT().MarkFailed(ctx, "ob-1", "broker down").Return(nil)
		repo.EXPECT().MarkSent(ctx, "ob-2").Return(nil)

		err := producer.ProcessPendingEvents(ctx, repo, writer, nil, zap.NewNop())

		require.NoError(t, err)
		assert.Len(t, writer.messages, 2)
	})

	t.Run("list error is returned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mock.NewMockOutboxRepository(ctrl)
		repo.EXPECT().ListPending(ctx, 50).Return(nil, errors.New("db down"))

		err := producer.ProcessPendingEvents(ctx, repo, &fakeWriter{}, nil, zap.NewNop())

		assert.EqualError(t, err, "db down")
	})
}
