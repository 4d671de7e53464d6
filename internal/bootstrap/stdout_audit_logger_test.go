package bootstrap_test

import (
	"context"
	"testing"

	"go-payroll/internal/bootstrap"
	"go-payroll/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestStdoutAuditLogger_Log(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	auditLogger := bootstrap.NewStdoutAuditLogger(zap.New(core))

	ctx := contextutil.WithRequestID(context.Background(), "rid-9")
	auditLogger.Log(ctx, bootstrap.AuditLog{
		Action:  "WEEKLY_PERIODS_ENSURED",
		Message: "weekly payroll periods created",
		Meta:    map[string]any{"created": 2},
	})

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "WEEKLY_PERIODS_ENSURED", fields["action"])
	assert.Equal(t, "rid-9", fields["request_id"])
}
