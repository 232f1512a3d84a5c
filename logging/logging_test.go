package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTemporalLogger_ForwardsKeyvals(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewTemporalLogger(zap.New(core).Sugar())

	l.Debug("debugging", "step", 1)
	l.Info("checkout started", "sessionID", "S1")
	l.Warn("ignoring event", "kind", "redirecting")
	l.Error("delete failed", "orderID", int64(7))

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "checkout started", entries[1].Message)
	assert.Equal(t, "S1", entries[1].ContextMap()["sessionID"])
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, int64(7), entries[3].ContextMap()["orderID"])
}

func TestTemporalLogger_With(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewTemporalLogger(zap.New(core).Sugar()).With("workflowID", "checkout-S1")

	l.Info("state changed", "phase", "AWAITING_WIDGET")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "checkout-S1", fields["workflowID"])
	assert.Equal(t, "AWAITING_WIDGET", fields["phase"])
}

func TestTemporalLogger_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewTemporalLogger(zap.New(core).Sugar())

	l.Debug("hidden")
	assert.Zero(t, logs.Len())

	assert.NotNil(t, NewLogger())
}
