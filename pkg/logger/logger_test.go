package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFilterDatum(t *testing.T) {
	fields := []string{"email", "password"}

	got := FilterDatum(fields, "xxx", "name=egg;email=eggmin@eggsample.com;password=eggcellent;date_of_birth=12/12/1986;", ";")
	assert.Equal(t, "name=egg;email=xxx;password=xxx;date_of_birth=12/12/1986;", got)

	got = FilterDatum(fields, "xxx", "name=bob|email=bob@dylan.com|password=bobbycool|", "|")
	assert.Equal(t, "name=bob|email=xxx|password=xxx|", got)

	assert.Equal(t, "email=a;", FilterDatum(nil, "xxx", "email=a;", ";"))
	assert.Equal(t, "password=$1;", FilterDatum(fields, "$1", "password=secret;", ";"))
}

func TestRedactingCore(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(NewRedactingCore(core, PIIFields)).With(zap.String("email", "bob@dylan.com"))

	log.Info("login attempt phone=555-1234;", zap.String("password", "hunter2"), zap.String("user_id", "42"))
	log.Debug("dropped")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "login attempt phone=***;", entries[0].Message)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "***", ctx["email"])
	assert.Equal(t, "***", ctx["password"])
	assert.Equal(t, "42", ctx["user_id"])
}

func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithRequestID(context.Background(), base).Info("plain")
	ctx := ContextWithRequestID(context.Background(), "req-1")
	assert.Equal(t, "req-1", RequestID(ctx))
	WithRequestID(ctx, base).Info("tagged")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.NotContains(t, entries[0].ContextMap(), "request_id")
	assert.Equal(t, "req-1", entries[1].ContextMap()["request_id"])
}

func TestNewFallsBackToInfo(t *testing.T) {
	log, err := New(Config{Level: "chatty", Encoding: "console", RedactPII: true})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
}
