package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	log := zap.NewExample()
	ctx := WithContext(context.Background(), log)
	assert.Same(t, log, FromContext(ctx))
}

func TestFromContextOr(t *testing.T) {
	fallback := zap.NewExample()
	assert.Same(t, fallback, FromContextOr(context.Background(), fallback))

	log := zap.NewExample()
	assert.Same(t, log, FromContextOr(WithContext(context.Background(), log), fallback))
}

func TestWithRequestIDAndActor(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx, _ := WithRequestID(context.Background(), base, "req-123")
	ctx, enriched := WithActor(ctx, FromContext(ctx), "user-7", "MANAGER")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	assert.Equal(t, "user-7", GetActorID(ctx))
	assert.Same(t, enriched, FromContext(ctx))

	L(ctx).Info("transaction approved")
	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "req-123", fields["request_id"])
	assert.Equal(t, "user-7", fields["actor_id"])
	assert.Equal(t, "MANAGER", fields["actor_role"])
}

func TestContextValues_Missing(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetActorID(ctx))
	assert.Empty(t, GetTraceID(ctx))
}

func TestWithTraceContext(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithTraceContext(context.Background(), base).Info("no span")
	WithTraceContext(spanContext(t), base).Info("with span")

	entries := recorded.All()
	require.Len(t, entries, 2)
	assert.NotContains(t, entries[0].ContextMap(), "trace_id")
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entries[1].ContextMap()["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entries[1].ContextMap()["span_id"])
}

func TestContextLogger_Levels(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	ctx := WithContext(spanContext(t), zap.New(core))

	cl := L(ctx).With(zap.String("part_number", "BOLT-M8"))
	cl.Debug("d")
	cl.Info("i")
	cl.Warn("w")
	cl.Error("e")

	entries := recorded.All()
	require.Len(t, entries, 4)
	levels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, entry := range entries {
		assert.Equal(t, levels[i], entry.Level)
		assert.Equal(t, "BOLT-M8", entry.ContextMap()["part_number"])
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry.ContextMap()["trace_id"])
	}
}

func TestWithLogger_OverridesContextLogger(t *testing.T) {
	ctxCore, ctxRecorded := observer.New(zapcore.InfoLevel)
	explicitCore, explicitRecorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(ctxCore))

	WithLogger(ctx, zap.New(explicitCore)).Info("explicit")

	assert.Equal(t, 0, ctxRecorded.Len())
	assert.Equal(t, 1, explicitRecorded.Len())
}

func TestContextLogger_NilLogger(t *testing.T) {
	cl := WithLogger(context.Background(), nil)
	assert.NotPanics(t, func() {
		cl.Info("dropped")
		cl.With(zap.Int("n", 1)).Warn("dropped")
	})
}
