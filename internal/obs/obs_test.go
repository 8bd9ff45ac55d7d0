package obs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetupOTel_Disabled(t *testing.T) {
	o, err := SetupOTel(context.Background(), OTelConfig{})
	require.NoError(t, err)
	require.Nil(t, o.TracerProvider)
	require.NoError(t, o.Shutdown(context.Background()))
}

func TestWithTrace(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	WithTrace(context.Background(), log).Info("no_span")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	WithTrace(ctx, log).Info("with_span")
	span.End()

	entries := logs.All()
	require.Len(t, entries, 2)
	require.NotContains(t, entries[0].ContextMap(), "trace_id")
	require.Equal(t, span.SpanContext().TraceID().String(), entries[1].ContextMap()["trace_id"])

	require.Nil(t, WithTrace(ctx, nil))
}
