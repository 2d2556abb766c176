package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/taskhistory/internal/adapters/telemetry"
	"go.trai.ch/taskhistory/internal/core/ports"
	"go.trai.ch/taskhistory/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func setupRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, tp
}

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, a := range attrs {
		m[a.Key] = a.Value
	}
	return m
}

func TestOTelTracer_Start(t *testing.T) {
	t.Parallel()

	sr, tp := setupRecorder(t)
	tracer := telemetry.NewOTelTracerFrom(tp, "test")

	_, span := tracer.Start(context.Background(), "history.get", ports.WithAttribute("task.path", ":app:build"))
	span.SetAttribute("history.size", 2)
	span.SetAttribute("history.match", true)
	span.SetAttribute("ratio", 0.5)
	span.SetAttribute("count", int64(7))
	span.SetAttribute("paths", []string{"a", "b"})
	span.SetAttribute("other", struct{ X int }{X: 1})
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "history.get", spans[0].Name())

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, ":app:build", attrs["task.path"].AsString())
	assert.Equal(t, int64(2), attrs["history.size"].AsInt64())
	assert.True(t, attrs["history.match"].AsBool())
	assert.InDelta(t, 0.5, attrs["ratio"].AsFloat64(), 0)
	assert.Equal(t, int64(7), attrs["count"].AsInt64())
	assert.Equal(t, []string{"a", "b"}, attrs["paths"].AsStringSlice())
	assert.Equal(t, "{1}", attrs["other"].AsString())
}

func TestOTelTracer_RecordError(t *testing.T) {
	t.Parallel()

	sr, tp := setupRecorder(t)
	tracer := telemetry.NewOTelTracerFrom(tp, "test")

	_, span := tracer.Start(context.Background(), "history.finalize")
	span.RecordError(errors.New("disk full"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "disk full", spans[0].Status().Description)
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestOTelTracer_NestedSpans(t *testing.T) {
	t.Parallel()

	sr, tp := setupRecorder(t)
	tracer := telemetry.NewOTelTracerFrom(tp, "test")

	ctx, parent := tracer.Start(context.Background(), "parent")
	_, child := tracer.Start(ctx, "child")
	child.End()
	parent.End()

	spans := sr.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "child", spans[0].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())
}

func TestNoOpTracer(t *testing.T) {
	t.Parallel()

	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	newCtx, span := tracer.Start(ctx, "test-span", ports.WithAttribute("k", "v"))
	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttribute("key", "value")
	span.RecordError(errors.New("test error"))
	span.End()
}

func TestBridge_OnEnd(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any()).Do(func(msg string) {
		assert.Contains(t, msg, "span history.get finished in")
		assert.Contains(t, msg, "task.path=:app:build")
	})

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(logger)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := telemetry.NewOTelTracerFrom(tp, "test").Start(
		context.Background(), "history.get", ports.WithAttribute("task.path", ":app:build"))
	span.End()
}

func TestBridge_OnEndWithError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Warn(gomock.Any()).Do(func(msg string) {
		assert.Contains(t, msg, "span history.finalize finished in")
		assert.Contains(t, msg, ": disk full")
	})

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(logger)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := telemetry.NewOTelTracerFrom(tp, "test").Start(context.Background(), "history.finalize")
	span.RecordError(errors.New("disk full"))
	span.End()
}

func TestBridge_NilLogger(t *testing.T) {
	t.Parallel()

	bridge := telemetry.NewBridge(nil)
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("test").Start(context.Background(), "span")
	span.End()

	require.NoError(t, bridge.ForceFlush(context.Background()))
	require.NoError(t, bridge.Shutdown(context.Background()))
}
