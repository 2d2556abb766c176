package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/taskhistory/internal/core/ports"
)

// Bridge implements sdktrace.SpanProcessor to report finished spans to a Logger.
type Bridge struct {
	logger ports.Logger
}

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart does nothing.
func (b *Bridge) OnStart(_ context.Context, _ sdktrace.ReadWriteSpan) {}

// OnEnd logs the span name, its duration and its attributes.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || !s.SpanContext().IsValid() {
		return
	}

	msg := fmt.Sprintf("span %s finished in %s", s.Name(), s.EndTime().Sub(s.StartTime()))
	for _, attr := range s.Attributes() {
		msg += fmt.Sprintf(" %s=%s", attr.Key, attr.Value.Emit())
	}

	if s.Status().Code == codes.Error {
		b.logger.Warn(msg + ": " + s.Status().Description)
		return
	}
	b.logger.Info(msg)
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

// InstallProvider registers a global tracer provider that reports finished
// spans to logger. The returned function shuts the provider down.
func InstallProvider(logger ports.Logger) func(context.Context) error {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(NewBridge(logger)))
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}
