package telemetry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/vango-dev/reactive/pkg/reactive"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for reactive runtimes.
const defaultTracerName = "reactive"

// TracerConfig configures the OpenTelemetry observer.
type TracerConfig struct {
	// TracerName is the name of the tracer (default: "reactive").
	TracerName string

	// Provider is the tracer provider.
	// Default: the global provider from otel.GetTracerProvider().
	Provider trace.TracerProvider

	// Parent is the context root spans are started from.
	// Default: context.Background()
	Parent context.Context

	// RecordWrites adds a span event for every signal write made while an
	// effect span is open. Enabled by default.
	RecordWrites bool
}

// TracerOption configures the OpenTelemetry observer.
type TracerOption func(*TracerConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracerOption {
	return func(c *TracerConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracerOption {
	return func(c *TracerConfig) {
		c.Provider = tp
	}
}

// WithParent sets the context root spans are started from.
func WithParent(ctx context.Context) TracerOption {
	return func(c *TracerConfig) {
		c.Parent = ctx
	}
}

// WithRecordWrites enables/disables span events for signal writes.
func WithRecordWrites(record bool) TracerOption {
	return func(c *TracerConfig) {
		c.RecordWrites = record
	}
}

func defaultTracerConfig() TracerConfig {
	return TracerConfig{
		TracerName:   defaultTracerName,
		Parent:       context.Background(),
		RecordWrites: true,
	}
}

// Tracer is an Observer that opens one span per effect run. Runs triggered
// by a write inside another run become child spans, so a trace shows the
// whole synchronous cascade. A panicked run ends its span with an error
// status.
//
// A Tracer keeps a span stack and must observe a single Runtime.
type Tracer struct {
	tracer       trace.Tracer
	parent       context.Context
	recordWrites bool

	stack []openSpan
}

type openSpan struct {
	ctx  context.Context
	span trace.Span
}

// NewTracer creates a Tracer.
//
// Example:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	rt := reactive.NewRuntime(reactive.WithObserver(
//	    telemetry.NewTracer(telemetry.WithTracerProvider(tp)),
//	))
func NewTracer(opts ...TracerOption) *Tracer {
	config := defaultTracerConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Parent == nil {
		config.Parent = context.Background()
	}

	var tracer trace.Tracer
	if config.Provider != nil {
		tracer = config.Provider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}

	return &Tracer{
		tracer:       tracer,
		parent:       config.Parent,
		recordWrites: config.RecordWrites,
	}
}

func (t *Tracer) current() context.Context {
	if n := len(t.stack); n > 0 {
		return t.stack[n-1].ctx
	}
	return t.parent
}

func (t *Tracer) SignalWritten(s reactive.SignalInfo, changed bool) {
	if !t.recordWrites || len(t.stack) == 0 {
		return
	}
	t.stack[len(t.stack)-1].span.AddEvent("signal.write", trace.WithAttributes(
		attribute.Int64("reactive.signal_id", int64(s.ID)),
		attribute.String("reactive.signal_name", label(s.Name)),
		attribute.Bool("reactive.changed", changed),
	))
}

func (t *Tracer) EffectStarted(e reactive.EffectInfo) {
	ctx, span := t.tracer.Start(t.current(), spanName(e),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int64("reactive.effect_id", int64(e.ID)),
			attribute.String("reactive.effect_name", label(e.Name)),
			attribute.String("reactive.kind", e.Kind.String()),
			attribute.Int64("reactive.run", int64(e.Run)),
			attribute.Int("reactive.depth", e.Depth),
		),
		trace.WithTimestamp(time.Now()),
	)
	t.stack = append(t.stack, openSpan{ctx: ctx, span: span})
}

func (t *Tracer) EffectFinished(e reactive.EffectInfo, elapsed time.Duration, panicked bool) {
	n := len(t.stack)
	if n == 0 {
		return
	}
	top := t.stack[n-1]
	t.stack = t.stack[:n-1]

	if panicked {
		top.span.SetStatus(codes.Error, "effect panicked")
	} else {
		top.span.SetStatus(codes.Ok, "")
	}
	top.span.End()
}

func (t *Tracer) EffectDisposed(e reactive.EffectInfo) {
	trace.SpanFromContext(t.current()).AddEvent("effect.disposed", trace.WithAttributes(
		attribute.Int64("reactive.effect_id", int64(e.ID)),
		attribute.String("reactive.effect_name", label(e.Name)),
	))
}

// spanName creates a span name like "reactive.memo doubled" or
// "reactive.effect #3".
func spanName(e reactive.EffectInfo) string {
	if e.Name != "" {
		return fmt.Sprintf("reactive.%s %s", e.Kind, e.Name)
	}
	return "reactive." + e.Kind.String() + " #" + strconv.FormatUint(uint64(e.ID), 10)
}
