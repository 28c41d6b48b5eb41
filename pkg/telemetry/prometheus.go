package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/reactive/pkg/reactive"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reactive").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for effect duration.
	// Default: buckets from 10µs to ~1s.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "reactive",
		Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Prometheus is an Observer that records runtime activity as Prometheus
// metrics.
//
// Metrics collected:
//   - reactive_signal_writes_total: Counter of writes by signal name and whether the value changed
//   - reactive_effect_runs_total: Counter of effect runs by effect name and kind
//   - reactive_effect_panics_total: Counter of effect runs that panicked
//   - reactive_effect_duration_seconds: Histogram of effect run duration
//   - reactive_active_effects: Gauge of effects created and not yet disposed
//
// Metrics are safe to share between runtimes.
type Prometheus struct {
	signalWrites   *prometheus.CounterVec
	effectRuns     *prometheus.CounterVec
	effectPanics   *prometheus.CounterVec
	effectDuration *prometheus.HistogramVec
	activeEffects  prometheus.Gauge
}

// NewPrometheus registers the metrics on the configured registry and returns
// the observer. It panics if the metrics are already registered there, like
// promauto does.
//
// Example:
//
//	rt := reactive.NewRuntime(reactive.WithObserver(
//	    telemetry.NewPrometheus(telemetry.WithNamespace("myapp")),
//	))
//	http.Handle("/metrics", promhttp.Handler())
func NewPrometheus(opts ...MetricsOption) *Prometheus {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Prometheus{
		signalWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "signal_writes_total",
			Help:        "Total number of signal writes",
			ConstLabels: config.ConstLabels,
		}, []string{"name", "changed"}),

		effectRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of effect and memo runs",
			ConstLabels: config.ConstLabels,
		}, []string{"name", "kind"}),

		effectPanics: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_panics_total",
			Help:        "Total number of effect runs that panicked",
			ConstLabels: config.ConstLabels,
		}, []string{"name", "kind"}),

		effectDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_duration_seconds",
			Help:        "Effect run duration in seconds, including nested cascades",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"kind"}),

		activeEffects: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_effects",
			Help:        "Number of effects created and not yet disposed",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (p *Prometheus) SignalWritten(s reactive.SignalInfo, changed bool) {
	p.signalWrites.WithLabelValues(label(s.Name), strconv.FormatBool(changed)).Inc()
}

func (p *Prometheus) EffectStarted(e reactive.EffectInfo) {
	if e.Run == 1 {
		p.activeEffects.Inc()
	}
	p.effectRuns.WithLabelValues(label(e.Name), e.Kind.String()).Inc()
}

func (p *Prometheus) EffectFinished(e reactive.EffectInfo, elapsed time.Duration, panicked bool) {
	p.effectDuration.WithLabelValues(e.Kind.String()).Observe(elapsed.Seconds())
	if panicked {
		p.effectPanics.WithLabelValues(label(e.Name), e.Kind.String()).Inc()
	}
}

func (p *Prometheus) EffectDisposed(reactive.EffectInfo) {
	p.activeEffects.Dec()
}
