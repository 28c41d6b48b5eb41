// Package telemetry provides reactive.Observer implementations that report
// runtime activity to structured logs, Prometheus and OpenTelemetry.
//
// Observers are attached when the runtime is created:
//
//	reg := prometheus.NewRegistry()
//	rt := reactive.NewRuntime(
//	    reactive.WithObserver(telemetry.Multi(
//	        telemetry.NewLogger(slog.Default()),
//	        telemetry.NewPrometheus(telemetry.WithRegistry(reg)),
//	    )),
//	)
//
// Unnamed signals and effects are reported under the label "unnamed".
// Give long-lived primitives debug names with reactive.WithName and
// reactive.WithEffectName to keep metric cardinality bounded.
package telemetry

const unnamed = "unnamed"

func label(name string) string {
	if name == "" {
		return unnamed
	}
	return name
}
