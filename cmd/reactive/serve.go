package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/vango-dev/reactive/internal/config"
	"github.com/vango-dev/reactive/pkg/live"
	"github.com/vango-dev/reactive/pkg/reactive"
	"github.com/vango-dev/reactive/pkg/snapshot"
	"github.com/vango-dev/reactive/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		port    int
		host    string
		tracing bool
		restore string
		save    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live counter over HTTP and WebSocket",
		Long: `Serve a reactive counter. Every WebSocket client gets a watcher
effect that pushes the counter state whenever it changes.

Routes:
  GET  /healthz      liveness
  GET  /state        counter state and runtime stats
  POST /count/{op}   inc, dec or reset (optional ?value=n)
  PUT  /count        {"value": n}
  GET  /ws           WebSocket state stream
  GET  /metrics      Prometheus metrics

Examples:
  reactive serve
  reactive serve --port=9000 --host=0.0.0.0
  reactive serve --restore=last --save=last`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Apply command-line overrides
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, serveOptions{
				tracing: tracing,
				restore: restore,
				save:    save,
			})
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().BoolVar(&tracing, "tracing", false, "Emit an OpenTelemetry span per effect run via the global tracer provider")
	cmd.Flags().StringVar(&restore, "restore", "", "Snapshot key to restore the counter from on start")
	cmd.Flags().StringVar(&save, "save", "", "Snapshot key to save the counter to on shutdown")

	return cmd
}

type serveOptions struct {
	tracing bool
	restore string
	save    string
}

func runServe(ctx context.Context, cfg *config.Config, opts serveOptions) error {
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	observers := []reactive.Observer{
		telemetry.NewLogger(logger),
		telemetry.NewPrometheus(telemetry.WithRegistry(reg)),
	}
	if opts.tracing {
		observers = append(observers, telemetry.NewTracer())
	}

	rtOpts := append(cfg.RuntimeOptions(),
		reactive.WithLogger(logger),
		reactive.WithObserver(telemetry.Multi(observers...)),
	)
	host := live.NewHost(reactive.NewRuntime(rtOpts...), logger)
	defer host.Stop()

	var (
		counter *live.Counter
		state   *snapshot.Registry
	)
	err := host.Do(ctx, func() {
		counter = live.NewCounter(host.Runtime())
		state = snapshot.NewRegistry()
		if err := snapshot.Register(state, "count", counter.Count); err != nil {
			panic(err)
		}
	})
	if err != nil {
		return err
	}

	var store snapshot.Store
	if opts.restore != "" || opts.save != "" {
		if store, err = openStore(cfg); err != nil {
			return err
		}
	}
	if opts.restore != "" {
		if err := restoreState(ctx, host, state, store, opts.restore); err != nil {
			return err
		}
		info("restored snapshot %q", opts.restore)
	}

	read, write, ping := cfg.Durations()
	srv := live.NewServer(host, counter, live.ServerConfig{
		ReadTimeout:  read,
		WriteTimeout: write,
		PingInterval: ping,
		MetricsPath:  cfg.Server.MetricsPath,
		Gatherer:     reg,
		Logger:       logger,
	})

	success("Serving on http://%s", cfg.Address())
	if err := srv.ListenAndServe(ctx, cfg.Address()); err != nil {
		return err
	}

	if opts.save != "" {
		if err := saveState(context.Background(), host, state, store, opts.save); err != nil {
			return err
		}
		success("saved snapshot %q", opts.save)
	}
	return nil
}

// restoreState loads key from store and writes it through the registry on
// the host goroutine.
func restoreState(ctx context.Context, host *live.Host, reg *snapshot.Registry, store snapshot.Store, key string) error {
	snap, err := store.Load(ctx, key)
	if err != nil {
		return err
	}
	var restoreErr error
	if err := host.Do(ctx, func() { restoreErr = reg.Restore(snap) }); err != nil {
		return err
	}
	return restoreErr
}

// saveState captures the registry on the host goroutine and saves it.
func saveState(ctx context.Context, host *live.Host, reg *snapshot.Registry, store snapshot.Store, key string) error {
	var (
		snap       snapshot.Snapshot
		captureErr error
	)
	if err := host.Do(ctx, func() { snap, captureErr = reg.Capture() }); err != nil {
		return err
	}
	if captureErr != nil {
		return captureErr
	}
	if err := store.Save(ctx, key, snap); err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}
