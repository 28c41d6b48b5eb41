package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if cfg.Runtime.Tracking != "rebuild" {
		t.Errorf("Runtime.Tracking = %q, want rebuild", cfg.Runtime.Tracking)
	}
	if cfg.Snapshot.Backend != "file" || cfg.Snapshot.Dir != DefaultSnapshotDir {
		t.Errorf("unexpected snapshot defaults %+v", cfg.Snapshot)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if !errors.HasCode(err, "C141") {
		t.Errorf("Expected C141 for missing config, got %v", err)
	}

	configJSON := `{
  "runtime": {"tracking": "accumulate", "maxDepth": 32},
  "server": {"port": 9090, "pingInterval": "5s"},
  "snapshot": {"backend": "s3", "bucket": "state", "prefix": "snaps/"}
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Runtime.Tracking != "accumulate" || cfg.Runtime.MaxDepth != 32 {
		t.Errorf("unexpected runtime %+v", cfg.Runtime)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host should default, got %q", cfg.Server.Host)
	}
	if cfg.Snapshot.Bucket != "state" || cfg.Snapshot.Prefix != "snaps/" {
		t.Errorf("unexpected snapshot %+v", cfg.Snapshot)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
	_, _, ping := cfg.Durations()
	if ping != 5*time.Second {
		t.Errorf("ping interval = %v, want 5s", ping)
	}
}

func TestLoadYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configYAML := `runtime:
  tracking: rebuild
  logEffectRuns: true
server:
  host: 0.0.0.0
  port: 7070
log:
  level: debug
  format: json
`
	if err := os.WriteFile(filepath.Join(tmpDir, "reactive.yaml"), []byte(configYAML), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Address() != "0.0.0.0:7070" {
		t.Errorf("Address() = %q", cfg.Address())
	}
	if !cfg.Runtime.LogEffectRuns {
		t.Error("Runtime.LogEffectRuns should be true")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log %+v", cfg.Log)
	}
	if !Exists(tmpDir) {
		t.Error("Exists should find reactive.yaml")
	}
}

func TestLoadInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(path, []byte("{invalid"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	if !errors.HasCode(err, "C120") {
		t.Errorf("Expected C120 for invalid JSON, got %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{ConfigFileName, "reactive.yml"} {
		cfg := New()
		cfg.Server.Port = 4000
		cfg.Runtime.MaxDepth = 10

		path := filepath.Join(tmpDir, name)
		if err := cfg.SaveTo(path); err != nil {
			t.Fatalf("SaveTo(%s) error: %v", name, err)
		}
		if cfg.Path() != path {
			t.Errorf("Path() = %q, want %q", cfg.Path(), path)
		}

		loaded, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s) error: %v", name, err)
		}
		if loaded.Server.Port != 4000 || loaded.Runtime.MaxDepth != 10 {
			t.Errorf("%s: round trip lost values: %+v", name, loaded)
		}
	}

	if err := (&Config{}).Save(); err == nil {
		t.Error("Save without a path should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		code   string
	}{
		{"tracking", func(c *Config) { c.Runtime.Tracking = "lazy" }, "C121"},
		{"max depth", func(c *Config) { c.Runtime.MaxDepth = -1 }, "C120"},
		{"port", func(c *Config) { c.Server.Port = 70000 }, "C120"},
		{"duration", func(c *Config) { c.Server.ReadTimeout = "soon" }, "C120"},
		{"metrics path", func(c *Config) { c.Server.MetricsPath = "metrics" }, "C120"},
		{"backend", func(c *Config) { c.Snapshot.Backend = "ftp" }, "C120"},
		{"s3 bucket", func(c *Config) { c.Snapshot.Backend = "s3" }, "C120"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "C120"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "C120"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.HasCode(err, tt.code) {
				t.Errorf("Validate() = %v, want code %s", err, tt.code)
			}
		})
	}

	cfg := New()
	cfg.Server.MetricsPath = "-"
	if err := cfg.Validate(); err != nil {
		t.Errorf("\"-\" should disable metrics: %v", err)
	}
}

func TestValidateReportsFirstInvalidDuration(t *testing.T) {
	for i := 0; i < 20; i++ {
		cfg := New()
		cfg.Server.ReadTimeout = "soon"
		cfg.Server.WriteTimeout = "later"
		cfg.Server.PingInterval = "never"

		re, ok := cfg.Validate().(*errors.ReactiveError)
		if !ok {
			t.Fatalf("Validate() should return a *ReactiveError")
		}
		if !strings.Contains(re.Detail, "server.readTimeout") {
			t.Fatalf("run %d: expected readTimeout to be reported first, got %q", i, re.Detail)
		}
	}
}

func TestRuntimeOptions(t *testing.T) {
	cfg := New()
	cfg.Runtime.Tracking = "accumulate"
	cfg.Runtime.MaxDepth = 3

	rt := reactive.NewRuntime(cfg.RuntimeOptions()...)
	if rt.TrackingMode() != reactive.TrackAccumulate {
		t.Errorf("TrackingMode() = %v, want accumulate", rt.TrackingMode())
	}

	a := reactive.NewSignal(rt, 0)
	b := reactive.NewSignal(rt, 0)
	reactive.CreateEffect(rt, func() { b.Set(a.Get() + 1) })
	err := reactive.Catch(func() {
		reactive.CreateEffect(rt, func() { a.Set(b.Get() + 1) })
	})
	if !errors.HasCode(err, "R001") {
		t.Errorf("expected the configured depth guard to trip, got %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"key":"value"`) {
		t.Errorf("expected JSON record, got %s", out)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	if err := New().SaveTo(filepath.Join(root, ConfigFileName)); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	found, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot error: %v", err)
	}
	if found != root {
		t.Errorf("FindProjectRoot = %q, want %q", found, root)
	}
}

func TestSnapshotPath(t *testing.T) {
	cfg := New()
	cfg.configPath = filepath.Join("/srv/app", ConfigFileName)
	if got := cfg.SnapshotPath(); got != filepath.Join("/srv/app", DefaultSnapshotDir) {
		t.Errorf("SnapshotPath() = %q", got)
	}
	cfg.Snapshot.Dir = "/var/snapshots"
	if got := cfg.SnapshotPath(); got != "/var/snapshots" {
		t.Errorf("SnapshotPath() = %q", got)
	}
}
