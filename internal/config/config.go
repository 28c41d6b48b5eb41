package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/reactive"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "reactive.json"

	// DefaultPort is the default live server port.
	DefaultPort = 8080

	// DefaultHost is the default live server host.
	DefaultHost = "localhost"

	// DefaultSnapshotDir is the default directory of the file snapshot store.
	DefaultSnapshotDir = ".snapshots"

	// DefaultMetricsPath is the default Prometheus scrape path.
	DefaultMetricsPath = "/metrics"
)

// configFileNames are the names Load looks for, in order.
var configFileNames = []string{ConfigFileName, "reactive.yaml", "reactive.yml"}

// Config represents the complete reactive.json configuration.
type Config struct {
	// Runtime configures every reactive.Runtime created by the tools.
	Runtime RuntimeConfig `json:"runtime,omitempty" yaml:"runtime,omitempty"`

	// Server contains live server configuration.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// Snapshot selects and configures the snapshot store.
	Snapshot SnapshotConfig `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`

	// Log configures structured logging.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RuntimeConfig contains reactive runtime settings.
type RuntimeConfig struct {
	// Tracking is "rebuild" (default) or "accumulate".
	Tracking string `json:"tracking,omitempty" yaml:"tracking,omitempty"`

	// MaxDepth limits nested notification cascades. 0 disables the guard.
	MaxDepth int `json:"maxDepth,omitempty" yaml:"maxDepth,omitempty"`

	// LogEffectRuns logs every effect run at Debug level.
	LogEffectRuns bool `json:"logEffectRuns,omitempty" yaml:"logEffectRuns,omitempty"`

	// LogSignalWrites logs every signal write at Debug level.
	LogSignalWrites bool `json:"logSignalWrites,omitempty" yaml:"logSignalWrites,omitempty"`
}

// ServerConfig contains live server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// ReadTimeout is the HTTP read timeout (e.g., "10s").
	ReadTimeout string `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`

	// WriteTimeout is the HTTP write timeout (e.g., "10s").
	WriteTimeout string `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`

	// PingInterval is the WebSocket keepalive interval (e.g., "30s").
	PingInterval string `json:"pingInterval,omitempty" yaml:"pingInterval,omitempty"`

	// MetricsPath is the Prometheus scrape path. "-" disables it.
	MetricsPath string `json:"metricsPath,omitempty" yaml:"metricsPath,omitempty"`
}

// SnapshotConfig contains snapshot store settings.
type SnapshotConfig struct {
	// Backend is "file" (default) or "s3".
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Dir is the directory of the file backend.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Bucket is the S3 bucket.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`

	// Prefix is the S3 key prefix (e.g., "snapshots/").
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Region is the S3 region.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint points the S3 backend at an S3-compatible service.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from the specified directory.
// It looks for reactive.json, then reactive.yaml and reactive.yml.
func Load(dir string) (*Config, error) {
	for _, name := range configFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("C141").
		WithDetail("No reactive.json or reactive.yaml found in " + dir).
		WithSuggestion("Run 'reactive config init' or create reactive.json manually")
}

// LoadFile reads configuration from the specified file path. Files ending
// in .yaml or .yml are decoded as YAML, anything else as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C141").
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path))
		}
		return nil, errors.New("C120").Wrap(err)
	}

	cfg := &Config{}
	if isYAML(path) {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("C120").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid YAML")
		}
	} else {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("C120").
				WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
				WithSuggestion("Check that the file is valid JSON")
		}
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML if the
// path ends in .yaml or .yml.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("C120").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("C120").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Runtime
	if c.Runtime.Tracking == "" {
		c.Runtime.Tracking = reactive.TrackRebuild.String()
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = "10s"
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = "10s"
	}
	if c.Server.PingInterval == "" {
		c.Server.PingInterval = "30s"
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}

	// Snapshot
	if c.Snapshot.Backend == "" {
		c.Snapshot.Backend = "file"
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = DefaultSnapshotDir
	}
	if c.Snapshot.Region == "" {
		c.Snapshot.Region = "us-east-1"
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := reactive.ParseTrackingMode(c.Runtime.Tracking); err != nil {
		return errors.New("C121").
			WithDetail(fmt.Sprintf("runtime.tracking is %q", c.Runtime.Tracking))
	}
	if c.Runtime.MaxDepth < 0 {
		return errors.New("C120").
			WithDetail("runtime.maxDepth must not be negative")
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("C120").
			WithDetail("Port must be between 0 and 65535")
	}
	for _, f := range []struct{ name, value string }{
		{"server.readTimeout", c.Server.ReadTimeout},
		{"server.writeTimeout", c.Server.WriteTimeout},
		{"server.pingInterval", c.Server.PingInterval},
	} {
		if d, err := time.ParseDuration(f.value); err != nil || d < 0 {
			return errors.New("C120").
				WithDetail(fmt.Sprintf("%s is %q, want a duration like \"10s\"", f.name, f.value))
		}
	}
	if p := c.Server.MetricsPath; p != "-" && !strings.HasPrefix(p, "/") {
		return errors.New("C120").
			WithDetail("server.metricsPath must start with / or be \"-\"")
	}

	switch c.Snapshot.Backend {
	case "file":
	case "s3":
		if c.Snapshot.Bucket == "" {
			return errors.New("C120").
				WithDetail("snapshot.bucket is required for the s3 backend")
		}
	default:
		return errors.New("C120").
			WithDetail(fmt.Sprintf("snapshot.backend is %q, want \"file\" or \"s3\"", c.Snapshot.Backend))
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return errors.New("C120").Wrap(err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("C120").
			WithDetail(fmt.Sprintf("log.format is %q, want \"text\" or \"json\"", c.Log.Format))
	}
	return nil
}

// RuntimeOptions converts the runtime section into reactive.RuntimeOptions.
// The config must be valid.
func (c *Config) RuntimeOptions() []reactive.RuntimeOption {
	mode, _ := reactive.ParseTrackingMode(c.Runtime.Tracking)
	return []reactive.RuntimeOption{
		reactive.WithTracking(mode),
		reactive.WithMaxDepth(c.Runtime.MaxDepth),
		reactive.WithDebug(reactive.DebugConfig{
			LogEffectRuns:   c.Runtime.LogEffectRuns,
			LogSignalWrites: c.Runtime.LogSignalWrites,
		}),
	}
}

// Address returns the host:port the live server listens on.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// Durations returns the parsed server timeouts. Invalid values fall back
// to the defaults.
func (c *Config) Durations() (read, write, ping time.Duration) {
	return duration(c.Server.ReadTimeout, 10*time.Second),
		duration(c.Server.WriteTimeout, 10*time.Second),
		duration(c.Server.PingInterval, 30*time.Second)
}

func duration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}

// SnapshotPath returns the absolute path to the file snapshot directory.
func (c *Config) SnapshotPath() string {
	if filepath.IsAbs(c.Snapshot.Dir) {
		return c.Snapshot.Dir
	}
	return filepath.Join(c.Dir(), c.Snapshot.Dir)
}

// NewLogger builds a slog.Logger writing to w according to the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log.level %q: %w", s, err)
	}
	return level, nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range configFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("C141").
				WithDetail("No reactive.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working directory
// or the nearest parent that has one.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return nil, err
	}

	return Load(root)
}
