package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Defaults reproduce the daemon's historical constants.
const (
	DefaultWatchRoot   = "/home"
	DefaultAppName     = "morph-bang"
	DefaultLockTTL     = "2s"
	DefaultLogDir      = "/var/log/morph-bang"
	DefaultToolTimeout = "10m"
	DefaultDPI         = 300
	DefaultPDFEngine   = "xelatex"
	DefaultJournalPath = "/var/lib/morph-bang/journal.db"
)

// Config represents the main configuration for morph-bang.
type Config struct {
	WatchRoot  string           `toml:"watch_root"`
	AppName    string           `toml:"app_name"` // names the per-user version root
	LockTTL    string           `toml:"lock_ttl"` // Go duration string
	LogDir     string           `toml:"log_dir"`
	Feed       FeedConfig       `toml:"feed"`
	Classifier ClassifierConfig `toml:"classifier"`
	Tools      ToolsConfig      `toml:"tools"`
	Journal    JournalConfig    `toml:"journal"`
	Metrics    MetricsConfig    `toml:"metrics"`
}

// FeedConfig selects the source of rename events.
type FeedConfig struct {
	Type   string   `toml:"type"`   // "inotifywait" (default) or "fsnotify"
	Ignore []string `toml:"ignore"` // fsnotify only; inotifywait always excludes dotfiles
}

// ClassifierConfig selects the content sniffer.
type ClassifierConfig struct {
	Sniffer string `toml:"sniffer"` // "file" (default) or "native"
}

// ToolsConfig configures the external tool invocations.
type ToolsConfig struct {
	Timeout    string            `toml:"timeout"`    // per invocation
	Rasterizer string            `toml:"rasterizer"` // "vips" (default) or "native"
	PDFEngine  string            `toml:"pdf_engine"`
	DPI        int               `toml:"dpi"`
	Binaries   map[string]string `toml:"binaries,omitempty"` // tool name -> executable path
}

// JournalConfig represents configuration for the event journal.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type JournalConfig struct {
	Type string `toml:"type"`           // "sqlite", "memory" or "none"
	Path string `toml:"path,omitempty"` // only used for type=sqlite
}

// MetricsConfig configures the metrics endpoint. An empty Listen disables it.
type MetricsConfig struct {
	Listen string `toml:"listen"`
}

// NewConfig creates a new Config populated with defaults.
func NewConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every unset field with its default.
func ApplyDefaults(cfg *Config) {
	if cfg.WatchRoot == "" {
		cfg.WatchRoot = DefaultWatchRoot
	}
	if cfg.AppName == "" {
		cfg.AppName = DefaultAppName
	}
	if cfg.LockTTL == "" {
		cfg.LockTTL = DefaultLockTTL
	}
	if cfg.LogDir == "" {
		cfg.LogDir = DefaultLogDir
	}
	if cfg.Feed.Type == "" {
		cfg.Feed.Type = "inotifywait"
	}
	if cfg.Feed.Ignore == nil {
		cfg.Feed.Ignore = []string{".*"}
	}
	if cfg.Classifier.Sniffer == "" {
		cfg.Classifier.Sniffer = "file"
	}
	if cfg.Tools.Timeout == "" {
		cfg.Tools.Timeout = DefaultToolTimeout
	}
	if cfg.Tools.Rasterizer == "" {
		cfg.Tools.Rasterizer = "vips"
	}
	if cfg.Tools.PDFEngine == "" {
		cfg.Tools.PDFEngine = DefaultPDFEngine
	}
	if cfg.Tools.DPI <= 0 {
		cfg.Tools.DPI = DefaultDPI
	}
	if cfg.Journal.Type == "" {
		cfg.Journal.Type = "sqlite"
	}
	if cfg.Journal.Type == "sqlite" && cfg.Journal.Path == "" {
		cfg.Journal.Path = DefaultJournalPath
	}
}

// LockTTLDuration parses LockTTL.
func (c *Config) LockTTLDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.LockTTL)
	if err != nil {
		return 0, fmt.Errorf("invalid lock_ttl %q: %w", c.LockTTL, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("lock_ttl must be positive, got %s", c.LockTTL)
	}
	return d, nil
}

// TimeoutDuration parses the per-invocation tool timeout.
func (t ToolsConfig) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(t.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid tools.timeout %q: %w", t.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("tools.timeout must be positive, got %s", t.Timeout)
	}
	return d, nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader. Unset fields keep their zero value.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path and applies defaults. A missing file yields
// the defaults; any other read or decode failure is an error.
func Load(path string) (*Config, error) {
	cfg, err := ReadFromFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewConfig(), nil
		}
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
