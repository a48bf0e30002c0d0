package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		WatchRoot:  "/srv/home",
		AppName:    "morph-bang",
		LockTTL:    "5s",
		LogDir:     "/var/log/mb",
		Feed:       FeedConfig{Type: "fsnotify", Ignore: []string{".*", "*.part"}},
		Classifier: ClassifierConfig{Sniffer: "native"},
		Tools: ToolsConfig{
			Timeout:    "30s",
			Rasterizer: "native",
			PDFEngine:  "lualatex",
			DPI:        150,
			Binaries:   map[string]string{"vips": "/opt/vips/bin/vips"},
		},
		Journal: JournalConfig{Type: "sqlite", Path: "/var/lib/mb/journal.db"},
		Metrics: MetricsConfig{Listen: "127.0.0.1:9187"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.WatchRoot != original.WatchRoot {
		t.Errorf("WatchRoot = %q, want %q", got.WatchRoot, original.WatchRoot)
	}
	if got.LockTTL != "5s" {
		t.Errorf("LockTTL = %q, want %q", got.LockTTL, "5s")
	}
	if got.Feed.Type != "fsnotify" || len(got.Feed.Ignore) != 2 {
		t.Errorf("Feed = %+v", got.Feed)
	}
	if got.Classifier.Sniffer != "native" {
		t.Errorf("Classifier.Sniffer = %q", got.Classifier.Sniffer)
	}
	if got.Tools.DPI != 150 || got.Tools.PDFEngine != "lualatex" {
		t.Errorf("Tools = %+v", got.Tools)
	}
	if got.Tools.Binaries["vips"] != "/opt/vips/bin/vips" {
		t.Errorf("Tools.Binaries = %v", got.Tools.Binaries)
	}
	if got.Journal.Path != original.Journal.Path {
		t.Errorf("Journal.Path = %q, want %q", got.Journal.Path, original.Journal.Path)
	}
	if got.Metrics.Listen != "127.0.0.1:9187" {
		t.Errorf("Metrics.Listen = %q", got.Metrics.Listen)
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig()

	if cfg.WatchRoot != "/home" {
		t.Errorf("WatchRoot = %q, want %q", cfg.WatchRoot, "/home")
	}
	if cfg.AppName != "morph-bang" {
		t.Errorf("AppName = %q, want %q", cfg.AppName, "morph-bang")
	}
	ttl, err := cfg.LockTTLDuration()
	if err != nil || ttl != 2*time.Second {
		t.Errorf("LockTTLDuration() = %v, %v; want 2s", ttl, err)
	}
	timeout, err := cfg.Tools.TimeoutDuration()
	if err != nil || timeout != 10*time.Minute {
		t.Errorf("TimeoutDuration() = %v, %v; want 10m", timeout, err)
	}
	if cfg.Feed.Type != "inotifywait" {
		t.Errorf("Feed.Type = %q", cfg.Feed.Type)
	}
	if cfg.Classifier.Sniffer != "file" || cfg.Tools.Rasterizer != "vips" {
		t.Errorf("tools = %q/%q", cfg.Classifier.Sniffer, cfg.Tools.Rasterizer)
	}
	if cfg.Tools.DPI != 300 || cfg.Tools.PDFEngine != "xelatex" {
		t.Errorf("Tools = %+v", cfg.Tools)
	}
	if cfg.Journal.Type != "sqlite" || cfg.Journal.Path != DefaultJournalPath {
		t.Errorf("Journal = %+v", cfg.Journal)
	}
	if cfg.Metrics.Listen != "" {
		t.Errorf("metrics should be disabled by default, got %q", cfg.Metrics.Listen)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		LockTTL: "1s",
		Journal: JournalConfig{Type: "memory"},
		Feed:    FeedConfig{Ignore: []string{}},
	}
	ApplyDefaults(cfg)

	if cfg.LockTTL != "1s" {
		t.Errorf("LockTTL = %q, want 1s", cfg.LockTTL)
	}
	if cfg.Journal.Path != "" {
		t.Errorf("memory journal should have no path, got %q", cfg.Journal.Path)
	}
	if len(cfg.Feed.Ignore) != 0 {
		t.Errorf("explicit empty ignore list was replaced: %v", cfg.Feed.Ignore)
	}
}

func TestDurations_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"garbage", "soon"},
		{"zero", "0s"},
		{"negative", "-1s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{LockTTL: tt.value, Tools: ToolsConfig{Timeout: tt.value}}
			if _, err := cfg.LockTTLDuration(); err == nil {
				t.Error("LockTTLDuration() expected error")
			}
			if _, err := cfg.Tools.TimeoutDuration(); err == nil {
				t.Error("TimeoutDuration() expected error")
			}
		})
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "etc", "morph-bang.toml")

		if err := Init(path, NewConfig()); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "morph-bang.toml")

		if err := Init(path, NewConfig()); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, NewConfig())
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "morph-bang.toml")
		cfg := NewConfig()
		cfg.WatchRoot = "/data/users"

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.WatchRoot != "/data/users" {
			t.Errorf("WatchRoot = %q, want %q", got.WatchRoot, "/data/users")
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/morph-bang.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.WatchRoot != DefaultWatchRoot {
			t.Errorf("WatchRoot = %q", cfg.WatchRoot)
		}
	})

	t.Run("partial file is completed with defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "morph-bang.toml")
		content := "watch_root = \"/srv\"\n\n[tools]\ndpi = 72\n"
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.WatchRoot != "/srv" || cfg.Tools.DPI != 72 {
			t.Errorf("explicit values lost: %+v", cfg)
		}
		if cfg.LockTTL != DefaultLockTTL || cfg.Tools.Timeout != DefaultToolTimeout {
			t.Errorf("defaults not applied: %+v", cfg)
		}
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "morph-bang.toml")
		if err := os.WriteFile(path, []byte("watch_root = ["), 0644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		if err == nil || !strings.Contains(err.Error(), "decode") {
			t.Errorf("Load() error = %v", err)
		}
	})
}
