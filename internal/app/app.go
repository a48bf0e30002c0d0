package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"morph-bang/internal/config"
	"morph-bang/internal/feed"
	morphfs "morph-bang/internal/fs"
	"morph-bang/internal/journal"
	"morph-bang/internal/metrics"
	"morph-bang/internal/morph"
	"morph-bang/internal/tools"
	"morph-bang/internal/versions"
)

// Options tune how NewMorphApp wires the application.
type Options struct {
	Verbose   bool // log at debug level
	NoJournal bool // skip opening the journal, for read-only commands run as a user
}

// MorphApp is the application layer between the CLI and morph.Service.
// It constructs all dependencies from config, exposes high-level operations
// that accept raw string paths, and releases resources on Close.
type MorphApp struct {
	cfg      *config.Config
	kit      *tools.Kit
	store    *versions.FileSystemStore
	journal  *journal.SQLiteJournal
	registry *prometheus.Registry
	service  *morph.Service
	logger   morph.Logger
	op       *Operation
	logFile  *os.File
}

// NewMorphApp creates a fully wired MorphApp from the given config.
// command identifies the CLI command being run (e.g. "run", "handle").
// The caller must call Close when done.
func NewMorphApp(cfg *config.Config, command string, opts Options, parameters ...string) (*MorphApp, error) {
	op := NewOperation(command, parameters...)

	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	slogger, logFile, err := newLogger(cfg.LogDir, op.RunID, level)
	if err != nil {
		slogger = newStderrLogger(op.RunID, level)
		slogger.Debug("file logging disabled", "log_dir", cfg.LogDir, "error", err)
	}
	logger := &slogAdapter{l: slogger}

	a := &MorphApp{cfg: cfg, logger: logger, op: op, logFile: logFile}

	lockTTL, err := cfg.LockTTLDuration()
	if err != nil {
		a.closeLog()
		return nil, err
	}

	kit, err := tools.NewKitFromConfig(cfg.Tools, cfg.Classifier, logger)
	if err != nil {
		a.closeLog()
		return nil, fmt.Errorf("creating tools: %w", err)
	}
	a.kit = kit

	fsmgr := morphfs.NewOSFilesystemManager()
	a.store = versions.NewFileSystemStore(cfg.AppName, kit.Identity, kit.Archiver, fsmgr, morph.RealClock{})

	if !opts.NoJournal {
		j, err := journal.NewJournalFromConfig(cfg.Journal, logger)
		if err != nil {
			a.closeLog()
			return nil, fmt.Errorf("creating journal: %w", err)
		}
		a.journal = j
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	recorders := morph.MultiRecorder{metrics.NewRecorder(a.registry)}
	if a.journal != nil {
		recorders = append(recorders, a.journal)
	}

	a.service = morph.NewService(a.store, fsmgr, kit.Toolset, recorders, logger, morph.RealClock{}, morph.UUIDGenerator{}, lockTTL)

	logger.Debug("operation started", "command", op.Command, "parameters", op.Parameters)
	return a, nil
}

// Run watches the configured root and dispatches events until ctx is cancelled.
// When a metrics listen address is configured, the metrics server runs alongside.
func (a *MorphApp) Run(ctx context.Context) error {
	if a.cfg.Metrics.Listen != "" {
		srv := metrics.NewServer(a.cfg.Metrics.Listen, a.registry, a.logger)
		if _, err := srv.Start(); err != nil {
			a.op.Fail()
			return fmt.Errorf("starting metrics server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Warn("metrics server shutdown", "error", err)
			}
		}()
	}

	f, err := feed.NewFeedFromConfig(ctx, a.cfg.Feed, a.cfg.WatchRoot, a.cfg.Tools.Binaries)
	if err != nil {
		a.op.Fail()
		return fmt.Errorf("starting event feed: %w", err)
	}
	defer f.Close()

	a.logger.Info(fmt.Sprintf("Morph Bang: Global filesystem watch established on %s", a.cfg.WatchRoot))
	return a.service.Run(ctx, f)
}

// Handle dispatches each path once, as if it had arrived from the event feed.
// All paths are attempted; their errors are joined.
func (a *MorphApp) Handle(ctx context.Context, rawPaths []string) error {
	var errs []error
	for _, raw := range rawPaths {
		p, err := filepath.Abs(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("resolving path %s: %w", raw, err))
			continue
		}
		if err := a.service.Handle(ctx, p); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.op.Fail()
		return err
	}
	return nil
}

// Versions lists the version history kept for the logical path rawPath as seen
// by uid, oldest first. The directory is not created.
func (a *MorphApp) Versions(rawPath string, uid uint32) (string, []morph.VersionEntry, error) {
	p, err := filepath.Abs(rawPath)
	if err != nil {
		return "", nil, fmt.Errorf("resolving path: %w", err)
	}
	dir, err := a.store.Locate(p, uid)
	if err != nil {
		a.op.Fail()
		return "", nil, err
	}
	entries, err := a.store.List(dir)
	if err != nil {
		a.op.Fail()
		return "", nil, err
	}
	return dir, entries, nil
}

// Journal returns the most recent journal records, newest first.
// rawPath, when non-empty, restricts the listing to one destination.
func (a *MorphApp) Journal(ctx context.Context, rawPath string, limit int) ([]morph.EventRecord, error) {
	if a.journal == nil {
		return nil, fmt.Errorf("journal is disabled (journal.type = %q)", a.cfg.Journal.Type)
	}
	if rawPath == "" {
		return a.journal.List(ctx, limit)
	}
	p, err := filepath.Abs(rawPath)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	return a.journal.ListForDestination(ctx, p, limit)
}

// Close finalizes the operation and closes all resources.
func (a *MorphApp) Close() error {
	var firstErr error
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			firstErr = fmt.Errorf("closing journal: %w", err)
		}
	}
	a.logger.Debug("operation finished", "command", a.op.Command, "status", a.op.Status, "elapsed", time.Since(a.op.StartedAt).Round(time.Millisecond))
	a.closeLog()
	return firstErr
}

func (a *MorphApp) closeLog() {
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}
