package morph

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Service interprets rename events as conversion commands. It owns the lock
// table and is driven by a single consumer; it is not safe for concurrent use.
type Service struct {
	versions   VersionStore
	fsmgr      FilesystemManager
	tools      Toolset
	classifier *Classifier
	engine     *Engine
	locks      *LockTable
	recorder   EventRecorder
	logger     Logger
	clock      Clock
	idgen      IDGenerator
}

// NewService creates a Service with the provided dependencies.
func NewService(versions VersionStore, fsmgr FilesystemManager, tools Toolset, recorder EventRecorder, logger Logger, clock Clock, idgen IDGenerator, lockTTL time.Duration) *Service {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Service{
		versions:   versions,
		fsmgr:      fsmgr,
		tools:      tools,
		classifier: NewClassifier(tools.Sniffer),
		engine:     NewEngine(tools, fsmgr, logger),
		locks:      NewLockTable(lockTTL, clock),
		recorder:   recorder,
		logger:     logger,
		clock:      clock,
		idgen:      idgen,
	}
}

// event is the per-event state shared by the dispatch branches.
type event struct {
	id          string
	path        string
	name        string
	destination string
	trigger     Trigger
}

// Handle processes one raw path from the event feed. Paths whose names carry no
// trigger are ignored without a trace. Every command event is recorded.
func (s *Service) Handle(ctx context.Context, rawPath string) error {
	rawPath = strings.TrimSpace(rawPath)
	if rawPath == "" {
		return nil
	}
	destination, trigger, ok := DestinationFor(rawPath)
	if !ok {
		return nil
	}

	ev := &event{
		id:          s.idgen.New(),
		path:        rawPath,
		name:        filepath.Base(rawPath),
		destination: destination,
		trigger:     trigger,
	}

	started := s.clock.Now()
	action, err := s.dispatch(ctx, ev)

	rec := EventRecord{
		ID:          ev.id,
		Path:        ev.path,
		Destination: ev.destination,
		TargetExt:   trigger.TargetExt,
		Destructive: trigger.Destructive,
		Action:      action,
		StartedAt:   started,
		FinishedAt:  s.clock.Now(),
	}
	if err != nil {
		rec.Action = ActionFailed
		rec.Error = err.Error()
	}
	s.recorder.Record(ctx, rec)

	if err != nil {
		return err
	}
	if action != ActionIgnored && action != ActionLocked {
		s.logger.Info("event handled", "event", ev.id, "path", ev.path, "action", string(action), "destination", ev.destination)
	}
	return nil
}

func (s *Service) dispatch(ctx context.Context, ev *event) (Action, error) {
	if s.locks.IsLocked(ev.destination) {
		s.logger.Debug("destination locked, skipping", "event", ev.id, "destination", ev.destination)
		return ActionLocked, nil
	}
	s.locks.Claim(ev.destination)

	info, err := os.Stat(ev.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ActionIgnored, nil
		}
		return ActionFailed, fmt.Errorf("stat subject: %w", err)
	}

	owner, err := s.fsmgr.Snapshot(ev.path)
	if err != nil {
		return ActionFailed, fmt.Errorf("capturing owner: %w", err)
	}

	versionDir, err := s.versions.Dir(ev.destination, owner)
	if err != nil {
		return ActionFailed, fmt.Errorf("preparing version directory: %w", err)
	}

	switch {
	case info.IsDir():
		return s.handleDirectory(ctx, ev, versionDir, owner)
	case info.Mode().IsRegular():
		return s.handleFile(ctx, ev, versionDir, owner)
	}
	return ActionIgnored, nil
}

func (s *Service) handleFile(ctx context.Context, ev *event, versionDir string, owner Owner) (Action, error) {
	mime, err := s.classifier.DetectMIME(ctx, ev.path)
	if err != nil {
		return ActionFailed, err
	}
	sourceExt := s.classifier.DetectSourceExt(ctx, ev.path)
	if !IsValidTarget(mime, ev.trigger.TargetExt) {
		s.logger.Debug("target not valid for content", "event", ev.id, "mime", mime, "target", ev.trigger.TargetExt)
		return ActionIgnored, nil
	}

	latest, found, err := s.versions.FindLatest(versionDir, ev.trigger.TargetExt)
	if err != nil {
		return ActionFailed, fmt.Errorf("searching version history: %w", err)
	}

	if !ev.trigger.Destructive {
		if _, err := s.versions.Store(ctx, ev.path, versionDir, sourceExt, owner); err != nil {
			return ActionFailed, fmt.Errorf("storing version: %w", err)
		}
	}

	if found {
		mode := owner.Mode
		if err := s.versions.Restore(latest, ev.destination, owner, &mode); err != nil {
			return ActionFailed, err
		}
		s.removeSubject(ev)
		s.notifyRestore(ctx, owner.UID, ev)
		return ActionRestored, nil
	}

	s.notify(ctx, owner.UID, fmt.Sprintf("Syncing %s to %s", ev.name, strings.ToUpper(ev.trigger.TargetExt)))
	return s.convertForward(ctx, ev, owner, mime, sourceExt)
}

// convertForward converts into a dot-prefixed temp sibling and renames it over the
// destination. The temp path is removed on every exit path.
func (s *Service) convertForward(ctx context.Context, ev *event, owner Owner, mime, sourceExt string) (Action, error) {
	dir := filepath.Dir(ev.destination)
	stem := strings.TrimSuffix(filepath.Base(ev.destination), "."+ev.trigger.TargetExt)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.morph-%s.%s", stem, shortID(s.idgen.New()), ev.trigger.TargetExt))
	defer os.Remove(temp)

	outcome, err := s.engine.Convert(ctx, ConversionRequest{
		Input:     ev.path,
		Output:    temp,
		SplitDir:  filepath.Join(dir, stem),
		TargetExt: ev.trigger.TargetExt,
		SourceExt: sourceExt,
		MIME:      mime,
		Owner:     owner,
	})
	switch outcome {
	case HandledExternally:
		return ActionSplit, nil
	case Replaced:
	default:
		return ActionFailed, fmt.Errorf("converting %s (%s): %w", ev.name, outcome, err)
	}

	if err := owner.Apply(s.fsmgr, temp, true); err != nil {
		return ActionFailed, err
	}
	if err := os.Rename(temp, ev.destination); err != nil {
		return ActionFailed, fmt.Errorf("replacing destination: %w", err)
	}
	s.removeSubject(ev)
	return ActionConverted, nil
}

func (s *Service) handleDirectory(ctx context.Context, ev *event, versionDir string, owner Owner) (Action, error) {
	if ev.trigger.TargetExt != "pdf" {
		return ActionIgnored, nil
	}

	if !ev.trigger.Destructive {
		if _, err := s.versions.StoreDirectory(ctx, ev.path, versionDir, owner); err != nil {
			return ActionFailed, fmt.Errorf("storing directory version: %w", err)
		}
	}

	latest, found, err := s.versions.FindLatest(versionDir, "pdf")
	if err != nil {
		return ActionFailed, fmt.Errorf("searching version history: %w", err)
	}
	if found {
		if err := s.versions.Restore(latest, ev.destination, owner, nil); err != nil {
			return ActionFailed, err
		}
		s.removeSubject(ev)
		s.notifyRestore(ctx, owner.UID, ev)
		return ActionRestored, nil
	}

	return s.aggregateFolder(ctx, ev, owner)
}

func (s *Service) removeSubject(ev *event) {
	if err := os.RemoveAll(ev.path); err != nil {
		s.logger.Warn("removing original failed", "event", ev.id, "path", ev.path, "error", err)
	}
}

func (s *Service) notifyRestore(ctx context.Context, uid uint32, ev *event) {
	s.notify(ctx, uid, fmt.Sprintf("Restored %s from version history (%s)", ev.name, strings.ToUpper(ev.trigger.TargetExt)))
}

func (s *Service) notify(ctx context.Context, uid uint32, body string) {
	if s.tools.Notifier == nil {
		return
	}
	s.tools.Notifier.Notify(ctx, uid, body)
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
