package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	morphfs "morph-bang/internal/fs"
)

// FSNotifyFeed watches root recursively in-process. Watches are added for every
// non-ignored directory at start and for directories that appear later.
//
// fsnotify reports an entry moved into a watched directory as Create, the same
// as a freshly created one, so both are delivered.
type FSNotifyFeed struct {
	root    string
	ignore  *morphfs.IgnoreMatcher
	watcher *fsnotify.Watcher
	events  chan string
	errs    chan error
	done    chan struct{}
	once    sync.Once
}

// NewFSNotifyFeed creates the watcher and starts delivering events.
func NewFSNotifyFeed(root string, ignore *morphfs.IgnoreMatcher) (*FSNotifyFeed, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	f := &FSNotifyFeed{
		root:    filepath.Clean(root),
		ignore:  ignore,
		watcher: watcher,
		events:  make(chan string),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
	}

	if err := morphfs.WalkDirs(f.root, ignore, watcher.Add); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("adding watches under %s: %w", root, err)
	}

	go f.run()
	return f, nil
}

func (f *FSNotifyFeed) Events() <-chan string { return f.events }
func (f *FSNotifyFeed) Errors() <-chan error  { return f.errs }

func (f *FSNotifyFeed) Close() error {
	var err error
	f.once.Do(func() {
		close(f.done)
		err = f.watcher.Close()
	})
	return err
}

func (f *FSNotifyFeed) run() {
	defer close(f.errs)
	defer close(f.events)

	for {
		select {
		case <-f.done:
			return

		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) || f.ignored(event.Name) {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				f.watchTree(event.Name)
			}
			select {
			case f.events <- event.Name:
			case <-f.done:
				return
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.reportError(err)
		}
	}
}

func (f *FSNotifyFeed) watchTree(dir string) {
	err := morphfs.WalkDirs(dir, nil, func(d string) error {
		if f.ignored(d) {
			return filepath.SkipDir
		}
		return f.watcher.Add(d)
	})
	if err != nil {
		f.reportError(fmt.Errorf("watching %s: %w", dir, err))
	}
}

func (f *FSNotifyFeed) ignored(path string) bool {
	rel, err := filepath.Rel(f.root, path)
	if err != nil || rel == "." {
		return false
	}
	return f.ignore.Match(rel)
}

func (f *FSNotifyFeed) reportError(err error) {
	select {
	case f.errs <- err:
	case <-f.done:
	}
}
