package versions

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"morph-bang/internal/morph"
)

// maxNameAttempts bounds the sequence numbers tried for one timestamp.
const maxNameAttempts = 1024

// FileSystemStore is the filesystem implementation of morph.VersionStore.
// History lives under each user's home directory:
//
//	<home>/.local/share/<app>/versions/
//	  <64-hex key>/
//	    <20-digit ns timestamp>-<pid>-<4-digit seq>.<ext>
//
// Names sort lexicographically in creation order.
type FileSystemStore struct {
	appName  string
	identity morph.IdentityResolver
	archiver morph.Archiver
	fsmgr    morph.FilesystemManager
	clock    morph.Clock
	pid      int
}

// NewFileSystemStore creates a version store for the given application name.
func NewFileSystemStore(appName string, identity morph.IdentityResolver, archiver morph.Archiver, fsmgr morph.FilesystemManager, clock morph.Clock) *FileSystemStore {
	return &FileSystemStore{
		appName:  appName,
		identity: identity,
		archiver: archiver,
		fsmgr:    fsmgr,
		clock:    clock,
		pid:      os.Getpid(),
	}
}

// Locate returns the version directory for destination as seen by uid without
// creating anything.
func (s *FileSystemStore) Locate(destination string, uid uint32) (string, error) {
	home, err := s.identity.HomeDir(uid)
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", s.appName, "versions", Key(uid, filepath.Clean(destination))), nil
}

// Dir returns the version directory for destination, creating the chain
// app root → versions root → key directory and re-owning all three to owner.
// Missing .local and .local/share parents are created owned by owner too.
func (s *FileSystemStore) Dir(destination string, owner morph.Owner) (string, error) {
	home, err := s.identity.HomeDir(owner.UID)
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}

	local := filepath.Join(home, ".local")
	share := filepath.Join(local, "share")
	appRoot := filepath.Join(share, s.appName)
	versionsRoot := filepath.Join(appRoot, "versions")
	versionDir := filepath.Join(versionsRoot, Key(owner.UID, filepath.Clean(destination)))

	for _, parent := range []string{local, share} {
		created, err := mkdirIfMissing(parent)
		if err != nil {
			return "", err
		}
		if created {
			if err := s.fsmgr.Chown(parent, owner.UID, owner.GID); err != nil {
				return "", err
			}
		}
	}

	for _, dir := range []string{appRoot, versionsRoot, versionDir} {
		if _, err := mkdirIfMissing(dir); err != nil {
			return "", err
		}
		if err := s.fsmgr.Chown(dir, owner.UID, owner.GID); err != nil {
			return "", err
		}
	}
	return versionDir, nil
}

// Store copies subject into a new version file and re-owns it.
func (s *FileSystemStore) Store(ctx context.Context, subject, versionDir, sourceExt string, owner morph.Owner) (string, error) {
	src, err := os.Open(subject)
	if err != nil {
		return "", fmt.Errorf("opening subject: %w", err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("stat subject: %w", err)
	}

	f, path, err := s.reserve(versionDir, SanitizeExt(sourceExt))
	if err != nil {
		return "", err
	}

	success := false
	defer func() {
		if !success {
			os.Remove(path)
		}
	}()

	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return "", fmt.Errorf("copying to version file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing version file: %w", err)
	}

	// A copy keeps the subject's permission bits.
	copyOwner := morph.Owner{UID: owner.UID, GID: owner.GID, Mode: info.Mode().Perm()}
	if err := copyOwner.Apply(s.fsmgr, path, true); err != nil {
		return "", err
	}

	success = true
	return path, nil
}

// StoreDirectory archives the subject directory into a new "dir.tar" version file.
func (s *FileSystemStore) StoreDirectory(ctx context.Context, subject, versionDir string, owner morph.Owner) (string, error) {
	subject = filepath.Clean(subject)
	parent, name := filepath.Dir(subject), filepath.Base(subject)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("directory has no name: %s", subject)
	}

	f, path, err := s.reserve(versionDir, "dir.tar")
	if err != nil {
		return "", err
	}
	f.Close()

	if err := s.archiver.ArchiveDir(ctx, parent, name, path); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("archiving directory: %w", err)
	}
	if err := owner.Apply(s.fsmgr, path, false); err != nil {
		return "", err
	}
	return path, nil
}

// FindLatest returns the greatest version file name whose extension equals ext.
func (s *FileSystemStore) FindLatest(versionDir, ext string) (string, bool, error) {
	entries, err := os.ReadDir(versionDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading version directory: %w", err)
	}

	latest := ""
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(strings.TrimPrefix(filepath.Ext(name), "."), ext) {
			continue
		}
		if name > latest {
			latest = name
		}
	}
	if latest == "" {
		return "", false, nil
	}
	return filepath.Join(versionDir, latest), true, nil
}

// Restore copies versionFile over destination via a temp sibling and an atomic
// rename, owned by owner and permissioned to modeOverride or the version file's mode.
func (s *FileSystemStore) Restore(versionFile, destination string, owner morph.Owner, modeOverride *fs.FileMode) error {
	src, err := os.Open(versionFile)
	if err != nil {
		return fmt.Errorf("failed to restore version %s -> %s: %w", versionFile, destination, err)
	}
	defer src.Close()

	mode := fs.FileMode(0644)
	if modeOverride != nil {
		mode = *modeOverride
	} else if info, err := src.Stat(); err == nil {
		mode = info.Mode().Perm()
	}

	restored := morph.Owner{UID: owner.UID, GID: owner.GID, Mode: mode}
	if err := s.writeFile(destination, src, restored); err != nil {
		return fmt.Errorf("failed to restore version %s -> %s: %w", versionFile, destination, err)
	}
	return nil
}

// List returns the version entries of versionDir, oldest first.
func (s *FileSystemStore) List(versionDir string) ([]morph.VersionEntry, error) {
	entries, err := os.ReadDir(versionDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading version directory: %w", err)
	}

	var result []morph.VersionEntry
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		name := entry.Name()
		result = append(result, morph.VersionEntry{
			Name:      name,
			Path:      filepath.Join(versionDir, name),
			Ext:       versionExt(name),
			CreatedAt: versionTime(name),
			Size:      info.Size(),
		})
	}
	return result, nil
}

// reserve exclusively creates the next free version file for ext.
func (s *FileSystemStore) reserve(versionDir, ext string) (*os.File, string, error) {
	ts := s.clock.Now().UnixNano()
	for seq := 0; seq < maxNameAttempts; seq++ {
		path := filepath.Join(versionDir, fmt.Sprintf("%020d-%05d-%04d.%s", ts, s.pid, seq, ext))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			return f, path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, "", fmt.Errorf("creating version file: %w", err)
		}
	}
	return nil, "", fmt.Errorf("%w in %s", morph.ErrVersionNameExhausted, versionDir)
}

// writeFile writes data from r to destPath using atomic write (temp file + rename).
// The temp file is dot-prefixed so the event feed never reports it.
func (s *FileSystemStore) writeFile(destPath string, r io.Reader, owner morph.Owner) error {
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".morph-restore-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	// Clean up temp file on failure
	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, r); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := owner.Apply(s.fsmgr, tmpPath, true); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}

func mkdirIfMissing(dir string) (bool, error) {
	err := os.Mkdir(dir, 0755)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	return false, fmt.Errorf("creating %s: %w", dir, err)
}

// versionExt returns everything after the first '.' of a version file name, so
// "…-0000.dir.tar" reports "dir.tar".
func versionExt(name string) string {
	if _, ext, ok := strings.Cut(name, "."); ok {
		return ext
	}
	return ""
}

func versionTime(name string) time.Time {
	if len(name) < 20 {
		return time.Time{}
	}
	ns, err := strconv.ParseInt(name[:20], 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Compile-time check that FileSystemStore implements morph.VersionStore interface
var _ morph.VersionStore = (*FileSystemStore)(nil)
