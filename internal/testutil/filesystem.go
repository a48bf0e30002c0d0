package testutil

import (
	"io/fs"
	"os"
	"sync"

	morphfs "morph-bang/internal/fs"
	"morph-bang/internal/morph"
)

// ChownCall records one Chown invocation.
type ChownCall struct {
	Path string
	UID  uint32
	GID  uint32
}

// RecordingFilesystemManager works on the real filesystem but only records
// ownership changes, so tests can assert them without running as root.
// Chmod is applied for real.
type RecordingFilesystemManager struct {
	mu     sync.Mutex
	owner  morph.Owner
	os     *morphfs.OSFilesystemManager
	chowns []ChownCall

	// ChownErr, when set, is returned by every Chown.
	ChownErr error
}

// NewRecordingFilesystemManager reports every snapshot as owned by uid/gid.
func NewRecordingFilesystemManager(uid, gid uint32) *RecordingFilesystemManager {
	return &RecordingFilesystemManager{
		owner: morph.Owner{UID: uid, GID: gid},
		os:    morphfs.NewOSFilesystemManager(),
	}
}

// Snapshot returns the configured uid/gid with the file's real permission bits.
func (m *RecordingFilesystemManager) Snapshot(path string) (morph.Owner, error) {
	info, err := os.Stat(path)
	if err != nil {
		return morph.Owner{}, err
	}
	return morph.Owner{UID: m.owner.UID, GID: m.owner.GID, Mode: info.Mode() & (fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky)}, nil
}

func (m *RecordingFilesystemManager) Chown(path string, uid, gid uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ChownErr != nil {
		return m.ChownErr
	}
	m.chowns = append(m.chowns, ChownCall{Path: path, UID: uid, GID: gid})
	return nil
}

func (m *RecordingFilesystemManager) Chmod(path string, mode fs.FileMode) error {
	return os.Chmod(path, mode)
}

func (m *RecordingFilesystemManager) ListFiles(dir string) ([]string, error) {
	return m.os.ListFiles(dir)
}

// Chowns returns every recorded Chown call in order.
func (m *RecordingFilesystemManager) Chowns() []ChownCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ChownCall(nil), m.chowns...)
}

// ChownedTo returns the last ownership recorded for path.
func (m *RecordingFilesystemManager) ChownedTo(path string) (ChownCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.chowns) - 1; i >= 0; i-- {
		if m.chowns[i].Path == path {
			return m.chowns[i], true
		}
	}
	return ChownCall{}, false
}

// Compile-time check that RecordingFilesystemManager implements morph.FilesystemManager interface
var _ morph.FilesystemManager = (*RecordingFilesystemManager)(nil)
