//go:build unix

package fs

import (
	"fmt"
	"io/fs"

	"golang.org/x/sys/unix"

	"morph-bang/internal/morph"
)

// Snapshot captures the uid, gid and mode of path, following symlinks. The mode
// includes the setuid, setgid and sticky bits.
func (m *OSFilesystemManager) Snapshot(path string) (morph.Owner, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return morph.Owner{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return morph.Owner{
		UID:  st.Uid,
		GID:  st.Gid,
		Mode: modeFromUnix(st.Mode),
	}, nil
}

// Chown sets the numeric owner of path.
func (m *OSFilesystemManager) Chown(path string, uid, gid uint32) error {
	if err := unix.Chown(path, int(uid), int(gid)); err != nil {
		return fmt.Errorf("chown %s: %w", path, err)
	}
	return nil
}

// Chmod sets the permission and special bits of path.
func (m *OSFilesystemManager) Chmod(path string, mode fs.FileMode) error {
	if err := unix.Chmod(path, unixMode(mode)); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}

func modeFromUnix(m uint32) fs.FileMode {
	mode := fs.FileMode(m & 0o777)
	if m&unix.S_ISUID != 0 {
		mode |= fs.ModeSetuid
	}
	if m&unix.S_ISGID != 0 {
		mode |= fs.ModeSetgid
	}
	if m&unix.S_ISVTX != 0 {
		mode |= fs.ModeSticky
	}
	return mode
}

func unixMode(mode fs.FileMode) uint32 {
	m := uint32(mode.Perm())
	if mode&fs.ModeSetuid != 0 {
		m |= unix.S_ISUID
	}
	if mode&fs.ModeSetgid != 0 {
		m |= unix.S_ISGID
	}
	if mode&fs.ModeSticky != 0 {
		m |= unix.S_ISVTX
	}
	return m
}
