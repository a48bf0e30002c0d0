package morph

import (
	"fmt"
	"io/fs"
)

// Owner is the uid, gid and permission bits of a subject captured when handling
// begins. Every artifact derived from the subject is re-stamped with it.
type Owner struct {
	UID  uint32
	GID  uint32
	Mode fs.FileMode // permission bits plus setuid, setgid and sticky
}

// FilesystemManager provides the privileged filesystem operations the dispatcher
// needs. It abstracts them so the ownership rules can be exercised in tests.
type FilesystemManager interface {
	// Snapshot captures the owner and permission bits of path, following symlinks.
	Snapshot(path string) (Owner, error)

	// Chown sets the numeric owner of path.
	Chown(path string, uid, gid uint32) error

	// Chmod sets the permission and special bits of path.
	Chmod(path string, mode fs.FileMode) error

	// ListFiles returns the regular files directly inside dir, sorted by name.
	ListFiles(dir string) ([]string, error)
}

// Apply re-owns path to o and, when withMode is set, re-permissions it to o.Mode.
func (o Owner) Apply(fsmgr FilesystemManager, path string, withMode bool) error {
	if err := fsmgr.Chown(path, o.UID, o.GID); err != nil {
		return fmt.Errorf("setting ownership on %s: %w", path, err)
	}
	if !withMode {
		return nil
	}
	if err := fsmgr.Chmod(path, o.Mode); err != nil {
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	return nil
}
