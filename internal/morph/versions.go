package morph

import (
	"context"
	"io/fs"
	"time"
)

// VersionEntry is one immutable artifact in a version directory.
type VersionEntry struct {
	Name      string
	Path      string
	Ext       string
	CreatedAt time.Time
	Size      int64
}

// VersionStore is the append-only, per-user, per-logical-path archive of
// historical artifacts. Version files are only ever created and read.
type VersionStore interface {
	// Dir returns the version directory for destination as seen by owner.UID,
	// creating it and (re)owning its ancestors to owner on every call.
	// Each cleaned destination path has its own directory.
	Dir(destination string, owner Owner) (string, error)

	// Store copies the current content of subject into a new version file whose
	// extension is the sanitized sourceExt ("bin" when empty).
	Store(ctx context.Context, subject, versionDir, sourceExt string, owner Owner) (string, error)

	// StoreDirectory archives the subject directory tree into a new "dir.tar" version file.
	StoreDirectory(ctx context.Context, subject, versionDir string, owner Owner) (string, error)

	// FindLatest returns the most recent version file whose extension equals ext,
	// case-insensitively. found is false when there is none.
	FindLatest(versionDir, ext string) (path string, found bool, err error)

	// Restore copies versionFile over destination, owned by owner. The mode is
	// modeOverride when set, else the version file's own mode.
	Restore(versionFile, destination string, owner Owner, modeOverride *fs.FileMode) error

	// List returns every version entry, oldest first.
	List(versionDir string) ([]VersionEntry, error)
}
