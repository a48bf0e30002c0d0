package fs

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestOSFilesystemManager_ListFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.md", "c.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0755); err != nil {
		t.Fatalf("creating nested dir: %v", err)
	}
	if err := os.Symlink(filepath.Join(dir, "a.md"), filepath.Join(dir, "link.md")); err != nil {
		t.Fatalf("creating symlink: %v", err)
	}

	m := NewOSFilesystemManager()
	files, err := m.ListFiles(dir)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "c.jpg"),
	}
	if len(files) != len(want) {
		t.Fatalf("got %d files (%v), want %d", len(files), files, len(want))
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestOSFilesystemManager_ListFiles_MissingDir(t *testing.T) {
	m := NewOSFilesystemManager()
	if _, err := m.ListFiles(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestOSFilesystemManager_SnapshotChownChmod(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(path, []byte("# notes"), 0640); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if err := os.Chmod(path, 0640); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	m := NewOSFilesystemManager()
	owner, err := m.Snapshot(path)
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if owner.UID != uint32(os.Getuid()) {
		t.Errorf("UID = %d, want %d", owner.UID, os.Getuid())
	}
	if owner.Mode != 0640 {
		t.Errorf("Mode = %o, want 640", owner.Mode)
	}

	// Re-owning to the current owner is always permitted.
	if err := m.Chown(path, owner.UID, owner.GID); err != nil {
		t.Fatalf("Chown() error = %v", err)
	}
	if err := m.Chmod(path, 0600); err != nil {
		t.Fatalf("Chmod() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode = %o, want 600", info.Mode().Perm())
	}
}

func TestModeConversion(t *testing.T) {
	tests := []struct {
		unix uint32
		mode fs.FileMode
	}{
		{0o644, 0o644},
		{0o4755, fs.ModeSetuid | 0o755},
		{0o2750, fs.ModeSetgid | 0o750},
		{0o1777, fs.ModeSticky | 0o777},
		{0o7700, fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky | 0o700},
	}
	for _, tt := range tests {
		if got := modeFromUnix(tt.unix); got != tt.mode {
			t.Errorf("modeFromUnix(%o) = %v, want %v", tt.unix, got, tt.mode)
		}
		if got := unixMode(tt.mode); got != tt.unix {
			t.Errorf("unixMode(%v) = %o, want %o", tt.mode, got, tt.unix)
		}
	}
}

func TestOSFilesystemManager_SpecialBits(t *testing.T) {
	m := NewOSFilesystemManager()
	dir := t.TempDir()

	tests := []struct {
		name string
		dir  bool
		mode fs.FileMode
	}{
		{name: "setuid file", mode: fs.ModeSetuid | 0o750},
		{name: "sticky directory", dir: true, mode: fs.ModeSticky | 0o755},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			var err error
			if tt.dir {
				err = os.Mkdir(path, 0755)
			} else {
				err = os.WriteFile(path, []byte("x"), 0644)
			}
			if err != nil {
				t.Fatal(err)
			}

			if err := m.Chmod(path, tt.mode); err != nil {
				t.Fatalf("Chmod() error = %v", err)
			}
			owner, err := m.Snapshot(path)
			if err != nil {
				t.Fatalf("Snapshot() error = %v", err)
			}
			if owner.Mode != tt.mode {
				t.Errorf("Mode = %v, want %v", owner.Mode, tt.mode)
			}
		})
	}
}

func TestWalkDirs(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{
		filepath.Join("alice", "Documents"),
		filepath.Join("alice", ".cache", "thumbs"),
		"bob",
	} {
		if err := os.MkdirAll(filepath.Join(root, d), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}

	var seen []string
	err := WalkDirs(root, NewIgnoreMatcher(DefaultIgnorePatterns), func(dir string) error {
		rel, _ := filepath.Rel(root, dir)
		seen = append(seen, rel)
		return nil
	})
	if err != nil {
		t.Fatalf("WalkDirs() error = %v", err)
	}

	want := map[string]bool{".": true, "alice": true, filepath.Join("alice", "Documents"): true, "bob": true}
	if len(seen) != len(want) {
		t.Fatalf("visited %v, want %d dirs", seen, len(want))
	}
	for _, s := range seen {
		if !want[s] {
			t.Errorf("unexpected directory visited: %s", s)
		}
	}
}
