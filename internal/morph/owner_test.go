package morph_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"morph-bang/internal/morph"
	"morph-bang/internal/testutil"
)

func TestOwner_Apply(t *testing.T) {
	t.Run("with mode", func(t *testing.T) {
		fsmgr := testutil.NewRecordingFilesystemManager(0, 0)
		path := filepath.Join(t.TempDir(), "out.pdf")
		testutil.WriteFile(t, path, "x")

		o := morph.Owner{UID: 1000, GID: 100, Mode: 0600}
		if err := o.Apply(fsmgr, path, true); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		call, ok := fsmgr.ChownedTo(path)
		if !ok || call.UID != 1000 || call.GID != 100 {
			t.Errorf("chown = %+v, %v", call, ok)
		}
		info, _ := os.Stat(path)
		if info.Mode().Perm() != 0600 {
			t.Errorf("mode = %o, want 600", info.Mode().Perm())
		}
	})

	t.Run("without mode keeps permissions", func(t *testing.T) {
		fsmgr := testutil.NewRecordingFilesystemManager(0, 0)
		path := filepath.Join(t.TempDir(), "out.pdf")
		testutil.WriteFile(t, path, "x")

		o := morph.Owner{UID: 1000, GID: 100, Mode: 0600}
		if err := o.Apply(fsmgr, path, false); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
		info, _ := os.Stat(path)
		if info.Mode().Perm() != 0644 {
			t.Errorf("mode = %o, want unchanged 644", info.Mode().Perm())
		}
	})

	t.Run("chown failure is reported", func(t *testing.T) {
		fsmgr := testutil.NewRecordingFilesystemManager(0, 0)
		fsmgr.ChownErr = errors.New("operation not permitted")
		err := morph.Owner{UID: 1}.Apply(fsmgr, "/nowhere", true)
		if err == nil || !strings.Contains(err.Error(), "setting ownership on /nowhere") {
			t.Errorf("Apply() error = %v", err)
		}
	})
}

func TestToolError(t *testing.T) {
	cause := context.DeadlineExceeded
	err := &morph.ToolError{Tool: "ffmpeg", Detail: "timed out after 10m0s", Err: cause}

	if got := err.Error(); got != "ffmpeg: command failed: timed out after 10m0s" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("ToolError should unwrap to its cause")
	}
	if got := (&morph.ToolError{Tool: "tar"}).Error(); got != "tar: command failed" {
		t.Errorf("Error() = %q", got)
	}
}

func TestMultiRecorder(t *testing.T) {
	a, b := &testutil.RecordingRecorder{}, &testutil.RecordingRecorder{}
	m := morph.MultiRecorder{a, morph.NopRecorder{}, b}

	m.Record(context.Background(), morph.EventRecord{ID: "id-1", Action: morph.ActionConverted})

	if len(a.Records()) != 1 || len(b.Records()) != 1 {
		t.Errorf("records fanned out = %d, %d; want 1, 1", len(a.Records()), len(b.Records()))
	}
}
