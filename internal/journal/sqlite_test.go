package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"morph-bang/internal/config"
	"morph-bang/internal/morph"
)

func newTestJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := NewSQLiteJournal(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to create journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func record(id, dest string, action morph.Action, started time.Time) morph.EventRecord {
	return morph.EventRecord{
		ID:          id,
		Path:        dest + "!x",
		Destination: dest,
		TargetExt:   "pdf",
		Action:      action,
		StartedAt:   started,
		FinishedAt:  started.Add(1500 * time.Millisecond),
	}
}

func TestSQLiteJournal_InsertAndList(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	failed := record("id-2", "/home/a/b.pdf", morph.ActionFailed, base.Add(time.Minute))
	failed.Error = "pandoc: command failed: boom"
	failed.Destructive = true

	for _, rec := range []morph.EventRecord{
		record("id-1", "/home/a/a.pdf", morph.ActionConverted, base),
		failed,
		record("id-3", "/home/a/a.pdf", morph.ActionRestored, base.Add(2*time.Minute)),
	} {
		if err := j.Insert(ctx, rec); err != nil {
			t.Fatalf("Insert(%s) error = %v", rec.ID, err)
		}
	}

	t.Run("newest first", func(t *testing.T) {
		got, err := j.List(ctx, 0)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("List() returned %d, want 3", len(got))
		}
		if got[0].ID != "id-3" || got[1].ID != "id-2" || got[2].ID != "id-1" {
			t.Errorf("order = %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
		}
	})

	t.Run("limit", func(t *testing.T) {
		got, err := j.List(ctx, 1)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != "id-3" {
			t.Errorf("List(1) = %+v", got)
		}
	})

	t.Run("round-trips fields", func(t *testing.T) {
		got, err := j.ListForDestination(ctx, "/home/a/b.pdf", 10)
		if err != nil {
			t.Fatalf("ListForDestination() error = %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("got %d records", len(got))
		}
		r := got[0]
		if r.Action != morph.ActionFailed || r.Error != failed.Error || !r.Destructive {
			t.Errorf("record = %+v", r)
		}
		if !r.StartedAt.Equal(failed.StartedAt) || r.Duration() != 1500*time.Millisecond {
			t.Errorf("times = %v .. %v", r.StartedAt, r.FinishedAt)
		}
	})

	t.Run("destination filter", func(t *testing.T) {
		got, err := j.ListForDestination(ctx, "/home/a/a.pdf", 0)
		if err != nil {
			t.Fatalf("ListForDestination() error = %v", err)
		}
		if len(got) != 2 || got[0].ID != "id-3" {
			t.Errorf("ListForDestination() = %+v", got)
		}
	})
}

func TestSQLiteJournal_RecordSwallowsErrors(t *testing.T) {
	j := newTestJournal(t)
	rec := record("dup", "/x.pdf", morph.ActionConverted, time.Now())

	j.Record(context.Background(), rec)
	j.Record(context.Background(), rec) // primary key violation is logged only

	got, err := j.List(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("got %d records, want 1", len(got))
	}
}

func TestNewSQLiteJournal_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "journal.db")

	j, err := NewSQLiteJournal(path, nil)
	if err != nil {
		t.Fatalf("NewSQLiteJournal() error = %v", err)
	}
	if err := j.Insert(context.Background(), record("a", "/a.pdf", morph.ActionSplit, time.Now())); err != nil {
		t.Fatal(err)
	}
	j.Close()

	reopened, err := NewSQLiteJournal(path, nil)
	if err != nil {
		t.Fatalf("reopening journal: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.List(context.Background(), 0)
	if err != nil || len(got) != 1 {
		t.Errorf("List() after reopen = %v, %v", got, err)
	}
}

func TestNewJournalFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.JournalConfig
		wantNil bool
		wantErr bool
	}{
		{"memory", config.JournalConfig{Type: "memory"}, false, false},
		{"sqlite", config.JournalConfig{Type: "sqlite", Path: filepath.Join(t.TempDir(), "j.db")}, false, false},
		{"sqlite without path", config.JournalConfig{Type: "sqlite"}, true, true},
		{"none", config.JournalConfig{Type: "none"}, true, false},
		{"unknown", config.JournalConfig{Type: "postgres"}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := NewJournalFromConfig(tt.cfg, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if (j == nil) != tt.wantNil {
				t.Fatalf("journal nil = %v, want %v", j == nil, tt.wantNil)
			}
			if j != nil {
				j.Close()
			}
		})
	}
}
