package testutil

import (
	"testing"

	"morph-bang/internal/journal"
)

// NewTestJournal creates an in-memory journal with the schema applied.
// The journal is automatically closed when the test completes.
func NewTestJournal(t *testing.T) *journal.SQLiteJournal {
	t.Helper()

	j, err := journal.NewSQLiteJournal(":memory:", nil)
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}
	t.Cleanup(func() {
		j.Close()
	})
	return j
}
