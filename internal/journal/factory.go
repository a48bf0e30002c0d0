package journal

import (
	"fmt"

	"morph-bang/internal/config"
	"morph-bang/internal/morph"
)

// NewJournalFromConfig creates a journal based on the journal config type.
// Type "none" disables the journal and returns nil.
func NewJournalFromConfig(cfg config.JournalConfig, logger morph.Logger) (*SQLiteJournal, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.Path == "" {
			return nil, fmt.Errorf("path required for sqlite journal")
		}
		return NewSQLiteJournal(cfg.Path, logger)
	case "memory":
		return NewSQLiteJournal(":memory:", logger)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown journal type: %s", cfg.Type)
	}
}
