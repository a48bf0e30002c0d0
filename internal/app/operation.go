package app

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Operation describes one CLI invocation. Its RunID tags every log line the
// invocation writes, so the lines of one daemon run or one-shot command correlate.
type Operation struct {
	RunID      string
	Command    string
	Parameters string
	StartedAt  time.Time
	Status     string // "success" or "error"
}

// NewOperation creates an operation with a fresh short run ID.
func NewOperation(command string, parameters ...string) *Operation {
	return &Operation{
		RunID:      strings.ReplaceAll(uuid.New().String(), "-", "")[:8],
		Command:    command,
		Parameters: strings.Join(parameters, " "),
		StartedAt:  time.Now(),
		Status:     "success",
	}
}

// Fail marks the operation as failed.
func (op *Operation) Fail() {
	op.Status = "error"
}
