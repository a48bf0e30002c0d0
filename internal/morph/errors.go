package morph

import (
	"errors"
	"fmt"
)

// ErrUnsupportedConversion means the request was understood but no engine can serve it.
var ErrUnsupportedConversion = errors.New("unsupported conversion")

// ErrVersionNameExhausted means no free version file name was found after
// exhausting the collision-retry budget.
var ErrVersionNameExhausted = errors.New("failed to allocate unique version filename")

// ToolError reports a failed external tool invocation.
type ToolError struct {
	Tool   string
	Detail string // trimmed stderr, or a timeout description
	Err    error
}

func (e *ToolError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: command failed", e.Tool)
	}
	return fmt.Sprintf("%s: command failed: %s", e.Tool, e.Detail)
}

func (e *ToolError) Unwrap() error { return e.Err }
