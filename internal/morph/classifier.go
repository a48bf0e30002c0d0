package morph

import (
	"context"
	"fmt"
	"strings"
)

// Classifier resolves a file's true content type and a canonical source extension,
// independent of the name it currently carries.
type Classifier struct {
	sniffer Sniffer
}

// NewClassifier creates a Classifier backed by sniffer.
func NewClassifier(sniffer Sniffer) *Classifier {
	return &Classifier{sniffer: sniffer}
}

// DetectMIME returns the content type of path. It fails when the sniffer cannot run.
func (c *Classifier) DetectMIME(ctx context.Context, path string) (string, error) {
	mime, err := c.sniffer.MIMEType(ctx, path)
	if err != nil {
		return "", fmt.Errorf("detecting mime type of %s: %w", path, err)
	}
	return strings.TrimSpace(mime), nil
}

// DetectSourceExt prefers the sniffer's extension guess and falls back to the
// MIME table when the guess fails or is empty. Returns "" when nothing fits.
func (c *Classifier) DetectSourceExt(ctx context.Context, path string) string {
	if guess, err := c.sniffer.Extension(ctx, path); err == nil {
		if ext := normalizeExtGuess(guess); ext != "" {
			return ext
		}
	}

	mime, err := c.DetectMIME(ctx, path)
	if err != nil {
		return ""
	}
	return SourceExtFromMIME(mime)
}

// normalizeExtGuess keeps the first candidate of "jpeg/jpg/jpe", strips trailing
// '?' markers and lower-cases the result.
func normalizeExtGuess(guess string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(guess), "/")
	return strings.ToLower(strings.TrimRight(first, "?"))
}
