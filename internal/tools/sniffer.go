package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"morph-bang/internal/morph"
)

// FileSniffer asks file(1) for the content type and extension guess.
type FileSniffer struct {
	runner *Runner
}

func NewFileSniffer(runner *Runner) *FileSniffer {
	return &FileSniffer{runner: runner}
}

func (s *FileSniffer) MIMEType(ctx context.Context, path string) (string, error) {
	out, err := s.runner.Output(ctx, "file", "--mime-type", "-b", path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (s *FileSniffer) Extension(ctx context.Context, path string) (string, error) {
	out, err := s.runner.Output(ctx, "file", "--extension", "-b", path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// NativeSniffer detects content in-process from magic numbers.
type NativeSniffer struct{}

func NewNativeSniffer() *NativeSniffer {
	return &NativeSniffer{}
}

func (s *NativeSniffer) detect(path string) (*mimetype.MIME, error) {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, &morph.ToolError{Tool: "mimetype", Detail: err.Error(), Err: err}
	}
	return m, nil
}

// MIMEType returns the bare content type without parameters such as charset.
func (s *NativeSniffer) MIMEType(_ context.Context, path string) (string, error) {
	m, err := s.detect(path)
	if err != nil {
		return "", err
	}
	mime, _, _ := strings.Cut(m.String(), ";")
	return strings.TrimSpace(mime), nil
}

// Extension returns the canonical extension without its dot, or "???" when
// the content type has none, matching file(1)'s output.
func (s *NativeSniffer) Extension(_ context.Context, path string) (string, error) {
	m, err := s.detect(path)
	if err != nil {
		return "", err
	}
	ext := strings.TrimPrefix(m.Extension(), ".")
	if ext == "" {
		return "???", nil
	}
	return ext, nil
}

// NewSniffer returns the sniffer named by kind.
func NewSniffer(kind string, runner *Runner) (morph.Sniffer, error) {
	switch kind {
	case "file", "":
		return NewFileSniffer(runner), nil
	case "native":
		return NewNativeSniffer(), nil
	default:
		return nil, fmt.Errorf("unknown sniffer type: %q", kind)
	}
}
