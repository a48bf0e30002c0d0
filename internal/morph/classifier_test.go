package morph_test

import (
	"context"
	"errors"
	"testing"

	"morph-bang/internal/morph"
)

type stubSniffer struct {
	mime    string
	mimeErr error
	ext     string
	extErr  error
}

func (s stubSniffer) MIMEType(context.Context, string) (string, error) { return s.mime, s.mimeErr }
func (s stubSniffer) Extension(context.Context, string) (string, error) {
	return s.ext, s.extErr
}

func TestClassifier_DetectSourceExt(t *testing.T) {
	tests := []struct {
		name    string
		sniffer stubSniffer
		want    string
	}{
		{"first candidate of list", stubSniffer{mime: "image/jpeg", ext: "jpeg/jpg/jpe/jfif"}, "jpeg"},
		{"lower-cased", stubSniffer{mime: "image/png", ext: "PNG"}, "png"},
		{"trims whitespace", stubSniffer{mime: "image/png", ext: " png\n"}, "png"},
		{"unknown guess falls back to mime", stubSniffer{mime: "text/plain", ext: "???"}, "md"},
		{"empty guess falls back to mime", stubSniffer{mime: "application/pdf", ext: ""}, "pdf"},
		{"guess error falls back to mime", stubSniffer{mime: "audio/mpeg", extErr: errors.New("boom")}, "mp3"},
		{"nothing fits", stubSniffer{mime: "application/octet-stream", ext: "???"}, ""},
		{"both fail", stubSniffer{mimeErr: errors.New("boom"), extErr: errors.New("boom")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := morph.NewClassifier(tt.sniffer)
			if got := c.DetectSourceExt(context.Background(), "/x"); got != tt.want {
				t.Errorf("DetectSourceExt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifier_DetectMIME(t *testing.T) {
	t.Run("trims output", func(t *testing.T) {
		c := morph.NewClassifier(stubSniffer{mime: "image/png\n"})
		got, err := c.DetectMIME(context.Background(), "/x")
		if err != nil {
			t.Fatalf("DetectMIME() error = %v", err)
		}
		if got != "image/png" {
			t.Errorf("DetectMIME() = %q, want image/png", got)
		}
	})

	t.Run("wraps sniffer failure", func(t *testing.T) {
		cause := &morph.ToolError{Tool: "file", Detail: "not found"}
		c := morph.NewClassifier(stubSniffer{mimeErr: cause})
		_, err := c.DetectMIME(context.Background(), "/x")
		var te *morph.ToolError
		if !errors.As(err, &te) {
			t.Fatalf("expected *ToolError in chain, got %v", err)
		}
	})
}
