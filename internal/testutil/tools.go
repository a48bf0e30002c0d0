package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"morph-bang/internal/morph"
)

// Fixture contents recognised by FakeSniffer. Tests write these as file
// bodies so classification follows content, never the name.
const (
	PNGContent      = "PNG fixture"
	JPEGContent     = "JPEG fixture"
	SVGContent      = "SVG fixture"
	PDFContent      = "PDF fixture"
	MarkdownContent = "# markdown fixture"
	DOCXContent     = "DOCX fixture"
	MKVContent      = "MKV fixture"
	MP3Content      = "MP3 fixture"
	BinaryContent   = "\x00\x01 binary fixture"
)

type sniffResult struct {
	mime string
	ext  string
}

var fixtureTypes = map[string]sniffResult{
	PNGContent:      {"image/png", "png"},
	JPEGContent:     {"image/jpeg", "jpeg/jpg/jpe/jfif"},
	SVGContent:      {"image/svg+xml", "svg"},
	PDFContent:      {"application/pdf", "pdf"},
	MarkdownContent: {"text/plain", "???"},
	DOCXContent:     {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "docx"},
	MKVContent:      {"video/x-matroska", "mkv"},
	MP3Content:      {"audio/mpeg", "mp3"},
	BinaryContent:   {"application/octet-stream", "???"},
}

// FakeSniffer classifies fixture files by their exact content. Unknown
// content is reported as application/octet-stream.
type FakeSniffer struct {
	// Err, when set, is returned by every call.
	Err error
}

func (s *FakeSniffer) lookup(path string) (sniffResult, error) {
	if s.Err != nil {
		return sniffResult{}, s.Err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return sniffResult{}, err
	}
	if r, ok := fixtureTypes[string(data)]; ok {
		return r, nil
	}
	return sniffResult{"application/octet-stream", "???"}, nil
}

func (s *FakeSniffer) MIMEType(_ context.Context, path string) (string, error) {
	r, err := s.lookup(path)
	return r.mime, err
}

func (s *FakeSniffer) Extension(_ context.Context, path string) (string, error) {
	r, err := s.lookup(path)
	return r.ext, err
}

// CallLog records tool invocations as space-joined strings, e.g. "convert in out".
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *CallLog) add(parts ...string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, strings.Join(parts, " "))
}

// Calls returns the recorded invocations in order.
func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// Count returns how many recorded invocations start with verb.
func (l *CallLog) Count(verb string) int {
	n := 0
	for _, c := range l.Calls() {
		if c == verb || strings.HasPrefix(c, verb+" ") {
			n++
		}
	}
	return n
}

// writeOutput writes a deterministic body describing the conversion.
func writeOutput(out, verb, in string) error {
	return os.WriteFile(out, []byte(fmt.Sprintf("%s(%s)", verb, filepath.Base(in))), 0600)
}

// FakeRasterizer writes "<verb>(<input name>)" to each output.
type FakeRasterizer struct {
	CallLog
	ConvertErr   error
	RasterizeErr error
	// PageErrs maps zero-based page numbers to render failures.
	PageErrs map[int]error
}

func (r *FakeRasterizer) Convert(_ context.Context, in, out string) error {
	r.add("convert", in, out)
	if r.ConvertErr != nil {
		return r.ConvertErr
	}
	return writeOutput(out, "convert", in)
}

func (r *FakeRasterizer) Rasterize(_ context.Context, in, out string) error {
	r.add("rasterize", in, out)
	if r.RasterizeErr != nil {
		return r.RasterizeErr
	}
	return writeOutput(out, "rasterize", in)
}

func (r *FakeRasterizer) RenderPage(_ context.Context, in string, page int, out string) error {
	r.add("page", in, fmt.Sprint(page), out)
	if err := r.PageErrs[page]; err != nil {
		return err
	}
	return writeOutput(out, fmt.Sprintf("page%d", page), in)
}

func (r *FakeRasterizer) PDFPage(_ context.Context, in, out string) error {
	r.add("pdfpage", in, out)
	if r.ConvertErr != nil {
		return r.ConvertErr
	}
	return writeOutput(out, "pdfpage", in)
}

// FakeTranscoder writes "remux(...)" or "transcode(...)".
type FakeTranscoder struct {
	CallLog
	RemuxErr     error
	TranscodeErr error
}

func (t *FakeTranscoder) Remux(_ context.Context, in, out string) error {
	t.add("remux", in, out)
	if t.RemuxErr != nil {
		return t.RemuxErr
	}
	return writeOutput(out, "remux", in)
}

func (t *FakeTranscoder) Transcode(_ context.Context, in, out string) error {
	t.add("transcode", in, out)
	if t.TranscodeErr != nil {
		return t.TranscodeErr
	}
	return writeOutput(out, "transcode", in)
}

// FakeDocuments writes "<from>-><target>(<input name>)".
type FakeDocuments struct {
	CallLog
	Err error
}

func (d *FakeDocuments) Convert(_ context.Context, from, in, out, targetExt string) error {
	d.add("convert", from, in, out, targetExt)
	if d.Err != nil {
		return d.Err
	}
	return writeOutput(out, from+"->"+targetExt, in)
}

// FakePDF reports a fixed page count and merges by concatenating page bodies
// separated by newlines.
type FakePDF struct {
	CallLog
	Pages    int
	CountErr error
	MergeErr error
}

func (p *FakePDF) PageCount(_ context.Context, path string) (int, error) {
	p.add("count", path)
	if p.CountErr != nil {
		return 0, p.CountErr
	}
	if p.Pages == 0 {
		return 1, nil
	}
	return p.Pages, nil
}

func (p *FakePDF) Merge(_ context.Context, pages []string, out string) error {
	p.add(append([]string{"merge"}, append(pages, out)...)...)
	if p.MergeErr != nil {
		return p.MergeErr
	}
	var buf bytes.Buffer
	for i, page := range pages {
		data, err := os.ReadFile(page)
		if err != nil {
			return err
		}
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.Write(data)
	}
	return os.WriteFile(out, buf.Bytes(), 0600)
}

// FakeArchiver writes "archive(<name>)" instead of a real tarball.
type FakeArchiver struct {
	CallLog
	Err error
}

func (a *FakeArchiver) ArchiveDir(_ context.Context, parent, name, archive string) error {
	a.add("archive", parent, name, archive)
	if a.Err != nil {
		return a.Err
	}
	return os.WriteFile(archive, []byte("archive("+name+")"), 0600)
}

// StaticIdentity resolves every uid to the same account.
type StaticIdentity struct {
	Name string
	Home string
	Err  error
}

func (s StaticIdentity) Username(uint32) (string, error) { return s.Name, s.Err }
func (s StaticIdentity) HomeDir(uint32) (string, error)  { return s.Home, s.Err }

// Notification is one delivered desktop notification.
type Notification struct {
	UID  uint32
	Body string
}

// RecordingNotifier keeps every notification it receives.
type RecordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

func (n *RecordingNotifier) Notify(_ context.Context, uid uint32, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, Notification{UID: uid, Body: body})
}

// Bodies returns the notification bodies in delivery order.
func (n *RecordingNotifier) Bodies() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	bodies := make([]string, len(n.items))
	for i, item := range n.items {
		bodies[i] = item.Body
	}
	return bodies
}

// RecordingRecorder keeps every event record it receives.
type RecordingRecorder struct {
	mu      sync.Mutex
	records []morph.EventRecord
}

func (r *RecordingRecorder) Record(_ context.Context, rec morph.EventRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// Records returns the received records in order.
func (r *RecordingRecorder) Records() []morph.EventRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]morph.EventRecord(nil), r.records...)
}

// Tools bundles fakes for every collaborator.
type Tools struct {
	Sniffer    *FakeSniffer
	Rasterizer *FakeRasterizer
	Transcoder *FakeTranscoder
	Documents  *FakeDocuments
	PDF        *FakePDF
	Archiver   *FakeArchiver
	Notifier   *RecordingNotifier
}

// NewTools creates a fresh set of fakes.
func NewTools() *Tools {
	return &Tools{
		Sniffer:    &FakeSniffer{},
		Rasterizer: &FakeRasterizer{},
		Transcoder: &FakeTranscoder{},
		Documents:  &FakeDocuments{},
		PDF:        &FakePDF{},
		Archiver:   &FakeArchiver{},
		Notifier:   &RecordingNotifier{},
	}
}

// Toolset exposes the fakes as a morph.Toolset.
func (t *Tools) Toolset() morph.Toolset {
	return morph.Toolset{
		Sniffer:    t.Sniffer,
		Rasterizer: t.Rasterizer,
		Transcoder: t.Transcoder,
		Documents:  t.Documents,
		PDF:        t.PDF,
		Notifier:   t.Notifier,
	}
}

// WriteFile writes content to path, creating parents, and fails the test on error.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}
