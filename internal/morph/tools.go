package morph

import "context"

// The interfaces below wrap the external collaborators, one method per capability.
// Every call blocks until the tool exits; implementations bound each invocation
// with a timeout and report failures as *ToolError.

// Sniffer detects content types independently of a file's name.
type Sniffer interface {
	// MIMEType returns the content type of path, e.g. "image/png".
	MIMEType(ctx context.Context, path string) (string, error)

	// Extension returns the raw extension guess, e.g. "jpeg/jpg/jpe/jfif" or "???".
	Extension(ctx context.Context, path string) (string, error)
}

// Rasterizer converts between image, vector and PDF formats.
type Rasterizer interface {
	// Convert copies in to out, converting by the output extension.
	Convert(ctx context.Context, in, out string) error

	// Rasterize renders a vector or multi-page source at the fixed DPI and scale.
	Rasterize(ctx context.Context, in, out string) error

	// RenderPage renders the zero-based page of in at the fixed DPI.
	RenderPage(ctx context.Context, in string, page int, out string) error

	// PDFPage renders a single raster image as a one-page PDF.
	PDFPage(ctx context.Context, in, out string) error
}

// Transcoder converts audio and video containers.
type Transcoder interface {
	// Remux copies all streams into the output container without re-encoding.
	Remux(ctx context.Context, in, out string) error

	// Transcode fully re-encodes in into out.
	Transcode(ctx context.Context, in, out string) error
}

// DocumentConverter converts between markup, office and ebook formats.
type DocumentConverter interface {
	// Convert reads in as format from and writes out as targetExt.
	Convert(ctx context.Context, from, in, out, targetExt string) error
}

// PDFTool counts and merges PDF pages.
type PDFTool interface {
	PageCount(ctx context.Context, path string) (int, error)
	Merge(ctx context.Context, pages []string, out string) error
}

// Archiver packs a directory into a single archive file.
type Archiver interface {
	// ArchiveDir archives parent/name into archive, keeping name as the top-level entry.
	ArchiveDir(ctx context.Context, parent, name, archive string) error
}

// IdentityResolver maps a uid to its account.
type IdentityResolver interface {
	Username(uid uint32) (string, error)
	HomeDir(uid uint32) (string, error)
}

// Notifier delivers a desktop notification to the session of uid. It is
// best-effort: failures are swallowed by the implementation.
type Notifier interface {
	Notify(ctx context.Context, uid uint32, body string)
}

// Toolset groups the collaborators the dispatcher invokes directly.
type Toolset struct {
	Sniffer    Sniffer
	Rasterizer Rasterizer
	Transcoder Transcoder
	Documents  DocumentConverter
	PDF        PDFTool
	Notifier   Notifier
}
