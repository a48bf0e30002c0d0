package morph

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Outcome tags the result of a conversion.
type Outcome int

const (
	// Replaced means the output file was written and the caller performs the replace.
	Replaced Outcome = iota
	// HandledExternally means the engine produced the final artifacts itself
	// (a page-split directory) and the caller must not rename anything.
	HandledExternally
	// Unsupported means no engine serves this source/target pairing.
	Unsupported
	// ToolFailure means an external tool failed; the original is untouched.
	ToolFailure
)

func (o Outcome) String() string {
	switch o {
	case Replaced:
		return "replaced"
	case HandledExternally:
		return "handled-externally"
	case Unsupported:
		return "unsupported"
	case ToolFailure:
		return "tool-failure"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// ConversionRequest describes a single forward conversion.
type ConversionRequest struct {
	Input     string // the triggered subject
	Output    string // temp sibling sharing the target extension
	SplitDir  string // where per-page outputs go for multi-page PDFs
	TargetExt string
	SourceExt string
	MIME      string
	Owner     Owner
}

// Engine routes a conversion to the collaborator for the source family.
type Engine struct {
	tools  Toolset
	fsmgr  FilesystemManager
	logger Logger
}

// NewEngine creates an Engine.
func NewEngine(tools Toolset, fsmgr FilesystemManager, logger Logger) *Engine {
	return &Engine{tools: tools, fsmgr: fsmgr, logger: logger}
}

// Convert runs the conversion. Errors are ErrUnsupportedConversion or wrap a *ToolError.
func (e *Engine) Convert(ctx context.Context, req ConversionRequest) (Outcome, error) {
	switch {
	case IsMediaFamily(req.MIME):
		return e.convertMedia(ctx, req)
	case IsImageFamily(req.MIME) && IsImageOutput(req.TargetExt):
		return e.convertImage(ctx, req)
	case IsDocOutput(req.TargetExt):
		return e.convertDocument(ctx, req)
	}
	return Unsupported, ErrUnsupportedConversion
}

func (e *Engine) convertImage(ctx context.Context, req ConversionRequest) (Outcome, error) {
	if req.SourceExt == "pdf" {
		pages, err := e.tools.PDF.PageCount(ctx, req.Input)
		if err != nil {
			e.logger.Debug("page count failed, treating as single page", "path", req.Input, "error", err)
			pages = 1
		}
		if pages > 1 && e.splitPages(ctx, req, pages) {
			return HandledExternally, nil
		}
	}

	if IsVectorSource(req.SourceExt) && IsRasterTarget(req.TargetExt) {
		err := e.tools.Rasterizer.Rasterize(ctx, req.Input, req.Output)
		if err == nil {
			return Replaced, nil
		}
		e.logger.Debug("vector rasterization failed, falling back to direct copy", "path", req.Input, "error", err)
	}

	if err := e.tools.Rasterizer.Convert(ctx, req.Input, req.Output); err != nil {
		return ToolFailure, toolFailure("rasterizer", err)
	}
	return Replaced, nil
}

// splitPages renders each page into SplitDir as 001.<ext>, 002.<ext>, ...
// It reports true when at least one page was produced, in which case the
// original PDF has been removed.
func (e *Engine) splitPages(ctx context.Context, req ConversionRequest, pages int) bool {
	if err := os.MkdirAll(req.SplitDir, 0755); err != nil {
		e.logger.Warn("creating page directory failed", "dir", req.SplitDir, "error", err)
		return false
	}
	if err := req.Owner.Apply(e.fsmgr, req.SplitDir, false); err != nil {
		e.logger.Warn("re-owning page directory failed", "dir", req.SplitDir, "error", err)
	}

	produced := 0
	for i := 0; i < pages; i++ {
		page := filepath.Join(req.SplitDir, fmt.Sprintf("%03d.%s", i+1, req.TargetExt))
		if err := e.tools.Rasterizer.RenderPage(ctx, req.Input, i, page); err != nil {
			e.logger.Warn("rendering page failed", "path", req.Input, "page", i+1, "error", err)
			continue
		}
		if err := req.Owner.Apply(e.fsmgr, page, true); err != nil {
			e.logger.Warn("re-owning page failed", "page", page, "error", err)
		}
		produced++
	}

	if produced == 0 {
		return false
	}
	if err := os.Remove(req.Input); err != nil && !errors.Is(err, os.ErrNotExist) {
		e.logger.Warn("removing split source failed", "path", req.Input, "error", err)
	}
	return true
}

func (e *Engine) convertMedia(ctx context.Context, req ConversionRequest) (Outcome, error) {
	err := e.tools.Transcoder.Remux(ctx, req.Input, req.Output)
	if err == nil {
		return Replaced, nil
	}
	e.logger.Debug("remux failed, re-encoding", "path", req.Input, "error", err)

	if err := e.tools.Transcoder.Transcode(ctx, req.Input, req.Output); err != nil {
		return ToolFailure, toolFailure("transcoder", err)
	}
	return Replaced, nil
}

func (e *Engine) convertDocument(ctx context.Context, req ConversionRequest) (Outcome, error) {
	from := DocumentReader(req.SourceExt)
	if err := e.tools.Documents.Convert(ctx, from, req.Input, req.Output, req.TargetExt); err != nil {
		return ToolFailure, toolFailure("document converter", err)
	}
	return Replaced, nil
}

// toolFailure keeps an existing *ToolError intact and wraps anything else in one.
func toolFailure(tool string, err error) error {
	var te *ToolError
	if errors.As(err, &te) {
		return err
	}
	return &ToolError{Tool: tool, Detail: err.Error(), Err: err}
}
