package morph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// folderInput is an eligible immediate child of an aggregated directory.
type folderInput struct {
	path      string
	mime      string
	sourceExt string
}

// aggregateFolder renders every eligible child of the directory to a PDF page set,
// merges them in name order and replaces the directory with the merged document.
// An empty input set is silently ignored.
func (s *Service) aggregateFolder(ctx context.Context, ev *event, owner Owner) (Action, error) {
	inputs, err := s.gatherFolderInputs(ctx, ev.path)
	if err != nil {
		return ActionFailed, err
	}
	if len(inputs) == 0 {
		return ActionIgnored, nil
	}

	dir := filepath.Dir(ev.destination)
	stem := strings.TrimSuffix(filepath.Base(ev.destination), ".pdf")
	id := shortID(s.idgen.New())
	pagesDir := filepath.Join(dir, fmt.Sprintf(".%s.morph-pages-%s", stem, id))
	merged := filepath.Join(dir, fmt.Sprintf(".%s.morph-%s.pdf", stem, id))
	defer os.RemoveAll(pagesDir)
	defer os.Remove(merged)

	if err := os.MkdirAll(pagesDir, 0700); err != nil {
		return ActionFailed, fmt.Errorf("creating page workspace: %w", err)
	}

	s.notify(ctx, owner.UID, fmt.Sprintf("Creating PDF from %d files", len(inputs)))

	pages := make([]string, 0, len(inputs))
	for i, in := range inputs {
		page := filepath.Join(pagesDir, fmt.Sprintf("%04d.pdf", i+1))
		if strings.HasPrefix(in.mime, "image/") {
			err = s.tools.Rasterizer.PDFPage(ctx, in.path, page)
		} else {
			err = s.tools.Documents.Convert(ctx, DocumentReader(in.sourceExt), in.path, page, "pdf")
		}
		if err != nil {
			return ActionFailed, fmt.Errorf("rendering %s: %w", in.path, err)
		}
		pages = append(pages, page)
	}

	if err := s.tools.PDF.Merge(ctx, pages, merged); err != nil {
		return ActionFailed, fmt.Errorf("merging pages: %w", err)
	}

	aggregated := Owner{UID: owner.UID, GID: owner.GID, Mode: 0644}
	if err := aggregated.Apply(s.fsmgr, merged, true); err != nil {
		return ActionFailed, err
	}
	// The source directory goes only once the merged document is in place.
	if err := os.Rename(merged, ev.destination); err != nil {
		return ActionFailed, fmt.Errorf("placing merged pdf: %w", err)
	}
	if err := os.RemoveAll(ev.path); err != nil {
		s.logger.Warn("removing source directory failed", "path", ev.path, "error", err)
	}
	return ActionAggregated, nil
}

// gatherFolderInputs returns the immediate child files that are images or
// supported documents, in name order.
func (s *Service) gatherFolderInputs(ctx context.Context, dir string) ([]folderInput, error) {
	files, err := s.fsmgr.ListFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("listing folder inputs: %w", err)
	}

	var inputs []folderInput
	for _, path := range files {
		mime, err := s.classifier.DetectMIME(ctx, path)
		if err != nil {
			s.logger.Debug("skipping unclassifiable folder input", "path", path, "error", err)
			continue
		}
		sourceExt := s.classifier.DetectSourceExt(ctx, path)
		if !strings.HasPrefix(mime, "image/") && !IsFolderDocInput(sourceExt) {
			continue
		}
		inputs = append(inputs, folderInput{path: path, mime: mime, sourceExt: sourceExt})
	}
	return inputs, nil
}
