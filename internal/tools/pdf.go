package tools

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"
)

// PopplerPDF counts pages with pdfinfo and merges with pdfunite.
type PopplerPDF struct {
	runner *Runner
}

func NewPopplerPDF(runner *Runner) *PopplerPDF {
	return &PopplerPDF{runner: runner}
}

func (p *PopplerPDF) PageCount(ctx context.Context, path string) (int, error) {
	out, err := p.runner.Output(ctx, "pdfinfo", path)
	if err != nil {
		return 0, err
	}
	return parsePageCount(out)
}

func (p *PopplerPDF) Merge(ctx context.Context, pages []string, out string) error {
	if len(pages) == 0 {
		return fmt.Errorf("no pages to merge")
	}
	args := append(append([]string{}, pages...), out)
	return p.runner.Run(ctx, "pdfunite", args...)
}

// parsePageCount reads the "Pages:" line of pdfinfo output.
func parsePageCount(info string) (int, error) {
	scanner := bufio.NewScanner(strings.NewReader(info))
	for scanner.Scan() {
		rest, ok := strings.CutPrefix(scanner.Text(), "Pages:")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return 0, fmt.Errorf("parsing page count %q: %w", rest, err)
		}
		return n, nil
	}
	return 0, fmt.Errorf("pdfinfo output has no page count")
}
