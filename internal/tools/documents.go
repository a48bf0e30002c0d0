package tools

import "context"

// PandocConverter converts documents with pandoc. PDF output goes through the
// configured LaTeX engine; other outputs render math with MathJax.
type PandocConverter struct {
	runner    *Runner
	pdfEngine string
}

func NewPandocConverter(runner *Runner, pdfEngine string) *PandocConverter {
	if pdfEngine == "" {
		pdfEngine = "xelatex"
	}
	return &PandocConverter{runner: runner, pdfEngine: pdfEngine}
}

func (p *PandocConverter) Convert(ctx context.Context, from, in, out, targetExt string) error {
	args := []string{"-f", from, in, "-s"}
	if targetExt == "pdf" {
		args = append(args, "--pdf-engine="+p.pdfEngine)
	} else {
		args = append(args, "--mathjax")
	}
	args = append(args, "-o", out)
	return p.runner.Run(ctx, "pandoc", args...)
}
