package tools

import (
	"context"
	"fmt"

	"morph-bang/internal/morph"
)

// VipsRasterizer drives vips for conversions and ImageMagick for PDF pages.
type VipsRasterizer struct {
	runner *Runner
	dpi    int
}

func NewVipsRasterizer(runner *Runner, dpi int) *VipsRasterizer {
	return &VipsRasterizer{runner: runner, dpi: dpi}
}

func (v *VipsRasterizer) Convert(ctx context.Context, in, out string) error {
	return v.runner.Run(ctx, "vips", "copy", in, out)
}

// Rasterize loads in at the configured DPI and twice the scale.
func (v *VipsRasterizer) Rasterize(ctx context.Context, in, out string) error {
	return v.runner.Run(ctx, "vips", "copy", fmt.Sprintf("%s[dpi=%d,scale=2]", in, v.dpi), out)
}

func (v *VipsRasterizer) RenderPage(ctx context.Context, in string, page int, out string) error {
	return v.runner.Run(ctx, "vips", "copy", fmt.Sprintf("%s[dpi=%d,page=%d]", in, v.dpi, page), out)
}

func (v *VipsRasterizer) PDFPage(ctx context.Context, in, out string) error {
	return v.runner.Run(ctx, "magick", in, out)
}

// NewRasterizer returns the rasterizer named by kind.
func NewRasterizer(kind string, runner *Runner, dpi int) (morph.Rasterizer, error) {
	vips := NewVipsRasterizer(runner, dpi)
	switch kind {
	case "vips", "":
		return vips, nil
	case "native":
		return NewNativeRasterizer(vips), nil
	default:
		return nil, fmt.Errorf("unknown rasterizer type: %q", kind)
	}
}
