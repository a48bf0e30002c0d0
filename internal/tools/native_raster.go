package tools

import (
	"context"

	"github.com/disintegration/imaging"

	"morph-bang/internal/morph"
)

// NativeRasterizer converts between the raster formats the imaging package can
// decode and encode (JPEG, PNG, GIF, TIFF, BMP) in-process. Everything else,
// including vector sources and page rendering, goes to the fallback.
type NativeRasterizer struct {
	fallback morph.Rasterizer
}

func NewNativeRasterizer(fallback morph.Rasterizer) *NativeRasterizer {
	return &NativeRasterizer{fallback: fallback}
}

func (n *NativeRasterizer) Convert(ctx context.Context, in, out string) error {
	if _, err := imaging.FormatFromFilename(out); err != nil {
		return n.fallback.Convert(ctx, in, out)
	}
	img, err := imaging.Open(in, imaging.AutoOrientation(true))
	if err != nil {
		return n.fallback.Convert(ctx, in, out)
	}
	if err := imaging.Save(img, out); err != nil {
		return &morph.ToolError{Tool: "imaging", Detail: err.Error(), Err: err}
	}
	return nil
}

func (n *NativeRasterizer) Rasterize(ctx context.Context, in, out string) error {
	return n.fallback.Rasterize(ctx, in, out)
}

func (n *NativeRasterizer) RenderPage(ctx context.Context, in string, page int, out string) error {
	return n.fallback.RenderPage(ctx, in, page, out)
}

func (n *NativeRasterizer) PDFPage(ctx context.Context, in, out string) error {
	return n.fallback.PDFPage(ctx, in, out)
}
