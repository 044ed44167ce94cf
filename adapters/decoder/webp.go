package decoder

import (
	"context"
	"io"

	"golang.org/x/image/webp"

	"github.com/iconforge/iconforge/core"
	apperrors "github.com/iconforge/iconforge/errors"
)

// WebP decodes WebP images using golang.org/x/image/webp.
// NOTE: x/image/webp does not handle animated WebP; the first frame of an
// animation decodes as a plain still.
type WebP struct{}

func NewWebP() *WebP { return &WebP{} }

func (d *WebP) CanDecode(format core.Format) bool {
	return format == core.FormatWebP
}

func (d *WebP) Decode(ctx context.Context, r io.Reader) (*core.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "webp.decode", err)
	}
	img, err := webp.Decode(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "webp.decode", err)
	}
	return core.FromImage(img, core.FormatWebP), nil
}
