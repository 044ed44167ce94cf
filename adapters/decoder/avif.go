package decoder

import (
	"context"
	"io"

	"github.com/gen2brain/avif"

	"github.com/iconforge/iconforge/core"
	apperrors "github.com/iconforge/iconforge/errors"
)

// AVIF decodes AVIF images with gen2brain/avif (libavif compiled to WASM, no
// cgo or system dependency).
type AVIF struct{}

func NewAVIF() *AVIF { return &AVIF{} }

func (d *AVIF) CanDecode(format core.Format) bool {
	return format == core.FormatAVIF
}

func (d *AVIF) Decode(ctx context.Context, r io.Reader) (*core.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "avif.decode", err)
	}
	img, err := avif.Decode(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "avif.decode", err)
	}
	return core.FromImage(img, core.FormatAVIF), nil
}
