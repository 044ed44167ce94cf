// Package decoder provides Decoder implementations for the supported source
// formats.
package decoder

import (
	"context"
	"io"

	"github.com/disintegration/imaging"

	"github.com/iconforge/iconforge/core"
	apperrors "github.com/iconforge/iconforge/errors"
)

// Imaging decodes the formats the imaging library registers out of the box:
// JPEG, PNG, GIF, BMP, and TIFF.
type Imaging struct{}

func NewImaging() *Imaging { return &Imaging{} }

func (d *Imaging) CanDecode(format core.Format) bool {
	switch format {
	case core.FormatJPEG, core.FormatPNG, core.FormatGIF, core.FormatBMP, core.FormatTIFF:
		return true
	}
	return false
}

func (d *Imaging) Decode(ctx context.Context, r io.Reader) (*core.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "imaging.decode", err)
	}
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "imaging.decode", err)
	}
	return core.FromImage(img, core.FormatUnknown), nil
}
