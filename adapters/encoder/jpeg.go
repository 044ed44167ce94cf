// Package encoder provides Encoder implementations for the supported target
// formats.
package encoder

import (
	"context"
	"image/jpeg"

	"github.com/iconforge/iconforge/core"
	apperrors "github.com/iconforge/iconforge/errors"
	"github.com/iconforge/iconforge/utils"
)

// JPEG encodes images to JPEG format using the standard library.
type JPEG struct {
	DefaultQuality int // used when EncodeOptions.Quality == 0
}

func NewJPEG(defaultQuality int) *JPEG {
	if defaultQuality <= 0 {
		defaultQuality = 85
	}
	return &JPEG{DefaultQuality: defaultQuality}
}

func (j *JPEG) CanEncode(format core.Format) bool {
	return format == core.FormatJPEG
}

func (j *JPEG) Encode(ctx context.Context, r *core.Raster, opts core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "jpeg.encode", err)
	}
	if r == nil || r.Image == nil {
		return nil, apperrors.New(apperrors.CategoryEncode, "jpeg.encode", apperrors.ErrEmptyInput)
	}

	quality := opts.Quality
	if quality <= 0 {
		quality = j.DefaultQuality
	}
	quality = core.ClampQuality(quality)

	buf := utils.AcquireBuffer()
	defer utils.ReleaseBuffer(buf)
	if err := jpeg.Encode(buf, r.Image, &jpeg.Options{Quality: quality}); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "jpeg.encode", err)
	}
	return utils.CloneBytes(buf.Bytes()), nil
}
