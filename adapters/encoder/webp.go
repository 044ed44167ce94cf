package encoder

import (
	"context"

	"github.com/chai2010/webp"

	"github.com/iconforge/iconforge/core"
	apperrors "github.com/iconforge/iconforge/errors"
	"github.com/iconforge/iconforge/utils"
)

// WebP encodes images to lossy WebP via chai2010/webp (bundled libwebp).
type WebP struct {
	DefaultQuality int
}

func NewWebP(defaultQuality int) *WebP {
	if defaultQuality <= 0 {
		defaultQuality = 85
	}
	return &WebP{DefaultQuality: defaultQuality}
}

func (w *WebP) CanEncode(format core.Format) bool { return format == core.FormatWebP }

func (w *WebP) Encode(ctx context.Context, r *core.Raster, opts core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "webp.encode", err)
	}
	if r == nil || r.Image == nil {
		return nil, apperrors.New(apperrors.CategoryEncode, "webp.encode", apperrors.ErrEmptyInput)
	}

	quality := opts.Quality
	if quality <= 0 {
		quality = w.DefaultQuality
	}
	quality = core.ClampQuality(quality)

	buf := utils.AcquireBuffer()
	defer utils.ReleaseBuffer(buf)
	if err := webp.Encode(buf, r.Image, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "webp.encode", err)
	}
	return utils.CloneBytes(buf.Bytes()), nil
}
