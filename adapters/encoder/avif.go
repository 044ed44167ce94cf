package encoder

import (
	"context"

	"github.com/gen2brain/avif"

	"github.com/iconforge/iconforge/core"
	apperrors "github.com/iconforge/iconforge/errors"
	"github.com/iconforge/iconforge/utils"
)

// AVIF encodes images with gen2brain/avif (libavif/libaom compiled to WASM).
// The encoder expects dimensions already aligned to the codec's block size;
// callers pad and crop around it (see the conversion task).
type AVIF struct {
	DefaultQuality int
	Speed          int // 0 (slowest, best) to 10; 0 value defaults to 8
}

func NewAVIF(defaultQuality int) *AVIF {
	if defaultQuality <= 0 {
		defaultQuality = 60
	}
	return &AVIF{DefaultQuality: defaultQuality, Speed: 8}
}

func (a *AVIF) CanEncode(format core.Format) bool { return format == core.FormatAVIF }

func (a *AVIF) Encode(ctx context.Context, r *core.Raster, opts core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "avif.encode", err)
	}
	if r == nil || r.Image == nil {
		return nil, apperrors.New(apperrors.CategoryEncode, "avif.encode", apperrors.ErrEmptyInput)
	}

	quality := opts.Quality
	if quality <= 0 {
		quality = a.DefaultQuality
	}
	quality = core.ClampQuality(quality)

	speed := a.Speed
	if speed <= 0 {
		speed = 8
	}

	buf := utils.AcquireBuffer()
	defer utils.ReleaseBuffer(buf)
	if err := avif.Encode(buf, r.Image, avif.Options{Quality: quality, Speed: speed}); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "avif.encode", err)
	}
	return utils.CloneBytes(buf.Bytes()), nil
}
