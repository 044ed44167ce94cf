package encoder

import (
	"context"
	"image/png"

	"github.com/iconforge/iconforge/core"
	apperrors "github.com/iconforge/iconforge/errors"
	"github.com/iconforge/iconforge/utils"
)

// PNG encodes images to PNG format.  PNG is lossless, so the 1-100 quality
// value is reinterpreted as compression effort: quality 100 maps to level 0
// (no compression, fastest, largest) and quality 1 to level 9.  The 0-9 level
// is then bucketed onto the standard library's encoder levels.
type PNG struct{}

func NewPNG() *PNG { return &PNG{} }

func (p *PNG) CanEncode(format core.Format) bool { return format == core.FormatPNG }

func (p *PNG) Encode(ctx context.Context, r *core.Raster, opts core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "png.encode", err)
	}
	if r == nil || r.Image == nil {
		return nil, apperrors.New(apperrors.CategoryEncode, "png.encode", apperrors.ErrEmptyInput)
	}

	enc := &png.Encoder{CompressionLevel: compressionLevel(opts.Quality)}

	buf := utils.AcquireBuffer()
	defer utils.ReleaseBuffer(buf)
	if err := enc.Encode(buf, r.Image); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "png.encode", err)
	}
	return utils.CloneBytes(buf.Bytes()), nil
}

func compressionLevel(quality int) png.CompressionLevel {
	if quality <= 0 {
		return png.DefaultCompression
	}
	switch level := utils.PNGLevel(core.ClampQuality(quality)); {
	case level == 0:
		return png.NoCompression
	case level <= 3:
		return png.BestSpeed
	case level <= 6:
		return png.DefaultCompression
	default:
		return png.BestCompression
	}
}
