package encoder

import (
	"context"

	ico "github.com/biessek/golang-ico"

	"github.com/iconforge/iconforge/core"
	apperrors "github.com/iconforge/iconforge/errors"
	"github.com/iconforge/iconforge/utils"
)

// ICO encodes a single image into an ICO icon container.  Used for the
// favicon artifact of icon-set jobs; quality has no meaning for the format
// and is ignored.
type ICO struct{}

func NewICO() *ICO { return &ICO{} }

func (i *ICO) CanEncode(format core.Format) bool { return format == core.FormatICO }

func (i *ICO) Encode(ctx context.Context, r *core.Raster, _ core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "ico.encode", err)
	}
	if r == nil || r.Image == nil {
		return nil, apperrors.New(apperrors.CategoryEncode, "ico.encode", apperrors.ErrEmptyInput)
	}

	buf := utils.AcquireBuffer()
	defer utils.ReleaseBuffer(buf)
	if err := ico.Encode(buf, r.Image); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "ico.encode", err)
	}
	return utils.CloneBytes(buf.Bytes()), nil
}
