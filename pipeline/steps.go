package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/iconforge/iconforge/core"
	apperrors "github.com/iconforge/iconforge/errors"
	"github.com/iconforge/iconforge/utils"
)

// ── Clone ─────────────────────────────────────────────────────────────────────

// CloneStep deep-copies the raster so the task owns its pixels exclusively.
// A batch sharing one decoded source across concurrent tasks must put this
// step first: the original is never mutated after decode.
type CloneStep struct{}

func (s *CloneStep) Name() string { return "clone" }

func (s *CloneStep) Execute(ctx context.Context, r *core.Raster) (*core.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryTask, s.Name(), err)
	}
	if r == nil || r.Image == nil {
		return nil, apperrors.New(apperrors.CategoryTask, s.Name(), apperrors.ErrEmptyInput)
	}
	out := *r
	out.Image = imaging.Clone(r.Image)
	return &out, nil
}

// ── Square resize ─────────────────────────────────────────────────────────────

// SquareStep resizes to an exact Size×Size square with Lanczos resampling.
type SquareStep struct {
	Size int
}

func (s *SquareStep) Name() string { return "square" }

func (s *SquareStep) Execute(ctx context.Context, r *core.Raster) (*core.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryTask, s.Name(), err)
	}
	if r == nil || r.Image == nil {
		return nil, apperrors.New(apperrors.CategoryTask, s.Name(), apperrors.ErrEmptyInput)
	}
	if s.Size <= 0 {
		return nil, apperrors.Newf(apperrors.CategoryTask, s.Name(),
			"%w: %d", apperrors.ErrInvalidDimensions, s.Size)
	}
	out := *r
	out.Image = imaging.Resize(r.Image, s.Size, s.Size, imaging.Lanczos)
	return &out, nil
}

// ── Fit resize ────────────────────────────────────────────────────────────────

// FitStep resizes to the target box.  With KeepAspect set, the fixed axis is
// chosen by source orientation (landscape keeps width, everything else keeps
// height) and the other axis is derived from the aspect ratio; without it the
// target dimensions are applied verbatim.
type FitStep struct {
	Width, Height int
	KeepAspect    bool
}

func (s *FitStep) Name() string { return "fit" }

func (s *FitStep) Execute(ctx context.Context, r *core.Raster) (*core.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryTask, s.Name(), err)
	}
	if r == nil || r.Image == nil {
		return nil, apperrors.New(apperrors.CategoryTask, s.Name(), apperrors.ErrEmptyInput)
	}
	w, h := utils.FitDimensions(r.Width(), r.Height(), s.Width, s.Height, s.KeepAspect)
	if w <= 0 || h <= 0 {
		return nil, apperrors.Newf(apperrors.CategoryTask, s.Name(),
			"%w: %dx%d", apperrors.ErrInvalidDimensions, w, h)
	}
	if w == r.Width() && h == r.Height() {
		return r, nil // nothing to do
	}
	out := *r
	out.Image = imaging.Resize(r.Image, w, h, imaging.Lanczos)
	return &out, nil
}

// ── Color-mode normalization ──────────────────────────────────────────────────

// DropAlphaStep converts a 4-channel raster to 3-channel semantics before
// encoding to a format that forbids an alpha channel: the color values are
// kept and the alpha plane is forced opaque.
type DropAlphaStep struct{}

func (s *DropAlphaStep) Name() string { return "drop_alpha" }

func (s *DropAlphaStep) Execute(ctx context.Context, r *core.Raster) (*core.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryTask, s.Name(), err)
	}
	if r == nil || r.Image == nil {
		return nil, apperrors.New(apperrors.CategoryTask, s.Name(), apperrors.ErrEmptyInput)
	}
	flat := imaging.Clone(r.Image)
	for i := 3; i < len(flat.Pix); i += 4 {
		flat.Pix[i] = 0xFF
	}
	out := *r
	out.Image = flat
	return &out, nil
}

// ── Padding / cropping for codec alignment ────────────────────────────────────

// PadStep grows the canvas so both dimensions are multiples of Multiple,
// pasting the source at the origin.  The fill is magenta so stray padding is
// unmissable if a later crop is skipped.
type PadStep struct {
	Multiple int
}

func (s *PadStep) Name() string { return "pad" }

func (s *PadStep) Execute(ctx context.Context, r *core.Raster) (*core.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryTask, s.Name(), err)
	}
	if r == nil || r.Image == nil {
		return nil, apperrors.New(apperrors.CategoryTask, s.Name(), apperrors.ErrEmptyInput)
	}
	w, h := r.Width(), r.Height()
	pw, ph := utils.AlignUp(w, s.Multiple), utils.AlignUp(h, s.Multiple)
	if pw == w && ph == h {
		return r, nil
	}
	canvas := imaging.New(pw, ph, color.NRGBA{R: 255, G: 0, B: 255, A: 255})
	out := *r
	out.Image = imaging.Paste(canvas, r.Image, image.Pt(0, 0))
	return &out, nil
}

// CropToStep crops the raster back to Width×Height from the origin, undoing a
// prior PadStep.
type CropToStep struct {
	Width, Height int
}

func (s *CropToStep) Name() string { return "crop_to" }

func (s *CropToStep) Execute(ctx context.Context, r *core.Raster) (*core.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryTask, s.Name(), err)
	}
	if r == nil || r.Image == nil {
		return nil, apperrors.New(apperrors.CategoryTask, s.Name(), apperrors.ErrEmptyInput)
	}
	if s.Width > r.Width() || s.Height > r.Height() {
		return nil, apperrors.Newf(apperrors.CategoryTask, s.Name(),
			"crop %dx%d exceeds raster %dx%d", s.Width, s.Height, r.Width(), r.Height())
	}
	out := *r
	out.Image = imaging.Crop(r.Image, image.Rect(0, 0, s.Width, s.Height))
	return &out, nil
}

// ── Encode ────────────────────────────────────────────────────────────────────

// EncodeStep serialises the raster into encoded bytes using the registry.
type EncodeStep struct {
	Registry core.Registry
	Format   core.Format
	Quality  int
}

func (s *EncodeStep) Name() string { return "encode" }

func (s *EncodeStep) Execute(ctx context.Context, r *core.Raster) (*core.Raster, error) {
	enc, ok := s.Registry.EncoderFor(s.Format)
	if !ok {
		return nil, apperrors.New(apperrors.CategoryEncode, s.Name(),
			fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, s.Format))
	}
	data, err := enc.Encode(ctx, r, core.EncodeOptions{Quality: s.Quality})
	if err != nil {
		return nil, err
	}
	out := *r
	out.Data = data
	out.Format = s.Format
	return &out, nil
}
