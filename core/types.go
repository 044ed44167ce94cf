package core

import (
	"context"
	"fmt"
	"image"
	"strings"

	apperrors "github.com/iconforge/iconforge/errors"
)

// Format identifies an image codec.
type Format string

const (
	FormatJPEG    Format = "jpeg"
	FormatPNG     Format = "png"
	FormatGIF     Format = "gif"
	FormatBMP     Format = "bmp"
	FormatTIFF    Format = "tiff"
	FormatWebP    Format = "webp"
	FormatAVIF    Format = "avif"
	FormatICO     Format = "ico"
	FormatUnknown Format = "unknown"
)

// Ext returns the output filename extension for the format.
func (f Format) Ext() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatPNG:
		return ".png"
	case FormatWebP:
		return ".webp"
	case FormatAVIF:
		return ".avif"
	case FormatICO:
		return ".ico"
	case FormatGIF:
		return ".gif"
	case FormatBMP:
		return ".bmp"
	case FormatTIFF:
		return ".tiff"
	}
	return ""
}

// MIME returns the MIME type for the format.
func (f Format) MIME() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	case FormatAVIF:
		return "image/avif"
	case FormatICO:
		return "image/x-icon"
	}
	return "application/octet-stream"
}

// HasAlphaChannel reports whether the format carries a fourth channel.
// Encoding to an alpha-less format requires color-mode normalization first.
func (f Format) HasAlphaChannel() bool { return f != FormatJPEG }

// ParseFormat resolves a user-facing format name ("WebP", "jpg", ...).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "webp":
		return FormatWebP, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "avif":
		return FormatAVIF, nil
	}
	return FormatUnknown, apperrors.Newf(apperrors.CategoryConfig, "parse_format",
		"%w: %q", apperrors.ErrUnsupportedFormat, s)
}

// Raster is the in-memory image representation passed through a task pipeline.
// Image holds the decoded pixel grid; Data holds encoded bytes once an encode
// step has run.
type Raster struct {
	Image  image.Image
	Data   []byte
	Format Format
}

// FromImage wraps a decoded image into a Raster.
func FromImage(img image.Image, f Format) *Raster {
	return &Raster{Image: img, Format: f}
}

// Width returns the pixel width of the decoded image.
func (r *Raster) Width() int {
	if r == nil || r.Image == nil {
		return 0
	}
	return r.Image.Bounds().Dx()
}

// Height returns the pixel height of the decoded image.
func (r *Raster) Height() int {
	if r == nil || r.Image == nil {
		return 0
	}
	return r.Image.Bounds().Dy()
}

// ── Events ────────────────────────────────────────────────────────────────────

// EventKind discriminates the events an Executor run emits.
type EventKind int

const (
	EventProgress EventKind = iota
	EventStatus
	EventError
	EventFinished
)

// Event is one entry of the progress/status stream consumed by the caller.
// Exactly one of {EventError, EventFinished} terminates a run, after which
// the channel is closed.
type Event struct {
	Kind      EventKind
	Percent   int    // EventProgress: 0-100
	Text      string // EventStatus and EventError: human-readable message
	Err       error  // EventError only
	Processed int    // EventProgress and EventFinished: completed task count
}

// ── Job descriptors ───────────────────────────────────────────────────────────

// DefaultIconSizes is the icon edge-length set generated when the caller does
// not override it.  The smallest size becomes the favicon artifact.
var DefaultIconSizes = []int{16, 72, 96, 128, 144, 152, 192, 384, 512}

// IconJob describes one icon-set generation run.  Immutable for the duration
// of the run.
type IconJob struct {
	SourcePath string
	OutputDir  string
	Sizes      []int
}

// Validate checks the descriptor invariants.  It does not touch the filesystem.
func (j IconJob) Validate() error {
	if j.SourcePath == "" {
		return apperrors.New(apperrors.CategoryConfig, "icon_job", apperrors.ErrEmptyInput)
	}
	if j.OutputDir == "" {
		return apperrors.Newf(apperrors.CategoryConfig, "icon_job", "output directory not set")
	}
	if len(j.Sizes) == 0 {
		return apperrors.New(apperrors.CategoryConfig, "icon_job", apperrors.ErrNoSizes)
	}
	for _, s := range j.Sizes {
		if s <= 0 {
			return apperrors.Newf(apperrors.CategoryConfig, "icon_job",
				"%w: size %d", apperrors.ErrInvalidDimensions, s)
		}
	}
	return nil
}

// FaviconSize returns the smallest configured size, which is emitted as the
// favicon container instead of a size-named PNG.
func (j IconJob) FaviconSize() int {
	smallest := j.Sizes[0]
	for _, s := range j.Sizes[1:] {
		if s < smallest {
			smallest = s
		}
	}
	return smallest
}

// ResizeSpec is an optional resize request attached to a conversion job.
type ResizeSpec struct {
	Width      int
	Height     int
	KeepAspect bool
}

// ConvertJob describes one batch format-conversion run.  Formats holds one or
// two target formats; with two, every source is encoded twice (dual-format
// mode).  Immutable for the duration of the run.
type ConvertJob struct {
	SourcePaths []string
	OutputDir   string
	Formats     []Format
	Quality     int // 1-100, clamped before use; semantics are format-dependent
	Resize      *ResizeSpec
}

// Validate checks the descriptor invariants against the registry's encode
// capability set.
func (j ConvertJob) Validate(reg Registry) error {
	if len(j.SourcePaths) == 0 {
		return apperrors.New(apperrors.CategoryConfig, "convert_job", apperrors.ErrNoSources)
	}
	if j.OutputDir == "" {
		return apperrors.Newf(apperrors.CategoryConfig, "convert_job", "output directory not set")
	}
	if len(j.Formats) == 0 || len(j.Formats) > 2 {
		return apperrors.Newf(apperrors.CategoryConfig, "convert_job",
			"want 1 or 2 target formats, got %d", len(j.Formats))
	}
	for _, f := range j.Formats {
		if _, ok := reg.EncoderFor(f); !ok {
			return apperrors.Newf(apperrors.CategoryConfig, "convert_job",
				"%w: %s is not available", apperrors.ErrUnsupportedFormat, f)
		}
	}
	if j.Resize != nil && (j.Resize.Width <= 0 || j.Resize.Height <= 0) {
		return apperrors.Newf(apperrors.CategoryConfig, "convert_job",
			"%w: resize %dx%d", apperrors.ErrInvalidDimensions, j.Resize.Width, j.Resize.Height)
	}
	return nil
}

// ClampQuality restricts q to the supported 1-100 range.
func ClampQuality(q int) int {
	if q < 1 {
		return 1
	}
	if q > 100 {
		return 100
	}
	return q
}

// ── Batch plumbing ────────────────────────────────────────────────────────────

// Task is one atomic unit of work: transform, encode, and write a single
// output file.  Tasks derived from the same batch share no mutable state.
type Task struct {
	// Name is the output identity, used to tag failures ("icon-128x128.png",
	// "photo.webp").
	Name string
	Run  func(ctx context.Context) error
}

// BatchResult is the single aggregate outcome of a run.  No partial-success
// surface exists: a multi-item batch reports one result.
type BatchResult struct {
	Processed int
	Err       error
}

// Ok reports whether the batch finished without error.
func (r BatchResult) Ok() bool { return r.Err == nil }

func (r BatchResult) String() string {
	if r.Err != nil {
		return fmt.Sprintf("failed: %v", r.Err)
	}
	return fmt.Sprintf("processed %d", r.Processed)
}
