// Package vips provides an optional libvips-powered codec backend.  It trades
// the pure-Go codecs for libvips throughput on hosts where the native library
// is installed.
package vips

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"io"
	"runtime"

	govips "github.com/davidbyttow/govips/v2/vips"

	"github.com/iconforge/iconforge/core"
	apperrors "github.com/iconforge/iconforge/errors"
	"github.com/iconforge/iconforge/utils"
)

// BackendConfig configures the libvips backend.
type BackendConfig struct {
	DefaultQuality int
	MaxCacheSize   int
	MaxWorkers     int
	ReportLeaks    bool
}

// Backend is a unified libvips-powered Decoder and Encoder.
// Safe for concurrent use across goroutines.
//
// Decoded pixels cross the cgo boundary as a lossless PNG bridge so the rest
// of the engine keeps working on plain image.Image values.
type Backend struct {
	cfg BackendConfig
}

// NewBackend initialises libvips and returns a ready Backend.
// Call Shutdown() when the process exits.
func NewBackend(cfg BackendConfig) *Backend {
	if cfg.DefaultQuality <= 0 {
		cfg.DefaultQuality = 85
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	govips.Startup(&govips.Config{
		ConcurrencyLevel: cfg.MaxWorkers,
		MaxCacheSize:     cfg.MaxCacheSize,
		ReportLeaks:      cfg.ReportLeaks,
		CollectStats:     true,
	})
	return &Backend{cfg: cfg}
}

// Shutdown releases all libvips resources. Call once at process exit.
func (b *Backend) Shutdown() {
	govips.Shutdown()
}

// ─── Decoder ──────────────────────────────────────────────────────────────────

func (b *Backend) CanDecode(f core.Format) bool {
	switch f {
	case core.FormatJPEG, core.FormatPNG, core.FormatWebP, core.FormatAVIF, core.FormatUnknown:
		return true
	}
	return false
}

func (b *Backend) Decode(ctx context.Context, r io.Reader) (*core.Raster, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode", err)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode.read", err)
	}
	if len(raw) == 0 {
		return nil, apperrors.New(apperrors.CategoryDecode, "vips.decode", apperrors.ErrEmptyInput)
	}

	ref, err := govips.NewImageFromBuffer(raw)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode", err)
	}
	defer ref.Close()

	bridge, _, err := ref.ExportPng(govips.NewPngExportParams())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode.bridge", err)
	}
	img, err := png.Decode(bytes.NewReader(bridge))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryDecode, "vips.decode.bridge", err)
	}

	return core.FromImage(img, core.Format(utils.DetectFormat(raw))), nil
}

// ─── Encoder ──────────────────────────────────────────────────────────────────

func (b *Backend) CanEncode(f core.Format) bool {
	switch f {
	case core.FormatJPEG, core.FormatPNG, core.FormatWebP, core.FormatAVIF:
		return true
	}
	return false
}

func (b *Backend) Encode(ctx context.Context, r *core.Raster, opts core.EncodeOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode", err)
	}
	if r == nil || r.Image == nil {
		return nil, apperrors.New(apperrors.CategoryEncode, "vips.encode", apperrors.ErrEmptyInput)
	}

	ref, err := b.refFrom(r)
	if err != nil {
		return nil, err
	}
	defer ref.Close()

	quality := opts.Quality
	if quality <= 0 {
		quality = b.cfg.DefaultQuality
	}

	switch r.Format {
	case core.FormatJPEG:
		ep := govips.NewJpegExportParams()
		ep.Quality = quality
		buf, _, err := ref.ExportJpeg(ep)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode.jpeg", err)
		}
		return buf, nil

	case core.FormatPNG:
		ep := govips.NewPngExportParams()
		ep.Compression = utils.PNGLevel(quality)
		buf, _, err := ref.ExportPng(ep)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode.png", err)
		}
		return buf, nil

	case core.FormatWebP:
		ep := govips.NewWebpExportParams()
		ep.Quality = quality
		buf, _, err := ref.ExportWebp(ep)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode.webp", err)
		}
		return buf, nil

	case core.FormatAVIF:
		ep := govips.NewAvifExportParams()
		ep.Quality = quality
		buf, _, err := ref.ExportAvif(ep)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode.avif", err)
		}
		return buf, nil

	default:
		return nil, apperrors.New(apperrors.CategoryEncode, "vips.encode",
			fmt.Errorf("%w: %s", apperrors.ErrUnsupportedFormat, r.Format))
	}
}

// refFrom builds a govips image from the raster via the lossless PNG bridge.
func (b *Backend) refFrom(r *core.Raster) (*govips.ImageRef, error) {
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.NoCompression}
	if err := enc.Encode(&buf, r.Image); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode.bridge", err)
	}
	ref, err := govips.NewImageFromBuffer(buf.Bytes())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryEncode, "vips.encode.bridge", err)
	}
	return ref, nil
}

// ─── RegisterBackend ──────────────────────────────────────────────────────────

// RegisterBackend replaces the pure-Go codecs with libvips for the formats it
// supports.
func RegisterBackend(reg core.Registry, b *Backend) {
	for _, f := range []core.Format{core.FormatJPEG, core.FormatPNG, core.FormatWebP, core.FormatAVIF} {
		reg.RegisterDecoder(f, b)
		reg.RegisterEncoder(f, b)
	}
}

// compile-time interface checks
var _ core.Decoder = (*Backend)(nil)
var _ core.Encoder = (*Backend)(nil)
