package iconforge

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iconforge/iconforge/adapters/storage"
	"github.com/iconforge/iconforge/core"
	apperrors "github.com/iconforge/iconforge/errors"
	"github.com/iconforge/iconforge/pipeline"
)

// avifAlign is the dimension multiple the AVIF encoder requires.  Sources with
// unaligned dimensions are padded before encoding and cropped back afterwards.
const avifAlign = 8

// Convert expands a batch conversion job into one task per source-format pair
// and runs it.  Each task decodes its source independently, applies the
// optional resize, normalizes the color mode for the target, encodes, and
// writes <base>.<ext> into the output directory.  A job with no target
// formats uses the configured default format.  Duplicate source basenames
// collapse to one output file, last write wins.
//
// The returned stream is terminated by exactly one of {Error, Finished}.
func (e *Engine) Convert(ctx context.Context, job core.ConvertJob) <-chan core.Event {
	job.Quality = core.ClampQuality(job.Quality)
	if len(job.Formats) == 0 && e.cfg.DefaultFormat != "" {
		format, err := core.ParseFormat(e.cfg.DefaultFormat)
		if err != nil {
			return e.failed("convert", err)
		}
		job.Formats = []core.Format{format}
	}

	if err := job.Validate(e.reg); err != nil {
		return e.failed("convert", err)
	}
	for _, src := range job.SourcePaths {
		if _, err := os.Stat(src); err != nil {
			return e.failed("convert", apperrors.Newf(apperrors.CategorySource, "convert.stat",
				"Error converting %s: %v", filepath.Base(src), err))
		}
	}

	dir, err := storage.OpenDir(job.OutputDir, os.FileMode(e.cfg.OutputPermissions))
	if err != nil {
		return e.failed("convert", err)
	}

	resize := e.resolveResize(job.Resize)

	tasks := make([]core.Task, 0, len(job.SourcePaths)*len(job.Formats))
	for _, src := range job.SourcePaths {
		for _, format := range job.Formats {
			tasks = append(tasks, e.convertTask(src, dir, format, job.Quality, resize))
		}
	}

	return e.exec.Run(ctx, core.Batch{
		Kind:    "convert",
		Tasks:   tasks,
		Verb:    "Converting files",
		Summary: fmt.Sprintf("Successfully converted %d files!", len(job.SourcePaths)),
	})
}

// resolveResize falls back to the configured default resize when the job
// carries none.
func (e *Engine) resolveResize(spec *core.ResizeSpec) *core.ResizeSpec {
	if spec != nil {
		return spec
	}
	if e.cfg.Resize.Width > 0 && e.cfg.Resize.Height > 0 {
		return &core.ResizeSpec{
			Width:      e.cfg.Resize.Width,
			Height:     e.cfg.Resize.Height,
			KeepAspect: e.cfg.Resize.KeepAspectRatio,
		}
	}
	return nil
}

func (e *Engine) convertTask(src string, dir *storage.Dir, format core.Format, quality int, resize *core.ResizeSpec) core.Task {
	base := filepath.Base(src)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + format.Ext()

	return core.Task{
		Name: name,
		Run: func(ctx context.Context) error {
			if err := e.convertOne(ctx, src, dir, name, format, quality, resize); err != nil {
				return apperrors.Newf(apperrors.CategoryTask, "convert",
					"Error converting %s: %v", base, err)
			}
			return nil
		},
	}
}

// convertOne runs the full decode-transform-encode-write path for one output
// file.
func (e *Engine) convertOne(ctx context.Context, src string, dir *storage.Dir, name string, format core.Format, quality int, resize *core.ResizeSpec) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return apperrors.Wrap(apperrors.CategorySource, "convert.open", err)
	}
	img, err := e.decode(ctx, raw)
	if err != nil {
		return err
	}

	pl := pipeline.New()
	if resize != nil {
		pl.Use(&pipeline.FitStep{Width: resize.Width, Height: resize.Height, KeepAspect: resize.KeepAspect})
	}
	if !format.HasAlphaChannel() {
		pl.Use(&pipeline.DropAlphaStep{})
	}
	pl.AddHook(e.hooks...)

	img, _, err = pl.Run(ctx, img)
	if err != nil {
		return err
	}

	if format == core.FormatAVIF && needsAlignment(img) {
		return e.encodeAlignedAVIF(ctx, img, dir, name, quality)
	}

	encoded, err := e.encode(ctx, img, format, quality)
	if err != nil {
		return err
	}
	return dir.Write(ctx, name, encoded)
}

func (e *Engine) encode(ctx context.Context, img *core.Raster, format core.Format, quality int) ([]byte, error) {
	enc, ok := e.reg.EncoderFor(format)
	if !ok {
		return nil, apperrors.Newf(apperrors.CategoryEncode, "convert.encode",
			"%w: %s", apperrors.ErrUnsupportedFormat, format)
	}
	return enc.Encode(ctx, img, core.EncodeOptions{Quality: quality})
}

func needsAlignment(img *core.Raster) bool {
	return img.Width()%avifAlign != 0 || img.Height()%avifAlign != 0
}

// encodeAlignedAVIF handles sources whose dimensions the AVIF encoder rejects.
// The image is padded up to the alignment multiple, encoded to a temp file
// next to the final output, decoded again, cropped back to the original
// dimensions, and re-encoded.  The temp file is removed best-effort.
func (e *Engine) encodeAlignedAVIF(ctx context.Context, img *core.Raster, dir *storage.Dir, name string, quality int) error {
	origW, origH := img.Width(), img.Height()
	tmpName := name + ".tmp"

	padded, _, err := pipeline.New().
		Use(&pipeline.PadStep{Multiple: avifAlign}).
		AddHook(e.hooks...).
		Run(ctx, img)
	if err != nil {
		return err
	}

	encoded, err := e.encode(ctx, padded, core.FormatAVIF, quality)
	if err != nil {
		return err
	}
	if err := dir.Write(ctx, tmpName, encoded); err != nil {
		return err
	}
	defer dir.Remove(tmpName) // best effort

	f, err := dir.Open(tmpName)
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryFilesystem, "convert.avif.reopen", err)
	}
	tmpRaw, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryFilesystem, "convert.avif.reopen", err)
	}

	roundtrip, err := e.decode(ctx, tmpRaw)
	if err != nil {
		return err
	}
	cropped, _, err := pipeline.New().
		Use(&pipeline.CropToStep{Width: origW, Height: origH}).
		AddHook(e.hooks...).
		Run(ctx, roundtrip)
	if err != nil {
		return err
	}

	final, err := e.encode(ctx, cropped, core.FormatAVIF, quality)
	if err != nil {
		return err
	}
	return dir.Write(ctx, name, final)
}
