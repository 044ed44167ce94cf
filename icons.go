package iconforge

import (
	"context"
	"fmt"
	"os"

	"github.com/iconforge/iconforge/adapters/storage"
	"github.com/iconforge/iconforge/core"
	apperrors "github.com/iconforge/iconforge/errors"
	"github.com/iconforge/iconforge/manifest"
	"github.com/iconforge/iconforge/pipeline"
)

// GenerateIcons expands an icon-set job into one task per size and runs it.
// The source is decoded once; every task clones the shared raster before
// touching it.  The smallest size is written as favicon.ico, every other size
// as icon-<S>x<S>.png, and a manifest.json referencing the PNG set is written
// after all tasks succeed.  A job with no sizes uses the configured icon
// sizes.
//
// The returned stream is terminated by exactly one of {Error, Finished}.
func (e *Engine) GenerateIcons(ctx context.Context, job core.IconJob) <-chan core.Event {
	if len(job.Sizes) == 0 {
		job.Sizes = e.cfg.IconSizes
	}
	if err := job.Validate(); err != nil {
		return e.failed("icons", err)
	}

	raw, err := os.ReadFile(job.SourcePath)
	if err != nil {
		return e.failed("icons", apperrors.Newf(apperrors.CategorySource, "icons.open",
			"Failed to open image: %v", err))
	}
	src, err := e.decode(ctx, raw)
	if err != nil {
		return e.failed("icons", apperrors.Newf(apperrors.CategorySource, "icons.decode",
			"Failed to open image: %v", err))
	}

	dir, err := storage.OpenDir(job.OutputDir, os.FileMode(e.cfg.OutputPermissions))
	if err != nil {
		return e.failed("icons", err)
	}

	favicon := job.FaviconSize()
	tasks := make([]core.Task, 0, len(job.Sizes))
	for _, size := range job.Sizes {
		tasks = append(tasks, e.iconTask(src, dir, size, size == favicon))
	}

	return e.exec.Run(ctx, core.Batch{
		Kind:    "icons",
		Tasks:   tasks,
		Verb:    "Generating icons",
		Summary: "All icons generated successfully!",
		Post: func(ctx context.Context) error {
			doc := manifest.New(job.Sizes, favicon)
			if err := doc.Write(dir.Path(manifest.Filename)); err != nil {
				return apperrors.Newf(apperrors.CategoryManifest, "icons.manifest",
					"Failed to create manifest.json: %v", err)
			}
			return nil
		},
	})
}

// iconTask builds the task for a single icon size.  Favicon sizes encode into
// the icon container format, everything else into PNG.
func (e *Engine) iconTask(src *core.Raster, dir core.OutputDir, size int, favicon bool) core.Task {
	name := fmt.Sprintf("icon-%dx%d.png", size, size)
	format := core.FormatPNG
	if favicon {
		name = "favicon.ico"
		format = core.FormatICO
	}

	pl := pipeline.New().Use(
		&pipeline.CloneStep{},
		&pipeline.SquareStep{Size: size},
		&pipeline.EncodeStep{Registry: e.reg, Format: format},
	).AddHook(e.hooks...)

	return core.Task{
		Name: name,
		Run: func(ctx context.Context) error {
			out, _, err := pl.Run(ctx, src)
			if err != nil {
				if apperrors.IsCategory(err, apperrors.CategoryEncode) {
					return apperrors.Newf(apperrors.CategoryEncode, "icons.save",
						"Failed to save %s: %v", name, err)
				}
				return apperrors.Newf(apperrors.CategoryTask, "icons.resize",
					"Failed to resize image to %dx%d: %v", size, size, err)
			}
			if err := dir.Write(ctx, name, out.Data); err != nil {
				return apperrors.Newf(apperrors.CategoryFilesystem, "icons.save",
					"Failed to save %s: %v", name, err)
			}
			return nil
		},
	}
}
