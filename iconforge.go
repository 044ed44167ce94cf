// Package iconforge is a concurrent batch image-processing engine for
// generating icon sets and converting images between formats.  Jobs are
// described declaratively, expanded into independent tasks, and fanned out
// across a bounded worker pool; callers observe each run through a single
// event stream.
package iconforge

import (
	"bytes"
	"context"

	"github.com/iconforge/iconforge/adapters/decoder"
	"github.com/iconforge/iconforge/adapters/encoder"
	"github.com/iconforge/iconforge/config"
	"github.com/iconforge/iconforge/core"
	apperrors "github.com/iconforge/iconforge/errors"
	"github.com/iconforge/iconforge/utils"
)

// Re-export Format constants for convenience.
const (
	JPEG = core.FormatJPEG
	PNG  = core.FormatPNG
	WebP = core.FormatWebP
	AVIF = core.FormatAVIF
	ICO  = core.FormatICO
)

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() config.Config { return config.Default() }

// Engine is the primary entry point.
type Engine struct {
	cfg   config.Config
	reg   *core.DefaultRegistry
	exec  *core.Executor
	log   core.Logger
	hooks []core.Hook
}

// New creates a fully wired Engine with the pure-Go codecs registered.
// Pass a custom config.Config to override defaults.
func New(cfg config.Config) *Engine {
	reg := core.NewRegistry()

	bitmap := decoder.NewImaging()
	for _, f := range []core.Format{core.FormatJPEG, core.FormatPNG, core.FormatGIF, core.FormatBMP, core.FormatTIFF} {
		reg.RegisterDecoder(f, bitmap)
	}
	reg.RegisterDecoder(core.FormatWebP, decoder.NewWebP())

	reg.RegisterEncoder(core.FormatJPEG, encoder.NewJPEG(cfg.DefaultQuality))
	reg.RegisterEncoder(core.FormatPNG, encoder.NewPNG())
	reg.RegisterEncoder(core.FormatWebP, encoder.NewWebP(cfg.DefaultQuality))
	reg.RegisterEncoder(core.FormatICO, encoder.NewICO())

	if cfg.EnableAVIF {
		reg.RegisterDecoder(core.FormatAVIF, decoder.NewAVIF())
		reg.RegisterEncoder(core.FormatAVIF, encoder.NewAVIF(cfg.DefaultQuality))
	}

	return &Engine{
		cfg:  cfg,
		reg:  reg,
		exec: core.NewExecutor(cfg.WorkerCount),
	}
}

// SetLogger attaches a structured logger.
func (e *Engine) SetLogger(l core.Logger) {
	e.log = l
	e.exec.SetLogger(l)
}

// AddHook registers an observer for pipeline step events.
func (e *Engine) AddHook(h core.Hook) { e.hooks = append(e.hooks, h) }

// RegisterDecoder registers a custom decoder for the given format.
func (e *Engine) RegisterDecoder(f core.Format, d core.Decoder) { e.reg.RegisterDecoder(f, d) }

// RegisterEncoder registers a custom encoder for the given format.
func (e *Engine) RegisterEncoder(f core.Format, enc core.Encoder) { e.reg.RegisterEncoder(f, enc) }

// Registry exposes the codec registry, e.g. for swapping in the vips backend.
func (e *Engine) Registry() *core.DefaultRegistry { return e.reg }

// Supports reports whether the engine can encode to the given format.
func (e *Engine) Supports(f core.Format) bool { return e.reg.Supports(f) }

// Collect drains an event stream into its aggregate outcome.
func Collect(events <-chan core.Event) core.BatchResult { return core.Collect(events) }

// failed logs a precondition failure and returns its terminated stream.
// Precondition failures never reach the executor, so they are logged here.
func (e *Engine) failed(kind string, err error) <-chan core.Event {
	if e.log != nil {
		e.log.Error("batch.rejected", "kind", kind, "error", err.Error())
	}
	return core.Failed(err)
}

// decode sniffs the format of raw and decodes it through the registry.
func (e *Engine) decode(ctx context.Context, raw []byte) (*core.Raster, error) {
	if len(raw) == 0 {
		return nil, apperrors.New(apperrors.CategoryDecode, "decode", apperrors.ErrEmptyInput)
	}
	format := core.Format(utils.DetectFormat(raw))
	dec, ok := e.reg.DecoderFor(format)
	if !ok {
		return nil, apperrors.Newf(apperrors.CategoryDecode, "decode",
			"%w: %s", apperrors.ErrUnsupportedFormat, format)
	}
	r, err := dec.Decode(ctx, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	r.Format = format
	return r, nil
}
