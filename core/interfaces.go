package core

import (
	"context"
	"io"
	"time"
)

// Decoder converts raw bytes / a reader into an in-memory Raster.
// Implementations live in adapters/decoder/.
type Decoder interface {
	// Decode reads from r and returns a decoded Raster.
	Decode(ctx context.Context, r io.Reader) (*Raster, error)
	// CanDecode reports whether this decoder handles the given format.
	CanDecode(format Format) bool
}

// Encoder serialises a Raster to bytes in a target format.
// Implementations live in adapters/encoder/.
type Encoder interface {
	Encode(ctx context.Context, r *Raster, opts EncodeOptions) ([]byte, error)
	CanEncode(format Format) bool
}

// EncodeOptions carries format-specific encoding parameters.
type EncodeOptions struct {
	Quality int // 1-100; 0 = use encoder default; PNG reinterprets as effort
}

// Registry maps Format values to Decoder/Encoder implementations.  The set of
// formats with a registered encoder is the run-time capability set a job is
// validated against.
type Registry interface {
	DecoderFor(format Format) (Decoder, bool)
	EncoderFor(format Format) (Encoder, bool)
	RegisterDecoder(format Format, d Decoder)
	RegisterEncoder(format Format, e Encoder)
}

// OutputDir abstracts the shared write target of a batch.  Implementations
// live in adapters/storage/.
type OutputDir interface {
	Write(ctx context.Context, name string, data []byte) error
	Remove(name string) error
	Path(name string) string
}

// Step is the fundamental task building block.  Each Step transforms a
// *Raster and must be safe for concurrent use across goroutines.
type Step interface {
	Name() string
	Execute(ctx context.Context, r *Raster) (*Raster, error)
}

// Hook is an optional observer invoked around task steps.
type Hook interface {
	BeforeStep(ctx context.Context, stepName string, r *Raster)
	AfterStep(ctx context.Context, stepName string, r *Raster, d time.Duration, err error)
}

// Logger is a minimal structured logging interface.
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}
