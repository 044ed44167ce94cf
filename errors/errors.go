package errors

import (
	"errors"
	"fmt"
)

// Category classifies error types for targeted handling and monitoring.
type Category string

const (
	CategorySource     Category = "source"   // input file unreadable or corrupt
	CategoryDecode     Category = "decode"   // codec-level decode failure
	CategoryEncode     Category = "encode"   // codec-level encode failure
	CategoryTask       Category = "task"     // per-item transform failure, tagged with the item
	CategoryManifest   Category = "manifest" // manifest document write failure
	CategoryFilesystem Category = "filesystem"
	CategoryConfig     Category = "config"
)

// ProcessingError is the structured error type used throughout the module.
type ProcessingError struct {
	Category Category
	Op       string // operation name
	Err      error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("[%s] %s: %v", e.Category, e.Op, e.Err)
}

func (e *ProcessingError) Unwrap() error { return e.Err }

// New creates a ProcessingError.
func New(category Category, op string, err error) *ProcessingError {
	return &ProcessingError{Category: category, Op: op, Err: err}
}

// Newf creates a ProcessingError from a format string.
func Newf(category Category, op, format string, args ...interface{}) *ProcessingError {
	return New(category, op, fmt.Errorf(format, args...))
}

// Wrap wraps an existing error with context.
func Wrap(category Category, op string, err error) error {
	if err == nil {
		return nil
	}
	return New(category, op, err)
}

// IsCategory reports whether err belongs to the given category.
func IsCategory(err error, cat Category) bool {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe.Category == cat
	}
	return false
}

// Sentinel errors for common failure modes.
var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrEmptyInput        = errors.New("empty input")
	ErrNoSources         = errors.New("no source files")
	ErrNoSizes           = errors.New("no target sizes")
)
