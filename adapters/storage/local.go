// Package storage provides the batch output-directory adapter.
package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/iconforge/iconforge/core"
	apperrors "github.com/iconforge/iconforge/errors"
)

// Dir writes batch artifacts into a single local output directory.  Concurrent
// tasks writing distinct filenames is safe; two tasks computing the same
// filename is last-write-wins.
type Dir struct {
	path string
	perm os.FileMode
}

var _ core.OutputDir = (*Dir)(nil)

// OpenDir ensures the directory exists and is writable, and returns an
// adapter for it.  The writability probe creates and removes a scratch file
// so permission problems surface before any task starts.
func OpenDir(path string, perm os.FileMode) (*Dir, error) {
	if perm == 0 {
		perm = 0o644
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryFilesystem, "storage.open", err)
	}
	probe, err := os.CreateTemp(path, ".iconforge-probe-*")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryFilesystem, "storage.probe", err)
	}
	probe.Close()
	_ = os.Remove(probe.Name())
	return &Dir{path: path, perm: perm}, nil
}

// Path returns the absolute location of name inside the directory.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.path, filepath.Clean(name))
}

// Write stores data under name, truncating any existing file.
func (d *Dir) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Wrap(apperrors.CategoryFilesystem, "storage.write", err)
	}
	f, err := os.OpenFile(d.Path(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, d.perm)
	if err != nil {
		return apperrors.Wrap(apperrors.CategoryFilesystem, "storage.write.open", err)
	}
	if _, err = f.Write(data); err != nil {
		f.Close()
		return apperrors.Wrap(apperrors.CategoryFilesystem, "storage.write.copy", err)
	}
	if err = f.Close(); err != nil {
		return apperrors.Wrap(apperrors.CategoryFilesystem, "storage.write.close", err)
	}
	return nil
}

// Remove deletes name.  A missing file is not an error.
func (d *Dir) Remove(name string) error {
	if err := os.Remove(d.Path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperrors.Wrap(apperrors.CategoryFilesystem, "storage.remove", err)
	}
	return nil
}

// Open returns a reader for an artifact already written to the directory.
func (d *Dir) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(d.Path(name))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CategoryFilesystem, "storage.open_file", err)
	}
	return f, nil
}
