// Package fsys lists directories and files for the tree differ.
//
// All access goes through an afero.Fs so the differ can run against the
// operating system or an in-memory tree.
package fsys

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/lumipallolabs/folderdiff/internal/model"
)

// Enumerator provides the read-only directory view used by the differ
type Enumerator interface {
	// Stat checks that path exists and is a directory
	Stat(path string) error

	// ListDirs returns the immediate subdirectories of path
	ListDirs(path string) ([]model.Dir, error)

	// ListFiles returns the immediate non-directory entries of path
	ListFiles(path string) ([]model.File, error)
}

// Counter is implemented by enumerators with a faster way of counting all
// files below a root than listing directory by directory. Counting stops
// with the context error once ctx is done.
type Counter interface {
	CountFiles(ctx context.Context, root string) (int64, error)
}

// InvalidPathError reports a path that is missing, unreadable or not a directory
type InvalidPathError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InvalidPathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid path %q: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

func (e *InvalidPathError) Unwrap() error {
	return e.Err
}

// FS is an Enumerator backed by an afero filesystem
type FS struct {
	fs afero.Fs
}

// New creates an enumerator over the given filesystem
func New(fs afero.Fs) *FS {
	return &FS{fs: fs}
}

// Stat implements Enumerator
func (f *FS) Stat(path string) error {
	info, err := f.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &InvalidPathError{Path: path, Reason: "does not exist", Err: err}
		}
		return &InvalidPathError{Path: path, Reason: "cannot be accessed", Err: err}
	}
	if !info.IsDir() {
		return &InvalidPathError{Path: path, Reason: "not a directory"}
	}
	return nil
}

// ListDirs implements Enumerator
func (f *FS) ListDirs(path string) ([]model.Dir, error) {
	infos, err := f.readDir(path)
	if err != nil {
		return nil, err
	}

	dirs := make([]model.Dir, 0, len(infos))
	for _, info := range infos {
		if !info.IsDir() {
			continue
		}
		dirs = append(dirs, model.Dir{
			Name: info.Name(),
			Path: filepath.Join(path, info.Name()),
		})
	}
	return dirs, nil
}

// ListFiles implements Enumerator
func (f *FS) ListFiles(path string) ([]model.File, error) {
	infos, err := f.readDir(path)
	if err != nil {
		return nil, err
	}

	files := make([]model.File, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		files = append(files, model.File{
			Name: info.Name(),
			Size: info.Size(),
			Path: filepath.Join(path, info.Name()),
		})
	}
	return files, nil
}

func (f *FS) readDir(path string) ([]os.FileInfo, error) {
	infos, err := afero.ReadDir(f.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &InvalidPathError{Path: path, Reason: "does not exist", Err: err}
		}
		return nil, &InvalidPathError{Path: path, Reason: "cannot be listed", Err: err}
	}
	return infos, nil
}

var _ Enumerator = (*FS)(nil)
