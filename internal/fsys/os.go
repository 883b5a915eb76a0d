package fsys

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/spf13/afero"

	"github.com/lumipallolabs/folderdiff/internal/model"
)

// OSOptions configures the operating system enumerator
type OSOptions struct {
	// OneFileSystem skips directories that live on another device than
	// their parent (mount points).
	OneFileSystem bool

	// Workers bounds the fastwalk goroutines used by CountFiles. Zero lets
	// fastwalk pick.
	Workers int
}

// OS enumerates the operating system filesystem
type OS struct {
	*FS
	opts OSOptions
}

// NewOS creates an enumerator over the real filesystem
func NewOS(opts OSOptions) *OS {
	return &OS{
		FS:   New(afero.NewOsFs()),
		opts: opts,
	}
}

// ListDirs implements Enumerator, dropping mount points when OneFileSystem is set
func (o *OS) ListDirs(path string) ([]model.Dir, error) {
	dirs, err := o.FS.ListDirs(path)
	if err != nil || !o.opts.OneFileSystem {
		return dirs, err
	}

	parentDev, ok := deviceOf(path)
	if !ok {
		return dirs, nil
	}

	kept := dirs[:0]
	for _, d := range dirs {
		if dev, ok := deviceOf(d.Path); ok && dev != parentDev {
			continue
		}
		kept = append(kept, d)
	}
	return kept, nil
}

// CountFiles implements Counter using fastwalk
func (o *OS) CountFiles(ctx context.Context, root string) (int64, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return 0, err
	}

	rootDev, haveDev := deviceOf(absRoot)

	conf := &fastwalk.Config{
		Follow:     false, // Don't follow symlinks
		NumWorkers: o.opts.Workers,
	}

	var count atomic.Int64
	walkErr := fastwalk.Walk(conf, absRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return &InvalidPathError{Path: path, Reason: "cannot be listed", Err: err}
		}

		if d.IsDir() {
			if path != absRoot && o.opts.OneFileSystem && haveDev {
				if dev, ok := deviceOf(path); ok && dev != rootDev {
					return fs.SkipDir
				}
			}
			return nil
		}

		count.Add(1)
		return nil
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, ctxErr
	}
	if walkErr != nil {
		return 0, walkErr
	}
	return count.Load(), nil
}

var (
	_ Enumerator = (*OS)(nil)
	_ Counter    = (*OS)(nil)
)
