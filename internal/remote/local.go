package remote

import (
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// LocalSink writes into a directory tree on an afero filesystem
type LocalSink struct {
	fs afero.Fs
}

// NewLocalSink creates a sink over fs, or the OS filesystem when fs is nil
func NewLocalSink(fs afero.Fs) *LocalSink {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &LocalSink{fs: fs}
}

// Exists implements Sink
func (s *LocalSink) Exists(dir string) (bool, error) {
	return afero.DirExists(s.fs, filepath.FromSlash(dir))
}

// MakeDir implements Sink
func (s *LocalSink) MakeDir(dir string) error {
	return s.fs.Mkdir(filepath.FromSlash(dir), 0755)
}

// Upload implements Sink
func (s *LocalSink) Upload(path string, r io.Reader) error {
	f, err := s.fs.Create(filepath.FromSlash(path))
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Close implements Sink
func (s *LocalSink) Close() error {
	return nil
}

var _ Sink = (*LocalSink)(nil)
