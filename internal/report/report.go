// Package report saves scan results so they can be uploaded later or
// compared with the next scan of the same roots.
package report

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/lumipallolabs/folderdiff/internal/model"
	"github.com/lumipallolabs/folderdiff/internal/scanner"
)

const timeLayout = "2006-01-02_150405"

// Report is one finished scan
type Report struct {
	Source    string
	Target    string
	Direction scanner.Direction
	Created   time.Time
	Entries   []model.MissingEntry
}

// Store handles saving and loading reports
type Store struct {
	fs  afero.Fs
	dir string
}

// New creates a store in the given directory on the OS filesystem
func New(dir string) *Store {
	return NewWithFs(afero.NewOsFs(), dir)
}

// NewWithFs creates a store on fs
func NewWithFs(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// DefaultDir returns the default report directory
func DefaultDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".folderdiff"
	}
	return filepath.Join(home, ".folderdiff", "reports")
}

// Name derives a stable file name key for a pair of roots
func Name(source, target string) string {
	h := fnv.New64a()
	h.Write([]byte(filepath.Clean(source)))
	h.Write([]byte{0})
	h.Write([]byte(filepath.Clean(target)))

	label := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, filepath.Base(filepath.Clean(source)))

	return fmt.Sprintf("%s-%016x", label, h.Sum64())
}

// Save writes r under name and returns the file path
func (s *Store) Save(name string, r *Report) (string, error) {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	if r.Created.IsZero() {
		r.Created = time.Now()
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s.gob.gz", name, r.Created.Format(timeLayout)))

	file, err := s.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	if err := gob.NewEncoder(gzWriter).Encode(r); err != nil {
		gzWriter.Close()
		return "", fmt.Errorf("encode: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return "", fmt.Errorf("compress: %w", err)
	}

	return path, nil
}

// latest returns the newest report file for name
func (s *Store) latest(name string) (string, error) {
	files, err := afero.Glob(s.fs, filepath.Join(s.dir, name+"_*.gob.gz"))
	if err != nil {
		return "", fmt.Errorf("glob: %w", err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no report found for %s", name)
	}

	// file names sort by timestamp
	sort.Strings(files)
	return files[len(files)-1], nil
}

// LoadLatest loads the most recent report for name
func (s *Store) LoadLatest(name string) (*Report, error) {
	path, err := s.latest(name)
	if err != nil {
		return nil, err
	}

	file, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer gzReader.Close()

	var r Report
	if err := gob.NewDecoder(gzReader).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if r.Entries == nil {
		r.Entries = []model.MissingEntry{}
	}
	return &r, nil
}
