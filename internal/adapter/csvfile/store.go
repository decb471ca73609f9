// Package csvfile reads raw day files and writes processed ones under a data
// directory.
package csvfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/couchcryptid/pv-monitoring-etl/internal/domain"
)

// Store resolves day file names against a data directory. Absolute names are
// used as given.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the location of the named file.
func (s *Store) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// LoadDay reads the raw day file name.
func (s *Store) LoadDay(name string) (domain.Series, error) {
	path := s.Path(name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open day file: %w", err)
	}
	defer f.Close()

	series, err := ReadSeries(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

// LoadProcessed reads a processed day file.
func (s *Store) LoadProcessed(name string) ([]domain.ProcessedSample, error) {
	path := s.Path(name)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open processed file: %w", err)
	}
	defer f.Close()

	rows, err := ReadProcessed(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// SaveProcessed writes rows next to the raw day file name, under its
// processed name, and returns the path written. The raw file is never touched.
func (s *Store) SaveProcessed(name string, rows []domain.ProcessedSample) (string, error) {
	path := s.Path(domain.ProcessedFileName(name))
	err := writeAtomic(path, func(w io.Writer) error { return WriteProcessed(w, rows) })
	if err != nil {
		return "", err
	}
	return path, nil
}

// SaveDay writes a raw day file and returns the path written.
func (s *Store) SaveDay(name string, series domain.Series) (string, error) {
	path := s.Path(name)
	err := writeAtomic(path, func(w io.Writer) error { return WriteSeries(w, series) })
	if err != nil {
		return "", err
	}
	return path, nil
}

// writeAtomic writes to a temporary file in the target directory and renames
// it into place, so readers never observe a partial file.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
