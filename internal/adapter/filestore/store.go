// Package filestore reads the ledger and reads and writes the two flat-file
// artifacts. Writes go to a temp file in the destination directory and are
// renamed into place, so readers never see a partial artifact.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/couchcryptid/zip-coverage/internal/domain"
	"github.com/couchcryptid/zip-coverage/internal/geo"
)

// ErrArtifactMissing is returned when an artifact has not been generated yet.
var ErrArtifactMissing = errors.New("artifact not found")

// Store knows where the ledger and artifacts live.
type Store struct {
	ledgerPath       string
	availabilityPath string
	geometryPath     string
}

// New creates a Store over the given paths.
func New(ledgerPath, availabilityPath, geometryPath string) *Store {
	return &Store{
		ledgerPath:       ledgerPath,
		availabilityPath: availabilityPath,
		geometryPath:     geometryPath,
	}
}

// OpenLedger opens the ledger for reading. A missing file is reported as
// domain.ErrLedgerMissing.
func (s *Store) OpenLedger() (io.ReadCloser, error) {
	f, err := os.Open(s.ledgerPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrLedgerMissing, s.ledgerPath)
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	return f, nil
}

// SaveAvailability writes the availability table.
func (s *Store) SaveAvailability(t domain.Table) error {
	data, err := domain.MarshalTable(t)
	if err != nil {
		return err
	}
	return WriteFileAtomic(s.availabilityPath, data)
}

// SaveGeometry writes the ZIP geometry collection.
func (s *Store) SaveGeometry(fc geo.FeatureCollection) error {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal geometry: %w", err)
	}
	return WriteFileAtomic(s.geometryPath, data)
}

// LoadAvailability reads and parses the availability artifact. The raw bytes
// are returned as well so callers can fingerprint them.
func (s *Store) LoadAvailability() (domain.Table, []byte, error) {
	data, err := readArtifact(s.availabilityPath)
	if err != nil {
		return nil, nil, err
	}
	t, err := domain.UnmarshalTable(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", s.availabilityPath, err)
	}
	return t, data, nil
}

// LoadGeometry reads and parses the geometry artifact.
func (s *Store) LoadGeometry() (geo.FeatureCollection, []byte, error) {
	data, err := readArtifact(s.geometryPath)
	if err != nil {
		return geo.FeatureCollection{}, nil, err
	}
	fc, err := geo.DecodeFeatureCollection(data)
	if err != nil {
		return geo.FeatureCollection{}, nil, fmt.Errorf("%s: %w", s.geometryPath, err)
	}
	return fc, data, nil
}

func readArtifact(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// WriteFileAtomic writes data to path via a temp file and rename, creating
// parent directories as needed.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error wins
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck,gosec // sync error wins
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
