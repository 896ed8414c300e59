package persistence

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/manifestkit/manifest-go/pkg/model"
)

// ErrNotFound is returned when the manifest file does not exist.
var ErrNotFound = errors.New("manifest file not found")

// Digest is the BLAKE2b-256 hash of a manifest's bytes.
type Digest [blake2b.Size256]byte

// DigestOf hashes data.
func DigestOf(data []byte) Digest {
	return blake2b.Sum256(data)
}

// Snapshot is the content of a manifest file at one point in time.
type Snapshot struct {
	Path    string
	Data    []byte
	ModTime time.Time
	Digest  Digest
}

// Reader returns a reader over the snapshot data. It implements
// model.Stamper with the snapshot's modification time.
func (s *Snapshot) Reader() *StampedReader {
	return &StampedReader{Reader: bytes.NewReader(s.Data), stamp: s.ModTime}
}

// StampedReader is an io.Reader that knows its source's modification time.
type StampedReader struct {
	*bytes.Reader
	stamp time.Time
}

// Stamp returns the modification time of the source file.
func (r *StampedReader) Stamp() time.Time {
	return r.stamp
}

var _ model.Stamper = (*StampedReader)(nil)

// FileStore reads and writes one manifest file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store for the manifest at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the manifest path.
func (s *FileStore) Path() string {
	return s.path
}

// Read loads the file into a Snapshot. A missing file yields ErrNotFound.
func (s *FileStore) Read() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileStore) read() (*Snapshot, error) {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return &Snapshot{
		Path:    s.path,
		Data:    data,
		ModTime: info.ModTime(),
		Digest:  DigestOf(data),
	}, nil
}

// Write replaces the file with data and returns the resulting snapshot.
// The parent directory is created when missing.
func (s *FileStore) Write(data []byte) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return nil, err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return nil, fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return nil, err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return nil, err
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return nil, err
	}

	info, err := os.Stat(s.path)
	if err != nil {
		return nil, err
	}
	return &Snapshot{
		Path:    s.path,
		Data:    append([]byte(nil), data...),
		ModTime: info.ModTime(),
		Digest:  DigestOf(data),
	}, nil
}

// Changed reports whether the file differs from since. A newer
// modification time alone is not a change; the content digest must differ
// too. A deleted file counts as changed.
func (s *FileStore) Changed(since *Snapshot) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if since == nil {
		return true, nil
	}
	if info.ModTime().Equal(since.ModTime) && info.Size() == int64(len(since.Data)) {
		return false, nil
	}

	cur, err := s.read()
	if err != nil {
		return false, err
	}
	return cur.Digest != since.Digest, nil
}

// Remove deletes the file. A missing file is not an error.
func (s *FileStore) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Load reads the file into m. The model's sync stamp becomes the file's
// modification time.
func (s *FileStore) Load(m *model.Model) (*Snapshot, error) {
	snap, err := s.Read()
	if err != nil {
		return nil, err
	}
	if err := m.Load(snap.Reader(), false); err != nil {
		return nil, err
	}
	return snap, nil
}

// Reload reads the file into m and notifies observers with WorldChanged.
func (s *FileStore) Reload(m *model.Model) (*Snapshot, error) {
	snap, err := s.Read()
	if err != nil {
		return nil, err
	}
	if err := m.Reload(snap.Reader(), false); err != nil {
		return nil, err
	}
	return snap, nil
}

// LoadAbbreviated reads the file into m keeping only extensions of points.
func (s *FileStore) LoadAbbreviated(m *model.Model, points []string) (*Snapshot, error) {
	snap, err := s.Read()
	if err != nil {
		return nil, err
	}
	if err := m.LoadAbbreviated(snap.Reader(), points); err != nil {
		return nil, err
	}
	return snap, nil
}

// Save writes m to the file and moves the model's sync stamp to the new
// modification time. The model stays dirty when the write fails.
func (s *FileStore) Save(m *model.Model) (*Snapshot, error) {
	w := &snapshotWriter{store: s}
	if err := m.Save(w); err != nil {
		return nil, err
	}
	m.SetSyncStamp(w.snap.ModTime)
	return w.snap, nil
}

// snapshotWriter commits each Write atomically. Model.Save issues a single
// Write with the whole document.
type snapshotWriter struct {
	store *FileStore
	snap  *Snapshot
}

func (w *snapshotWriter) Write(p []byte) (int, error) {
	snap, err := w.store.Write(p)
	if err != nil {
		return 0, err
	}
	w.snap = snap
	return len(p), nil
}
