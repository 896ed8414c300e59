package persistence

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// IndexVersion is the current version of the index cache format.
const IndexVersion = 1

// IndexState is the cached summary of a directory of manifests.
type IndexState struct {
	// Version is the cache format version.
	Version int `json:"version"`

	// SavedAt is when the cache was last written.
	SavedAt time.Time `json:"saved_at"`

	// Entries maps manifest paths to their summaries.
	Entries map[string]IndexEntry `json:"entries,omitempty"`
}

// IndexEntry summarizes one manifest file.
type IndexEntry struct {
	// Digest is the hex BLAKE2b-256 digest of the file when it was indexed.
	Digest string `json:"digest"`

	ID       string `json:"id,omitempty"`
	Version  string `json:"version,omitempty"`
	Fragment bool   `json:"fragment,omitempty"`

	// Points lists the extension points the manifest declares.
	Points []string `json:"points,omitempty"`

	// Extends lists the extension points the manifest contributes to.
	Extends []string `json:"extends,omitempty"`

	// Errors is the number of parse errors; the other fields are empty then.
	Errors int `json:"errors,omitempty"`
}

// HexDigest formats d for IndexEntry.Digest.
func HexDigest(d Digest) string {
	return hex.EncodeToString(d[:])
}

// Lookup returns the entry for path when it was indexed from content with
// digest d.
func (s *IndexState) Lookup(path string, d Digest) (IndexEntry, bool) {
	if s == nil {
		return IndexEntry{}, false
	}
	e, ok := s.Entries[path]
	if !ok || e.Digest != HexDigest(d) {
		return IndexEntry{}, false
	}
	return e, true
}

// IndexStore manages the index cache file.
type IndexStore struct {
	mu   sync.Mutex
	path string
}

// NewIndexStore creates a new index cache store.
func NewIndexStore(path string) *IndexStore {
	return &IndexStore{path: path}
}

// Save persists the index to disk.
func (s *IndexStore) Save(state *IndexState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	state.Version = IndexVersion
	if state.SavedAt.IsZero() {
		state.SavedAt = time.Now()
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// Load reads the index from disk.
// Returns nil, nil if the file doesn't exist or has another format version.
func (s *IndexStore) Load() (*IndexState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &IndexState{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}
	if state.Version != IndexVersion {
		return nil, nil
	}
	return state, nil
}

// Clear removes the index file.
func (s *IndexStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
