package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestIndexStore(t *testing.T) {
	t.Run("SaveAndLoad", func(t *testing.T) {
		store := NewIndexStore(filepath.Join(t.TempDir(), "cache", "index.json"))
		d := DigestOf([]byte(testManifest))

		state := &IndexState{
			Entries: map[string]IndexEntry{
				"a/plugin.xml": {Digest: HexDigest(d), ID: "x", Version: "1.0", Extends: []string{"a"}},
			},
		}
		if err := store.Save(state); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		if state.SavedAt.IsZero() {
			t.Error("SavedAt was not set")
		}

		got, err := store.Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got.Version != IndexVersion {
			t.Errorf("Version = %d, want %d", got.Version, IndexVersion)
		}
		e, ok := got.Lookup("a/plugin.xml", d)
		if !ok {
			t.Fatal("Lookup() found nothing")
		}
		if e.ID != "x" || e.Version != "1.0" || len(e.Extends) != 1 {
			t.Errorf("entry = %+v", e)
		}
	})

	t.Run("LookupStaleDigest", func(t *testing.T) {
		state := &IndexState{Entries: map[string]IndexEntry{
			"p.xml": {Digest: HexDigest(DigestOf([]byte("old")))},
		}}
		if _, ok := state.Lookup("p.xml", DigestOf([]byte("new"))); ok {
			t.Error("Lookup() matched a stale digest")
		}
		if _, ok := state.Lookup("q.xml", DigestOf([]byte("old"))); ok {
			t.Error("Lookup() matched an unknown path")
		}
		var none *IndexState
		if _, ok := none.Lookup("p.xml", DigestOf(nil)); ok {
			t.Error("nil state matched")
		}
	})

	t.Run("LoadNonExistent", func(t *testing.T) {
		got, err := NewIndexStore(filepath.Join(t.TempDir(), "none.json")).Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got != nil {
			t.Errorf("Load() = %v, want nil", got)
		}
	})

	t.Run("LoadOtherVersion", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "index.json")
		if err := os.WriteFile(path, []byte(`{"version": 99}`), 0644); err != nil {
			t.Fatal(err)
		}
		got, err := NewIndexStore(path).Load()
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if got != nil {
			t.Errorf("Load() = %v, want nil for another version", got)
		}
	})

	t.Run("LoadCorrupt", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "index.json")
		if err := os.WriteFile(path, []byte("{"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewIndexStore(path).Load(); err == nil {
			t.Error("Load() succeeded on corrupt file")
		}
	})

	t.Run("KeepsSavedAt", func(t *testing.T) {
		store := NewIndexStore(filepath.Join(t.TempDir(), "index.json"))
		at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		if err := store.Save(&IndexState{SavedAt: at}); err != nil {
			t.Fatal(err)
		}
		got, _ := store.Load()
		if !got.SavedAt.Equal(at) {
			t.Errorf("SavedAt = %v, want %v", got.SavedAt, at)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "index.json")
		store := NewIndexStore(path)
		if err := store.Save(&IndexState{}); err != nil {
			t.Fatal(err)
		}
		if err := store.Clear(); err != nil {
			t.Fatalf("Clear() error = %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("file still exists after Clear()")
		}
		if err := store.Clear(); err != nil {
			t.Errorf("Clear() on missing file error = %v", err)
		}
	})
}
