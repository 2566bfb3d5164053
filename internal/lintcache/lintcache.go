// Package lintcache stores per-file lint results on disk keyed by
// content hash, so unchanged files skip analysis across CLI runs. The
// cache lives outside the analysis core: a miss is never an error, only
// a slower path.
package lintcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"guestlint/internal/diag"
)

// Schema version - increment when Payload format changes.
const schemaVersion uint16 = 1

// Digest is a SHA-256 content hash.
type Digest [sha256.Size]byte

// HashContent derives the cache key for file content. Rule catalog
// changes are folded in through extra so a new release invalidates old
// entries.
func HashContent(content []byte, extra string) Digest {
	h := sha256.New()
	h.Write(content)
	h.Write([]byte{0})
	h.Write([]byte(extra))
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Payload is one cached analysis result.
type Payload struct {
	Schema      uint16
	Path        string
	Diagnostics []diag.Diagnostic
}

// Cache is a disk cache of lint results. Thread-safe for concurrent
// access; a nil *Cache is a valid no-op cache.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes the cache at the standard XDG location.
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "files", hexKey+".mp")
}

// Put writes a result atomically.
func (c *Cache) Put(key Digest, path string, diags []diag.Diagnostic) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())

	payload := Payload{
		Schema:      schemaVersion,
		Path:        path,
		Diagnostics: diags,
	}
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a cached result. ok is false on a miss or any stale entry; a
// corrupt or schema-mismatched file is treated as a miss and removed.
func (c *Cache) Get(key Digest) ([]diag.Diagnostic, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var payload Payload
	if err := msgpack.Unmarshal(data, &payload); err != nil || payload.Schema != schemaVersion {
		// Stale or corrupt entry: drop it and miss.
		_ = os.Remove(p)
		return nil, false, nil
	}
	return payload.Diagnostics, true, nil
}

// Clear removes every cached entry.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "files"))
}
