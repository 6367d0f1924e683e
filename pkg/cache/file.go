package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/poissonlab/fiberlat/pkg/errors"
)

// FileCache stores entries as JSON files under the cache directory, one
// subtree per pipeline stage. Keys from [DefaultKeyer] carry their stage as a
// prefix ("snapshot:...", "artifact:..."), so snapshots and rendered
// artifacts land in separate directories and `fiberlat cache clear` wipes
// both in one walk.
type FileCache struct {
	dir string
}

// NewFileCache creates a file-based cache rooted at dir, creating it if
// needed.
func NewFileCache(dir string) (Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create cache dir %s", dir)
	}
	return &FileCache{dir: dir}, nil
}

// fileEntry is the on-disk envelope: the cached bytes plus their expiry.
// A zero ExpiresAt means the entry never expires.
type fileEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get retrieves a value. Unreadable or expired entries are removed and
// reported as misses, so a corrupt file never poisons a recompute.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "read cache entry")
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}

	if !entry.ExpiresAt.IsZero() && time.Now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false, nil
	}

	return entry.Data, true, nil
}

// Set stores a value with the given TTL. A zero TTL means no expiration.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	entry := fileEntry{Data: data}
	if ttl > 0 {
		entry.ExpiresAt = time.Now().Add(ttl)
	}

	entryData, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode cache entry")
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create cache subdir")
	}
	if err := os.WriteFile(path, entryData, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write cache entry")
	}
	return nil
}

// Delete removes a value. Deleting a missing key is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeInternal, err, "delete cache entry")
	}
	return nil
}

// Close does nothing for the file cache.
func (c *FileCache) Close() error {
	return nil
}

// path maps a cache key to <dir>/<stage>/<h[:2]>/<h[2:]>.json. The stage
// comes from the key prefix; the two-character shard keeps any single
// directory small when a long-running service accumulates entries.
func (c *FileCache) path(key string) string {
	stage := "misc"
	if i := strings.IndexByte(key, ':'); i > 0 {
		stage = key[:i]
	}
	h := Hash([]byte(key))
	return filepath.Join(c.dir, stage, h[:2], h[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
