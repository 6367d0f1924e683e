package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get missing = hit %v, err %v; want miss, nil", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit {
		t.Fatalf("Get = hit %v, err %v; want hit", hit, err)
	}
	if string(data) != "payload" {
		t.Errorf("Get = %q, want %q", data, "payload")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("Get after Delete should miss")
	}
}

func TestFileCacheExpiration(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "short", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry should be a miss")
	}
}

func TestFileCacheSeparatesStages(t *testing.T) {
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	k := NewDefaultKeyer()
	snapKey := k.SnapshotKey(SnapshotKeyOpts{Mode: "decay", Size: 5, Spacing: 1, Input: 1.5})
	artKey := k.ArtifactKey(Hash([]byte("frame")), ArtifactKeyOpts{Format: "svg"})

	if err := c.Set(ctx, snapKey, []byte("s"), TTLSnapshot); err != nil {
		t.Fatalf("Set snapshot: %v", err)
	}
	if err := c.Set(ctx, artKey, []byte("a"), TTLArtifact); err != nil {
		t.Fatalf("Set artifact: %v", err)
	}

	for _, stage := range []string{"snapshot", "artifact"} {
		if _, err := os.Stat(filepath.Join(dir, stage)); err != nil {
			t.Errorf("stage directory %q missing: %v", stage, err)
		}
	}
}

func TestShortHash(t *testing.T) {
	full := Hash([]byte("frame"))
	if got := ShortHash(full); len(got) != 12 || !strings.HasPrefix(full, got) {
		t.Errorf("ShortHash(%q) = %q", full, got)
	}
	if got := ShortHash("abc"); got != "abc" {
		t.Errorf("ShortHash short input = %q, want unchanged", got)
	}
}

func TestNullCacheAlwaysMisses(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("x"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("NullCache should never hit")
	}
}

func TestSnapshotKeyDeterminism(t *testing.T) {
	k := NewDefaultKeyer()
	opts := SnapshotKeyOpts{
		Mode:         "decay",
		Size:         20,
		Spacing:      1,
		Input:        1.5,
		SelectedRow:  3,
		SelectedCol:  4,
		HasSelection: true,
		DecayRate:    1.5,
	}

	if k.SnapshotKey(opts) != k.SnapshotKey(opts) {
		t.Error("same options should produce the same key")
	}

	other := opts
	other.Input = 2.0
	if k.SnapshotKey(opts) == k.SnapshotKey(other) {
		t.Error("different options should produce different keys")
	}
}

func TestArtifactKeyIncludesFormat(t *testing.T) {
	k := NewDefaultKeyer()
	hash := Hash([]byte("snapshot"))

	svg := k.ArtifactKey(hash, ArtifactKeyOpts{Format: "svg"})
	obj := k.ArtifactKey(hash, ArtifactKeyOpts{Format: "obj"})
	if svg == obj {
		t.Error("different formats should produce different keys")
	}
}

func TestScopedKeyerPrefix(t *testing.T) {
	base := NewDefaultKeyer()
	scoped := NewScopedKeyer(base, "session:abc:")

	opts := SnapshotKeyOpts{Mode: "closedform", Size: 3, Spacing: 1, Input: 0.5}
	got := scoped.SnapshotKey(opts)
	want := "session:abc:" + base.SnapshotKey(opts)
	if got != want {
		t.Errorf("SnapshotKey = %q, want %q", got, want)
	}
}
