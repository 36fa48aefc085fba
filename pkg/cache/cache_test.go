package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestFileCacheSetGet(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()

	if _, found, err := c.Get(ctx, "missing"); err != nil || found {
		t.Errorf("empty cache: found=%v err=%v", found, err)
	}

	if err := c.Set(ctx, "key1", []byte("payload"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, found, err := c.Get(ctx, "key1")
	if err != nil || !found {
		t.Fatalf("Get after Set: found=%v err=%v", found, err)
	}
	if string(data) != "payload" {
		t.Errorf("data = %q, want %q", data, "payload")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "ephemeral", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, found, err := c.Get(ctx, "ephemeral"); err != nil || found {
		t.Errorf("expired entry: found=%v err=%v", found, err)
	}
}

func TestFileCacheNoTTL(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, found, _ := c.Get(ctx, "forever"); !found {
		t.Error("zero-TTL entry should not expire")
	}
}

func TestFileCacheDelete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.Set(ctx, "key", []byte("x"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := c.Get(ctx, "key"); found {
		t.Error("deleted entry still present")
	}
	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("x"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, found, err := c.Get(ctx, "key"); err != nil || found {
		t.Errorf("null cache should never hit: found=%v err=%v", found, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	hash := Hash([]byte("descriptor contents"))

	a := k.ResolveKey(hash, ResolveKeyOpts{View: "output", Width: 1920, Height: 1080})
	b := k.ResolveKey(hash, ResolveKeyOpts{View: "output", Width: 1920, Height: 1080})
	if a != b {
		t.Error("identical inputs must produce identical keys")
	}
	if !strings.HasPrefix(a, "resolve:") {
		t.Errorf("key = %q, want resolve: prefix", a)
	}

	// Any parameter change produces a distinct key.
	variants := []string{
		k.ResolveKey(hash, ResolveKeyOpts{View: "input", Width: 1920, Height: 1080}),
		k.ResolveKey(hash, ResolveKeyOpts{View: "output", Width: 960, Height: 1080}),
		k.ResolveKey(hash, ResolveKeyOpts{View: "output", Width: 1920, Height: 540}),
		k.ResolveKey(Hash([]byte("other contents")), ResolveKeyOpts{View: "output", Width: 1920, Height: 1080}),
	}
	for i, v := range variants {
		if v == a {
			t.Errorf("variant %d collided with base key", i)
		}
	}
}

func TestHash(t *testing.T) {
	h := Hash([]byte("abc"))
	if len(h) != 64 {
		t.Errorf("hash length = %d, want 64", len(h))
	}
	if h != Hash([]byte("abc")) {
		t.Error("hash must be deterministic")
	}
	if h == Hash([]byte("abd")) {
		t.Error("distinct inputs should not collide")
	}
}
