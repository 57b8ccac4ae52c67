package cache

import (
	"testing"
	"time"
)

func TestLRUCacheGetSet(t *testing.T) {
	c := NewLRUCache[string](2, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get(missing) ok = true, want false")
	}

	c.Set("a", "one")
	if v, ok := c.Get("a"); !ok || v != "one" {
		t.Errorf("Get(a) = %q, %v; want one, true", v, ok)
	}

	c.Set("a", "two")
	if v, _ := c.Get("a"); v != "two" {
		t.Errorf("Get(a) after overwrite = %q, want two", v)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // refresh a, so b becomes the eviction candidate
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("expected a to survive eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("expected c to be present")
	}
}

func TestLRUCacheTTL(t *testing.T) {
	c := NewLRUCache[int](10, 10*time.Millisecond)

	c.Set("a", 1)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("a"); ok {
		t.Error("expected a to expire")
	}
	if n := c.CleanExpired(); n != 0 {
		// Get already removed it.
		t.Errorf("CleanExpired() = %d, want 0", n)
	}
}

func TestLRUCacheDeletePrefix(t *testing.T) {
	c := NewLRUCache[int](10, time.Minute)

	c.Set("owner:1:2026-07", 1)
	c.Set("owner:1:2026-08", 2)
	c.Set("owner:2:2026-08", 3)

	c.DeletePrefix("owner:1:")

	if _, ok := c.Get("owner:1:2026-07"); ok {
		t.Error("expected owner 1 July entry to be removed")
	}
	if _, ok := c.Get("owner:1:2026-08"); ok {
		t.Error("expected owner 1 August entry to be removed")
	}
	if _, ok := c.Get("owner:2:2026-08"); !ok {
		t.Error("expected owner 2 entry to survive")
	}
}
