package sessioncache

import (
	"testing"
	"time"
)

func TestSetGet(t *testing.T) {
	c := New()

	c.Set("op", "token-1", time.Minute)

	got, ok := c.Get("op")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != "token-1" {
		t.Errorf("value = %q, want token-1", got)
	}
}

func TestSetOverwrites(t *testing.T) {
	c := New()

	c.Set("op", "token-1", time.Minute)
	c.Set("op", "token-2", time.Minute)

	got, _ := c.Get("op")
	if got != "token-2" {
		t.Errorf("value = %q, want token-2", got)
	}
}

func TestExpiry(t *testing.T) {
	c := New()

	c.Set("op", "token-1", 10*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("op"); ok {
		t.Error("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Errorf("len = %d, want 0 (expired entry removed on read)", c.Len())
	}
}

func TestDelete(t *testing.T) {
	c := New()

	c.Set("op", "token-1", time.Minute)
	c.Delete("op")

	if _, ok := c.Get("op"); ok {
		t.Error("expected miss after delete")
	}

	// Deleting a missing key is a no-op
	c.Delete("op")
}

func TestCleanup(t *testing.T) {
	c := New()

	c.Set("stale", "a", 5*time.Millisecond)
	c.Set("live", "b", time.Minute)
	time.Sleep(10 * time.Millisecond)

	c.Cleanup()

	if c.Len() != 1 {
		t.Errorf("len = %d, want 1", c.Len())
	}
	if _, ok := c.Get("live"); !ok {
		t.Error("live entry should survive cleanup")
	}
}
