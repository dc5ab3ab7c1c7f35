package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually-advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestSetThenGet(t *testing.T) {
	c := New()
	c.Set("hosts", []string{"DC-Asterisk", "Grafana"}, time.Minute)

	v, ok := c.Get("hosts")
	if !ok {
		t.Fatal("expected hit immediately after Set")
	}
	hosts, ok := v.([]string)
	if !ok || len(hosts) != 2 {
		t.Errorf("unexpected value: %#v", v)
	}
}

func TestGetAbsent(t *testing.T) {
	c := New()
	if _, ok := c.Get("nothing"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestExpiry(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	c.Set("problems", 3, time.Minute)

	clock.Advance(59 * time.Second)
	if _, ok := c.Get("problems"); !ok {
		t.Error("entry expired before its TTL")
	}

	clock.Advance(2 * time.Second)
	if _, ok := c.Get("problems"); ok {
		t.Error("entry served after its TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry not evicted on read, len=%d", c.Len())
	}
}

func TestPerCategoryTTL(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	// Hosts get 5 minutes, problems get 1 minute, stored together.
	c.Set("hosts", "inventory", 5*time.Minute)
	c.Set("problems", "active", time.Minute)

	clock.Advance(2 * time.Minute)
	if _, ok := c.Get("problems"); ok {
		t.Error("problems entry should be expired at 2 minutes")
	}

	clock.Advance(2 * time.Minute) // total 4 minutes
	if _, ok := c.Get("hosts"); !ok {
		t.Error("hosts entry should still be valid at 4 minutes")
	}
}

func TestOverwrite(t *testing.T) {
	clock := newFakeClock()
	c := New(WithClock(clock.Now))

	c.Set("k", "old", time.Minute)
	clock.Advance(50 * time.Second)
	c.Set("k", "new", time.Minute)

	clock.Advance(30 * time.Second) // 80s after first write, 30s after second
	v, ok := c.Get("k")
	if !ok {
		t.Fatal("overwritten entry should use the new expiry")
	}
	if v != "new" {
		t.Errorf("expected overwritten value, got %v", v)
	}
}

func TestClear(t *testing.T) {
	c := New()
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)

	if n := c.Clear(); n != 2 {
		t.Errorf("Clear() = %d, want 2", n)
	}
	if c.Len() != 0 {
		t.Errorf("cache not empty after Clear, len=%d", c.Len())
	}
}

func TestStats(t *testing.T) {
	c := New()
	c.Set("a", 1, time.Minute)

	c.Get("a")
	c.Get("a")
	c.Get("missing")

	stats := c.GetStats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("stats = %+v, want 2 hits 1 miss", stats)
	}
	if stats.Entries != 1 {
		t.Errorf("entries = %d, want 1", stats.Entries)
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				key := fmt.Sprintf("key-%d", j%8)
				c.Set(key, n, time.Minute)
				c.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 8 {
		t.Errorf("expected 8 distinct keys, got %d", c.Len())
	}
}
