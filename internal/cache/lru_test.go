package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recent
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %d, %v", v, ok)
	}
	if c.Size() != 2 || c.Stats().Evictions != 1 {
		t.Fatalf("size=%d stats=%+v", c.Size(), c.Stats())
	}
}

func TestLRUExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute).WithClock(clock.Now)

	c.Set("k", "v")
	clock.Advance(30 * time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("entry expired too early")
	}
	clock.Advance(31 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("entry should have expired")
	}

	c.Set("x", "1")
	c.Set("y", "2")
	clock.Advance(2 * time.Minute)
	c.Set("z", "3")
	if n := c.CleanExpired(); n != 2 {
		t.Fatalf("CleanExpired removed %d, want 2", n)
	}
	if c.Size() != 1 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestGetOrCompute(t *testing.T) {
	c := NewLRUCache[int](4, time.Minute)
	calls := 0
	compute := func() int { calls++; return 7 }

	if v := c.GetOrCompute("k", compute); v != 7 {
		t.Fatalf("first = %d", v)
	}
	if v := c.GetOrCompute("k", compute); v != 7 {
		t.Fatalf("second = %d", v)
	}
	if calls != 1 {
		t.Fatalf("compute ran %d times", calls)
	}
	if s := c.Stats(); s.Hits != 1 || s.Misses != 1 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestDeleteAndPurge(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	c.Set("a", 1)
	c.Delete("a")
	if c.Size() != 0 {
		t.Fatal("delete failed")
	}
	c.Set("b", 2)
	c.Purge()
	if _, ok := c.Get("b"); ok || c.Size() != 0 {
		t.Fatal("purge failed")
	}
}

func TestManagerSweep(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewLRUCache[int](4, time.Second).WithClock(clock.Now)
	c.Set("a", 1)
	clock.Advance(2 * time.Second)

	m := NewManager(nil)
	m.Register(c)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("Sweep = %d", n)
	}

	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()
}

func TestManagerStopWithoutStart(t *testing.T) {
	NewManager(nil).Stop()
}
