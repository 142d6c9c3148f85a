package cache

import (
	"testing"
	"time"
)

func newTestCache(t *testing.T, cfg Config) *Cache {
	t.Helper()
	cfg.Dir = t.TempDir()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGet(t *testing.T) {
	c := newTestCache(t, Config{MaxSize: 1 << 20, MaxAge: time.Hour})

	key := Key("counter.pulse", "@pulse/runtime")
	if err := c.Put(key, []byte("export default 1;"), "src/counter.pulse"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, ok := c.Get(key)
	if !ok {
		t.Fatal("Get missed a stored entry")
	}
	if string(data) != "export default 1;" {
		t.Errorf("Get = %q", data)
	}

	stats := c.GetStats()
	if stats.Hits != 1 || stats.EntryCount != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 entry", stats)
	}
}

func TestGetMiss(t *testing.T) {
	c := newTestCache(t, Config{MaxSize: 1 << 20, MaxAge: time.Hour})

	if _, ok := c.Get(Key("absent")); ok {
		t.Error("Get hit on an absent key")
	}
	if got := c.GetStats().Misses; got != 1 {
		t.Errorf("Misses = %d, want 1", got)
	}
}

func TestKeyDistinct(t *testing.T) {
	a := Key("counter.pulse", "src")
	b := Key("counter.pulse", "s", "rc")
	if a == b {
		t.Error("Key collides across different input boundaries")
	}
	if a != Key("counter.pulse", "src") {
		t.Error("Key is not deterministic")
	}
}

func TestInvalidateSource(t *testing.T) {
	c := newTestCache(t, Config{MaxSize: 1 << 20, MaxAge: time.Hour})

	c.Put(Key("a"), []byte("aa"), "src/a.pulse")
	c.Put(Key("a-map"), []byte("am"), "src/a.pulse")
	c.Put(Key("b"), []byte("bb"), "src/b.pulse")

	if n := c.InvalidateSource("src/a.pulse"); n != 2 {
		t.Errorf("InvalidateSource = %d, want 2", n)
	}
	if _, ok := c.Get(Key("a")); ok {
		t.Error("invalidated entry still readable")
	}
	if _, ok := c.Get(Key("b")); !ok {
		t.Error("unrelated entry dropped")
	}
}

func TestEvictionLRU(t *testing.T) {
	c := newTestCache(t, Config{MaxSize: 10, MaxAge: time.Hour})

	c.Put("old", []byte("12345"), "")
	time.Sleep(5 * time.Millisecond)
	c.Put("new", []byte("67890"), "")
	time.Sleep(5 * time.Millisecond)

	// forcing a third entry must evict the least recently used one
	c.Put("third", []byte("abcde"), "")

	if _, ok := c.Get("old"); ok {
		t.Error("LRU entry survived eviction")
	}
	if _, ok := c.Get("third"); !ok {
		t.Error("new entry missing after eviction")
	}
	if got := c.GetStats().Evictions; got == 0 {
		t.Error("Evictions = 0, want > 0")
	}
}

func TestClear(t *testing.T) {
	c := newTestCache(t, Config{MaxSize: 1 << 20, MaxAge: time.Hour})

	c.Put(Key("a"), []byte("aa"), "")
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok := c.Get(Key("a")); ok {
		t.Error("entry survived Clear")
	}
	if got := c.GetStats().EntryCount; got != 0 {
		t.Errorf("EntryCount = %d after Clear", got)
	}
}

func TestIndexPersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()

	c1, err := New(Config{Dir: dir, MaxSize: 1 << 20, MaxAge: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	c1.Put(Key("a"), []byte("persisted"), "src/a.pulse")
	c1.Close()

	c2, err := New(Config{Dir: dir, MaxSize: 1 << 20, MaxAge: time.Hour})
	if err != nil {
		t.Fatal(err)
	}
	defer c2.Close()

	data, ok := c2.Get(Key("a"))
	if !ok || string(data) != "persisted" {
		t.Errorf("Get after reopen = %q, %v", data, ok)
	}
}
