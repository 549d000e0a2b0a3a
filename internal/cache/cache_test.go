package cache

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

func compiled(s string) func() ([]byte, error) {
	return func() ([]byte, error) { return []byte(s), nil }
}

func TestKeyOf(t *testing.T) {
	if KeyOf([]byte("a")) == KeyOf([]byte("b")) {
		t.Error("different sources share a key")
	}
	if KeyOf([]byte("a")) != KeyOf([]byte("a")) {
		t.Error("KeyOf is not deterministic")
	}
}

func TestGetOrCompile(t *testing.T) {
	c := New(10)
	key := KeyOf([]byte("src"))

	if _, ok := c.Get(key); ok {
		t.Fatal("Get on empty cache hit")
	}
	calls := 0
	compile := func() ([]byte, error) {
		calls++
		return []byte("spv"), nil
	}
	for range 3 {
		code, err := c.GetOrCompile(key, compile)
		if err != nil || string(code) != "spv" {
			t.Fatalf("GetOrCompile = %q, %v", code, err)
		}
	}
	if calls != 1 {
		t.Errorf("compile called %d times, want 1", calls)
	}
	stats := c.Stats()
	if stats.Len != 1 || stats.Hits != 2 || stats.Misses != 2 {
		t.Errorf("Stats() = %+v, want Len=1 Hits=2 Misses=2", stats)
	}
}

func TestGetOrCompileErrorNotCached(t *testing.T) {
	c := New(10)
	key := KeyOf([]byte("bad"))
	boom := errors.New("boom")
	if _, err := c.GetOrCompile(key, func() ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	if c.Len() != 0 {
		t.Error("failed compile was cached")
	}
	if code, err := c.GetOrCompile(key, compiled("ok")); err != nil || string(code) != "ok" {
		t.Errorf("retry = %q, %v", code, err)
	}
}

func TestEviction(t *testing.T) {
	c := New(4)
	keys := make([]Key, 5)
	for i := range keys {
		keys[i] = KeyOf([]byte(strconv.Itoa(i)))
	}
	for _, k := range keys[:4] {
		if _, err := c.GetOrCompile(k, compiled("x")); err != nil {
			t.Fatal(err)
		}
	}
	c.Get(keys[0])
	if _, err := c.GetOrCompile(keys[4], compiled("x")); err != nil {
		t.Fatal(err)
	}

	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3 after evicting to three quarters", c.Len())
	}
	for i, want := range []bool{true, false, false, true, true} {
		if _, ok := c.Get(keys[i]); ok != want {
			t.Errorf("key %d present = %v, want %v", i, ok, want)
		}
	}
	if got := c.Stats().Evictions; got != 2 {
		t.Errorf("Evictions = %d, want 2", got)
	}
}

func TestUnlimited(t *testing.T) {
	c := New(0)
	for i := range 100 {
		if _, err := c.GetOrCompile(KeyOf([]byte(strconv.Itoa(i))), compiled("x")); err != nil {
			t.Fatal(err)
		}
	}
	if c.Len() != 100 {
		t.Errorf("Len() = %d, want 100", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d", c.Len())
	}
}

func TestConcurrentCompileOnce(t *testing.T) {
	c := New(16)
	key := KeyOf([]byte("shared"))
	var calls atomic.Int32
	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.GetOrCompile(key, func() ([]byte, error) {
				calls.Add(1)
				return []byte("spv"), nil
			})
		}()
	}
	wg.Wait()
	if n := calls.Load(); n != 1 {
		t.Errorf("compile ran %d times, want 1", n)
	}
}
