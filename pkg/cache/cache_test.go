package cache_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/sandrolain/goxmatch/pkg/cache"
)

func TestCacheStoreLookup(t *testing.T) {
	c := cache.New[string](4)
	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d", c.Len())
	}
	c.Store(`\d`, `[\p{Nd}]`)
	got, ok := c.Lookup(`\d`)
	if !ok || got != `[\p{Nd}]` {
		t.Fatalf("Lookup = %q, %v", got, ok)
	}
	if v, ok := c.Lookup(`\w`); ok || v != "" {
		t.Fatalf("expected miss with zero value, got %q, %v", v, ok)
	}
}

func TestCacheStoreReplaces(t *testing.T) {
	c := cache.New[int](4)
	c.Store("k", 1)
	c.Store("k", 2)
	if got, _ := c.Lookup("k"); got != 2 {
		t.Fatalf("expected replaced value 2, got %d", got)
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.Len())
	}
}

func TestCacheEvictsLeastRecent(t *testing.T) {
	c := cache.New[int](2)
	c.Store("a", 1)
	c.Store("b", 2)
	c.Lookup("a")
	c.Store("c", 3)
	if _, ok := c.Lookup("b"); ok {
		t.Fatal(`"b" should have been evicted`)
	}
	for _, k := range []string{"a", "c"} {
		if _, ok := c.Lookup(k); !ok {
			t.Fatalf("%q should still be cached", k)
		}
	}
}

func TestCacheDefaultSize(t *testing.T) {
	c := cache.New[int](0)
	for i := 0; i < cache.DefaultSize+10; i++ {
		c.Store(fmt.Sprint(i), i)
	}
	if c.Len() != cache.DefaultSize {
		t.Fatalf("expected %d entries, got %d", cache.DefaultSize, c.Len())
	}
}

func TestCacheResolve(t *testing.T) {
	c := cache.New[string](4)
	calls := 0
	fn := func() (string, error) {
		calls++
		return "host", nil
	}
	for i := 0; i < 3; i++ {
		v, err := c.Resolve("p", fn)
		if err != nil || v != "host" {
			t.Fatalf("Resolve = %q, %v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestCacheResolveErrorNotStored(t *testing.T) {
	c := cache.New[string](4)
	boom := errors.New("boom")
	calls := 0
	fail := func() (string, error) {
		calls++
		return "partial", boom
	}
	for i := 0; i < 2; i++ {
		v, err := c.Resolve("bad", fail)
		if !errors.Is(err, boom) || v != "" {
			t.Fatalf("Resolve = %q, %v", v, err)
		}
	}
	if calls != 2 || c.Len() != 0 {
		t.Fatalf("errors must not be stored: calls=%d len=%d", calls, c.Len())
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := cache.New[int](16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				k := fmt.Sprintf("k%d", (g+i)%32)
				_, _ = c.Resolve(k, func() (int, error) { return i, nil })
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Fatalf("cache exceeded its size: %d", c.Len())
	}
}
