package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestResponseCachePutThenGet(t *testing.T) {
	c := NewResponseCache(10)
	c.Put("Hello", "ctx", "hi there")

	got, ok := c.Get("Hello", "ctx")
	if !ok {
		t.Fatalf("Get() miss after Put()")
	}
	if got != "hi there" {
		t.Fatalf("Get() = %q, want %q", got, "hi there")
	}
}

func TestResponseCacheKeyNormalizesMessage(t *testing.T) {
	c := NewResponseCache(10)
	c.Put("  Hello World  ", "ctx", "resp")

	if _, ok := c.Get("hello world", "ctx"); !ok {
		t.Fatalf("Get() should hit: keys normalize case and surrounding space")
	}
	if _, ok := c.Get("hello world", "other-ctx"); ok {
		t.Fatalf("Get() should miss when the context differs")
	}
}

func TestResponseCacheFIFOEviction(t *testing.T) {
	const capacity = 5
	c := NewResponseCache(capacity)

	for i := 0; i < capacity+1; i++ {
		c.Put(fmt.Sprintf("msg-%d", i), "ctx", fmt.Sprintf("resp-%d", i))
	}

	if _, ok := c.Get("msg-0", "ctx"); ok {
		t.Fatalf("first-inserted entry should be evicted after capacity+1 inserts")
	}
	for i := 1; i <= capacity; i++ {
		if _, ok := c.Get(fmt.Sprintf("msg-%d", i), "ctx"); !ok {
			t.Fatalf("msg-%d should still be cached", i)
		}
	}
	if c.Len() != capacity {
		t.Fatalf("Len() = %d, want %d", c.Len(), capacity)
	}
}

func TestResponseCacheEvictionIgnoresReads(t *testing.T) {
	c := NewResponseCache(2)
	c.Put("a", "", "1")
	c.Put("b", "", "2")

	// Reading "a" must not rescue it: eviction is insertion-ordered.
	if _, ok := c.Get("a", ""); !ok {
		t.Fatalf("Get(a) should hit")
	}
	c.Put("c", "", "3")

	if _, ok := c.Get("a", ""); ok {
		t.Fatalf("oldest-inserted entry should be evicted even after a recent read")
	}
}

func TestResponseCacheOverwriteDoesNotGrow(t *testing.T) {
	c := NewResponseCache(2)
	c.Put("a", "", "1")
	c.Put("a", "", "2")

	if c.Len() != 1 {
		t.Fatalf("Len() = %d after overwrite, want 1", c.Len())
	}
	got, _ := c.Get("a", "")
	if got != "2" {
		t.Fatalf("Get() = %q, want latest value", got)
	}
}

func TestResponseCacheConcurrentAccess(t *testing.T) {
	c := NewResponseCache(50)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("g%d-m%d", g, i%20)
				c.Put(key, "ctx", "resp")
				c.Get(key, "ctx")
			}
		}(g)
	}
	wg.Wait()
}
