package workspace

import (
	"sync"
	"testing"
)

func TestLRUCache_GetPut(t *testing.T) {
	c := NewLRUCache[string, int](3, nil)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected miss on empty cache")
	}

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	if c.Len() != 3 {
		t.Fatalf("expected len 3, got %d", c.Len())
	}
	for k, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		v, ok := c.Get(k)
		if !ok || v != want {
			t.Fatalf("key %q: want %d got %d (ok=%v)", k, want, v, ok)
		}
	}
}

func TestLRUCache_EvictsLeastRecent(t *testing.T) {
	var evicted []string
	c := NewLRUCache[string, int](2, func(k string, _ int) { evicted = append(evicted, k) })

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a")
	c.Put("c", 3)

	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("expected b evicted, got %v", evicted)
	}
	if _, ok := c.Get("b"); ok {
		t.Fatal("expected 'b' to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected 'a' to still be present")
	}

	// Replacing an existing key never evicts.
	c.Put("a", 10)
	if len(evicted) != 1 {
		t.Fatalf("update must not evict, got %v", evicted)
	}
}

func TestLRUCache_RemoveAndClear(t *testing.T) {
	calls := 0
	c := NewLRUCache[string, int](5, func(string, int) { calls++ })
	c.Put("a", 1)
	c.Put("b", 2)

	if !c.Remove("a") {
		t.Fatal("expected Remove to report a present key")
	}
	if c.Remove("nonexistent") {
		t.Fatal("expected Remove of absent key to report false")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected len 0 after clear, got %d", c.Len())
	}
	if calls != 0 {
		t.Fatalf("explicit removal must not call onEvict, got %d calls", calls)
	}
}

func TestLRUCache_NonPositiveCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1, -100} {
		c := NewLRUCache[string, int](capacity, nil)
		if c.Cap() != 1 {
			t.Errorf("capacity %d: expected normalised cap=1, got %d", capacity, c.Cap())
		}
	}
}

func TestLRUCache_ConcurrentAccess(t *testing.T) {
	const workers = 20
	const ops = 100
	c := NewLRUCache[int, int](50, func(int, int) {})

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < ops; i++ {
				key := (id*ops + i) % 80
				c.Put(key, key*2)
				c.Get(key)
				if key%10 == 0 {
					c.Remove(key)
				}
			}
		}(w)
	}
	wg.Wait()
	if c.Len() > c.Cap() {
		t.Fatalf("len %d exceeds capacity %d after concurrent use", c.Len(), c.Cap())
	}
}
