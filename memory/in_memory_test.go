package memory

import (
	"sync"
	"testing"

	"github.com/hupe1980/leadmesh/core"
)

// Interface compliance (compile-time assertion)
var _ core.MemoryStore = (*InMemoryStore)(nil)

func TestInMemoryStore_StoreAndSearch(t *testing.T) {
	store := NewInMemoryStore()

	for i := 0; i < 5; i++ {
		content := "pattern " + string(rune('A'+i))
		if err := store.Store("s1", content, map[string]any{"idx": i}); err != nil {
			t.Fatalf("store failed: %v", err)
		}
	}

	// empty query matches everything up to the limit
	res, err := store.Search("s1", "", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(res) != 5 {
		t.Fatalf("expected 5 results, got %d", len(res))
	}

	// substring query
	res2, _ := store.Search("s1", "pattern A", 5)
	if len(res2) != 1 || res2[0].Content != "pattern A" {
		t.Fatalf("expected single match, got %#v", res2)
	}
	if res2[0].Metadata["idx"].(int) != 0 {
		t.Fatalf("metadata lost: %#v", res2[0].Metadata)
	}

	// limit applies
	res3, _ := store.Search("s1", "", 3)
	if len(res3) != 3 {
		t.Fatalf("expected 3 limited results, got %d", len(res3))
	}

	// sessions are isolated
	res4, _ := store.Search("other", "", 10)
	if len(res4) != 0 {
		t.Fatalf("expected no results for unknown session, got %d", len(res4))
	}
}

func TestInMemoryStore_MetadataIsolation(t *testing.T) {
	store := NewInMemoryStore()
	if err := store.Store("s2", "findings", map[string]any{"kind": "discovered_patterns"}); err != nil {
		t.Fatal(err)
	}

	res, _ := store.Search("s2", "", 1)
	res[0].Metadata["kind"] = "changed"

	res2, _ := store.Search("s2", "", 1)
	if res2[0].Metadata["kind"] != "discovered_patterns" {
		t.Fatalf("expected metadata copy isolation, got %#v", res2[0].Metadata)
	}
}

func TestInMemoryStore_ConcurrentAccess(t *testing.T) {
	store := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.Store("s3", "content", nil); err != nil {
				t.Errorf("store error: %v", err)
			}
			if _, err := store.Search("s3", "", 5); err != nil {
				t.Errorf("search error: %v", err)
			}
		}()
	}
	wg.Wait()

	res, _ := store.Search("s3", "", 0)
	if len(res) != 25 {
		t.Fatalf("expected 25 memories, got %d", len(res))
	}
}
