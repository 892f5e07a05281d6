package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/weave/storage"
)

func newTestIndex(t *testing.T) (storage.VectorIndex, func()) {
	t.Helper()
	vectors, graph, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	return vectors, func() { graph.Close(); vectors.Close(); backend.Close() }
}

func TestVectorAddAndLookup(t *testing.T) {
	index, cleanup := newTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	vid, err := index.Add(ctx, "doc-1", []float32{1, 0, 0})
	if err != nil {
		t.Fatalf("Failed to add vector: %v", err)
	}

	// Both directions of the mapping resolve
	docID, err := index.DocID(ctx, vid)
	if err != nil {
		t.Fatalf("Failed to resolve doc ID: %v", err)
	}
	if docID != "doc-1" {
		t.Fatalf("Expected 'doc-1', got '%s'", docID)
	}

	back, err := index.VectorID(ctx, "doc-1")
	if err != nil {
		t.Fatalf("Failed to resolve vector ID: %v", err)
	}
	if back != vid {
		t.Fatalf("Expected vector ID %d, got %d", vid, back)
	}

	count, err := index.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 entry, got %d", count)
	}
}

func TestVectorAddAssignsDistinctIDs(t *testing.T) {
	index, cleanup := newTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	vid1, err := index.Add(ctx, "doc-1", []float32{1, 0})
	if err != nil {
		t.Fatalf("Failed to add vector: %v", err)
	}
	vid2, err := index.Add(ctx, "doc-2", []float32{0, 1})
	if err != nil {
		t.Fatalf("Failed to add vector: %v", err)
	}
	if vid1 == vid2 {
		t.Fatalf("Expected distinct vector IDs, both were %d", vid1)
	}
}

func TestVectorAddDuplicateDoc(t *testing.T) {
	index, cleanup := newTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	if _, err := index.Add(ctx, "doc-1", []float32{1, 0}); err != nil {
		t.Fatalf("Failed to add vector: %v", err)
	}
	if _, err := index.Add(ctx, "doc-1", []float32{0, 1}); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestVectorSearch(t *testing.T) {
	index, cleanup := newTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	if _, err := index.Add(ctx, "doc-x", []float32{1, 0, 0}); err != nil {
		t.Fatalf("Failed to add vector: %v", err)
	}
	if _, err := index.Add(ctx, "doc-y", []float32{0, 1, 0}); err != nil {
		t.Fatalf("Failed to add vector: %v", err)
	}
	if _, err := index.Add(ctx, "doc-z", []float32{0.9, 0.1, 0}); err != nil {
		t.Fatalf("Failed to add vector: %v", err)
	}

	matches, err := index.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("Expected 2 matches, got %d", len(matches))
	}
	if matches[0].DocID != "doc-x" {
		t.Fatalf("Expected doc-x first, got %s", matches[0].DocID)
	}
	if matches[1].DocID != "doc-z" {
		t.Fatalf("Expected doc-z second, got %s", matches[1].DocID)
	}
	if matches[0].Score < matches[1].Score {
		t.Fatal("Expected scores in descending order")
	}
}

func TestVectorSearchTopKLargerThanIndex(t *testing.T) {
	index, cleanup := newTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	if _, err := index.Add(ctx, "doc-1", []float32{1, 0}); err != nil {
		t.Fatalf("Failed to add vector: %v", err)
	}

	matches, err := index.Search(ctx, []float32{1, 0}, 50)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(matches))
	}
}

func TestVectorUpdateDocument(t *testing.T) {
	index, cleanup := newTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	vid, err := index.Add(ctx, "doc-1", []float32{1, 0})
	if err != nil {
		t.Fatalf("Failed to add vector: %v", err)
	}

	if err := index.UpdateDocument(ctx, vid, []float32{0, 1}); err != nil {
		t.Fatalf("Failed to update vector: %v", err)
	}

	// The updated embedding wins the search, the mapping is unchanged
	matches, err := index.Search(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(matches) != 1 || matches[0].VectorID != vid {
		t.Fatalf("Expected match with vector ID %d, got %+v", vid, matches)
	}
	if matches[0].Score != 1.0 {
		t.Fatalf("Expected score 1.0, got %f", matches[0].Score)
	}

	if err := index.UpdateDocument(ctx, 9999, []float32{1}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestVectorRemoveDocument(t *testing.T) {
	index, cleanup := newTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	vid, err := index.Add(ctx, "doc-1", []float32{1, 0})
	if err != nil {
		t.Fatalf("Failed to add vector: %v", err)
	}

	if err := index.RemoveDocument(ctx, vid); err != nil {
		t.Fatalf("Failed to remove vector: %v", err)
	}

	if _, err := index.DocID(ctx, vid); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for doc lookup, got %v", err)
	}
	if _, err := index.VectorID(ctx, "doc-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for reverse lookup, got %v", err)
	}

	count, err := index.Count(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 0 {
		t.Fatalf("Expected 0 entries, got %d", count)
	}

	if err := index.RemoveDocument(ctx, vid); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for second remove, got %v", err)
	}
}

func TestVectorIDNotReusedAfterRemove(t *testing.T) {
	index, cleanup := newTestIndex(t)
	defer cleanup()

	ctx := context.Background()

	vid1, err := index.Add(ctx, "doc-1", []float32{1, 0})
	if err != nil {
		t.Fatalf("Failed to add vector: %v", err)
	}
	if err := index.RemoveDocument(ctx, vid1); err != nil {
		t.Fatalf("Failed to remove vector: %v", err)
	}

	vid2, err := index.Add(ctx, "doc-2", []float32{0, 1})
	if err != nil {
		t.Fatalf("Failed to add vector: %v", err)
	}
	if vid2 == vid1 {
		t.Fatalf("Vector ID %d was reused after removal", vid1)
	}
}
