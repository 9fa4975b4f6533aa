package store

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(Config{Cap: 7})
	t.Cleanup(func() {
		_ = s.Close(ctx)
	})

	doc := Document{
		"phone":           "popup_selection",
		"selectedCity":    "Lahore",
		"selectedService": "Office Furniture",
	}
	stored, err := s.Add(ctx, CollectionLogs, doc)
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if stored.ID() == "" {
		t.Fatal("expected generated id")
	}
	if stored.Timestamp().IsZero() {
		t.Fatal("expected defaulted timestamp")
	}

	docs, err := s.GetAll(ctx, CollectionLogs)
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	got := docs[0]
	if got.String("selectedCity") != "Lahore" || got.String("selectedService") != "Office Furniture" {
		t.Fatalf("unexpected document contents: %+v", got)
	}
	if got.ID() != stored.ID() {
		t.Fatalf("id mismatch: %s vs %s", got.ID(), stored.ID())
	}
}

func TestMemoryStoreCapKeepsNewest(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(Config{Cap: 3})

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		_, err := s.Add(ctx, CollectionLogs, Document{
			"seq":          i,
			FieldTimestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Add %d returned error: %v", i, err)
		}

		docs, err := s.GetAll(ctx, CollectionLogs)
		if err != nil {
			t.Fatalf("GetAll returned error: %v", err)
		}
		if len(docs) > 3 {
			t.Fatalf("cap exceeded after insert %d: %d documents", i, len(docs))
		}
	}

	docs, _ := s.GetAll(ctx, CollectionLogs)
	if len(docs) != 3 {
		t.Fatalf("expected exactly 3 documents, got %d", len(docs))
	}
	sortNewestFirst(docs)
	for i, want := range []int{9, 8, 7} {
		if seq, _ := docs[i]["seq"].(int); seq != want {
			t.Fatalf("expected newest-by-timestamp retention, position %d holds seq %v", i, docs[i]["seq"])
		}
	}
}

func TestMemoryStoreUncappedCollection(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(Config{Cap: 2})

	for i := 0; i < 5; i++ {
		if _, err := s.Add(ctx, CollectionAdminUsers, Document{"email": fmt.Sprintf("u%d@x.com", i)}); err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
	}
	docs, err := s.GetAll(ctx, CollectionAdminUsers)
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}
	if len(docs) != 5 {
		t.Fatalf("admin_users must not be capped, got %d documents", len(docs))
	}
}

func TestMemoryStoreDeleteByID(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(Config{Cap: 10})

	var ids []string
	for i := 0; i < 3; i++ {
		stored, err := s.Add(ctx, CollectionLogs, Document{"seq": i})
		if err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
		ids = append(ids, stored.ID())
	}

	removed, err := s.Delete(ctx, CollectionLogs, []string{ids[0], ids[1], "no-such-id"})
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	docs, _ := s.GetAll(ctx, CollectionLogs)
	if len(docs) != 1 || docs[0].ID() != ids[2] {
		t.Fatalf("unexpected remainder: %+v", docs)
	}
}

func TestMemoryStoreClearAndApplyCap(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(Config{Cap: 10})

	for i := 0; i < 6; i++ {
		if _, err := s.Add(ctx, CollectionLogs, Document{"seq": i}); err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
	}

	if err := s.ApplyCap(ctx, 2); err != nil {
		t.Fatalf("ApplyCap returned error: %v", err)
	}
	docs, _ := s.GetAll(ctx, CollectionLogs)
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents after ApplyCap, got %d", len(docs))
	}

	if err := s.ApplyCap(ctx, 0); err == nil {
		t.Fatal("expected error for non-positive cap")
	}

	if err := s.Clear(ctx, CollectionLogs); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	docs, _ = s.GetAll(ctx, CollectionLogs)
	if len(docs) != 0 {
		t.Fatalf("expected empty collection after Clear, got %d", len(docs))
	}
}

func TestMemoryStoreIsolatesReturnedDocuments(t *testing.T) {
	ctx := context.Background()
	s := NewMemory(Config{})

	stored, err := s.Add(ctx, CollectionLogs, Document{"status": "New"})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	stored["status"] = "mutated"

	docs, _ := s.GetAll(ctx, CollectionLogs)
	if docs[0].String("status") != "New" {
		t.Fatal("caller mutation leaked into stored state")
	}
	docs[0]["status"] = "mutated-again"

	again, _ := s.GetAll(ctx, CollectionLogs)
	if again[0].String("status") != "New" {
		t.Fatal("reader mutation leaked into stored state")
	}
}
