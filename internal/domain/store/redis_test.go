package store

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func newRedisTestStore(t *testing.T, cfg Config) (*miniredis.Miniredis, Store) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cfg.Redis = &RedisConfig{Addr: mr.Addr()}
	s, err := NewRedis(cfg)
	if err != nil {
		t.Fatalf("NewRedis error: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close(context.Background())
	})
	return mr, s
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, s := newRedisTestStore(t, Config{Cap: 7})

	if !s.IsRemoteBacked() {
		t.Fatal("redis store must report remote backing")
	}

	stored, err := s.Add(ctx, CollectionLogs, Document{
		"selectedCity": "Islamabad",
		"agentName":    "Ali Hassan",
	})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if stored.ID() == "" || stored.Timestamp().IsZero() {
		t.Fatalf("missing id or timestamp: %+v", stored)
	}

	docs, err := s.GetAll(ctx, CollectionLogs)
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}
	if len(docs) != 1 || docs[0].String("agentName") != "Ali Hassan" {
		t.Fatalf("unexpected documents: %+v", docs)
	}
}

func TestRedisStoreCap(t *testing.T) {
	ctx := context.Background()
	_, s := newRedisTestStore(t, Config{Cap: 3})

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		_, err := s.Add(ctx, CollectionInteractions, Document{
			"seq":          i,
			FieldTimestamp: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Add %d returned error: %v", i, err)
		}
	}

	docs, err := s.GetAll(ctx, CollectionInteractions)
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected cap of 3, got %d documents", len(docs))
	}
	sortNewestFirst(docs)
	if docs[0].Timestamp().Before(docs[2].Timestamp()) {
		t.Fatal("expected newest-first after sort")
	}
	// seq arrives as float64 after the JSON round trip.
	if seq, _ := docs[0]["seq"].(float64); int(seq) != 7 {
		t.Fatalf("expected newest document retained, got seq %v", docs[0]["seq"])
	}
}

func TestRedisStoreFallsBackToMirrorOnReadFailure(t *testing.T) {
	ctx := context.Background()
	mr, s := newRedisTestStore(t, Config{Cap: 7})

	if _, err := s.Add(ctx, CollectionLogs, Document{"selectedCity": "Lahore"}); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	mr.Close()

	docs, err := s.GetAll(ctx, CollectionLogs)
	if err != nil {
		t.Fatalf("expected mirror fallback, got error: %v", err)
	}
	if len(docs) != 1 || docs[0].String("selectedCity") != "Lahore" {
		t.Fatalf("mirror fallback returned unexpected documents: %+v", docs)
	}
}

func TestRedisStoreWriteFailureSurfacedButMirrored(t *testing.T) {
	ctx := context.Background()
	mr, s := newRedisTestStore(t, Config{Cap: 7})
	mr.Close()

	stored, err := s.Add(ctx, CollectionLogs, Document{"selectedCity": "Karachi"})
	if err == nil {
		t.Fatal("expected remote write error")
	}
	if stored == nil || stored.ID() == "" {
		t.Fatalf("caller must still receive the inserted identity, got %+v", stored)
	}

	docs, err := s.GetAll(ctx, CollectionLogs)
	if err != nil {
		t.Fatalf("GetAll returned error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected the mirrored write to be readable, got %d documents", len(docs))
	}
}

func TestRedisStoreDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	_, s := newRedisTestStore(t, Config{Cap: 10})

	var ids []string
	for i := 0; i < 3; i++ {
		stored, err := s.Add(ctx, CollectionLogs, Document{"seq": i})
		if err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
		ids = append(ids, stored.ID())
	}

	removed, err := s.Delete(ctx, CollectionLogs, ids[:2])
	if err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}

	if err := s.Clear(ctx, CollectionLogs); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	docs, _ := s.GetAll(ctx, CollectionLogs)
	if len(docs) != 0 {
		t.Fatalf("expected empty collection, got %d", len(docs))
	}
}
