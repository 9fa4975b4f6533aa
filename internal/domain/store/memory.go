package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryStore struct {
	collections map[string][]Document
	mutex       sync.RWMutex
	cap         int
	capped      map[string]bool
}

// NewMemory builds an in-memory collection store.
func NewMemory(cfg Config) Store {
	return newMemory(cfg)
}

func newMemory(cfg Config) *memoryStore {
	return &memoryStore{
		collections: make(map[string][]Document),
		cap:         cfg.cap(),
		capped:      cfg.cappedSet(),
	}
}

func (s *memoryStore) Add(_ context.Context, collection string, doc Document) (Document, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection name required")
	}
	stored := normalize(doc, time.Now())

	s.mutex.Lock()
	s.collections[collection] = append(s.collections[collection], stored)
	if s.capped[collection] {
		s.collections[collection] = trimToCap(s.collections[collection], s.cap)
	}
	s.mutex.Unlock()

	return stored.Clone(), nil
}

func (s *memoryStore) GetAll(_ context.Context, collection string) ([]Document, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	docs := s.collections[collection]
	limit := len(docs)
	if limit > maxReadBatch {
		limit = maxReadBatch
	}
	out := make([]Document, 0, limit)
	for _, doc := range docs[:limit] {
		out = append(out, doc.Clone())
	}
	return out, nil
}

func (s *memoryStore) Clear(_ context.Context, collection string) error {
	s.mutex.Lock()
	delete(s.collections, collection)
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) Delete(_ context.Context, collection string, ids []string) (int, error) {
	match := make(map[string]bool, len(ids))
	for _, id := range ids {
		match[id] = true
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	docs := s.collections[collection]
	kept := docs[:0]
	removed := 0
	for _, doc := range docs {
		if match[doc.ID()] {
			removed++
			continue
		}
		kept = append(kept, doc)
	}
	s.collections[collection] = kept
	return removed, nil
}

func (s *memoryStore) ApplyCap(_ context.Context, max int) error {
	if max <= 0 {
		return fmt.Errorf("cap must be positive, got %d", max)
	}
	s.mutex.Lock()
	for name := range s.capped {
		if docs, ok := s.collections[name]; ok {
			s.collections[name] = trimToCap(docs, max)
		}
	}
	s.mutex.Unlock()
	return nil
}

func (s *memoryStore) IsRemoteBacked() bool {
	return false
}

func (s *memoryStore) Close(context.Context) error {
	return nil
}

// trimToCap keeps the max newest documents by timestamp.
func trimToCap(docs []Document, max int) []Document {
	if len(docs) <= max {
		return docs
	}
	sortNewestFirst(docs)
	return docs[:max]
}
