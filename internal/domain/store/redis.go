package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisStore keeps each collection in a redis hash keyed by document id and
// maintains an in-memory mirror of every write. Reads fall back to the
// mirror when redis is unreachable so the process keeps serving a
// consistent view of its own lifetime.
type redisStore struct {
	client *redis.Client
	prefix string
	cfg    Config
	capped map[string]bool
	mirror *memoryStore
}

// NewRedis constructs a redis-backed collection store.
func NewRedis(cfg Config) (Store, error) {
	if cfg.Redis == nil {
		return nil, fmt.Errorf("redis configuration missing")
	}
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = "waapi:collection:"
	}

	return &redisStore{
		client: client,
		prefix: prefix,
		cfg:    cfg,
		capped: cfg.cappedSet(),
		mirror: newMemory(cfg),
	}, nil
}

func (s *redisStore) key(collection string) string {
	return s.prefix + collection
}

func (s *redisStore) Add(ctx context.Context, collection string, doc Document) (Document, error) {
	// The mirror is written first so local state stays consistent even
	// when the remote write fails.
	stored, err := s.mirror.Add(ctx, collection, doc)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return stored, fmt.Errorf("marshal document: %w", err)
	}
	if err := s.client.HSet(ctx, s.key(collection), stored.ID(), data).Err(); err != nil {
		return stored, fmt.Errorf("redis write failed: %w", err)
	}

	if s.capped[collection] {
		if err := s.trimRemote(ctx, collection, s.cfg.cap()); err != nil {
			s.cfg.warn("cap trim failed for %s: %v", collection, err)
		}
	}
	return stored, nil
}

func (s *redisStore) GetAll(ctx context.Context, collection string) ([]Document, error) {
	raw, err := s.client.HGetAll(ctx, s.key(collection)).Result()
	if err != nil {
		s.cfg.warn("redis read failed for %s, serving in-memory mirror: %v", collection, err)
		return s.mirror.GetAll(ctx, collection)
	}

	docs := make([]Document, 0, len(raw))
	for _, blob := range raw {
		if len(docs) >= maxReadBatch {
			break
		}
		var doc Document
		if err := json.Unmarshal([]byte(blob), &doc); err != nil {
			s.cfg.warn("skipping undecodable document in %s: %v", collection, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *redisStore) Clear(ctx context.Context, collection string) error {
	// The mirror is cleared unconditionally so later local reads cannot
	// resurrect stale documents after a partial remote failure.
	_ = s.mirror.Clear(ctx, collection)

	if err := s.client.Del(ctx, s.key(collection)).Err(); err != nil {
		return fmt.Errorf("redis clear failed: %w", err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, collection string, ids []string) (int, error) {
	mirrorRemoved, _ := s.mirror.Delete(ctx, collection, ids)

	if len(ids) == 0 {
		return 0, nil
	}
	removed, err := s.client.HDel(ctx, s.key(collection), ids...).Result()
	if err != nil {
		return mirrorRemoved, fmt.Errorf("redis delete failed: %w", err)
	}
	return int(removed), nil
}

func (s *redisStore) ApplyCap(ctx context.Context, max int) error {
	if max <= 0 {
		return fmt.Errorf("cap must be positive, got %d", max)
	}
	if err := s.mirror.ApplyCap(ctx, max); err != nil {
		return err
	}
	for name := range s.capped {
		if err := s.trimRemote(ctx, name, max); err != nil {
			return err
		}
	}
	return nil
}

// trimRemote drops the oldest documents beyond max from the redis hash.
func (s *redisStore) trimRemote(ctx context.Context, collection string, max int) error {
	raw, err := s.client.HGetAll(ctx, s.key(collection)).Result()
	if err != nil {
		return err
	}
	if len(raw) <= max {
		return nil
	}

	docs := make([]Document, 0, len(raw))
	for id, blob := range raw {
		var doc Document
		if err := json.Unmarshal([]byte(blob), &doc); err != nil {
			// An undecodable entry is unrecoverable; evict it first.
			doc = Document{FieldID: id, FieldTimestamp: time.Time{}.Format(time.RFC3339)}
		}
		docs = append(docs, doc)
	}
	sortNewestFirst(docs)

	evict := make([]string, 0, len(docs)-max)
	for _, doc := range docs[max:] {
		evict = append(evict, doc.ID())
	}
	return s.client.HDel(ctx, s.key(collection), evict...).Err()
}

func (s *redisStore) IsRemoteBacked() bool {
	return true
}

func (s *redisStore) Close(ctx context.Context) error {
	_ = s.mirror.Close(ctx)
	return s.client.Close()
}
