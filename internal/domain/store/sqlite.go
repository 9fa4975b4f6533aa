package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MianAhsan577/waapi-server/internal/platform/storage"

	"gorm.io/gorm"
)

type sqliteStore struct {
	db     *gorm.DB
	cfg    Config
	capped map[string]bool
}

// NewSQLite builds a SQLite-backed collection store.
func NewSQLite(db *gorm.DB, cfg Config) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite store requires database handle")
	}
	return &sqliteStore{
		db:     db,
		cfg:    cfg,
		capped: cfg.cappedSet(),
	}, nil
}

func (s *sqliteStore) Add(ctx context.Context, collection string, doc Document) (Document, error) {
	if collection == "" {
		return nil, fmt.Errorf("collection name required")
	}
	stored := normalize(doc, time.Now())

	payload, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	row := &storage.CollectionDocument{
		DocID:      stored.ID(),
		Collection: collection,
		Timestamp:  stored.Timestamp(),
		Payload:    payload,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, fmt.Errorf("sqlite write failed: %w", err)
	}

	if s.capped[collection] {
		if err := s.trim(ctx, collection, s.cfg.cap()); err != nil {
			s.cfg.warn("cap trim failed for %s: %v", collection, err)
		}
	}
	return stored, nil
}

func (s *sqliteStore) GetAll(ctx context.Context, collection string) ([]Document, error) {
	var rows []storage.CollectionDocument
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Limit(maxReadBatch).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("sqlite read failed: %w", err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		var doc Document
		if err := json.Unmarshal(row.Payload, &doc); err != nil {
			s.cfg.warn("skipping undecodable document %s in %s: %v", row.DocID, collection, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *sqliteStore) Clear(ctx context.Context, collection string) error {
	return s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Delete(&storage.CollectionDocument{}).Error
}

func (s *sqliteStore) Delete(ctx context.Context, collection string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id IN ?", collection, ids).
		Delete(&storage.CollectionDocument{})
	if res.Error != nil {
		return 0, fmt.Errorf("sqlite delete failed: %w", res.Error)
	}
	return int(res.RowsAffected), nil
}

func (s *sqliteStore) ApplyCap(ctx context.Context, max int) error {
	if max <= 0 {
		return fmt.Errorf("cap must be positive, got %d", max)
	}
	for name := range s.capped {
		if err := s.trim(ctx, name, max); err != nil {
			return err
		}
	}
	return nil
}

// trim deletes the oldest rows beyond max within one transaction.
func (s *sqliteStore) trim(ctx context.Context, collection string, max int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&storage.CollectionDocument{}).
			Where("collection = ?", collection).
			Count(&count).Error; err != nil {
			return err
		}
		if count <= int64(max) {
			return nil
		}

		var victims []string
		if err := tx.Model(&storage.CollectionDocument{}).
			Where("collection = ?", collection).
			Order("timestamp ASC").
			Limit(int(count) - max).
			Pluck("doc_id", &victims).Error; err != nil {
			return err
		}
		return tx.Where("collection = ? AND doc_id IN ?", collection, victims).
			Delete(&storage.CollectionDocument{}).Error
	})
}

func (s *sqliteStore) IsRemoteBacked() bool {
	return false
}

func (s *sqliteStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
