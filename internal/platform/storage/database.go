package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CollectionDocument is the GORM row backing one schema-loose document in a
// named collection. Field values live in the JSON payload; id and timestamp
// are lifted into columns so cap trimming and deletion stay indexable.
type CollectionDocument struct {
	DocID      string         `gorm:"primaryKey" json:"id"`
	Collection string         `gorm:"primaryKey;index" json:"collection"`
	Timestamp  time.Time      `gorm:"index;not null" json:"timestamp"`
	Payload    datatypes.JSON `gorm:"not null" json:"payload"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (CollectionDocument) TableName() string {
	return "collection_documents"
}

// OpenDatabase opens the SQLite database for the sqlite store driver and
// migrates its schema. An empty DSN defaults to ./data/waapi.db.
func OpenDatabase(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dataDir := "./data"
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "waapi.db")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&CollectionDocument{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}
