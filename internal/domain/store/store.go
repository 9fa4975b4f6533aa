package store

import (
	"context"
)

// Collection names owned by this store.
const (
	CollectionLogs         = "logs"
	CollectionInteractions = "user_interactions"
	CollectionAdminUsers   = "admin_users"
)

// maxReadBatch bounds GetAll so an unbounded backend cannot stall readers.
const maxReadBatch = 100

// Store is the bounded collection store contract. Exactly one driver is
// selected at startup; callers never learn which one beyond IsRemoteBacked.
type Store interface {
	// Add inserts doc with a generated id and defaulted timestamp and
	// returns the stored copy. Capped collections are trimmed to the
	// configured cap afterwards; a trim failure is logged, never returned.
	Add(ctx context.Context, collection string, doc Document) (Document, error)
	// GetAll returns at most 100 documents. Order is unspecified.
	GetAll(ctx context.Context, collection string) ([]Document, error)
	// Clear removes every document from the collection.
	Clear(ctx context.Context, collection string) error
	// Delete removes the documents whose ids match and reports how many
	// were actually removed.
	Delete(ctx context.Context, collection string, ids []string) (int, error)
	// ApplyCap re-trims every capped collection to at most max documents,
	// keeping the newest by timestamp.
	ApplyCap(ctx context.Context, max int) error
	// IsRemoteBacked reports whether a remote backend is active. Purely
	// informational.
	IsRemoteBacked() bool
	Close(ctx context.Context) error
}

// Logger is the minimal logging surface the drivers need.
type Logger interface {
	WarnTag(tag, format string, args ...any)
}

// Config describes the high level store selection parameters.
type Config struct {
	Driver string
	// Cap is the maximum retained document count for capped collections.
	Cap int
	// Capped lists the collections subject to the cap. Defaults to logs
	// and user_interactions.
	Capped []string
	Redis  *RedisConfig
	SQLite *SQLiteConfig
	Logger Logger
}

// RedisConfig captures connection options for the remote backend.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

// SQLiteConfig provides the database dependency parameters.
type SQLiteConfig struct {
	DSN string
}

const defaultCap = 7

func (c Config) cap() int {
	if c.Cap > 0 {
		return c.Cap
	}
	return defaultCap
}

func (c Config) cappedSet() map[string]bool {
	names := c.Capped
	if len(names) == 0 {
		names = []string{CollectionLogs, CollectionInteractions}
	}
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

func (c Config) warn(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.WarnTag("Store", format, args...)
	}
}
