// Package storage persists analysis runs behind the core.RunStore interface.
package storage

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cambi-labs/ccyoe/core"
	"github.com/tidwall/buntdb"
)

const (
	backtestPrefix     = "backtest:"
	optimizationPrefix = "optimization:"

	// CreatedIndexName orders records by creation timestamp.
	CreatedIndexName = "created_index"
)

// BuntStore implements core.RunStore on BuntDB.
type BuntStore struct {
	lastID int64
	db     *buntdb.DB
}

// BuntConfig holds configuration options for BuntDB.
type BuntConfig struct {
	// SyncPolicy determines how often data is synchronized to disk
	SyncPolicy buntdb.SyncPolicy
}

// DefaultBuntConfig returns the default configuration for BuntDB.
func DefaultBuntConfig() BuntConfig {
	return BuntConfig{SyncPolicy: buntdb.Never}
}

// NewFromMemory creates an in-memory store with default configuration.
func NewFromMemory() (core.RunStore, error) {
	store, err := NewBuntStore(":memory:", DefaultBuntConfig())
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewFromFile creates a file-based store with default configuration.
func NewFromFile(file string) (core.RunStore, error) {
	store, err := NewBuntStore(file, DefaultBuntConfig())
	if err != nil {
		return nil, err
	}
	return store, nil
}

// NewBuntStore opens the database and prepares the creation-time index.
func NewBuntStore(sourceFile string, config BuntConfig) (*BuntStore, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open buntdb: %w", err)
	}

	if err := db.SetConfig(buntdb.Config{SyncPolicy: config.SyncPolicy}); err != nil {
		return nil, fmt.Errorf("failed to configure buntdb: %w", err)
	}

	if err := db.CreateIndex(CreatedIndexName, "*", buntdb.IndexJSON("created_at")); err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	store := &BuntStore{db: db}
	if err := store.restoreLastID(); err != nil {
		return nil, err
	}
	return store, nil
}

// restoreLastID scans existing keys so new records keep monotonic IDs across
// reopens.
func (b *BuntStore) restoreLastID() error {
	return b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(key, _ string) bool {
			parts := strings.SplitN(key, ":", 2)
			if len(parts) != 2 {
				return true
			}
			if id, err := strconv.ParseInt(parts[1], 10, 64); err == nil && id > b.lastID {
				b.lastID = id
			}
			return true
		})
	})
}

func (b *BuntStore) getID() int64 {
	return atomic.AddInt64(&b.lastID, 1)
}

// SaveBacktest stores a simulation run.
func (b *BuntStore) SaveBacktest(record *core.BacktestRecord) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		if record.ID == 0 {
			record.ID = b.getID()
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.Now().UTC()
		}

		content, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal backtest record: %w", err)
		}

		key := backtestPrefix + strconv.FormatInt(record.ID, 10)
		if _, _, err := tx.Set(key, string(content), nil); err != nil {
			return fmt.Errorf("failed to store backtest record: %w", err)
		}
		return nil
	})
}

// Backtests retrieves all stored simulation runs in creation order.
func (b *BuntStore) Backtests() ([]*core.BacktestRecord, error) {
	records := make([]*core.BacktestRecord, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend(CreatedIndexName, func(key, value string) bool {
			if !strings.HasPrefix(key, backtestPrefix) {
				return true
			}
			var record core.BacktestRecord
			if err := json.Unmarshal([]byte(value), &record); err != nil {
				return true // skip corrupt entries
			}
			records = append(records, &record)
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query backtest records: %w", err)
	}
	return records, nil
}

// SaveOptimization stores a parameter-search run.
func (b *BuntStore) SaveOptimization(record *core.OptimizationRecord) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		if record.ID == 0 {
			record.ID = b.getID()
		}
		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.Now().UTC()
		}

		content, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("failed to marshal optimization record: %w", err)
		}

		key := optimizationPrefix + strconv.FormatInt(record.ID, 10)
		if _, _, err := tx.Set(key, string(content), nil); err != nil {
			return fmt.Errorf("failed to store optimization record: %w", err)
		}
		return nil
	})
}

// Optimizations retrieves all stored parameter searches in creation order.
func (b *BuntStore) Optimizations() ([]*core.OptimizationRecord, error) {
	records := make([]*core.OptimizationRecord, 0)

	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend(CreatedIndexName, func(key, value string) bool {
			if !strings.HasPrefix(key, optimizationPrefix) {
				return true
			}
			var record core.OptimizationRecord
			if err := json.Unmarshal([]byte(value), &record); err != nil {
				return true
			}
			records = append(records, &record)
			return true
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query optimization records: %w", err)
	}
	return records, nil
}

// Close closes the database.
func (b *BuntStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}
