package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Veraticus/coffee-diary/internal/common"
	"github.com/Veraticus/coffee-diary/internal/model"
	"github.com/Veraticus/coffee-diary/internal/service"
)

var _ service.DocumentStore = (*BoltStorage)(nil)

// Bucket names.
const (
	BucketDocuments    = "documents"
	BucketOverrides    = "overrides"
	BucketTransactions = "transactions"
	BucketMeta         = "meta"
)

var boltBuckets = []string{BucketDocuments, BucketOverrides, BucketTransactions, BucketMeta}

const (
	schemaVersionKey = "schema_version"
	boltOpenTimeout  = time.Second
)

// BoltStorage implements service.DocumentStore on a single bbolt file.
type BoltStorage struct {
	db     *bolt.DB
	dbPath string
}

// NewBoltStorage opens the bbolt file, waiting briefly when another process holds it.
func NewBoltStorage(ctx context.Context, dbPath string) (*BoltStorage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	var db *bolt.DB
	err := common.WithRetry(ctx, func() error {
		var openErr error
		db, openErr = bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: boltOpenTimeout})
		if errors.Is(openErr, bolt.ErrTimeout) {
			return fmt.Errorf("%w: %s", common.ErrStoreLocked, dbPath)
		}
		return openErr
	}, common.RetryOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &BoltStorage{db: db, dbPath: dbPath}, nil
}

// Close closes the database.
func (s *BoltStorage) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *BoltStorage) Path() string {
	return s.dbPath
}

// Migrate creates the buckets and records the schema version.
func (s *BoltStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range boltBuckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket([]byte(BucketMeta))
		if raw := meta.Get([]byte(schemaVersionKey)); raw != nil {
			v, err := strconv.Atoi(string(raw))
			if err != nil {
				return fmt.Errorf("%w: bad schema version %q", common.ErrDatabaseCorrupted, raw)
			}
			if v > ExpectedSchemaVersion {
				return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, v)
			}
		}
		return meta.Put([]byte(schemaVersionKey), []byte(strconv.Itoa(ExpectedSchemaVersion)))
	})
}

// SaveDocument replaces every cached document entry in one transaction.
func (s *BoltStorage) SaveDocument(ctx context.Context, doc *model.Document) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateDocument(doc); err != nil {
		return err
	}

	entries, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	return s.update(BucketDocuments, func(b *bolt.Bucket) error {
		for _, key := range DocumentKeys {
			if err := b.Put([]byte(key), entries[key]); err != nil {
				return fmt.Errorf("failed to save %s: %w", key, err)
			}
		}
		return nil
	})
}

// LoadDocument returns the cached document or common.ErrNotFound.
func (s *BoltStorage) LoadDocument(ctx context.Context) (*model.Document, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	entries := make(map[string][]byte)
	err := s.view(BucketDocuments, func(b *bolt.Bucket) error {
		return b.ForEach(func(k, v []byte) error {
			// Values are only valid inside the transaction.
			entries[string(k)] = append([]byte(nil), v...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return decodeDocument(entries)
}

// ClearDocument removes the cached document. Overrides and transactions are kept.
func (s *BoltStorage) ClearDocument(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(BucketDocuments)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return fmt.Errorf("failed to clear documents: %w", err)
		}
		_, err := tx.CreateBucket([]byte(BucketDocuments))
		return err
	})
}

// SaveOverride creates or replaces the override for a transaction.
func (s *BoltStorage) SaveOverride(ctx context.Context, o *model.Override) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOverride(o); err != nil {
		return err
	}

	stored := *o
	if stored.ConfirmedAt.IsZero() {
		stored.ConfirmedAt = time.Now()
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal override: %w", err)
	}

	return s.update(BucketOverrides, func(b *bolt.Bucket) error {
		return b.Put([]byte(o.TransactionID), data)
	})
}

// GetOverride returns the override for a transaction or common.ErrNotFound.
func (s *BoltStorage) GetOverride(ctx context.Context, transactionID string) (*model.Override, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return nil, err
	}

	var o model.Override
	err := s.view(BucketOverrides, func(b *bolt.Bucket) error {
		data := b.Get([]byte(transactionID))
		if data == nil {
			return fmt.Errorf("override %s: %w", transactionID, common.ErrNotFound)
		}
		return json.Unmarshal(data, &o)
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetOverrides returns every override keyed by transaction ID.
func (s *BoltStorage) GetOverrides(ctx context.Context) (map[string]model.Override, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	out := make(map[string]model.Override)
	err := s.view(BucketOverrides, func(b *bolt.Bucket) error {
		return b.ForEach(func(_, v []byte) error {
			var o model.Override
			if err := json.Unmarshal(v, &o); err != nil {
				return fmt.Errorf("failed to unmarshal override: %w", err)
			}
			out[o.TransactionID] = o
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteOverride removes the override for a transaction.
func (s *BoltStorage) DeleteOverride(ctx context.Context, transactionID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}

	return s.update(BucketOverrides, func(b *bolt.Bucket) error {
		if b.Get([]byte(transactionID)) == nil {
			return fmt.Errorf("override %s: %w", transactionID, common.ErrNotFound)
		}
		return b.Delete([]byte(transactionID))
	})
}

// SaveTransactions upserts imported transactions by ID.
func (s *BoltStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	return s.update(BucketTransactions, func(b *bolt.Bucket) error {
		for _, txn := range transactions {
			data, err := json.Marshal(txn)
			if err != nil {
				return fmt.Errorf("failed to marshal transaction %s: %w", txn.ID, err)
			}
			if err := b.Put([]byte(txn.ID), data); err != nil {
				return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
			}
		}
		return nil
	})
}

// GetTransactions returns every stored transaction ordered by date and time.
func (s *BoltStorage) GetTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var out []model.Transaction
	err := s.view(BucketTransactions, func(b *bolt.Bucket) error {
		return b.ForEach(func(_, v []byte) error {
			var txn model.Transaction
			if err := json.Unmarshal(v, &txn); err != nil {
				return fmt.Errorf("failed to unmarshal transaction: %w", err)
			}
			out = append(out, txn)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *BoltStorage) update(bucket string, fn func(b *bolt.Bucket) error) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket %s not found, run migrations first", bucket)
		}
		return fn(b)
	})
}

func (s *BoltStorage) view(bucket string, fn func(b *bolt.Bucket) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return fmt.Errorf("bucket %s not found, run migrations first", bucket)
		}
		return fn(b)
	})
}
