package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/coffee-diary/internal/common"
	"github.com/Veraticus/coffee-diary/internal/model"
)

// SaveDocument replaces every cached document entry in one transaction.
func (s *SQLiteStorage) SaveDocument(ctx context.Context, doc *model.Document) error {
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

	return s.inTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO documents (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, key := range DocumentKeys {
			if _, err := stmt.ExecContext(ctx, key, entries[key]); err != nil {
				return fmt.Errorf("failed to save %s: %w", key, err)
			}
		}
		return nil
	})
}

// LoadDocument returns the cached document or common.ErrNotFound.
func (s *SQLiteStorage) LoadDocument(ctx context.Context) (*model.Document, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		entries[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("document: %w", common.ErrNotFound)
	}

	return decodeDocument(entries)
}

// ClearDocument removes the cached document. Overrides and transactions are kept.
func (s *SQLiteStorage) ClearDocument(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM documents`); err != nil {
			return fmt.Errorf("failed to clear documents: %w", err)
		}
		return nil
	})
}
