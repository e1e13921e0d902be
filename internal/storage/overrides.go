package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/coffee-diary/internal/common"
	"github.com/Veraticus/coffee-diary/internal/model"
)

// SaveOverride creates or replaces the override for a transaction.
func (s *SQLiteStorage) SaveOverride(ctx context.Context, o *model.Override) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOverride(o); err != nil {
		return err
	}

	confirmedAt := o.ConfirmedAt
	if confirmedAt.IsZero() {
		confirmedAt = time.Now()
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO overrides (transaction_id, is_coffee, is_beans, note, confirmed_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(transaction_id) DO UPDATE SET
				is_coffee = excluded.is_coffee,
				is_beans = excluded.is_beans,
				note = excluded.note,
				confirmed_at = excluded.confirmed_at
		`, o.TransactionID, nullBool(o.IsCoffee), nullBool(o.IsBeans), o.Note, confirmedAt.UTC())
		if err != nil {
			return fmt.Errorf("failed to save override: %w", err)
		}
		return nil
	})
}

// GetOverride returns the override for a transaction or common.ErrNotFound.
func (s *SQLiteStorage) GetOverride(ctx context.Context, transactionID string) (*model.Override, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT transaction_id, is_coffee, is_beans, note, confirmed_at
		FROM overrides WHERE transaction_id = ?
	`, transactionID)

	o, err := scanOverride(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("override %s: %w", transactionID, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// GetOverrides returns every override keyed by transaction ID.
func (s *SQLiteStorage) GetOverrides(ctx context.Context) (map[string]model.Override, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT transaction_id, is_coffee, is_beans, note, confirmed_at FROM overrides
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]model.Override)
	for rows.Next() {
		o, err := scanOverride(rows)
		if err != nil {
			return nil, err
		}
		out[o.TransactionID] = *o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate overrides: %w", err)
	}
	return out, nil
}

// DeleteOverride removes the override for a transaction.
func (s *SQLiteStorage) DeleteOverride(ctx context.Context, transactionID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(transactionID, "transactionID"); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM overrides WHERE transaction_id = ?`, transactionID)
		if err != nil {
			return fmt.Errorf("failed to delete override: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check deleted rows: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("override %s: %w", transactionID, common.ErrNotFound)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOverride(row rowScanner) (*model.Override, error) {
	var o model.Override
	var isCoffee, isBeans sql.NullBool
	var note sql.NullString

	if err := row.Scan(&o.TransactionID, &isCoffee, &isBeans, &note, &o.ConfirmedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan override: %w", err)
	}

	if isCoffee.Valid {
		o.IsCoffee = &isCoffee.Bool
	}
	if isBeans.Valid {
		o.IsBeans = &isBeans.Bool
	}
	o.Note = note.String

	return &o, nil
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}
