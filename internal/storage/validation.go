// Package storage persists the processed coffee document, imported
// transactions and user overrides.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/coffee-diary/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidOverride    = errors.New("invalid override")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateDocument ensures a document can be written.
func validateDocument(doc *model.Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document", ErrNilParameter)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction checks the fields stored rows are keyed and ordered by.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date == "" {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if _, err := time.Parse(time.DateOnly, txn.Date); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidTransaction, txn.Date)
	}
	if txn.Time != "" {
		if _, err := time.Parse(time.TimeOnly, txn.Time); err != nil {
			return fmt.Errorf("%w: time %q is not HH:MM:SS", ErrInvalidTransaction, txn.Time)
		}
	}
	return nil
}

// validateOverride validates an override.
func validateOverride(o *model.Override) error {
	if o == nil {
		return fmt.Errorf("%w: override", ErrNilParameter)
	}
	if strings.TrimSpace(o.TransactionID) == "" {
		return fmt.Errorf("%w: missing transaction ID", ErrInvalidOverride)
	}
	if o.IsCoffee == nil && o.IsBeans == nil {
		return fmt.Errorf("%w: nothing to override", ErrInvalidOverride)
	}
	return nil
}
