// Package service defines the interfaces between the diary's layers.
package service

import (
	"context"
	"io"

	"github.com/Veraticus/coffee-diary/internal/model"
)

// Parser reads one provider export into normalized transactions.
type Parser interface {
	ParseFile(ctx context.Context, reader io.Reader) ([]model.Transaction, error)
}

// DocumentStore persists the processed document and user overrides.
type DocumentStore interface {
	// SaveDocument replaces the cached document.
	SaveDocument(ctx context.Context, doc *model.Document) error
	// LoadDocument returns the cached document or common.ErrNotFound.
	LoadDocument(ctx context.Context) (*model.Document, error)
	// ClearDocument removes the cached document. Overrides are kept.
	ClearDocument(ctx context.Context) error

	SaveOverride(ctx context.Context, o *model.Override) error
	GetOverride(ctx context.Context, transactionID string) (*model.Override, error)
	GetOverrides(ctx context.Context) (map[string]model.Override, error)
	DeleteOverride(ctx context.Context, transactionID string) error

	// SaveTransactions records the imported transactions so later runs can
	// reprocess without the source files.
	SaveTransactions(ctx context.Context, txns []model.Transaction) error
	GetTransactions(ctx context.Context) ([]model.Transaction, error)

	Migrate(ctx context.Context) error
	Close() error
}
