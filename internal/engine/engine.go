// Package engine turns imported transactions into the processed coffee document.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/coffee-diary/internal/aggregate"
	"github.com/Veraticus/coffee-diary/internal/classification"
	"github.com/Veraticus/coffee-diary/internal/common"
	"github.com/Veraticus/coffee-diary/internal/model"
	"github.com/Veraticus/coffee-diary/internal/service"
)

// Engine orchestrates classification, overrides and aggregation.
type Engine struct {
	storage    service.DocumentStore
	classifier Classifier
	now        func() time.Time
	workers    int
}

// Config holds configuration options for the engine.
type Config struct {
	// Now stamps ProcessedAt. Defaults to time.Now.
	Now func() time.Time
	// Workers bounds classification and aggregation concurrency. Zero uses GOMAXPROCS.
	Workers int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Now: time.Now}
}

// New creates a new engine with the given dependencies.
func New(storage service.DocumentStore, classifier Classifier) *Engine {
	return NewWithConfig(storage, classifier, DefaultConfig())
}

// NewWithConfig creates a new engine with custom configuration.
func NewWithConfig(storage service.DocumentStore, classifier Classifier, config Config) *Engine {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Engine{
		storage:    storage,
		classifier: classifier,
		now:        config.Now,
		workers:    config.Workers,
	}
}

// Process classifies txns, applies overrides, keeps the coffee purchases and
// aggregates them. It does not touch storage.
func (e *Engine) Process(ctx context.Context, txns []model.Transaction, overrides map[string]model.Override) (*model.Document, error) {
	slog.Info("Processing transactions", "count", len(txns), "overrides", len(overrides))

	classified, err := e.classifier.ClassifyBatch(ctx, txns, e.workers)
	if err != nil {
		return nil, err
	}

	applied := ApplyOverrides(classified, overrides)
	coffee := classification.FilterCoffee(classified)

	result, err := aggregate.AggregateParallel(ctx, coffee, e.workers)
	if err != nil {
		return nil, err
	}

	slog.Info("Processed transactions",
		"coffee", len(coffee),
		"days", len(result.ByDate),
		"overrides_applied", applied)

	return &model.Document{
		ProcessedAt:        e.now(),
		CoffeeTransactions: coffee,
		CoffeeByDate:       result.ByDate,
		Statistics:         result.Statistics,
	}, nil
}

// Ingest stores newly imported transactions and rebuilds the document.
func (e *Engine) Ingest(ctx context.Context, txns []model.Transaction) (*model.Document, error) {
	if err := e.storage.SaveTransactions(ctx, txns); err != nil {
		return nil, fmt.Errorf("failed to save transactions: %w", err)
	}
	return e.Rebuild(ctx)
}

// Rebuild reprocesses every stored transaction and replaces the cached document.
func (e *Engine) Rebuild(ctx context.Context) (*model.Document, error) {
	txns, err := e.storage.GetTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	if len(txns) == 0 {
		return nil, common.NewUserError("no transactions imported yet, run `diary import` first", common.ErrNoTransactions)
	}

	overrides, err := e.storage.GetOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}

	doc, err := e.Process(ctx, txns, overrides)
	if err != nil {
		return nil, err
	}

	if err := e.storage.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	return doc, nil
}

// Document returns the cached document, rebuilding it when none is cached.
func (e *Engine) Document(ctx context.Context) (*model.Document, error) {
	doc, err := e.storage.LoadDocument(ctx)
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	slog.Debug("No cached document, rebuilding")
	return e.Rebuild(ctx)
}

// Confirm records a user decision for one transaction and rebuilds the document.
func (e *Engine) Confirm(ctx context.Context, o model.Override) (*model.Document, error) {
	if o.ConfirmedAt.IsZero() {
		o.ConfirmedAt = e.now()
	}
	if err := e.storage.SaveOverride(ctx, &o); err != nil {
		return nil, fmt.Errorf("failed to save override: %w", err)
	}
	return e.Rebuild(ctx)
}

// Unconfirm removes a user decision and rebuilds the document.
func (e *Engine) Unconfirm(ctx context.Context, transactionID string) (*model.Document, error) {
	if err := e.storage.DeleteOverride(ctx, transactionID); err != nil {
		return nil, fmt.Errorf("failed to delete override: %w", err)
	}
	return e.Rebuild(ctx)
}
