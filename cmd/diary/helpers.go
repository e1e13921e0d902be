package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/coffee-diary/internal/classification"
	"github.com/Veraticus/coffee-diary/internal/common"
	"github.com/Veraticus/coffee-diary/internal/engine"
	"github.com/Veraticus/coffee-diary/internal/model"
	"github.com/Veraticus/coffee-diary/internal/service"
	"github.com/Veraticus/coffee-diary/internal/storage"
)

// app bundles what most commands need.
type app struct {
	store   service.DocumentStore
	engine  *engine.Engine
	display *classification.Display
}

// openApp opens storage and builds the classifier from the configured vocabulary.
func openApp(ctx context.Context) (*app, error) {
	vocab, err := classification.LoadVocabulary(settings.VocabularyPath)
	if err != nil {
		return nil, common.NewUserError("could not load the vocabulary file", err)
	}

	classifier, err := classification.New(vocab)
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}

	store, err := storage.Open(ctx, settings.StorageBackend, settings.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	eng := engine.NewWithConfig(store, classifier, engine.Config{Workers: settings.Workers})

	return &app{
		store:   store,
		engine:  eng,
		display: classification.NewDisplay(vocab),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("Failed to close storage", "error", err)
	}
}

// filterFlags are the display filters shared by list, stats and calendar.
type filterFlags struct {
	filter       string
	cafe         string
	beanMerchant string
	espresso     bool
}

// apply narrows a document's purchases by the flags.
func (f filterFlags) apply(display *classification.Display, byDate model.CoffeeDataByDate) (model.CoffeeDataByDate, error) {
	filter, ok := classification.ParseFilter(f.filter)
	if !ok {
		return nil, common.NewUserError(
			fmt.Sprintf("unknown filter %q (use chain, beans, cafe, manner, grid, dozzze or hans)", f.filter),
			common.ErrInvalidConfig)
	}
	if f.cafe != "" && filter == classification.FilterAll {
		filter = classification.FilterCafe
	}
	if f.beanMerchant != "" && filter == classification.FilterAll {
		filter = classification.FilterBeans
	}
	if f.espresso {
		filter = classification.FilterManner
	}

	out := display.FilterByDate(byDate, filter, f.cafe, f.beanMerchant)
	if !f.espresso {
		return out, nil
	}

	shots := make(model.CoffeeDataByDate)
	for date, txns := range out {
		for _, txn := range txns {
			if display.IsEspressoShot(txn) {
				shots[date] = append(shots[date], txn)
			}
		}
	}
	return shots, nil
}

// findTransaction resolves a full or prefix transaction ID.
func findTransaction(ctx context.Context, store service.DocumentStore, idOrPrefix string) (model.Transaction, error) {
	txns, err := store.GetTransactions(ctx)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("failed to load transactions: %w", err)
	}

	var matches []model.Transaction
	for _, txn := range txns {
		if txn.ID == idOrPrefix {
			return txn, nil
		}
		if strings.HasPrefix(txn.ID, idOrPrefix) {
			matches = append(matches, txn)
		}
	}

	switch len(matches) {
	case 0:
		return model.Transaction{}, common.NewUserError("no transaction with ID "+idOrPrefix, common.ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		return model.Transaction{}, common.NewUserError(
			fmt.Sprintf("ID prefix %s matches %d transactions, use more characters", idOrPrefix, len(matches)),
			common.ErrInvalidConfig)
	}
}
