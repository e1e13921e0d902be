package engine

import (
	"context"

	"github.com/Veraticus/coffee-diary/internal/model"
)

// Classifier defines the contract for coffee classification.
type Classifier interface {
	ClassifyBatch(ctx context.Context, txns []model.Transaction, workers int) ([]model.CoffeeTransaction, error)
}
