package classification

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/coffee-diary/internal/model"
)

// Classifier runs the coffee and bean classifiers together.
type Classifier struct {
	coffee *CoffeeClassifier
	beans  *BeanClassifier
}

// New builds a Classifier from vocab.
func New(vocab Vocabulary) (*Classifier, error) {
	coffee, err := NewCoffeeClassifier(vocab)
	if err != nil {
		return nil, err
	}
	beans, err := NewBeanClassifier(vocab)
	if err != nil {
		return nil, err
	}
	return &Classifier{coffee: coffee, beans: beans}, nil
}

// Classify produces the full classification of one transaction.
func (c *Classifier) Classify(txn model.Transaction) model.CoffeeTransaction {
	res := c.coffee.Classify(txn)
	return model.CoffeeTransaction{
		Transaction:     txn,
		IsCoffee:        res.IsCoffee,
		Confidence:      res.Confidence,
		MatchedKeywords: res.Keywords,
		IsBeans:         c.beans.IsBeans(txn, res.IsCoffee),
	}
}

// ClassifyBatch classifies transactions on up to workers goroutines.
// Output order matches input order.
func (c *Classifier) ClassifyBatch(ctx context.Context, txns []model.Transaction, workers int) ([]model.CoffeeTransaction, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([]model.CoffeeTransaction, len(txns))
	if len(txns) == 0 {
		return out, nil
	}

	chunk := (len(txns) + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)

	for start := 0; start < len(txns); start += chunk {
		start := start
		end := min(start+chunk, len(txns))
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%256 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				out[i] = c.Classify(txns[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("classification interrupted: %w", err)
	}

	return out, nil
}

// FilterCoffee keeps only transactions classified as coffee.
func FilterCoffee(txns []model.CoffeeTransaction) []model.CoffeeTransaction {
	out := make([]model.CoffeeTransaction, 0, len(txns))
	for _, t := range txns {
		if t.IsCoffee {
			out = append(out, t)
		}
	}
	return out
}
