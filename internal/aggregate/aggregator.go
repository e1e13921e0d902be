// Package aggregate rolls classified coffee purchases up into daily groups,
// summary statistics and receipt data.
package aggregate

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/coffee-diary/internal/model"
)

// WeeksPerMonth converts a month count into weeks for the weekly average.
const WeeksPerMonth = 4.33

// Result is the output of one aggregation.
type Result struct {
	ByDate     model.CoffeeDataByDate
	Statistics model.CoffeeStatistics
}

// tally is a thread-confined accumulator. Merchant order is first-seen order.
type tally struct {
	byDate    model.CoffeeDataByDate
	months    map[string]int
	shops     map[string]int
	shopOrder []string
	spending  decimal.Decimal
	count     int
}

func newTally() *tally {
	return &tally{
		byDate: make(model.CoffeeDataByDate),
		months: make(map[string]int),
		shops:  make(map[string]int),
	}
}

func (t *tally) add(txn model.CoffeeTransaction) {
	t.byDate[txn.Date] = append(t.byDate[txn.Date], txn)
	t.months[txn.Month()]++

	shop := txn.Merchant
	if shop == "" {
		shop = UnknownMerchant
	}
	if _, seen := t.shops[shop]; !seen {
		t.shopOrder = append(t.shopOrder, shop)
	}
	t.shops[shop]++
	t.spending = t.spending.Add(decimal.NewFromFloat(txn.Amount))
	t.count++
}

// merge folds other into t. Callers merge partials in input order so that
// first-seen merchant order survives.
func (t *tally) merge(other *tally) {
	for date, txns := range other.byDate {
		t.byDate[date] = append(t.byDate[date], txns...)
	}
	for month, n := range other.months {
		t.months[month] += n
	}
	for _, shop := range other.shopOrder {
		if _, seen := t.shops[shop]; !seen {
			t.shopOrder = append(t.shopOrder, shop)
		}
		t.shops[shop] += other.shops[shop]
	}
	t.spending = t.spending.Add(other.spending)
	t.count += other.count
}

func (t *tally) result() Result {
	for _, txns := range t.byDate {
		sort.SliceStable(txns, func(i, j int) bool { return txns[i].Time < txns[j].Time })
	}

	stats := model.CoffeeStatistics{
		TotalPurchases:    t.count,
		TotalSpending:     t.spending.InexactFloat64(),
		PurchaseFrequency: t.months,
	}

	if n := len(t.months); n > 0 {
		stats.AveragePerMonth = float64(t.count) / float64(n)
		stats.AveragePerWeek = float64(t.count) / (float64(n) * WeeksPerMonth)
	}

	best := 0
	for _, shop := range t.shopOrder {
		if c := t.shops[shop]; c > best {
			best = c
			stats.MostFrequentShop = shop
		}
	}

	return Result{ByDate: t.byDate, Statistics: stats}
}

// Aggregate groups coffee purchases by date and computes their statistics.
// txns must already be filtered to coffee purchases.
func Aggregate(txns []model.CoffeeTransaction) Result {
	t := newTally()
	for _, txn := range txns {
		t.add(txn)
	}
	return t.result()
}

// AggregateParallel is Aggregate split across workers. Each worker tallies a
// contiguous chunk and the partials are merged serially in chunk order.
func AggregateParallel(ctx context.Context, txns []model.CoffeeTransaction, workers int) (Result, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || len(txns) < workers*2 {
		return Aggregate(txns), nil
	}

	chunk := (len(txns) + workers - 1) / workers
	partials := make([]*tally, (len(txns)+chunk-1)/chunk)

	g, ctx := errgroup.WithContext(ctx)
	for i := range partials {
		i := i
		start := i * chunk
		end := min(start+chunk, len(txns))
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p := newTally()
			for _, txn := range txns[start:end] {
				p.add(txn)
			}
			partials[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("aggregation interrupted: %w", err)
	}

	total := newTally()
	for _, p := range partials {
		total.merge(p)
	}
	return total.result(), nil
}

// Statistics recomputes statistics from an already grouped map.
// Dates are visited in order so first-seen ties resolve chronologically.
func Statistics(byDate model.CoffeeDataByDate) model.CoffeeStatistics {
	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	t := newTally()
	for _, date := range dates {
		for _, txn := range byDate[date] {
			t.add(txn)
		}
	}
	return t.result().Statistics
}

// Flatten returns every transaction in byDate ordered by date then time.
func Flatten(byDate model.CoffeeDataByDate) []model.CoffeeTransaction {
	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	out := make([]model.CoffeeTransaction, 0, byDate.Count())
	for _, date := range dates {
		out = append(out, byDate[date]...)
	}
	return out
}
