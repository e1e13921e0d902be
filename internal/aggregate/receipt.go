package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/coffee-diary/internal/model"
)

// ReceiptTopN is how many shops and bean merchants a receipt lists.
const ReceiptTopN = 10

// ReceiptIDLength is the number of characters in a receipt ID.
const ReceiptIDLength = 12

// UnknownMerchant labels purchases with an empty merchant on the receipt.
const UnknownMerchant = "Unknown"

// MonthLabels are the receipt's month keys in calendar order.
var MonthLabels = [12]string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// ReceiptBuilder builds receipt data. The clock and ID source are injectable for tests.
type ReceiptBuilder struct {
	Now   func() time.Time
	NewID func() string
}

// NewReceiptBuilder returns a builder using the wall clock and random IDs.
func NewReceiptBuilder() *ReceiptBuilder {
	return &ReceiptBuilder{Now: time.Now, NewID: NewReceiptID}
}

// NewReceiptID returns ReceiptIDLength random lowercase hex characters.
func NewReceiptID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:ReceiptIDLength]
}

// Build summarizes txns as a receipt.
func (b *ReceiptBuilder) Build(txns []model.CoffeeTransaction) model.ReceiptData {
	monthly := make(map[string]int, len(MonthLabels))
	for _, label := range MonthLabels {
		monthly[label] = 0
	}

	shops := newCounter()
	beans := newCounter()

	for _, txn := range txns {
		if label, ok := monthLabel(txn.Date); ok {
			monthly[label]++
		}

		name := txn.Merchant
		if name == "" {
			name = UnknownMerchant
		}
		if txn.IsBeans {
			beans.add(name)
		} else {
			shops.add(name)
		}
	}

	return model.ReceiptData{
		Total:            len(txns),
		Monthly:          monthly,
		TopShops:         shops.top(ReceiptTopN),
		TopBeanMerchants: beans.top(ReceiptTopN),
		ReceiptID:        b.NewID(),
		GeneratedDate:    b.Now().Format("2006/01/02"),
	}
}

// Receipt builds receipt data with the default builder.
func Receipt(txns []model.CoffeeTransaction) model.ReceiptData {
	return NewReceiptBuilder().Build(txns)
}

func monthLabel(date string) (string, bool) {
	if len(date) < 7 {
		return "", false
	}
	t, err := time.Parse("2006-01", date[:7])
	if err != nil {
		return "", false
	}
	return MonthLabels[t.Month()-1], true
}

// counter tallies names and remembers first-seen order for stable ranking.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(name string) {
	if _, ok := c.counts[name]; !ok {
		c.order = append(c.order, name)
	}
	c.counts[name]++
}

func (c *counter) top(n int) []model.NameCount {
	out := make([]model.NameCount, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, model.NameCount{Name: name, Count: c.counts[name]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
