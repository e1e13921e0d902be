// Package importer reads payment-provider exports into canonical transactions.
package importer

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/coffee-diary/internal/model"
)

// RawRecord is one provider row with its cells mapped to named fields.
type RawRecord struct {
	Datetime        string
	Category        string
	Merchant        string
	Account         string
	Description     string
	Type            string
	Amount          string
	PaymentMethod   string
	Status          string
	TransactionID   string
	MerchantOrderID string
	Note            string
	Source          model.Source
}

// Default account markers used for the privacy flags.
var (
	DefaultChainAccountMarkers    = []string{"mannercoffee"}
	DefaultDeliveryAccountMarkers = []string{"meituan", "ele.me", "eleme"}
)

var datetimePattern = regexp.MustCompile(`^(\d{4})[-/](\d{2})[-/](\d{2})(?:[\sT]+(\d{2}:\d{2}:\d{2}))?`)

var amountNoise = strings.NewReplacer("¥", "", "￥", "", ",", "", " ", "", "\t", "")

// Normalizer turns raw records into transactions, dropping the ones outside
// the target year or not outgoing.
type Normalizer struct {
	ChainAccountMarkers    []string
	DeliveryAccountMarkers []string
	Year                   int
	// ScrubAccount clears the account after the privacy flags are derived.
	ScrubAccount bool
}

// NewNormalizer creates a Normalizer for year with the default account markers.
func NewNormalizer(year int) *Normalizer {
	return &Normalizer{
		Year:                   year,
		ChainAccountMarkers:    DefaultChainAccountMarkers,
		DeliveryAccountMarkers: DefaultDeliveryAccountMarkers,
	}
}

// Normalize converts r. ok is false when the row must be dropped.
func (n *Normalizer) Normalize(r RawRecord) (model.Transaction, bool) {
	date, clock, ok := parseDatetime(r.Datetime)
	if !ok {
		slog.Debug("Dropping row with unparseable datetime", "source", r.Source, "datetime", r.Datetime)
		return model.Transaction{}, false
	}
	if n.Year != 0 && !strings.HasPrefix(date, fmt.Sprintf("%04d-", n.Year)) {
		return model.Transaction{}, false
	}
	if model.ParseTransactionType(r.Type) != model.TypeOutgoing {
		return model.Transaction{}, false
	}

	amount, err := parseAmount(r.Amount)
	if err != nil {
		slog.Debug("Dropping row with unparseable amount", "source", r.Source, "amount", r.Amount)
		return model.Transaction{}, false
	}

	datetime := strings.TrimSpace(r.Datetime)
	if datetime == "" {
		datetime = date + " " + clock
	}

	txn := model.Transaction{
		Date:            date,
		Time:            clock,
		Datetime:        datetime,
		Category:        strings.TrimSpace(r.Category),
		Merchant:        strings.TrimSpace(r.Merchant),
		Account:         strings.TrimSpace(r.Account),
		Description:     strings.TrimSpace(r.Description),
		Type:            model.TypeOutgoing,
		Amount:          amount,
		PaymentMethod:   strings.TrimSpace(r.PaymentMethod),
		Status:          strings.TrimSpace(r.Status),
		TransactionID:   strings.TrimSpace(r.TransactionID),
		MerchantOrderID: strings.TrimSpace(r.MerchantOrderID),
		Note:            strings.TrimSpace(r.Note),
		Source:          r.Source,
	}

	account := strings.ToLower(txn.Account)
	txn.IsKnownChainAccount = containsAny(account, n.ChainAccountMarkers)
	txn.IsDeliveryPlatformAccount = containsAny(account, n.DeliveryAccountMarkers)
	if n.ScrubAccount {
		txn.Account = ""
	}

	txn.ID = txn.TransactionID
	if txn.ID == "" {
		txn.ID = txn.GenerateHash()
	}

	return txn, true
}

// parseDatetime accepts YYYY-MM-DD or YYYY/MM/DD with an optional HH:MM:SS.
// A missing time becomes midnight.
func parseDatetime(s string) (date, clock string, ok bool) {
	m := datetimePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", "", false
	}
	date = m[1] + "-" + m[2] + "-" + m[3]
	clock = m[4]
	if clock == "" {
		clock = "00:00:00"
	}
	if _, err := time.Parse(time.DateTime, date+" "+clock); err != nil {
		return "", "", false
	}
	return date, clock, true
}

func parseAmount(s string) (float64, error) {
	cleaned := amountNoise.Replace(strings.TrimSpace(s))
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return d.Abs().InexactFloat64(), nil
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(s, m) {
			return true
		}
	}
	return false
}
