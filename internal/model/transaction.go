// Package model defines the core data structures for the coffee diary.
package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// TransactionType is the cash-flow direction reported by the payment provider.
type TransactionType string

// Transaction type constants.
const (
	TypeOutgoing TransactionType = "outgoing"
	TypeIncoming TransactionType = "incoming"
	TypeMixed    TransactionType = "mixed"
	TypeUnknown  TransactionType = ""
)

// ParseTransactionType maps the provider's 收/支 column to a TransactionType.
func ParseTransactionType(s string) TransactionType {
	s = strings.TrimSpace(s)
	switch {
	case s == "收入/支出":
		return TypeMixed
	case strings.Contains(s, "支出"):
		return TypeOutgoing
	case strings.Contains(s, "收入"):
		return TypeIncoming
	}
	return TypeUnknown
}

// Source identifies which export adapter produced a record.
type Source string

// Source constants.
const (
	SourceAlipay    Source = "alipay"
	SourceWeChatPay Source = "wechatpay"
)

// Transaction represents a single normalized payment record from either provider.
type Transaction struct {
	ID              string          `json:"id"`
	Date            string          `json:"date"` // YYYY-MM-DD
	Time            string          `json:"time"` // HH:MM:SS
	Datetime        string          `json:"datetime"`
	Category        string          `json:"category"`
	Merchant        string          `json:"merchant"`
	Account         string          `json:"account"`
	Description     string          `json:"description"`
	Type            TransactionType `json:"type"`
	PaymentMethod   string          `json:"paymentMethod"`
	Status          string          `json:"status"`
	TransactionID   string          `json:"transactionId"`
	MerchantOrderID string          `json:"merchantOrderId"`
	Note            string          `json:"note"`
	Source          Source          `json:"source"`
	Amount          float64         `json:"amount"`

	// Derived from Account before it is scrubbed.
	IsKnownChainAccount       bool `json:"isKnownChainAccount,omitempty"`
	IsDeliveryPlatformAccount bool `json:"isDeliveryPlatformAccount,omitempty"`
}

// Month returns the YYYY-MM prefix of the transaction date.
func (t *Transaction) Month() string {
	if len(t.Date) < 7 {
		return t.Date
	}
	return t.Date[:7]
}

// GenerateHash creates a stable identifier for records that carry no provider order number.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%.2f:%s:%s:%s",
		t.Source,
		t.Date,
		t.Time,
		t.Amount,
		t.Merchant,
		t.Description,
		t.Account)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
