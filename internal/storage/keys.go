package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Veraticus/coffee-diary/internal/common"
	"github.com/Veraticus/coffee-diary/internal/model"
)

// Fixed cache keys for the processed document.
const (
	KeyCoffeeData   = "coffee-diary-coffee-data"
	KeyCoffeeByDate = "coffee-diary-coffee-by-date"
	KeyStatistics   = "coffee-diary-statistics"
	KeyProcessedAt  = "coffee-diary-processed-at"
)

// DocumentKeys lists every key a saved document writes.
var DocumentKeys = []string{KeyCoffeeData, KeyCoffeeByDate, KeyStatistics, KeyProcessedAt}

// encodeDocument splits a document into its cache entries.
func encodeDocument(doc *model.Document) (map[string][]byte, error) {
	entries := make(map[string][]byte, len(DocumentKeys))

	parts := map[string]any{
		KeyCoffeeData:   doc.CoffeeTransactions,
		KeyCoffeeByDate: doc.CoffeeByDate,
		KeyStatistics:   doc.Statistics,
	}
	for key, v := range parts {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", key, err)
		}
		entries[key] = data
	}
	entries[KeyProcessedAt] = []byte(doc.ProcessedAt.UTC().Format(time.RFC3339Nano))

	return entries, nil
}

// decodeDocument rebuilds a document. The coffee data entry is required.
func decodeDocument(entries map[string][]byte) (*model.Document, error) {
	raw, ok := entries[KeyCoffeeData]
	if !ok {
		return nil, fmt.Errorf("document: %w", common.ErrNotFound)
	}

	doc := &model.Document{}
	if err := json.Unmarshal(raw, &doc.CoffeeTransactions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", KeyCoffeeData, err)
	}
	if raw, ok := entries[KeyCoffeeByDate]; ok {
		if err := json.Unmarshal(raw, &doc.CoffeeByDate); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", KeyCoffeeByDate, err)
		}
	}
	if raw, ok := entries[KeyStatistics]; ok {
		if err := json.Unmarshal(raw, &doc.Statistics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", KeyStatistics, err)
		}
	}
	if raw, ok := entries[KeyProcessedAt]; ok {
		t, err := time.Parse(time.RFC3339Nano, string(raw))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", KeyProcessedAt, err)
		}
		doc.ProcessedAt = t
	}

	return doc, nil
}
