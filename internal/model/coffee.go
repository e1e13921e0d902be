package model

import "time"

// CoffeeTransaction is a Transaction together with its classification.
type CoffeeTransaction struct {
	// IsConfirmed is set only when a user override exists for the transaction.
	IsConfirmed     *bool    `json:"isConfirmed,omitempty"`
	MatchedKeywords []string `json:"matchedKeywords"`
	Transaction
	Confidence float64 `json:"confidence"`
	IsCoffee   bool    `json:"isCoffee"`
	IsBeans    bool    `json:"isBeans"`
}

// CoffeeDataByDate maps a YYYY-MM-DD date to that day's coffee purchases ordered by time.
type CoffeeDataByDate map[string][]CoffeeTransaction

// Count returns the number of transactions across all dates.
func (d CoffeeDataByDate) Count() int {
	n := 0
	for _, txns := range d {
		n += len(txns)
	}
	return n
}

// CoffeeStatistics summarizes a set of coffee purchases.
type CoffeeStatistics struct {
	PurchaseFrequency map[string]int `json:"purchaseFrequency"`
	MostFrequentShop  string         `json:"mostFrequentShop"`
	TotalPurchases    int            `json:"totalPurchases"`
	TotalSpending     float64        `json:"totalSpending"`
	AveragePerMonth   float64        `json:"averagePerMonth"`
	AveragePerWeek    float64        `json:"averagePerWeek"`
}

// Document is the processed output handed to display layers and cached between runs.
type Document struct {
	ProcessedAt        time.Time           `json:"processedAt"`
	CoffeeByDate       CoffeeDataByDate    `json:"coffeeByDate"`
	CoffeeTransactions []CoffeeTransaction `json:"coffeeTransactions"`
	Statistics         CoffeeStatistics    `json:"statistics"`
}
