package model

// NameCount pairs a shop or merchant name with a purchase count.
type NameCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ReceiptData backs the stylized year-in-coffee receipt.
type ReceiptData struct {
	Monthly          map[string]int `json:"monthly"` // JAN..DEC
	ReceiptID        string         `json:"receiptId"`
	GeneratedDate    string         `json:"generatedDate"` // YYYY/MM/DD
	TopShops         []NameCount    `json:"topShops"`
	TopBeanMerchants []NameCount    `json:"topBeanMerchants"`
	Total            int            `json:"total"`
}
