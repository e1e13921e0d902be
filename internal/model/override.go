package model

import "time"

// Override records a user's correction of a classifier decision.
// Nil fields leave the classifier's output untouched.
type Override struct {
	ConfirmedAt   time.Time `json:"confirmedAt"`
	IsCoffee      *bool     `json:"isCoffee,omitempty"`
	IsBeans       *bool     `json:"isBeans,omitempty"`
	TransactionID string    `json:"transactionId"`
	Note          string    `json:"note,omitempty"`
}
