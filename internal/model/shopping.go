package model

import "time"

type ShoppingList struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type ShoppingListItem struct {
	ID          int64     `json:"id"`
	ListID      int64     `json:"list_id"`
	Name        string    `json:"name"`
	Quantity    float64   `json:"quantity"`
	Unit        *string   `json:"unit"`
	IsPurchased bool      `json:"is_purchased"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BulkItemFailure records why a single item in a bulk operation was skipped.
type BulkItemFailure struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// BulkResult is the partial-success accounting returned by bulk purchase and
// bulk delete. Every input id lands in exactly one of Success or Failed.
type BulkResult struct {
	Success []int64           `json:"success"`
	Failed  []BulkItemFailure `json:"failed"`
	Summary BulkSummary       `json:"summary"`
}

type BulkSummary struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}
