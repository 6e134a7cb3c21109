package model

import "time"

type Pantry struct {
	ID          int64     `json:"id"`
	HouseholdID int64     `json:"household_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type PantryItem struct {
	ID        int64     `json:"id"`
	PantryID  int64     `json:"pantry_id"`
	Name      string    `json:"name"`
	Quantity  float64   `json:"quantity"`
	Unit      *string   `json:"unit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
