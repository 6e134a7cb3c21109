package model

import "time"

const (
	CreationManual     = "manual"
	CreationAI         = "ai_generated"
	CreationAIModified = "ai_generated_modified"
)

type Ingredient struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     *string `json:"unit,omitempty"`
}

type Recipe struct {
	ID             int64        `json:"id"`
	HouseholdID    int64        `json:"household_id"`
	Title          string       `json:"title"`
	Ingredients    []Ingredient `json:"ingredients"`
	Instructions   string       `json:"instructions"`
	MealType       *string      `json:"meal_type"`
	CreationMethod string       `json:"creation_method"`
	PrepTimeMin    *int         `json:"prep_time_minutes"`
	CookTimeMin    *int         `json:"cook_time_minutes"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
