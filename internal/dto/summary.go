package dto

// DaySummaryResponse is the derived per-day view: categorized status counts
// and the cafeteria headcount.
type DaySummaryResponse struct {
	Day string `json:"day"`
	// Counts maps status code to the number of members holding it.
	Counts map[string]int `json:"counts"`
	// Unspecified counts members with no record for the day.
	Unspecified   int `json:"unspecified"`
	MealHeadcount int `json:"meal_headcount"`
	Total         int `json:"total"`
}
