package transport

import (
	"encoding/json"

	"rental_quote_backend/internal/pricing"
)

// BrowseRequest filters the browse listing.
type BrowseRequest struct {
	Category string `form:"category" validate:"omitempty,max=32,alphanum"`
}

// ItemResponse is one rentable item with its rates.
type ItemResponse struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Location    string          `json:"location"`
	Available   int             `json:"available"`
	DailyRate   pricing.Money   `json:"dailyRate"`
	WeeklyRate  pricing.Money   `json:"weeklyRate"`
	MonthlyRate pricing.Money   `json:"monthlyRate"`
	Attributes  json.RawMessage `json:"attributes"`
}

// CategoryResponse groups items under display metadata.
type CategoryResponse struct {
	Key         string         `json:"key"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	ItemCount   int            `json:"itemCount"`
	Items       []ItemResponse `json:"items"`
}

// BrowseResponse is returned by GET /api/v1/inventory/browse.
type BrowseResponse struct {
	Categories []CategoryResponse `json:"categories"`
}
