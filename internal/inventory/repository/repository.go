package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"rental_quote_backend/platform/apperr"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Item is an inventory row joined with its rates. Missing rates read as zero.
type Item struct {
	SKU         string
	Name        string
	Location    string
	OnHand      int
	Committed   int
	Attributes  json.RawMessage
	DailyRate   decimal.Decimal
	WeeklyRate  decimal.Decimal
	MonthlyRate decimal.Decimal
}

// Repository reads the inventory catalog.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new inventory repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListItems returns every inventory item ordered by name.
func (r *Repository) ListItems(ctx context.Context) ([]Item, error) {
	query := `
		SELECT i.sku, i.name, i.location, i.on_hand, i.committed, i.attributes,
			COALESCE(r.daily_rate, 0)::text,
			COALESCE(r.weekly_rate, 0)::text,
			COALESCE(r.monthly_rate, 0)::text
		FROM inventory i
		LEFT JOIN rates r ON r.sku = i.sku
		ORDER BY i.name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, apperr.Unavailable("failed to query inventory", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		var attrs []byte
		var daily, weekly, monthly string
		if err := rows.Scan(&it.SKU, &it.Name, &it.Location, &it.OnHand, &it.Committed, &attrs, &daily, &weekly, &monthly); err != nil {
			return nil, apperr.Unavailable("failed to scan inventory item", err)
		}
		it.Attributes = json.RawMessage(attrs)
		if it.DailyRate, err = decimal.NewFromString(daily); err != nil {
			return nil, apperr.Unavailable(fmt.Sprintf("invalid daily rate for %s", it.SKU), err)
		}
		if it.WeeklyRate, err = decimal.NewFromString(weekly); err != nil {
			return nil, apperr.Unavailable(fmt.Sprintf("invalid weekly rate for %s", it.SKU), err)
		}
		if it.MonthlyRate, err = decimal.NewFromString(monthly); err != nil {
			return nil, apperr.Unavailable(fmt.Sprintf("invalid monthly rate for %s", it.SKU), err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable("failed to iterate inventory", err)
	}
	return items, nil
}
