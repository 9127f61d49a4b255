package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"rental_quote_backend/internal/inventory/repository"
	"rental_quote_backend/internal/inventory/transport"
	"rental_quote_backend/internal/pricing"
	"rental_quote_backend/platform/logger"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const uncategorized = "other"

type categoryInfo struct {
	name        string
	description string
	icon        string
}

var categories = map[string]categoryInfo{
	"event":        {"Event & Party", "Tables, chairs, tents, linens, and staging for any occasion", "🎪"},
	"av":           {"Audio/Visual", "Sound systems, microphones, projectors, and lighting", "🎤"},
	"construction": {"Construction", "Lifts, generators, compressors, and scaffolding", "🏗️"},
	"heavy":        {"Heavy Equipment", "Forklifts, skid steers, and excavators", "🚜"},
	"climate":      {"Climate Control", "Heaters, fans, and cooling equipment", "❄️"},
}

// ItemLister loads the raw inventory.
type ItemLister interface {
	ListItems(ctx context.Context) ([]repository.Item, error)
}

// Service groups inventory for the browse UI.
type Service struct {
	repo ItemLister
	log  *logger.Logger
}

// New creates an inventory service.
func New(repo ItemLister, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Browse returns items grouped by their category attribute, categories sorted
// by display name. A non-empty category keeps only that group.
func (s *Service) Browse(ctx context.Context, req transport.BrowseRequest) (*transport.BrowseResponse, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]transport.ItemResponse)
	for _, it := range items {
		key := categoryOf(it.Attributes)
		grouped[key] = append(grouped[key], toItemResponse(it))
	}

	filter := strings.ToLower(strings.TrimSpace(req.Category))
	out := make([]transport.CategoryResponse, 0, len(grouped))
	for key, group := range grouped {
		if filter != "" && key != filter {
			continue
		}
		info := describe(key)
		out = append(out, transport.CategoryResponse{
			Key:         key,
			Name:        info.name,
			Description: info.description,
			Icon:        info.icon,
			ItemCount:   len(group),
			Items:       group,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	s.log.WithContext(ctx).Info("inventory browsed", "items", len(items), "categories", len(out))
	return &transport.BrowseResponse{Categories: out}, nil
}

func categoryOf(attrs json.RawMessage) string {
	var parsed struct {
		Category string `json:"category"`
	}
	if len(attrs) == 0 || json.Unmarshal(attrs, &parsed) != nil {
		return uncategorized
	}
	key := strings.ToLower(strings.TrimSpace(parsed.Category))
	if key == "" {
		return uncategorized
	}
	return key
}

func describe(key string) categoryInfo {
	if info, ok := categories[key]; ok {
		return info
	}
	title := cases.Title(language.English).String(key)
	return categoryInfo{name: title, description: title + " equipment", icon: "📦"}
}

func toItemResponse(it repository.Item) transport.ItemResponse {
	attrs := it.Attributes
	if len(attrs) == 0 {
		attrs = json.RawMessage(`{}`)
	}
	return transport.ItemResponse{
		SKU:         it.SKU,
		Name:        it.Name,
		Location:    it.Location,
		Available:   it.OnHand - it.Committed,
		DailyRate:   pricing.NewMoney(it.DailyRate),
		WeeklyRate:  pricing.NewMoney(it.WeeklyRate),
		MonthlyRate: pricing.NewMoney(it.MonthlyRate),
		Attributes:  attrs,
	}
}
