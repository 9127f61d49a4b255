// Package summary writes the short customer-facing note that accompanies a quote.
// The note is best-effort: callers bound each call with a timeout and fall back
// to FallbackNote when no provider is configured or the call fails.
package summary

import (
	"context"
	"fmt"
	"strings"

	"rental_quote_backend/internal/pricing"
	"rental_quote_backend/platform/config"
	"rental_quote_backend/platform/logger"
)

// Summarizer turns a priced quote into a short natural-language note.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}

// Input is everything the summary may mention. No customer contact data is passed.
type Input struct {
	Language string
	Tier     string
	Location string
	Quote    *pricing.Quote
}

// DefaultLanguage is used when the request carries no language or an unsupported one.
const DefaultLanguage = "en"

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
}

// BaseLanguage reduces a tag like "es-ES" or "fr_CA" to a supported base code.
func BaseLanguage(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if i := strings.IndexAny(tag, "-_"); i >= 0 {
		tag = tag[:i]
	}
	if _, ok := languageNames[tag]; ok {
		return tag
	}
	return DefaultLanguage
}

// New returns the summarizer for the configured provider, or nil when summaries
// are disabled or the provider has no API key.
func New(cfg config.SummaryConfig, log *logger.Logger) (Summarizer, error) {
	switch cfg.GetLLMProvider() {
	case config.ProviderMoonshot:
		if cfg.GetMoonshotAPIKey() == "" {
			log.Info("summary disabled: MOONSHOT_API_KEY not set")
			return nil, nil
		}
		s, err := NewAgentSummarizer(cfg.GetMoonshotAPIKey(), cfg.GetLLMModel())
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.ProviderOpenAI:
		if cfg.GetOpenAIAPIKey() == "" {
			log.Info("summary disabled: OPENAI_API_KEY not set")
			return nil, nil
		}
		return NewOpenAISummarizer(cfg.GetOpenAIAPIKey(), cfg.GetOpenAIBaseURL(), cfg.GetLLMModel()), nil
	default:
		return nil, nil
	}
}

func systemPrompt() string {
	return "You are a friendly assistant for an event and equipment rental company. Write short, accurate quote notes for customers. Never invent prices, items or dates."
}

// BuildPrompt renders the user message sent to the model.
func BuildPrompt(input Input) string {
	q := input.Quote
	lines := make([]string, 0, len(q.Items))
	for _, item := range q.Items {
		lines = append(lines, fmt.Sprintf("- %d x %s (%s)", item.Qty, item.Name, item.Subtotal.StringFixed(2)))
	}
	fees := make([]string, 0, len(q.Fees))
	for _, fee := range q.Fees {
		fees = append(fees, fmt.Sprintf("- %s: %s", fee.Name, fee.Amount.StringFixed(2)))
	}
	if len(fees) == 0 {
		fees = append(fees, "- none")
	}
	location := strings.TrimSpace(input.Location)
	if location == "" {
		location = "not provided"
	}

	return fmt.Sprintf(`Quote:
- Rental days: %d
- Customer tier: %s
- Location: %s
- Subtotal: %s
- Tax: %s
- Total: %s

Items:
%s

Fees:
%s

Task:
Write a two or three sentence note for the customer about this quote.
Rules:
- Write in %s.
- Plain text only, no markdown.
- Use the amounts exactly as given.
- Mention the rental length and the total.
`, q.Days, input.Tier, location,
		q.Subtotal.StringFixed(2), q.Tax.StringFixed(2), q.Total.StringFixed(2),
		strings.Join(lines, "\n"), strings.Join(fees, "\n"),
		languageNames[BaseLanguage(input.Language)])
}

var fallbackTemplates = map[string]string{
	"en": "Here is your quote for %d item(s) over %d day(s). The total is $%s including tax and fees. Reply if you would like to adjust quantities or dates.",
	"es": "Aquí está su cotización para %d artículo(s) durante %d día(s). El total es $%s con impuestos y cargos incluidos. Responda si desea ajustar cantidades o fechas.",
	"fr": "Voici votre devis pour %d article(s) sur %d jour(s). Le total est de %s $ taxes et frais compris. Répondez si vous souhaitez ajuster les quantités ou les dates.",
	"de": "Hier ist Ihr Angebot für %d Artikel über %d Tag(e). Der Gesamtbetrag beträgt %s $ inklusive Steuern und Gebühren. Antworten Sie, wenn Sie Mengen oder Termine anpassen möchten.",
}

// FallbackNote is the canned note used when no model answer is available.
func FallbackNote(input Input) string {
	q := input.Quote
	count := 0
	for _, item := range q.Items {
		count += item.Qty
	}
	tmpl := fallbackTemplates[BaseLanguage(input.Language)]
	return fmt.Sprintf(tmpl, count, q.Days, q.Total.StringFixed(2))
}
