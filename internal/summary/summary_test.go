package summary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rental_quote_backend/internal/pricing"
	"rental_quote_backend/platform/config"
	"rental_quote_backend/platform/logger"
)

func money(s string) pricing.Money { return pricing.NewMoney(decimal.RequireFromString(s)) }

func sampleInput(language string) Input {
	return Input{
		Language: language,
		Tier:     "A",
		Location: "Dallas, TX",
		Quote: &pricing.Quote{
			Items: []pricing.LineItem{
				{SKU: "CHAIR-FOLD-WHT", Name: "White Folding Chair", Qty: 50, Subtotal: money("375.00")},
				{SKU: "TABLE-8FT-RECT", Name: "8ft Banquet Table", Qty: 5, Subtotal: money("180.00")},
			},
			Subtotal: money("499.50"),
			Fees:     []pricing.Fee{{Name: pricing.FeeDamageWaiver, Amount: money("39.96")}},
			Tax:      money("52.34"),
			Total:    money("686.80"),
			Days:     3,
		},
	}
}

func TestBaseLanguage(t *testing.T) {
	cases := map[string]string{
		"es-ES": "es",
		"FR_ca": "fr",
		"de":    "de",
		"":      "en",
		"pt-BR": "en",
	}
	for tag, want := range cases {
		if got := BaseLanguage(tag); got != want {
			t.Fatalf("BaseLanguage(%q): expected %q, got %q", tag, want, got)
		}
	}
}

func TestFallbackNoteUsesRequestLanguage(t *testing.T) {
	en := FallbackNote(sampleInput(""))
	if !strings.Contains(en, "55 item(s) over 3 day(s)") || !strings.Contains(en, "$686.80") {
		t.Fatalf("unexpected english note: %s", en)
	}
	es := FallbackNote(sampleInput("es-ES"))
	if !strings.HasPrefix(es, "Aquí está su cotización") {
		t.Fatalf("expected spanish note, got %s", es)
	}
}

func TestBuildPromptCarriesAmountsAndLanguage(t *testing.T) {
	prompt := BuildPrompt(sampleInput("de-DE"))
	for _, want := range []string{"Rental days: 3", "Total: 686.80", "- 50 x White Folding Chair (375.00)", "damage_waiver: 39.96", "Write in German."} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

type stubSummaryConfig struct {
	provider    string
	moonshotKey string
	openAIKey   string
}

func (c stubSummaryConfig) GetLLMProvider() string           { return c.provider }
func (c stubSummaryConfig) GetLLMModel() string              { return "" }
func (c stubSummaryConfig) GetMoonshotAPIKey() string        { return c.moonshotKey }
func (c stubSummaryConfig) GetOpenAIAPIKey() string          { return c.openAIKey }
func (c stubSummaryConfig) GetOpenAIBaseURL() string         { return "" }
func (c stubSummaryConfig) GetSummaryTimeout() time.Duration { return 0 }

func TestNewDisabledWithoutProviderOrKey(t *testing.T) {
	for _, cfg := range []stubSummaryConfig{
		{provider: config.ProviderNone},
		{provider: config.ProviderMoonshot},
		{provider: config.ProviderOpenAI},
	} {
		s, err := New(cfg, logger.Discard())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s != nil {
			t.Fatalf("expected nil summarizer for %+v", cfg)
		}
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	s, err := New(stubSummaryConfig{provider: config.ProviderOpenAI, openAIKey: "sk-test"}, logger.Discard())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*OpenAISummarizer); !ok {
		t.Fatalf("expected *OpenAISummarizer, got %T", s)
	}
}

func TestOpenAISummarizerReturnsCompletion(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotModel = body.Model
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"message":{"role":"assistant","content":"  Your 3-day rental totals $686.80.  "},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	s := NewOpenAISummarizer("sk-test", server.URL+"/v1/", "")
	text, err := s.Summarize(context.Background(), sampleInput("en"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Your 3-day rental totals $686.80." {
		t.Fatalf("unexpected text %q", text)
	}
	if gotModel != defaultOpenAIModel {
		t.Fatalf("expected default model, got %q", gotModel)
	}
}

func TestOpenAISummarizerSurfacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer server.Close()

	s := NewOpenAISummarizer("sk-test", server.URL, "m")
	if _, err := s.Summarize(context.Background(), sampleInput("en")); err == nil {
		t.Fatalf("expected error on 429")
	}
}
