package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rental_quote_backend/internal/location"
	"rental_quote_backend/internal/pricing"
	"rental_quote_backend/internal/quotes/transport"
	"rental_quote_backend/platform/apperr"
	"rental_quote_backend/platform/httpkit"
	"rental_quote_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type fakeService struct {
	runErr  error
	lastRun transport.RunQuoteRequest
	doc     *transport.QuoteDocument
	docErr  error
}

func (f *fakeService) Run(_ context.Context, req transport.RunQuoteRequest) (*transport.RunQuoteResponse, error) {
	f.lastRun = req
	if f.runErr != nil {
		return nil, f.runErr
	}
	return &transport.RunQuoteResponse{RunID: uuid.New(), Quote: *f.doc}, nil
}

func (f *fakeService) Preview(context.Context, transport.ParseRequest) (*transport.ParseResponse, error) {
	return &transport.ParseResponse{Days: 3}, nil
}

func (f *fakeService) Feedback(_ context.Context, req transport.FeedbackRequest) (*transport.FeedbackResponse, error) {
	return &transport.FeedbackResponse{RunID: req.RunID, GoodwillApplied: req.Rating <= 3, Quote: *f.doc}, nil
}

func (f *fakeService) Trace(_ context.Context, runID uuid.UUID) (*transport.RunTraceResponse, error) {
	return &transport.RunTraceResponse{RunID: runID, Steps: []transport.StepResponse{}}, nil
}

func (f *fakeService) GetRun(context.Context, uuid.UUID) (*transport.RunDetailResponse, error) {
	return nil, apperr.NotFound("run not found")
}

func (f *fakeService) LatestDocument(context.Context, uuid.UUID) (*transport.QuoteDocument, error) {
	return f.doc, f.docErr
}

func sampleDoc() *transport.QuoteDocument {
	d := func(s string) pricing.Money { return pricing.NewMoney(decimal.RequireFromString(s)) }
	return &transport.QuoteDocument{
		Quote: pricing.Quote{
			Items:    []pricing.LineItem{{SKU: "CHAIR-FOLD-WHT", Name: "White Folding Chair", Qty: 10, DailyRate: d("2.50"), UnitPrice: d("2.50"), Subtotal: d("25.00")}},
			Subtotal: d("25.00"),
			Tax:      d("2.06"),
			Total:    d("27.06"),
			Days:     1,
		},
		Tier:     "C",
		Location: location.Resolved{Final: "Dallas, TX"},
	}
}

func newTestRouter(svc QuoteService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(svc, validator.New())
	v1 := r.Group("/api/v1")
	h.RegisterRoutes(v1.Group("/quote"))
	h.RegisterOperatorRoutes(v1.Group("/quote"), v1.Group("/runs"))
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httpkit.ErrorResponse {
	t.Helper()
	var resp httpkit.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, w.Body.String())
	}
	return resp
}

func TestRun_Success(t *testing.T) {
	svc := &fakeService{doc: sampleDoc()}
	w := doJSON(newTestRouter(svc), http.MethodPost, "/api/v1/quote/run", `{"message":"10 chairs","customerTier":"C"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.lastRun.Message != "10 chairs" {
		t.Fatalf("request not forwarded: %+v", svc.lastRun)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"runId"`) || !strings.Contains(body, `"total":"27.06"`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestRun_MalformedJSON(t *testing.T) {
	w := doJSON(newTestRouter(&fakeService{}), http.MethodPost, "/api/v1/quote/run", `{"message":`)
	if w.Code != http.StatusBadRequest || decodeError(t, w).Code != apperr.CodeValidation {
		t.Fatalf("expected 400 VALIDATION_ERROR, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRun_InvalidTierAndQuantity(t *testing.T) {
	body := `{"customerTier":"Z","items":[{"sku":"CHAIR-FOLD-WHT","quantity":0}]}`
	w := doJSON(newTestRouter(&fakeService{}), http.MethodPost, "/api/v1/quote/run", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	details, ok := decodeError(t, w).Details.(map[string]interface{})
	if !ok || details["customerTier"] == nil || details["items[0].quantity"] == nil {
		t.Fatalf("expected field details, got %s", w.Body.String())
	}
}

func TestRun_LowercaseTierRejected(t *testing.T) {
	svc := &fakeService{}
	w := doJSON(newTestRouter(svc), http.MethodPost, "/api/v1/quote/run", `{"message":"10 chairs","customerTier":"a"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	details, ok := decodeError(t, w).Details.(map[string]interface{})
	if !ok || details["customerTier"] == nil {
		t.Fatalf("expected customerTier detail, got %s", w.Body.String())
	}
}

func TestRun_MapsDomainErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.Wrap(apperr.KindUnprocessable, "no rate for requested item", pricing.ErrRateNotFound).WithCode(apperr.CodeRateNotFound), http.StatusUnprocessableEntity, apperr.CodeRateNotFound},
		{apperr.Wrap(apperr.KindUnprocessable, "quote rejected", pricing.ErrGuardrailViolation).WithCode(apperr.CodeGuardrail), http.StatusUnprocessableEntity, apperr.CodeGuardrail},
		{apperr.Unavailable("failed to start run", context.DeadlineExceeded), http.StatusServiceUnavailable, apperr.CodeDatabase},
		{apperr.Validation("message or items is required"), http.StatusBadRequest, apperr.CodeValidation},
	}
	for _, tc := range cases {
		svc := &fakeService{runErr: tc.err}
		w := doJSON(newTestRouter(svc), http.MethodPost, "/api/v1/quote/run", `{"message":"x"}`)
		if w.Code != tc.status || decodeError(t, w).Code != tc.code {
			t.Fatalf("expected %d %s, got %d: %s", tc.status, tc.code, w.Code, w.Body.String())
		}
	}
}

func TestFeedback_RejectsOutOfRangeRating(t *testing.T) {
	body := `{"runId":"` + uuid.NewString() + `","rating":6}`
	w := doJSON(newTestRouter(&fakeService{doc: sampleDoc()}), http.MethodPost, "/api/v1/quote/feedback", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	body = `{"runId":"` + uuid.NewString() + `","rating":2}`
	w = doJSON(newTestRouter(&fakeService{doc: sampleDoc()}), http.MethodPost, "/api/v1/quote/feedback", body)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"goodwillApplied":true`) {
		t.Fatalf("expected goodwill response, got %d: %s", w.Code, w.Body.String())
	}
}

func TestTrace_InvalidAndMissingRun(t *testing.T) {
	r := newTestRouter(&fakeService{})
	if w := doJSON(r, http.MethodGet, "/api/v1/quote/runs/not-a-uuid", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}
	if w := doJSON(r, http.MethodGet, "/api/v1/quote/runs/"+uuid.NewString(), ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200 trace, got %d", w.Code)
	}
	w := doJSON(r, http.MethodGet, "/api/v1/runs/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound || decodeError(t, w).Code != apperr.CodeNotFound {
		t.Fatalf("expected 404 RESOURCE_NOT_FOUND, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDownloadPDF(t *testing.T) {
	id := uuid.New()
	w := doJSON(newTestRouter(&fakeService{doc: sampleDoc()}), http.MethodGet, "/api/v1/quote/runs/"+id.String()+"/pdf", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypePDF {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "Quote-"+id.String()+".pdf") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Fatalf("expected PDF body")
	}
}

func TestDownloadPDF_UnknownRun(t *testing.T) {
	svc := &fakeService{docErr: apperr.NotFound("run not found or not completed")}
	w := doJSON(newTestRouter(svc), http.MethodGet, "/api/v1/quote/runs/"+uuid.NewString()+"/pdf", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestArchiveLink_NotConfigured(t *testing.T) {
	w := doJSON(newTestRouter(&fakeService{}), http.MethodGet, "/api/v1/quote/runs/"+uuid.NewString()+"/pdf/archive", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}
