package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"rental_quote_backend/internal/inventory/transport"
	"rental_quote_backend/platform/apperr"
	"rental_quote_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type stubBrowser struct {
	last transport.BrowseRequest
	err  error
}

func (s *stubBrowser) Browse(_ context.Context, req transport.BrowseRequest) (*transport.BrowseResponse, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &transport.BrowseResponse{Categories: []transport.CategoryResponse{{Key: "event", Name: "Event & Party", ItemCount: 0, Items: []transport.ItemResponse{}}}}, nil
}

func serve(svc Browser, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(svc, validator.New()).RegisterRoutes(r.Group("/api/v1/inventory"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestBrowse_OK(t *testing.T) {
	svc := &stubBrowser{}
	w := serve(svc, "/api/v1/inventory/browse?category=event")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if svc.last.Category != "event" {
		t.Fatalf("category not forwarded: %+v", svc.last)
	}
	if !strings.Contains(w.Body.String(), `"categories"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestBrowse_RejectsBadCategory(t *testing.T) {
	w := serve(&stubBrowser{}, "/api/v1/inventory/browse?category=a-b")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestBrowse_StoreOutage(t *testing.T) {
	svc := &stubBrowser{err: apperr.Unavailable("failed to query inventory", context.DeadlineExceeded)}
	w := serve(svc, "/api/v1/inventory/browse")
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), apperr.CodeDatabase) {
		t.Fatalf("expected 503 %s, got %d: %s", apperr.CodeDatabase, w.Code, w.Body.String())
	}
}
