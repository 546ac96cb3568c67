package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/username/pypdash/src/models"
	"github.com/username/pypdash/src/processors"
	"github.com/username/pypdash/src/services"
)

type stubLoader struct {
	payload *models.Payload
	err     error
}

func (l *stubLoader) ParseDir(dir string) (*models.Payload, error) {
	return l.payload, l.err
}

func testPayload() *models.Payload {
	return &models.Payload{
		BreakdownByMoniker:   []models.BreakdownPoint{{Moniker: "AAPL", Percent: 1}},
		BreakdownByStockType: []models.BreakdownPoint{{StockType: "EQUITY", Percent: 1}},
		BreakdownBySector:    []models.BreakdownPoint{{Sector: "technology", Percent: 1}},
		GrowthBreakdown: models.GrowthBreakdown{
			models.StockTypeEquity: {{Month: "Jan-24", Values: []models.CategoryValue{{Category: "AAPL", Value: 0.1}}}},
			models.StockTypeETF:    {},
		},
		GrowthBreakdownMoM: models.GrowthBreakdown{
			models.StockTypeEquity: {{Month: "Jan-24", Values: []models.CategoryValue{{Category: "AAPL", Value: 0}}}},
			models.StockTypeETF:    {},
		},
		Growth:    []models.GrowthPoint{{Month: "Jan-24", Invested: 100, Value: 110, Profit: 10, ProfitRatio: 0.1}},
		Summary:   models.SummaryRecord{Username: "A&B", Portfolio: "Main", Invested: 100, Value: 110, Percent: 10, Equities: 1},
		Portfolio: []models.StockRow{{Moniker: "AAPL", Invested: 100, Value: 110, Amount: 1, AveragePrice: 100, MarketPrice: 110}},
	}
}

func newTestRouter(t *testing.T, loader *stubLoader, load bool) http.Handler {
	t.Helper()
	svc := services.NewDashboardService(
		loader, "testdata",
		processors.NewBreakdownProcessor(),
		processors.NewGrowthProcessor(),
		processors.NewSummaryRenderer(),
		cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval),
	)
	if load {
		require.NoError(t, svc.Reload(context.Background()))
	}

	h := NewDashboardHandler(svc)
	r := chi.NewRouter()
	r.Use(ContextualLoggerMiddleware)
	r.Route("/api/dashboard", h.Routes)
	r.Get("/dashboard", h.HandleDashboardPage)
	return r
}

func doRequest(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body["error"]
}

func TestHandleGetCharts(t *testing.T) {
	r := newTestRouter(t, &stubLoader{payload: testPayload()}, true)

	rr := doRequest(r, http.MethodGet, "/api/dashboard/charts?viewport=xl")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Header().Get(RequestIDHeader))

	var charts []struct {
		Canvas string          `json:"canvas"`
		Config json.RawMessage `json:"config"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &charts))
	require.Len(t, charts, 12)
	assert.Equal(t, models.CanvasBreakdownByMoniker, charts[0].Canvas)
	assert.Contains(t, string(charts[0].Config), `"legend":{"position":"right"}`)
}

func TestHandleGetChart(t *testing.T) {
	r := newTestRouter(t, &stubLoader{payload: testPayload()}, true)

	rr := doRequest(r, http.MethodGet, "/api/dashboard/charts/profitGrowth")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"canvas":"profitGrowth"`)
	assert.Contains(t, rr.Body.String(), `"fill":{"target":"origin"`)

	rr = doRequest(r, http.MethodGet, "/api/dashboard/charts/doesNotExist")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, decodeError(t, rr), "unknown canvas")
}

func TestHandleGetSummary(t *testing.T) {
	r := newTestRouter(t, &stubLoader{payload: testPayload()}, true)

	rr := doRequest(r, http.MethodGet, "/api/dashboard/summary")
	require.Equal(t, http.StatusOK, rr.Code)
	var view models.SummaryView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &view))
	assert.Equal(t, "A&amp;B", view.Username)
	assert.Equal(t, "text-success", view.CurrentPercent.Class)

	rr = doRequest(r, http.MethodGet, "/api/dashboard/summary?format=elements")
	require.Equal(t, http.StatusOK, rr.Code)
	var elements []models.ElementUpdate
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &elements))
	require.Len(t, elements, 11)
	assert.Equal(t, "date", elements[0].ID)
}

func TestHandlersBeforeLoad(t *testing.T) {
	r := newTestRouter(t, &stubLoader{}, false)

	for _, target := range []string{"/api/dashboard/charts", "/api/dashboard/charts/profitGrowth", "/api/dashboard/summary", "/dashboard"} {
		t.Run(target, func(t *testing.T) {
			rr := doRequest(r, http.MethodGet, target)
			assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		})
	}

	rr := doRequest(r, http.MethodGet, "/api/dashboard/status")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"loaded":false`)
}

func TestHandleReload(t *testing.T) {
	loader := &stubLoader{err: errors.New("missing growth.js")}
	r := newTestRouter(t, loader, false)

	rr := doRequest(r, http.MethodPost, "/api/dashboard/reload")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, decodeError(t, rr), "missing growth.js")

	loader.err = nil
	loader.payload = testPayload()
	rr = doRequest(r, http.MethodPost, "/api/dashboard/reload")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"loaded":true`)

	rr = doRequest(r, http.MethodGet, "/api/dashboard/charts")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandleDashboardPage(t *testing.T) {
	r := newTestRouter(t, &stubLoader{payload: testPayload()}, true)

	rr := doRequest(r, http.MethodGet, "/dashboard?viewport=lg")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))

	body := rr.Body.String()
	assert.Contains(t, body, `data-viewport="lg"`)
	assert.Contains(t, body, `<canvas id="annualGrowth"></canvas>`)
	assert.Equal(t, 12, strings.Count(body, "<canvas"))
	assert.Contains(t, body, `<small class="text-muted" id="username">A&amp;B</small>`)
	assert.Contains(t, body, `<td class="col-3 text-center">AAPL</td>`)
	assert.Contains(t, body, `class="text-success"><i class="bi-arrow-up-short"></i>10%`)
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := rate.NewLimiter(rate.Limit(0), 1)
	h := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.Equal(t, http.StatusNoContent, doRequest(h, http.MethodGet, "/").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, http.MethodGet, "/").Code)
}

func TestContextualLoggerMiddlewareSetsRequestID(t *testing.T) {
	var seen string
	h := ContextualLoggerMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetRequestIDFromContext(r.Context())
	}))

	rr := doRequest(h, http.MethodGet, "/")
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
}
