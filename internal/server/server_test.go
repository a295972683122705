package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/bobmcallan/marketctx/internal/app"
	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/interfaces/mocks"
	"github.com/bobmcallan/marketctx/internal/models"
	tcommon "github.com/bobmcallan/marketctx/tests/common"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	app     *app.App
	eodhd   *mocks.MockEODHDClient
	storage *tcommon.MemoryStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctrl := gomock.NewController(t)
	eodhd := mocks.NewMockEODHDClient(ctrl)
	store := tcommon.NewMemoryStorage()

	a := app.NewAppWithDeps(common.NewDefaultConfig(), common.NewSilentLogger(), store, eodhd)
	srv := NewServer(a)

	return &testServer{t: t, handler: srv.Handler(), app: a, eodhd: eodhd, storage: store}
}

func (ts *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func fptr(f float64) *float64 { return &f }

func (ts *testServer) seedPrices(symbol string, dates ...string) {
	ts.t.Helper()
	records := make([]models.PriceRecord, len(dates))
	for i, d := range dates {
		records[i] = models.PriceRecord{Symbol: symbol, Date: d, Close: fptr(100 + float64(i)), Source: models.PriceSource}
	}
	_, err := ts.storage.PriceStore().UpsertPrices(context.Background(), records)
	require.NoError(ts.t, err)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/health", "/api/health"} {
		rr := ts.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, rr))
	}
}

func TestVersion(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/api/version", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[map[string]string](t, rr)
	assert.Equal(t, common.Version, body["version"])
	assert.Contains(t, body, "build")
	assert.Contains(t, body, "commit")
}

func TestStockLatest(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPrices("AAPL.US", "2026-03-27", "2026-03-30")

	rr := ts.do(http.MethodGet, "/api/stocks/aapl/latest", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	rec := decode[models.PriceRecord](t, rr)
	assert.Equal(t, "AAPL.US", rec.Symbol)
	assert.Equal(t, "2026-03-30", rec.Date)

	rr = ts.do(http.MethodGet, "/api/stocks/MSFT.US/latest", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "symbol not found", decode[ErrorResponse](t, rr).Error)
}

func TestStockHistory(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPrices("AAPL.US", "2026-03-25", "2026-03-26", "2026-03-27", "2026-03-30")

	type historyResponse struct {
		Symbol string               `json:"symbol"`
		Items  []models.PriceRecord `json:"items"`
	}

	rr := ts.do(http.MethodGet, "/api/stocks/AAPL.US/history?from_date=2026-03-26&to_date=2026-03-30&limit=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[historyResponse](t, rr)
	assert.Equal(t, "AAPL.US", body.Symbol)
	require.Len(t, body.Items, 2)
	assert.Equal(t, "2026-03-26", body.Items[0].Date)
	assert.Equal(t, "2026-03-27", body.Items[1].Date)

	rr = ts.do(http.MethodGet, "/api/stocks/NONE.US/history", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"symbol":"NONE.US","items":[]}`, rr.Body.String())

	rr = ts.do(http.MethodGet, "/api/stocks/AAPL.US/history?from_date=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.do(http.MethodGet, "/api/stocks/AAPL.US/history?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStockContext(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPrices("AAPL.US", "2026-03-27", "2026-03-30")

	rr := ts.do(http.MethodGet, "/api/stocks/AAPL/context", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[map[string]string](t, rr)
	assert.Equal(t, "AAPL.US", body["symbol"])
	assert.Contains(t, body["context"], "[STOCK_DATA]\nsymbol: AAPL.US\nas_of: 2026-03-30\n")
}

func TestStockRoutes_UnknownAndStoreError(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/stocks/AAPL/bogus", nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/stocks/", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, ts.do(http.MethodPost, "/api/stocks/AAPL/latest", nil).Code)

	ts.storage.Err = errors.New("connection refused")
	assert.Equal(t, http.StatusInternalServerError, ts.do(http.MethodGet, "/api/stocks/AAPL/latest", nil).Code)
}

func TestStockNews(t *testing.T) {
	ts := newTestServer(t)
	ts.eodhd.EXPECT().
		GetNews(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q models.NewsQuery) ([]models.ProviderRecord, error) {
			assert.Equal(t, "AAPL.US", q.Symbol)
			assert.Equal(t, 3, q.Limit)
			return []models.ProviderRecord{{"title": "Apple beats", "link": "https://n/1", "date": "2026-03-30"}}, nil
		})

	rr := ts.do(http.MethodGet, "/api/stocks/AAPL/news?limit=3", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[struct {
		Symbol string            `json:"symbol"`
		Items  []models.NewsItem `json:"items"`
	}](t, rr)
	assert.Equal(t, "AAPL.US", body.Symbol)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Apple beats", body.Items[0].Title)
}

func TestStockNews_UpstreamErrorIs502(t *testing.T) {
	ts := newTestServer(t)
	ts.eodhd.EXPECT().GetNews(gomock.Any(), gomock.Any()).Return(nil, errors.New("EODHD HTTP 500"))

	rr := ts.do(http.MethodGet, "/api/stocks/AAPL/news", nil)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	body := decode[ErrorResponse](t, rr)
	assert.Equal(t, "upstream_error", body.Code)
	assert.Contains(t, body.Error, "EODHD HTTP 500")
}

func TestSyncSymbols(t *testing.T) {
	ts := newTestServer(t)
	ts.eodhd.EXPECT().
		GetEOD(gomock.Any(), "AAPL.US", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, q models.EODQuery) ([]models.ProviderRecord, error) {
			assert.Equal(t, "2026-01-01", q.From.Format(common.DateLayout))
			return []models.ProviderRecord{{"date": "2026-03-30", "close": 101.5}}, nil
		})

	rr := ts.do(http.MethodPost, "/api/stocks/sync/symbols", map[string]any{
		"symbols":   []string{"aapl"},
		"from_date": "2026-01-01",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"symbols":["AAPL.US"],"upserted_prices":1}`, rr.Body.String())
	assert.Len(t, ts.storage.Prices("AAPL.US"), 1)
}

func TestSyncSymbols_Validation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing symbols", map[string]any{}},
		{"empty symbols", map[string]any{"symbols": []string{}}},
		{"bad date", map[string]any{"symbols": []string{"AAPL"}, "to_date": "30-03-2026"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/stocks/sync/symbols", tt.body).Code)
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/api/stocks/sync/symbols", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSyncTop(t *testing.T) {
	ts := newTestServer(t)
	ts.eodhd.EXPECT().
		Screener(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, q models.ScreenerQuery) ([]models.ProviderRecord, error) {
			assert.Equal(t, 1, q.Limit)
			return []models.ProviderRecord{{"code": "AAPL", "exchange": "US", "market_capitalization": 3e12}}, nil
		})
	ts.eodhd.EXPECT().GetEOD(gomock.Any(), "AAPL.US", gomock.Any()).
		Return([]models.ProviderRecord{{"date": "2026-03-30", "close": 101.5}}, nil)

	rr := ts.do(http.MethodPost, "/api/stocks/sync/top", map[string]any{"limit": 1})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"symbols":["AAPL.US"],"upserted_prices":1,"upserted_universe":1}`, rr.Body.String())
}

func TestSyncTop_LimitOutOfRange(t *testing.T) {
	ts := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/stocks/sync/top", map[string]any{"limit": 0}).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/stocks/sync/top", map[string]any{"limit": 201}).Code)
}

func TestSyncTop_UpstreamErrorIs502(t *testing.T) {
	ts := newTestServer(t)
	ts.eodhd.EXPECT().Screener(gomock.Any(), gomock.Any()).Return(nil, errors.New("EODHD HTTP 401"))

	rr := ts.do(http.MethodPost, "/api/stocks/sync/top", map[string]any{})
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestSyncBulkLastDay_DefaultsToUniverseTop(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.storage.UniverseStore().UpsertUniverse(context.Background(), []models.UniverseEntry{
		{Exchange: "us", Code: "AAPL", Symbol: "AAPL.US", MarketCapitalization: fptr(3e12)},
		{Exchange: "us", Code: "TINY", Symbol: "TINY.US", MarketCapitalization: fptr(1e6)},
	})
	require.NoError(t, err)

	ts.eodhd.EXPECT().GetBulkLastDay(gomock.Any(), "US").Return([]models.ProviderRecord{
		{"code": "AAPL", "date": "2026-03-30", "close": 101.5},
		{"code": "TINY", "date": "2026-03-30", "close": 1.5},
	}, nil)

	rr := ts.do(http.MethodPost, "/api/stocks/sync/bulk-last-day", map[string]any{"limit": 1})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"upserted":1}`, rr.Body.String())
	assert.Len(t, ts.storage.Prices("AAPL.US"), 1)
	assert.Empty(t, ts.storage.Prices("TINY.US"))
}

func TestSyncBulkLastDay_ExplicitSymbols(t *testing.T) {
	ts := newTestServer(t)
	ts.eodhd.EXPECT().GetBulkLastDay(gomock.Any(), "US").Return([]models.ProviderRecord{
		{"code": "AAPL", "date": "2026-03-30", "close": 101.5},
		{"code": "MSFT", "date": "2026-03-30", "close": 401.5},
	}, nil)

	rr := ts.do(http.MethodPost, "/api/stocks/sync/bulk-last-day", map[string]any{"symbols": []string{"MSFT.US"}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"upserted":1}`, rr.Body.String())

	assert.Equal(t, http.StatusBadRequest,
		ts.do(http.MethodPost, "/api/stocks/sync/bulk-last-day", map[string]any{"limit": 5001}).Code)
}

func TestUniverseTop(t *testing.T) {
	ts := newTestServer(t)
	_, err := ts.storage.UniverseStore().UpsertUniverse(context.Background(), []models.UniverseEntry{
		{Exchange: "us", Code: "MSFT", MarketCapitalization: fptr(2.9e12)},
		{Exchange: "us", Code: "AAPL", Symbol: "AAPL.US", MarketCapitalization: fptr(3e12)},
	})
	require.NoError(t, err)

	rr := ts.do(http.MethodGet, "/api/stocks/universe/top?limit=5", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	items := decode[[]universeItem](t, rr)
	require.Len(t, items, 2)
	assert.Equal(t, "AAPL.US", items[0].Symbol)
	assert.Equal(t, "MSFT.US", items[1].Symbol)
	assert.Equal(t, 2.9e12, *items[1].MarketCapitalization)
}

func TestAutoContext(t *testing.T) {
	ts := newTestServer(t)
	ts.seedPrices("AAPL.US", "2026-03-27", "2026-03-30")

	rr := ts.do(http.MethodPost, "/api/context/auto", map[string]any{"text": "thoughts on $AAPL?"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decode[map[string]string](t, rr)["context"], "symbol: AAPL.US")

	rr = ts.do(http.MethodPost, "/api/context/auto", map[string]any{"text": "hello"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "", decode[map[string]string](t, rr)["context"])
}

func TestExchanges(t *testing.T) {
	ts := newTestServer(t)
	ts.eodhd.EXPECT().GetExchanges(gomock.Any()).Return([]models.ProviderRecord{{"Code": "US", "Name": "USA Stocks"}}, nil)
	ts.eodhd.EXPECT().GetExchangeSymbols(gomock.Any(), "AU").Return([]models.ProviderRecord{{"Code": "BHP"}}, nil)

	rr := ts.do(http.MethodGet, "/api/exchanges", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"Code":"US","Name":"USA Stocks"}]`, rr.Body.String())

	rr = ts.do(http.MethodGet, "/api/exchanges/AU/symbols", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"Code":"BHP"}]`, rr.Body.String())

	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodGet, "/api/exchanges/AU/other", nil).Code)
}

func TestExchanges_UpstreamError(t *testing.T) {
	ts := newTestServer(t)
	ts.eodhd.EXPECT().GetExchanges(gomock.Any()).Return(nil, errors.New("timeout"))

	assert.Equal(t, http.StatusBadGateway, ts.do(http.MethodGet, "/api/exchanges", nil).Code)
}

func TestSessions(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.do(http.MethodGet, "/api/sessions/s1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"session_id":"s1","messages":[]}`, rr.Body.String())

	rr = ts.do(http.MethodPost, "/api/sessions/s1/messages", map[string]string{"role": "User", "content": "hi"})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(http.MethodGet, "/api/sessions/s1", nil)
	body := decode[struct {
		Messages []models.ChatMessage `json:"messages"`
	}](t, rr)
	require.Len(t, body.Messages, 1)
	assert.Equal(t, "user", body.Messages[0].Role)
	assert.Equal(t, "hi", body.Messages[0].Content)

	assert.Equal(t, http.StatusBadRequest,
		ts.do(http.MethodPost, "/api/sessions/s1/messages", map[string]string{"content": " "}).Code)

	assert.Equal(t, http.StatusNoContent, ts.do(http.MethodDelete, "/api/sessions/s1", nil).Code)
	assert.Nil(t, ts.app.SessionCache.History("s1"))
}

func TestMCPEndpointMounted(t *testing.T) {
	ts := newTestServer(t)

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`
	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "marketctx")
}
