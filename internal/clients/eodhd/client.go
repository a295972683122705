// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/marketctx/internal/common"
	"github.com/bobmcallan/marketctx/internal/interfaces"
	"github.com/bobmcallan/marketctx/internal/models"
)

const (
	DefaultBaseURL    = "https://eodhd.com/api"
	DefaultTimeout    = 60 * time.Second
	DefaultRateLimit  = 10 // requests per second
	DefaultSort       = "market_capitalization.desc"
	bodySnippetLength = 300
)

// Client implements the EODHDClient interface
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the outbound request budget. Zero or less disables throttling.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the per-request HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is a non-200 response from EODHD
type APIError struct {
	StatusCode int
	Body       string // at most 300 characters, newlines flattened
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD HTTP %d (endpoint: %s). Body: %s", e.StatusCode, e.Endpoint, e.Body)
}

// ErrUnexpectedResponse is returned when a list endpoint yields a non-list payload.
var ErrUnexpectedResponse = errors.New("unexpected response")

func bodySnippet(body []byte) string {
	s := strings.ReplaceAll(string(body), "\n", " ")
	runes := []rune(s)
	if len(runes) > bodySnippetLength {
		runes = runes[:bodySnippetLength]
	}
	return string(runes)
}

// setParam adds a query parameter unless the value is blank.
func setParam(params url.Values, key, value string) {
	if strings.TrimSpace(value) != "" {
		params.Set(key, value)
	}
}

func setDate(params url.Values, key string, t time.Time) {
	if !t.IsZero() {
		params.Set(key, t.Format("2006-01-02"))
	}
}

func setInt(params url.Values, key string, v int) {
	if v > 0 {
		params.Set(key, strconv.Itoa(v))
	}
}

// get performs a rate-limited GET and returns the decoded JSON payload.
func (c *Client) get(ctx context.Context, path string, params url.Values) (any, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("url", c.baseURL+path).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("EODHD request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("EODHD request failed reading body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Body:       bodySnippet(body),
			Endpoint:   path,
		}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("invalid JSON from EODHD (endpoint: %s): %w", path, err)
	}

	return normalizeNumbers(payload), nil
}

// getList performs get and requires a JSON array of objects.
func (c *Client) getList(ctx context.Context, path string, params url.Values) ([]models.ProviderRecord, error) {
	payload, err := c.get(ctx, path, params)
	if err != nil {
		return nil, err
	}
	return toRecords(path, payload)
}

func toRecords(path string, payload any) ([]models.ProviderRecord, error) {
	list, ok := payload.([]any)
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrUnexpectedResponse, path)
	}
	records := make([]models.ProviderRecord, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			records = append(records, models.ProviderRecord(m))
		}
	}
	return records, nil
}

// normalizeNumbers converts json.Number into int64 when integral, else float64,
// so rows keep integer-ness once stored.
func normalizeNumbers(v any) any {
	switch tv := v.(type) {
	case json.Number:
		if n, err := tv.Int64(); err == nil {
			return n
		}
		if f, err := tv.Float64(); err == nil {
			return f
		}
		return tv.String()
	case map[string]any:
		for k, inner := range tv {
			tv[k] = normalizeNumbers(inner)
		}
		return tv
	case []any:
		for i, inner := range tv {
			tv[i] = normalizeNumbers(inner)
		}
		return tv
	default:
		return v
	}
}

// encodeFilters renders compact JSON with comparison operators left unescaped.
func encodeFilters(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// Screener queries the stock screener. Filters are sent as a compact JSON
// array of [field, operator, value] triples.
func (c *Client) Screener(ctx context.Context, query models.ScreenerQuery) ([]models.ProviderRecord, error) {
	params := url.Values{}

	sort := query.Sort
	if sort == "" {
		sort = DefaultSort
	}
	params.Set("sort", sort)

	if len(query.Filters) > 0 {
		filterArrays := make([]any, len(query.Filters))
		for i, f := range query.Filters {
			filterArrays[i] = []any{f.Field, f.Operator, f.Value}
		}
		filtersJSON, err := encodeFilters(filterArrays)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal filters: %w", err)
		}
		params.Set("filters", filtersJSON)
	}

	setInt(params, "limit", query.Limit)
	params.Set("offset", strconv.Itoa(max(query.Offset, 0)))

	payload, err := c.get(ctx, "/screener", params)
	if err != nil {
		return nil, err
	}

	// The screener wraps its rows in {"data": [...]}; accept a bare list too.
	if obj, ok := payload.(map[string]any); ok {
		if data, ok := obj["data"]; ok {
			payload = data
		}
	}

	records, err := toRecords("/screener", payload)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().Int("results", len(records)).Msg("EODHD screener returned results")
	return records, nil
}

// GetEOD retrieves an end-of-day series
func (c *Client) GetEOD(ctx context.Context, symbol string, query models.EODQuery) ([]models.ProviderRecord, error) {
	params := url.Values{}
	setDate(params, "from", query.From)
	setDate(params, "to", query.To)
	setParam(params, "period", query.Period)
	setParam(params, "order", query.Order)

	return c.getList(ctx, "/eod/"+url.PathEscape(symbol), params)
}

// GetBulkLastDay retrieves the latest trading day for every symbol on an exchange
func (c *Client) GetBulkLastDay(ctx context.Context, exchangeCode string) ([]models.ProviderRecord, error) {
	path := "/eod-bulk-last-day/" + url.PathEscape(strings.ToUpper(exchangeCode))
	return c.getList(ctx, path, nil)
}

// GetNews retrieves news for a symbol or topic
func (c *Client) GetNews(ctx context.Context, query models.NewsQuery) ([]models.ProviderRecord, error) {
	params := url.Values{}
	setParam(params, "s", query.Symbol)
	setParam(params, "t", query.Topic)
	setDate(params, "from", query.From)
	setDate(params, "to", query.To)
	setInt(params, "limit", query.Limit)
	params.Set("offset", strconv.Itoa(max(query.Offset, 0)))

	return c.getList(ctx, "/news", params)
}

// GetExchanges lists the exchanges EODHD covers
func (c *Client) GetExchanges(ctx context.Context) ([]models.ProviderRecord, error) {
	return c.getList(ctx, "/exchanges-list/", nil)
}

// GetExchangeSymbols retrieves all symbols for an exchange
func (c *Client) GetExchangeSymbols(ctx context.Context, code string) ([]models.ProviderRecord, error) {
	return c.getList(ctx, "/exchange-symbol-list/"+url.PathEscape(strings.ToUpper(code)), nil)
}

// Ensure Client implements EODHDClient
var _ interfaces.EODHDClient = (*Client)(nil)
