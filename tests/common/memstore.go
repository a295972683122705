package common

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bobmcallan/marketctx/internal/interfaces"
	"github.com/bobmcallan/marketctx/internal/models"
)

// MemoryStorage implements interfaces.StorageManager in memory for service
// and handler tests. It keeps the keying and ordering rules of the real store.
type MemoryStorage struct {
	mu       sync.Mutex
	prices   map[[2]string]models.PriceRecord
	universe map[[2]string]models.UniverseEntry
	news     map[string]models.NewsItem

	// Err, when set, fails every store call.
	Err error

	PriceWrites    int
	UniverseWrites int
	NewsWrites     int
	FreshCalls     int
}

// NewMemoryStorage creates an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		prices:   make(map[[2]string]models.PriceRecord),
		universe: make(map[[2]string]models.UniverseEntry),
		news:     make(map[string]models.NewsItem),
	}
}

func (m *MemoryStorage) PriceStore() interfaces.PriceStore       { return (*memPrices)(m) }
func (m *MemoryStorage) UniverseStore() interfaces.UniverseStore { return (*memUniverse)(m) }
func (m *MemoryStorage) NewsStore() interfaces.NewsStore         { return (*memNews)(m) }
func (m *MemoryStorage) Close() error                            { return nil }

// Prices returns every stored record for symbol, oldest first.
func (m *MemoryStorage) Prices(symbol string) []models.PriceRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pricesFor(symbol, true)
}

// FreshCallCount returns how many cache reads have been made.
func (m *MemoryStorage) FreshCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FreshCalls
}

// News returns every stored item.
func (m *MemoryStorage) News() []models.NewsItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.NewsItem, 0, len(m.news))
	for _, n := range m.news {
		out = append(out, n)
	}
	return out
}

func (m *MemoryStorage) pricesFor(symbol string, ascending bool) []models.PriceRecord {
	var out []models.PriceRecord
	for k, r := range m.prices {
		if k[0] == symbol {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if ascending {
			return out[i].Date < out[j].Date
		}
		return out[i].Date > out[j].Date
	})
	return out
}

type memPrices MemoryStorage

func (p *memPrices) UpsertPrices(_ context.Context, records []models.PriceRecord) (int, error) {
	m := (*MemoryStorage)(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	n := 0
	for _, r := range records {
		if r.Symbol == "" || r.Date == "" {
			continue
		}
		m.prices[[2]string{r.Symbol, r.Date}] = r
		n++
	}
	m.PriceWrites++
	return n, nil
}

func (p *memPrices) Latest(ctx context.Context, symbol string) (*models.PriceRecord, error) {
	recs, err := p.Recent(ctx, symbol, 1)
	if err != nil || len(recs) == 0 {
		return nil, err
	}
	return &recs[0], nil
}

func (p *memPrices) History(_ context.Context, symbol, from, to string, limit int) ([]models.PriceRecord, error) {
	m := (*MemoryStorage)(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.PriceRecord
	for _, r := range m.pricesFor(symbol, true) {
		if (from != "" && r.Date < from) || (to != "" && r.Date > to) {
			continue
		}
		out = append(out, r)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (p *memPrices) Recent(_ context.Context, symbol string, n int) ([]models.PriceRecord, error) {
	m := (*MemoryStorage)(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if n <= 0 {
		return nil, nil
	}
	out := m.pricesFor(symbol, false)
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

func (p *memPrices) ExistingSymbols(_ context.Context, candidates []string) (map[string]bool, error) {
	m := (*MemoryStorage)(p)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	want := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		want[c] = true
	}
	found := make(map[string]bool)
	for k := range m.prices {
		if want[k[0]] {
			found[k[0]] = true
		}
	}
	return found, nil
}

type memUniverse MemoryStorage

func (u *memUniverse) UpsertUniverse(_ context.Context, entries []models.UniverseEntry) (int, error) {
	m := (*MemoryStorage)(u)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	inserted := 0
	for _, e := range entries {
		if e.Exchange == "" || e.Code == "" {
			continue
		}
		key := [2]string{e.Exchange, e.Code}
		if _, ok := m.universe[key]; !ok {
			inserted++
		}
		m.universe[key] = e
	}
	m.UniverseWrites++
	return inserted, nil
}

func (u *memUniverse) Top(_ context.Context, limit int) ([]models.UniverseEntry, error) {
	m := (*MemoryStorage)(u)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]models.UniverseEntry, 0, len(m.universe))
	for _, e := range m.universe {
		out = append(out, e)
	}
	capOf := func(e models.UniverseEntry) float64 {
		if mc := e.MarketCap(); mc != nil {
			return *mc
		}
		return -1
	}
	sort.SliceStable(out, func(i, j int) bool { return capOf(out[i]) > capOf(out[j]) })
	if limit <= 0 {
		return nil, nil
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memNews MemoryStorage

func (s *memNews) UpsertNews(_ context.Context, items []models.NewsItem) (int, error) {
	m := (*MemoryStorage)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	n := 0
	for _, item := range items {
		if item.Symbol == "" {
			continue
		}
		m.news[fmt.Sprint(item.DedupKey().RecordKey()...)] = item
		n++
	}
	m.NewsWrites++
	return n, nil
}

func (s *memNews) Fresh(_ context.Context, symbol string, since time.Time, limit int) ([]models.NewsItem, error) {
	m := (*MemoryStorage)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FreshCalls++
	if m.Err != nil {
		return nil, m.Err
	}
	var out []models.NewsItem
	for _, n := range m.news {
		if n.Symbol == symbol && !n.FetchedAt.Before(since) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	if limit <= 0 {
		return nil, nil
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memNews) PurgeExpired(_ context.Context, before time.Time) (int, error) {
	m := (*MemoryStorage)(s)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	n := 0
	for k, item := range m.news {
		if item.FetchedAt.Before(before) {
			delete(m.news, k)
			n++
		}
	}
	return n, nil
}

var _ interfaces.StorageManager = (*MemoryStorage)(nil)
