package models

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ProviderRecord is one loosely-typed row returned by the data provider.
type ProviderRecord map[string]any

// Aliases lists the accepted spellings of one logical field, in priority order.
type Aliases []string

// Field aliases. Every read of a provider row goes through one of these.
var (
	FieldCode          = Aliases{"code", "Code"}
	FieldExchange      = Aliases{"exchange", "Exchange"}
	FieldName          = Aliases{"name", "Name"}
	FieldMarketCap     = Aliases{"market_capitalization", "MarketCapitalization"}
	FieldBulkCode      = Aliases{"code", "Code", "symbol"}
	FieldDate          = Aliases{"date"}
	FieldOpen          = Aliases{"open"}
	FieldHigh          = Aliases{"high"}
	FieldLow           = Aliases{"low"}
	FieldClose         = Aliases{"close"}
	FieldAdjustedClose = Aliases{"adjusted_close", "adjustedClose"}
	FieldVolume        = Aliases{"volume"}
	FieldNewsTitle     = Aliases{"title"}
	FieldNewsURL       = Aliases{"link", "url"}
	FieldNewsDate      = Aliases{"date", "datetime", "published"}
	FieldNewsSource    = Aliases{"source", "source_name"}
)

// String returns the first alias whose value renders as a non-blank string.
func (r ProviderRecord) String(aliases Aliases) string {
	for _, key := range aliases {
		v, ok := r[key]
		if !ok || v == nil {
			continue
		}
		var s string
		switch tv := v.(type) {
		case string:
			s = tv
		case json.Number:
			s = tv.String()
		case float64:
			s = strconv.FormatFloat(tv, 'f', -1, 64)
		default:
			s = fmt.Sprint(tv)
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// Float returns the first alias holding a usable number. Numeric strings are
// accepted; "", "N/A" and unparseable strings count as absent.
func (r ProviderRecord) Float(aliases Aliases) *float64 {
	for _, key := range aliases {
		if f, ok := toFloat(r[key]); ok {
			return &f
		}
	}
	return nil
}

// Int returns the first alias holding a usable number, truncated to an integer.
func (r ProviderRecord) Int(aliases Aliases) *int64 {
	for _, key := range aliases {
		switch tv := r[key].(type) {
		case int64:
			return &tv
		case uint64:
			if tv <= math.MaxInt64 {
				n := int64(tv)
				return &n
			}
		case int:
			n := int64(tv)
			return &n
		}
		if f, ok := toFloat(r[key]); ok {
			n := int64(f)
			return &n
		}
	}
	return nil
}

// Clone returns a shallow copy.
func (r ProviderRecord) Clone() ProviderRecord {
	out := make(ProviderRecord, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch tv := v.(type) {
	case nil:
		return 0, false
	case float64:
		return tv, !math.IsNaN(tv)
	case float32:
		return float64(tv), true
	case int:
		return float64(tv), true
	case int32:
		return float64(tv), true
	case int64:
		return float64(tv), true
	case uint64:
		return float64(tv), true
	case json.Number:
		f, err := tv.Float64()
		return f, err == nil
	case string:
		s := strings.TrimSpace(tv)
		if s == "" || strings.EqualFold(s, "N/A") {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

// ScreenerFilter is one [field, operator, value] screener condition.
type ScreenerFilter struct {
	Field    string
	Operator string
	Value    any
}

// ScreenerQuery configures a screener call.
type ScreenerQuery struct {
	Filters []ScreenerFilter
	Sort    string
	Limit   int
	Offset  int
}

// EODQuery configures an end-of-day series call. Zero times are omitted.
type EODQuery struct {
	From   time.Time
	To     time.Time
	Period string // d, w, m
	Order  string // a, d
}

// NewsQuery configures a provider news call. Zero values are omitted.
type NewsQuery struct {
	Symbol string
	Topic  string
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}
