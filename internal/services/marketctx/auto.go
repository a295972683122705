package marketctx

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/bobmcallan/marketctx/internal/common"
)

const (
	maxAutoSymbols  = 3
	maxTokenLength  = 15
	defaultTopLimit = 20
	minTopLimit     = 1
	maxTopLimit     = 200
)

// AutoContext picks context for free text: price blocks for up to three
// mentioned symbols that exist in the store, else the universe ranking when the
// text asks for top names, else "".
func (b *Builder) AutoContext(ctx context.Context, text, defaultExchange string) (string, error) {
	candidates := ExtractSymbolCandidates(text, defaultExchange)

	if len(candidates) > 0 {
		existing, err := b.prices.ExistingSymbols(ctx, candidates)
		if err != nil {
			return "", fmt.Errorf("failed to probe symbols: %w", err)
		}

		var blocks []string
		for _, sym := range candidates {
			if !existing[sym] {
				continue
			}
			block, err := b.PriceContext(ctx, sym, DefaultLookbackDays)
			if err != nil {
				return "", err
			}
			blocks = append(blocks, block)
			if len(blocks) == maxAutoSymbols {
				break
			}
		}
		if len(blocks) > 0 {
			return strings.TrimSpace(strings.Join(blocks, "\n")) + "\n", nil
		}
	}

	if limit, ok := TopIntent(text); ok {
		b.logger.Debug().Int("limit", limit).Msg("Auto context resolved to universe ranking")
		return b.UniverseTopContext(ctx, limit)
	}

	return "", nil
}

// ExtractSymbolCandidates tokenizes text into ticker candidates under
// exchange, de-duplicated in first-seen order. It does not consult the store.
func ExtractSymbolCandidates(text, exchange string) []string {
	if text == "" {
		return nil
	}
	exchange = strings.ToUpper(strings.TrimSpace(exchange))
	if exchange == "" {
		exchange = "US"
	}
	suffix := "." + exchange

	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsNumber(r) || r == '.' || r == '$' || r == '-')
	})

	var out []string
	seen := make(map[string]bool)
	add := func(sym string) {
		if !seen[sym] {
			seen[sym] = true
			out = append(out, sym)
		}
	}

	for _, tok := range tokens {
		tok = strings.ToUpper(strings.TrimPrefix(tok, "$"))
		if tok == "" || utf8.RuneCountInString(tok) > maxTokenLength || strings.IndexFunc(tok, unicode.IsLetter) < 0 {
			continue
		}

		switch {
		case strings.HasSuffix(tok, suffix):
			add(tok)
		case strings.Contains(tok, "."):
			add(tok)
			add(strings.ReplaceAll(tok, ".", "-") + suffix)
		default:
			add(tok + suffix)
		}
	}
	return out
}

// TopIntent reports whether text asks for the largest names and, if so, how
// many. The count is the number right after the first "top", default 20,
// clamped to [1, 200].
func TopIntent(text string) (int, bool) {
	lower := strings.ToLower(text)
	if !strings.Contains(lower, "top") && !strings.Contains(lower, "market cap") && !strings.Contains(lower, "marketcap") {
		return 0, false
	}

	limit := defaultTopLimit
	if idx := strings.Index(lower, "top"); idx >= 0 {
		after := strings.TrimLeftFunc(lower[idx+len("top"):], unicode.IsSpace)
		end := strings.IndexFunc(after, func(r rune) bool { return r < '0' || r > '9' })
		if end < 0 {
			end = len(after)
		}
		if digits := after[:end]; digits != "" {
			n, err := strconv.Atoi(digits)
			if err != nil {
				n = maxTopLimit
			}
			limit = n
		}
	}

	return common.ClampInt(limit, minTopLimit, maxTopLimit), true
}
