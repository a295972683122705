package common

import "strings"

// NormalizeSymbol canonicalizes a ticker into CODE.EXCHANGE form.
// Input that already contains a dot is returned upper-cased and trimmed.
// Blank input yields "".
func NormalizeSymbol(raw, defaultExchange string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	if strings.Contains(s, ".") {
		return s
	}
	return s + "." + strings.ToUpper(strings.TrimSpace(defaultExchange))
}

// NormalizeSymbols normalizes a list, dropping blanks and duplicates.
// The first occurrence of a symbol keeps its position.
func NormalizeSymbols(raw []string, defaultExchange string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		s := NormalizeSymbol(r, defaultExchange)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// JoinSymbol builds CODE.EXCHANGE from separate provider fields.
func JoinSymbol(code, exchange string) string {
	return strings.ToUpper(strings.TrimSpace(code)) + "." + strings.ToUpper(strings.TrimSpace(exchange))
}
