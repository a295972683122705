package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bobmcallan/marketctx/internal/common"
)

// ErrorResponse is the standard error format for REST API responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message})
}

// WriteErrorWithCode writes a JSON error response with an error code.
func WriteErrorWithCode(w http.ResponseWriter, statusCode int, message, code string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: message, Code: code})
}

// writeServiceError maps provider failures to 502 and everything else to 500.
func writeServiceError(w http.ResponseWriter, err error) {
	if common.IsUpstream(err) {
		WriteErrorWithCode(w, http.StatusBadGateway, err.Error(), "upstream_error")
		return
	}
	WriteError(w, http.StatusInternalServerError, err.Error())
}

// RequireMethod validates the HTTP method and returns true if it matches.
// If it doesn't match, it writes a 405 response and returns false.
func RequireMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

// DecodeJSON reads and decodes JSON from the request body into v.
// Returns false and writes a 400 error if decoding fails.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.Body == http.NoBody {
		WriteError(w, http.StatusBadRequest, "Request body is required")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB limit
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return false
	}
	return true
}

// queryInt reads an integer query parameter. A missing value yields def; a
// malformed one writes a 400 and returns false.
func queryInt(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		WriteError(w, http.StatusBadRequest, name+" must be an integer")
		return 0, false
	}
	return n, true
}

// parseDates validates optional YYYY-MM-DD bounds, writing a 400 on failure.
func parseDates(w http.ResponseWriter, from, to string) (time.Time, time.Time, bool) {
	f, err := common.ParseDate(from)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "from_date: "+err.Error())
		return time.Time{}, time.Time{}, false
	}
	t, err := common.ParseDate(to)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "to_date: "+err.Error())
		return time.Time{}, time.Time{}, false
	}
	return f, t, true
}

// inRange writes a 400 unless lo <= v <= hi.
func inRange(w http.ResponseWriter, name string, v, lo, hi int) bool {
	if v < lo || v > hi {
		WriteError(w, http.StatusBadRequest, name+" must be between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
		return false
	}
	return true
}

// splitPath returns the first segment after prefix and the remainder.
// For /api/stocks/AAPL.US/history with prefix /api/stocks/ it returns
// ("AAPL.US", "history").
func splitPath(r *http.Request, prefix string) (string, string) {
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSuffix(parts[1], "/")
}
