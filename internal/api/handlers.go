package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Laza-adina/drsp-vak/internal/models"
)

// writeJSON encodes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError encodes a JSON error payload.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// pathID extracts the identifier segment after the given route prefix,
// dropping any trailing action suffix ("/resolve", "/status", ...).
func pathID(path, prefix string) string {
	id := strings.TrimPrefix(path, prefix)
	if i := strings.IndexByte(id, '/'); i >= 0 {
		id = id[:i]
	}
	return id
}

// hasSuffixAction reports whether the path ends with the given action
// segment.
func hasSuffixAction(path, action string) bool {
	return strings.HasSuffix(path, action)
}

// queryInt parses an integer query parameter, returning fallback when
// absent or unparseable.
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// queryDate parses a YYYY-MM-DD query parameter.
func queryDate(r *http.Request, key string) *time.Time {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}

// caseQueryFromRequest builds a case listing query from URL parameters.
func caseQueryFromRequest(r *http.Request) models.CaseQuery {
	q := models.CaseQuery{
		DiseaseID:  r.URL.Query().Get("disease_id"),
		DistrictID: r.URL.Query().Get("district_id"),
		Status:     models.CaseStatus(r.URL.Query().Get("status")),
		Limit:      queryInt(r, "limit", 100),
		Offset:     queryInt(r, "offset", 0),
	}
	q.DateFrom = queryDate(r, "date_from")
	q.DateTo = queryDate(r, "date_to")
	return q
}
