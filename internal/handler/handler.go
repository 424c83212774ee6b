package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/xsoluti-sigelo/sigelo/internal/audit"
)

const defaultListLimit = 20

type listQueryValues struct {
	Limit  int
	Offset int
}

func retrieveListQueryValues(r *http.Request) *listQueryValues {
	values := &listQueryValues{Limit: defaultListLimit}

	if parsed, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && parsed > 0 {
		values.Limit = parsed
	}

	if parsed, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && parsed >= 1 {
		values.Offset = (parsed - 1) * values.Limit
	}

	return values
}

// retrieveLogFilters rebuilds an audit.Filters from the request query
// string. Malformed values fall back to permissive defaults rather
// than failing the request.
func retrieveLogFilters(r *http.Request) *audit.Filters {
	query := r.URL.Query()

	filters := &audit.Filters{
		Search:     query.Get("search"),
		ActionType: query.Get("action_type"),
		EntityType: query.Get("entity_type"),
		UserID:     query.Get("user_id"),
		Page:       audit.DefaultPage,
		Limit:      audit.DefaultLimit,
	}

	if successStr := query.Get("success"); successStr != "" {
		if success, err := strconv.ParseBool(successStr); err == nil {
			filters.Success = &success
		}
	}

	if dateStr := query.Get("date_from"); dateStr != "" {
		if parsed, err := time.Parse("2006-01-02", dateStr); err == nil {
			filters.DateFrom = &parsed
		}
	}

	if dateStr := query.Get("date_to"); dateStr != "" {
		if parsed, err := time.Parse("2006-01-02", dateStr); err == nil {
			// inclusive upper bound covers the whole day
			end := parsed.Add(24*time.Hour - time.Nanosecond)
			filters.DateTo = &end
		}
	}

	if page, err := strconv.Atoi(query.Get("page")); err == nil && page >= 1 {
		filters.Page = page
	}

	if limit, err := strconv.Atoi(query.Get("limit")); err == nil && limit > 0 {
		filters.Limit = limit
	}

	return filters
}
