package audit

import (
	"sort"
	"strings"
	"time"
)

const (
	DefaultPage  = 1
	DefaultLimit = 50
)

// Filters is an ephemeral query object, rebuilt per request from URL
// query parameters. Zero-value fields impose no constraint.
type Filters struct {
	Search     string
	ActionType string
	EntityType string
	UserID     string
	Success    *bool
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	Limit      int
}

func (f *Filters) page() int {
	if f.Page < 1 {
		return DefaultPage
	}
	return f.Page
}

func (f *Filters) limit() int {
	if f.Limit < 1 {
		return DefaultLimit
	}
	return f.Limit
}

// Matches reports whether a single record satisfies every non-empty
// criterion. The date range is inclusive on both bounds.
func (f *Filters) Matches(log *ActivityLog) bool {
	if f.ActionType != "" && log.ActionType != f.ActionType {
		return false
	}
	if f.EntityType != "" && log.EntityType != f.EntityType {
		return false
	}
	if f.UserID != "" && log.UserID != f.UserID {
		return false
	}
	if f.Success != nil && log.Success != *f.Success {
		return false
	}
	if f.DateFrom != nil && log.Timestamp.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && log.Timestamp.After(*f.DateTo) {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		haystacks := []string{log.UserName, log.UserEmail, log.EntityID}

		found := false
		for _, h := range haystacks {
			if h != "" && strings.Contains(strings.ToLower(h), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

func filterLogs(logs []ActivityLog, filters *Filters) []ActivityLog {
	matched := make([]ActivityLog, 0, len(logs))
	for i := range logs {
		if filters.Matches(&logs[i]) {
			matched = append(matched, logs[i])
		}
	}

	// newest first; stable so equal timestamps keep input order
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	return matched
}

// ApplyFilters returns one page of the matching records, sorted by
// timestamp descending. An out-of-range page yields an empty slice,
// never an error.
func ApplyFilters(logs []ActivityLog, filters *Filters) []ActivityLog {
	matched := filterLogs(logs, filters)

	limit := filters.limit()
	start := (filters.page() - 1) * limit

	if start >= len(matched) {
		return []ActivityLog{}
	}

	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	return matched[start:end]
}

// FilteredCount is the number of matching records before pagination.
func FilteredCount(logs []ActivityLog, filters *Filters) int {
	return len(filterLogs(logs, filters))
}

// TotalPages is the ceiling of count/limit; 0 when nothing matches.
func TotalPages(logs []ActivityLog, filters *Filters) int {
	count := FilteredCount(logs, filters)
	limit := filters.limit()
	return (count + limit - 1) / limit
}

func HasResults(logs []ActivityLog, filters *Filters) bool {
	return FilteredCount(logs, filters) > 0
}
