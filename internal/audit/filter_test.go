package audit

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func makeLogs(n int, build func(i int, log *ActivityLog)) []ActivityLog {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	logs := make([]ActivityLog, n)
	for i := range logs {
		logs[i] = ActivityLog{
			ID:         fmt.Sprintf("log-%03d", i),
			TenantID:   "tenant-1",
			UserID:     "user-1",
			Timestamp:  base.Add(time.Duration(i) * time.Minute),
			ActionType: ActionCreateEvent,
			EntityType: EntityEvent,
			EntityID:   fmt.Sprintf("event-%03d", i),
			Success:    true,
			UserName:   "Maria Silva",
			UserEmail:  "maria@sigelo.com.br",
		}
		if build != nil {
			build(i, &logs[i])
		}
	}
	return logs
}

func TestApplyFiltersSortsNewestFirst(t *testing.T) {
	logs := makeLogs(10, nil)

	got := ApplyFilters(logs, &Filters{})

	require.Len(t, got, 10)
	for i := 1; i < len(got); i++ {
		require.False(t, got[i].Timestamp.After(got[i-1].Timestamp))
	}
	require.Equal(t, "log-009", got[0].ID)
}

func TestApplyFiltersEveryResultMatches(t *testing.T) {
	logs := makeLogs(60, func(i int, log *ActivityLog) {
		if i%3 == 0 {
			log.ActionType = ActionDeleteEvent
		}
		if i%2 == 0 {
			log.Success = false
			log.ErrorMessage = "permission denied"
		}
	})

	failed := false
	filters := &Filters{ActionType: ActionDeleteEvent, Success: &failed}

	got := ApplyFilters(logs, filters)
	require.NotEmpty(t, got)
	for _, log := range got {
		require.True(t, filters.Matches(&log))
	}
}

func TestApplyFiltersSearch(t *testing.T) {
	logs := makeLogs(5, func(i int, log *ActivityLog) {
		if i == 2 {
			log.UserName = "João Pereira"
			log.UserEmail = "joao@sigelo.com.br"
		}
	})

	// case-insensitive substring against actor name
	got := ApplyFilters(logs, &Filters{Search: "joão"})
	require.Len(t, got, 1)
	require.Equal(t, "log-002", got[0].ID)

	// matches entity identifiers too
	got = ApplyFilters(logs, &Filters{Search: "EVENT-004"})
	require.Len(t, got, 1)
	require.Equal(t, "log-004", got[0].ID)

	got = ApplyFilters(logs, &Filters{Search: "no-such-thing"})
	require.Empty(t, got)
}

func TestApplyFiltersDateRangeInclusive(t *testing.T) {
	logs := makeLogs(3, nil)

	from := logs[0].Timestamp
	to := logs[1].Timestamp

	got := ApplyFilters(logs, &Filters{DateFrom: &from, DateTo: &to})
	require.Len(t, got, 2)
}

func TestApplyFiltersPagination(t *testing.T) {
	logs := makeLogs(120, nil)

	page1 := ApplyFilters(logs, &Filters{Page: 1, Limit: 50})
	page2 := ApplyFilters(logs, &Filters{Page: 2, Limit: 50})
	page3 := ApplyFilters(logs, &Filters{Page: 3, Limit: 50})

	require.Len(t, page1, 50)
	require.Len(t, page2, 50)
	require.Len(t, page3, 20)

	// pages don't overlap
	require.Equal(t, "log-119", page1[0].ID)
	require.Equal(t, "log-069", page2[0].ID)
	require.Equal(t, "log-019", page3[0].ID)
}

func TestApplyFiltersOutOfRangePage(t *testing.T) {
	logs := makeLogs(10, nil)

	got := ApplyFilters(logs, &Filters{Page: 9, Limit: 50})
	require.Empty(t, got)
}

func TestApplyFiltersDefaults(t *testing.T) {
	logs := makeLogs(75, nil)

	// invalid page and limit fall back to page 1, limit 50
	got := ApplyFilters(logs, &Filters{Page: -3, Limit: 0})
	require.Len(t, got, 50)
}

func TestFilteredCountMatchesLen(t *testing.T) {
	logs := makeLogs(40, func(i int, log *ActivityLog) {
		if i%4 == 0 {
			log.EntityType = EntityVehicle
		}
	})

	filters := &Filters{EntityType: EntityVehicle}
	require.Equal(t, 10, FilteredCount(logs, filters))
	require.Equal(t, len(filterLogs(logs, filters)), FilteredCount(logs, filters))
}

func TestTotalPages(t *testing.T) {
	logs := makeLogs(101, nil)

	require.Equal(t, 3, TotalPages(logs, &Filters{Limit: 50}))
	require.Equal(t, 0, TotalPages(nil, &Filters{Limit: 50}))
	require.Equal(t, 1, TotalPages(logs[:50], &Filters{Limit: 50}))
}

func TestHasResults(t *testing.T) {
	logs := makeLogs(5, nil)

	require.True(t, HasResults(logs, &Filters{}))
	require.False(t, HasResults(logs, &Filters{ActionType: ActionSyncIntegration}))
}

func TestErrorSubsetSecondPageScenario(t *testing.T) {
	// 120 logs where every one failed; page 2 of the error subset at
	// limit 50 must hold records 51-100 of the newest-first ordering.
	logs := makeLogs(120, func(i int, log *ActivityLog) {
		log.Success = false
		log.ErrorMessage = "upstream timeout"
	})

	failed := false
	filters := &Filters{Success: &failed, Page: 2, Limit: 50}

	got := ApplyFilters(logs, filters)
	require.Len(t, got, 50)
	require.Equal(t, "log-069", got[0].ID)
	require.Equal(t, "log-020", got[49].ID)
	require.Equal(t, 3, TotalPages(logs, filters))
}
