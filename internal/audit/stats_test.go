package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)

	require.Equal(t, 0, stats.Total)
	require.Equal(t, 0.0, stats.SuccessRate)
	require.Equal(t, 0.0, stats.ErrorRate)
	require.Equal(t, "", stats.MostActiveDay)
	require.Equal(t, -1, stats.MostActiveHour)
}

func TestComputeStatsRatesSumToHundred(t *testing.T) {
	logs := makeLogs(30, func(i int, log *ActivityLog) {
		if i%7 == 0 {
			log.Success = false
		}
	})

	stats := ComputeStats(logs)

	require.Equal(t, 30, stats.Total)
	require.Equal(t, 5, stats.ErrorCount)
	require.Equal(t, 25, stats.SuccessCount)
	require.InDelta(t, 100.0, stats.SuccessRate+stats.ErrorRate, 1e-9)
}

func TestComputeStatsMostActiveDay(t *testing.T) {
	day1 := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

	logs := makeLogs(5, func(i int, log *ActivityLog) {
		if i < 2 {
			log.Timestamp = day1.Add(time.Duration(i) * time.Hour)
		} else {
			log.Timestamp = day2.Add(time.Duration(i) * time.Minute)
		}
	})

	stats := ComputeStats(logs)

	require.Equal(t, "2025-06-02", stats.MostActiveDay)
	require.Equal(t, 3, stats.MostActiveDayCount)
}

func TestComputeStatsMostActiveDayTieBreaksEarliest(t *testing.T) {
	day1 := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 3, 9, 0, 0, 0, time.UTC)

	logs := makeLogs(4, func(i int, log *ActivityLog) {
		if i%2 == 0 {
			log.Timestamp = day2
		} else {
			log.Timestamp = day1
		}
	})

	stats := ComputeStats(logs)
	require.Equal(t, "2025-06-01", stats.MostActiveDay)
}

func TestComputeStatsMostActiveHour(t *testing.T) {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	logs := makeLogs(6, func(i int, log *ActivityLog) {
		// three at 14h spread across days, the rest elsewhere
		if i < 3 {
			log.Timestamp = base.AddDate(0, 0, i).Add(14 * time.Hour)
		} else {
			log.Timestamp = base.Add(time.Duration(i) * time.Hour)
		}
	})

	stats := ComputeStats(logs)
	require.Equal(t, 14, stats.MostActiveHour)
	require.Equal(t, 3, stats.MostActiveHourCount)
}

func TestFailedLogs(t *testing.T) {
	logs := makeLogs(9, func(i int, log *ActivityLog) {
		if i%3 == 1 {
			log.Success = false
			log.ErrorMessage = "sync failed"
		}
	})

	failed := FailedLogs(logs)
	require.Len(t, failed, 3)
	for _, log := range failed {
		require.False(t, log.Success)
	}
}
