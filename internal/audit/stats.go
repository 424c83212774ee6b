package audit

// Stats aggregates outcome rates and activity histograms for a log
// collection. Each call recomputes from the full slice; there is no
// incremental state.
type Stats struct {
	Total               int            `json:"total"`
	SuccessCount        int            `json:"success_count"`
	ErrorCount          int            `json:"error_count"`
	SuccessRate         float64        `json:"success_rate"`
	ErrorRate           float64        `json:"error_rate"`
	MostActiveDay       string         `json:"most_active_day"`
	MostActiveDayCount  int            `json:"most_active_day_count"`
	MostActiveHour      int            `json:"most_active_hour"`
	MostActiveHourCount int            `json:"most_active_hour_count"`
	ByDay               map[string]int `json:"by_day"`
	ByHour              map[int]int    `json:"by_hour"`
}

// ComputeStats derives counts, success/error rates and the busiest
// calendar day and hour-of-day. Rates are percentages; both are 0 for
// an empty collection. Ties on the histograms resolve to the earliest
// day/hour so results are deterministic.
func ComputeStats(logs []ActivityLog) Stats {
	stats := Stats{
		ByDay:          make(map[string]int),
		ByHour:         make(map[int]int),
		MostActiveHour: -1,
	}

	stats.Total = len(logs)

	for i := range logs {
		log := &logs[i]
		if log.Success {
			stats.SuccessCount++
		} else {
			stats.ErrorCount++
		}

		day := log.Timestamp.Format("2006-01-02")
		stats.ByDay[day]++
		stats.ByHour[log.Timestamp.Hour()]++
	}

	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.SuccessCount) / float64(stats.Total) * 100
		stats.ErrorRate = 100 - stats.SuccessRate
	}

	for day, count := range stats.ByDay {
		if count > stats.MostActiveDayCount ||
			(count == stats.MostActiveDayCount && day < stats.MostActiveDay) {
			stats.MostActiveDay = day
			stats.MostActiveDayCount = count
		}
	}

	for hour := 0; hour < 24; hour++ {
		count := stats.ByHour[hour]
		if count > stats.MostActiveHourCount {
			stats.MostActiveHour = hour
			stats.MostActiveHourCount = count
		}
	}

	return stats
}

// FailedLogs returns the subset of records with an error outcome,
// preserving input order.
func FailedLogs(logs []ActivityLog) []ActivityLog {
	failed := make([]ActivityLog, 0)
	for i := range logs {
		if !logs[i].Success {
			failed = append(failed, logs[i])
		}
	}
	return failed
}
