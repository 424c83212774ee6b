package handler

import (
	"net/http"
	"time"

	"github.com/xsoluti-sigelo/sigelo/internal/audit"
	"github.com/xsoluti-sigelo/sigelo/internal/context"
	"github.com/xsoluti-sigelo/sigelo/internal/database"
	"github.com/xsoluti-sigelo/sigelo/internal/errHandler"
	"github.com/xsoluti-sigelo/sigelo/internal/response"
)

const recentActivityCount = 10

type dashboardHandler struct {
	db         *database.DB
	errHandler *errHandler.ErrorRepository
}

func NewDashboardHandler(db *database.DB, errHandler *errHandler.ErrorRepository) *dashboardHandler {
	return &dashboardHandler{
		db:         db,
		errHandler: errHandler,
	}
}

func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	upcomingEvents, err := h.db.CountUpcomingEvents(user.TenantID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	vehiclesByStatus, err := h.db.CountVehiclesByStatus(user.TenantID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	recentLogs, err := h.db.ListRecentActivityLogs(user.TenantID, recentActivityCount)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	now := time.Now()
	recent := make([]map[string]any, len(recentLogs))
	for i := range recentLogs {
		recent[i] = map[string]any{
			"log":   recentLogs[i],
			"label": audit.ActionLabel(recentLogs[i].ActionType),
			"color": audit.ActionColor(recentLogs[i].ActionType),
			"icon":  audit.ActionIcon(recentLogs[i].ActionType),
			"when":  audit.FormatTimestamp(recentLogs[i].Timestamp, now),
		}
	}

	data := map[string]any{
		"upcoming_events":    upcomingEvents,
		"vehicles_by_status": vehiclesByStatus,
		"recent_activity":    recent,
	}

	err = response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
