package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xsoluti-sigelo/sigelo/internal/audit"
	"github.com/xsoluti-sigelo/sigelo/internal/context"
	"github.com/xsoluti-sigelo/sigelo/internal/database"
	"github.com/xsoluti-sigelo/sigelo/internal/errHandler"
	"github.com/xsoluti-sigelo/sigelo/internal/response"
)

// listActivityLogs abstracts the query the handler needs, so tests can
// feed an in-memory collection.
type activityLogLister interface {
	ListActivityLogs(tenantID string, sinceDays int) ([]audit.ActivityLog, error)
}

type activityLogHandler struct {
	db         activityLogLister
	errHandler *errHandler.ErrorRepository
	auditor    *AuditRecorder
}

func NewActivityLogHandler(db activityLogLister, errHandler *errHandler.ErrorRepository, auditor *AuditRecorder) *activityLogHandler {
	return &activityLogHandler{
		db:         db,
		errHandler: errHandler,
		auditor:    auditor,
	}
}

func (h *activityLogHandler) fetchLogs(r *http.Request, tenantID string) ([]audit.ActivityLog, error) {
	sinceDays := 90
	if parsed, err := strconv.Atoi(r.URL.Query().Get("since_days")); err == nil && parsed > 0 {
		sinceDays = parsed
	}

	return h.db.ListActivityLogs(tenantID, sinceDays)
}

// HandleListActivityLogs serves the audit screen: the fetched window
// goes through the in-memory filter engine and one page comes back,
// with display metadata attached per record.
func (h *activityLogHandler) HandleListActivityLogs(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	logs, err := h.fetchLogs(r, user.TenantID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	filters := retrieveLogFilters(r)
	page := audit.ApplyFilters(logs, filters)

	now := time.Now()
	items := make([]map[string]any, len(page))
	for i := range page {
		log := &page[i]
		items[i] = map[string]any{
			"log":           log,
			"label":         audit.ActionLabel(log.ActionType),
			"color":         audit.ActionColor(log.ActionType),
			"icon":          audit.ActionIcon(log.ActionType),
			"when":          audit.FormatTimestamp(log.Timestamp, now),
			"field_changes": audit.DiffValues(log.OldValue, log.NewValue),
		}
	}

	data := map[string]any{
		"items":       items,
		"total":       audit.FilteredCount(logs, filters),
		"total_pages": audit.TotalPages(logs, filters),
		"has_results": audit.HasResults(logs, filters),
	}

	err = response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

func (h *activityLogHandler) HandleActivityLogStats(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	logs, err := h.fetchLogs(r, user.TenantID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	stats := audit.ComputeStats(logs)

	err = response.JSONOkResponse(w, stats, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}

// HandleExportActivityLogs streams the filtered collection as CSV or
// JSON. The export itself is an auditable action.
func (h *activityLogHandler) HandleExportActivityLogs(w http.ResponseWriter, r *http.Request) {
	user := context.ContextGetAuthenticatedUser(r)

	logs, err := h.fetchLogs(r, user.TenantID)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
		return
	}

	filters := retrieveLogFilters(r)
	matched := audit.ApplyFilters(logs, &audit.Filters{
		Search:     filters.Search,
		ActionType: filters.ActionType,
		EntityType: filters.EntityType,
		UserID:     filters.UserID,
		Success:    filters.Success,
		DateFrom:   filters.DateFrom,
		DateTo:     filters.DateTo,
		Limit:      len(logs) + 1,
	})

	format := r.URL.Query().Get("format")
	if format == "" {
		format = audit.ExportFormatCSV
	}

	includeUserInfo, _ := strconv.ParseBool(r.URL.Query().Get("include_user_info"))

	opts := &audit.ExportOptions{Format: format, IncludeUserInfo: includeUserInfo}

	payload, err := audit.Export(matched, opts)
	if err != nil {
		h.errHandler.BadRequest(w, r, err)
		return
	}

	h.auditor.Record(r, user, &audit.ActivityLog{
		ActionType: audit.ActionExportData,
		Success:    true,
		Metadata: audit.JSONMap{
			"format":  format,
			"records": len(matched),
		},
	})

	filename := fmt.Sprintf("activity-logs-%s.%s", time.Now().Format("2006-01-02"), format)

	contentType := "text/csv"
	if format == audit.ExportFormatJSON {
		contentType = "application/json"
	}

	err = response.FileDownload(w, payload, filename, contentType)
	if err != nil {
		h.errHandler.ReportServerError(r, err)
	}
}

var _ activityLogLister = (*database.DB)(nil)
