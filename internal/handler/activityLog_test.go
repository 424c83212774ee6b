package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xsoluti-sigelo/sigelo/internal/audit"
	appcontext "github.com/xsoluti-sigelo/sigelo/internal/context"
	"github.com/xsoluti-sigelo/sigelo/internal/database"
	"github.com/xsoluti-sigelo/sigelo/internal/errHandler"
	"github.com/xsoluti-sigelo/sigelo/internal/helper"
	"github.com/xsoluti-sigelo/sigelo/internal/mocks"
)

// stubLister serves a fixed window so handler tests don't need a database.
type stubLister struct {
	logs []audit.ActivityLog
	err  error
}

func (s *stubLister) ListActivityLogs(tenantID string, sinceDays int) ([]audit.ActivityLog, error) {
	return s.logs, s.err
}

func newTestActivityLogHandler(t *testing.T, lister *stubLister, producer *mocks.MockAuditProducer) (*activityLogHandler, *sync.WaitGroup) {
	t.Helper()

	baseURL := "http://localhost"
	var wg sync.WaitGroup

	helperRepo := helper.New(&baseURL, &wg, &mocks.MockErrorReporter{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := errHandler.New("", &mocks.MockMailer{}, logger, helperRepo)
	auditor := NewAuditRecorder(producer, helperRepo)

	return NewActivityLogHandler(lister, errorHandler, auditor), &wg
}

func testActivityLogs() []audit.ActivityLog {
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	return []audit.ActivityLog{
		{
			ID:         "log-001",
			TenantID:   "tenant-1",
			UserID:     "user-1",
			Timestamp:  base,
			ActionType: audit.ActionCreateEvent,
			EntityType: audit.EntityEvent,
			EntityID:   "event-001",
			Success:    true,
			UserName:   "Maria Silva",
			UserEmail:  "maria@sigelo.com.br",
		},
		{
			ID:         "log-002",
			TenantID:   "tenant-1",
			UserID:     "user-2",
			Timestamp:  base.Add(time.Minute),
			ActionType: audit.ActionUpdateEvent,
			EntityType: audit.EntityEvent,
			EntityID:   "event-001",
			OldValue:   audit.JSONMap{"status": "draft"},
			NewValue:   audit.JSONMap{"status": "confirmed"},
			Success:    true,
			UserName:   "João Souza",
			UserEmail:  "joao@sigelo.com.br",
		},
		{
			ID:           "log-003",
			TenantID:     "tenant-1",
			UserID:       "user-1",
			Timestamp:    base.Add(2 * time.Minute),
			ActionType:   audit.ActionDeleteEvent,
			EntityType:   audit.EntityEvent,
			EntityID:     "event-002",
			Success:      false,
			ErrorMessage: "event already started",
			UserName:     "Maria Silva",
			UserEmail:    "maria@sigelo.com.br",
		},
	}
}

func authenticatedRequest(method, target string) *http.Request {
	req := httptest.NewRequest(method, target, nil)

	return appcontext.ContextSetAuthenticatedUser(req, &database.User{
		ID:       "user-1",
		TenantID: "tenant-1",
		Role:     database.UserRoleAdmin,
	})
}

func TestHandleListActivityLogs_NewestFirstWithDisplayFields(t *testing.T) {
	lister := &stubLister{logs: testActivityLogs()}
	handler, _ := newTestActivityLogHandler(t, lister, new(mocks.MockAuditProducer))

	req := authenticatedRequest("GET", "/activity-logs")
	rr := httptest.NewRecorder()

	handler.HandleListActivityLogs(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data, ok := response["data"].(map[string]any)
	require.True(t, ok)

	require.Equal(t, float64(3), data["total"])
	require.Equal(t, float64(1), data["total_pages"])
	require.Equal(t, true, data["has_results"])

	items, ok := data["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 3)

	first, ok := items[0].(map[string]any)
	require.True(t, ok)

	log, ok := first["log"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "log-003", log["id"])

	require.NotEmpty(t, first["label"])
	require.NotEmpty(t, first["color"])
	require.NotEmpty(t, first["icon"])
	require.NotEmpty(t, first["when"])

	second, ok := items[1].(map[string]any)
	require.True(t, ok)

	changes, ok := second["field_changes"].([]any)
	require.True(t, ok)
	require.Len(t, changes, 1)
}

func TestHandleListActivityLogs_FiltersBySuccess(t *testing.T) {
	lister := &stubLister{logs: testActivityLogs()}
	handler, _ := newTestActivityLogHandler(t, lister, new(mocks.MockAuditProducer))

	req := authenticatedRequest("GET", "/activity-logs?success=false")
	rr := httptest.NewRecorder()

	handler.HandleListActivityLogs(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]any)
	require.Equal(t, float64(1), data["total"])

	items := data["items"].([]any)
	require.Len(t, items, 1)

	log := items[0].(map[string]any)["log"].(map[string]any)
	require.Equal(t, "log-003", log["id"])
}

func TestHandleActivityLogStats(t *testing.T) {
	lister := &stubLister{logs: testActivityLogs()}
	handler, _ := newTestActivityLogHandler(t, lister, new(mocks.MockAuditProducer))

	req := authenticatedRequest("GET", "/activity-logs/stats")
	rr := httptest.NewRecorder()

	handler.HandleActivityLogStats(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response map[string]any
	err := json.Unmarshal(rr.Body.Bytes(), &response)
	require.NoError(t, err)

	data := response["data"].(map[string]any)
	require.Equal(t, float64(3), data["total"])
	require.Equal(t, float64(2), data["success_count"])
	require.Equal(t, float64(1), data["error_count"])
	require.InDelta(t, 66.66666666666667, data["success_rate"], 0.0001)
	require.Equal(t, "2025-06-01", data["most_active_day"])
	require.Equal(t, float64(8), data["most_active_hour"])
}

func TestHandleExportActivityLogs_CSV(t *testing.T) {
	lister := &stubLister{logs: testActivityLogs()}
	producer := new(mocks.MockAuditProducer)
	producer.On("ProduceMessage", mock.Anything, mock.Anything).Return(nil)

	handler, wg := newTestActivityLogHandler(t, lister, producer)

	req := authenticatedRequest("GET", "/activity-logs/export?format=csv")
	rr := httptest.NewRecorder()

	handler.HandleExportActivityLogs(rr, req)
	wg.Wait()

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Header().Get("Content-Disposition"), "activity-logs-")

	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 4)
	require.Equal(t, "id,timestamp,action,entity,success,error", strings.TrimSpace(lines[0]))
	require.Contains(t, lines[1], "log-003")

	producer.AssertExpectations(t)
}

func TestHandleExportActivityLogs_UnknownFormat(t *testing.T) {
	lister := &stubLister{logs: testActivityLogs()}
	handler, _ := newTestActivityLogHandler(t, lister, new(mocks.MockAuditProducer))

	req := authenticatedRequest("GET", "/activity-logs/export?format=xml")
	rr := httptest.NewRecorder()

	handler.HandleExportActivityLogs(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
