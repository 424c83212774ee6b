package handler

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xsoluti-sigelo/sigelo/internal/database"
	"github.com/xsoluti-sigelo/sigelo/internal/errHandler"
	"github.com/xsoluti-sigelo/sigelo/internal/helper"
	"github.com/xsoluti-sigelo/sigelo/internal/mocks"
	"github.com/xsoluti-sigelo/sigelo/internal/response"
)

func newTestTenantHandler(t *testing.T, conn *stubConn, producer *mocks.MockAuditProducer) (*tenantHandler, *sql.DB, *sync.WaitGroup) {
	t.Helper()

	db, sqlDB := newStubDB(conn)

	baseURL := "http://localhost"
	var wg sync.WaitGroup

	helperRepo := helper.New(&baseURL, &wg, &mocks.MockErrorReporter{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := errHandler.New("", &mocks.MockMailer{}, logger, helperRepo)
	auditor := NewAuditRecorder(producer, helperRepo)

	return NewTenantHandler(db, errorHandler, auditor), sqlDB, &wg
}

func registerTenantRequest(t *testing.T, body map[string]string) *http.Request {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/tenants", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	return req
}

func TestHandleRegisterTenant_CreatesTenantAndAdmin(t *testing.T) {
	conn := &stubConn{}
	producer := new(mocks.MockAuditProducer)
	producer.On("ProduceMessage", mock.Anything, mock.Anything).Return(nil)

	handler, sqlDB, wg := newTestTenantHandler(t, conn, producer)

	req := registerTenantRequest(t, map[string]string{
		"tenant_name": "Sigelo Eventos",
		"name":        "Maria Silva",
		"email":       "maria@sigelo.com.br",
		"password":    "Forte@Senha123",
	})

	rr := httptest.NewRecorder()
	handler.HandleRegisterTenant(rr, req)
	wg.Wait()

	require.Equal(t, http.StatusCreated, rr.Code)

	var envelope response.Response[map[string]string]
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope))
	require.True(t, envelope.Success)
	require.Equal(t, "tenant-001", envelope.Data["tenant_id"])
	require.Equal(t, "user-001", envelope.Data["user_id"])

	require.NotNil(t, conn.tx)
	require.True(t, conn.tx.committed)
	require.False(t, conn.tx.rolledBack)
	require.Zero(t, sqlDB.Stats().InUse)

	producer.AssertExpectations(t)
}

func TestHandleRegisterTenant_DuplicateEmail(t *testing.T) {
	conn := &stubConn{
		user: []driver.Value{
			"user-009", "tenant-009", "Maria Silva", "maria@sigelo.com.br",
			database.UserRoleAdmin, nil, nil, database.UserAccountActiveStatus,
			time.Now().Add(-time.Hour), nil,
		},
	}

	handler, sqlDB, _ := newTestTenantHandler(t, conn, new(mocks.MockAuditProducer))

	req := registerTenantRequest(t, map[string]string{
		"tenant_name": "Sigelo Eventos",
		"name":        "Maria Silva",
		"email":       "maria@sigelo.com.br",
		"password":    "Forte@Senha123",
	})

	rr := httptest.NewRecorder()
	handler.HandleRegisterTenant(rr, req)

	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.Nil(t, conn.tx)
	require.Zero(t, sqlDB.Stats().InUse)
}
