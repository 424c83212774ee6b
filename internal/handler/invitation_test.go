package handler

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/xsoluti-sigelo/sigelo/internal/database"
	"github.com/xsoluti-sigelo/sigelo/internal/errHandler"
	"github.com/xsoluti-sigelo/sigelo/internal/helper"
	"github.com/xsoluti-sigelo/sigelo/internal/mocks"
)

// stubConn fakes just enough of the database/sql driver contract to
// walk the transactional handlers without Postgres. Queries are
// dispatched on the table they touch; the stub records what happened
// to the transaction so tests can assert the connection was released.
type stubConn struct {
	invitation []driver.Value
	user       []driver.Value
	updateRows int64
	tx         *stubTx
}

func (c *stubConn) Prepare(query string) (driver.Stmt, error) {
	return nil, fmt.Errorf("unexpected Prepare: %s", query)
}

func (c *stubConn) Close() error { return nil }

func (c *stubConn) Begin() (driver.Tx, error) {
	c.tx = &stubTx{}
	return c.tx, nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Rows, error) {
	switch {
	case strings.Contains(query, "FROM invitations"):
		rows := [][]driver.Value{}
		if c.invitation != nil {
			rows = append(rows, c.invitation)
		}
		return &stubRows{
			columns: []string{"id", "tenant_id", "email", "role", "token_hash", "invited_by", "expires_at", "accepted_at", "created_at"},
			rows:    rows,
		}, nil
	case strings.Contains(query, "FROM users"):
		rows := [][]driver.Value{}
		if c.user != nil {
			rows = append(rows, c.user)
		}
		return &stubRows{
			columns: []string{"id", "tenant_id", "name", "email", "role", "hashed_password", "google_id", "status", "created_at", "deleted_at"},
			rows:    rows,
		}, nil
	case strings.Contains(query, "INSERT INTO tenants"):
		return &stubRows{columns: []string{"id"}, rows: [][]driver.Value{{"tenant-001"}}}, nil
	case strings.Contains(query, "INSERT INTO users"):
		return &stubRows{columns: []string{"id"}, rows: [][]driver.Value{{"user-001"}}}, nil
	}

	return nil, fmt.Errorf("unexpected query: %s", query)
}

func (c *stubConn) ExecContext(_ context.Context, query string, _ []driver.NamedValue) (driver.Result, error) {
	if strings.Contains(query, "UPDATE invitations") {
		return driver.RowsAffected(c.updateRows), nil
	}

	return nil, fmt.Errorf("unexpected exec: %s", query)
}

type stubTx struct {
	committed  bool
	rolledBack bool
}

func (t *stubTx) Commit() error   { t.committed = true; return nil }
func (t *stubTx) Rollback() error { t.rolledBack = true; return nil }

type stubRows struct {
	columns []string
	rows    [][]driver.Value
	pos     int
}

func (r *stubRows) Columns() []string { return r.columns }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

type stubConnector struct{ conn *stubConn }

func (c stubConnector) Connect(context.Context) (driver.Conn, error) { return c.conn, nil }
func (c stubConnector) Driver() driver.Driver                        { return stubDriver{c.conn} }

type stubDriver struct{ conn *stubConn }

func (d stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

func newStubDB(conn *stubConn) (*database.DB, *sql.DB) {
	sqlDB := sql.OpenDB(stubConnector{conn})
	return &database.DB{DB: sqlx.NewDb(sqlDB, "postgres")}, sqlDB
}

func newTestInvitationHandler(t *testing.T, conn *stubConn, producer *mocks.MockAuditProducer) (*invitationHandler, *sql.DB, *sync.WaitGroup) {
	t.Helper()

	db, sqlDB := newStubDB(conn)

	baseURL := "http://localhost"
	var wg sync.WaitGroup

	helperRepo := helper.New(&baseURL, &wg, &mocks.MockErrorReporter{})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	errorHandler := errHandler.New("", &mocks.MockMailer{}, logger, helperRepo)
	auditor := NewAuditRecorder(producer, helperRepo)

	return NewInvitationHandler(db, errorHandler, helperRepo, &mocks.MockMailer{}, auditor), sqlDB, &wg
}

func finalizeRequest(t *testing.T) *http.Request {
	t.Helper()

	body, err := json.Marshal(map[string]string{
		"name":     "Ana Lima",
		"password": "Forte@Senha123",
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/invitations/finalize", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: inviteTokenCookie, Value: "spent-token"})

	return req
}

// Two finalize requests can race on the same invitation; the loser hits
// the accepted_at guard and must give its transaction back to the pool.
func TestHandleFinalizeInvitation_AlreadyClaimedReleasesConnection(t *testing.T) {
	conn := &stubConn{
		invitation: []driver.Value{
			"inv-001", "tenant-001", "ana@sigelo.com.br", database.UserRoleOperator,
			"token-hash", "user-000", time.Now().Add(time.Hour), nil, time.Now().Add(-time.Hour),
		},
		updateRows: 0,
	}

	handler, sqlDB, _ := newTestInvitationHandler(t, conn, new(mocks.MockAuditProducer))

	rr := httptest.NewRecorder()
	handler.HandleFinalizeInvitation(rr, finalizeRequest(t))

	require.Equal(t, http.StatusBadRequest, rr.Code)

	require.NotNil(t, conn.tx)
	require.True(t, conn.tx.rolledBack)
	require.False(t, conn.tx.committed)
	require.Zero(t, sqlDB.Stats().InUse)
}

func TestHandleFinalizeInvitation_ExpiredToken(t *testing.T) {
	conn := &stubConn{
		invitation: []driver.Value{
			"inv-001", "tenant-001", "ana@sigelo.com.br", database.UserRoleOperator,
			"token-hash", "user-000", time.Now().Add(-time.Hour), nil, time.Now().Add(-2 * time.Hour),
		},
	}

	handler, sqlDB, _ := newTestInvitationHandler(t, conn, new(mocks.MockAuditProducer))

	rr := httptest.NewRecorder()
	handler.HandleFinalizeInvitation(rr, finalizeRequest(t))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Nil(t, conn.tx)
	require.Zero(t, sqlDB.Stats().InUse)
}
