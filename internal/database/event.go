package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Event struct {
	ID             string         `db:"id"`
	TenantID       string         `db:"tenant_id"`
	ClientName     string         `db:"client_name"`
	Venue          string         `db:"venue"`
	StartsAt       time.Time      `db:"starts_at"`
	EndsAt         time.Time      `db:"ends_at"`
	Status         string         `db:"status"`
	BudgetCentavos int64          `db:"budget_centavos"`
	Notes          sql.NullString `db:"notes"`
	CreatedAt      time.Time      `db:"created_at"`
	DeletedAt      sql.NullTime   `db:"deleted_at"`
}

const (
	EventStatusDraft      = "draft"
	EventStatusConfirmed  = "confirmed"
	EventStatusInProgress = "in_progress"
	EventStatusDone       = "done"
	EventStatusCanceled   = "canceled"
)

func (db *DB) InsertEvent(event *Event) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO events (tenant_id, client_name, venue, starts_at, ends_at, status, budget_centavos, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	err := db.GetContext(ctx, &id, query,
		event.TenantID,
		event.ClientName,
		event.Venue,
		event.StartsAt,
		event.EndsAt,
		event.Status,
		event.BudgetCentavos,
		event.Notes,
	)

	return id, err
}

func (db *DB) GetEvent(tenantID, id string) (*Event, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var event Event

	query := `SELECT * FROM events WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

	err := db.GetContext(ctx, &event, query, id, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &event, true, err
}

func (db *DB) ListEvents(tenantID string, limit, offset int) ([]Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var events []Event

	query := `
		SELECT * FROM events
		WHERE tenant_id = $1 AND deleted_at IS NULL
		ORDER BY starts_at DESC
		LIMIT $2 OFFSET $3`

	err := db.SelectContext(ctx, &events, query, tenantID, limit, offset)
	return events, err
}

func (db *DB) UpdateEvent(event *Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE events
		SET client_name = $1, venue = $2, starts_at = $3, ends_at = $4, status = $5, budget_centavos = $6, notes = $7
		WHERE id = $8 AND tenant_id = $9 AND deleted_at IS NULL`

	_, err := db.ExecContext(ctx, query,
		event.ClientName,
		event.Venue,
		event.StartsAt,
		event.EndsAt,
		event.Status,
		event.BudgetCentavos,
		event.Notes,
		event.ID,
		event.TenantID,
	)

	return err
}

func (db *DB) SoftDeleteEvent(tenantID, id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE events SET deleted_at = now() WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

	_, err := db.ExecContext(ctx, query, id, tenantID)
	return err
}

func (db *DB) CountUpcomingEvents(tenantID string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var count int

	query := `
		SELECT count(*) FROM events
		WHERE tenant_id = $1 AND deleted_at IS NULL AND starts_at > now() AND status != $2`

	err := db.GetContext(ctx, &count, query, tenantID, EventStatusCanceled)
	return count, err
}

func (db *DB) ListCompletedEvents(tenantID string) ([]Event, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var events []Event

	query := `
		SELECT * FROM events
		WHERE tenant_id = $1 AND deleted_at IS NULL AND status = $2
		ORDER BY ends_at DESC`

	err := db.SelectContext(ctx, &events, query, tenantID, EventStatusDone)
	return events, err
}
