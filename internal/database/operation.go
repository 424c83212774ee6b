package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Operation struct {
	ID          string         `db:"id"`
	TenantID    string         `db:"tenant_id"`
	EventID     string         `db:"event_id"`
	Description string         `db:"description"`
	ScheduledAt time.Time      `db:"scheduled_at"`
	DriverID    sql.NullString `db:"driver_id"`
	VehicleID   sql.NullString `db:"vehicle_id"`
	Status      string         `db:"status"`
	CreatedAt   time.Time      `db:"created_at"`
	DeletedAt   sql.NullTime   `db:"deleted_at"`
}

const (
	OperationStatusPending   = "pending"
	OperationStatusScheduled = "scheduled"
	OperationStatusDone      = "done"
	OperationStatusCanceled  = "canceled"
)

func (db *DB) InsertOperation(op *Operation) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO operations (tenant_id, event_id, description, scheduled_at, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := db.GetContext(ctx, &id, query,
		op.TenantID,
		op.EventID,
		op.Description,
		op.ScheduledAt,
		op.Status,
	)

	return id, err
}

func (db *DB) GetOperation(tenantID, id string) (*Operation, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var op Operation

	query := `SELECT * FROM operations WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

	err := db.GetContext(ctx, &op, query, id, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &op, true, err
}

func (db *DB) ListOperationsByEvent(tenantID, eventID string) ([]Operation, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var ops []Operation

	query := `
		SELECT * FROM operations
		WHERE tenant_id = $1 AND event_id = $2 AND deleted_at IS NULL
		ORDER BY scheduled_at`

	err := db.SelectContext(ctx, &ops, query, tenantID, eventID)
	return ops, err
}

func (db *DB) UpdateOperation(op *Operation) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE operations
		SET description = $1, scheduled_at = $2, status = $3
		WHERE id = $4 AND tenant_id = $5 AND deleted_at IS NULL`

	_, err := db.ExecContext(ctx, query,
		op.Description,
		op.ScheduledAt,
		op.Status,
		op.ID,
		op.TenantID,
	)

	return err
}

func (db *DB) AssignOperationDriver(tenantID, id, driverID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE operations SET driver_id = $1 WHERE id = $2 AND tenant_id = $3 AND deleted_at IS NULL`

	_, err := db.ExecContext(ctx, query, driverID, id, tenantID)
	return err
}

func (db *DB) AssignOperationVehicle(tenantID, id, vehicleID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE operations SET vehicle_id = $1 WHERE id = $2 AND tenant_id = $3 AND deleted_at IS NULL`

	_, err := db.ExecContext(ctx, query, vehicleID, id, tenantID)
	return err
}

func (db *DB) SoftDeleteOperation(tenantID, id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE operations SET deleted_at = now() WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

	_, err := db.ExecContext(ctx, query, id, tenantID)
	return err
}
