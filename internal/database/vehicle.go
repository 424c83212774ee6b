package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Vehicle struct {
	ID         string         `db:"id"`
	TenantID   string         `db:"tenant_id"`
	Plate      string         `db:"plate"`
	Model      string         `db:"model"`
	CapacityKg int            `db:"capacity_kg"`
	Status     string         `db:"status"`
	PhotoURL   sql.NullString `db:"photo_url"`
	CreatedAt  time.Time      `db:"created_at"`
	DeletedAt  sql.NullTime   `db:"deleted_at"`
}

const (
	VehicleStatusAvailable   = "available"
	VehicleStatusInUse       = "in_use"
	VehicleStatusMaintenance = "maintenance"
)

func (db *DB) InsertVehicle(vehicle *Vehicle) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO vehicles (tenant_id, plate, model, capacity_kg, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := db.GetContext(ctx, &id, query,
		vehicle.TenantID,
		vehicle.Plate,
		vehicle.Model,
		vehicle.CapacityKg,
		vehicle.Status,
	)

	return id, err
}

func (db *DB) GetVehicle(tenantID, id string) (*Vehicle, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var vehicle Vehicle

	query := `SELECT * FROM vehicles WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

	err := db.GetContext(ctx, &vehicle, query, id, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &vehicle, true, err
}

func (db *DB) ListVehicles(tenantID string) ([]Vehicle, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var vehicles []Vehicle

	query := `SELECT * FROM vehicles WHERE tenant_id = $1 AND deleted_at IS NULL ORDER BY plate`

	err := db.SelectContext(ctx, &vehicles, query, tenantID)
	return vehicles, err
}

func (db *DB) CheckIfPlateExists(tenantID, plate string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var exists bool

	query := `SELECT EXISTS(SELECT 1 FROM vehicles WHERE tenant_id = $1 AND plate = $2 AND deleted_at IS NULL)`

	err := db.GetContext(ctx, &exists, query, tenantID, plate)
	return exists, err
}

func (db *DB) UpdateVehicle(vehicle *Vehicle) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE vehicles
		SET plate = $1, model = $2, capacity_kg = $3, status = $4
		WHERE id = $5 AND tenant_id = $6 AND deleted_at IS NULL`

	_, err := db.ExecContext(ctx, query,
		vehicle.Plate,
		vehicle.Model,
		vehicle.CapacityKg,
		vehicle.Status,
		vehicle.ID,
		vehicle.TenantID,
	)

	return err
}

func (db *DB) UpdateVehiclePhoto(tenantID, id, photoURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE vehicles SET photo_url = $1 WHERE id = $2 AND tenant_id = $3`

	_, err := db.ExecContext(ctx, query, photoURL, id, tenantID)
	return err
}

func (db *DB) SoftDeleteVehicle(tenantID, id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE vehicles SET deleted_at = now() WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

	_, err := db.ExecContext(ctx, query, id, tenantID)
	return err
}

func (db *DB) CountVehiclesByStatus(tenantID string) (map[string]int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var rows []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}

	query := `
		SELECT status, count(*) AS count FROM vehicles
		WHERE tenant_id = $1 AND deleted_at IS NULL
		GROUP BY status`

	err := db.SelectContext(ctx, &rows, query, tenantID)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}
