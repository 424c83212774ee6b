package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Employee struct {
	ID              string         `db:"id"`
	TenantID        string         `db:"tenant_id"`
	Name            string         `db:"name"`
	Role            string         `db:"role"`
	Phone           sql.NullString `db:"phone"`
	LicenseCategory sql.NullString `db:"license_category"`
	CreatedAt       time.Time      `db:"created_at"`
	DeletedAt       sql.NullTime   `db:"deleted_at"`
}

func (db *DB) InsertEmployee(employee *Employee) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO employees (tenant_id, name, role, phone, license_category)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := db.GetContext(ctx, &id, query,
		employee.TenantID,
		employee.Name,
		employee.Role,
		employee.Phone,
		employee.LicenseCategory,
	)

	return id, err
}

func (db *DB) GetEmployee(tenantID, id string) (*Employee, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var employee Employee

	query := `SELECT * FROM employees WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

	err := db.GetContext(ctx, &employee, query, id, tenantID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &employee, true, err
}

func (db *DB) ListEmployees(tenantID string) ([]Employee, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var employees []Employee

	query := `SELECT * FROM employees WHERE tenant_id = $1 AND deleted_at IS NULL ORDER BY name`

	err := db.SelectContext(ctx, &employees, query, tenantID)
	return employees, err
}

func (db *DB) UpdateEmployee(employee *Employee) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
		UPDATE employees
		SET name = $1, role = $2, phone = $3, license_category = $4
		WHERE id = $5 AND tenant_id = $6 AND deleted_at IS NULL`

	_, err := db.ExecContext(ctx, query,
		employee.Name,
		employee.Role,
		employee.Phone,
		employee.LicenseCategory,
		employee.ID,
		employee.TenantID,
	)

	return err
}

func (db *DB) SoftDeleteEmployee(tenantID, id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE employees SET deleted_at = now() WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

	_, err := db.ExecContext(ctx, query, id, tenantID)
	return err
}
