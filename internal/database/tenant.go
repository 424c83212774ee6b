package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Tenant struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

func (db *DB) InsertTenant(name string, tx *sql.Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `INSERT INTO tenants (name) VALUES ($1) RETURNING id`

	if tx != nil {
		err := tx.QueryRowContext(ctx, query, name).Scan(&id)
		return id, err
	}

	err := db.GetContext(ctx, &id, query, name)
	return id, err
}

func (db *DB) GetTenant(id string) (*Tenant, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var tenant Tenant

	query := `SELECT * FROM tenants WHERE id = $1`

	err := db.GetContext(ctx, &tenant, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &tenant, true, err
}
