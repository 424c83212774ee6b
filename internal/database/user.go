package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type User struct {
	ID             string         `db:"id"`
	TenantID       string         `db:"tenant_id"`
	Name           string         `db:"name"`
	Email          string         `db:"email"`
	Role           string         `db:"role"`
	HashedPassword sql.NullString `db:"hashed_password"`
	GoogleID       sql.NullString `db:"google_id"`
	Status         string         `db:"status"`
	CreatedAt      time.Time      `db:"created_at"`
	DeletedAt      sql.NullTime   `db:"deleted_at"`
}

const (
	UserRoleAdmin    = "admin"
	UserRoleManager  = "manager"
	UserRoleOperator = "operator"
)

const (
	UserAccountActiveStatus = "active"
	UserAccountLockedStatus = "locked"
)

func (db *DB) InsertUser(user *User, tx *sql.Tx) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string
	query := `
		INSERT INTO users (tenant_id, name, email, role, hashed_password, google_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	if tx != nil {
		err := tx.QueryRowContext(ctx, query,
			user.TenantID,
			user.Name,
			user.Email,
			user.Role,
			user.HashedPassword,
			user.GoogleID,
		).Scan(&id)
		if err != nil {
			return "", err
		}
	} else {
		err := db.GetContext(ctx, &id, query,
			user.TenantID,
			user.Name,
			user.Email,
			user.Role,
			user.HashedPassword,
			user.GoogleID,
		)
		if err != nil {
			return "", err
		}
	}

	return id, nil
}

func (db *DB) GetUser(id string) (*User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user User

	query := `SELECT * FROM users WHERE id = $1 AND deleted_at IS NULL`

	err := db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, true, err
}

func (db *DB) GetUserByEmail(email string) (*User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user User

	query := `SELECT * FROM users WHERE email = $1 AND deleted_at IS NULL`

	err := db.GetContext(ctx, &user, query, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, true, err
}

func (db *DB) GetUserByGoogleID(googleID string) (*User, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var user User

	query := `SELECT * FROM users WHERE google_id = $1 AND deleted_at IS NULL`

	err := db.GetContext(ctx, &user, query, googleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &user, true, err
}

func (db *DB) ListUsers(tenantID string) ([]User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var users []User

	query := `SELECT * FROM users WHERE tenant_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`

	err := db.SelectContext(ctx, &users, query, tenantID)
	return users, err
}

func (db *DB) LinkGoogleAccount(id, googleID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET google_id = $1 WHERE id = $2`

	_, err := db.ExecContext(ctx, query, googleID, id)
	return err
}

func (db *DB) UpdateUserRole(tenantID, id, role string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET role = $1 WHERE id = $2 AND tenant_id = $3`

	_, err := db.ExecContext(ctx, query, role, id, tenantID)
	return err
}

func (db *DB) SoftDeleteUser(tenantID, id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE users SET deleted_at = now() WHERE id = $1 AND tenant_id = $2 AND deleted_at IS NULL`

	_, err := db.ExecContext(ctx, query, id, tenantID)
	return err
}
