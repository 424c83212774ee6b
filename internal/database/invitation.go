package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type Invitation struct {
	ID         string       `db:"id"`
	TenantID   string       `db:"tenant_id"`
	Email      string       `db:"email"`
	Role       string       `db:"role"`
	TokenHash  string       `db:"token_hash"`
	InvitedBy  string       `db:"invited_by"`
	ExpiresAt  time.Time    `db:"expires_at"`
	AcceptedAt sql.NullTime `db:"accepted_at"`
	CreatedAt  time.Time    `db:"created_at"`
}

func (db *DB) InsertInvitation(inv *Invitation) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var id string

	query := `
		INSERT INTO invitations (tenant_id, email, role, token_hash, invited_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := db.GetContext(ctx, &id, query,
		inv.TenantID,
		inv.Email,
		inv.Role,
		inv.TokenHash,
		inv.InvitedBy,
		inv.ExpiresAt,
	)

	return id, err
}

func (db *DB) GetInvitationByTokenHash(tokenHash string) (*Invitation, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var inv Invitation

	query := `SELECT * FROM invitations WHERE token_hash = $1`

	err := db.GetContext(ctx, &inv, query, tokenHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	return &inv, true, err
}

// MarkInvitationAccepted claims the invitation. The accepted_at guard
// makes the token single-use even under concurrent finalize requests.
func (db *DB) MarkInvitationAccepted(id string, tx *sql.Tx) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `UPDATE invitations SET accepted_at = now() WHERE id = $1 AND accepted_at IS NULL`

	var result sql.Result
	var err error

	if tx != nil {
		result, err = tx.ExecContext(ctx, query, id)
	} else {
		result, err = db.ExecContext(ctx, query, id)
	}
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

func (db *DB) ListInvitations(tenantID string) ([]Invitation, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	var invitations []Invitation

	query := `SELECT * FROM invitations WHERE tenant_id = $1 ORDER BY created_at DESC`

	err := db.SelectContext(ctx, &invitations, query, tenantID)
	return invitations, err
}
