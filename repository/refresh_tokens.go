package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"easy-website/models"
	"easy-website/observability"
)

const refreshTokenColumns = `id, user_id, token_hash, expires_at, revoked_at, replaced_by_id,
		last_used_at, COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_at`

func scanRefreshToken(row pgx.Row) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := row.Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.RevokedAt, &t.ReplacedByID,
		&t.LastUsedAt, &t.IPAddress, &t.UserAgent, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateRefreshToken inserts a refresh token row and fills in its id.
// Only the SHA-256 hash of the opaque token is ever stored.
func (r *Repository) CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("insert", "refresh_tokens")

	query := `
		INSERT INTO refresh_tokens (user_id, token_hash, expires_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, t.UserID, t.TokenHash, t.ExpiresAt, t.IPAddress, t.UserAgent).
		Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

// GetRefreshTokenByHash returns the refresh token row matching the hash,
// or nil if no such token exists.
func (r *Repository) GetRefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error) {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("select", "refresh_tokens")

	query := fmt.Sprintf(`SELECT %s FROM refresh_tokens WHERE token_hash = $1`, refreshTokenColumns)

	token, err := scanRefreshToken(r.db.QueryRow(ctx, query, hash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	return token, nil
}

// RevokeRefreshToken revokes a token by id without a replacement. Used when an
// expired token is presented and on explicit logout paths.
func (r *Repository) RevokeRefreshToken(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token %d: %w", id, err)
	}
	return nil
}

// MarkRotated revokes the old token and links it to its replacement,
// stamping last_used_at to record the rotation moment.
func (r *Repository) MarkRotated(ctx context.Context, oldID, newID int64) error {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("update", "refresh_tokens")

	_, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW(), replaced_by_id = $2, last_used_at = NOW() WHERE id = $1`,
		oldID, newID)
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token %d: %w", oldID, err)
	}
	return nil
}

// RevokeRefreshTokenByHash revokes whatever active token matches the hash.
// Missing or already revoked tokens are not an error; logout is best effort.
func (r *Repository) RevokeRefreshTokenByHash(ctx context.Context, hash string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE token_hash = $1 AND revoked_at IS NULL`, hash)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token by hash: %w", err)
	}
	return nil
}
