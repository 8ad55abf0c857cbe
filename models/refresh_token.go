package models

import "time"

// RefreshToken stores the SHA-256 hash of an opaque refresh credential.
// The raw token lives only in the client's HttpOnly cookie. A row moves from
// active to revoked exactly once; ReplacedByID chains rotations of one login
// session for audit and reuse detection.
type RefreshToken struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	TokenHash    string     `json:"-"`
	ExpiresAt    time.Time  `json:"expires_at"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
	ReplacedByID *int64     `json:"replaced_by_id,omitempty"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
	IPAddress    string     `json:"ip_address,omitempty"`
	UserAgent    string     `json:"user_agent,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Revoked reports whether the token has been revoked
func (t *RefreshToken) Revoked() bool {
	return t.RevokedAt != nil
}

// Expired reports whether the token's expiry has passed at the given instant
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
