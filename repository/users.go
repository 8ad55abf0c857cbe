package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"easy-website/models"
)

const userColumns = `id, username, password_hash, COALESCE(email, ''), COALESCE(first_name, ''),
		COALESCE(last_name, ''), COALESCE(language, 'en'), role, created_at, last_login`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &u.FirstName,
		&u.LastName, &u.Language, &u.Role, &u.CreatedAt, &u.LastLogin)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByUsername returns a user by username, or nil if it does not exist.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)

	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return user, nil
}

// GetUserByID returns a user by id, or nil if it does not exist.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// UpdateLastLogin stamps the user's last successful login time.
func (r *Repository) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to update last login for user %d: %w", id, err)
	}
	return nil
}

// EmailInUse reports whether another user already has the given email.
func (r *Repository) EmailInUse(ctx context.Context, email string, excludeUserID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND id <> $2)`,
		email, excludeUserID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	return exists, nil
}

// UserProfileUpdate holds the optional fields of a profile update. Nil fields
// are left untouched.
type UserProfileUpdate struct {
	Email        *string
	FirstName    *string
	LastName     *string
	Language     *string
	PasswordHash *string
}

// UpdateUserProfile applies the non-nil fields of the update to the user.
// It is a no-op when every field is nil.
func (r *Repository) UpdateUserProfile(ctx context.Context, id int64, update UserProfileUpdate) error {
	var (
		clauses []string
		args    []any
	)
	add := func(column string, value *string) {
		if value != nil {
			args = append(args, *value)
			clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
		}
	}
	add("email", update.Email)
	add("first_name", update.FirstName)
	add("last_name", update.LastName)
	add("language", update.Language)
	add("password_hash", update.PasswordHash)

	if len(clauses) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, strings.Join(clauses, ", "), len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update profile for user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update profile for user %d: %w", id, pgx.ErrNoRows)
	}
	return nil
}
