package app

import (
	"context"
	"fmt"
	"time"

	"easy-website/internal/auth"
	"easy-website/models"
	"easy-website/observability"
	"easy-website/repository"
)

// Session is the result of a successful login or refresh: the authenticated
// user, a short-lived access JWT, and a fresh opaque refresh token with its
// absolute expiry.
type Session struct {
	User             *models.User
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// LoginRequest carries the credentials of a login attempt
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RequestMeta identifies the client for audit and token bookkeeping
type RequestMeta struct {
	IPAddress string
	UserAgent string
}

func (a *App) refreshTokenTTL() time.Duration {
	return time.Duration(a.cfg.Auth.RefreshTokenDays) * 24 * time.Hour
}

// issueSession mints an access JWT and a stored refresh token for the user.
// It also returns the id of the new refresh token row so rotation can link
// the replaced token to it.
func (a *App) issueSession(ctx context.Context, user *models.User, meta RequestMeta) (*Session, int64, error) {
	accessToken, err := auth.GenerateAccessToken(a.cfg.Auth.JWTSecret, user.ID, a.cfg.Auth.AccessTokenTTL)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	row := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: auth.HashToken(refreshToken),
		ExpiresAt: time.Now().Add(a.refreshTokenTTL()),
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}
	if err := a.store.CreateRefreshToken(ctx, row); err != nil {
		return nil, 0, err
	}

	return &Session{
		User:             user,
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: row.ExpiresAt,
	}, row.ID, nil
}

// Login verifies the credentials and opens a new session
func (a *App) Login(ctx context.Context, req LoginRequest, meta RequestMeta) (*Session, error) {
	if req.Username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidRequest)
	}

	metrics := observability.GetMetrics()

	user, err := a.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		metrics.RecordLoginAttempt("failure")
		observability.Warn("Login failed", "username", req.Username, "ip", meta.IPAddress)
		return nil, ErrInvalidCredentials
	}

	if err := a.store.UpdateLastLogin(ctx, user.ID); err != nil {
		observability.WithUser(user.ID).Warn("Failed to update last login", "error", err)
	}

	session, _, err := a.issueSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	metrics.RecordLoginAttempt("success")
	a.logActivity(models.ActivityLog{
		UserID:      user.ID,
		Action:      "login",
		Description: fmt.Sprintf("User %s logged in", user.Username),
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	})
	return session, nil
}

// Refresh exchanges a valid refresh token for a new session, rotating the
// token: the presented one is revoked and linked to its replacement. A
// revoked token being presented again is reuse; it is counted and logged but
// the token chain is not escalated beyond the rejection.
func (a *App) Refresh(ctx context.Context, rawToken string, meta RequestMeta) (*Session, error) {
	metrics := observability.GetMetrics()

	if rawToken == "" {
		metrics.RecordTokenRefresh("missing")
		return nil, ErrMissingToken
	}

	stored, err := a.store.GetRefreshTokenByHash(ctx, auth.HashToken(rawToken))
	if err != nil {
		return nil, err
	}
	if stored == nil {
		metrics.RecordTokenRefresh("invalid")
		return nil, ErrInvalidToken
	}
	if stored.Revoked() {
		metrics.RecordTokenRefresh("revoked")
		metrics.RecordTokenReuse()
		observability.WithUser(stored.UserID).Warn("Revoked refresh token presented",
			"token_id", stored.ID, "ip", meta.IPAddress)
		return nil, ErrTokenRevoked
	}
	if stored.Expired(time.Now()) {
		metrics.RecordTokenRefresh("expired")
		if err := a.store.RevokeRefreshToken(ctx, stored.ID); err != nil {
			observability.Warn("Failed to revoke expired refresh token", "token_id", stored.ID, "error", err)
		}
		return nil, ErrTokenExpired
	}

	user, err := a.store.GetUserByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Account deleted since the token was issued.
		if err := a.store.RevokeRefreshToken(ctx, stored.ID); err != nil {
			observability.Warn("Failed to revoke orphaned refresh token", "token_id", stored.ID, "error", err)
		}
		metrics.RecordTokenRefresh("invalid")
		return nil, ErrInvalidToken
	}

	session, newID, err := a.issueSession(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	if err := a.store.MarkRotated(ctx, stored.ID, newID); err != nil {
		return nil, err
	}

	metrics.RecordTokenRefresh("success")
	return session, nil
}

// Logout revokes the presented refresh token. Revocation is best effort:
// a missing, unknown, or already revoked token still yields a successful
// logout. When the token resolves to a user the logout is recorded in the
// activity log.
func (a *App) Logout(ctx context.Context, rawToken string, meta RequestMeta) {
	if rawToken == "" {
		return
	}
	hash := auth.HashToken(rawToken)

	stored, err := a.store.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		observability.Warn("Failed to look up refresh token on logout", "error", err)
	}
	if err := a.store.RevokeRefreshTokenByHash(ctx, hash); err != nil {
		observability.Warn("Failed to revoke refresh token on logout", "error", err)
	}

	if stored != nil {
		a.logActivity(models.ActivityLog{
			UserID:       stored.UserID,
			Action:       "logout",
			ResourceType: "auth",
			Description:  "User logged out",
			IPAddress:    meta.IPAddress,
			UserAgent:    meta.UserAgent,
		})
	}
}

// RecentActivity returns the newest audit entries for the admin dashboard.
// limit values outside 1..200 fall back to 50.
func (a *App) RecentActivity(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return a.store.ListRecentActivity(ctx, limit)
}

// Profile returns the authenticated user's account data
func (a *App) Profile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := a.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfileRequest carries the optional account changes of a profile
// update. Nil fields are left untouched. A password change requires the
// current password.
type UpdateProfileRequest struct {
	Email           *string `json:"email,omitempty"`
	FirstName       *string `json:"first_name,omitempty"`
	LastName        *string `json:"last_name,omitempty"`
	Language        *string `json:"language,omitempty"`
	CurrentPassword *string `json:"current_password,omitempty"`
	NewPassword     *string `json:"new_password,omitempty"`
}

// UpdateProfile applies account changes for the authenticated user and
// returns the updated record
func (a *App) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest, meta RequestMeta) (*models.User, error) {
	user, err := a.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && *req.Email != "" && *req.Email != user.Email {
		taken, err := a.store.EmailInUse(ctx, *req.Email, userID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailTaken
		}
	}

	update := repository.UserProfileUpdate{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Language:  req.Language,
	}

	if req.NewPassword != nil {
		if len(*req.NewPassword) < 8 {
			return nil, fmt.Errorf("%w: new password must be at least 8 characters", ErrInvalidRequest)
		}
		if req.CurrentPassword == nil || !auth.CheckPassword(user.PasswordHash, *req.CurrentPassword) {
			return nil, ErrInvalidCredentials
		}
		hash, err := auth.HashPassword(*req.NewPassword, a.cfg.Auth.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		update.PasswordHash = &hash
	}

	if err := a.store.UpdateUserProfile(ctx, userID, update); err != nil {
		return nil, err
	}

	a.logActivity(models.ActivityLog{
		UserID:      userID,
		Action:      "update_profile",
		Description: fmt.Sprintf("User %s updated their profile", user.Username),
		IPAddress:   meta.IPAddress,
		UserAgent:   meta.UserAgent,
	})

	return a.Profile(ctx, userID)
}
