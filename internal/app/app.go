package app

import (
	"context"
	"errors"
	"time"

	"easy-website/config"
	"easy-website/internal/secrets"
	"easy-website/models"
	"easy-website/observability"
	"easy-website/repository"
)

// Sentinel errors returned by App operations. The HTTP layer maps these to
// status codes; everything else surfaces as an internal error.
var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrMissingToken          = errors.New("missing refresh token")
	ErrInvalidToken          = errors.New("invalid refresh token")
	ErrTokenRevoked          = errors.New("refresh token revoked")
	ErrTokenExpired          = errors.New("refresh token expired")
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailTaken            = errors.New("email already in use")
	ErrProviderNotConfigured = errors.New("AI provider is not configured")
	ErrProfileNotFound       = errors.New("provider profile not found")
	ErrTemplateNotFound      = errors.New("no prompt template available")

	// ErrUpstream marks provider dispatch failures. Unlike other internal
	// errors its message, including the upstream status and body, is safe to
	// return to the client.
	ErrUpstream = errors.New("AI provider request failed")
)

// Store is the persistence surface the application logic depends on.
// *repository.Repository satisfies it.
type Store interface {
	GetDefaultProfile(ctx context.Context) (*models.ProviderProfile, error)
	GetProfile(ctx context.Context, id int64) (*models.ProviderProfile, error)
	ListProfiles(ctx context.Context) ([]models.ProviderProfile, error)
	CreateProfile(ctx context.Context, p *models.ProviderProfile) error
	UpdateProfile(ctx context.Context, p *models.ProviderProfile) error
	DeleteProfile(ctx context.Context, id int64) error
	SetDefaultProfile(ctx context.Context, id int64) error

	FindTemplate(ctx context.Context, componentType string, templateType models.TemplateType) (*models.PromptTemplate, error)
	GetTemplate(ctx context.Context, id int64) (*models.PromptTemplate, error)
	ListTemplates(ctx context.Context) ([]models.PromptTemplate, error)
	CreateTemplate(ctx context.Context, t *models.PromptTemplate) error
	UpdateTemplate(ctx context.Context, t *models.PromptTemplate) error
	DeleteTemplate(ctx context.Context, id int64) error

	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64) error
	EmailInUse(ctx context.Context, email string, excludeUserID int64) (bool, error)
	UpdateUserProfile(ctx context.Context, id int64, update repository.UserProfileUpdate) error

	CreateRefreshToken(ctx context.Context, t *models.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (*models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, id int64) error
	MarkRotated(ctx context.Context, oldID, newID int64) error
	RevokeRefreshTokenByHash(ctx context.Context, hash string) error

	InsertActivityLog(ctx context.Context, entry *models.ActivityLog) error
	ListRecentActivity(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

// LLMClient dispatches chat-completion requests to configured providers.
// *services.ProviderClient satisfies it.
type LLMClient interface {
	ChatCompletion(ctx context.Context, profile *models.ProviderProfile, prompt string) (string, error)
}

// App holds the application logic behind the HTTP handlers
type App struct {
	cfg   *config.Config
	store Store
	llm   LLMClient
	keys  *secrets.Keeper
}

// New creates the application core
func New(cfg *config.Config, store Store, llm LLMClient) *App {
	return &App{
		cfg:   cfg,
		store: store,
		llm:   llm,
		keys:  secrets.NewKeeper(cfg.AI.KeyPassphrase),
	}
}

// logActivity records an audit entry without blocking or failing the request
// that triggered it.
func (a *App) logActivity(entry models.ActivityLog) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.store.InsertActivityLog(ctx, &entry); err != nil {
			observability.Warn("Failed to record activity log",
				"action", entry.Action, "user_id", entry.UserID, "error", err)
		}
	}()
}
