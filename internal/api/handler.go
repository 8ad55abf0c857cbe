package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"easy-website/config"
	"easy-website/internal/app"
	"easy-website/internal/auth"
	"easy-website/models"
	"easy-website/observability"
)

// Service is the application surface the HTTP handlers depend on.
// *app.App satisfies it.
type Service interface {
	Generate(ctx context.Context, req app.GenerateRequest) (*app.GenerateResult, error)
	TestProvider(ctx context.Context, profileID *int64) (string, error)

	Login(ctx context.Context, req app.LoginRequest, meta app.RequestMeta) (*app.Session, error)
	Refresh(ctx context.Context, rawToken string, meta app.RequestMeta) (*app.Session, error)
	Logout(ctx context.Context, rawToken string, meta app.RequestMeta)
	Profile(ctx context.Context, userID int64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID int64, req app.UpdateProfileRequest, meta app.RequestMeta) (*models.User, error)
	RecentActivity(ctx context.Context, limit int) ([]models.ActivityLog, error)

	ProviderSettings(ctx context.Context) (*app.ProviderSettings, error)
	UpsertSettings(ctx context.Context, p *models.ProviderProfile, actorID int64, meta app.RequestMeta) (*models.ProviderProfile, error)
	CreateProviderProfile(ctx context.Context, p *models.ProviderProfile, actorID int64, meta app.RequestMeta) error
	UpdateProviderProfile(ctx context.Context, p *models.ProviderProfile) error
	DeleteProviderProfile(ctx context.Context, id int64) error
	SetDefaultProviderProfile(ctx context.Context, id int64) error
	PromptTemplate(ctx context.Context, id int64) (*models.PromptTemplate, error)
	CreatePromptTemplate(ctx context.Context, t *models.PromptTemplate) error
	UpdatePromptTemplate(ctx context.Context, t *models.PromptTemplate) error
	DeletePromptTemplate(ctx context.Context, id int64) error
}

// HealthChecker reports whether the backing database is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler handles HTTP API requests
type Handler struct {
	svc    Service
	cfg    *config.Config
	health HealthChecker
}

// NewHandler creates a new Handler. health may be nil when no database is
// configured.
func NewHandler(svc Service, cfg *config.Config, health HealthChecker) *Handler {
	return &Handler{svc: svc, cfg: cfg, health: health}
}

// envelope is the uniform JSON response shape
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func (h *Handler) respondMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Message: message})
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Message: message})
}

// respondAppError maps application sentinel errors onto HTTP status codes
func (h *Handler) respondAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrInvalidRequest),
		errors.Is(err, app.ErrProviderNotConfigured),
		errors.Is(err, app.ErrEmailTaken):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, app.ErrInvalidCredentials),
		errors.Is(err, app.ErrMissingToken),
		errors.Is(err, app.ErrInvalidToken),
		errors.Is(err, app.ErrTokenRevoked),
		errors.Is(err, app.ErrTokenExpired):
		h.respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, app.ErrUserNotFound),
		errors.Is(err, app.ErrProfileNotFound),
		errors.Is(err, app.ErrTemplateNotFound):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, app.ErrUpstream):
		// Provider failures embed the upstream status and body for the admin.
		h.respondError(w, http.StatusInternalServerError, err.Error())
	default:
		// Anything unrecognized is an internal failure; the detail belongs in
		// the log, not the response.
		observability.Error("Request failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// requestMeta extracts the client identity used for audit entries and token
// bookkeeping. RealIP middleware has already rewritten RemoteAddr.
func requestMeta(r *http.Request) app.RequestMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return app.RequestMeta{IPAddress: ip, UserAgent: r.UserAgent()}
}

func (h *Handler) cookieOptions() auth.CookieOptions {
	return auth.CookieOptions{
		Name:   h.cfg.Auth.RefreshCookieName,
		Path:   h.cfg.Auth.RefreshCookiePath,
		MaxAge: time.Duration(h.cfg.Auth.RefreshTokenDays) * 24 * time.Hour,
		Secure: h.cfg.IsProduction(),
	}
}

// refreshCookieValue reads the refresh token cookie, returning "" when absent
func (h *Handler) refreshCookieValue(r *http.Request) string {
	cookie, err := r.Cookie(h.cfg.Auth.RefreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// handleHealth returns the health status of the service
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"status": "ok",
		"services": map[string]string{
			"database": "not_configured",
		},
	}

	if h.health != nil {
		services := status["services"].(map[string]string)
		if err := h.health.Health(r.Context()); err == nil {
			services["database"] = "connected"
		} else {
			services["database"] = "disconnected"
			status["status"] = "degraded"
		}
	}

	h.respond(w, http.StatusOK, status)
}

// handleLogin authenticates a user and opens a session
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req app.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	session, err := h.svc.Login(r.Context(), req, requestMeta(r))
	if err != nil {
		h.respondAppError(w, err)
		return
	}

	auth.SetRefreshCookie(w, h.cookieOptions(), session.RefreshToken)
	h.respond(w, http.StatusOK, map[string]any{
		"token": session.AccessToken,
		"user":  session.User,
	})
}

// handleRefresh rotates the refresh token and issues a new access token.
// Every failure clears the cookie so the client stops retrying a dead token.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Refresh(r.Context(), h.refreshCookieValue(r), requestMeta(r))
	if err != nil {
		auth.ClearRefreshCookie(w, h.cookieOptions())
		h.respondAppError(w, err)
		return
	}

	auth.SetRefreshCookie(w, h.cookieOptions(), session.RefreshToken)
	h.respond(w, http.StatusOK, map[string]any{
		"token": session.AccessToken,
		"user":  session.User,
	})
}

// handleLogout revokes the refresh token and clears the cookie
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout(r.Context(), h.refreshCookieValue(r), requestMeta(r))
	auth.ClearRefreshCookie(w, h.cookieOptions())
	h.respondMessage(w, http.StatusOK, "logged out")
}

// handleCheck confirms the access token is still valid
func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	h.respond(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          user,
	})
}

// handleGetProfile returns the authenticated user's account
func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	h.respond(w, http.StatusOK, user)
}

// handleUpdateProfile applies account changes for the authenticated user
func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req app.UpdateProfileRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), UserFromContext(r.Context()).ID, req, requestMeta(r))
	if err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respond(w, http.StatusOK, user)
}

// handleGenerate runs an AI content generation request
func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req app.GenerateRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.svc.Generate(r.Context(), req)
	if err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respond(w, http.StatusOK, result)
}

// handleTestProvider sends a canned prompt through a provider profile
func (h *Handler) handleTestProvider(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProfileID *int64 `json:"profile_id,omitempty"`
	}
	if r.ContentLength > 0 && !h.decode(w, r, &req) {
		return
	}

	reply, err := h.svc.TestProvider(r.Context(), req.ProfileID)
	if err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respond(w, http.StatusOK, map[string]string{"reply": reply})
}

// handleGetSettings returns all provider profiles and prompt templates
func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.ProviderSettings(r.Context())
	if err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respond(w, http.StatusOK, settings)
}

// providerProfileRequest accepts the write-only api_key field that the model
// never serializes back out.
type providerProfileRequest struct {
	models.ProviderProfile
	APIKey string `json:"api_key,omitempty"`
}

func (req *providerProfileRequest) profile() models.ProviderProfile {
	p := req.ProviderProfile
	p.APIKey = req.APIKey
	return p
}

// handleUpsertSettings writes the single-profile settings form. An omitted
// enabled flag means enabled, matching the admin UI's sparse payloads.
func (h *Handler) handleUpsertSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		providerProfileRequest
		Enabled *bool `json:"enabled"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	profile := req.profile()
	profile.Enabled = req.Enabled == nil || *req.Enabled

	updated, err := h.svc.UpsertSettings(r.Context(), &profile, UserFromContext(r.Context()).ID, requestMeta(r))
	if err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respond(w, http.StatusOK, updated)
}

// handleCreateProfile stores a new provider profile
func (h *Handler) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var req providerProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	profile := req.profile()

	if err := h.svc.CreateProviderProfile(r.Context(), &profile, UserFromContext(r.Context()).ID, requestMeta(r)); err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, profile)
}

// handleUpdateProviderProfile stores changes to a provider profile
func (h *Handler) handleUpdateProviderProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req providerProfileRequest
	if !h.decode(w, r, &req) {
		return
	}
	profile := req.profile()
	profile.ID = id

	if err := h.svc.UpdateProviderProfile(r.Context(), &profile); err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respond(w, http.StatusOK, profile)
}

// handleDeleteProfile removes a provider profile
func (h *Handler) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteProviderProfile(r.Context(), id); err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respondMessage(w, http.StatusOK, "profile deleted")
}

// handleSetDefaultProfile makes a profile the generation default
func (h *Handler) handleSetDefaultProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.SetDefaultProviderProfile(r.Context(), id); err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respondMessage(w, http.StatusOK, "default profile updated")
}

// handleGetTemplate returns one prompt template
func (h *Handler) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	tmpl, err := h.svc.PromptTemplate(r.Context(), id)
	if err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respond(w, http.StatusOK, tmpl)
}

// handleCreateTemplate stores a new prompt template
func (h *Handler) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var tmpl models.PromptTemplate
	if !h.decode(w, r, &tmpl) {
		return
	}
	if err := h.svc.CreatePromptTemplate(r.Context(), &tmpl); err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respond(w, http.StatusCreated, tmpl)
}

// handleUpdateTemplate stores changes to a prompt template
func (h *Handler) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var tmpl models.PromptTemplate
	if !h.decode(w, r, &tmpl) {
		return
	}
	tmpl.ID = id
	if err := h.svc.UpdatePromptTemplate(r.Context(), &tmpl); err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respond(w, http.StatusOK, tmpl)
}

// handleListActivity returns the newest audit entries
func (h *Handler) handleListActivity(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	entries, err := h.svc.RecentActivity(r.Context(), limit)
	if err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respond(w, http.StatusOK, entries)
}

// handleDeleteTemplate removes a prompt template
func (h *Handler) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePromptTemplate(r.Context(), id); err != nil {
		h.respondAppError(w, err)
		return
	}
	h.respondMessage(w, http.StatusOK, "template deleted")
}
