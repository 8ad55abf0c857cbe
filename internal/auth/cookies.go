package auth

import (
	"net/http"
	"time"
)

// CookieOptions describes how the refresh cookie is written and cleared
type CookieOptions struct {
	Name   string
	Path   string
	MaxAge time.Duration
	Secure bool
}

// SetRefreshCookie writes the opaque refresh token into the HttpOnly cookie
func SetRefreshCookie(w http.ResponseWriter, opts CookieOptions, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    token,
		Path:     opts.Path,
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearRefreshCookie expires the refresh cookie client-side
func ClearRefreshCookie(w http.ResponseWriter, opts CookieOptions) {
	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name,
		Value:    "",
		Path:     opts.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
