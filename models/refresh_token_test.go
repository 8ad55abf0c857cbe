package models

import (
	"testing"
	"time"
)

func TestRefreshToken_Revoked(t *testing.T) {
	token := RefreshToken{}
	if token.Revoked() {
		t.Error("token without RevokedAt should not be revoked")
	}

	now := time.Now()
	token.RevokedAt = &now
	if !token.Revoked() {
		t.Error("token with RevokedAt should be revoked")
	}
}

func TestRefreshToken_Expired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{"future expiry", now.Add(time.Hour), false},
		{"past expiry", now.Add(-time.Hour), true},
		{"exactly now", now, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := RefreshToken{ExpiresAt: tt.expiresAt}
			if got := token.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUser_Roles(t *testing.T) {
	admin := User{Role: RoleAdmin}
	editor := User{Role: RoleEditor}
	other := User{Role: "viewer"}

	if !admin.IsAdmin() || !admin.CanEdit() {
		t.Error("admin should pass both role checks")
	}
	if editor.IsAdmin() {
		t.Error("editor should not pass admin check")
	}
	if !editor.CanEdit() {
		t.Error("editor should pass editor check")
	}
	if other.CanEdit() || other.IsAdmin() {
		t.Error("unknown role should pass no checks")
	}
}
