package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"easy-website/models"
)

// getTestDB returns a repository connected to the test database.
// If DATABASE_URL is not set, the test is skipped.
func getTestDB(t *testing.T) *Repository {
	t.Helper()

	connString := os.Getenv("DATABASE_URL")
	if connString == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	repo, err := NewRepository(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	return repo
}

func cleanupProfiles(t *testing.T, repo *Repository) {
	t.Helper()
	_, err := repo.Pool().Exec(context.Background(),
		`DELETE FROM ai_provider_settings WHERE profile_name LIKE 'it-test-%'`)
	if err != nil {
		t.Fatalf("failed to clean up test profiles: %v", err)
	}
}

func testProfileRow(name string) *models.ProviderProfile {
	return &models.ProviderProfile{
		ProfileName: "it-test-" + name,
		Provider:    models.ProviderOpenAI,
		Model:       "gpt-4o-mini",
		APIKey:      "sk-test",
		Temperature: 0.7,
		MaxTokens:   800,
		TopP:        1.0,
		Enabled:     true,
	}
}

func TestProviderProfileLifecycle(t *testing.T) {
	repo := getTestDB(t)
	defer repo.Close()
	defer cleanupProfiles(t, repo)
	ctx := context.Background()

	profile := testProfileRow("lifecycle")
	if err := repo.CreateProfile(ctx, profile); err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}
	if profile.ID == 0 {
		t.Fatal("CreateProfile() did not assign an id")
	}

	got, err := repo.GetProfile(ctx, profile.ID)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if got == nil || got.ProfileName != profile.ProfileName {
		t.Fatalf("GetProfile() = %+v, want the created profile", got)
	}

	got.Model = "gpt-4o"
	if err := repo.UpdateProfile(ctx, got); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	if err := repo.DeleteProfile(ctx, profile.ID); err != nil {
		t.Fatalf("DeleteProfile() error = %v", err)
	}
	if got, _ := repo.GetProfile(ctx, profile.ID); got != nil {
		t.Error("profile still present after delete")
	}
}

func TestSetDefaultProfile_SingleDefault(t *testing.T) {
	repo := getTestDB(t)
	defer repo.Close()
	defer cleanupProfiles(t, repo)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		p := testProfileRow(fmt.Sprintf("default-%d", i))
		if err := repo.CreateProfile(ctx, p); err != nil {
			t.Fatalf("CreateProfile() error = %v", err)
		}
		ids = append(ids, p.ID)
	}

	for _, id := range ids {
		if err := repo.SetDefaultProfile(ctx, id); err != nil {
			t.Fatalf("SetDefaultProfile(%d) error = %v", id, err)
		}

		var defaults int
		err := repo.Pool().QueryRow(ctx,
			`SELECT COUNT(*) FROM ai_provider_settings WHERE is_default AND profile_name LIKE 'it-test-%'`).
			Scan(&defaults)
		if err != nil {
			t.Fatalf("failed to count defaults: %v", err)
		}
		if defaults != 1 {
			t.Fatalf("have %d defaults after SetDefaultProfile(%d), want 1", defaults, id)
		}
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	repo := getTestDB(t)
	defer repo.Close()
	ctx := context.Background()

	defer repo.Pool().Exec(ctx, `DELETE FROM refresh_tokens WHERE user_agent = 'it-test'`)

	user, err := repo.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if user == nil {
		t.Skip("no admin user seeded, skipping")
	}

	old := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: fmt.Sprintf("it-hash-%d", time.Now().UnixNano()),
		ExpiresAt: time.Now().Add(time.Hour),
		UserAgent: "it-test",
	}
	if err := repo.CreateRefreshToken(ctx, old); err != nil {
		t.Fatalf("CreateRefreshToken() error = %v", err)
	}

	next := &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: old.TokenHash + "-next",
		ExpiresAt: time.Now().Add(time.Hour),
		UserAgent: "it-test",
	}
	if err := repo.CreateRefreshToken(ctx, next); err != nil {
		t.Fatalf("CreateRefreshToken() error = %v", err)
	}

	if err := repo.MarkRotated(ctx, old.ID, next.ID); err != nil {
		t.Fatalf("MarkRotated() error = %v", err)
	}

	rotated, err := repo.GetRefreshTokenByHash(ctx, old.TokenHash)
	if err != nil {
		t.Fatalf("GetRefreshTokenByHash() error = %v", err)
	}
	if rotated.RevokedAt == nil {
		t.Error("rotated token not revoked")
	}
	if rotated.ReplacedByID == nil || *rotated.ReplacedByID != next.ID {
		t.Errorf("replaced_by_id = %v, want %d", rotated.ReplacedByID, next.ID)
	}
	if rotated.LastUsedAt == nil {
		t.Error("last_used_at not stamped on rotation")
	}
}

func TestGetRefreshTokenByHash_Unknown(t *testing.T) {
	repo := getTestDB(t)
	defer repo.Close()

	token, err := repo.GetRefreshTokenByHash(context.Background(), "no-such-hash")
	if err != nil {
		t.Fatalf("GetRefreshTokenByHash() error = %v", err)
	}
	if token != nil {
		t.Errorf("token = %+v, want nil for an unknown hash", token)
	}
}
