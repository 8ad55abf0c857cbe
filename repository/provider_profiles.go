package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"easy-website/models"
	"easy-website/observability"
)

const providerProfileColumns = `id, profile_name, provider, COALESCE(api_base, ''), COALESCE(api_key, ''),
		model, temperature, max_tokens, top_p, enabled, is_default, created_at, updated_at`

func scanProviderProfile(row pgx.Row) (*models.ProviderProfile, error) {
	var p models.ProviderProfile
	err := row.Scan(&p.ID, &p.ProfileName, &p.Provider, &p.APIBase, &p.APIKey,
		&p.Model, &p.Temperature, &p.MaxTokens, &p.TopP, &p.Enabled, &p.IsDefault,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetDefaultProfile returns the provider profile used for generation when the
// caller does not pick one explicitly: the default-flagged profile with the
// lowest id, falling back to the lowest-id profile overall. Returns nil when
// no profiles exist at all.
func (r *Repository) GetDefaultProfile(ctx context.Context) (*models.ProviderProfile, error) {
	timer := observability.GetMetrics().NewTimer()
	defer timer.ObserveDB("select", "ai_provider_settings")

	query := fmt.Sprintf(`SELECT %s FROM ai_provider_settings WHERE is_default ORDER BY id ASC LIMIT 1`, providerProfileColumns)

	profile, err := scanProviderProfile(r.db.QueryRow(ctx, query))
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get default provider profile: %w", err)
	}

	// No explicit default: fall back to the oldest profile.
	fallback := fmt.Sprintf(`SELECT %s FROM ai_provider_settings ORDER BY id ASC LIMIT 1`, providerProfileColumns)
	profile, err = scanProviderProfile(r.db.QueryRow(ctx, fallback))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get fallback provider profile: %w", err)
	}
	return profile, nil
}

// GetProfile returns a provider profile by id, or nil if it does not exist.
func (r *Repository) GetProfile(ctx context.Context, id int64) (*models.ProviderProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM ai_provider_settings WHERE id = $1`, providerProfileColumns)

	profile, err := scanProviderProfile(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get provider profile %d: %w", id, err)
	}
	return profile, nil
}

// ListProfiles returns all provider profiles, defaults first.
func (r *Repository) ListProfiles(ctx context.Context) ([]models.ProviderProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM ai_provider_settings ORDER BY is_default DESC, provider ASC, id ASC`, providerProfileColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list provider profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.ProviderProfile
	for rows.Next() {
		p, err := scanProviderProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan provider profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// CreateProfile inserts a new provider profile and fills in its generated fields.
func (r *Repository) CreateProfile(ctx context.Context, p *models.ProviderProfile) error {
	query := `
		INSERT INTO ai_provider_settings (profile_name, provider, api_base, api_key, model,
			temperature, max_tokens, top_p, enabled, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query, p.ProfileName, p.Provider, p.APIBase, p.APIKey, p.Model,
		p.Temperature, p.MaxTokens, p.TopP, p.Enabled, p.IsDefault).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create provider profile: %w", err)
	}
	return nil
}

// UpdateProfile updates an existing provider profile. Returns pgx.ErrNoRows
// wrapped when the profile does not exist.
func (r *Repository) UpdateProfile(ctx context.Context, p *models.ProviderProfile) error {
	query := `
		UPDATE ai_provider_settings
		SET profile_name = $1, provider = $2, api_base = $3, api_key = $4, model = $5,
			temperature = $6, max_tokens = $7, top_p = $8, enabled = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query, p.ProfileName, p.Provider, p.APIBase, p.APIKey, p.Model,
		p.Temperature, p.MaxTokens, p.TopP, p.Enabled, p.ID).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update provider profile %d: %w", p.ID, err)
	}
	return nil
}

// DeleteProfile removes a provider profile by id.
func (r *Repository) DeleteProfile(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ai_provider_settings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete provider profile %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete provider profile %d: %w", id, pgx.ErrNoRows)
	}
	return nil
}

// SetDefaultProfile marks the given profile as the default. The clear and set
// run in one transaction so concurrent calls cannot leave two defaults behind.
func (r *Repository) SetDefaultProfile(ctx context.Context, id int64) error {
	tx, txRepo, err := r.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := txRepo.db.Exec(ctx, `UPDATE ai_provider_settings SET is_default = FALSE WHERE is_default`); err != nil {
		return fmt.Errorf("failed to clear default provider profile: %w", err)
	}

	tag, err := txRepo.db.Exec(ctx, `UPDATE ai_provider_settings SET is_default = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to set default provider profile %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to set default provider profile %d: %w", id, pgx.ErrNoRows)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit default profile change: %w", err)
	}
	return nil
}
