package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"easy-website/internal/secrets"
	"easy-website/models"
)

// ProviderSettings bundles everything the settings screen renders
type ProviderSettings struct {
	Profiles  []models.ProviderProfile `json:"profiles"`
	Templates []models.PromptTemplate  `json:"templates"`
}

// ProviderSettings returns all provider profiles and prompt templates.
// Stored API keys are reduced to masked display hints.
func (a *App) ProviderSettings(ctx context.Context) (*ProviderSettings, error) {
	profiles, err := a.store.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}
	for i := range profiles {
		profiles[i].APIKeyHint = a.keyHint(profiles[i].APIKey)
		profiles[i].APIKey = ""
	}
	templates, err := a.store.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	return &ProviderSettings{Profiles: profiles, Templates: templates}, nil
}

func (a *App) keyHint(stored string) string {
	key, err := a.keys.DecryptString(stored)
	if err != nil {
		return "****"
	}
	return secrets.Mask(key)
}

// UpsertSettings writes the simplified single-profile settings form: it
// updates the current default profile in place, or creates one marked default
// when none exists. An empty api_key keeps the stored one on update. The
// returned profile carries a masked key hint, never the key itself.
func (a *App) UpsertSettings(ctx context.Context, p *models.ProviderProfile, actorID int64, meta RequestMeta) (*models.ProviderProfile, error) {
	if p.ProfileName == "" {
		p.ProfileName = "Default profile"
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	p.ApplyParameterDefaults()
	p.IsDefault = true

	existing, err := a.store.GetDefaultProfile(ctx)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		p.ID = existing.ID
		if p.APIKey == "" {
			p.APIKey = existing.APIKey
		} else {
			encrypted, err := a.keys.EncryptString(p.APIKey)
			if err != nil {
				return nil, fmt.Errorf("failed to encrypt API key: %w", err)
			}
			p.APIKey = encrypted
		}
		if err := a.store.UpdateProfile(ctx, p); err != nil {
			return nil, err
		}
	} else {
		encrypted, err := a.keys.EncryptString(p.APIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt API key: %w", err)
		}
		p.APIKey = encrypted
		if err := a.store.CreateProfile(ctx, p); err != nil {
			return nil, err
		}
	}

	a.logActivity(models.ActivityLog{
		UserID:       actorID,
		Action:       "update_settings",
		ResourceType: "ai_provider_settings",
		Description:  fmt.Sprintf("Updated AI settings to %s/%s", p.Provider, p.Model),
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})

	p.APIKeyHint = a.keyHint(p.APIKey)
	p.APIKey = ""
	return p, nil
}

// CreateProviderProfile validates and stores a new provider profile
func (a *App) CreateProviderProfile(ctx context.Context, p *models.ProviderProfile, actorID int64, meta RequestMeta) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	encrypted, err := a.keys.EncryptString(p.APIKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt API key: %w", err)
	}
	p.APIKey = encrypted
	if err := a.store.CreateProfile(ctx, p); err != nil {
		return err
	}
	a.logActivity(models.ActivityLog{
		UserID:       actorID,
		Action:       "create_provider_profile",
		ResourceType: "ai_provider_settings",
		Description:  fmt.Sprintf("Created provider profile %q (%s)", p.ProfileName, p.Provider),
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	})
	return nil
}

// UpdateProviderProfile validates and stores changes to a provider profile.
// An empty api_key keeps the stored one; admins edit profiles without
// re-entering keys.
func (a *App) UpdateProviderProfile(ctx context.Context, p *models.ProviderProfile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if p.APIKey == "" {
		existing, err := a.store.GetProfile(ctx, p.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrProfileNotFound
		}
		p.APIKey = existing.APIKey
	} else {
		encrypted, err := a.keys.EncryptString(p.APIKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt API key: %w", err)
		}
		p.APIKey = encrypted
	}

	if err := a.store.UpdateProfile(ctx, p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProfileNotFound
		}
		return err
	}
	return nil
}

// DeleteProviderProfile removes a provider profile
func (a *App) DeleteProviderProfile(ctx context.Context, id int64) error {
	if err := a.store.DeleteProfile(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProfileNotFound
		}
		return err
	}
	return nil
}

// SetDefaultProviderProfile makes the given profile the generation default
func (a *App) SetDefaultProviderProfile(ctx context.Context, id int64) error {
	if err := a.store.SetDefaultProfile(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProfileNotFound
		}
		return err
	}
	return nil
}

// PromptTemplate returns one prompt template by id
func (a *App) PromptTemplate(ctx context.Context, id int64) (*models.PromptTemplate, error) {
	tmpl, err := a.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, ErrTemplateNotFound
	}
	return tmpl, nil
}

// CreatePromptTemplate validates and stores a new prompt template
func (a *App) CreatePromptTemplate(ctx context.Context, t *models.PromptTemplate) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return a.store.CreateTemplate(ctx, t)
}

// UpdatePromptTemplate validates and stores changes to a prompt template
func (a *App) UpdatePromptTemplate(ctx context.Context, t *models.PromptTemplate) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if err := a.store.UpdateTemplate(ctx, t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTemplateNotFound
		}
		return err
	}
	return nil
}

// DeletePromptTemplate removes a prompt template
func (a *App) DeletePromptTemplate(ctx context.Context, id int64) error {
	if err := a.store.DeleteTemplate(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTemplateNotFound
		}
		return err
	}
	return nil
}
