package app

import (
	"context"
	"encoding/json"
	"fmt"

	"easy-website/internal/prompt"
	"easy-website/models"
	"easy-website/observability"
)

// GenerateRequest describes one AI content generation call
type GenerateRequest struct {
	ComponentType string              `json:"component_type"`
	TemplateType  models.TemplateType `json:"template_type,omitempty"`
	UserPrompt    string              `json:"user_prompt"`
	CurrentProps  json.RawMessage     `json:"current_props,omitempty"`
	ProfileID     *int64              `json:"profile_id,omitempty"`
}

// GenerateResult carries the outcome of a generation. Exactly one of Props or
// Text is set: Props when the model answered with valid JSON, Text otherwise.
type GenerateResult struct {
	Props json.RawMessage `json:"props,omitempty"`
	Raw   string          `json:"raw,omitempty"`
	Text  string          `json:"text,omitempty"`
}

// resolveProfile picks the provider profile for a request: the explicit one
// when an id was given, otherwise the configured default. A profile that is
// disabled, missing a model, or missing a required API key counts as not
// configured.
func (a *App) resolveProfile(ctx context.Context, profileID *int64) (*models.ProviderProfile, error) {
	var (
		profile *models.ProviderProfile
		err     error
	)
	if profileID != nil {
		profile, err = a.store.GetProfile(ctx, *profileID)
	} else {
		profile, err = a.store.GetDefaultProfile(ctx)
	}
	if err != nil {
		return nil, err
	}
	if profile == nil || !profile.Enabled {
		return nil, ErrProviderNotConfigured
	}
	if profile.Model == "" {
		return nil, fmt.Errorf("%w: no model selected", ErrProviderNotConfigured)
	}
	if profile.RequiresAPIKey() && profile.APIKey == "" {
		return nil, fmt.Errorf("%w: missing API key", ErrProviderNotConfigured)
	}

	// Keys are stored encrypted; the dispatch layer needs the real one.
	apiKey, err := a.keys.DecryptString(profile.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to unlock API key for profile %d: %w", profile.ID, err)
	}
	resolved := *profile
	resolved.APIKey = apiKey
	return &resolved, nil
}

// Generate resolves the provider profile and prompt template for the request,
// interpolates the template, calls the provider, and shapes the reply:
// structured props when the model returned parseable JSON, raw text otherwise.
func (a *App) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if req.ComponentType == "" {
		return nil, fmt.Errorf("%w: component_type is required", ErrInvalidRequest)
	}
	if req.UserPrompt == "" {
		return nil, fmt.Errorf("%w: user_prompt is required", ErrInvalidRequest)
	}
	if req.TemplateType == "" {
		return nil, fmt.Errorf("%w: template_type is required", ErrInvalidRequest)
	}

	metrics := observability.GetMetrics()
	metrics.RecordGenerationRequest(req.ComponentType, string(req.TemplateType))
	timer := metrics.NewTimer()

	profile, err := a.resolveProfile(ctx, req.ProfileID)
	if err != nil {
		timer.ObserveGeneration(req.ComponentType, "error")
		return nil, err
	}

	tmpl, err := a.store.FindTemplate(ctx, req.ComponentType, req.TemplateType)
	if err != nil {
		timer.ObserveGeneration(req.ComponentType, "error")
		return nil, err
	}
	if tmpl == nil {
		timer.ObserveGeneration(req.ComponentType, "error")
		return nil, fmt.Errorf("%w for component %q", ErrTemplateNotFound, req.ComponentType)
	}

	currentProps := "{}"
	if len(req.CurrentProps) > 0 {
		currentProps = string(req.CurrentProps)
	}
	rendered := prompt.Interpolate(tmpl.PromptTemplate, map[string]string{
		"component_type": req.ComponentType,
		"user_prompt":    req.UserPrompt,
		"current_props":  currentProps,
	})

	content, err := a.llm.ChatCompletion(ctx, profile, rendered)
	if err != nil {
		timer.ObserveGeneration(req.ComponentType, "error")
		metrics.RecordGenerationError(req.ComponentType, "provider")
		observability.WithProvider(string(profile.Provider)).Error("AI generation failed",
			"component_type", req.ComponentType, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if props, ok := prompt.ParseJSON(content); ok {
		timer.ObserveGeneration(req.ComponentType, "success")
		return &GenerateResult{Props: props, Raw: content}, nil
	}

	// Model ignored the JSON instructions; hand the text back as-is.
	timer.ObserveGeneration(req.ComponentType, "success")
	metrics.RecordGenerationFallback(req.ComponentType)
	return &GenerateResult{Text: content}, nil
}

// TestProvider sends a minimal prompt through the given profile (or the
// default) and returns the model's reply verbatim.
func (a *App) TestProvider(ctx context.Context, profileID *int64) (string, error) {
	profile, err := a.resolveProfile(ctx, profileID)
	if err != nil {
		return "", err
	}

	content, err := a.llm.ChatCompletion(ctx, profile, "Say OK.")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return content, nil
}
