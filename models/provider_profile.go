package models

import (
	"fmt"
	"time"
)

// Provider identifies a supported chat-completion provider
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderDeepSeek   Provider = "deepseek"
	ProviderXinference Provider = "xinference"
)

// ProviderProfile represents an admin-configured AI provider configuration
type ProviderProfile struct {
	ID          int64     `json:"id"`
	ProfileName string    `json:"profile_name"`
	Provider    Provider  `json:"provider"`
	APIBase     string    `json:"api_base,omitempty"`
	APIKey      string    `json:"-"` // never expose the key in JSON
	APIKeyHint  string    `json:"api_key_hint,omitempty"` // masked display value, not persisted
	Model       string    `json:"model"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	TopP        float64   `json:"top_p"`
	Enabled     bool      `json:"enabled"`
	IsDefault   bool      `json:"is_default"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Generation parameter fallbacks applied when a profile leaves them unset.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 800
	DefaultTopP        = 1.0
)

// Validate checks that the profile has the fields required to create it
func (p *ProviderProfile) Validate() error {
	if p.ProfileName == "" {
		return fmt.Errorf("profile_name is required")
	}
	if p.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if p.Model == "" {
		return fmt.Errorf("model is required")
	}
	return nil
}

// ApplyParameterDefaults fills unset generation parameters with their fallbacks
func (p *ProviderProfile) ApplyParameterDefaults() {
	if p.Temperature == 0 {
		p.Temperature = DefaultTemperature
	}
	if p.MaxTokens == 0 {
		p.MaxTokens = DefaultMaxTokens
	}
	if p.TopP == 0 {
		p.TopP = DefaultTopP
	}
}

// RequiresAPIKey reports whether the provider needs a configured API key.
// Local xinference deployments run unauthenticated.
func (p *ProviderProfile) RequiresAPIKey() bool {
	return p.Provider != ProviderXinference
}
