package models

import "testing"

func TestProviderProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		profile ProviderProfile
		wantErr bool
	}{
		{
			name:    "valid",
			profile: ProviderProfile{ProfileName: "default", Provider: ProviderOpenAI, Model: "gpt-4o-mini"},
			wantErr: false,
		},
		{
			name:    "missing name",
			profile: ProviderProfile{Provider: ProviderOpenAI, Model: "gpt-4o-mini"},
			wantErr: true,
		},
		{
			name:    "missing provider",
			profile: ProviderProfile{ProfileName: "default", Model: "gpt-4o-mini"},
			wantErr: true,
		},
		{
			name:    "missing model",
			profile: ProviderProfile{ProfileName: "default", Provider: ProviderOpenAI},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProviderProfile_ApplyParameterDefaults(t *testing.T) {
	p := ProviderProfile{}
	p.ApplyParameterDefaults()

	if p.Temperature != 0.7 {
		t.Errorf("Temperature = %v, want 0.7", p.Temperature)
	}
	if p.MaxTokens != 800 {
		t.Errorf("MaxTokens = %v, want 800", p.MaxTokens)
	}
	if p.TopP != 1.0 {
		t.Errorf("TopP = %v, want 1.0", p.TopP)
	}

	set := ProviderProfile{Temperature: 0.2, MaxTokens: 4096, TopP: 0.9}
	set.ApplyParameterDefaults()
	if set.Temperature != 0.2 || set.MaxTokens != 4096 || set.TopP != 0.9 {
		t.Errorf("explicit parameters should be preserved, got %+v", set)
	}
}

func TestProviderProfile_RequiresAPIKey(t *testing.T) {
	if (&ProviderProfile{Provider: ProviderXinference}).RequiresAPIKey() {
		t.Error("xinference should not require an API key")
	}
	if !(&ProviderProfile{Provider: ProviderOpenAI}).RequiresAPIKey() {
		t.Error("openai should require an API key")
	}
	if !(&ProviderProfile{Provider: ProviderDeepSeek}).RequiresAPIKey() {
		t.Error("deepseek should require an API key")
	}
}
