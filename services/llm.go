package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"easy-website/models"
	"easy-website/observability"
)

// DefaultBaseURLs maps each supported provider to its default API base URL.
// An unknown provider falls back to the OpenAI URL.
var DefaultBaseURLs = map[models.Provider]string{
	models.ProviderOpenAI:     "https://api.openai.com/v1",
	models.ProviderDeepSeek:   "https://api.deepseek.com/v1",
	models.ProviderXinference: "http://localhost:9997/v1",
}

// ResolveBaseURL returns the effective API base for a profile: the configured
// override when present, otherwise the provider's default.
func ResolveBaseURL(provider models.Provider, apiBase string) string {
	if trimmed := strings.TrimSpace(apiBase); trimmed != "" {
		return trimmed
	}
	if base, ok := DefaultBaseURLs[provider]; ok {
		return base
	}
	return DefaultBaseURLs[models.ProviderOpenAI]
}

// ProviderClient dispatches chat-completion requests to an OpenAI-compatible
// provider endpoint
type ProviderClient struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewProviderClient creates a new ProviderClient with the given per-request
// timeout
func NewProviderClient(timeout time.Duration) *ProviderClient {
	return &ProviderClient{
		httpClient: &http.Client{Timeout: timeout},
		timeout:    timeout,
	}
}

// ChatMessage is one message in a chat-completion conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest is the request body for the chat-completions endpoint
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
}

// ChatCompletionResponse represents the response from the chat-completions
// endpoint
type ChatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ChatCompletion sends a single-turn user prompt to the profile's provider and
// returns the first choice's message content. An empty choice list yields an
// empty string, not an error; the caller's fallback handling covers it.
func (c *ProviderClient) ChatCompletion(ctx context.Context, profile *models.ProviderProfile, prompt string) (string, error) {
	provider := string(profile.Provider)

	metrics := observability.GetMetrics()
	metrics.RecordProviderRequest(provider, "chat_completion")
	timer := metrics.NewTimer()

	result, err := WithCircuitBreaker(ctx, provider, func() (string, error) {
		return c.dispatch(ctx, profile, prompt)
	})

	timer.ObserveProvider(provider, "chat_completion")
	if err != nil {
		metrics.RecordProviderError(provider, "chat_completion", categorizeAPIError(err))
	}
	return result, err
}

func (c *ProviderClient) dispatch(ctx context.Context, profile *models.ProviderProfile, prompt string) (string, error) {
	params := *profile
	params.ApplyParameterDefaults()

	body := chatCompletionRequest{
		Model:       params.Model,
		Messages:    []ChatMessage{{Role: "user", Content: prompt}},
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
		TopP:        params.TopP,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := strings.TrimRight(ResolveBaseURL(params.Provider, params.APIBase), "/") + "/chat/completions"

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if params.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+params.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach AI provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorText, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("AI request failed (%d): %s", resp.StatusCode, string(errorText))
	}

	var completion ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode provider response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}

// categorizeAPIError categorizes an error for metrics purposes
func categorizeAPIError(err error) string {
	if err == nil {
		return "none"
	}
	errStr := err.Error()
	switch {
	case containsAny(errStr, "timeout", "deadline"):
		return "timeout"
	case containsAny(errStr, "rate limit", "(429)"):
		return "rate_limit"
	case containsAny(errStr, "unauthorized", "(401)"):
		return "auth_error"
	case containsAny(errStr, "connection", "network", "reach"):
		return "connection_error"
	case containsAny(errStr, "circuit breaker"):
		return "circuit_open"
	default:
		return "unknown"
	}
}

// containsAny checks if the string contains any of the substrings
func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
