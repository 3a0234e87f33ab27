package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"moodquote/internal/config"
	"moodquote/internal/domain"
)

// GeminiClient is a client for the Google Gemini API.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(cfg config.GeminiConfig, settings ...domain.ConnectionSettings) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	connSettings := domain.DefaultConnectionSettings()
	if len(settings) > 0 {
		connSettings = settings[0]
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-pro"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	return &GeminiClient{
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: BuildHTTPClient(connSettings),
	}, nil
}

// Provider returns the provider type.
func (c *GeminiClient) Provider() domain.Provider {
	return domain.ProviderGemini
}

// Generate asks Gemini for a quote matching the mood.
func (c *GeminiClient) Generate(ctx context.Context, mood string) (string, error) {
	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	geminiReq := map[string]any{
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": quotePrompt(mood)}},
			},
		},
		"generationConfig": map[string]any{
			"maxOutputTokens": 256,
		},
	}
	body, err := json.Marshal(geminiReq)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		slog.Error("[GEMINI] API error", "status", resp.Status, "body", truncateStr(string(bodyBytes), 500))
		return "", fmt.Errorf("API error: %s", resp.Status)
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason"`
		} `json:"candidates"`
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}

	if result.Error.Message != "" {
		return "", fmt.Errorf("API error %d: %s", result.Error.Code, result.Error.Message)
	}

	var text strings.Builder
	for _, candidate := range result.Candidates {
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
		break
	}

	if text.Len() == 0 {
		return "", fmt.Errorf("empty completion")
	}
	return text.String(), nil
}

// truncateStr truncates a string to maxLen chars.
func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
