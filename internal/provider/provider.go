// Package provider implements generative-text provider clients.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"moodquote/internal/config"
	"moodquote/internal/domain"
)

// Generator produces a short quote for a mood. Implementations wrap one
// external generative-text backend and may block until the backend
// responds or the context is done.
type Generator interface {
	Generate(ctx context.Context, mood string) (string, error)
	Provider() domain.Provider
}

// FromConfig selects the provider backend once at startup. A nil
// Generator means no provider is configured and the service runs in
// permanent fallback mode; this is a routing decision, not an error.
func FromConfig(cfg *config.Config) (Generator, error) {
	switch cfg.ResolveBackend() {
	case domain.ProviderGemini:
		return NewGeminiClient(cfg.Provider.Gemini)
	case domain.ProviderBedrock:
		return NewBedrockClient(cfg.Provider.Bedrock)
	default:
		return nil, nil
	}
}

// BuildHTTPClient creates an HTTP client with the specified connection
// settings.
func BuildHTTPClient(settings domain.ConnectionSettings) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        settings.MaxIdleConnections,
		MaxIdleConnsPerHost: settings.MaxIdleConnections,
		MaxConnsPerHost:     settings.MaxConnections,
		IdleConnTimeout:     time.Duration(settings.IdleTimeoutSec) * time.Second,
		DisableKeepAlives:   !settings.EnableKeepAlive,
		ForceAttemptHTTP2:   settings.EnableHTTP2,
	}

	return &http.Client{
		Timeout:   time.Duration(settings.RequestTimeoutSec) * time.Second,
		Transport: transport,
	}
}

// quotePrompt builds the generation prompt for a mood.
func quotePrompt(mood string) string {
	return fmt.Sprintf("Viết một câu nói ngắn gọn, sâu lắng, bằng tiếng Việt phù hợp với cảm xúc: %s. "+
		"Có dấu nhấn cảm xúc nhẹ nhàng, không quá dài (dưới 30 từ). Chỉ trả về câu nói, không thêm gì khác.", mood)
}
