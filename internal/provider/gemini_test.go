package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"moodquote/internal/config"
	"moodquote/internal/domain"
)

func geminiResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"parts": []map[string]string{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
}

func TestGeminiClientRequiresKey(t *testing.T) {
	if _, err := NewGeminiClient(config.GeminiConfig{}); err == nil {
		t.Error("expected an error for a missing API key")
	}
}

func TestGeminiClientProvider(t *testing.T) {
	c, err := NewGeminiClient(config.GeminiConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatal(err)
	}
	if c.Provider() != domain.ProviderGemini {
		t.Errorf("Provider() = %q", c.Provider())
	}
}

func TestGeminiGenerate(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(geminiResponse("Cứ đi rồi sẽ đến."))
	}))
	defer server.Close()

	c, err := NewGeminiClient(config.GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-pro",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatal(err)
	}

	text, err := c.Generate(context.Background(), "động lực")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "Cứ đi rồi sẽ đến." {
		t.Errorf("text = %q", text)
	}

	if gotPath != "/models/gemini-pro:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q", gotKey)
	}

	contents, ok := gotBody["contents"].([]any)
	if !ok || len(contents) != 1 {
		t.Fatalf("contents = %v", gotBody["contents"])
	}
	first := contents[0].(map[string]any)
	parts := first["parts"].([]any)
	prompt := parts[0].(map[string]any)["text"].(string)
	if !strings.Contains(prompt, "động lực") {
		t.Errorf("prompt %q should embed the mood", prompt)
	}
	if !strings.Contains(prompt, "tiếng Việt") {
		t.Errorf("prompt %q should request Vietnamese", prompt)
	}
}

func TestGeminiGenerateMultipleParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{
					"content": map[string]any{
						"parts": []map[string]string{{"text": "first "}, {"text": "second"}},
					},
				},
			},
		})
	}))
	defer server.Close()

	c, _ := NewGeminiClient(config.GeminiConfig{APIKey: "k", BaseURL: server.URL})
	text, err := c.Generate(context.Background(), "vui vẻ")
	if err != nil {
		t.Fatal(err)
	}
	if text != "first second" {
		t.Errorf("text = %q, want parts concatenated", text)
	}
}

func TestGeminiGenerateAPIStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c, _ := NewGeminiClient(config.GeminiConfig{APIKey: "k", BaseURL: server.URL})
	_, err := c.Generate(context.Background(), "vui vẻ")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("error %q should carry the status", err)
	}
}

func TestGeminiGenerateEmbeddedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "message": "invalid model"},
		})
	}))
	defer server.Close()

	c, _ := NewGeminiClient(config.GeminiConfig{APIKey: "k", BaseURL: server.URL})
	_, err := c.Generate(context.Background(), "vui vẻ")
	if err == nil || !strings.Contains(err.Error(), "invalid model") {
		t.Errorf("error = %v, want the embedded API error", err)
	}
}

func TestGeminiGenerateEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	defer server.Close()

	c, _ := NewGeminiClient(config.GeminiConfig{APIKey: "k", BaseURL: server.URL})
	if _, err := c.Generate(context.Background(), "vui vẻ"); err == nil {
		t.Error("expected an error for an empty completion")
	}
}

func TestGeminiGenerateContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	c, _ := NewGeminiClient(config.GeminiConfig{APIKey: "k", BaseURL: server.URL})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Generate(ctx, "vui vẻ"); err == nil {
		t.Error("expected an error for a canceled context")
	}
}
