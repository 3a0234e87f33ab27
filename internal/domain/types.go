// Package domain defines the core types shared across moodquote.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Provider identifies a generative-text backend.
type Provider string

const (
	ProviderGemini  Provider = "gemini"
	ProviderBedrock Provider = "bedrock"
	ProviderNone    Provider = "none"
)

// ParseProvider parses a provider string.
func ParseProvider(s string) (Provider, bool) {
	switch s {
	case "gemini", "google":
		return ProviderGemini, true
	case "bedrock", "aws", "aws-bedrock", "aws_bedrock":
		return ProviderBedrock, true
	case "none", "fallback", "":
		return ProviderNone, true
	}
	return "", false
}

// QuoteRecord is the response shape for a quote request. The JSON field
// names are part of the wire contract consumed by the browser UI.
type QuoteRecord struct {
	// Text is the quote content, never empty, stripped of wrapping quotation marks.
	Text string `json:"quote"`
	// Mood echoes the caller's raw mood string, not the normalized key.
	Mood string `json:"mood"`
	// GeneratedAt is set once when the text is produced and reused verbatim
	// for every cache hit on the same entry.
	GeneratedAt time.Time `json:"generated_at"`
	// Cached is true when the response was served from an existing cache entry.
	Cached bool `json:"cached,omitempty"`
	// Fallback is true when the text came from the fallback table or the
	// degraded error-path quote rather than a generation provider.
	Fallback bool `json:"fallback,omitempty"`
}

// ErrEmptyMood is returned when the mood is empty after normalization.
// Surfaced to callers as a client error, never retried.
var ErrEmptyMood = errors.New("mood is empty after normalization")

// ProviderError wraps a generation provider failure. Requests that hit it
// still carry a usable degraded quote; the transport layer maps it to a
// server-error status with a content-bearing body.
type ProviderError struct {
	Provider Provider
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ConnectionSettings controls the HTTP transport used for provider calls.
type ConnectionSettings struct {
	RequestTimeoutSec  int
	MaxConnections     int
	MaxIdleConnections int
	IdleTimeoutSec     int
	EnableKeepAlive    bool
	EnableHTTP2        bool
}

// DefaultConnectionSettings returns sensible transport defaults.
func DefaultConnectionSettings() ConnectionSettings {
	return ConnectionSettings{
		RequestTimeoutSec:  30,
		MaxConnections:     10,
		MaxIdleConnections: 5,
		IdleTimeoutSec:     90,
		EnableKeepAlive:    true,
		EnableHTTP2:        true,
	}
}
