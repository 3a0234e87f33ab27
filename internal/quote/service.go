// Package quote orchestrates the cache, fallback table, and generation
// provider into the quote request pipeline.
package quote

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"moodquote/internal/cache"
	"moodquote/internal/domain"
	"moodquote/internal/fallback"
	"moodquote/internal/mood"
	"moodquote/internal/provider"
	"moodquote/internal/resilience"
	"moodquote/internal/telemetry"
)

// degradedQuote is served when a configured provider fails. It is never
// cached, so the next request for the same key retries the provider.
const degradedQuote = "Mỗi ngày là một khởi đầu mới, hãy nắm lấy cơ hội."

// Service resolves mood strings to quotes. State is owned explicitly:
// the cache and table are injected at construction, never ambient.
type Service struct {
	cache   *cache.QuoteCache
	table   *fallback.Table
	gen     provider.Generator // nil when no provider is configured
	timeout time.Duration
	retry   resilience.RetryConfig
	metrics *telemetry.Metrics
}

// NewService creates a quote service. gen may be nil, which pins the
// service to the fallback table for its lifetime.
func NewService(qc *cache.QuoteCache, table *fallback.Table, gen provider.Generator, timeout time.Duration, retry resilience.RetryConfig, metrics *telemetry.Metrics) *Service {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Service{
		cache:   qc,
		table:   table,
		gen:     gen,
		timeout: timeout,
		retry:   retry,
		metrics: metrics,
	}
}

// Configured reports whether a generation provider is available. Stable
// for the process lifetime.
func (s *Service) Configured() bool {
	return s.gen != nil
}

// ProviderName returns the active provider, or ProviderNone.
func (s *Service) ProviderName() domain.Provider {
	if s.gen == nil {
		return domain.ProviderNone
	}
	return s.gen.Provider()
}

// Fetch resolves a raw mood string to a QuoteRecord.
//
// On provider failure it returns BOTH a degraded record and a
// *domain.ProviderError: the record keeps the response content-bearing
// while the error lets the transport surface a server-error status.
// Every other error return carries a nil record.
func (s *Service) Fetch(ctx context.Context, rawMood string) (*domain.QuoteRecord, error) {
	key, err := mood.Normalize(rawMood)
	if err != nil {
		return nil, err
	}

	// Cache is authoritative while unexpired, even when a provider is
	// configured. Cached fallback text stays cached=true, fallback=true.
	if e, ok := s.cache.Get(key); ok {
		return &domain.QuoteRecord{
			Text:        e.Text,
			Mood:        rawMood,
			GeneratedAt: e.GeneratedAt,
			Cached:      true,
			Fallback:    e.Fallback,
		}, nil
	}

	if s.gen == nil {
		text := s.table.Lookup(key)
		now := time.Now()
		s.cache.Put(key, text, now, true)
		if s.metrics != nil {
			s.metrics.FallbackServed.WithLabelValues("unconfigured").Inc()
		}
		return &domain.QuoteRecord{
			Text:        text,
			Mood:        rawMood,
			GeneratedAt: now,
			Fallback:    true,
		}, nil
	}

	text, err := s.generate(ctx, rawMood)
	if err != nil {
		slog.Error("Quote generation failed",
			"provider", s.gen.Provider(),
			"mood_key", key,
			"error", err,
		)
		if s.metrics != nil {
			s.metrics.FallbackServed.WithLabelValues("provider_error").Inc()
		}
		return &domain.QuoteRecord{
			Text:        degradedQuote,
			Mood:        rawMood,
			GeneratedAt: time.Now(),
			Fallback:    true,
		}, &domain.ProviderError{Provider: s.gen.Provider(), Err: err}
	}

	now := time.Now()
	s.cache.Put(key, text, now, false)
	return &domain.QuoteRecord{
		Text:        text,
		Mood:        rawMood,
		GeneratedAt: now,
	}, nil
}

// generate calls the provider with a bounded timeout and retry budget
// and cleans the returned text.
func (s *Service) generate(ctx context.Context, rawMood string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	var text string
	err := resilience.Retry(ctx, s.retry, func() error {
		out, genErr := s.gen.Generate(ctx, rawMood)
		if genErr != nil {
			return genErr
		}
		text = out
		return nil
	})
	if s.metrics != nil {
		s.metrics.ObserveProviderCall(string(s.gen.Provider()), start, err)
	}
	if err != nil {
		return "", err
	}

	text = stripQuotes(text)
	if text == "" {
		return "", errEmptyCompletion
	}
	return text, nil
}

var errEmptyCompletion = errors.New("provider returned an empty completion")

// stripQuotes removes wrapping quotation marks and surrounding
// whitespace from generated text.
func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'“”‘’")
	return strings.TrimSpace(s)
}
