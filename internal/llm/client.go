package llm

import (
	"context"
	"time"

	"github.com/kaicatering/kai/internal/model"
)

// Client defines the interface for constrained-generation providers.
type Client interface {
	// Recommend blocks until the backend returns a complete, schema-conformant
	// recommendation set for the given prompt.
	Recommend(ctx context.Context, prompt string) (model.RecommendationSet, error)

	// RecommendStream returns a single-pass sequence of progressively more
	// complete recommendation sets. The last chunk has Final set and carries
	// either the complete set or the terminal error; the channel is closed
	// after it. Cancelling ctx abandons the backend call.
	RecommendStream(ctx context.Context, prompt string) (<-chan StreamChunk, error)
}

// StreamChunk is one element of a streaming generation response.
type StreamChunk struct {
	Err   error
	Set   model.RecommendationSet
	Final bool
}

// Config holds configuration for generation backend clients.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string // override for tests; defaults to the provider endpoint
	MaxTokens   int
	RateLimit   int // requests per minute
	MaxRetries  int
	RetryDelay  time.Duration
	Temperature float64
}
