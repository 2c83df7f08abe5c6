package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kaicatering/kai/internal/common"
	"github.com/kaicatering/kai/internal/model"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

const systemPrompt = "You are a caterer recommendation engine. You MUST respond with ONLY a valid JSON object conforming to the provided schema. Do not include any explanatory text, markdown formatting, or commentary before or after the JSON. Recommend only caterers that appear in the provided catalog, copying their ids verbatim. If no caterers match, return an empty caterers array."

// openAIClient implements the Client interface for the OpenAI API.
type openAIClient struct {
	httpClient  *http.Client
	limiter     *rateLimiter
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		// Moderate creativity, favoring consistency over diversity.
		temperature = 0.7
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	return &openAIClient{
		apiKey:      cfg.APIKey,
		model:       model,
		baseURL:     baseURL,
		temperature: temperature,
		maxTokens:   maxTokens,
		limiter:     newRateLimiter(cfg.RateLimit),
		httpClient: &http.Client{
			// Streaming generations can run for minutes.
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

func (c *openAIClient) requestBody(prompt string, stream bool) map[string]any {
	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
		"response_format": map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   "recommendation_set",
				"strict": true,
				"schema": recommendationSetSchema(),
			},
		},
	}
	if stream {
		body["stream"] = true
	}
	return body
}

func (c *openAIClient) newRequest(ctx context.Context, prompt string, stream bool) (*http.Request, error) {
	jsonBody, err := json.Marshal(c.requestBody(prompt, stream))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	return req, nil
}

// statusError converts a non-200 response into an error, marking conditions
// worth retrying.
func statusError(status int, body []byte) error {
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("OpenAI API rate limited: %w", common.ErrRateLimit)
	}
	err := fmt.Errorf("OpenAI API error (status %d): %s", status, string(body))
	if status >= 500 {
		return &common.RetryableError{Err: err, Retryable: true}
	}
	return err
}

// Recommend sends a single-shot constrained generation request.
func (c *openAIClient) Recommend(ctx context.Context, prompt string) (model.RecommendationSet, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return model.RecommendationSet{}, err
	}

	req, err := c.newRequest(ctx, prompt, false)
	if err != nil {
		return model.RecommendationSet{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.RecommendationSet{}, &common.RetryableError{
			Err:       fmt.Errorf("request failed: %w", err),
			Retryable: true,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.RecommendationSet{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return model.RecommendationSet{}, statusError(resp.StatusCode, body)
	}

	var response openAIResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return model.RecommendationSet{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 {
		return model.RecommendationSet{}, common.NewGenerationError("no completion choices returned", "", nil)
	}

	return parseRecommendationSet(response.Choices[0].Message.Content)
}

// parseRecommendationSet strictly decodes backend output into the target
// schema. Nonconformant content surfaces as a GenerationError carrying the
// raw output for diagnosis.
func parseRecommendationSet(content string) (model.RecommendationSet, error) {
	cleaned := cleanMarkdownWrapper(content)

	var set model.RecommendationSet
	decoder := json.NewDecoder(strings.NewReader(cleaned))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&set); err != nil {
		return model.RecommendationSet{}, common.NewGenerationError(
			"backend output is not schema-conformant", content, err)
	}
	if set.Caterers == nil {
		set.Caterers = []model.Recommendation{}
	}
	return set, nil
}

// RecommendStream sends a streaming constrained generation request and
// assembles progressively complete recommendation sets from content deltas.
func (c *openAIClient) RecommendStream(ctx context.Context, prompt string) (<-chan StreamChunk, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, prompt, true)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &common.RetryableError{
			Err:       fmt.Errorf("request failed: %w", err),
			Retryable: true,
		}
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		return nil, statusError(resp.StatusCode, body)
	}

	ch := make(chan StreamChunk)
	go c.consumeStream(ctx, resp.Body, ch)
	return ch, nil
}

// streamEvent is one server-sent chunk of a streaming completion.
type streamEvent struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *openAIClient) consumeStream(ctx context.Context, body io.ReadCloser, ch chan<- StreamChunk) {
	defer close(ch)
	defer func() { _ = body.Close() }()

	var buf strings.Builder
	var lastEmitted []byte
	lastCount := -1

	emit := func(chunk StreamChunk) bool {
		select {
		case ch <- chunk:
			return true
		case <-ctx.Done():
			return false
		}
	}

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var event streamEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			continue
		}
		if len(event.Choices) == 0 || event.Choices[0].Delta.Content == "" {
			continue
		}
		buf.WriteString(event.Choices[0].Delta.Content)

		set, ok := parsePartialSet(cleanMarkdownWrapper(buf.String()))
		if !ok {
			continue
		}
		// Deliver snapshots in non-decreasing completeness order and skip
		// snapshots identical to the last one delivered.
		if len(set.Caterers) < lastCount {
			continue
		}
		encoded, err := json.Marshal(set)
		if err != nil || bytes.Equal(encoded, lastEmitted) {
			continue
		}
		if !emit(StreamChunk{Set: set}) {
			return
		}
		lastEmitted = encoded
		lastCount = len(set.Caterers)
	}

	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return
		}
		emit(StreamChunk{Final: true, Err: fmt.Errorf("stream read failed: %w", err)})
		return
	}

	final, err := parseRecommendationSet(buf.String())
	if err != nil {
		emit(StreamChunk{Final: true, Err: err})
		return
	}
	emit(StreamChunk{Final: true, Set: final})
}

// openAIResponse represents the non-streaming OpenAI API response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Created int64 `json:"created"`
}
