package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const openAIBaseURL = "https://api.openai.com"

// OpenAIClient wraps the OpenAI chat completions API.
type OpenAIClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewOpenAIClient creates an OpenAI client. rpm bounds the request rate in
// requests per minute; zero disables pacing.
func NewOpenAIClient(apiKey, model string, rpm int) *OpenAIClient {
	if model == "" {
		model = "gpt-3.5-turbo"
	}

	var limiter *rate.Limiter
	if rpm > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	}

	return &OpenAIClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: openAIBaseURL,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
		limiter: limiter,
	}
}

func (c *OpenAIClient) Name() string { return "OpenAI GPT" }
func (c *OpenAIClient) Kind() string { return KindCloud }

// Invoke sends the prompt as a single user message. Rate-limit waits are
// bounded by ctx, so an exhausted budget surfaces as a normal failure.
func (c *OpenAIClient) Invoke(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait aborted: %w", err)
		}
	}

	return chatCompletion(ctx, c.httpClient, c.baseURL+"/v1/chat/completions", c.apiKey, c.model, prompt, opts)
}
