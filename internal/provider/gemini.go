package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// GeminiClient wraps the Gemini API.
type GeminiClient struct {
	client    *genai.Client
	modelName string
	limiter   *rate.Limiter
}

// NewGeminiClient creates a Gemini client. rpm bounds the request rate in
// requests per minute; zero disables pacing.
func NewGeminiClient(ctx context.Context, apiKey, model string, rpm int) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model == "" {
		model = "gemini-2.5-flash"
	}

	var limiter *rate.Limiter
	if rpm > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	}

	return &GeminiClient{
		client:    client,
		modelName: model,
		limiter:   limiter,
	}, nil
}

func (c *GeminiClient) Name() string { return "Gemini" }
func (c *GeminiClient) Kind() string { return KindCloud }

// Invoke generates a reply for the prompt with per-request parameters.
func (c *GeminiClient) Invoke(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait aborted: %w", err)
		}
	}

	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(opts.Temperature)
	model.SetTopK(40)
	model.SetTopP(0.95)
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := extractText(resp)
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}

	return text, nil
}

// Close closes the underlying API client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractText flattens the response parts into plain text.
func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder

	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			text.WriteString(fmt.Sprintf("%v", part))
		}
	}

	return text.String()
}
