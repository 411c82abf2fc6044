package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// LMStudioClient wraps a local LM Studio server, which speaks the
// OpenAI-compatible chat completions API.
type LMStudioClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewLMStudioClient creates a client for a local model server.
func NewLMStudioClient(baseURL, model string) *LMStudioClient {
	if baseURL == "" {
		baseURL = "http://localhost:1234"
	}
	if model == "" {
		model = "local-model"
	}

	return &LMStudioClient{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 5 * time.Minute, // Generous ceiling; per-call deadlines come from ctx
		},
	}
}

func (c *LMStudioClient) Name() string { return "LM Studio" }
func (c *LMStudioClient) Kind() string { return KindLocal }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Invoke sends the prompt as a single user message and returns the reply
// text.
func (c *LMStudioClient) Invoke(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	return chatCompletion(ctx, c.httpClient, c.baseURL+"/v1/chat/completions", "", c.model, prompt, opts)
}

// Ping checks if the model server is reachable.
func (c *LMStudioClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/v1/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to model server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server returned status %d", resp.StatusCode)
	}

	return nil
}

// chatCompletion performs one OpenAI-style chat completion round trip.
// Shared by the LM Studio and OpenAI adapters, which speak the same wire
// format.
func chatCompletion(ctx context.Context, client *http.Client, url, apiKey, model, prompt string, opts GenerateOptions) (string, error) {
	reqBody := chatCompletionRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      false,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("chat completion API error %d: %s", resp.StatusCode, string(body))
	}

	var completion chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return completion.Choices[0].Message.Content, nil
}
