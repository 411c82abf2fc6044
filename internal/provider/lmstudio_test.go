package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func completionServer(t *testing.T, handler func(w http.ResponseWriter, req chatCompletionRequest)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		handler(w, req)
	}))
}

func TestLMStudioInvoke(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, req chatCompletionRequest) {
		if req.Model != "local-model" {
			t.Errorf("Expected default model, got %q", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("Expected a single user message, got %v", req.Messages)
		}
		if req.Stream {
			t.Error("Expected stream=false")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": `{"priority": 7}`}},
			},
		})
	})
	defer server.Close()

	client := NewLMStudioClient(server.URL, "")
	got, err := client.Invoke(context.Background(), "enhance this", GenerateOptions{Temperature: 0.7, MaxTokens: 500})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if got != `{"priority": 7}` {
		t.Errorf("Unexpected reply %q", got)
	}
}

func TestLMStudioInvokeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewLMStudioClient(server.URL, "")
	if _, err := client.Invoke(context.Background(), "hi", GenerateOptions{}); err == nil {
		t.Error("Expected error on 500 response")
	}
}

func TestLMStudioInvokeTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts its background read and can
		// observe the client disconnect; otherwise r.Context() is never
		// canceled and Close() deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewLMStudioClient(server.URL, "")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.Invoke(ctx, "hi", GenerateOptions{}); err == nil {
		t.Error("Expected error when the deadline expires")
	}
}

func TestLMStudioInvokeNoChoices(t *testing.T) {
	server := completionServer(t, func(w http.ResponseWriter, req chatCompletionRequest) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})
	defer server.Close()

	client := NewLMStudioClient(server.URL, "")
	if _, err := client.Invoke(context.Background(), "hi", GenerateOptions{}); err == nil {
		t.Error("Expected error when no choices are returned")
	}
}

func TestLMStudioPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewLMStudioClient(server.URL, "")
	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestOpenAIInvokeSendsAuth(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient("sk-test", "", 0)
	client.baseURL = server.URL

	got, err := client.Invoke(context.Background(), "hi", GenerateOptions{Temperature: 0.5, MaxTokens: 800})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if got != "ok" {
		t.Errorf("Unexpected reply %q", got)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("Expected Bearer auth header, got %q", gotAuth)
	}
}

func TestOpenAIRateLimitBoundedByContext(t *testing.T) {
	client := NewOpenAIClient("sk-test", "", 1)
	// Burn the single burst token so the next call has to wait a full minute.
	client.limiter.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := client.Invoke(ctx, "hi", GenerateOptions{}); err == nil {
		t.Error("Expected rate-limit wait to abort with the context")
	}
}
