// Package provider contains the thin adapters around the analysis backends.
// Every adapter exposes the same contract: send a prompt, honor the context
// deadline, return the raw text reply or an error. Interpretation of the
// reply is the engine's job.
package provider

import "context"

// Provider kinds as reported by the capabilities endpoint.
const (
	KindLocal = "local"
	KindCloud = "cloud"
)

// GenerateOptions carries the per-request generation parameters. Each request
// kind uses its own temperature and token budget.
type GenerateOptions struct {
	Temperature float32
	MaxTokens   int
}

// Provider is the uniform backend contract consumed by the cascade.
type Provider interface {
	Name() string
	Kind() string
	Invoke(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}
