// Package engine implements the provider cascade: select the
// highest-precedence configured provider, invoke it under a per-kind timeout
// budget, interpret its reply, and fall back to the rule-based analyzer on
// any failure. The three public operations are total: callers never see an
// error, only a well-formed result.
package engine

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/smarttodo/context-engine/internal/analysis"
	"github.com/smarttodo/context-engine/internal/config"
	"github.com/smarttodo/context-engine/internal/provider"
	"github.com/smarttodo/context-engine/internal/rules"
)

// Timeouts holds the per-request-kind invocation budgets.
type Timeouts struct {
	Analysis       time.Duration
	Enhancement    time.Duration
	Prioritization time.Duration
}

// DefaultTimeouts mirror the per-kind budgets the operations were designed
// around: analysis gets the longest, enhancement the shortest.
var DefaultTimeouts = Timeouts{
	Analysis:       30 * time.Second,
	Enhancement:    20 * time.Second,
	Prioritization: 25 * time.Second,
}

// Generation parameters per request kind.
var (
	analysisGenOpts       = provider.GenerateOptions{Temperature: 0.7, MaxTokens: 1000}
	enhancementGenOpts    = provider.GenerateOptions{Temperature: 0.7, MaxTokens: 500}
	prioritizationGenOpts = provider.GenerateOptions{Temperature: 0.5, MaxTokens: 800}
)

// Engine orchestrates providers and the rule-based fallback. It holds no
// per-call state and is safe for concurrent use.
type Engine struct {
	providers []provider.Provider // precedence order, configured providers only
	rules     *rules.Analyzer
	prompts   *PromptBuilder
	timeouts  Timeouts
}

// New creates an engine over an ordered provider list. An empty list yields a
// rules-only engine.
func New(providers []provider.Provider, timeouts Timeouts) *Engine {
	if timeouts.Analysis <= 0 {
		timeouts.Analysis = DefaultTimeouts.Analysis
	}
	if timeouts.Enhancement <= 0 {
		timeouts.Enhancement = DefaultTimeouts.Enhancement
	}
	if timeouts.Prioritization <= 0 {
		timeouts.Prioritization = DefaultTimeouts.Prioritization
	}

	return &Engine{
		providers: providers,
		rules:     rules.New(),
		prompts:   NewPromptBuilder(),
		timeouts:  timeouts,
	}
}

// NewFromConfig builds the provider list in fixed precedence order (local
// model server, then OpenAI, then Gemini) from whatever is configured. A
// provider that fails to construct is logged and treated as not configured.
func NewFromConfig(ctx context.Context, cfg *config.Config) *Engine {
	var providers []provider.Provider

	if cfg.Providers.LMStudio.BaseURL != "" {
		providers = append(providers, provider.NewLMStudioClient(
			cfg.Providers.LMStudio.BaseURL, cfg.Providers.LMStudio.Model))
	}
	if cfg.Providers.OpenAI.APIKey != "" {
		providers = append(providers, provider.NewOpenAIClient(
			cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.Model, cfg.Providers.OpenAI.RateLimit))
	}
	if cfg.Providers.Gemini.APIKey != "" {
		gemini, err := provider.NewGeminiClient(ctx,
			cfg.Providers.Gemini.APIKey, cfg.Providers.Gemini.Model, cfg.Providers.Gemini.RateLimit)
		if err != nil {
			log.Printf("Warning: Gemini client unavailable: %v (will use fallbacks)", err)
		} else {
			providers = append(providers, gemini)
		}
	}

	return New(providers, Timeouts{
		Analysis:       time.Duration(cfg.Timeouts.AnalysisSeconds) * time.Second,
		Enhancement:    time.Duration(cfg.Timeouts.EnhancementSeconds) * time.Second,
		Prioritization: time.Duration(cfg.Timeouts.PrioritizationSeconds) * time.Second,
	})
}

// Close closes any providers holding network resources.
func (e *Engine) Close() error {
	var firstErr error
	for _, p := range e.providers {
		if closer, ok := p.(io.Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// providerOutcome is the internal result of one provider invocation. It never
// leaves the cascade.
type providerOutcome struct {
	name string
	raw  string
	err  error
}

// primary returns the highest-precedence configured provider, or nil when
// none is configured. Exactly one network provider is attempted per call.
func (e *Engine) primary() provider.Provider {
	if len(e.providers) == 0 {
		return nil
	}
	return e.providers[0]
}

func (e *Engine) invoke(ctx context.Context, p provider.Provider, prompt string, budget time.Duration, opts provider.GenerateOptions) providerOutcome {
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	raw, err := p.Invoke(ctx, prompt, opts)
	return providerOutcome{name: p.Name(), raw: raw, err: err}
}

// AnalyzeContext analyzes content and extracts insights, candidate tasks,
// sentiment and keywords. It always returns a well-formed result.
func (e *Engine) AnalyzeContext(ctx context.Context, content, sourceKind string) analysis.Result {
	sourceKind = analysis.NormalizeSource(sourceKind)

	if p := e.primary(); p != nil {
		outcome := e.invoke(ctx, p, e.prompts.BuildContextAnalysis(content, sourceKind), e.timeouts.Analysis, analysisGenOpts)
		if outcome.err == nil {
			return parseAnalysisResponse(outcome.raw)
		}
		log.Printf("%s analysis failed, falling back to rules: %v", outcome.name, outcome.err)
	}

	return e.rules.AnalyzeContext(content, sourceKind)
}

// EnhanceTask suggests priority, deadline, description and categories for a
// task. It always returns a well-formed result.
func (e *Engine) EnhanceTask(ctx context.Context, req analysis.EnhancementRequest) analysis.Enhancement {
	if p := e.primary(); p != nil {
		outcome := e.invoke(ctx, p, e.prompts.BuildTaskEnhancement(req), e.timeouts.Enhancement, enhancementGenOpts)
		if outcome.err == nil {
			return parseEnhancementResponse(outcome.raw, req)
		}
		log.Printf("%s enhancement failed, falling back to rules: %v", outcome.name, outcome.err)
	}

	return e.rules.EnhanceTask(req)
}

// PrioritizeTasks scores and orders the caller's task items. Extra fields on
// each item are preserved; only priority_score is added or overwritten.
func (e *Engine) PrioritizeTasks(ctx context.Context, items []analysis.TaskItem) []analysis.TaskItem {
	if p := e.primary(); p != nil {
		outcome := e.invoke(ctx, p, e.prompts.BuildPrioritization(items), e.timeouts.Prioritization, prioritizationGenOpts)
		if outcome.err == nil {
			return parsePrioritizationResponse(outcome.raw, items)
		}
		log.Printf("%s prioritization failed, falling back to rules: %v", outcome.name, outcome.err)
	}

	return e.rules.PrioritizeTasks(items)
}

// Capabilities reports the configured providers and supported features. With
// nothing configured, the rule-based fallback is the sole provider.
func (e *Engine) Capabilities() analysis.Capabilities {
	caps := analysis.Capabilities{
		AvailableProviders: []analysis.ProviderInfo{},
		Features: map[string]bool{
			"context_analysis":    true,
			"task_enhancement":    true,
			"task_prioritization": true,
			"sentiment_analysis":  true,
			"keyword_extraction":  true,
		},
		Status: "operational",
	}

	for _, p := range e.providers {
		caps.AvailableProviders = append(caps.AvailableProviders, analysis.ProviderInfo{
			Name:   p.Name(),
			Type:   p.Kind(),
			Status: "available",
		})
	}

	if len(caps.AvailableProviders) == 0 {
		caps.AvailableProviders = append(caps.AvailableProviders, analysis.ProviderInfo{
			Name:   "Rule-based Fallback",
			Type:   provider.KindLocal,
			Status: "available",
		})
	}

	return caps
}
