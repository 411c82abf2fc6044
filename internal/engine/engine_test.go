package engine

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/smarttodo/context-engine/internal/analysis"
	"github.com/smarttodo/context-engine/internal/provider"
	"github.com/smarttodo/context-engine/internal/rules"
)

type stubProvider struct {
	name    string
	reply   string
	err     error
	prompts []string
	opts    []provider.GenerateOptions
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) Kind() string { return provider.KindCloud }

func (s *stubProvider) Invoke(ctx context.Context, prompt string, opts provider.GenerateOptions) (string, error) {
	s.prompts = append(s.prompts, prompt)
	s.opts = append(s.opts, opts)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestAnalyzeContextUsesProviderReply(t *testing.T) {
	stub := &stubProvider{name: "stub", reply: `{"insights": {"summary": "done"}, "keywords": ["x"]}`}
	e := New([]provider.Provider{stub}, Timeouts{})

	got := e.AnalyzeContext(context.Background(), "I need to call the bank.", "note")

	if got.Insights.Summary != "done" {
		t.Errorf("Expected provider summary, got %q", got.Insights.Summary)
	}
	if len(stub.prompts) != 1 {
		t.Fatalf("Expected exactly one invocation, got %d", len(stub.prompts))
	}
	if stub.opts[0].Temperature != 0.7 || stub.opts[0].MaxTokens != 1000 {
		t.Errorf("Unexpected generation options %+v", stub.opts[0])
	}
}

func TestAnalyzeContextFallsBackOnProviderError(t *testing.T) {
	stub := &stubProvider{name: "stub", err: errors.New("connection refused")}
	e := New([]provider.Provider{stub}, Timeouts{})

	content := "I need to buy groceries. This is urgent."
	got := e.AnalyzeContext(context.Background(), content, "email")

	want := rules.New().AnalyzeContext(content, "email")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Fallback result differs from rule-based analysis:\ngot  %+v\nwant %+v", got, want)
	}
}

// With no providers configured, results must be identical to calling the
// rule-based analyzer directly.
func TestAnalyzeContextRulesOnly(t *testing.T) {
	e := New(nil, Timeouts{})

	content := "We must schedule the review. Everything is great."
	got := e.AnalyzeContext(context.Background(), content, "chat")

	want := rules.New().AnalyzeContext(content, "chat")
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Rules-only engine differs from direct analyzer:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestAnalyzeContextNormalizesSource(t *testing.T) {
	stub := &stubProvider{name: "stub", reply: `{}`}
	e := New([]provider.Provider{stub}, Timeouts{})

	e.AnalyzeContext(context.Background(), "content", "telepathy")

	if len(stub.prompts) != 1 {
		t.Fatalf("Expected one invocation, got %d", len(stub.prompts))
	}
	if want := "Analyze the following other content"; stub.prompts[0][:len(want)] != want {
		t.Errorf("Expected unknown source normalized to other, prompt starts %q", stub.prompts[0][:60])
	}
}

// Only the highest-precedence provider is ever attempted. A failure skips
// straight to rules, never to the next provider.
func TestOnlyPrimaryProviderAttempted(t *testing.T) {
	first := &stubProvider{name: "first", err: errors.New("down")}
	second := &stubProvider{name: "second", reply: `{"insights": {"summary": "from second"}}`}
	e := New([]provider.Provider{first, second}, Timeouts{})

	got := e.AnalyzeContext(context.Background(), "I need to rest.", "note")

	if len(second.prompts) != 0 {
		t.Errorf("Second provider should never be invoked, got %d calls", len(second.prompts))
	}
	if got.Insights.Summary == "from second" {
		t.Error("Result came from the second provider")
	}
}

func TestEnhanceTaskUsesProviderReply(t *testing.T) {
	stub := &stubProvider{name: "stub", reply: `{"priority": 8, "enhanced_description": "better", "insights": "why"}`}
	e := New([]provider.Provider{stub}, Timeouts{})

	got := e.EnhanceTask(context.Background(), analysis.EnhancementRequest{Title: "Pay rent"})

	if got.Priority != 8 || got.EnhancedDescription != "better" {
		t.Errorf("Unexpected enhancement %+v", got)
	}
	if stub.opts[0].MaxTokens != 500 {
		t.Errorf("Unexpected max tokens %d", stub.opts[0].MaxTokens)
	}
}

func TestEnhanceTaskFallsBackOnProviderError(t *testing.T) {
	stub := &stubProvider{name: "stub", err: errors.New("timeout")}
	e := New([]provider.Provider{stub}, Timeouts{})

	got := e.EnhanceTask(context.Background(), analysis.EnhancementRequest{Title: "Submit urgent report"})

	if got.Priority < 8 {
		t.Errorf("Expected rule-based high priority, got %d", got.Priority)
	}
	if got.Insights == "" {
		t.Error("Expected rule-based insights")
	}
}

func TestPrioritizeTasksUsesProviderScores(t *testing.T) {
	stub := &stubProvider{name: "stub", reply: `{"priority_scores": [3, 9]}`}
	e := New([]provider.Provider{stub}, Timeouts{})

	items := []analysis.TaskItem{
		{"title": "low", "id": "a"},
		{"title": "high", "id": "b"},
	}
	got := e.PrioritizeTasks(context.Background(), items)

	// Provider path keeps input order and overlays scores.
	if got[0]["id"] != "a" || got[0].PriorityScore() != 3 {
		t.Errorf("Unexpected first item %v", got[0])
	}
	if got[1]["id"] != "b" || got[1].PriorityScore() != 9 {
		t.Errorf("Unexpected second item %v", got[1])
	}
}

func TestPrioritizeTasksFallsBackOnProviderError(t *testing.T) {
	stub := &stubProvider{name: "stub", err: errors.New("boom")}
	e := New([]provider.Provider{stub}, Timeouts{})

	items := []analysis.TaskItem{
		{"title": "water the plants"},
		{"title": "urgent deadline today"},
	}
	got := e.PrioritizeTasks(context.Background(), items)

	// Rule path sorts descending by score.
	if got[0]["title"] != "urgent deadline today" {
		t.Errorf("Expected urgent task first, got %v", got[0]["title"])
	}
	if got[0].PriorityScore() <= got[1].PriorityScore() {
		t.Errorf("Expected descending scores, got %d then %d",
			got[0].PriorityScore(), got[1].PriorityScore())
	}
}

func TestInvocationTimeoutBudget(t *testing.T) {
	deadlines := make(chan time.Time, 1)
	e := New([]provider.Provider{&deadlineProbe{deadlines: deadlines}}, Timeouts{Analysis: 2 * time.Second})

	start := time.Now()
	e.AnalyzeContext(context.Background(), "content", "note")

	deadline := <-deadlines
	if remaining := deadline.Sub(start); remaining > 2*time.Second || remaining < time.Second {
		t.Errorf("Expected roughly 2s budget, got %v", remaining)
	}
}

type deadlineProbe struct {
	deadlines chan time.Time
}

func (d *deadlineProbe) Name() string { return "probe" }
func (d *deadlineProbe) Kind() string { return provider.KindLocal }

func (d *deadlineProbe) Invoke(ctx context.Context, prompt string, opts provider.GenerateOptions) (string, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return "", errors.New("no deadline set")
	}
	d.deadlines <- deadline
	return `{}`, nil
}

func TestCapabilitiesWithProviders(t *testing.T) {
	e := New([]provider.Provider{&stubProvider{name: "LM Studio"}}, Timeouts{})

	caps := e.Capabilities()

	if caps.Status != "operational" {
		t.Errorf("Unexpected status %q", caps.Status)
	}
	if len(caps.AvailableProviders) != 1 || caps.AvailableProviders[0].Name != "LM Studio" {
		t.Errorf("Unexpected providers %+v", caps.AvailableProviders)
	}
	for _, feature := range []string{"context_analysis", "task_enhancement", "task_prioritization", "sentiment_analysis", "keyword_extraction"} {
		if !caps.Features[feature] {
			t.Errorf("Expected feature %s enabled", feature)
		}
	}
}

func TestCapabilitiesRulesOnly(t *testing.T) {
	e := New(nil, Timeouts{})

	caps := e.Capabilities()

	if len(caps.AvailableProviders) != 1 {
		t.Fatalf("Expected the fallback listed, got %+v", caps.AvailableProviders)
	}
	if caps.AvailableProviders[0].Name != "Rule-based Fallback" {
		t.Errorf("Unexpected provider %+v", caps.AvailableProviders[0])
	}
	if caps.Status != "operational" {
		t.Errorf("Unexpected status %q", caps.Status)
	}
}

func TestNewDefaultsZeroTimeouts(t *testing.T) {
	e := New(nil, Timeouts{})

	if e.timeouts != DefaultTimeouts {
		t.Errorf("Expected default timeouts, got %+v", e.timeouts)
	}
}
