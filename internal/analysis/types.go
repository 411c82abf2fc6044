// Package analysis defines the value types exchanged between the engine and
// its callers. All values are request-scoped and returned by value; nothing
// here is shared or mutated after creation.
package analysis

import "time"

// Source kinds accepted for context analysis.
const (
	SourceChat     = "chat"
	SourceEmail    = "email"
	SourceNote     = "note"
	SourceCalendar = "calendar"
	SourceOther    = "other"
)

// NormalizeSource maps an arbitrary caller-supplied source string onto the
// known vocabulary. Unknown values become SourceOther rather than an error.
func NormalizeSource(s string) string {
	switch s {
	case SourceChat, SourceEmail, SourceNote, SourceCalendar, SourceOther:
		return s
	default:
		return SourceOther
	}
}

// Sentiment labels derived from the sign of the sentiment score.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// SentimentLabel returns the label for a score: >0 positive, <0 negative,
// exactly 0 neutral.
func SentimentLabel(score float64) string {
	switch {
	case score > 0:
		return SentimentPositive
	case score < 0:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// ClampPriority bounds a priority value to the inclusive 1..10 range.
func ClampPriority(p int) int {
	if p < 1 {
		return 1
	}
	if p > 10 {
		return 10
	}
	return p
}

// DefaultPriority is used whenever a priority is unknown.
const DefaultPriority = 5

// Insights summarizes a context analysis.
type Insights struct {
	Summary   string `json:"summary"`
	TaskCount int    `json:"task_count"`
	Sentiment string `json:"sentiment"`
}

// CandidateTask is a task hypothesis extracted from free text. It is produced
// fresh per analysis and never mutated afterwards.
type CandidateTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    int    `json:"priority"`
	Category    string `json:"category"`
}

// Result is the outcome of a context analysis.
type Result struct {
	Insights       Insights        `json:"insights"`
	ExtractedTasks []CandidateTask `json:"extracted_tasks"`
	SentimentScore *float64        `json:"sentiment_score,omitempty"`
	Keywords       []string        `json:"keywords"`
}

// EnhancementRequest describes a task to enhance. Title is required; the
// boundary surfaces (API, CLI) validate that before the engine is invoked.
type EnhancementRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// Enhancement is the outcome of a task enhancement.
type Enhancement struct {
	Priority            int        `json:"priority"`
	SuggestedDeadline   *time.Time `json:"suggested_deadline,omitempty"`
	EnhancedDescription string     `json:"enhanced_description"`
	SuggestedCategories []string   `json:"suggested_categories"`
	Insights            string     `json:"insights"`
}

// TaskItem is a caller-supplied task record for prioritization. It carries at
// least id/title/description; any extra fields are preserved untouched. The
// engine only ever adds or overwrites the "priority_score" field.
type TaskItem map[string]any

// Title returns the item's title, or "" when absent.
func (t TaskItem) Title() string { return t.stringField("title") }

// Description returns the item's description, or "" when absent.
func (t TaskItem) Description() string { return t.stringField("description") }

func (t TaskItem) stringField(key string) string {
	if v, ok := t[key].(string); ok {
		return v
	}
	return ""
}

// SetPriorityScore adds or overwrites the priority_score field. A nil item
// (a JSON null element in the caller's list) is left untouched.
func (t TaskItem) SetPriorityScore(score int) {
	if t == nil {
		return
	}
	t["priority_score"] = score
}

// PriorityScore returns the item's priority score, defaulting to
// DefaultPriority when absent or non-numeric.
func (t TaskItem) PriorityScore() int {
	switch v := t["priority_score"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return DefaultPriority
	}
}

// ProviderInfo describes one available analysis backend.
type ProviderInfo struct {
	Name   string `json:"name"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

// Capabilities reports the configured providers and supported features.
type Capabilities struct {
	AvailableProviders []ProviderInfo  `json:"available_providers"`
	Features           map[string]bool `json:"features"`
	Status             string          `json:"status"`
}
