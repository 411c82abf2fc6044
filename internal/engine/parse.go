package engine

import (
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/smarttodo/context-engine/internal/analysis"
)

// Response interpretation is deliberately best-effort: providers reply in
// free text, so we take the widest {...} span, decode what we can, and fill
// every gap with the request-kind default. A reply that cannot be used at all
// still produces a well-formed result.

// extractJSONSpan returns the substring from the first '{' through the last
// '}' in s.
func extractJSONSpan(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func defaultAnalysisResult() analysis.Result {
	score := 0.0
	return analysis.Result{
		Insights: analysis.Insights{
			Summary:   "AI analysis completed",
			TaskCount: 0,
			Sentiment: analysis.SentimentNeutral,
		},
		ExtractedTasks: []analysis.CandidateTask{},
		SentimentScore: &score,
		Keywords:       []string{},
	}
}

// parseAnalysisResponse interprets a provider reply to a context analysis
// prompt. Missing fields fall back per field; an unusable reply yields the
// full default.
func parseAnalysisResponse(raw string) analysis.Result {
	span, ok := extractJSONSpan(raw)
	if !ok {
		return defaultAnalysisResult()
	}

	var decoded struct {
		Insights struct {
			Summary   *string `json:"summary"`
			TaskCount *int    `json:"task_count"`
			Sentiment *string `json:"sentiment"`
		} `json:"insights"`
		ExtractedTasks []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Priority    *int   `json:"priority"`
			Category    string `json:"category"`
		} `json:"extracted_tasks"`
		SentimentScore *float64 `json:"sentiment_score"`
		Keywords       []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(span), &decoded); err != nil {
		return defaultAnalysisResult()
	}

	result := defaultAnalysisResult()

	for _, task := range decoded.ExtractedTasks {
		if task.Title == "" {
			continue
		}
		priority := analysis.DefaultPriority
		if task.Priority != nil {
			priority = analysis.ClampPriority(*task.Priority)
		}
		category := task.Category
		if category == "" {
			category = "General"
		}
		result.ExtractedTasks = append(result.ExtractedTasks, analysis.CandidateTask{
			Title:       task.Title,
			Description: task.Description,
			Priority:    priority,
			Category:    category,
		})
	}

	score := 0.0
	if decoded.SentimentScore != nil {
		score = clampScore(*decoded.SentimentScore)
	}
	result.SentimentScore = &score

	if decoded.Keywords != nil {
		if len(decoded.Keywords) > 10 {
			decoded.Keywords = decoded.Keywords[:10]
		}
		result.Keywords = decoded.Keywords
	}

	result.Insights.TaskCount = len(result.ExtractedTasks)
	if decoded.Insights.TaskCount != nil {
		result.Insights.TaskCount = *decoded.Insights.TaskCount
	}
	if decoded.Insights.Summary != nil && *decoded.Insights.Summary != "" {
		result.Insights.Summary = *decoded.Insights.Summary
	}
	result.Insights.Sentiment = analysis.SentimentLabel(score)
	if decoded.Insights.Sentiment != nil {
		switch *decoded.Insights.Sentiment {
		case analysis.SentimentPositive, analysis.SentimentNeutral, analysis.SentimentNegative:
			result.Insights.Sentiment = *decoded.Insights.Sentiment
		}
	}

	return result
}

func defaultEnhancement(req analysis.EnhancementRequest) analysis.Enhancement {
	categories := []string{}
	if req.Category != "" {
		categories = []string{req.Category}
	}
	return analysis.Enhancement{
		Priority:            analysis.DefaultPriority,
		SuggestedDeadline:   nil,
		EnhancedDescription: "",
		SuggestedCategories: categories,
		Insights:            "Enhancement completed",
	}
}

// parseEnhancementResponse interprets a provider reply to a task enhancement
// prompt.
func parseEnhancementResponse(raw string, req analysis.EnhancementRequest) analysis.Enhancement {
	span, ok := extractJSONSpan(raw)
	if !ok {
		return defaultEnhancement(req)
	}

	var decoded struct {
		Priority            *int     `json:"priority"`
		SuggestedDeadline   *string  `json:"suggested_deadline"`
		EnhancedDescription *string  `json:"enhanced_description"`
		SuggestedCategories []string `json:"suggested_categories"`
		Insights            *string  `json:"insights"`
	}
	if err := json.Unmarshal([]byte(span), &decoded); err != nil {
		return defaultEnhancement(req)
	}

	result := defaultEnhancement(req)

	if decoded.Priority != nil {
		result.Priority = analysis.ClampPriority(*decoded.Priority)
	}
	if decoded.SuggestedDeadline != nil {
		if deadline, ok := parseDeadline(*decoded.SuggestedDeadline); ok {
			result.SuggestedDeadline = &deadline
		}
	}
	if decoded.EnhancedDescription != nil {
		result.EnhancedDescription = *decoded.EnhancedDescription
	}
	if decoded.SuggestedCategories != nil {
		result.SuggestedCategories = decoded.SuggestedCategories
	}
	if decoded.Insights != nil {
		result.Insights = *decoded.Insights
	}

	return result
}

// parsePrioritizationResponse overlays provider scores onto the caller's
// items by index, clamped like every other priority. Extra caller fields are
// untouched and an unusable reply leaves the items exactly as they came in.
func parsePrioritizationResponse(raw string, items []analysis.TaskItem) []analysis.TaskItem {
	span, ok := extractJSONSpan(raw)
	if !ok {
		return items
	}

	var decoded struct {
		PriorityScores []float64 `json:"priority_scores"`
	}
	if err := json.Unmarshal([]byte(span), &decoded); err != nil {
		return items
	}

	for i, item := range items {
		if i < len(decoded.PriorityScores) {
			item.SetPriorityScore(analysis.ClampPriority(int(math.Round(decoded.PriorityScores[i]))))
		}
	}

	return items
}

func parseDeadline(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func clampScore(score float64) float64 {
	if score < -1 {
		return -1
	}
	if score > 1 {
		return 1
	}
	return score
}
