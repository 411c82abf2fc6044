package engine

import (
	"fmt"
	"strings"

	"github.com/smarttodo/context-engine/internal/analysis"
)

// PromptBuilder centralizes the provider prompts in one place, one template
// per request kind. The JSON shapes named in the prompts match the result
// structs field for field so the response interpreter can decode replies
// directly.
type PromptBuilder struct{}

// NewPromptBuilder creates a prompt builder.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildContextAnalysis creates the prompt for context analysis.
func (p *PromptBuilder) BuildContextAnalysis(content, sourceKind string) string {
	return fmt.Sprintf(`Analyze the following %s content and extract actionable insights:

Content: %q

Respond with a single JSON object with these fields:
1. insights: {summary (string), task_count (integer), sentiment ("positive"|"neutral"|"negative")}
2. extracted_tasks: array of {title (string), description (string), priority (integer 1-10), category (string)}
3. sentiment_score: float between -1 and 1
4. keywords: array of up to 10 relevant keywords

Focus on identifying tasks, deadlines, and priorities. Be practical and actionable. Respond with JSON only.`, sourceKind, content)
}

// BuildTaskEnhancement creates the prompt for task enhancement.
func (p *PromptBuilder) BuildTaskEnhancement(req analysis.EnhancementRequest) string {
	category := req.Category
	if category == "" {
		category = "Unknown"
	}

	return fmt.Sprintf(`Enhance this task with suggestions:

Title: %s
Description: %s
Category: %s

Respond with a single JSON object with these fields:
1. priority: integer 1-10 (based on urgency and importance)
2. suggested_deadline: ISO-8601 date string (realistic estimate, omit if none)
3. enhanced_description: improved, more detailed description
4. suggested_categories: array of relevant category names
5. insights: explanation of the priority and recommendations

Be practical and helpful. Respond with JSON only.`, req.Title, req.Description, category)
}

// BuildPrioritization creates the prompt for task list prioritization.
func (p *PromptBuilder) BuildPrioritization(items []analysis.TaskItem) string {
	var list strings.Builder
	for i, item := range items {
		title := item.Title()
		if title == "" {
			title = "Untitled"
		}
		list.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, title, item.Description()))
	}

	return fmt.Sprintf(`Prioritize these tasks based on urgency and importance:

%s
Respond with a single JSON object with these fields:
- prioritized_tasks: array of task indices (0-based) in priority order
- priority_scores: array of integer scores 1-10, one per task in input order
- reasoning: explanation of the prioritization logic

Consider deadlines, complexity, and impact. Respond with JSON only.`, list.String())
}
