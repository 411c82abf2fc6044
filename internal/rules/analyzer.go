// Package rules implements the deterministic fallback analyzer. It is pure
// pattern matching and lexicon scoring over text: no I/O, no external state,
// and it cannot fail — every function is total over arbitrary input,
// including the empty string.
package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/smarttodo/context-engine/internal/analysis"
	"github.com/smarttodo/context-engine/internal/lexicon"
)

// Trigger patterns meaning "obligation". Each captures the obligation clause
// up to the next period or end of text. Overlapping matches across patterns
// all produce separate candidates; no deduplication.
var taskPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)need to (.+?)(?:\.|$)`),
	regexp.MustCompile(`(?i)should (.+?)(?:\.|$)`),
	regexp.MustCompile(`(?i)must (.+?)(?:\.|$)`),
	regexp.MustCompile(`(?i)have to (.+?)(?:\.|$)`),
	regexp.MustCompile(`(?i)remember to (.+?)(?:\.|$)`),
	regexp.MustCompile(`(?i)don't forget to (.+?)(?:\.|$)`),
}

// Clauses this short are too noisy to be tasks.
const minClauseLen = 6

var keywordPattern = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

// Analyzer is the rule-based analysis engine. It is stateless and safe for
// concurrent use.
type Analyzer struct {
	now func() time.Time
}

// New creates a rule-based analyzer.
func New() *Analyzer {
	return &Analyzer{now: time.Now}
}

// AnalyzeContext runs the full rule pipeline over content: task extraction,
// sentiment scoring and keyword extraction.
func (a *Analyzer) AnalyzeContext(content, sourceKind string) analysis.Result {
	sourceKind = analysis.NormalizeSource(sourceKind)

	tasks := a.ExtractTasks(content, sourceKind)
	score := a.ScoreSentiment(content)
	keywords := a.ExtractKeywords(content)

	return analysis.Result{
		Insights: analysis.Insights{
			Summary:   fmt.Sprintf("Analyzed %s content with %d potential tasks", sourceKind, len(tasks)),
			TaskCount: len(tasks),
			Sentiment: analysis.SentimentLabel(score),
		},
		ExtractedTasks: tasks,
		SentimentScore: &score,
		Keywords:       keywords,
	}
}

// ExtractTasks scans content for obligation phrases and turns each surviving
// clause into a candidate task.
func (a *Analyzer) ExtractTasks(content, sourceKind string) []analysis.CandidateTask {
	tasks := []analysis.CandidateTask{}

	for _, pattern := range taskPatterns {
		for _, match := range pattern.FindAllStringSubmatch(content, -1) {
			clause := strings.TrimSpace(match[1])
			if len(clause) < minClauseLen {
				continue
			}
			tasks = append(tasks, analysis.CandidateTask{
				Title:       capitalize(clause),
				Description: fmt.Sprintf("Extracted from %s", sourceKind),
				Priority:    a.EstimatePriority(clause),
				Category:    a.GuessCategory(clause),
			})
		}
	}

	return tasks
}

// EstimatePriority scores text on the urgency lexicons. Starts at the
// default, raises to at least 8 for high-urgency phrases, at least 6 for
// medium, then caps at 3 for low-urgency phrases. The low tier is applied
// last on purpose: "urgent ... someday" ends at 3.
func (a *Analyzer) EstimatePriority(text string) int {
	lower := strings.ToLower(text)
	priority := analysis.DefaultPriority

	for _, phrase := range lexicon.HighUrgency {
		if strings.Contains(lower, phrase) && priority < 8 {
			priority = 8
		}
	}
	for _, phrase := range lexicon.MediumUrgency {
		if strings.Contains(lower, phrase) && priority < 6 {
			priority = 6
		}
	}
	for _, phrase := range lexicon.LowUrgency {
		if strings.Contains(lower, phrase) && priority > 3 {
			priority = 3
		}
	}

	return analysis.ClampPriority(priority)
}

// SuggestDeadline scans text against the ordered deadline table; the first
// matching rule's offset is added to the current moment. No match means no
// suggestion.
func (a *Analyzer) SuggestDeadline(text string) *time.Time {
	lower := strings.ToLower(text)

	for _, rule := range lexicon.DeadlineRules {
		for _, phrase := range rule.Phrases {
			if strings.Contains(lower, phrase) {
				deadline := a.now().Add(time.Duration(rule.Days) * 24 * time.Hour)
				return &deadline
			}
		}
	}

	return nil
}

// GuessCategory scans text against the ordered category table; the first
// matching group wins.
func (a *Analyzer) GuessCategory(text string) string {
	lower := strings.ToLower(text)

	for _, rule := range lexicon.CategoryRules {
		for _, phrase := range rule.Phrases {
			if strings.Contains(lower, phrase) {
				return rule.Name
			}
		}
	}

	return lexicon.DefaultCategory
}

// ExtractKeywords tokenizes on runs of three or more letters, drops
// stop-words and returns up to the ten most frequent distinct tokens. Ties
// keep first-encountered order.
func (a *Analyzer) ExtractKeywords(text string) []string {
	tokens := keywordPattern.FindAllString(strings.ToLower(text), -1)

	counts := make(map[string]int)
	var order []string
	for _, tok := range tokens {
		if _, stop := lexicon.StopWords[tok]; stop {
			continue
		}
		if counts[tok] == 0 {
			order = append(order, tok)
		}
		counts[tok]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > 10 {
		order = order[:10]
	}
	if order == nil {
		order = []string{}
	}
	return order
}

// ScoreSentiment counts positive and negative lexicon hits by substring
// containment and returns (P-N)/(P+N), or exactly 0 when neither polarity is
// present.
func (a *Analyzer) ScoreSentiment(text string) float64 {
	lower := strings.ToLower(text)

	var positive, negative int
	for _, word := range lexicon.PositiveWords {
		if strings.Contains(lower, word) {
			positive++
		}
	}
	for _, word := range lexicon.NegativeWords {
		if strings.Contains(lower, word) {
			negative++
		}
	}

	if positive+negative == 0 {
		return 0.0
	}
	return float64(positive-negative) / float64(positive+negative)
}

// EnhanceTask produces the rule-path enhancement for a task.
func (a *Analyzer) EnhanceTask(req analysis.EnhancementRequest) analysis.Enhancement {
	text := req.Title + " " + req.Description

	priority := a.EstimatePriority(text)
	deadline := a.SuggestDeadline(text)

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Task: %s", req.Title)
	}

	categories := []string{lexicon.DefaultCategory}
	if req.Category != "" {
		categories = []string{req.Category}
	}

	return analysis.Enhancement{
		Priority:            priority,
		SuggestedDeadline:   deadline,
		EnhancedDescription: description,
		SuggestedCategories: categories,
		Insights:            fmt.Sprintf("Priority %d/10 based on content analysis", priority),
	}
}

// PrioritizeTasks scores each item on its title and description, then
// returns the items reordered by score descending. The sort is stable, so
// equal-priority items keep their original relative order.
func (a *Analyzer) PrioritizeTasks(items []analysis.TaskItem) []analysis.TaskItem {
	for _, item := range items {
		item.SetPriorityScore(a.EstimatePriority(item.Title() + " " + item.Description()))
	}

	ordered := make([]analysis.TaskItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PriorityScore() > ordered[j].PriorityScore()
	})

	return ordered
}

// capitalize upper-cases the first rune of s.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
