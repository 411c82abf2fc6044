// Package lexicon holds the static keyword tables used by the rule-based
// analyzer: urgency tiers, deadline phrases, category groups, stop-words and
// sentiment polarity sets. All tables are loaded once at init and never
// mutated; matching is lower-cased substring containment unless noted.
package lexicon

// Urgency tiers for priority estimation. High phrases raise the estimate to
// at least 8, medium to at least 6; low phrases cap it at 3 and are applied
// last, so they win over a high/medium bump.
var (
	HighUrgency = []string{
		"urgent", "asap", "immediately", "critical", "important", "deadline", "due",
	}

	MediumUrgency = []string{
		"soon", "today", "tomorrow", "this week", "meeting", "call",
	}

	LowUrgency = []string{
		"later", "eventually", "when possible", "someday",
	}
)

// DeadlineRule maps a group of trigger phrases to a relative offset in days.
type DeadlineRule struct {
	Phrases []string
	Days    int
}

// DeadlineRules is scanned top to bottom; the first rule with any phrase
// present wins. Ordering matters: "next week" resolves through the earlier
// "week" entry, and "today" beats anything below it.
var DeadlineRules = []DeadlineRule{
	{Phrases: []string{"today", "asap", "immediately"}, Days: 1},
	{Phrases: []string{"tomorrow", "next day"}, Days: 2},
	{Phrases: []string{"this week", "week"}, Days: 7},
	{Phrases: []string{"next week"}, Days: 14},
	{Phrases: []string{"month", "monthly"}, Days: 30},
}

// CategoryRule maps a group of trigger phrases to a category label.
type CategoryRule struct {
	Name    string
	Phrases []string
}

// CategoryRules is scanned in order; the first matching group wins.
var CategoryRules = []CategoryRule{
	{Name: "Work", Phrases: []string{"work", "office", "meeting", "project", "client"}},
	{Name: "Health", Phrases: []string{"doctor", "health", "gym", "exercise", "medical"}},
	{Name: "Shopping", Phrases: []string{"buy", "shop", "grocery", "store", "purchase"}},
	{Name: "Personal", Phrases: []string{"family", "home", "house", "personal"}},
	{Name: "Education", Phrases: []string{"learn", "study", "course", "education"}},
}

// DefaultCategory is returned when no category group matches.
const DefaultCategory = "General"

// StopWords are dropped during keyword extraction. Closed set of common
// function words; lookup is on lower-cased tokens.
var StopWords = map[string]struct{}{}

var stopWordList = []string{
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "from", "up", "about", "into", "through", "during",
	"before", "after", "above", "below", "between", "among", "is", "are",
	"was", "were", "be", "been", "being", "have", "has", "had", "do", "does",
	"did", "will", "would", "could", "should", "may", "might", "must", "can",
	"i", "you", "he", "she", "it", "we", "they", "me", "him", "her", "us", "them",
}

func init() {
	for _, w := range stopWordList {
		StopWords[w] = struct{}{}
	}
}

// Sentiment polarity sets. Matching is substring containment, so a polarity
// word embedded in a longer word still counts.
var (
	PositiveWords = []string{
		"good", "great", "excellent", "amazing", "wonderful",
		"fantastic", "love", "like", "happy", "excited",
	}

	NegativeWords = []string{
		"bad", "terrible", "awful", "hate", "dislike",
		"sad", "angry", "frustrated", "annoyed", "upset",
	}
)
