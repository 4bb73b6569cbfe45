package domain

import "strings"

const (
	PriorityCEO          = "CEO"
	PrioritySalesManager = "Sales Manager"
	PriorityHerbs        = "Herbs Priority"
	PriorityHigh         = "high"
	PriorityMedium       = "medium"
	PriorityLow          = "low"
)

// ClassifyPriority derives the routing priority of a new message. Rules are
// checked in order and the first match wins; matching is a case-insensitive
// substring search over subject and body.
func ClassifyPriority(subject, message, category string) string {
	text := strings.ToLower(subject + " " + message)
	category = strings.ToLower(strings.TrimSpace(category))

	switch {
	case containsAny(text, "ceo", "urgent", "important"):
		return PriorityCEO
	case category == "sales" || strings.Contains(text, "sales manager"):
		return PrioritySalesManager
	case category == "herbs" || containsAny(text, "herb", "natural"):
		return PriorityHerbs
	case category == "complaint":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
