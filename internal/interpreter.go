package internal

import (
	"regexp"
	"strings"
)

// Placeholder is reported for a label that was not found
const Placeholder = "N/A"

// Labels searched for by ExtractFields. Matching is case-sensitive.
const (
	LabelBudgetRecommendation  = "Budget recommendation"
	LabelProductSuggestions    = "Product suggestions"
	LabelHolidayRecommendation = "Holiday-specific recommendations"
	LabelGiftSuggestions       = "Gift suggestions"
)

// ExtractFields pulls the four labeled insights out of free model text. For
// each label the first line containing it wins and the value is the text
// after that line's first colon. It never fails.
func ExtractFields(text string) Insights {
	lines := strings.Split(text, "\n")
	return Insights{
		BudgetRecommendation:  findLabel(lines, LabelBudgetRecommendation),
		ProductSuggestion:     findLabel(lines, LabelProductSuggestions),
		HolidayRecommendation: findLabel(lines, LabelHolidayRecommendation),
		GiftSuggestion:        findLabel(lines, LabelGiftSuggestions),
	}
}

func findLabel(lines []string, label string) string {
	for _, line := range lines {
		if !strings.Contains(line, label) {
			continue
		}
		_, value, ok := strings.Cut(line, ":")
		if !ok {
			return Placeholder
		}
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
		return Placeholder
	}
	return Placeholder
}

var emphasis = regexp.MustCompile(`\*\*|\*`)

// Segments splits markdown-ish model output on emphasis markers and returns
// the non-blank pieces, trimmed. The chat shows one segment per line.
func Segments(text string) []string {
	var out []string
	for _, part := range emphasis.Split(text, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
