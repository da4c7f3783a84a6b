package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/shopsavvy/internal"
)

// MarkdownExporter exports records as a Markdown report
type MarkdownExporter struct{}

// Export exports records to Markdown format
func (e *MarkdownExporter) Export(records []*internal.InsightRecord, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Shopping Insights\n\n")
	_, _ = fmt.Fprintf(w, "**Records:** %d\n\n", len(records))

	for i, rec := range records {
		_, _ = fmt.Fprintf(w, "---\n\n")
		_, _ = fmt.Fprintf(w, "## Insight %d\n\n", rec.ID)

		if !rec.CreatedAt.IsZero() {
			_, _ = fmt.Fprintf(w, "**Created:** %s  \n", rec.CreatedAt.UTC().Format(time.RFC3339))
		}
		_, _ = fmt.Fprintf(w, "**Budget:** $%.2f  \n", rec.Request.Budget)
		_, _ = fmt.Fprintf(w, "**Categories:** %s  \n", categories(rec.Request.Preferences))
		_, _ = fmt.Fprintf(w, "**Holiday shopping:** %s  \n", yesNo(rec.Request.Preferences.HolidaySeason))
		_, _ = fmt.Fprintf(w, "**Gift shopping:** %s\n\n", yesNo(rec.Request.Preferences.GiftShopping))

		_, _ = fmt.Fprintf(w, "| Insight | Value |\n|---|---|\n")
		_, _ = fmt.Fprintf(w, "| Budget recommendation | %s |\n", escapeCell(rec.Insights.BudgetRecommendation))
		_, _ = fmt.Fprintf(w, "| Product suggestions | %s |\n", escapeCell(rec.Insights.ProductSuggestion))
		_, _ = fmt.Fprintf(w, "| Holiday recommendations | %s |\n", escapeCell(rec.Insights.HolidayRecommendation))
		_, _ = fmt.Fprintf(w, "| Gift suggestions | %s |\n\n", escapeCell(rec.Insights.GiftSuggestion))

		_, _ = fmt.Fprintf(w, "### Response\n\n%s\n", escapeMarkdown(rec.Response))
		if i < len(records)-1 {
			_, _ = fmt.Fprintln(w)
		}
	}

	return nil
}

func categories(p internal.Preferences) string {
	if len(p.PreferredCategories) == 0 {
		return "none"
	}
	return strings.Join(p.PreferredCategories, ", ")
}

func yesNo(b *bool) string {
	switch {
	case b == nil:
		return "unset"
	case *b:
		return "yes"
	default:
		return "no"
	}
}

func escapeCell(text string) string {
	text = strings.ReplaceAll(text, "|", "\\|")
	return strings.ReplaceAll(text, "\n", " ")
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
