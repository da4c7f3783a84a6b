package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/shopsavvy/internal"
	"github.com/spf13/cobra"
)

var (
	listLimit int
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	categoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List past insights",
	Long:  `List stored insight records, newest first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings()
		if err != nil {
			return err
		}
		db, store, err := openStore(s)
		if err != nil {
			return err
		}
		defer db.Close()

		records, err := store.ListInsights(cmd.Context(), listLimit)
		if err != nil {
			return fmt.Errorf("failed to load insights: %w", err)
		}

		displayRecords(cmd.OutOrStdout(), records, time.Now())
		return nil
	},
}

func displayRecords(out io.Writer, records []*internal.InsightRecord, now time.Time) {
	if len(records) == 0 {
		fmt.Fprintln(out, headerStyle.Render("📋 No insights yet"))
		fmt.Fprintln(out, idStyle.Render("💡 Tip: run `shopsavvy ask --budget 50` or `shopsavvy chat`"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📋 Found %d insight(s)", len(records))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Created")+"\t"+titleStyle.Render("Budget")+"\t"+titleStyle.Render("Categories")+"\t"+titleStyle.Render("Product suggestions")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 100))

	for _, rec := range records {
		id := idStyle.Render(strconv.FormatInt(rec.ID, 10))
		budget := countStyle.Render(fmt.Sprintf("$%.2f", rec.Request.Budget))

		categories := dateStyle.Render("—")
		if len(rec.Request.Preferences.PreferredCategories) > 0 {
			categories = categoryStyle.Render(truncate(strings.Join(rec.Request.Preferences.PreferredCategories, ", "), 25))
		}

		suggestion := lipgloss.NewStyle().Foreground(lipgloss.Color("255")).
			Render(truncate(rec.Insights.ProductSuggestion, 50))

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", id, formatCreated(rec.CreatedAt, now), budget, categories, suggestion)
	}

	_ = w.Flush()
	fmt.Fprintln(out)
	fmt.Fprintln(out, idStyle.Render("💡 Tip: Use the ID (e.g., ")+
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(strconv.FormatInt(records[0].ID, 10))+
		idStyle.Render(") with `shopsavvy show <id>`"))
}

// formatCreated renders t relative to now: time of day for today, weekday
// within a week, month and day within a year, otherwise the date.
func formatCreated(t, now time.Time) string {
	if t.IsZero() {
		return dateStyle.Render("—")
	}
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return dateStyle.Render(t.Format("Today 15:04"))
	case diff < 7*24*time.Hour:
		return dateStyle.Render(t.Format("Mon 15:04"))
	case diff < 365*24*time.Hour:
		return dateStyle.Render(t.Format("Jan 02 15:04"))
	default:
		return dateStyle.Render(t.Format("2006-01-02"))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum number of records to list (0 for all)")
}
