package cmd

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/shopsavvy/internal"
	"github.com/spf13/cobra"
)

var (
	showRaw bool
)

var (
	// Styles for show command
	recordHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212")).
				Padding(0, 1).
				MarginBottom(1)

	recordMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			MarginBottom(1)

	responseContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one stored insight",
	Long:  `Display the request and the model's recommendations for a stored insight.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid insight id %q: %w", args[0], err)
		}

		s, err := loadSettings()
		if err != nil {
			return err
		}
		db, store, err := openStore(s)
		if err != nil {
			return err
		}
		defer db.Close()

		rec, err := store.GetInsight(cmd.Context(), id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("insight not found: %d (use 'shopsavvy list' to see stored insights)", id)
		}
		if err != nil {
			return err
		}

		displayRecord(cmd.OutOrStdout(), rec, showRaw)
		return nil
	},
}

func displayRecord(out io.Writer, rec *internal.InsightRecord, raw bool) {
	fmt.Fprintln(out, recordHeaderStyle.Render(fmt.Sprintf("🛍️  Insight %d", rec.ID)))

	prefs := rec.Request.Preferences
	metaParts := []string{fmt.Sprintf("Budget: $%.2f", rec.Request.Budget)}
	if !rec.CreatedAt.IsZero() {
		metaParts = append([]string{"Created: " + rec.CreatedAt.Format(time.RFC3339)}, metaParts...)
	}
	if len(prefs.PreferredCategories) > 0 {
		metaParts = append(metaParts, "Categories: "+strings.Join(prefs.PreferredCategories, ", "))
	}
	if prefs.HolidaySeason != nil {
		metaParts = append(metaParts, fmt.Sprintf("Holiday: %t", *prefs.HolidaySeason))
	}
	if prefs.GiftShopping != nil {
		metaParts = append(metaParts, fmt.Sprintf("Gift: %t", *prefs.GiftShopping))
	}
	fmt.Fprintln(out, recordMetaStyle.Render(strings.Join(metaParts, " • ")))
	fmt.Fprintln(out)

	if raw {
		fmt.Fprintln(out, responseContentStyle.Render(wrapText(strings.TrimSpace(rec.Response), 80)))
		return
	}
	internal.RenderInsights(out, rec.Insights)
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				if currentLine != "" {
					wrapped = append(wrapped, currentLine)
					currentLine = word
				} else {
					wrapped = append(wrapped, word)
					currentLine = ""
				}
			} else {
				if currentLine == "" {
					currentLine = word
				} else {
					currentLine += " " + word
				}
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Show the model's full response instead of the labeled fields")
}
