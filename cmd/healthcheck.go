package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/shopsavvy/internal"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that the store and the Ollama model are usable",
	Long: `Check the health of shopsavvy by verifying:
  • Store path resolution
  • Store access and insight count
  • Ollama server reachability and model availability

This command is useful for debugging setup issues before a chat.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, sectionStyle.Render("🔍 ShopSavvy Health Check"))
		fmt.Fprintln(out)

		// Step 1: Resolve settings and store path
		fmt.Fprintln(out, infoStyle.Render("Step 1: Resolving store path..."))
		s, err := loadSettings()
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to load settings:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out, successStyle.Render("✅ Store path resolved"))
		if healthcheckVerbose {
			fmt.Fprintf(out, "   Store: %s\n", s.StorePath)
			fmt.Fprintf(out, "   Ollama: %s (%s)\n", s.OllamaHost, s.OllamaModel)
			fmt.Fprintf(out, "   Response mode: %s, include cart: %t\n", s.Response, s.IncludeCart)
		}
		fmt.Fprintln(out)

		// Step 2: Open the store
		fmt.Fprintln(out, infoStyle.Render("Step 2: Opening store..."))
		db, store, err := openStore(s)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to open store:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		defer db.Close()

		records, err := store.ListInsights(ctx, 0)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Failed to read insights:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		cartItems := internal.LoadCartItems(ctx, store)
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Store readable: %d insight(s), %d cart item(s)", len(records), len(cartItems))))
		fmt.Fprintln(out)

		// Step 3: Ask Ollama about the model
		fmt.Fprintln(out, infoStyle.Render("Step 3: Checking Ollama model..."))
		backend, err := internal.NewOllamaBackend(s.OllamaHost, s.OllamaModel)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("❌ Invalid Ollama settings:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		caps, capsErr := backend.Capabilities(ctx)
		switch caps.Available {
		case internal.AvailabilityReadily:
			fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Model %s is ready", backend.Model())))
		case internal.AvailabilityAfterDownload:
			fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("⚠️  Model %s is not pulled yet", backend.Model())))
			fmt.Fprintf(out, "   Run: ollama pull %s\n", backend.Model())
		default:
			fmt.Fprintln(out, errorStyle.Render("❌ Ollama is not reachable"))
			if capsErr != nil && healthcheckVerbose {
				fmt.Fprintf(out, "   Error: %v\n", capsErr)
			}
		}
		fmt.Fprintln(out)

		// Summary
		fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
		fmt.Fprintln(out)

		switch caps.Available {
		case internal.AvailabilityReadily:
			fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
			fmt.Fprintln(out, successStyle.Render("   • Store: Available"))
			fmt.Fprintln(out, successStyle.Render("   • Model: Ready"))
			return nil
		case internal.AvailabilityAfterDownload:
			fmt.Fprintln(out, warningStyle.Render("⚠️  Store available but the model must be downloaded"))
			return nil
		default:
			fmt.Fprintln(out, errorStyle.Render("❌ Health check failed"))
			fmt.Fprintln(out, "   • The model backend is unavailable")
			return fmt.Errorf("health check failed: model unavailable")
		}
	},
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVarP(&healthcheckVerbose, "verbose", "v", false, "Show detailed diagnostic information")
}
