package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/iksnae/shopsavvy/internal"
	"github.com/iksnae/shopsavvy/internal/scrape"
	"github.com/spf13/cobra"
)

var (
	askBudget     float64
	askCategories string
	askHoliday    bool
	askGift       bool
	askCartPage   string
	askJSON       bool
)

// askCmd sends one insights request through the queue
var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask for shopping insights once",
	Long: `Send one insights request for the given budget and preferences and print
the recommendations.

With --cart-page the cart is re-scraped from a saved page or a live URL
before the request. Set mode.include_cart to include the stored cart in the
prompt.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var cart internal.CartSource
		if askCartPage != "" {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			cart, err = scrape.NewSource(askCartPage, s.Settle)
			if err != nil {
				return err
			}
		}

		a, err := newApp(ctx, cart)
		if err != nil {
			return err
		}
		defer a.Close()

		if cart != nil {
			resp := a.service.Ask(ctx, internal.Message{Action: internal.ActionRefreshCartData})
			if resp.Failed() {
				return fmt.Errorf("failed to refresh cart: %s", resp.Error)
			}
			internal.PrintInfo("Cart refreshed from " + askCartPage)
		}

		msg := internal.Message{
			Action: internal.ActionGetInsights,
			Budget: askBudget,
			Preferences: internal.Preferences{
				PreferredCategories: internal.ParseCategories(askCategories),
			},
		}
		if cmd.Flags().Changed("holiday") {
			msg.Preferences.HolidaySeason = internal.BoolPtr(askHoliday)
		}
		if cmd.Flags().Changed("gift") {
			msg.Preferences.GiftShopping = internal.BoolPtr(askGift)
		}

		var resp internal.Response
		err = internal.ShowProgress(ctx, "Generating shopping insights", func() error {
			resp = a.service.Ask(ctx, msg)
			if resp.Failed() {
				return fmt.Errorf("%s", resp.Error)
			}
			return nil
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if askJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}
		if resp.Insights != nil {
			internal.RenderInsights(out, *resp.Insights)
			return nil
		}
		_, err = fmt.Fprintln(out, resp.Response)
		return err
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().Float64VarP(&askBudget, "budget", "b", 0, "Shopping budget in dollars (required)")
	askCmd.Flags().StringVarP(&askCategories, "categories", "c", "", "Preferred categories, comma separated")
	askCmd.Flags().BoolVar(&askHoliday, "holiday", false, "Shopping for a holiday")
	askCmd.Flags().BoolVar(&askGift, "gift", false, "Shopping for a gift")
	askCmd.Flags().StringVar(&askCartPage, "cart-page", "", "Saved cart page or URL to scrape before asking")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "Print the reply as JSON")
	_ = askCmd.MarkFlagRequired("budget")
}
