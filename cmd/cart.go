package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iksnae/shopsavvy/internal"
	"github.com/iksnae/shopsavvy/internal/scrape"
	"github.com/spf13/cobra"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the stored cart",
}

// cartImportCmd scrapes a cart page and stores what it finds
var cartImportCmd = &cobra.Command{
	Use:   "import <file-or-url>",
	Short: "Import cart items from a saved page or a live URL",
	Long: `Scrape cart items from a saved cart page (HTML file) or render a live URL in
headless Chrome, then store them for later prompts.

The signed-in user's name and any order history on the page are stored too.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		location := args[0]

		s, err := loadSettings()
		if err != nil {
			return err
		}
		src, err := scrape.NewSource(location, s.Settle)
		if err != nil {
			return err
		}

		a, err := newApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		var page *scrape.Page
		steps := []internal.ProgressStep{
			{
				Message: "Reading " + location,
				Fn: func() error {
					var fetchErr error
					page, fetchErr = src.Fetch(ctx)
					return fetchErr
				},
			},
			{
				Message: "Storing cart items",
				Fn: func() error {
					if err := storePageExtras(ctx, a.store, page); err != nil {
						return err
					}
					resp := a.service.Ask(ctx, internal.Message{Action: internal.ActionUpdateCart, CartItems: page.Items})
					if resp.Failed() {
						return fmt.Errorf("%s", resp.Error)
					}
					return nil
				},
			},
		}
		if err := internal.ShowProgressWithSteps(ctx, steps); err != nil {
			return err
		}

		internal.PrintSuccess(fmt.Sprintf("Imported %d cart item(s)", len(page.Items)))
		return nil
	},
}

// storePageExtras saves the greeted user name and order history when present
func storePageExtras(ctx context.Context, store internal.KeyValueStore, page *scrape.Page) error {
	values := map[string]interface{}{}
	if page.LoggedIn && page.UserName != "" {
		values[internal.KeyUserName] = page.UserName
	} else {
		internal.LogInfo("Username not found, using default %s.", internal.DefaultUserName)
	}
	if len(page.Orders) > 0 {
		values[internal.KeyOrderHistory] = page.Orders
	}
	if len(values) == 0 {
		return nil
	}
	return store.Set(ctx, values)
}

// cartListCmd prints the stored cart
var cartListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the stored cart items and order history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := loadSettings()
		if err != nil {
			return err
		}
		db, store, err := openStore(s)
		if err != nil {
			return err
		}
		defer db.Close()

		out := cmd.OutOrStdout()
		items := internal.LoadCartItems(ctx, store)
		fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("🛒 Cart (%d item(s))", len(items))))
		fmt.Fprintln(out, internal.FormatCartItems(items))

		var orders []internal.Order
		values, err := store.Get(ctx, internal.KeyOrderHistory)
		if err != nil {
			return err
		}
		if raw, ok := values[internal.KeyOrderHistory]; ok {
			if err := json.Unmarshal(raw, &orders); err != nil {
				internal.LogWarn("Ignoring unreadable order history: %v", err)
			}
		}
		if len(orders) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("📦 Orders (%d)", len(orders))))
			for i, o := range orders {
				fmt.Fprintf(out, "%d. %s (%s)\n", i+1, o.Title, o.Price)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cartCmd)
	cartCmd.AddCommand(cartImportCmd)
	cartCmd.AddCommand(cartListCmd)
}
