package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/shopsavvy/internal"
	"github.com/spf13/cobra"
)

// chatCmd runs the guided budget and preferences conversation
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the shopping assistant",
	Long: `Start a guided conversation that collects your budget, categories and
holiday/gift preferences, then asks the model for insights.

Your budget and preferences are remembered between chats. Type 'exit' or
press Ctrl-D to leave.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		chat := internal.NewChat(a.store, a.service)
		printBot(out, chat.Start(ctx))

		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			fmt.Fprint(out, "> ")
			if !scanner.Scan() {
				fmt.Fprintln(out)
				break
			}
			line := scanner.Text()
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "exit", "quit":
				printBot(out, []string{"Goodbye!"})
				return nil
			}
			printBot(out, chat.Handle(ctx, line))
		}
		return scanner.Err()
	},
}

func printBot(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, internal.BotStyle.Render("ShopSavvy:")+" "+line)
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
