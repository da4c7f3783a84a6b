package cmd

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/iksnae/shopsavvy/internal"
	"github.com/iksnae/shopsavvy/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const labeledReply = `Budget recommendation: Spend about $40 and keep $10 spare
Product suggestions: Paperback box set, $25
Holiday-specific recommendations: Gift wrap the box set
Gift suggestions: A bookmark, $5`

// resetFlags puts every flag of c and its children back to its default.
// Flag values and Changed survive between Execute calls in one process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and stdin and returns its output
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))

	err := rootCmd.Execute()
	return out.String(), err
}

// newModelServer serves the default model and answers every prompt with reply
func newModelServer(t *testing.T, reply string) *testutil.OllamaServer {
	t.Helper()
	return testutil.NewOllamaServer(t, []string{internal.DefaultOllamaModel}, func(string, int) (string, int) {
		return reply, http.StatusOK
	})
}
