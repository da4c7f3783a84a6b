package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/iksnae/shopsavvy/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	verbose    bool
	configFile string
	version    string = "dev"
	commit     string = "unknown"
	date       string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "shopsavvy",
	Short: "Shopping insights from your cart and a local language model",
	Long: `A CLI shopping assistant that turns your cart, budget and preferences into
product recommendations from an on-device language model served by Ollama.

Requests to the model are queued and run one at a time; failed attempts are
retried with exponential backoff and a fresh model session.

Features:
  • Import cart items from a saved cart page or a live browser session
  • Ask for insights in one shot or through a guided chat
  • Keep a history of every recommendation
  • Export the history (JSONL, Markdown, YAML, JSON)

Quick Start:
  shopsavvy cart import cart.html                 # Store the items in your cart
  shopsavvy ask --budget 50 --categories books    # Ask once
  shopsavvy chat                                  # Guided conversation
  shopsavvy list                                  # Past recommendations

Configuration is read from shopsavvy.yaml and SHOPSAVVY_* environment variables.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		if viper.GetBool("verbose") {
			internal.SetVerbose(true)
			return nil
		}
		level, err := internal.ParseLogLevel(viper.GetString("log_level"))
		if err != nil {
			return err
		}
		internal.SetLogLevel(level)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		internal.PrintError(fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

// loadConfig reads shopsavvy.yaml (when present) on top of the defaults. Flags
// and SHOPSAVVY_* variables take precedence over the file.
func loadConfig() error {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("shopsavvy")
		viper.SetConfigType("yaml")
		if paths, err := internal.DetectDataPaths(); err == nil {
			viper.AddConfigPath(paths.BaseDir)
		}
		viper.AddConfigPath("$HOME/.shopsavvy")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			internal.LogDebug("No config file found, using defaults")
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	internal.LogDebug("Using config file: %s", viper.ConfigFileUsed())
	return nil
}

func setDefaults() {
	viper.SetDefault("log_level", "info")
	viper.SetDefault("ollama.host", internal.DefaultOllamaHost)
	viper.SetDefault("ollama.model", internal.DefaultOllamaModel)
	viper.SetDefault("retry.max_attempts", internal.DefaultMaxAttempts)
	viper.SetDefault("retry.base_delay", internal.DefaultBaseDelay)
	viper.SetDefault("mode.include_cart", false)
	viper.SetDefault("mode.response", string(internal.ResponseLabeled))
	viper.SetDefault("scrape.settle", "3s")
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: shopsavvy.yaml in the data directory, ~/.shopsavvy or .)")
	rootCmd.PersistentFlags().String("store", "", "Custom store location (path to database file or directory)")
	rootCmd.PersistentFlags().String("ollama-host", "", "Ollama server URL")
	rootCmd.PersistentFlags().String("model", "", "Ollama model name")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("store", rootCmd.PersistentFlags().Lookup("store"))
	_ = viper.BindPFlag("ollama.host", rootCmd.PersistentFlags().Lookup("ollama-host"))
	_ = viper.BindPFlag("ollama.model", rootCmd.PersistentFlags().Lookup("model"))

	viper.SetEnvPrefix("SHOPSAVVY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
