package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/asyncstripe/cmd/asyncstripe/commands"
	"github.com/fivetwenty-io/asyncstripe/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "asyncstripe",
	Short: "Stripe API CLI",
	Long: `A command-line interface for the Stripe API built on the asyncstripe client.

It covers customers, charges, the account balance and events, and can run an
in-memory fake of the API for local development.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.asyncstripe/config.yml)")
	rootCmd.PersistentFlags().StringP("api-key", "k", "", "secret API key")
	rootCmd.PersistentFlags().String("api-base", "", "API base URL")
	rootCmd.PersistentFlags().String("api-version", "", "pin the Stripe API version")
	rootCmd.PersistentFlags().String("output", constants.FormatTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Bool("skip-tls-verify", false, "skip TLS certificate verification (development only)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("api_key", rootCmd.PersistentFlags().Lookup("api-key"))
	_ = viper.BindPFlag("api_base", rootCmd.PersistentFlags().Lookup("api-base"))
	_ = viper.BindPFlag("api_version", rootCmd.PersistentFlags().Lookup("api-version"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("skip_tls_verify", rootCmd.PersistentFlags().Lookup("skip-tls-verify"))

	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewLoginCommand())
	rootCmd.AddCommand(commands.NewLogoutCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewCustomersCommand())
	rootCmd.AddCommand(commands.NewChargesCommand())
	rootCmd.AddCommand(commands.NewBalanceCommand())
	rootCmd.AddCommand(commands.NewEventsCommand())
	rootCmd.AddCommand(commands.NewFakeServerCommand())
}

func initConfig() {
	// STRIPE_API_KEY, STRIPE_API_BASE and friends override the config file.
	viper.SetEnvPrefix("STRIPE")
	viper.AutomaticEnv()

	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".asyncstripe")
		if err := os.MkdirAll(configDir, constants.ConfigDirPerm); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating config directory: %v\n", err)
		}

		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
