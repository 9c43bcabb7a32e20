package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var noVerify bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a Stripe API key",
		Long:  "Verify a secret API key against the account endpoint and save it to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey := viper.GetString("api_key")

			if apiKey == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "API key: ")

				key, err := readSecret(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read API key: %w", err)
				}

				fmt.Fprintln(cmd.ErrOrStderr())

				apiKey = key
			}

			if apiKey == "" {
				return constants.ErrEmptyAPIKey
			}

			accountID := ""

			if !noVerify {
				ctx := context.Background()

				client, err := createClientWithKey(ctx, apiKey)
				if err != nil {
					return err
				}

				account, err := client.Accounts().Retrieve(ctx, "").Await(ctx)
				if err != nil {
					return fmt.Errorf("failed to verify API key: %w", err)
				}

				accountID = account.ID()
			}

			config := loadConfig()
			config.APIKey = apiKey

			if base := viper.GetString("api_base"); base != "" {
				config.APIBase = base
			}

			if err := saveConfigStruct(config); err != nil {
				return err
			}

			if accountID != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in to account %s\n", accountID)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "API key saved")
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "save the key without calling the API")

	return cmd
}

// NewLogoutCommand creates the logout command
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored API key",
		Long:  "Remove the API key from the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.APIKey = ""

			if err := saveConfigStruct(config); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

			return nil
		},
	}
}

// readSecret reads a line without echo when in is a terminal.
func readSecret(in io.Reader) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}

		return strings.TrimSpace(string(secret)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}

	return strings.TrimSpace(line), nil
}
