package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewBalanceCommand creates the balance command
func NewBalanceCommand() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the account balance",
		Long:  "Display the available and pending balance per currency",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			balance, err := client.Balance().Retrieve(ctx, requestOptions("", account)...).Await(ctx)
			if err != nil {
				return fmt.Errorf("failed to get balance: %w", err)
			}

			format, err := outputFormat()
			if err != nil {
				return err
			}

			if format != constants.FormatTable {
				return encodeStructured(cmd.OutOrStdout(), format, balance.ToMap())
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Status", "Amount")

			for _, status := range []string{"available", "pending"} {
				for _, entry := range balanceEntries(balance.ToMap()[status]) {
					_ = table.Append(status, entry)
				}
			}

			if err := table.Render(); err != nil {
				return fmt.Errorf("failed to render table: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&account, "stripe-account", "", "connected account whose balance to show")

	return cmd
}

// balanceEntries formats the amount/currency pairs of one balance bucket.
func balanceEntries(raw interface{}) []string {
	items, _ := raw.([]interface{})
	entries := make([]string, 0, len(items))

	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}

		currency, _ := m["currency"].(string)
		entries = append(entries, formatAmount(toInt64(m["amount"]), currency))
	}

	return entries
}

func toInt64(value interface{}) int64 {
	switch v := value.(type) {
	case json.Number:
		n, _ := v.Int64()

		return n
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}
