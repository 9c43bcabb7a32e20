package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
	"github.com/spf13/cobra"
)

var customerFields = []string{
	"id", "email", "description", "account_balance", "currency",
	"default_source", "delinquent", "discount", "metadata", "created", "livemode",
}

// NewCustomersCommand creates the customers command group
func NewCustomersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer", "cus"},
		Short:   "Manage customers",
		Long:    "List, create, update and delete Stripe customers",
	}

	cmd.AddCommand(newCustomersListCommand())
	cmd.AddCommand(newCustomersGetCommand())
	cmd.AddCommand(newCustomersCreateCommand())
	cmd.AddCommand(newCustomersUpdateCommand())
	cmd.AddCommand(newCustomersDeleteCommand())

	return cmd
}

func newCustomersListCommand() *cobra.Command {
	var (
		limit         int
		startingAfter string
		extra         []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List customers",
		Long:  "List customers, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := listParams(limit, startingAfter, extra)
			if err != nil {
				return err
			}

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			customers, err := client.Customers().List(ctx, params).Await(ctx)
			if err != nil {
				return fmt.Errorf("failed to list customers: %w", err)
			}

			return renderList(cmd.OutOrStdout(), customers, "No customers found",
				field("id"), field("email"), field("description"), timestampField("created"))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", constants.DefaultPageSize, "number of customers to return")
	cmd.Flags().StringVar(&startingAfter, "starting-after", "", "cursor for the next page")
	cmd.Flags().StringArrayVarP(&extra, "param", "p", nil, "extra request parameter as KEY=VALUE")

	return cmd
}

func newCustomersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get CUSTOMER_ID",
		Short: "Get customer details",
		Long:  "Display detailed information about a specific customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			customer, err := client.Customers().Retrieve(ctx, args[0]).Await(ctx)
			if err != nil {
				return fmt.Errorf("failed to get customer: %w", err)
			}

			return renderResource(cmd.OutOrStdout(), customer, customerFields...)
		},
	}
}

func newCustomersCreateCommand() *cobra.Command {
	var (
		email          string
		description    string
		source         string
		idempotencyKey string
		extra          []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a customer",
		Long:  "Create a new customer, optionally attaching a payment source",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(extra)
			if err != nil {
				return err
			}

			setIfNotEmpty(params, "email", email)
			setIfNotEmpty(params, "description", description)
			setIfNotEmpty(params, "source", source)

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			customer, err := client.Customers().Create(ctx, params, requestOptions(idempotencyKey, "")...).Await(ctx)
			if err != nil {
				return fmt.Errorf("failed to create customer: %w", err)
			}

			return renderResource(cmd.OutOrStdout(), customer, customerFields...)
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "customer email address")
	cmd.Flags().StringVar(&description, "description", "", "customer description")
	cmd.Flags().StringVar(&source, "source", "", "token or source to attach")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "idempotency key for the request, or auto")
	cmd.Flags().StringArrayVarP(&extra, "param", "p", nil, "extra request parameter as KEY=VALUE")

	return cmd
}

func newCustomersUpdateCommand() *cobra.Command {
	var extra []string

	cmd := &cobra.Command{
		Use:   "update CUSTOMER_ID",
		Short: "Update a customer",
		Long:  "Change customer fields; only the fields given with --param are sent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(extra)
			if err != nil {
				return err
			}

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			customer, err := client.Customers().Retrieve(ctx, args[0]).Await(ctx)
			if err != nil {
				return fmt.Errorf("failed to get customer: %w", err)
			}

			for key, value := range params {
				if err := customer.Set(key, value); err != nil {
					return err
				}
			}

			customer, err = client.Customers().Save(ctx, customer).Await(ctx)
			if err != nil {
				return fmt.Errorf("failed to update customer: %w", err)
			}

			return renderResource(cmd.OutOrStdout(), customer, customerFields...)
		},
	}

	cmd.Flags().StringArrayVarP(&extra, "param", "p", nil, "field to change as KEY=VALUE")

	return cmd
}

func newCustomersDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete CUSTOMER_ID",
		Short: "Delete a customer",
		Long:  "Permanently delete a customer and cancel its subscriptions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			customer := stripe.NewCustomer(args[0])

			customer, err = client.Customers().Delete(ctx, customer, nil).Await(ctx)
			if err != nil {
				return fmt.Errorf("failed to delete customer: %w", err)
			}

			if customer.GetBool("deleted") {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted customer %s\n", customer.ID())
			}

			return nil
		},
	}
}

func setIfNotEmpty(params stripe.Params, key, value string) {
	if value != "" {
		params[key] = value
	}
}
