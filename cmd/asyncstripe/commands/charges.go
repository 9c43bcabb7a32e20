package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
	"github.com/spf13/cobra"
)

var chargeFields = []string{
	"id", "amount", "currency", "captured", "paid", "refunded", "amount_refunded",
	"customer", "source", "description", "dispute", "failure_code", "created", "livemode",
}

// NewChargesCommand creates the charges command group
func NewChargesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "charges",
		Aliases: []string{"charge", "ch"},
		Short:   "Manage charges",
		Long:    "Create, capture, refund and inspect Stripe charges",
	}

	cmd.AddCommand(newChargesListCommand())
	cmd.AddCommand(newChargesGetCommand())
	cmd.AddCommand(newChargesCreateCommand())
	cmd.AddCommand(newChargesCaptureCommand())
	cmd.AddCommand(newChargesRefundCommand())

	return cmd
}

func newChargesListCommand() *cobra.Command {
	var (
		limit         int
		startingAfter string
		customer      string
		extra         []string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List charges",
		Long:  "List charges, newest first, optionally for one customer",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := listParams(limit, startingAfter, extra)
			if err != nil {
				return err
			}

			setIfNotEmpty(params, "customer", customer)

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			charges, err := client.Charges().List(ctx, params).Await(ctx)
			if err != nil {
				return fmt.Errorf("failed to list charges: %w", err)
			}

			return renderList(cmd.OutOrStdout(), charges, "No charges found",
				field("id"), amountField("amount"), field("captured"), field("refunded"),
				field("customer"), timestampField("created"))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", constants.DefaultPageSize, "number of charges to return")
	cmd.Flags().StringVar(&startingAfter, "starting-after", "", "cursor for the next page")
	cmd.Flags().StringVar(&customer, "customer", "", "only charges for this customer")
	cmd.Flags().StringArrayVarP(&extra, "param", "p", nil, "extra request parameter as KEY=VALUE")

	return cmd
}

func newChargesGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get CHARGE_ID",
		Short: "Get charge details",
		Long:  "Display detailed information about a specific charge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			charge, err := client.Charges().Retrieve(ctx, args[0]).Await(ctx)
			if err != nil {
				return fmt.Errorf("failed to get charge: %w", err)
			}

			return renderResource(cmd.OutOrStdout(), charge, chargeFields...)
		},
	}
}

func newChargesCreateCommand() *cobra.Command {
	var (
		amount         int64
		currency       string
		source         string
		customer       string
		description    string
		noCapture      bool
		idempotencyKey string
		account        string
		extra          []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a charge",
		Long:  "Charge a source or a customer's default source",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(extra)
			if err != nil {
				return err
			}

			params["amount"] = amount
			params["currency"] = currency
			setIfNotEmpty(params, "source", source)
			setIfNotEmpty(params, "customer", customer)
			setIfNotEmpty(params, "description", description)

			if noCapture {
				params["capture"] = false
			}

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			charge, err := client.Charges().Create(ctx, params, requestOptions(idempotencyKey, account)...).Await(ctx)
			if err != nil {
				return describeChargeError("failed to create charge", err)
			}

			return renderResource(cmd.OutOrStdout(), charge, chargeFields...)
		},
	}

	cmd.Flags().Int64Var(&amount, "amount", 0, "amount in the currency's smallest unit")
	cmd.Flags().StringVar(&currency, "currency", "usd", "three-letter currency code")
	cmd.Flags().StringVar(&source, "source", "", "token or source to charge")
	cmd.Flags().StringVar(&customer, "customer", "", "customer to charge")
	cmd.Flags().StringVar(&description, "description", "", "charge description")
	cmd.Flags().BoolVar(&noCapture, "no-capture", false, "authorize only; capture later")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "idempotency key for the request, or auto")
	cmd.Flags().StringVar(&account, "stripe-account", "", "connected account to act on behalf of")
	cmd.Flags().StringArrayVarP(&extra, "param", "p", nil, "extra request parameter as KEY=VALUE")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newChargesCaptureCommand() *cobra.Command {
	var amount int64

	cmd := &cobra.Command{
		Use:   "capture CHARGE_ID",
		Short: "Capture a charge",
		Long:  "Capture a charge created with --no-capture, optionally for a smaller amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := stripe.Params{}
			if amount > 0 {
				params["amount"] = amount
			}

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			charge, err := client.Charges().Capture(ctx, stripe.NewCharge(args[0]), params).Await(ctx)
			if err != nil {
				return fmt.Errorf("failed to capture charge: %w", err)
			}

			return renderResource(cmd.OutOrStdout(), charge, chargeFields...)
		},
	}

	cmd.Flags().Int64Var(&amount, "amount", 0, "amount to capture; defaults to the full charge")

	return cmd
}

func newChargesRefundCommand() *cobra.Command {
	var (
		amount int64
		reason string
	)

	cmd := &cobra.Command{
		Use:   "refund CHARGE_ID",
		Short: "Refund a charge",
		Long:  "Refund all or part of a charge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := stripe.Params{}
			if amount > 0 {
				params["amount"] = amount
			}

			setIfNotEmpty(params, "reason", reason)

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			charge, err := client.Charges().Refund(ctx, stripe.NewCharge(args[0]), params).Await(ctx)
			if err != nil {
				return fmt.Errorf("failed to refund charge: %w", err)
			}

			return renderResource(cmd.OutOrStdout(), charge, chargeFields...)
		},
	}

	cmd.Flags().Int64Var(&amount, "amount", 0, "amount to refund; defaults to what remains")
	cmd.Flags().StringVar(&reason, "reason", "", "duplicate, fraudulent or requested_by_customer")

	return cmd
}

// describeChargeError adds the decline code to card errors.
func describeChargeError(prefix string, err error) error {
	var cardErr *stripe.CardError
	if errors.As(err, &cardErr) && cardErr.Code != "" {
		return fmt.Errorf("%s (%s): %w", prefix, cardErr.Code, err)
	}

	return fmt.Errorf("%s: %w", prefix, err)
}
