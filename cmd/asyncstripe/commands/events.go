package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/asyncstripe/internal/constants"
	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
	"github.com/spf13/cobra"
)

// NewEventsCommand creates the events command group
func NewEventsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event", "evt"},
		Short:   "Inspect events",
		Long:    "List and inspect the events recorded for the account",
	}

	cmd.AddCommand(newEventsListCommand())
	cmd.AddCommand(newEventsGetCommand())

	return cmd
}

func newEventsListCommand() *cobra.Command {
	var (
		limit         int
		startingAfter string
		eventType     string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events",
		Long:  "List events, newest first, optionally of a single type such as charge.captured",
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := listParams(limit, startingAfter, nil)
			if err != nil {
				return err
			}

			setIfNotEmpty(params, "type", eventType)

			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			events, err := client.Events().List(ctx, params).Await(ctx)
			if err != nil {
				return fmt.Errorf("failed to list events: %w", err)
			}

			return renderList(cmd.OutOrStdout(), events, "No events found",
				field("id"), field("type"), eventObjectColumn(), timestampField("created"))
		},
	}

	cmd.Flags().IntVar(&limit, "limit", constants.DefaultPageSize, "number of events to return")
	cmd.Flags().StringVar(&startingAfter, "starting-after", "", "cursor for the next page")
	cmd.Flags().StringVar(&eventType, "type", "", "only events of this type")

	return cmd
}

func newEventsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get EVENT_ID",
		Short: "Get event details",
		Long:  "Display an event including the object it describes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			client, err := createClient(ctx)
			if err != nil {
				return err
			}

			event, err := client.Events().Retrieve(ctx, args[0]).Await(ctx)
			if err != nil {
				return fmt.Errorf("failed to get event: %w", err)
			}

			return renderResource(cmd.OutOrStdout(), event, "id", "type", "data", "created", "livemode")
		},
	}
}

// eventObjectColumn shows the id of the object an event is about.
func eventObjectColumn() column {
	return column{
		header: "Object",
		value: func(obj *stripe.Object) string {
			data := obj.GetObject("data")
			if data == nil {
				return constants.NotAvailable
			}

			return display(data.Base().Get("object"))
		},
	}
}
