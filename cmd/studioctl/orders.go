package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"tunestudio/pkg/client"
	"tunestudio/pkg/model"
)

func ordersCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Manage tuning orders",
	}

	cmd.AddCommand(ordersListCmd(opts))
	cmd.AddCommand(ordersCreateCmd(opts))

	return cmd
}

func ordersListCmd(opts *options) *cobra.Command {
	var listOpts client.OrderListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List orders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()

			orders, meta, err := client.NewOrdersClient(opts.apiURL).List(ctx, listOpts)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(orders))
			for _, o := range orders {
				rows = append(rows, []string{
					o.Number,
					o.Status,
					o.ClientPhone,
					fmt.Sprintf("%d %s", o.Total, o.Currency),
					o.ID,
				})
			}
			return printTable(cmd.OutOrStdout(), []string{"NUMBER", "STATUS", "PHONE", "TOTAL", "ID"}, rows, meta)
		},
	}

	cmd.Flags().StringVar(&listOpts.Status, "status", "", "filter by status")
	cmd.Flags().StringVar(&listOpts.ClientID, "client", "", "filter by client ID")
	cmd.Flags().IntVar(&listOpts.Limit, "limit", 20, "page size")
	cmd.Flags().Int64Var(&listOpts.Offset, "offset", 0, "number of orders to skip")
	return cmd
}

func ordersCreateCmd(opts *options) *cobra.Command {
	var (
		in    model.Order
		items []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open an order for a client",
		Example: `  studioctl orders create --client-phone 89291234567 \
    --item "Stage 1 ECU=35000" --item "Dyno run=5000"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.ClientID == "" && in.ClientPhone == "" {
				return fmt.Errorf("one of --client-id or --client-phone is required")
			}

			parsed, err := parseItems(items)
			if err != nil {
				return err
			}
			in.Items = parsed

			ctx, cancel := opts.requestContext(cmd)
			defer cancel()

			created, err := client.NewOrdersClient(opts.apiURL).Create(ctx, &in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), created)
		},
	}

	cmd.Flags().StringVar(&in.ClientID, "client-id", "", "client ID")
	cmd.Flags().StringVar(&in.ClientPhone, "client-phone", "", "client phone in any format")
	cmd.Flags().StringArrayVar(&items, "item", nil, `order line as "service=price", repeatable`)
	cmd.Flags().StringVar(&in.Currency, "currency", "", "ISO 4217 currency, server default when empty")
	cmd.Flags().StringVar(&in.Comment, "comment", "", "order comment")
	cmd.MarkFlagRequired("item")
	return cmd
}

// parseItems reads "service=price" pairs. The last '=' separates the price so
// service names may contain '='.
func parseItems(raw []string) ([]model.OrderItem, error) {
	items := make([]model.OrderItem, 0, len(raw))
	for _, r := range raw {
		i := strings.LastIndex(r, "=")
		if i <= 0 {
			return nil, fmt.Errorf("invalid item %q, expected service=price", r)
		}
		price, err := strconv.ParseInt(strings.TrimSpace(r[i+1:]), 10, 64)
		if err != nil || price < 0 {
			return nil, fmt.Errorf("invalid price in item %q", r)
		}
		items = append(items, model.OrderItem{
			Service: strings.TrimSpace(r[:i]),
			Price:   price,
		})
	}
	return items, nil
}
