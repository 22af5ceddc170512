package main

import (
	"strings"

	"github.com/spf13/cobra"

	"tunestudio/pkg/client"
	"tunestudio/pkg/model"
)

func callbacksCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "callbacks",
		Short: "Work the callback request queue",
	}

	cmd.AddCommand(callbacksListCmd(opts))
	cmd.AddCommand(callbacksCreateCmd(opts))
	cmd.AddCommand(callbacksStatusCmd(opts))

	return cmd
}

func callbacksListCmd(opts *options) *cobra.Command {
	var (
		status string
		limit  int
		offset int64
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List callback requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()

			api := client.NewCallbacksClient(opts.apiURL, opts.siteSecret)
			callbacks, meta, err := api.List(ctx, strings.ToLower(status), limit, offset)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(callbacks))
			for _, cb := range callbacks {
				rows = append(rows, []string{
					cb.ID,
					cb.Status,
					cb.Name,
					cb.Phone,
					cb.Source,
					cb.CreatedAt.Local().Format("02.01 15:04"),
				})
			}
			return printTable(cmd.OutOrStdout(), []string{"ID", "STATUS", "NAME", "PHONE", "SOURCE", "CREATED"}, rows, meta)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status (new, contacted, closed)")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().Int64Var(&offset, "offset", 0, "number of requests to skip")
	return cmd
}

func callbacksCreateCmd(opts *options) *cobra.Command {
	in := model.CallbackRequest{Source: model.CallbackSourceDesktop}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a callback request taken at the front desk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()

			created, err := client.NewCallbacksClient(opts.apiURL, opts.siteSecret).Create(ctx, &in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), created)
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "caller name")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number in any format")
	cmd.Flags().StringVar(&in.Message, "message", "", "what the caller asked about")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("phone")
	return cmd
}

func callbacksStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <new|contacted|closed>",
		Short: "Move a callback request to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()

			api := client.NewCallbacksClient(opts.apiURL, opts.siteSecret)
			updated, err := api.UpdateStatus(ctx, args[0], strings.ToLower(args[1]))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), updated)
		},
	}
}
