package main

import (
	"strconv"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tunestudio/pkg/client"
	"tunestudio/pkg/model"
)

func clientsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage studio clients",
	}

	cmd.AddCommand(clientsListCmd(opts))
	cmd.AddCommand(clientsGetCmd(opts))
	cmd.AddCommand(clientsSearchCmd(opts))
	cmd.AddCommand(clientsCreateCmd(opts))

	return cmd
}

func clientsListCmd(opts *options) *cobra.Command {
	var (
		limit  int
		offset int64
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()

			clients, meta, err := client.NewClientsClient(opts.apiURL).List(ctx, limit, offset)
			if err != nil {
				return err
			}
			return printClients(cmd, clients, meta)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().Int64Var(&offset, "offset", 0, "number of clients to skip")
	return cmd
}

func clientsGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id|phone>",
		Short: "Show a client by ID or by phone in any format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()

			api := client.NewClientsClient(opts.apiURL)

			var (
				c   *model.Client
				err error
			)
			if primitive.IsValidObjectID(args[0]) {
				c, err = api.GetByID(ctx, args[0])
			} else {
				c, err = api.GetByPhone(ctx, args[0])
			}
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), c)
		},
	}
}

func clientsSearchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <name or phone prefix>",
		Short: "Search clients by name or phone prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()

			clients, err := client.NewClientsClient(opts.apiURL).Search(ctx, args[0])
			if err != nil {
				return err
			}
			return printClients(cmd, clients, nil)
		},
	}
}

func clientsCreateCmd(opts *options) *cobra.Command {
	var in model.Client

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.requestContext(cmd)
			defer cancel()

			created, err := client.NewClientsClient(opts.apiURL).Create(ctx, &in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), created)
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "client name")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "phone number in any format")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "free-form notes")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("phone")
	return cmd
}

func printClients(cmd *cobra.Command, clients []model.Client, meta *client.Metadata) error {
	rows := make([][]string, 0, len(clients))
	for _, c := range clients {
		rows = append(rows, []string{c.ID, c.Name, c.Phone, c.Region, strconv.Itoa(len(c.Cars))})
	}
	return printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "PHONE", "REGION", "CARS"}, rows, meta)
}
