package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tunestudio/internal/frontdesk"
	"tunestudio/pkg/client"
	"tunestudio/pkg/model"
)

func intakeCmd(opts *options) *cobra.Command {
	var (
		in    frontdesk.Intake
		car   model.Car
		items []string
		wait  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "intake",
		Short: "Check a car in: find or register the client, then open an order",
		Example: `  studioctl intake --phone 89291234567 --name "Ivan Petrov" \
    --car-make BMW --car-model M340i --item "Stage 1 ECU=35000"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseItems(items)
			if err != nil {
				return err
			}
			in.Items = parsed
			if car.Make != "" || car.Model != "" {
				in.Car = &car
			}

			if wait > 0 {
				if err := client.NewHttpClient(opts.apiURL).WaitForHealthy(cmd.Context(), wait); err != nil {
					return err
				}
			}

			ctx, cancel := opts.requestContext(cmd)
			defer cancel()

			engine := frontdesk.NewEngine(frontdesk.NewIntakeFlow(
				client.NewClientsClient(opts.apiURL),
				client.NewOrdersClient(opts.apiURL),
			))
			state := frontdesk.NewState(in)
			if err := engine.Run(ctx, frontdesk.IntakeFlowName, state); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			verb := "found"
			if state.ClientCreated {
				verb = "registered"
			}
			fmt.Fprintf(out, "client %s: %s %s (%s)\n", verb, state.Client.Name, state.Client.Phone, state.Client.ID)
			if state.Order != nil {
				fmt.Fprintf(out, "order %s opened: %d %s\n", state.Order.Number, state.Order.Total, state.Order.Currency)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Phone, "phone", "", "client phone in any format")
	cmd.Flags().StringVar(&in.Name, "name", "", "client name, required when the phone is unknown")
	cmd.Flags().StringVar(&in.Email, "email", "", "client email")
	cmd.Flags().StringVar(&car.Make, "car-make", "", "car make")
	cmd.Flags().StringVar(&car.Model, "car-model", "", "car model")
	cmd.Flags().IntVar(&car.Year, "car-year", 0, "car model year")
	cmd.Flags().StringVar(&car.VIN, "vin", "", "VIN")
	cmd.Flags().StringArrayVar(&items, "item", nil, `order line as "service=price", repeatable`)
	cmd.Flags().StringVar(&in.Currency, "currency", "", "ISO 4217 currency")
	cmd.Flags().StringVar(&in.Comment, "comment", "", "order comment")
	cmd.Flags().DurationVar(&wait, "wait", 0, "wait up to this long for the API to report healthy")
	cmd.MarkFlagRequired("phone")
	return cmd
}
