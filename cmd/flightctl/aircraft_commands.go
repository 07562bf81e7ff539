package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/spf13/cobra"
)

func newAircraftCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aircraft",
		Short: "Manage aircraft and view telemetry",
	}
	cmd.AddCommand(newAircraftAddCommand(ctx))
	cmd.AddCommand(newAircraftListCommand(ctx))
	cmd.AddCommand(newAircraftShowCommand(ctx))
	return cmd
}

func newAircraftAddCommand(ctx *commandContext) *cobra.Command {
	var a domain.Aircraft
	cmd := &cobra.Command{
		Use:   "add <tail-number>",
		Short: "Register an aircraft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.TailNumber = strings.ToUpper(strings.TrimSpace(args[0]))
			if a.TailNumber == "" || a.Type == "" {
				return errors.New("tail number and --type are required")
			}
			return ctx.withStores(cmd.Context(), func(s *stores) error {
				if err := s.aircraft.Create(cmd.Context(), &a); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "aircraft %s created with id %d\n", a.TailNumber, a.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&a.Type, "type", "", "Aircraft type")
	cmd.Flags().StringVar(&a.Model, "model", "", "Model")
	cmd.Flags().Float64Var(&a.TotalFlyingHours, "hours", 0, "Total flying hours")
	cmd.Flags().Float64Var(&a.FuelCapacity, "fuel-capacity", 0, "Fuel capacity")
	cmd.Flags().Float64Var(&a.CurrentFuelLevel, "fuel", 0, "Current fuel level")
	cmd.Flags().Float64Var(&a.TirePressureMain, "tire-main", 0, "Main tire pressure")
	cmd.Flags().Float64Var(&a.TirePressureNose, "tire-nose", 0, "Nose tire pressure")
	return cmd
}

func newAircraftListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List aircraft with current telemetry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStores(cmd.Context(), func(s *stores) error {
				fleet, err := s.aircraft.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(fleet) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "no aircraft registered")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderFleet(fleet))
				return nil
			})
		},
	}
}

func newAircraftShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <tail-number>",
		Short: "Show one aircraft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStores(cmd.Context(), func(s *stores) error {
				a, err := s.aircraft.GetByTail(cmd.Context(), strings.ToUpper(strings.TrimSpace(args[0])))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderFleet([]domain.Aircraft{*a}))
				return nil
			})
		},
	}
}

func renderFleet(fleet []domain.Aircraft) string {
	rows := make([][]string, 0, len(fleet))
	for _, a := range fleet {
		rows = append(rows, []string{
			strconv.FormatInt(a.ID, 10),
			a.TailNumber,
			a.Type,
			string(a.Status),
			formatNumber(a.TotalFlyingHours),
			formatNumber(a.CurrentFuelLevel) + " / " + formatNumber(a.FuelCapacity),
			formatNumber(a.TirePressureMain),
			formatNumber(a.TirePressureNose),
		})
	}
	return renderTable(
		[]string{"ID", "Tail", "Type", "Status", "Hours", "Fuel", "Tire Main", "Tire Nose"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
