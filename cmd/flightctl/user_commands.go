package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightline/internal/domain"
	"github.com/Domenick1991/flightline/internal/identity"
	"github.com/spf13/cobra"
)

func newUserCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage personnel accounts",
	}
	cmd.AddCommand(newUserAddCommand(ctx))
	return cmd
}

func newUserAddCommand(ctx *commandContext) *cobra.Command {
	var (
		name, rank, designation string
		password, pin           string
	)
	cmd := &cobra.Command{
		Use:   "add <pno>",
		Short: "Register a user with a login password and a signing PIN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := newUser(args[0], name, rank, designation, password, pin)
			if err != nil {
				return err
			}
			return ctx.withStores(cmd.Context(), func(s *stores) error {
				if err := s.users.Create(cmd.Context(), user); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user %s created with id %d\n", user.PNO, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&rank, "rank", "", "Rank")
	cmd.Flags().StringVar(&designation, "designation", "", "Designation, e.g. FSI or Pilot")
	cmd.Flags().StringVar(&password, "password", "", "Login password")
	cmd.Flags().StringVar(&pin, "pin", "", "Signing PIN")
	return cmd
}

func newUser(pno, name, rank, designation, password, pin string) (*domain.User, error) {
	pno = strings.TrimSpace(pno)
	if pno == "" {
		return nil, errors.New("pno is required")
	}
	if password == "" || pin == "" {
		return nil, errors.New("--password and --pin are required")
	}
	passwordHash, err := identity.HashSecret(password)
	if err != nil {
		return nil, fmt.Errorf("password: %w", err)
	}
	pinHash, err := identity.HashSecret(pin)
	if err != nil {
		return nil, fmt.Errorf("pin: %w", err)
	}
	return &domain.User{
		PNO:          pno,
		FullName:     strings.TrimSpace(name),
		Rank:         rank,
		Designation:  designation,
		PasswordHash: passwordHash,
		PINHash:      pinHash,
		Active:       true,
	}, nil
}
