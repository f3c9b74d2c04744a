package cmd

import (
	"context"
	"fmt"

	"evcharge-client/internal/data/entity"
	"evcharge-client/internal/dto/request"
	"evcharge-client/internal/wire"

	"github.com/spf13/cobra"
)

func newLoginCommand(app *wire.App) *cobra.Command {
	login := &cobra.Command{
		Use:   "login",
		Short: "Log in as an EV owner or a station operator",
	}

	var ownerReq request.OwnerLoginRequest
	owner := &cobra.Command{
		Use:   "owner",
		Short: "Log in with NIC and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := run(cmd, func(ctx context.Context) (*entity.Session, error) {
				return app.Service.Auth.LoginOwner(ctx, &ownerReq)
			})
			if err != nil {
				return err
			}
			printSession(cmd.OutOrStdout(), session)
			return nil
		},
	}
	owner.Flags().StringVar(&ownerReq.NIC, "nic", "", "national identity card number")
	owner.Flags().StringVar(&ownerReq.Password, "password", "", "account password")

	var userReq request.UserLoginRequest
	operator := &cobra.Command{
		Use:   "operator",
		Short: "Log in with email and password",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := run(cmd, func(ctx context.Context) (*entity.Session, error) {
				return app.Service.Auth.LoginUser(ctx, &userReq)
			})
			if err != nil {
				return err
			}
			printSession(cmd.OutOrStdout(), session)
			return nil
		},
	}
	operator.Flags().StringVar(&userReq.Email, "email", "", "operator email")
	operator.Flags().StringVar(&userReq.Password, "password", "", "account password")

	login.AddCommand(owner, operator)
	return login
}

func newLogoutCommand(app *wire.App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear cached bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := run(cmd, func(ctx context.Context) (struct{}, error) {
				return struct{}{}, app.Service.Auth.Logout(ctx)
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoAmICommand(app *wire.App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.Service.Sessions.Require(cmd.Context())
			if err != nil {
				return err
			}
			printSession(cmd.OutOrStdout(), session)
			return nil
		},
	}
}

func newRegisterCommand(app *wire.App) *cobra.Command {
	var req request.RegisterOwnerRequest
	register := &cobra.Command{
		Use:   "register",
		Short: "Register a new EV owner account",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := run(cmd, func(ctx context.Context) (*entity.Owner, error) {
				return app.Service.Auth.RegisterOwner(ctx, &req)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s %s (%s). You can now log in.\n", owner.FirstName, owner.LastName, owner.NIC)
			return nil
		},
	}

	flags := register.Flags()
	flags.StringVar(&req.NIC, "nic", "", "national identity card number")
	flags.StringVar(&req.FirstName, "first-name", "", "first name")
	flags.StringVar(&req.LastName, "last-name", "", "last name")
	flags.StringVar(&req.Email, "email", "", "email address")
	flags.StringVar(&req.Phone, "phone", "", "phone number")
	flags.StringVar(&req.Password, "password", "", "account password")
	return register
}
