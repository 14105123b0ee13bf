package main

import (
	"fmt"

	"github.com/spf13/cobra"

	authapp "github.com/dwikikusuma/collegemart/internal/auth/app"
)

func (c *cli) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the marketplace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.auth.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			renderFlash(c.out, "Login successful!", "")
			fmt.Fprintf(c.out, "Signed in as %s <%s>\n", u.Name, u.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (c *cli) signupCmd() *cobra.Command {
	var in authapp.SignUpInput
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a marketplace account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.auth.SignUp(cmd.Context(), in); err != nil {
				return err
			}
			renderFlash(c.out, "Registration successful! Sign in with: mart login", "")
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "full name")
	f.StringVar(&in.Email, "email", "", "email")
	f.StringVar(&in.Phone, "phone", "", "phone number")
	f.StringVar(&in.Gender, "gender", "male", "male, female or other")
	f.StringVar(&in.Password, "password", "", "password")
	f.StringVar(&in.ConfirmPassword, "confirm-password", "", "password again")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.auth.SignOut(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Signed out")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			u, ok := a.auth.CurrentUser(cmd.Context())
			if !ok {
				fmt.Fprintln(c.out, "Not signed in")
				return nil
			}
			fmt.Fprintf(c.out, "%s <%s>\n", u.Name, u.Email)
			return nil
		},
	}
}
