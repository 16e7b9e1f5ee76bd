package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func loginCmd(f *flags) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token for the storefront",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := bootstrap(*f)
			if err != nil {
				return err
			}
			defer func() { _ = e.logger.Sync() }()

			if token == "" {
				if token, err = promptToken(e.cfg.API.BaseURL); err != nil {
					return err
				}
			}
			if err := e.session.Login(strings.TrimSpace(token)); err != nil {
				return err
			}
			e.logger.Info("signed in")
			fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "API token (prompted when omitted)")
	return cmd
}

func logoutCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored API token",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := bootstrap(*f)
			if err != nil {
				return err
			}
			defer func() { _ = e.logger.Sync() }()

			if err := e.session.Logout(); err != nil {
				return err
			}
			e.logger.Info("signed out")
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

// promptToken asks for the token with a masked huh input.
func promptToken(baseURL string) (string, error) {
	var token string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API token").
				Description("Token for "+baseURL).
				EchoMode(huh.EchoModePassword).
				Value(&token).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("token is required")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return token, nil
}
