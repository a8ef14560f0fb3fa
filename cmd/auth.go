package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/dressi-app/dressi/internal/auth"
	"github.com/dressi-app/dressi/internal/backend"
	"github.com/spf13/cobra"
)

func newLoginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to your Dressi account",
		Long: `Signs in and keeps the session in the local store so saving looks and
browsing the wardrobe work. Missing values are read from standard input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			email = ask(reader, out, "Email", email)
			password = ask(reader, out, "Password", password)
			email = strings.TrimSpace(email)

			if err := auth.ValidateLogin(email, password); err != nil {
				return err
			}

			resp, err := a.client().Login(cmd.Context(), backend.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}
			return saveSession(a, out, auth.FromAuthResponse(resp, email, ""))
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var form auth.SignupForm

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a Dressi account",
		Long: `Creates an account and signs in. Passwords need at least eight characters,
an uppercase letter and a special character.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			form.Name = ask(reader, out, "Name", form.Name)
			form.Email = strings.TrimSpace(ask(reader, out, "Email", form.Email))
			form.Password = ask(reader, out, "Password", form.Password)
			form.ConfirmPassword = ask(reader, out, "Confirm password", form.ConfirmPassword)

			if err := form.Validate(); err != nil {
				return err
			}

			resp, err := a.client().Signup(cmd.Context(), backend.Credentials{
				Email:       form.Email,
				Password:    form.Password,
				DisplayName: strings.TrimSpace(form.Name),
			})
			if err != nil {
				return err
			}
			return saveSession(a, out, auth.FromAuthResponse(resp, form.Email, form.Name))
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "Display name")
	cmd.Flags().StringVar(&form.Email, "email", "", "Account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "Account password")
	cmd.Flags().StringVar(&form.ConfirmPassword, "confirm-password", "", "Repeat the password")
	cmd.Flags().BoolVar(&form.AcceptTerms, "accept-terms", false, "Accept the terms of service")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := auth.Clear(store); err != nil {
				return fmt.Errorf("failed to sign out: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func saveSession(a *app, out io.Writer, u auth.User) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()
	if err := auth.Save(store, u); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	fmt.Fprintf(out, "Signed in as %s.\n", u.DisplayName)
	return nil
}

// ask returns current when set, otherwise prompts for a line.
func ask(reader *bufio.Reader, out io.Writer, label, current string) string {
	if current != "" {
		return current
	}
	fmt.Fprintf(out, "%s: ", label)
	line, _ := reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
