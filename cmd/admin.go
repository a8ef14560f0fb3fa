package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/dressi-app/dressi/internal/admin"
	"github.com/spf13/cobra"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Early-access registrations (admin accounts only)",
	}

	cmd.AddCommand(newAdminListCmd(a))
	cmd.AddCommand(newAdminExportCmd(a))
	cmd.AddCommand(newAdminDumpCmd(a))
	return cmd
}

func adminToken(a *app) (string, error) {
	store, err := a.openStore()
	if err != nil {
		return "", err
	}
	defer store.Close()
	u, err := signedInUser(store)
	if err != nil {
		return "", err
	}
	if !u.IsAdmin {
		return "", fmt.Errorf("%s is not an admin account", u.Email)
	}
	return u.Token, nil
}

func newAdminListCmd(a *app) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show one page of early-access registrations",
		Example: `  dressi admin list --page 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := adminToken(a)
			if err != nil {
				return err
			}
			view, err := admin.NewLister(a.client(), token).Load(cmd.Context(), page)
			if err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), view)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page to show")
	return cmd
}

func printView(out io.Writer, view admin.View) {
	for _, e := range view.Entries {
		consent := "no"
		if e.Consent {
			consent = "yes"
		}
		fmt.Fprintf(out, "%-36s %-40s %-4s %s\n", e.ID, e.Email, consent, e.CreatedAt)
	}
	fmt.Fprintf(out, "%s (page %d of %d)\n", view.Summary(), view.Page, view.TotalPages())
}

func newAdminExportCmd(a *app) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download every registration as a spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := adminToken(a)
			if err != nil {
				return err
			}
			path, err := admin.Export(cmd.Context(), a.client(), token, dir, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Export saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory for the export")
	return cmd
}

func newAdminDumpCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Fetch every page of registrations into a parquet file",
		Example: `  dressi admin dump --output early-access.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := adminToken(a)
			if err != nil {
				return err
			}
			n, err := admin.Dump(cmd.Context(), a.client(), token, output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d registrations to %s\n", n, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "early-access.parquet", "Parquet file to write")
	return cmd
}
