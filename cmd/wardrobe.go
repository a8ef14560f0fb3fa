package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dressi-app/dressi/internal/backend"
	"github.com/dressi-app/dressi/internal/notify"
	"github.com/spf13/cobra"
)

func newWardrobeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wardrobe",
		Short: "List the outfits saved to your wardrobe",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			user, err := signedInUser(store)
			if err != nil {
				return err
			}

			items, err := a.client().Wardrobe(cmd.Context(), user.Token)
			if errors.Is(err, backend.ErrUnauthorized) {
				return fmt.Errorf("your session has expired, run `dressi login` again")
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "Your wardrobe is empty. Save looks with `dressi curated save`.")
				return nil
			}
			for _, item := range items {
				tags := ""
				if len(item.Tags) > 0 {
					tags = " [" + strings.Join(item.Tags, ", ") + "]"
				}
				fmt.Fprintf(out, "%-40s %s%s\n", item.Name, item.Image, tags)
			}
			return nil
		},
	}

	cmd.AddCommand(newWardrobeDeleteCmd(a))
	return cmd
}

func newWardrobeDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an outfit from your wardrobe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			user, err := signedInUser(store)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			banner := notify.New(notify.DefaultDelay, notify.WithOnChange(func(b notify.Banner, visible bool) {
				if visible {
					fmt.Fprintf(out, "[%s] %s\n", b.Kind, b.Message)
				}
			}))
			defer banner.Dismiss()

			if err := a.client().DeleteWardrobeItem(cmd.Context(), user.Token, args[0]); err != nil {
				banner.Error("Could not delete item. Please try again.")
				return err
			}
			banner.Success("Item deleted.")
			return nil
		},
	}
}
