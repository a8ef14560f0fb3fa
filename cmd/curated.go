package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dressi-app/dressi/internal/auth"
	"github.com/dressi-app/dressi/internal/curated"
	"github.com/dressi-app/dressi/internal/localstore"
	"github.com/dressi-app/dressi/internal/notify"
	"github.com/dressi-app/dressi/internal/outfit"
	"github.com/spf13/cobra"
)

func newCuratedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curated",
		Short: "Show the looks you liked in your last swipe session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withTracker(a, cmd.OutOrStdout(), func(store *localstore.Store, tracker *curated.Tracker) error {
				liked, err := loadLiked(store)
				if err != nil {
					return err
				}
				printEntries(cmd.OutOrStdout(), tracker.Entries(liked))
				return nil
			})
		},
	}

	cmd.AddCommand(newCuratedSaveCmd(a))
	cmd.AddCommand(newCuratedRetakeCmd(a))
	return cmd
}

func newCuratedSaveCmd(a *app) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "save [number...]",
		Short: "Save liked looks to your wardrobe",
		Example: `  # Save the first and third look
  dressi curated save 1 3

  # Save everything
  dressi curated save --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("pass the numbers of the looks to save, or --all")
			}
			out := cmd.OutOrStdout()
			return withTracker(a, out, func(store *localstore.Store, tracker *curated.Tracker) error {
				liked, err := loadLiked(store)
				if err != nil {
					return err
				}

				picks := make([]int, 0, len(args))
				if all {
					for i := range liked {
						picks = append(picks, i)
					}
				}
				for _, arg := range args {
					n, err := strconv.Atoi(arg)
					if err != nil || n < 1 || n > len(liked) {
						return fmt.Errorf("no look numbered %q, choose 1 to %d", arg, len(liked))
					}
					picks = append(picks, n-1)
				}

				var failed int
				for _, i := range picks {
					status, err := tracker.Save(cmd.Context(), liked[i])
					if errors.Is(err, curated.ErrLoginRequired) {
						return fmt.Errorf("%w: run `dressi login` first", err)
					}
					if err != nil {
						failed++
					}
					fmt.Fprintf(out, "%d. %s: %s\n", i+1, displayName(liked[i].Name, liked[i].Image), status)
				}
				if failed > 0 {
					return fmt.Errorf("%d look(s) could not be saved", failed)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Save every liked look")
	return cmd
}

func newCuratedRetakeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "retake",
		Short: "Forget the finished style test so the quiz runs again",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := curated.Retake(store); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Style test reset. Run `dressi swipe` to take it again.")
			return nil
		},
	}
}

// withTracker opens the store and a save tracker whose banners are printed
// to out.
func withTracker(a *app, out io.Writer, fn func(*localstore.Store, *curated.Tracker) error) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	banner := notify.New(notify.DefaultDelay, notify.WithOnChange(func(b notify.Banner, visible bool) {
		if visible {
			fmt.Fprintf(out, "[%s] %s\n", b.Kind, b.Message)
		}
	}))
	defer banner.Dismiss()

	tracker := curated.NewTracker(store, a.client(), func() string {
		if u := auth.Load(store); u != nil {
			return u.Token
		}
		return ""
	}, banner)
	defer tracker.Close()

	return fn(store, tracker)
}

func loadLiked(store *localstore.Store) ([]outfit.Outfit, error) {
	if err := curated.RequireCompleted(store); err != nil {
		if errors.Is(err, curated.ErrNoStyleTest) {
			return nil, fmt.Errorf("%w, run `dressi swipe` first", err)
		}
		return nil, err
	}
	return curated.ResolveLiked(store, nil)
}

func printEntries(out io.Writer, entries []curated.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "You didn't like any looks this time. Run `dressi curated retake` to try again.")
		return
	}
	for i, e := range entries {
		fmt.Fprintf(out, "%2d. %-40s %-7s %s\n", i+1, displayName(e.Outfit.Name, e.Outfit.Image), e.Status, e.Outfit.Image)
	}
}
