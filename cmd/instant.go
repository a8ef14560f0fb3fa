package cmd

import (
	"fmt"
	"strings"

	"github.com/dressi-app/dressi/internal/instant"
	"github.com/spf13/cobra"
)

func newInstantCmd(a *app) *cobra.Command {
	var count int

	keys := make([]string, len(instant.Vibes))
	for i, v := range instant.Vibes {
		keys[i] = v.Key
	}

	cmd := &cobra.Command{
		Use:   "instant <vibe>",
		Short: "Get one outfit for a vibe, no quiz needed",
		Long: `Picks an outfit for one of the quick vibes: ` + strings.Join(keys, ", ") + `.

Each pick in a run avoids the looks already shown.`,
		Example: `  # One look for a date night
  dressi instant date

  # Three different work looks
  dressi instant work --count 3`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: keys,
		RunE: func(cmd *cobra.Command, args []string) error {
			vibe, ok := instant.LookupVibe(args[0])
			if !ok {
				return fmt.Errorf("unknown vibe %q, choose one of %s", args[0], strings.Join(keys, ", "))
			}

			picker := instant.NewPicker(a.client())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s, %s)\n", vibe.Label, vibe.Style, vibe.Occasion)
			for i := 0; i < count; i++ {
				o, err := picker.Pick(cmd.Context(), vibe.Key)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %s  %s\n", displayName(o.Name, o.Image), o.Image)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of looks to pick")
	return cmd
}
