package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dressi-app/dressi/internal/images"
	"github.com/dressi-app/dressi/internal/quiz"
	"github.com/dressi-app/dressi/internal/swipe"
	"github.com/dressi-app/dressi/internal/tui"
	"github.com/spf13/cobra"
)

func newSwipeCmd(a *app) *cobra.Command {
	var style, bodyShape string
	var weather, noWeather, prefetch bool

	cmd := &cobra.Command{
		Use:   "swipe",
		Short: "Take the style quiz and swipe through recommended outfits",
		Long: `Runs the style quiz, then opens a full-screen deck of recommended outfits.

The first looks come from the quick recommendation; more are generated in
the background and slot into the deck as they arrive. When every look has
been seen, the liked ones become your curated results.`,
		Example: `  # Answer the quiz interactively
  dressi swipe

  # Skip the quiz
  dressi swipe --style casual --body-shape pear --no-weather`,
		RunE: func(cmd *cobra.Command, args []string) error {
			answers := quiz.Answers{quiz.KeyStyle: style, quiz.KeyBodyShape: bodyShape}
			if err := promptMissing(cmd.InOrStdin(), cmd.OutOrStdout(), answers); err != nil {
				return err
			}

			useWeather := a.cfg.Swipe.UseWeather
			if weather {
				useWeather = true
			}
			if noWeather {
				useWeather = false
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			cfg := swipe.Config{
				Answers:    answers,
				UseWeather: useWeather,
				Queue:      a.cfg.Swipe.QueueOptions(),
				Store:      store,
			}
			if prefetch && a.cfg.ImageCacheDir != "" {
				cfg.Prefetcher = images.NewFetcher(a.cfg.ImageCacheDir)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Finding looks for you...")

			session, err := swipe.Start(cmd.Context(), a.client(), cfg)
			if err != nil {
				return fmt.Errorf("failed to load recommendations: %w", err)
			}
			defer session.Close()

			if summary := quiz.WeatherSummary(session.UseWeather(), session.Weather()); summary != "" {
				fmt.Fprintln(out, summary)
			}

			restore, err := a.logToFile("dressi.log")
			if err != nil {
				return err
			}
			program := tea.NewProgram(tui.New(session),
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(out),
			)
			final, runErr := program.Run()
			restore()
			if runErr != nil {
				return fmt.Errorf("swipe screen failed: %w", runErr)
			}

			model, ok := final.(tui.Model)
			if !ok {
				return nil
			}
			liked, done := model.Results()
			if !done {
				fmt.Fprintln(out, "Swipe session ended early. Run `dressi swipe` to start again.")
				return nil
			}

			fmt.Fprintf(out, "You liked %d look(s).\n", len(liked))
			for i, o := range liked {
				fmt.Fprintf(out, "  %d. %s\n", i+1, displayName(o.Name, o.Image))
			}
			if len(liked) > 0 {
				fmt.Fprintln(out, "Run `dressi curated` to review and save them to your wardrobe.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&style, "style", "", "Preferred style (Casual, Sporty, Formal, Party)")
	cmd.Flags().StringVar(&bodyShape, "body-shape", "", "Body shape (Rectangle, Hourglass, Pear, Round, Inverted Triangle)")
	cmd.Flags().BoolVar(&weather, "weather", false, "Tailor recommendations to the local weather")
	cmd.Flags().BoolVar(&noWeather, "no-weather", false, "Ignore the local weather")
	cmd.Flags().BoolVar(&prefetch, "prefetch", true, "Download outfit images into the cache while swiping")
	cmd.MarkFlagsMutuallyExclusive("weather", "no-weather")

	return cmd
}

// promptMissing asks each quiz question whose answer is blank. An option may
// be chosen by number or by name.
func promptMissing(in io.Reader, out io.Writer, answers quiz.Answers) error {
	reader := bufio.NewReader(in)
	for _, q := range quiz.Questions {
		if strings.TrimSpace(answers[q.Key]) != "" {
			continue
		}
		fmt.Fprintln(out, q.Prompt)
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}
		fmt.Fprint(out, "> ")

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read answer: %w", err)
		}
		line = strings.TrimSpace(line)
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(q.Options) {
			line = q.Options[n-1]
		}
		answers[q.Key] = line
	}
	return nil
}

func displayName(name, image string) string {
	if name != "" {
		return name
	}
	if image != "" {
		return image
	}
	return "Untitled look"
}
