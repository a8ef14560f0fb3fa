package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dressi-app/dressi/internal/auth"
	"github.com/dressi-app/dressi/internal/backend"
	"github.com/dressi-app/dressi/internal/config"
	"github.com/dressi-app/dressi/internal/localstore"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app carries the state shared by every subcommand once the root has run.
type app struct {
	configPath string
	logLevel   string
	apiURL     string

	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "dressi",
		Short: "Swipe through outfit recommendations and curate your wardrobe",
		Long: `Dressi recommends outfits from a short style quiz.

Swipe through the recommendations in the terminal, save the looks you like
to your wardrobe, or run a local web service that hosts swipe sessions.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			return a.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", config.DefaultPath, "Path to the config file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "Backend base URL (overrides config)")

	// Add subcommands
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newSwipeCmd(a))
	cmd.AddCommand(newCuratedCmd(a))
	cmd.AddCommand(newWardrobeCmd(a))
	cmd.AddCommand(newInstantCmd(a))
	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newSignupCmd(a))
	cmd.AddCommand(newLogoutCmd(a))
	cmd.AddCommand(newAdminCmd(a))
	cmd.AddCommand(newEarlyAccessCmd(a))
	cmd.AddCommand(newConfigCmd(a))

	return cmd
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.apiURL != "" {
		cfg.APIBaseURL = a.apiURL
	}
	a.cfg = cfg

	return a.setupLogging(cmd.ErrOrStderr())
}

func (a *app) setupLogging(w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(a.cfg.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level %q: %w", a.cfg.LogLevel, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return nil
}

// logToFile sends logs to the store directory while a full-screen program
// owns the terminal. The returned func closes the file.
func (a *app) logToFile(name string) (func(), error) {
	if err := os.MkdirAll(a.cfg.StoreDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	path := filepath.Join(a.cfg.StoreDir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	prev := slog.Default()
	if err := a.setupLogging(f); err != nil {
		f.Close()
		return nil, err
	}
	return func() {
		slog.SetDefault(prev)
		f.Close()
	}, nil
}

func (a *app) openStore() (*localstore.Store, error) {
	store, err := localstore.Open(a.cfg.StoreDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return store, nil
}

func (a *app) client() *backend.Client {
	return backend.NewClient(a.cfg.APIBaseURL)
}

// signedInUser returns the stored profile or an error telling the user to
// log in first.
func signedInUser(store *localstore.Store) (*auth.User, error) {
	u := auth.Load(store)
	if !u.SignedIn() {
		return nil, fmt.Errorf("you are not logged in, run `dressi login` first")
	}
	return u, nil
}
