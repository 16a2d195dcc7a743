package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/salesaice/aice-go/accounts"
	"github.com/salesaice/aice-go/billing"
	"github.com/salesaice/aice-go/dashboard"
	"github.com/salesaice/aice-go/session"
	"github.com/salesaice/aice-go/storage/bbolt"
	"github.com/salesaice/aice-go/transport"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var (
	apiURL  string
	dataDir string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "aice",
	Short: "AICE is the terminal client for the AICE sales dashboard",
	Long: `Terminal client for the AICE subscription, billing and call-center
dashboard API: manage your session, payment methods, invoices and agents.`,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", envOr("AICE_API_URL", "http://localhost:8087"), "Base URL of the AICE API")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", envOr("AICE_DATA_DIR", defaultDataDir()), "Directory for the session database")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".aice"
	}
	return filepath.Join(home, ".aice")
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// app bundles the wired-up clients a command needs. Close releases the
// session database.
type app struct {
	session   *session.Store
	api       *transport.Client
	accounts  *accounts.Client
	billing   *billing.Client
	payments  *billing.Manager
	dashboard *dashboard.Client

	store *bbolt.Store
}

func openApp() (*app, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	store, err := bbolt.NewStoreFromFile(filepath.Join(dataDir, "session.db"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}

	logger := newLogger()
	sess := session.New(apiURL, store, session.WithLogger(logger))
	api := transport.New(apiURL, sess, transport.WithLogger(logger))

	return &app{
		session:   sess,
		api:       api,
		accounts:  accounts.NewClient(api),
		billing:   billing.NewClient(api),
		payments:  billing.NewManager(api, nil, billing.WithLogger(logger)),
		dashboard: dashboard.NewClient(api),
		store:     store,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) requireLogin() error {
	if !a.session.LoggedIn() {
		return fmt.Errorf("not logged in; run 'aice login' first")
	}
	return nil
}
