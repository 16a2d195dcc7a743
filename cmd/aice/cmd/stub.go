package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/salesaice/aice-go/apistub"
)

var stubPort int

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Run a local stub of the AICE API for development",
	Long: `Serves an in-memory fake of the AICE backend (auth, payment methods,
billing, dashboard) plus a fake card-tokenization provider. Log in with the
seeded demo account: ` + apistub.DemoEmail + ` / ` + apistub.DemoPassword + `.
API docs are served at /docs and /redoc.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stub := apistub.New(apistub.WithLogger(newLogger()))

		r := chi.NewRouter()
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})
		r.Mount("/", stub.Router())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", stubPort),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		done := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				done <- fmt.Errorf("stub server failed: %w", err)
				return
			}
			done <- nil
		}()

		printBanner()
		fmt.Printf("Stub API listening on port %d (demo login: %s / %s)\n",
			stubPort, apistub.DemoEmail, apistub.DemoPassword)

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			fmt.Printf("\nReceived %s, shutting down...\n", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("stub shutdown failed: %w", err)
			}
			return nil
		case err := <-done:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(stubCmd)
	stubCmd.Flags().IntVarP(&stubPort, "port", "p", 8087, "Port to listen on")
}
