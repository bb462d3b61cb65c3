package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-resume-screener/config"
	_ "go-resume-screener/docs" // Important for Swagger

	"github.com/spf13/cobra"
)

// @title           Resume Screener API
// @version         1.0
// @description     Resume ingestion, candidate search and job ranking.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()

	root := &cobra.Command{
		Use:           "resume-screener",
		Short:         "Resume ingestion and ranking backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("log-mode", "", "production or development (overrides LOG_MODE)")
	_ = v.BindPFlag("LOG_MODE", root.PersistentFlags().Lookup("log-mode"))

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the ingestion workers",
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return v.BindPFlag("WORKER_CONCURRENCY", cmd.Flags().Lookup("workers"))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			noWorkers, _ := cmd.Flags().GetBool("no-workers")
			return run(cmd.Context(), v, runOptions{http: true, workers: !noWorkers})
		},
	}
	serve.Flags().String("port", "", "HTTP port (overrides PORT)")
	serve.Flags().Int("workers", 0, "ingestion worker count (overrides WORKER_CONCURRENCY)")
	serve.Flags().Bool("no-workers", false, "serve HTTP only")
	_ = v.BindPFlag("PORT", serve.Flags().Lookup("port"))

	worker := &cobra.Command{
		Use:   "worker",
		Short: "Run only the ingestion workers",
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return v.BindPFlag("WORKER_CONCURRENCY", cmd.Flags().Lookup("workers"))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), v, runOptions{workers: true})
		},
	}
	worker.Flags().Int("workers", 0, "ingestion worker count (overrides WORKER_CONCURRENCY)")

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMigrate(cmd.Context(), v)
		},
	}

	root.AddCommand(serve, worker, migrate)
	return root
}
