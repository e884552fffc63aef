// Command moneymatters manages the cash-flow database: migrate creates or
// upgrades the schema, seed loads development data, and status reports row
// counts per entity.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/moneymatters/backend/internal/config"
	"github.com/moneymatters/backend/internal/seed"
	"github.com/moneymatters/backend/internal/storage"
	"github.com/moneymatters/backend/internal/storage/sqlite"
	"github.com/moneymatters/backend/pkg/logging"
)

var (
	configPath string
	cfg        config.Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "moneymatters",
		Short:        "Personal and business cash-flow data store",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
			maybeServeMetrics()
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "moneymatters.toml", "path to config file")

	root.AddCommand(migrateCmd(), seedCmd(), statusCmd())
	return root
}

func openStore() (storage.Store, error) {
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", cfg.Database.Path, err)
	}
	return store, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			slog.Info("Schema up to date", "path", cfg.Database.Path)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load development seed data (no-op if users already exist)",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			return seed.Run(cmd.Context(), store, time.Now())
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report row counts per entity",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			counts, err := store.Counts(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "users               %d\n", counts.Users)
			fmt.Fprintf(w, "accounts            %d\n", counts.Accounts)
			fmt.Fprintf(w, "transactions        %d\n", counts.Transactions)
			fmt.Fprintf(w, "bills               %d\n", counts.Bills)
			fmt.Fprintf(w, "income streams      %d\n", counts.IncomeStreams)
			fmt.Fprintf(w, "goals               %d\n", counts.Goals)
			fmt.Fprintf(w, "goal accounts       %d\n", counts.GoalAccounts)
			fmt.Fprintf(w, "alerts              %d\n", counts.Alerts)
			fmt.Fprintf(w, "forecast snapshots  %d\n", counts.ForecastSnapshots)
			fmt.Fprintf(w, "settings            %d\n", counts.Settings)
			return nil
		},
	}
}

// maybeServeMetrics exposes Prometheus metrics in the background when
// enabled. Runs once per process, from the root command's setup, so every
// subcommand honors the config.
func maybeServeMetrics() {
	if !cfg.Metrics.Enabled {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
}
