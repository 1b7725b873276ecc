package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotelmerge/internal/adapters/observability"
	redisad "hotelmerge/internal/adapters/redis"
	"hotelmerge/internal/adapters/supplier"
	"hotelmerge/internal/amenity"
	"hotelmerge/internal/app"
	"hotelmerge/internal/domain"
	"hotelmerge/internal/mapping"
	"hotelmerge/internal/merge"
	"hotelmerge/internal/shared"
	mysqlrepo "hotelmerge/internal/storage/mysql"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var persist bool
	cmd := &cobra.Command{
		Use:   "ingestor [hotel_ids] [destination_ids]",
		Short: "Fetch supplier feeds, merge hotels and print the result as JSON",
		Long: `Selectors are comma-separated lists. Use "none" (or omit the argument)
to disable filtering on that axis.`,
		Args:         cobra.MaximumNArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, dests := app.NoFilter, app.NoFilter
			if len(args) > 0 {
				ids = args[0]
			}
			if len(args) > 1 {
				dests = args[1]
			}
			f, err := app.ParseFilter(ids, dests)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, f, persist)
		},
	}
	cmd.Flags().BoolVar(&persist, "persist", false, "upsert merged hotels into MySQL and evict cached copies")
	return cmd
}

func run(ctx context.Context, f domain.Filter, persist bool) error {
	cfg, err := shared.Load(".")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// stdout carries only the JSON result
	log.Logger = observability.NewLogger(cfg.AppEnv, os.Stderr)
	observability.Serve(cfg.MetricsAddr, observability.InitRegistry())

	suppliers, err := shared.LoadSuppliers(cfg.SuppliersFile)
	if err != nil {
		return err
	}
	vocab, err := shared.LoadVocabulary(cfg.AmenitiesFile)
	if err != nil {
		return err
	}
	mergeCfg, err := shared.LoadMerge(cfg.MergeFile)
	if err != nil {
		return err
	}
	adapters, err := supplier.NewAll(suppliers, cfg.SupplierRPS, cfg.FetchTimeout())
	if err != nil {
		return &domain.ConfigError{Path: cfg.SuppliersFile, Err: err}
	}

	log.Info().
		Int("suppliers", len(adapters)).
		Int("workers", cfg.FetchWorkers).
		Strs("ids", f.IDs).
		Msg("ingestor starting")

	rec := app.NewReconciler(mapping.New(), amenity.New(vocab), merge.NewEngine(mergeCfg, nil), cfg.FetchWorkers)
	res, err := rec.Run(ctx, adapters, f)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(res.Hotels, "", "  ")
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(os.Stdout, string(out)); err != nil {
		return err
	}
	if cfg.OutputFile != "" {
		if err := os.WriteFile(cfg.OutputFile, append(out, '\n'), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", cfg.OutputFile, err)
		}
	}

	if persist {
		if err := publish(ctx, cfg, res); err != nil {
			return err
		}
	}
	log.Info().Str("run_id", res.RunID).Int("hotels", len(res.Hotels)).Msg("ingestion completed")
	return nil
}

func publish(ctx context.Context, cfg shared.Config, res app.Result) error {
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db.Ping: %w", err)
	}
	log.Info().Msg("db ping ok")

	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()

	return app.NewPublishService(mysqlrepo.New(db), cache, cfg.PersistWorkers).Publish(ctx, res.Hotels, res.Seq)
}
