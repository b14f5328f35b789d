// Package cmd provides CLI commands for the seihyo tool.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/seihyo/seihyo-cli/config"
	"github.com/seihyo/seihyo-cli/pkg/affiliations"
	"github.com/seihyo/seihyo-cli/pkg/db"
	"github.com/seihyo/seihyo-cli/pkg/logging"
	"github.com/seihyo/seihyo-cli/pkg/mentions"
	"github.com/seihyo/seihyo-cli/pkg/mentions/resolver"
	"github.com/seihyo/seihyo-cli/pkg/politicians"
)

// engine bundles the wired collaborators for one command invocation.
type engine struct {
	pool  *pgxpool.Pool
	cache *redis.Client
	log   logging.Logger

	mentionRepo mentions.Repository
	affRepo     affiliations.Repository
	classifier  *resolver.Classifier
	reconciler  *affiliations.Reconciler
}

// buildEngine connects to the configured backends and wires the resolution
// pipeline. Callers must close() when done.
func buildEngine(ctx context.Context, cfg *config.CLIConfig, component string) (*engine, error) {
	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}
	log := logging.NewLogger(&logging.Config{
		Level:     level,
		Component: component,
	})

	pool, err := db.Connect(ctx, cfg.DBConfig())
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	reg := prometheus.NewRegistry()
	if _, err := db.RegisterPoolStatsCollector(pool, "seihyo", component, reg); err != nil {
		pool.Close()
		return nil, fmt.Errorf("registering pool metrics: %w", err)
	}
	metrics := resolver.NewMetrics(reg)

	var registry politicians.Registry = politicians.NewPostgresRegistry(pool)
	var cache *redis.Client
	if cfg.Redis != nil && cfg.Redis.Enabled {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		registry = politicians.NewCachedRegistry(registry, cache, cfg.RedisTTL(), log)
	}

	resolverCfg := cfg.ResolverConfig()
	oracle := resolver.NewLLMOracle(resolverCfg.Oracle)
	finder := resolver.NewCandidateFinder(registry, resolverCfg)
	arbitrator := resolver.NewMatchArbitrator(oracle, log)

	mentionRepo := mentions.NewPostgresRepository(pool)
	affRepo := affiliations.NewPostgresRepository(pool)

	return &engine{
		pool:        pool,
		cache:       cache,
		log:         log,
		mentionRepo: mentionRepo,
		affRepo:     affRepo,
		classifier:  resolver.NewClassifier(finder, arbitrator, mentionRepo, resolverCfg, log, metrics),
		reconciler:  affiliations.NewReconciler(mentionRepo, affRepo, log),
	}, nil
}

func (e *engine) close() {
	if e.cache != nil {
		e.cache.Close()
	}
	if e.pool != nil {
		e.pool.Close()
	}
}

// resolveFormat returns the effective output format: the flag when set,
// otherwise the configured default.
func resolveFormat(cfg *config.CLIConfig, flag string) (config.OutputFormat, error) {
	format := cfg.OutputFormat
	if flag != "" {
		format = config.OutputFormat(flag)
	}
	if !format.IsValid() {
		return "", fmt.Errorf("invalid output format %q (must be text or json)", format)
	}
	return format, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// groupFilter converts the --group flag value into a filter. Zero means
// all groups.
func groupFilter(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}

// parseDate parses a YYYY-MM-DD flag value.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}
