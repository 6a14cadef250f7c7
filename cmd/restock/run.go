package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/andresuchdata/restock-engine/internal/api"
	"github.com/andresuchdata/restock-engine/internal/cache"
	"github.com/andresuchdata/restock-engine/internal/config"
	"github.com/andresuchdata/restock-engine/internal/drive"
	"github.com/andresuchdata/restock-engine/internal/export"
	"github.com/andresuchdata/restock-engine/internal/ingest"
	"github.com/andresuchdata/restock-engine/internal/restock"
	"github.com/andresuchdata/restock-engine/internal/service"
	"github.com/andresuchdata/restock-engine/internal/source"
	"github.com/andresuchdata/restock-engine/internal/storage"
	"github.com/andresuchdata/restock-engine/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

type configKey struct{}

func setup(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := c.String("log-level")
	if level == "" {
		level = cfg.Log.Level
	}
	logger.Init(level)
	logger.UseWriter(zerolog.ConsoleWriter{Out: c.App.ErrWriter, TimeFormat: "2006-01-02 15:04:05"})

	c.Context = context.WithValue(c.Context, configKey{}, cfg)
	return nil
}

func configFrom(c *cli.Context) (*config.Config, error) {
	cfg, ok := c.Context.Value(configKey{}).(*config.Config)
	if !ok || cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

// session holds what one analysis command needs.
type session struct {
	resolver *source.Resolver
	service  *service.RestockService
}

func newSession(c *cli.Context) (*session, error) {
	cfg, err := configFrom(c)
	if err != nil {
		return nil, err
	}

	workDir := c.String("work-dir")
	if workDir == "" {
		workDir = cfg.Storage.DownloadDir
	}
	resolver, err := newResolver(c.Context, cfg, workDir)
	if err != nil {
		return nil, err
	}

	return &session{
		resolver: resolver,
		service:  service.NewRestockService(cfg.Engine, cache.NewNoopAnalysisCache(), nil),
	}, nil
}

func newResolver(ctx context.Context, cfg *config.Config, workDir string) (*source.Resolver, error) {
	var opts []source.Option

	if cfg.Storage.Enabled() {
		client, err := storage.NewS3Client(storage.S3Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Region:    cfg.Storage.Region,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init object storage: %w", err)
		}
		opts = append(opts, source.WithBuckets(client))
	}

	if cfg.Drive.Enabled() {
		svc, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to init google drive: %w", err)
		}
		opts = append(opts, source.WithDrive(drive.NewDownloader(svc, filepath.Join(workDir, "drive"))))
	}

	return source.NewResolver(workDir, opts...), nil
}

func ruleOverrides(c *cli.Context) *restock.Config {
	override := restock.Config{
		ValidStatuses:    c.StringSlice("valid-statuses"),
		IgnoredLocations: c.StringSlice("ignored-locations"),
		PickingLevels:    c.StringSlice("picking-levels"),
		ReserveLevels:    c.StringSlice("reserve-levels"),
		ReservePrefixes:  c.StringSlice("reserve-prefixes"),
	}
	if override.IsZero() {
		return nil
	}
	return &override
}

func runSales(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}

	paths, err := s.resolver.FetchAll(c.Context, c.String("inventory"), c.String("sales"))
	if err != nil {
		return err
	}
	inventory, err := ingest.LoadInventory(paths[0])
	if err != nil {
		return err
	}
	sales, err := ingest.LoadSales(paths[1])
	if err != nil {
		return err
	}

	resp, err := s.service.AnalyzeSales(c.Context, service.AnalysisRequest{
		Inventory: inventory,
		Sales:     sales,
		Rules:     ruleOverrides(c),
	})
	if err != nil {
		return err
	}
	return s.emitAnalysis(c, resp)
}

func runLevels(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}

	paths, err := s.resolver.FetchAll(c.Context, c.String("inventory"), c.String("min-max"))
	if err != nil {
		return err
	}
	inventory, err := ingest.LoadInventory(paths[0])
	if err != nil {
		return err
	}
	rules, err := ingest.LoadRules(paths[1])
	if err != nil {
		return err
	}

	resp, err := s.service.AnalyzeLevels(c.Context, service.AnalysisRequest{
		Inventory: inventory,
		MinMax:    rules,
		Rules:     ruleOverrides(c),
	})
	if err != nil {
		return err
	}
	return s.emitAnalysis(c, resp)
}

func runCrossCheck(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}

	paths, err := s.resolver.FetchAll(c.Context, c.String("system"), c.String("warehouse"))
	if err != nil {
		return err
	}
	system, err := ingest.LoadCrossCheck(paths[0])
	if err != nil {
		return err
	}
	warehouse, err := ingest.LoadCrossCheck(paths[1])
	if err != nil {
		return err
	}

	resp, err := s.service.CrossCheck(c.Context, service.CrossCheckRequest{
		System:     system,
		Warehouse:  warehouse,
		GroupByLot: c.Bool("group-by-lot"),
	})
	if err != nil {
		return err
	}

	table := export.CrossCheckTable(resp.Results)
	if out := c.String("out"); out != "" {
		return s.publish(c.Context, out, table)
	}
	printLines(c.App.Writer,
		fmt.Sprintf("run %s: %d rows, %d with difference", resp.RunID, resp.Summary.Rows, resp.Summary.WithDifference),
	)
	printRejected(c.App.Writer, resp.Rejected)
	return printTable(c.App.Writer, table, c.Int("top"))
}

func runShelfLife(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}

	paths, err := s.resolver.FetchAll(c.Context, c.String("inventory"), c.String("limits"))
	if err != nil {
		return err
	}
	inventory, err := ingest.LoadInventory(paths[0])
	if err != nil {
		return err
	}
	limits, err := ingest.LoadShelfLifeLimits(paths[1])
	if err != nil {
		return err
	}

	resp, err := s.service.ShelfLife(c.Context, service.ShelfLifeRequest{Inventory: inventory, Limits: limits})
	if err != nil {
		return err
	}

	table := export.ShelfLifeTable(resp.Results)
	if out := c.String("out"); out != "" {
		return s.publish(c.Context, out, table)
	}
	printLines(c.App.Writer,
		fmt.Sprintf("run %s: %d checked, %d non-compliant", resp.RunID, resp.Summary.Checked, resp.Summary.NonCompliant),
	)
	printRejected(c.App.Writer, resp.Rejected)
	return printTable(c.App.Writer, table, c.Int("top"))
}

func (s *session) emitAnalysis(c *cli.Context, resp *service.AnalysisResponse) error {
	suggestions := export.SuggestionsTable(resp.Suggestions)
	missing := export.MissingTable(resp.MissingProducts)

	if out := c.String("out"); out != "" {
		return s.publish(c.Context, out, suggestions, missing)
	}

	sum := resp.Summary
	printLines(c.App.Writer,
		fmt.Sprintf("run %s (%s): %d evaluated, %d need restock, %d ok, %d missing, %d unmatched, %d without source",
			resp.RunID, resp.Mode, sum.Evaluated, sum.NeedsRestock, sum.OK, sum.Missing, sum.Unmatched, sum.NoSource),
		fmt.Sprintf("inventory: %d usable, %d unusable records", sum.UsableRecords, sum.UnusableRecords),
	)
	printRejected(c.App.Writer, resp.Rejected)
	if err := printTable(c.App.Writer, suggestions, c.Int("top")); err != nil {
		return err
	}
	if len(missing.Rows) > 0 {
		printLines(c.App.Writer, "", "missing products:")
		return printTable(c.App.Writer, missing, c.Int("top"))
	}
	return nil
}

func runServe(c *cli.Context) error {
	cfg, err := configFrom(c)
	if err != nil {
		return err
	}
	if port := c.String("port"); port != "" {
		cfg.Server.Port = port
	}
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return api.NewServer(cfg).Run(ctx)
}
