package main

import (
	"os"

	"github.com/andresuchdata/restock-engine/pkg/logger"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("restock failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "restock",
		Usage: "Suggest picking replenishment from warehouse inventory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:  "sales",
				Usage: "Replenish picking from confirmed sales",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "inventory", Usage: "Inventory export (path, s3://bucket/key or drive://ref)", Required: true},
					&cli.StringFlag{Name: "sales", Usage: "Confirmed sales export", Required: true},
				}, analysisFlags()...),
				Action: runSales,
			},
			{
				Name:  "levels",
				Usage: "Replenish picking slots below their minimum level",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "inventory", Usage: "Inventory export (path, s3://bucket/key or drive://ref)", Required: true},
					&cli.StringFlag{Name: "min-max", Usage: "Min/max rules per picking slot", Required: true},
				}, analysisFlags()...),
				Action: runLevels,
			},
			{
				Name:  "crosscheck",
				Usage: "Reconcile system stock against a warehouse count",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "system", Usage: "System inventory feed", Required: true},
					&cli.StringFlag{Name: "warehouse", Usage: "Warehouse inventory feed", Required: true},
					&cli.BoolFlag{Name: "group-by-lot", Usage: "Compare per SKU and lot instead of per SKU"},
				}, outputFlags()...),
				Action: runCrossCheck,
			},
			{
				Name:  "shelf-life",
				Usage: "Check inventory against minimum shelf-life limits",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "inventory", Usage: "Inventory export", Required: true},
					&cli.StringFlag{Name: "limits", Usage: "Minimum days per SKU", Required: true},
				}, outputFlags()...),
				Action: runShelfLife,
			},
			{
				Name:   "serve",
				Usage:  "Start the HTTP API",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "port", Usage: "Listen port, overrides SERVER_PORT"}},
				Action: runServe,
			},
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "out", Usage: "Write results to a .csv/.xlsx path or s3://bucket/key"},
		&cli.IntFlag{Name: "top", Usage: "Rows printed when --out is not set", Value: 20},
		&cli.StringFlag{Name: "work-dir", Usage: "Download directory for remote inputs", EnvVars: []string{"S3_DOWNLOAD_DIR"}},
	}
}

func analysisFlags() []cli.Flag {
	return append(outputFlags(),
		&cli.StringSliceFlag{Name: "valid-statuses", Usage: "Usable inventory statuses"},
		&cli.StringSliceFlag{Name: "ignored-locations", Usage: "Locations never used"},
		&cli.StringSliceFlag{Name: "picking-levels", Usage: "Level suffixes of picking locations"},
		&cli.StringSliceFlag{Name: "reserve-levels", Usage: "Level suffixes of reserve locations"},
		&cli.StringSliceFlag{Name: "reserve-prefixes", Usage: "Location prefixes treated as reserve"},
	)
}
