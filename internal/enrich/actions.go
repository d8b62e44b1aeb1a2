package enrich

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/hashimsd/articleforge/internal/config"
	"github.com/hashimsd/articleforge/pkg/ledger"
	"github.com/hashimsd/articleforge/pkg/oracle"
)

// Action is the enrich command: delta-select canonical articles and enrich
// them through the configured provider.
func Action(c *cli.Context) error {
	cfg := config.Load()
	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()

	dataRoot := c.String("data-dir")
	layout, err := config.LoadSources(c.String("sources"))
	if err != nil {
		return err
	}

	sources := layout.Sources
	if c.IsSet("source") {
		sources = []string{c.String("source")}
	}

	workers := cfg.Workers
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}

	// Force reprocessing requires naming a single source, so a typo cannot
	// wipe every enriched tree at once.
	if c.Bool("force") && !c.IsSet("source") {
		return fmt.Errorf("--force requires --source")
	}

	client, err := oracle.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create oracle client", "error", err)
		return err
	}
	if err := client.Ready(c.Context); err != nil {
		logger.Error("enrichment provider not ready", "provider", cfg.Provider, "error", err)
		return err
	}

	led, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		logger.Error("failed to open ledger", "path", cfg.LedgerPath, "error", err)
		return err
	}
	defer led.Close()

	runID, err := led.BeginRun("enrich", cfg.Provider)
	if err != nil {
		logger.Error("failed to record run", "error", err)
		return err
	}

	logger.Info("starting enrichment", "provider", cfg.Provider, "data_dir", dataRoot, "sources", sources)

	pipeline := NewPipeline(client, led, logger, Options{
		Workers:      workers,
		MinBodyChars: cfg.MinBodyChars,
		Force:        c.Bool("force"),
		RunID:        runID,
	})
	summary, runErr := pipeline.Run(c.Context, dataRoot, layout, sources)

	if err := led.FinishRun(runID); err != nil {
		logger.Warn("failed to finish run record", "error", err)
	}

	logger.Info("enrichment finished",
		"processed", summary.Processed, "failed", summary.Failed, "skipped", summary.Skipped)

	if runErr != nil {
		return fmt.Errorf("enrichment interrupted: %w", runErr)
	}
	return nil
}
