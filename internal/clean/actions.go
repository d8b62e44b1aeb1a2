package clean

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/hashimsd/articleforge/internal/config"
	"github.com/hashimsd/articleforge/pkg/ledger"
	"github.com/hashimsd/articleforge/pkg/transform"
)

// Action is the clean command: transform scraped article JSON into canonical
// records. Sources come from --source, sources.yaml, or discovery under the
// data root.
func Action(c *cli.Context) error {
	cfg := config.Load()
	logger, closeLog := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLog()

	dataRoot := c.String("data-dir")
	layout, err := config.LoadSources(c.String("sources"))
	if err != nil {
		return err
	}

	var sources []string
	switch {
	case c.IsSet("source"):
		sources = []string{c.String("source")}
	case c.IsSet("sources"):
		sources = layout.Sources
	default:
		sources, err = config.DiscoverSources(dataRoot)
		if err != nil {
			logger.Error("failed to discover sources", "data_dir", dataRoot, "error", err)
			return err
		}
		if len(sources) == 0 {
			logger.Warn("no source directories found", "data_dir", dataRoot)
			return nil
		}
	}

	workers := cfg.Workers
	if c.IsSet("workers") {
		workers = c.Int("workers")
	}

	// Force reprocessing requires naming a single source, so a typo cannot
	// wipe every transformed tree at once.
	if c.Bool("force") && !c.IsSet("source") {
		return fmt.Errorf("--force requires --source")
	}

	led, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		logger.Error("failed to open ledger", "path", cfg.LedgerPath, "error", err)
		return err
	}
	defer led.Close()

	runID, err := led.BeginRun("clean", "")
	if err != nil {
		logger.Error("failed to record run", "error", err)
		return err
	}

	logger.Info("starting data transformation", "data_dir", dataRoot, "sources", sources)

	pipeline := NewPipeline(transform.New(), led, logger, Options{
		Workers: workers,
		Force:   c.Bool("force"),
		RunID:   runID,
	})
	summary, runErr := pipeline.Run(c.Context, dataRoot, layout, sources)

	if err := led.FinishRun(runID); err != nil {
		logger.Warn("failed to finish run record", "error", err)
	}

	logger.Info("data transformation finished",
		"processed", summary.Processed, "failed", summary.Failed, "skipped", summary.Skipped)

	if runErr != nil {
		return fmt.Errorf("transformation interrupted: %w", runErr)
	}
	return nil
}
