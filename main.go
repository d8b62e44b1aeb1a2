package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/hashimsd/articleforge/internal/clean"
	"github.com/hashimsd/articleforge/internal/enrich"
	"github.com/hashimsd/articleforge/internal/status"
)

func main() {
	app := &cli.App{
		Name:  "articleforge",
		Usage: "Normalize scraped news articles and enrich them with NLP metadata",
		Commands: []*cli.Command{
			{
				Name:  "clean",
				Usage: "Transform raw scraped article JSON into canonical cleaned records",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "data-dir",
						Value: "data",
						Usage: "Root directory containing per-source article trees",
					},
					&cli.StringFlag{
						Name:  "sources",
						Usage: "Path to a sources.yaml describing the corpus layout",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Process only this source",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker pool size (1 = sequential)",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Delete the source's transformed output first, reprocessing everything",
					},
				},
				Action: clean.Action,
			},
			{
				Name:  "enrich",
				Usage: "Enrich canonical records with summary, keywords, and entities from the configured model provider",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "data-dir",
						Value: "data",
						Usage: "Root directory containing per-source article trees",
					},
					&cli.StringFlag{
						Name:  "sources",
						Usage: "Path to a sources.yaml describing the corpus layout",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Process only this source",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Worker pool size (1 = sequential)",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Delete the source's enriched output first, reprocessing everything",
					},
				},
				Action: enrich.Action,
			},
			{
				Name:   "status",
				Usage:  "Show per-source outcome tallies from the run ledger",
				Action: status.Action,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
