// Package status reports ledger tallies so operators can see outcomes across
// runs, including short-body skips that never produce output files.
package status

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/hashimsd/articleforge/internal/config"
	"github.com/hashimsd/articleforge/pkg/ledger"
)

// Action prints per-source outcome counts from the ledger.
func Action(c *cli.Context) error {
	cfg := config.Load()

	led, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return fmt.Errorf("opening ledger %s: %w", cfg.LedgerPath, err)
	}
	defer led.Close()

	rows, err := led.Summary()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("No recorded runs yet.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tSTATUS\tCOUNT")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%d\n", row.Source, row.Status, row.Count)
	}
	return w.Flush()
}
