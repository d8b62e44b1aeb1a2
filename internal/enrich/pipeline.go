// Package enrich drives the delta-based enrichment pipeline: walk each
// source's canonical corpus, select items with no enriched counterpart, call
// the enrichment oracle, and persist the merged result exactly once.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashimsd/articleforge/models"
	"github.com/hashimsd/articleforge/pkg/corpus"
	"github.com/hashimsd/articleforge/pkg/ledger"
	"github.com/hashimsd/articleforge/pkg/textnorm"
)

// Oracle is the enrichment capability the pipeline depends on. The second
// return value is the number of attempts consumed, recorded in the ledger.
type Oracle interface {
	Enrich(ctx context.Context, recordJSON string) (*models.EnrichmentResult, int, error)
}

// Summary aggregates per-run counters.
type Summary struct {
	Processed int
	Failed    int
	Skipped   int
}

func (s *Summary) merge(other Summary) {
	s.Processed += other.Processed
	s.Failed += other.Failed
	s.Skipped += other.Skipped
}

// Options tunes one pipeline run.
type Options struct {
	Workers      int
	MinBodyChars int
	Force        bool
	RunID        int64
}

// Pipeline processes independent items across a bounded worker pool. Output
// paths are item-unique, so no cross-item locking exists; the only shared
// state is the read-only configuration, the oracle, and the ledger.
type Pipeline struct {
	oracle Oracle
	ledger *ledger.Ledger // may be nil
	logger *slog.Logger
	opts   Options
}

func NewPipeline(o Oracle, led *ledger.Ledger, logger *slog.Logger, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.MinBodyChars <= 0 {
		opts.MinBodyChars = 50
	}
	return &Pipeline{oracle: o, ledger: led, logger: logger, opts: opts}
}

// Run processes every source in order. One source failing to even list its
// corpus is logged and skipped; per-item failures are counted, never fatal.
func (p *Pipeline) Run(ctx context.Context, dataRoot string, layout models.SourcesConfig, sources []string) (Summary, error) {
	var total Summary
	for _, source := range sources {
		inputDir := filepath.Join(dataRoot, source, layout.TransformedDir)
		outputDir := filepath.Join(dataRoot, source, layout.EnrichedDir)

		if _, err := os.Stat(inputDir); err != nil {
			p.logger.Warn("input directory not found, skipping source", "source", source, "dir", inputDir)
			continue
		}

		if p.opts.Force {
			p.logger.Info("force mode: deleting existing enriched output", "source", source, "dir", outputDir)
			if err := os.RemoveAll(outputDir); err != nil {
				return total, fmt.Errorf("deleting output tree for %s: %w", source, err)
			}
		}

		pending, err := corpus.Pending(inputDir, outputDir)
		if err != nil {
			p.logger.Error("failed to compute pending set", "source", source, "error", err)
			continue
		}
		if len(pending) == 0 {
			p.logger.Info("no new articles to enrich", "source", source)
			continue
		}

		p.logger.Info("enriching source", "source", source, "pending", len(pending), "workers", p.opts.Workers)
		summary := p.runSource(ctx, source, inputDir, outputDir, pending)
		p.logger.Info("source finished",
			"source", source, "processed", summary.Processed, "failed", summary.Failed, "skipped", summary.Skipped)
		total.merge(summary)

		if ctx.Err() != nil {
			break
		}
	}
	return total, ctx.Err()
}

type itemResult struct {
	RelPath  string
	Status   string
	Attempts int
	Err      error
}

func (p *Pipeline) runSource(ctx context.Context, source, inputDir, outputDir string, pending []string) Summary {
	jobs := make(chan string, len(pending))
	results := make(chan itemResult, len(pending))

	var wg sync.WaitGroup
	for w := 1; w <= p.opts.Workers; w++ {
		wg.Add(1)
		go p.worker(ctx, w, source, inputDir, outputDir, &wg, jobs, results)
	}

	// Dispatch order follows the differ's deterministic sequence. The check
	// on ctx is the pipeline's only graceful stop point: already-dispatched
	// calls run to completion.
dispatch:
	for _, rel := range pending {
		select {
		case <-ctx.Done():
			break dispatch
		default:
			jobs <- rel
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	var summary Summary
	for res := range results {
		switch res.Status {
		case ledger.StatusEnriched:
			summary.Processed++
		case ledger.StatusFailed:
			summary.Failed++
		default:
			summary.Skipped++
		}
	}
	return summary
}

func (p *Pipeline) worker(ctx context.Context, id int, source, inputDir, outputDir string, wg *sync.WaitGroup, jobs <-chan string, results chan<- itemResult) {
	defer wg.Done()
	for rel := range jobs {
		res := p.processItem(ctx, source, inputDir, outputDir, rel)

		switch res.Status {
		case ledger.StatusEnriched:
			p.logger.Info("enriched article", "worker_id", id, "source", source, "path", rel, "attempts", res.Attempts)
		case ledger.StatusSkippedShort:
			p.logger.Warn("skipping article, body empty or too short", "worker_id", id, "source", source, "path", rel)
		case ledger.StatusSkippedMalformed:
			p.logger.Warn("skipping malformed article", "worker_id", id, "source", source, "path", rel, "error", res.Err)
		default:
			p.logger.Error("enrichment failed permanently for this run",
				"worker_id", id, "source", source, "path", rel, "attempts", res.Attempts, "error", res.Err)
		}

		if p.ledger != nil {
			errText := ""
			if res.Err != nil {
				errText = res.Err.Error()
			}
			if err := p.ledger.RecordItem(p.opts.RunID, source, rel, res.Status, res.Attempts, errText); err != nil {
				p.logger.Warn("failed to record item in ledger", "path", rel, "error", err)
			}
		}

		results <- res
	}
}

// processItem is one self-contained unit of work: read the canonical file,
// call the oracle, merge, write the enriched file. Every failure is converted
// into a counted outcome at this boundary.
func (p *Pipeline) processItem(ctx context.Context, source, inputDir, outputDir, rel string) itemResult {
	res := itemResult{RelPath: rel}

	record, err := corpus.ReadJSON(filepath.Join(inputDir, rel))
	if err != nil {
		res.Status = ledger.StatusSkippedMalformed
		res.Err = err
		return res
	}

	// Bodies below the threshold are never sent to the oracle. No output is
	// written either, so the item stays pending on every future run; the
	// ledger entry is what makes these visible.
	if len(strings.TrimSpace(articleBody(record))) < p.opts.MinBodyChars {
		res.Status = ledger.StatusSkippedShort
		return res
	}

	payload, err := json.Marshal(record)
	if err != nil {
		res.Status = ledger.StatusSkippedMalformed
		res.Err = err
		return res
	}

	enrichment, attempts, err := p.oracle.Enrich(ctx, string(payload))
	res.Attempts = attempts
	if err != nil {
		res.Status = ledger.StatusFailed
		res.Err = err
		return res
	}

	// Merge: only summary, keywords, and entities are overwritten; all other
	// fields pass through the generic map byte-for-byte. Oracle output is the
	// one string source that never went through the normalizer, so each
	// merged value is cleaned individually before persisting.
	content, ok := record["content"].(map[string]any)
	if !ok {
		content = map[string]any{}
	}
	content["summary"] = textnorm.Clean(enrichment.Summary)
	keywords := make([]string, len(enrichment.Keywords))
	for i, k := range enrichment.Keywords {
		keywords[i] = textnorm.Clean(k)
	}
	content["keywords"] = keywords
	record["content"] = content

	record["entities"] = models.NormalizeEntities(cleanEntityTree(enrichment.Entities))

	if err := corpus.WriteJSON(filepath.Join(outputDir, rel), record); err != nil {
		res.Status = ledger.StatusFailed
		res.Err = err
		return res
	}

	res.Status = ledger.StatusEnriched
	return res
}

// cleanEntityTree deep-cleans every string in the raw entity payload, so
// entity texts are normalized regardless of which shape the provider
// returned. Payloads that do not decode are passed through for
// NormalizeEntities to reject.
func cleanEntityTree(raw json.RawMessage) json.RawMessage {
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return raw
	}
	cleaned, err := json.Marshal(textnorm.CleanAny(tree))
	if err != nil {
		return raw
	}
	return cleaned
}

func articleBody(record map[string]any) string {
	content, ok := record["content"].(map[string]any)
	if !ok {
		return ""
	}
	body, _ := content["article_body"].(string)
	return body
}
