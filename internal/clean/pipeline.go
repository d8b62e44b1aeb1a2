// Package clean drives the raw-to-canonical transformation: walk each
// source's scraped articles, select those without a transformed counterpart,
// normalize and persist them.
package clean

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashimsd/articleforge/models"
	"github.com/hashimsd/articleforge/pkg/corpus"
	"github.com/hashimsd/articleforge/pkg/ledger"
	"github.com/hashimsd/articleforge/pkg/transform"
)

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

// Options tunes one cleaning run.
type Options struct {
	Workers int
	Force   bool
	RunID   int64
}

// Pipeline transforms pending raw articles across a bounded worker pool.
type Pipeline struct {
	transformer *transform.Transformer
	ledger      *ledger.Ledger // may be nil
	logger      *slog.Logger
	opts        Options
}

func NewPipeline(t *transform.Transformer, led *ledger.Ledger, logger *slog.Logger, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pipeline{transformer: t, ledger: led, logger: logger, opts: opts}
}

// Run transforms every source in order. Raw inputs are read-only: the
// canonical record is written to the mirrored transformed directory and the
// original file is never touched.
func (p *Pipeline) Run(ctx context.Context, dataRoot string, layout models.SourcesConfig, sources []string) (Summary, error) {
	var total Summary
	for _, source := range sources {
		inputDir := filepath.Join(dataRoot, source, layout.ArticlesDir)
		outputDir := filepath.Join(dataRoot, source, layout.TransformedDir)

		if _, err := os.Stat(inputDir); err != nil {
			p.logger.Warn("articles directory not found, skipping source", "source", source, "dir", inputDir)
			continue
		}

		if p.opts.Force {
			p.logger.Info("force mode: deleting existing transformed output", "source", source, "dir", outputDir)
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
			p.logger.Info("no new articles to transform", "source", source)
			continue
		}

		p.logger.Info("transforming source", "source", source, "pending", len(pending), "workers", p.opts.Workers)
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
	RelPath string
	Status  string
	Err     error
}

func (p *Pipeline) runSource(ctx context.Context, source, inputDir, outputDir string, pending []string) Summary {
	jobs := make(chan string, len(pending))
	results := make(chan itemResult, len(pending))

	var wg sync.WaitGroup
	for w := 1; w <= p.opts.Workers; w++ {
		wg.Add(1)
		go p.worker(ctx, w, source, inputDir, outputDir, &wg, jobs, results)
	}

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
		case ledger.StatusCleaned:
			summary.Processed++
		case ledger.StatusFailed:
			summary.Failed++
		default:
			summary.Skipped++
		}
	}
	return summary
}

func (p *Pipeline) worker(_ context.Context, id int, source, inputDir, outputDir string, wg *sync.WaitGroup, jobs <-chan string, results chan<- itemResult) {
	defer wg.Done()
	for rel := range jobs {
		res := p.processItem(source, inputDir, outputDir, rel)

		switch res.Status {
		case ledger.StatusCleaned:
			p.logger.Info("transformed article", "worker_id", id, "source", source, "path", rel)
		case ledger.StatusSkippedMalformed:
			p.logger.Warn("skipping unparseable article", "worker_id", id, "source", source, "path", rel, "error", res.Err)
		default:
			p.logger.Error("failed to write transformed article",
				"worker_id", id, "source", source, "path", rel, "error", res.Err)
		}

		if p.ledger != nil {
			errText := ""
			if res.Err != nil {
				errText = res.Err.Error()
			}
			if err := p.ledger.RecordItem(p.opts.RunID, source, rel, res.Status, 1, errText); err != nil {
				p.logger.Warn("failed to record item in ledger", "path", rel, "error", err)
			}
		}

		results <- res
	}
}

// processItem transforms one raw article. Unparseable or empty payloads are
// skipped with no partial output written.
func (p *Pipeline) processItem(source, inputDir, outputDir, rel string) itemResult {
	res := itemResult{RelPath: rel}

	raw, err := corpus.ReadJSON(filepath.Join(inputDir, rel))
	if err != nil {
		res.Status = ledger.StatusSkippedMalformed
		res.Err = err
		return res
	}

	// The article id is the source filename without extension, immutable
	// once assigned.
	id := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))

	record, err := p.transformer.Transform(raw, id)
	if err != nil {
		res.Status = ledger.StatusSkippedMalformed
		res.Err = err
		return res
	}

	if err := corpus.WriteJSON(filepath.Join(outputDir, rel), record); err != nil {
		res.Status = ledger.StatusFailed
		res.Err = err
		return res
	}

	res.Status = ledger.StatusCleaned
	return res
}
