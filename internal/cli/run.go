package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/palopendata/unify/internal/cache"
	"github.com/palopendata/unify/internal/ingest"
	"github.com/palopendata/unify/internal/model"
	"github.com/palopendata/unify/internal/pipeline"
)

var (
	inputDir       string
	outputDir      string
	runTimeout     time.Duration
	qualityCutoff  float64
	chunkSize      int
	datasetWorkers int
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the unification pipeline over a directory of provider dumps",
	Long: `Run loads every provider dump under the input directory, transforms the
raw records into the canonical schema, enriches and validates them, links
related categories, and persists partitioned output per category.

Each dump is a JSON array of objects; an optional <name>.meta.json sidecar
supplies source, organization and category. A providers.yaml at the input
root lists remote endpoints; those are fetched through a rate-limited,
cached HTTP client before the run.

Example:
  unify run --input dumps/ --output data/
  unify run --input dumps/ --output data/ --threshold 0.7 -v`,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&inputDir, "input", "dumps", "directory of provider dumps")
	runCmd.Flags().StringVar(&outputDir, "output", "data", "output directory (owned exclusively by this run)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 10*time.Minute, "overall run timeout")
	runCmd.Flags().Float64Var(&qualityCutoff, "threshold", 0.6, "dataset quality pass/fail cutoff")
	runCmd.Flags().IntVar(&chunkSize, "chunk-size", 10_000, "records per chunk for large datasets")
	runCmd.Flags().IntVar(&datasetWorkers, "workers", 4, "concurrent source datasets")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	// Build configuration from flags
	cfg := model.DefaultConfig()
	cfg.Quality.Threshold = qualityCutoff
	cfg.Store.ChunkSize = chunkSize
	cfg.Concurrency.DatasetWorkers = datasetWorkers
	cfg.Output.Dir = outputDir
	cfg.Output.Verbose = verbose

	logger := newLogger()

	loader := ingest.NewLoader(logger)
	datasets, err := loader.LoadDir(inputDir)
	if err != nil {
		return fmt.Errorf("load input: %w", err)
	}

	providers, err := ingest.LoadProviders(filepath.Join(inputDir, "providers.yaml"))
	if err != nil {
		return fmt.Errorf("load providers: %w", err)
	}
	if len(providers.Providers) > 0 {
		var c cache.Cache
		if cfg.Ingest.CacheEnabled {
			c = cache.NewLayeredCache(cfg.Ingest.CacheTTL, cfg.Ingest.CacheDir, cfg.Ingest.CacheTTL)
		}
		fetcher := ingest.NewFetcher(cfg.Ingest, c)
		datasets = append(datasets, loader.LoadRemote(ctx, fetcher, providers.Providers)...)
	}

	if len(datasets) == 0 {
		return fmt.Errorf("no provider dumps or remote providers found under %s", inputDir)
	}

	p := pipeline.NewPipeline(cfg, logger)
	summary, err := p.Run(ctx, datasets)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Processed %d datasets (%d records, %d skipped)\n",
			summary.Datasets, summary.Records, summary.Skipped)
		for cat, report := range summary.Reports {
			fmt.Fprintf(os.Stderr, "  %s: score %.2f, threshold met: %v\n",
				cat, report.QualityScore, report.MeetsThreshold)
		}
	}

	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	fmt.Println(string(out))

	if len(summary.Failed) > 0 {
		return fmt.Errorf("%d datasets failed", len(summary.Failed))
	}
	return nil
}
