package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/palopendata/unify/internal/analysis"
	"github.com/palopendata/unify/internal/enrich"
	"github.com/palopendata/unify/internal/model"
)

var (
	dataDir      string
	analyzeCat   string
	baselineDate string
	outJSON      string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run statistical analysis over a persisted canonical dataset",
	Long: `Analyze loads <data>/<category>/all-data.json and computes descriptive
statistics, temporal and spatial aggregation, linear trend, seasonality,
forecast and change points.

Example:
  unify analyze --data data/ --category conflict
  unify analyze --data data/ --category conflict --baseline 2023-10-07 --json report.json`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&dataDir, "data", "data", "canonical data directory")
	analyzeCmd.Flags().StringVar(&analyzeCat, "category", "conflict", "category to analyze")
	analyzeCmd.Flags().StringVar(&baselineDate, "baseline", "", "baseline cutoff date (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&outJSON, "json", "", "write report JSON to this path instead of stdout")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	category := model.Category(analyzeCat)

	baseline := enrich.DefaultBaseline
	if baselineDate != "" {
		t, err := time.Parse("2006-01-02", baselineDate)
		if err != nil {
			return fmt.Errorf("parse baseline: %w", err)
		}
		baseline = t
	}

	path := filepath.Join(dataDir, string(category), "all-data.json")
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	var records []model.Record
	if err := json.Unmarshal(body, &records); err != nil {
		return fmt.Errorf("decode dataset: %w", err)
	}

	engine := analysis.NewEngine(model.DefaultConfig().Analysis)
	report := engine.Analyze(records, category, baseline)

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if outJSON != "" {
		if err := os.WriteFile(outJSON, out, 0644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote report: %s\n", outJSON)
		}
		return nil
	}

	fmt.Println(string(out))
	return nil
}
