package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"

	"github.com/palopendata/unify/internal/enrich"
	"github.com/palopendata/unify/internal/ingest"
	"github.com/palopendata/unify/internal/link"
	"github.com/palopendata/unify/internal/model"
	"github.com/palopendata/unify/internal/quality"
	"github.com/palopendata/unify/internal/store"
	"github.com/palopendata/unify/internal/transform"
	"github.com/palopendata/unify/internal/worker"
)

// Pipeline orchestrates the unification run: transform, enrich, validate,
// link, persist. Per-record work is a pure function of the record, so
// independent source datasets fan out over the worker pool; the merge into
// the canonical store is serialized.
type Pipeline struct {
	registry *transform.Registry
	enricher *enrich.Enricher
	scorer   *quality.Scorer
	store    *store.Store
	linker   *link.Linker
	log      log.Interface
	cfg      *model.Config
}

// NewPipeline creates a pipeline. The logger is passed explicitly per
// invocation rather than read from a shared singleton.
func NewPipeline(cfg *model.Config, logger log.Interface) *Pipeline {
	if logger == nil {
		logger = log.Log
	}
	scorer := quality.NewScorer(cfg.Quality.Threshold)

	return &Pipeline{
		registry: transform.NewRegistry(),
		enricher: enrich.NewEnricher(scorer, time.Time{}),
		scorer:   scorer,
		store:    store.NewStore(cfg.Output.Dir, cfg.Store, logger),
		linker:   link.NewLinker(cfg.Linker),
		log:      logger,
		cfg:      cfg,
	}
}

// Process converts one raw provider dataset into a canonical dataset with
// its validation report. It satisfies worker.Processor.
func (p *Pipeline) Process(ctx context.Context, raw *ingest.RawDataset) (*model.Dataset, model.ValidationReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, model.ValidationReport{}, err
	}

	t := p.registry.ForCategory(raw.Meta.Category)
	records, skipped := t.Transform(raw.Records, raw.Meta)
	records = p.enricher.Enrich(records, raw.Meta)
	report := p.scorer.Validate(records, t.RequiredFields())

	if skipped > 0 {
		p.log.WithFields(log.Fields{
			"source":  raw.Meta.Source,
			"skipped": skipped,
		}).Warn("raw records skipped during transform")
	}
	if !report.MeetsThreshold {
		p.log.WithFields(log.Fields{
			"source": raw.Meta.Source,
			"score":  report.QualityScore,
		}).Warn("dataset below quality threshold")
	}

	return &model.Dataset{Meta: raw.Meta, Records: records, Skipped: skipped}, report, nil
}

// RunSummary reports the outcome of one pipeline run
type RunSummary struct {
	Datasets int                                 `json:"datasets"`
	Records  int                                 `json:"records"`
	Skipped  int                                 `json:"skipped"`
	Failed   []string                            `json:"failed,omitempty"`
	Reports  map[model.Category]model.ValidationReport `json:"reports"`
}

// Run transforms every raw dataset concurrently, merges results per category
// with within-run ID dedup, links related categories and persists the
// canonical output. A failed provider is counted and skipped; a failed
// persist aborts the run.
func (p *Pipeline) Run(ctx context.Context, datasets []*ingest.RawDataset) (*RunSummary, error) {
	batch := worker.NewBatchProcessor(p, p.cfg.Concurrency.DatasetWorkers)
	results := batch.ProcessAll(ctx, datasets)

	summary := &RunSummary{
		Reports: make(map[model.Category]model.ValidationReport),
	}

	// Serialized merge: one canonical dataset per category, records
	// deduplicated by ID within the run.
	merged := make(map[model.Category]*model.Dataset)
	seen := make(map[string]bool)

	for _, res := range results {
		if res.Error != nil {
			p.log.WithField("source", res.Source).WithError(res.Error).Error("dataset failed")
			summary.Failed = append(summary.Failed, res.Source)
			continue
		}
		summary.Datasets++
		summary.Skipped += res.Dataset.Skipped

		cat := res.Dataset.Meta.Category
		ds, ok := merged[cat]
		if !ok {
			ds = &model.Dataset{Meta: res.Dataset.Meta}
			merged[cat] = ds
		}
		ds.Skipped += res.Dataset.Skipped

		for _, rec := range res.Dataset.Records {
			if seen[rec.ID] {
				continue
			}
			seen[rec.ID] = true
			ds.Records = append(ds.Records, rec)
		}
	}

	p.linkCategories(merged)

	for cat, ds := range merged {
		report := p.scorer.Validate(ds.Records, transform.RequiredFields[cat])
		summary.Reports[cat] = report
		summary.Records += len(ds.Records)

		if err := p.store.WriteDataset(ds, report); err != nil {
			return summary, fmt.Errorf("persist %s: %w", cat, err)
		}
	}

	return summary, nil
}

// linkCategories runs the cross-dataset joins over the merged categories
func (p *Pipeline) linkCategories(merged map[model.Category]*model.Dataset) {
	others := make(map[string][]model.Record)
	if ds, ok := merged[model.CategoryInfrastructure]; ok {
		others["infrastructure"] = ds.Records
	}
	if ds, ok := merged[model.CategoryHumanitarian]; ok {
		others["humanitarian"] = ds.Records
	}

	// Social is the year-join target for economic indicators
	var social []model.Record
	for _, cat := range []model.Category{model.CategoryHealth, model.CategoryEducation} {
		if ds, ok := merged[cat]; ok {
			social = append(social, ds.Records...)
		}
	}
	if len(social) > 0 {
		others["social"] = social
	}

	for _, ds := range merged {
		ds.Records = p.linker.Link(ds.Records, others)
	}
}
