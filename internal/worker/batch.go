package worker

import (
	"context"

	"github.com/palopendata/unify/internal/ingest"
	"github.com/palopendata/unify/internal/model"
)

// Processor converts one raw provider dataset into a canonical dataset with
// its validation report
type Processor interface {
	Process(ctx context.Context, raw *ingest.RawDataset) (*model.Dataset, model.ValidationReport, error)
}

// DatasetJob transforms one provider dataset
type DatasetJob struct {
	Raw       *ingest.RawDataset
	Processor Processor
}

// Execute executes the transform job
func (j *DatasetJob) Execute(ctx context.Context) Result {
	ds, report, err := j.Processor.Process(ctx, j.Raw)
	return &DatasetResult{
		Source:  j.Raw.Meta.Source,
		Dataset: ds,
		Report:  report,
		Error:   err,
	}
}

// DatasetResult is the outcome of one dataset transform
type DatasetResult struct {
	Source  string
	Dataset *model.Dataset
	Report  model.ValidationReport
	Error   error
}

// GetError returns the error from the result
func (r *DatasetResult) GetError() error {
	return r.Error
}

// BatchProcessor runs independent provider datasets concurrently. The merge
// of results into the canonical store stays serialized in the caller.
type BatchProcessor struct {
	processor   Processor
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessAll transforms every dataset over the pool and joins all results
func (b *BatchProcessor) ProcessAll(ctx context.Context, datasets []*ingest.RawDataset) []*DatasetResult {
	if len(datasets) == 0 {
		return []*DatasetResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, raw := range datasets {
		pool.Submit(&DatasetJob{Raw: raw, Processor: b.processor})
	}

	results := pool.Wait()

	out := make([]*DatasetResult, len(results))
	for i, r := range results {
		out[i] = r.(*DatasetResult)
	}
	return out
}
