package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"

	"github.com/palopendata/unify/internal/model"
)

// Store persists a canonical dataset as the file set consumed downstream:
// all-data.json, metadata.json, recent.json, index.json, quarter partitions
// and, for large datasets, a chunks/ subdirectory.
//
// A run owns its output directory exclusively; both partitions and chunks
// are regenerated wholesale, never patched incrementally. Writes are not
// atomic: a failure mid-run leaves a missing or stale index behind, which is
// how a broken directory is detected.
type Store struct {
	dir            string
	chunkThreshold int
	chunkSize      int
	recentDays     int
	log            log.Interface
	now            func() time.Time
}

// NewStore creates a store rooted at dir
func NewStore(dir string, cfg model.StoreConfig, logger log.Interface) *Store {
	if cfg.ChunkThreshold <= 0 {
		cfg.ChunkThreshold = 10_000
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 10_000
	}
	if cfg.RecentDays <= 0 {
		cfg.RecentDays = 90
	}
	if logger == nil {
		logger = log.Log
	}
	return &Store{
		dir:            dir,
		chunkThreshold: cfg.ChunkThreshold,
		chunkSize:      cfg.ChunkSize,
		recentDays:     cfg.RecentDays,
		log:            logger,
		now:            time.Now,
	}
}

// WriteDataset persists a dataset into <dir>/<category>/
func (s *Store) WriteDataset(ds *model.Dataset, report model.ValidationReport) error {
	catDir := filepath.Join(s.dir, string(ds.Meta.Category))
	if err := os.MkdirAll(catDir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeJSON(filepath.Join(catDir, "all-data.json"), ds.Records); err != nil {
		return fmt.Errorf("write all-data: %w", err)
	}

	meta := model.DatasetMetadata{
		Source:      ds.Meta.Source,
		Dataset:     ds.Meta.Source,
		Category:    ds.Meta.Category,
		RecordCount: len(ds.Records),
		Skipped:     ds.Skipped,
		Validation:  report,
		LastUpdated: s.now().UTC(),
	}
	if err := writeJSON(filepath.Join(catDir, "metadata.json"), meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	if err := s.WritePartitions(catDir, ds); err != nil {
		return fmt.Errorf("write partitions: %w", err)
	}

	if len(ds.Records) > s.chunkThreshold {
		if err := s.WriteChunks(filepath.Join(catDir, "chunks"), ds.Records); err != nil {
			return fmt.Errorf("write chunks: %w", err)
		}
	}

	s.log.WithFields(log.Fields{
		"category": ds.Meta.Category,
		"records":  len(ds.Records),
		"dir":      catDir,
	}).Info("dataset persisted")

	return nil
}

// writeJSON marshals v and writes it in one shot
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
