package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/palopendata/unify/internal/model"
)

// RecordRange is a 1-based inclusive span into the original record order
type RecordRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ChunkMeta is the metadata envelope of one chunk file
type ChunkMeta struct {
	ChunkNumber int         `json:"chunk_number"`
	TotalChunks int         `json:"total_chunks"`
	RecordCount int         `json:"record_count"`
	RecordRange RecordRange `json:"record_range"`
}

// ChunkFile is the on-disk shape of one chunk
type ChunkFile struct {
	Metadata ChunkMeta      `json:"metadata"`
	Data     []model.Record `json:"data"`
}

// ChunkDescriptor summarizes one chunk inside the chunk index
type ChunkDescriptor struct {
	ChunkNumber int         `json:"chunk_number"`
	File        string      `json:"file"`
	RecordCount int         `json:"record_count"`
	RecordRange RecordRange `json:"record_range"`
}

// ChunkIndex is persisted as index.json inside the chunks directory
type ChunkIndex struct {
	TotalRecords int               `json:"total_records"`
	TotalChunks  int               `json:"total_chunks"`
	ChunkSize    int               `json:"chunk_size"`
	Chunks       []ChunkDescriptor `json:"chunks"`
	GeneratedAt  time.Time         `json:"generated_at"`
}

// chunkIndexFile is the presence marker for an already chunked directory
const chunkIndexFile = "index.json"

// HasChunks reports whether dir already holds a chunk index
func HasChunks(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, chunkIndexFile))
	return err == nil
}

// WriteChunks splits records into fixed-size chunks in original order and
// writes them under dir with an index. When the directory already carries a
// chunk index the work is skipped, so re-runs do not recompute an unchanged
// split.
func (s *Store) WriteChunks(dir string, records []model.Record) error {
	if HasChunks(dir) {
		s.log.WithField("dir", dir).Info("chunks already present, skipping")
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create chunk dir: %w", err)
	}

	total := len(records)
	totalChunks := (total + s.chunkSize - 1) / s.chunkSize

	index := ChunkIndex{
		TotalRecords: total,
		TotalChunks:  totalChunks,
		ChunkSize:    s.chunkSize,
		Chunks:       make([]ChunkDescriptor, 0, totalChunks),
		GeneratedAt:  s.now().UTC(),
	}

	for i := 0; i < totalChunks; i++ {
		start := i * s.chunkSize
		end := start + s.chunkSize
		if end > total {
			end = total
		}

		number := i + 1
		file := fmt.Sprintf("chunk-%03d.json", number)
		rng := RecordRange{Start: start + 1, End: end}

		cf := ChunkFile{
			Metadata: ChunkMeta{
				ChunkNumber: number,
				TotalChunks: totalChunks,
				RecordCount: end - start,
				RecordRange: rng,
			},
			Data: records[start:end],
		}
		if err := writeJSON(filepath.Join(dir, file), cf); err != nil {
			return fmt.Errorf("chunk %d: %w", number, err)
		}

		index.Chunks = append(index.Chunks, ChunkDescriptor{
			ChunkNumber: number,
			File:        file,
			RecordCount: end - start,
			RecordRange: rng,
		})
	}

	// The index is written last: its presence means every chunk before it
	// landed, its absence after a crash marks the directory incomplete.
	if err := writeJSON(filepath.Join(dir, chunkIndexFile), index); err != nil {
		return fmt.Errorf("chunk index: %w", err)
	}
	return nil
}
