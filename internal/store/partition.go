package store

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/palopendata/unify/internal/model"
)

// PartitionMeta is the metadata envelope of one quarter file
type PartitionMeta struct {
	Source      string    `json:"source"`
	Dataset     string    `json:"dataset"`
	Quarter     string    `json:"quarter"`
	RecordCount int       `json:"record_count"`
	LastUpdated time.Time `json:"last_updated"`
}

// PartitionFile is the on-disk shape of a quarter partition
type PartitionFile struct {
	Metadata PartitionMeta  `json:"metadata"`
	Data     []model.Record `json:"data"`
}

// PartitionDescriptor summarizes one partition inside the index
type PartitionDescriptor struct {
	Quarter     string `json:"quarter"`
	File        string `json:"file"`
	RecordCount int    `json:"record_count"`
}

// DateRange is the inclusive span of record dates in a dataset
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// PartitionIndex is persisted as index.json next to the quarter files
type PartitionIndex struct {
	Dataset       string                `json:"dataset"`
	TotalRecords  int                   `json:"total_records"`
	Unpartitioned int                   `json:"unpartitioned,omitempty"`
	Partitions    []PartitionDescriptor `json:"partitions"`
	DateRange     DateRange             `json:"date_range"`
	GeneratedAt   time.Time             `json:"generated_at"`
}

// QuarterKey derives the partition key from an ISO date, e.g. "2024-Q1"
func QuarterKey(date string) (string, error) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("parse date %q: %w", date, err)
	}
	q := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("%d-Q%d", t.Year(), q), nil
}

// WritePartitions groups records by quarter and writes one file per quarter,
// plus recent.json and index.json. Records whose date does not parse stay
// out of the partitions (they remain in all-data.json) and are counted in
// the index.
func (s *Store) WritePartitions(dir string, ds *model.Dataset) error {
	byQuarter := make(map[string][]model.Record)
	unpartitioned := 0
	var minDate, maxDate string

	for _, rec := range ds.Records {
		key, err := QuarterKey(rec.Date)
		if err != nil {
			unpartitioned++
			continue
		}
		byQuarter[key] = append(byQuarter[key], rec)

		if minDate == "" || rec.Date < minDate {
			minDate = rec.Date
		}
		if rec.Date > maxDate {
			maxDate = rec.Date
		}
	}
	if unpartitioned > 0 {
		s.log.WithField("records", unpartitioned).Warn("records without valid date left unpartitioned")
	}

	quarters := make([]string, 0, len(byQuarter))
	for q := range byQuarter {
		quarters = append(quarters, q)
	}
	sort.Strings(quarters)

	index := PartitionIndex{
		Dataset:       ds.Meta.Source,
		TotalRecords:  len(ds.Records),
		Unpartitioned: unpartitioned,
		Partitions:    make([]PartitionDescriptor, 0, len(quarters)),
		DateRange:     DateRange{Start: minDate, End: maxDate},
		GeneratedAt:   s.now().UTC(),
	}

	for _, q := range quarters {
		records := byQuarter[q]
		file := q + ".json"

		pf := PartitionFile{
			Metadata: PartitionMeta{
				Source:      ds.Meta.Source,
				Dataset:     ds.Meta.Source,
				Quarter:     q,
				RecordCount: len(records),
				LastUpdated: s.now().UTC(),
			},
			Data: records,
		}
		if err := writeJSON(filepath.Join(dir, file), pf); err != nil {
			return fmt.Errorf("partition %s: %w", q, err)
		}

		index.Partitions = append(index.Partitions, PartitionDescriptor{
			Quarter:     q,
			File:        file,
			RecordCount: len(records),
		})
	}

	if err := s.writeRecent(dir, ds.Records); err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(dir, "index.json"), index); err != nil {
		return fmt.Errorf("partition index: %w", err)
	}
	return nil
}

// writeRecent persists the trailing window of records as recent.json so the
// dashboard can load the hot slice without touching partitions
func (s *Store) writeRecent(dir string, records []model.Record) error {
	cutoff := s.now().UTC().AddDate(0, 0, -s.recentDays)

	recent := make([]model.Record, 0)
	for _, rec := range records {
		if t, ok := rec.ParsedDate(); ok && !t.Before(cutoff) {
			recent = append(recent, rec)
		}
	}

	if err := writeJSON(filepath.Join(dir, "recent.json"), recent); err != nil {
		return fmt.Errorf("recent: %w", err)
	}
	return nil
}
