package model

import "time"

// SourceMeta describes one provider dataset handed to the pipeline.
// Title and Description are free-text hints used as a fallback for
// region classification when record locations are uninformative.
type SourceMeta struct {
	Source       string   `json:"source"`
	Organization string   `json:"organization,omitempty"`
	Category     Category `json:"category"`
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
}

// Dataset is a unified set of canonical records from one provider
type Dataset struct {
	Meta    SourceMeta `json:"meta"`
	Records []Record   `json:"records"`

	// Skipped counts raw records dropped during transformation
	// (transform failures plus ghost records)
	Skipped int `json:"skipped,omitempty"`
}

// ValidationReport is the dataset-level quality aggregate.
// Validation failures land in Errors/Warnings, they are never raised.
type ValidationReport struct {
	QualityScore   float64  `json:"qualityScore"`
	Completeness   float64  `json:"completeness"`
	Consistency    float64  `json:"consistency"`
	Accuracy       float64  `json:"accuracy"`
	MeetsThreshold bool     `json:"meetsThreshold"`
	Errors         []string `json:"errors"`
	Warnings       []string `json:"warnings"`
}

// DatasetMetadata is persisted as metadata.json next to the canonical output
type DatasetMetadata struct {
	Source      string           `json:"source"`
	Dataset     string           `json:"dataset"`
	Category    Category         `json:"category"`
	RecordCount int              `json:"record_count"`
	Skipped     int              `json:"skipped,omitempty"`
	Validation  ValidationReport `json:"validation"`
	LastUpdated time.Time        `json:"last_updated"`
}
