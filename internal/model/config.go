package model

import "time"

// Config holds the complete pipeline configuration
type Config struct {
	Ingest      IngestConfig      `yaml:"ingest" mapstructure:"ingest"`
	Quality     QualityConfig     `yaml:"quality" mapstructure:"quality"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	Analysis    AnalysisConfig    `yaml:"analysis" mapstructure:"analysis"`
	Linker      LinkerConfig      `yaml:"linker" mapstructure:"linker"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
}

// IngestConfig configures the fetch/load collaborators
type IngestConfig struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	MaxRetries        int           `yaml:"max_retries" mapstructure:"max_retries"`
	CacheEnabled      bool          `yaml:"cache_enabled" mapstructure:"cache_enabled"`
	CacheDir          string        `yaml:"cache_dir" mapstructure:"cache_dir"`
	CacheTTL          time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
}

// QualityConfig configures validation
type QualityConfig struct {
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
}

// StoreConfig configures partitioning and chunking
type StoreConfig struct {
	ChunkThreshold int `yaml:"chunk_threshold" mapstructure:"chunk_threshold"`
	ChunkSize      int `yaml:"chunk_size" mapstructure:"chunk_size"`
	RecentDays     int `yaml:"recent_days" mapstructure:"recent_days"`
}

// AnalysisConfig configures the statistical engines
type AnalysisConfig struct {
	SeasonalLag    int     `yaml:"seasonal_lag" mapstructure:"seasonal_lag"`
	ChangePointZ   float64 `yaml:"change_point_z" mapstructure:"change_point_z"`
	SmoothingAlpha float64 `yaml:"smoothing_alpha" mapstructure:"smoothing_alpha"`
	OutlierIQRMult float64 `yaml:"outlier_iqr_mult" mapstructure:"outlier_iqr_mult"`
}

// LinkerConfig configures cross-dataset joins
type LinkerConfig struct {
	RadiusMeters float64 `yaml:"radius_meters" mapstructure:"radius_meters"`
	WindowDays   int     `yaml:"window_days" mapstructure:"window_days"`
}

// ConcurrencyConfig bounds fan-out across independent source datasets
type ConcurrencyConfig struct {
	DatasetWorkers int `yaml:"dataset_workers" mapstructure:"dataset_workers"`
}

// OutputConfig controls where and how results are written
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			Timeout:           2 * time.Minute,
			UserAgent:         "unify/0.1 (+https://github.com/palopendata/unify)",
			MaxBodyBytes:      50_000_000,
			RequestsPerSecond: 2,
			Burst:             5,
			MaxRetries:        3,
			CacheEnabled:      true,
			CacheDir:          ".unify-cache",
			CacheTTL:          6 * time.Hour,
		},
		Quality: QualityConfig{
			Threshold: 0.6,
		},
		Store: StoreConfig{
			ChunkThreshold: 10_000,
			ChunkSize:      10_000,
			RecentDays:     90,
		},
		Analysis: AnalysisConfig{
			SeasonalLag:    7,
			ChangePointZ:   2.0,
			SmoothingAlpha: 0.3,
			OutlierIQRMult: 1.5,
		},
		Linker: LinkerConfig{
			RadiusMeters: 1000,
			WindowDays:   7,
		},
		Concurrency: ConcurrencyConfig{
			DatasetWorkers: 4,
		},
		Output: OutputConfig{
			Dir: "data",
		},
	}
}
