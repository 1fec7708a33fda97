package ingest

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/palopendata/unify/internal/model"
)

// ProviderSpec describes one remote provider endpoint listed in
// providers.yaml at the input root
type ProviderSpec struct {
	Source       string `yaml:"source"`
	Organization string `yaml:"organization"`
	Category     string `yaml:"category"`
	Title        string `yaml:"title"`
	URL          string `yaml:"url"`
}

// ProviderList is the providers.yaml document
type ProviderList struct {
	Providers []ProviderSpec `yaml:"providers"`
}

// LoadProviders reads a providers.yaml. An absent file means no remote
// providers are configured and is not an error.
func LoadProviders(path string) (*ProviderList, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ProviderList{}, nil
		}
		return nil, fmt.Errorf("read providers: %w", err)
	}

	var list ProviderList
	if err := yaml.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("parse providers: %w", err)
	}

	for i, p := range list.Providers {
		if p.URL == "" {
			return nil, fmt.Errorf("provider %d (%s): missing url", i, p.Source)
		}
	}
	return &list, nil
}

// LoadRemote fetches every listed provider through the rate-limited,
// cached fetcher. A provider whose fetch fails degrades to an empty
// dataset with a warning, the same contract as an absent disk dump.
func (l *Loader) LoadRemote(ctx context.Context, f *Fetcher, providers []ProviderSpec) []*RawDataset {
	datasets := make([]*RawDataset, 0, len(providers))

	for _, p := range providers {
		meta := model.SourceMeta{
			Source:       p.Source,
			Organization: p.Organization,
			Category:     model.Category(p.Category),
			Title:        p.Title,
		}
		if meta.Category == "" {
			meta.Category = inferCategory(p.URL)
		}

		records, err := f.Fetch(ctx, p.URL)
		if err != nil {
			l.log.WithField("source", p.Source).WithError(err).Warn("provider fetch failed, skipping")
			datasets = append(datasets, &RawDataset{Meta: meta, Records: []map[string]any{}})
			continue
		}
		datasets = append(datasets, &RawDataset{Meta: meta, Records: records})
	}
	return datasets
}
