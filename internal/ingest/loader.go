package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"

	"github.com/palopendata/unify/internal/model"
)

// Loader reads provider dumps from a directory. Each dump is a JSON file
// holding an array of raw records, optionally next to a <name>.meta.json
// describing the source. A missing or malformed dump degrades to an empty
// dataset with a warning so one broken provider never stops a run.
type Loader struct {
	log log.Interface
}

// NewLoader creates a loader
func NewLoader(logger log.Interface) *Loader {
	if logger == nil {
		logger = log.Log
	}
	return &Loader{log: logger}
}

// RawDataset pairs a provider's raw records with its metadata
type RawDataset struct {
	Meta    model.SourceMeta
	Records []map[string]any
}

// LoadFile reads one provider dump. Absent files are an expected condition:
// the result is empty, not an error.
func (l *Loader) LoadFile(path string, meta model.SourceMeta) *RawDataset {
	body, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.log.WithField("path", path).Warn("provider dump absent, skipping")
		} else {
			l.log.WithField("path", path).WithError(err).Warn("provider dump unreadable, skipping")
		}
		return &RawDataset{Meta: meta, Records: []map[string]any{}}
	}

	records, err := DecodeRecords(body)
	if err != nil {
		l.log.WithField("path", path).WithError(err).Warn("provider dump malformed, skipping")
		return &RawDataset{Meta: meta, Records: []map[string]any{}}
	}

	return &RawDataset{Meta: meta, Records: records}
}

// LoadDir walks a directory of provider dumps iteratively with an explicit
// work stack, so deep or malformed trees cannot grow the call stack. Every
// *.json file that is not a sidecar becomes one raw dataset.
func (l *Loader) LoadDir(root string) ([]*RawDataset, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("input dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input dir: %s is not a directory", root)
	}

	var datasets []*RawDataset
	stack := []string{root}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(dir)
		if err != nil {
			l.log.WithField("dir", dir).WithError(err).Warn("directory unreadable, skipping")
			continue
		}

		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				stack = append(stack, path)
				continue
			}
			name := entry.Name()
			if !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".meta.json") {
				continue
			}

			meta := l.readSidecar(path)
			datasets = append(datasets, l.LoadFile(path, meta))
		}
	}

	return datasets, nil
}

// readSidecar loads <dump>.meta.json when present; otherwise the metadata is
// inferred from the file and directory names
func (l *Loader) readSidecar(dumpPath string) model.SourceMeta {
	base := strings.TrimSuffix(dumpPath, ".json")
	meta := model.SourceMeta{
		Source:   filepath.Base(base),
		Category: inferCategory(dumpPath),
	}

	body, err := os.ReadFile(base + ".meta.json")
	if err != nil {
		return meta
	}
	if err := json.Unmarshal(body, &meta); err != nil {
		l.log.WithField("path", base+".meta.json").WithError(err).Warn("sidecar malformed, using inferred metadata")
	}
	return meta
}

// inferCategory matches a path segment against the known categories
func inferCategory(path string) model.Category {
	lower := strings.ToLower(path)
	for _, cat := range model.Categories {
		if strings.Contains(lower, string(cat)) {
			return cat
		}
	}
	return model.CategoryHumanitarian
}
