package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/apex/log"
	"github.com/apex/log/handlers/discard"

	"github.com/palopendata/unify/internal/model"
)

func testLoader() *Loader {
	return NewLoader(&log.Logger{Handler: discard.New(), Level: log.InfoLevel})
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "acled.json")
	writeFile(t, path, `[{"date":"2024-01-01","killed":3},{"date":"2024-01-02"}]`)

	ds := testLoader().LoadFile(path, model.SourceMeta{Source: "acled"})
	if len(ds.Records) != 2 {
		t.Fatalf("records = %+v", ds.Records)
	}
	if ds.Records[0]["date"] != "2024-01-01" {
		t.Errorf("first record = %+v", ds.Records[0])
	}
}

func TestLoadFile_AbsentDegradesToEmpty(t *testing.T) {
	ds := testLoader().LoadFile(filepath.Join(t.TempDir(), "missing.json"), model.SourceMeta{Source: "x"})
	if ds == nil || len(ds.Records) != 0 {
		t.Errorf("dataset = %+v, want empty", ds)
	}
	if ds.Meta.Source != "x" {
		t.Errorf("meta = %+v", ds.Meta)
	}
}

func TestLoadFile_MalformedDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	writeFile(t, path, `{"not": "an array"`)

	ds := testLoader().LoadFile(path, model.SourceMeta{Source: "broken"})
	if len(ds.Records) != 0 {
		t.Errorf("records = %+v, want empty", ds.Records)
	}
}

func TestDecodeRecords(t *testing.T) {
	bare, err := DecodeRecords([]byte(`[{"a":1}]`))
	if err != nil {
		t.Fatalf("bare array: %v", err)
	}
	if len(bare) != 1 {
		t.Errorf("bare = %+v", bare)
	}

	enveloped, err := DecodeRecords([]byte(`{"data":[{"a":1},{"a":2}]}`))
	if err != nil {
		t.Fatalf("envelope: %v", err)
	}
	if len(enveloped) != 2 {
		t.Errorf("enveloped = %+v", enveloped)
	}

	if _, err := DecodeRecords([]byte(`{"rows":[{"a":1}]}`)); err == nil {
		t.Error("unknown envelope must fail")
	}
	if _, err := DecodeRecords([]byte(`"scalar"`)); err == nil {
		t.Error("scalar payload must fail")
	}
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	conflictDir := filepath.Join(root, "conflict")
	if err := os.MkdirAll(filepath.Join(conflictDir, "nested"), 0755); err != nil {
		t.Fatal(err)
	}

	writeFile(t, filepath.Join(conflictDir, "acled.json"), `[{"date":"2024-01-01"}]`)
	writeFile(t, filepath.Join(conflictDir, "nested", "deep.json"), `[{"date":"2024-01-02"}]`)
	writeFile(t, filepath.Join(conflictDir, "notes.txt"), "ignored")
	writeFile(t, filepath.Join(conflictDir, "acled.meta.json"),
		`{"source":"acled","organization":"ACLED","category":"conflict"}`)

	datasets, err := testLoader().LoadDir(root)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(datasets) != 2 {
		t.Fatalf("datasets = %d, want the two dumps (sidecar and txt skipped)", len(datasets))
	}

	bySource := make(map[string]*RawDataset)
	for _, ds := range datasets {
		bySource[ds.Meta.Source] = ds
	}

	acled, ok := bySource["acled"]
	if !ok {
		t.Fatalf("no acled dataset in %v", bySource)
	}
	if acled.Meta.Organization != "ACLED" {
		t.Errorf("sidecar not applied: %+v", acled.Meta)
	}
	if acled.Meta.Category != model.CategoryConflict {
		t.Errorf("category = %s", acled.Meta.Category)
	}

	deep, ok := bySource["deep"]
	if !ok {
		t.Fatalf("nested dump not discovered: %v", bySource)
	}
	// No sidecar: category inferred from the path
	if deep.Meta.Category != model.CategoryConflict {
		t.Errorf("inferred category = %s", deep.Meta.Category)
	}
}

func TestLoadDir_NotADirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.json")
	writeFile(t, path, `[]`)

	if _, err := testLoader().LoadDir(path); err == nil {
		t.Error("expected an error for a non-directory root")
	}
	if _, err := testLoader().LoadDir(filepath.Join(dir, "nope")); err == nil {
		t.Error("expected an error for a missing root")
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		path string
		want model.Category
	}{
		{"data/conflict/acled.json", model.CategoryConflict},
		{"data/Economic/worldbank.json", model.CategoryEconomic},
		{"data/health/who.json", model.CategoryHealth},
		{"data/misc/dump.json", model.CategoryHumanitarian},
	}
	for _, tt := range tests {
		if got := inferCategory(tt.path); got != tt.want {
			t.Errorf("inferCategory(%s) = %s, want %s", tt.path, got, tt.want)
		}
	}
}
