package metric

import (
	"os"
	"path/filepath"
	"testing"

	"oncodigest/internal/config"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "metric.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func metricCfg(path string) config.MetricConfig {
	return config.MetricConfig{CSVPath: path, Name: "IF", JournalCol: "journal", ValueCol: "value"}
}

func TestLoadNormalizesJournalKeys(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, "journal,value\n  The Lancet Oncology  ,51.1\nJAMA Oncology,28.4\n")
	table := NewLoader(metricCfg(path), nil).Load()

	if len(table) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table))
	}
	if v, ok := table.Lookup("THE LANCET ONCOLOGY"); !ok || v != 51.1 {
		t.Fatalf("case-folded lookup failed: %v %v", v, ok)
	}
	if v, ok := table.Lookup("jama oncology"); !ok || v != 28.4 {
		t.Fatalf("lookup failed: %v %v", v, ok)
	}
}

func TestLoadSkipsBadValueRows(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, "journal,value\nGood Journal,3.2\nBad Journal,n/a\nEmpty Journal,\n")
	table := NewLoader(metricCfg(path), nil).Load()

	if len(table) != 1 {
		t.Fatalf("expected 1 valid row, got %d", len(table))
	}
	if _, ok := table.Lookup("bad journal"); ok {
		t.Fatalf("non-numeric row must be skipped")
	}
}

func TestLoadMissingColumnDegradesToEmptyTable(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, "name,score\nLancet,51.1\n")
	table := NewLoader(metricCfg(path), nil).Load()

	if len(table) != 0 {
		t.Fatalf("expected an empty table, got %d rows", len(table))
	}
}

func TestLoadMissingFileDegradesToEmptyTable(t *testing.T) {
	t.Parallel()

	cfg := metricCfg(filepath.Join(t.TempDir(), "absent.csv"))
	if table := NewLoader(cfg, nil).Load(); len(table) != 0 {
		t.Fatalf("expected an empty table for a missing file")
	}
}

func TestLoadWithoutPathIsMetricFree(t *testing.T) {
	t.Parallel()

	if table := NewLoader(config.MetricConfig{}, nil).Load(); len(table) != 0 {
		t.Fatalf("expected an empty table without a configured path")
	}
}

func TestLoadEmptyFileDegradesToEmptyTable(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, "")
	if table := NewLoader(metricCfg(path), nil).Load(); len(table) != 0 {
		t.Fatalf("expected an empty table for an empty file")
	}
}

func TestLoadExtraColumnsTolerated(t *testing.T) {
	t.Parallel()

	path := writeCSV(t, "rank,journal,publisher,value\n1,Annals of Oncology,X,32.9\n2,Short Row\n")
	table := NewLoader(metricCfg(path), nil).Load()

	if v, ok := table.Lookup("Annals of Oncology"); !ok || v != 32.9 {
		t.Fatalf("column positions not honored: %v %v", v, ok)
	}
	if len(table) != 1 {
		t.Fatalf("short row must be skipped, got %d rows", len(table))
	}
}
