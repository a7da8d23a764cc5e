// Package metric loads the optional journal-quality table. Every
// failure mode (no path, missing file, empty file, missing columns,
// bad rows) degrades to an empty table with a diagnostic: a metric-free
// run is valid, a fatal loader is not.
package metric

import (
	"encoding/csv"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"oncodigest/internal/config"
	"oncodigest/internal/domain"
	"oncodigest/internal/ports"
)

// Loader reads the configured CSV into a metric table, once per run.
type Loader struct {
	cfg    config.MetricConfig
	logger *slog.Logger
}

var _ ports.MetricLoader = (*Loader)(nil)

// NewLoader captures the table location and column names.
func NewLoader(cfg config.MetricConfig, logger *slog.Logger) *Loader {
	return &Loader{cfg: cfg, logger: logger}
}

// Load reads the CSV at cfg.CSVPath into a journal -> score table.
// Journal keys are trimmed and case-folded; rows with a non-numeric or
// empty value cell are skipped.
func (l *Loader) Load() domain.MetricTable {
	cfg, logger := l.cfg, l.logger
	table := domain.MetricTable{}

	if cfg.CSVPath == "" {
		return table
	}

	file, err := os.Open(cfg.CSVPath)
	if err != nil {
		warn(logger, "metric table unavailable", "path", cfg.CSVPath, "error", err)
		return table
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		warn(logger, "metric table unreadable", "path", cfg.CSVPath, "error", err)
		return domain.MetricTable{}
	}
	if len(rows) < 2 {
		warn(logger, "metric table empty", "path", cfg.CSVPath)
		return table
	}

	journalIdx, valueIdx := -1, -1
	for i, name := range rows[0] {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case strings.ToLower(cfg.JournalCol):
			journalIdx = i
		case strings.ToLower(cfg.ValueCol):
			valueIdx = i
		}
	}
	if journalIdx < 0 || valueIdx < 0 {
		warn(logger, "metric table missing required columns",
			"path", cfg.CSVPath, "journal_col", cfg.JournalCol, "value_col", cfg.ValueCol)
		return table
	}

	for _, row := range rows[1:] {
		if journalIdx >= len(row) || valueIdx >= len(row) {
			continue
		}
		journal := domain.NormalizeJournal(row[journalIdx])
		if journal == "" {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(row[valueIdx]), 64)
		if err != nil {
			continue
		}
		table[journal] = value
	}

	if logger != nil {
		logger.Debug("metric table loaded", "path", cfg.CSVPath, "journals", len(table))
	}
	return table
}

func warn(logger *slog.Logger, msg string, args ...any) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}
