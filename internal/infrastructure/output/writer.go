// Package output persists the emitted JSON artifacts at deterministic
// paths: the primary/default category at <dir>/<file>, every additional
// category at <dir>/<key>/<file>.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"oncodigest/internal/domain"
	"oncodigest/internal/ports"
)

// Writer writes documents under a root directory.
type Writer struct {
	dir  string
	file string
}

var _ ports.DocumentWriter = (*Writer)(nil)

// NewWriter configures the artifact root and the per-document filename.
func NewWriter(dir, file string) *Writer {
	if file == "" {
		file = "data.json"
	}
	return &Writer{dir: dir, file: file}
}

// WritePrimary emits the main document. It is written on every run,
// even with zero items: consumers must never see a missing file.
func (w *Writer) WritePrimary(doc domain.Document) error {
	return w.write(filepath.Join(w.dir, w.file), doc)
}

// WriteCategory emits the document for one additional category.
func (w *Writer) WriteCategory(key string, doc domain.Document) error {
	return w.write(filepath.Join(w.dir, key, w.file), doc)
}

func (w *Writer) write(path string, doc domain.Document) error {
	if doc.Items == nil {
		doc.Items = []domain.Article{}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	if err := os.WriteFile(path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
