// Package output serializes the idea records into the JSON document consumed
// downstream.
package output

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"InvestingIdeas/internal/domain"
	"InvestingIdeas/internal/ports"
)

//go:embed investing_ideas.schema.json
var documentSchema string

// ValidationError lists schema violations found in an encoded document.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "output document is invalid: " + strings.Join(e.Errors, "; ")
}

// JSONWriter replaces the output file atomically with the full document.
type JSONWriter struct {
	path string
}

var _ ports.RecordWriter = (*JSONWriter)(nil)

// NewJSONWriter targets path; parent directories are created on write.
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

// Path returns the destination file.
func (w *JSONWriter) Path() string {
	return w.path
}

// WriteRecords encodes, validates and atomically replaces the output file.
func (w *JSONWriter) WriteRecords(ctx context.Context, records []domain.IdeaRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(records)
	if err != nil {
		return err
	}
	if err := Validate(data); err != nil {
		return err
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}

// Encode renders records as a 2-space indented array without escaping
// non-ASCII or HTML characters. Nil company lists are emitted as [].
func Encode(records []domain.IdeaRecord) ([]byte, error) {
	normalized := make([]domain.IdeaRecord, len(records))
	for i, r := range records {
		if r.Companies == nil {
			r.Companies = []string{}
		}
		normalized[i] = r
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(normalized); err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Validate checks an encoded document against the embedded schema.
func Validate(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("validate output: %w", err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Errors: make([]string, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		verr.Errors = append(verr.Errors, desc.String())
	}
	return verr
}
