// Package cli holds the pieces of the lexis command line: flags, input and output.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/lexis/internal/models"
)

// OutputFormat is the format batches are written in.
type OutputFormat string

const (
	// OutputText is one human-readable line per document (default).
	OutputText OutputFormat = "text"
	// OutputJSON is a single indented JSON array written when the run completes.
	OutputJSON OutputFormat = "json"
	// OutputJSONL is one JSON object per line, written as each document finishes.
	OutputJSONL OutputFormat = "jsonl"
)

// ParseOutputFormat accepts text, json and jsonl.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case OutputText, OutputJSON, OutputJSONL:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or jsonl)", s)
	}
}

// BatchWriter writes n-gram batches and removal records.
type BatchWriter interface {
	WriteBatch(b models.Batch) error
	WriteRemoval(r models.Removal) error
	// Close flushes buffered output.
	Close() error
}

// NewBatchWriter returns a writer for format on w.
func NewBatchWriter(w io.Writer, format OutputFormat) BatchWriter {
	switch format {
	case OutputJSON:
		return &jsonWriter{w: w}
	case OutputJSONL:
		return &jsonlWriter{enc: json.NewEncoder(w)}
	default:
		return &textWriter{w: w}
	}
}

type textWriter struct {
	w io.Writer
}

func (t *textWriter) WriteBatch(b models.Batch) error {
	label := fmt.Sprintf("doc %d", b.Index)
	if b.Source != "" {
		label += " (" + b.Source + ")"
	}
	_, err := fmt.Fprintf(t.w, "%s: %s\n", label, strings.Join(b.Ngrams, ", "))
	return err
}

func (t *textWriter) WriteRemoval(r models.Removal) error {
	_, err := fmt.Fprintf(t.w, "removed: %s\n", r.Source)
	return err
}

func (t *textWriter) Close() error { return nil }

type jsonlWriter struct {
	enc *json.Encoder
}

func (j *jsonlWriter) WriteBatch(b models.Batch) error     { return j.enc.Encode(nonNil(b)) }
func (j *jsonlWriter) WriteRemoval(r models.Removal) error { return j.enc.Encode(r) }
func (j *jsonlWriter) Close() error                        { return nil }

// nonNil makes an empty batch encode as [] rather than null.
func nonNil(b models.Batch) models.Batch {
	if b.Ngrams == nil {
		b.Ngrams = []string{}
	}
	return b
}

// jsonWriter buffers every record and writes one array on Close.
type jsonWriter struct {
	w       io.Writer
	records []any
}

func (j *jsonWriter) WriteBatch(b models.Batch) error {
	j.records = append(j.records, nonNil(b))
	return nil
}

func (j *jsonWriter) WriteRemoval(r models.Removal) error {
	j.records = append(j.records, r)
	return nil
}

func (j *jsonWriter) Close() error {
	if j.records == nil {
		j.records = []any{}
	}
	enc := json.NewEncoder(j.w)
	enc.SetIndent("", "  ")
	return enc.Encode(j.records)
}
