package cli

import (
	"context"
	"fmt"

	"github.com/hyperjump/lexis/internal/models"
	"github.com/hyperjump/lexis/internal/processor"
)

// Mode selects the processing operation.
type Mode int

const (
	Tokenize Mode = iota
	Lemmatize
)

func (m Mode) String() string {
	if m == Lemmatize {
		return "lemmatize"
	}
	return "tokenize"
}

// Process runs mode over docs and writes one batch per document. Output stops at the first
// failing document.
func Process(ctx context.Context, proc *processor.Processor, mode Mode, docs []models.Document, params []processor.Param, w BatchWriter) error {
	run := proc.Tokenize
	if mode == Lemmatize {
		run = proc.Lemmatize
	}
	seq, err := run(ctx, models.Texts(docs), params...)
	if err != nil {
		return fmt.Errorf("%s: %w", mode, err)
	}
	i := 0
	for ngrams, err := range seq {
		if err != nil {
			return fmt.Errorf("%s: %w", mode, err)
		}
		doc := docs[i]
		if err := w.WriteBatch(models.Batch{Index: i, ID: doc.ID, Source: doc.Source, Ngrams: ngrams}); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		i++
	}
	return nil
}
