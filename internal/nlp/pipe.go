package nlp

import (
	"iter"
	"sync"
)

// PipeOptions controls batched iteration. Zero values mean 1.
type PipeOptions struct {
	// BatchSize is how many texts are processed before any of them is yielded.
	BatchSize int
	// Threads bounds the goroutines working on one batch.
	Threads int
}

// Tokenize runs the tokenizer alone over texts, one batch at a time.
func (m *Model) Tokenize(texts []string, opts PipeOptions) iter.Seq2[*Doc, error] {
	return pipe(texts, opts, m.Make)
}

// Pipe runs the full pipeline over texts, one batch at a time.
func (m *Model) Pipe(texts []string, opts PipeOptions) iter.Seq2[*Doc, error] {
	return pipe(texts, opts, m.Process)
}

// pipe yields docs in input order. A batch is finished before its first doc is yielded, so
// nothing is left running when the consumer stops. The first failing doc is yielded as a
// *DocError and ends the sequence.
func pipe(texts []string, opts PipeOptions, fn func(string) (*Doc, error)) iter.Seq2[*Doc, error] {
	batchSize := max(opts.BatchSize, 1)
	threads := max(opts.Threads, 1)
	return func(yield func(*Doc, error) bool) {
		for lo := 0; lo < len(texts); lo += batchSize {
			hi := min(lo+batchSize, len(texts))
			docs, errs := runBatch(texts[lo:hi], threads, fn)
			for i, doc := range docs {
				if errs[i] != nil {
					yield(nil, &DocError{Index: lo + i, Err: errs[i]})
					return
				}
				if !yield(doc, nil) {
					return
				}
			}
		}
	}
}

func runBatch(texts []string, threads int, fn func(string) (*Doc, error)) ([]*Doc, []error) {
	docs := make([]*Doc, len(texts))
	errs := make([]error, len(texts))
	if threads == 1 || len(texts) == 1 {
		for i, text := range texts {
			docs[i], errs[i] = fn(text)
			if errs[i] != nil {
				break
			}
		}
		return docs, errs
	}

	sem := make(chan struct{}, threads)
	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			docs[i], errs[i] = fn(text)
		}()
	}
	wg.Wait()
	return docs, errs
}
