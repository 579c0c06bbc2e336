// Package processor turns documents into filtered token and lemma n-grams on top of an nlp engine.
package processor

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"
	"unicode"

	"github.com/hyperjump/lexis/internal/nlp"
	"github.com/hyperjump/lexis/internal/stopwords"
	"go.uber.org/zap"
)

// Engine is the analysis capability the processor needs. *nlp.Model implements it.
type Engine interface {
	// Tokenize runs the raw tokenizer only.
	Tokenize(texts []string, opts nlp.PipeOptions) iter.Seq2[*nlp.Doc, error]
	// Pipe runs the full pipeline, including sentence segmentation and lemmatization.
	Pipe(texts []string, opts nlp.PipeOptions) iter.Seq2[*nlp.Doc, error]
	Has(stage string) bool
}

// Options configures a Processor.
type Options struct {
	// Model is the engine model name; "en" when empty.
	Model string
	// Disable lists engine stages to skip. nil means DefaultDisabled; an empty slice disables nothing.
	Disable []string
	// Stopwords are excluded from every n-gram.
	Stopwords []string
	// Overrides fix tunables for every call, winning over per-call arguments.
	Overrides Params
	Logger    *zap.Logger
}

// Processor tokenizes, lemmatizes and n-grams documents. Its settings are read, never written,
// during a call; SetStopwords must not run while a returned sequence is being consumed.
type Processor struct {
	engine    Engine
	model     string
	disabled  []string
	stopwords stopwords.Set
	overrides Params
	logger    *zap.SugaredLogger
}

// New loads the model named in opts and returns a Processor. A model that cannot be loaded
// is a *ConfigError.
func New(opts Options) (*Processor, error) {
	if opts.Model == "" {
		opts.Model = "en"
	}
	if opts.Disable == nil {
		opts.Disable = DefaultDisabled
	}
	model, err := nlp.Load(opts.Model, opts.Disable)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	return NewWithEngine(model, opts)
}

// NewWithEngine returns a Processor backed by engine. opts.Model and opts.Disable are
// recorded for Status only.
func NewWithEngine(engine Engine, opts Options) (*Processor, error) {
	if engine == nil {
		return nil, &ConfigError{Err: fmt.Errorf("nil engine")}
	}
	if err := validateOverrides(opts.Overrides); err != nil {
		return nil, &ConfigError{Err: err}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		engine:    engine,
		model:     opts.Model,
		disabled:  opts.Disable,
		stopwords: stopwords.New(opts.Stopwords...),
		overrides: opts.Overrides,
		logger:    logger.Sugar(),
	}, nil
}

// SetStopwords replaces the stopword set.
func (p *Processor) SetStopwords(words []string) {
	p.stopwords = stopwords.New(words...)
}

// Stopwords returns the stopwords in sorted order.
func (p *Processor) Stopwords() []string {
	return p.stopwords.Words()
}

// Tokenize returns one n-gram batch per document, in input order. Tokens come from the raw
// tokenizer and are lowercased unless the resolved lowercase setting is false.
// Parameters are validated before anything is processed.
func (p *Processor) Tokenize(ctx context.Context, docs []string, opts ...Param) (iter.Seq2[[]string, error], error) {
	s, err := resolveSettings(p.overrides, NewParams(opts...))
	if err != nil {
		return nil, err
	}
	pipe := p.engine.Tokenize(docs, nlp.PipeOptions{BatchSize: s.batchSize, Threads: s.threads})
	return p.stream(ctx, "Tokenize", len(docs), pipe, func(doc *nlp.Doc) []string {
		tokens := make([]string, len(doc.Tokens))
		for i, tok := range doc.Tokens {
			if s.lowercase {
				tokens[i] = tok.Lower
			} else {
				tokens[i] = tok.Text
			}
		}
		return p.ngrams(tokens, s.ngramRange)
	}), nil
}

// Lemmatize returns one n-gram batch per document, in input order. Each sentence's lemma
// string is split on whitespace and the sentences are concatenated in order. Lemmas are used
// as the engine produced them; any lowercase argument is ignored.
func (p *Processor) Lemmatize(ctx context.Context, docs []string, opts ...Param) (iter.Seq2[[]string, error], error) {
	s, err := resolveSettings(p.overrides, NewParams(opts...))
	if err != nil {
		return nil, err
	}
	if !p.engine.Has(nlp.StageLemmatizer) {
		return nil, fmt.Errorf("lemmatize: %w: %s", nlp.ErrStageDisabled, nlp.StageLemmatizer)
	}
	pipe := p.engine.Pipe(docs, nlp.PipeOptions{BatchSize: s.batchSize, Threads: s.threads})
	return p.stream(ctx, "Lemmatize", len(docs), pipe, func(doc *nlp.Doc) []string {
		var lemmas []string
		for _, sent := range doc.Sents {
			lemmas = append(lemmas, strings.Fields(doc.LemmaText(sent))...)
		}
		return p.ngrams(lemmas, s.ngramRange)
	}), nil
}

// stream maps engine docs to batches, logging one line per document pulled.
func (p *Processor) stream(ctx context.Context, verb string, total int, docs iter.Seq2[*nlp.Doc, error], batch func(*nlp.Doc) []string) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		i := 0
		for doc, err := range docs {
			if err != nil {
				yield(nil, processingError(i, err))
				return
			}
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			p.logger.Infof("%s doc %d from %d", verb, i, total)
			if !yield(batch(doc), nil) {
				return
			}
			i++
		}
	}
}

func processingError(index int, err error) error {
	if docErr, ok := err.(*nlp.DocError); ok {
		return &ProcessingError{Index: docErr.Index, Err: docErr.Err}
	}
	return &ProcessingError{Index: index, Err: err}
}

// Ngramize filters tokens and returns every window of each size in r, smallest size first,
// each joined by a space. An instance n-gram override wins over r.
func (p *Processor) Ngramize(tokens []string, r NgramRange) ([]string, error) {
	r = resolve(p.overrides.NgramRange, &r, DefaultNgramRange)
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return p.ngrams(tokens, r), nil
}

// Filter keeps the tokens made only of letters that are not stopwords, in order.
func (p *Processor) Filter(tokens []string) []string {
	filtered := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if isAlpha(tok) && !p.stopwords.Contains(tok) {
			filtered = append(filtered, tok)
		}
	}
	return filtered
}

func (p *Processor) ngrams(tokens []string, r NgramRange) []string {
	return windows(p.Filter(tokens), r)
}

// windows returns all contiguous windows of size r.Min..r.Max joined by spaces,
// ordered by size then start position.
func windows(tokens []string, r NgramRange) []string {
	out := make([]string, 0, countWindows(len(tokens), r))
	for n := r.Min; n <= r.Max; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func countWindows(length int, r NgramRange) int {
	total := 0
	for n := r.Min; n <= r.Max; n++ {
		total += max(0, length-n+1)
	}
	return total
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Status describes the engine and configuration behind a Processor.
type Status struct {
	Model     string
	Stages    []string
	Disabled  []string
	Stopwords int
}

var knownStages = []string{nlp.StageLemmatizer, nlp.StageParser, nlp.StageNER, nlp.StageSentencizer}

// Status reports which stages the engine runs.
func (p *Processor) Status() Status {
	var stages []string
	for _, stage := range knownStages {
		if p.engine.Has(stage) {
			stages = append(stages, stage)
		}
	}
	return Status{
		Model:     p.model,
		Stages:    stages,
		Disabled:  slices.Clone(p.disabled),
		Stopwords: len(p.stopwords),
	}
}
