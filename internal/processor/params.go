package processor

import "fmt"

// Defaults used when neither the instance nor the call sets a value.
const (
	DefaultBatchSize = 1000
	DefaultThreads   = 1
	DefaultLowercase = true
)

// DefaultNgramRange is unigrams only.
var DefaultNgramRange = NgramRange{Min: 1, Max: 1}

// DefaultDisabled lists the stages skipped when Options.Disable is nil.
var DefaultDisabled = []string{"parser", "ner"}

// NgramRange is an inclusive range of window sizes.
type NgramRange struct {
	Min int
	Max int
}

// Validate returns an *InvalidRangeError unless 1 <= Min <= Max.
func (r NgramRange) Validate() error {
	if r.Min < 1 || r.Min > r.Max {
		return &InvalidRangeError{Min: r.Min, Max: r.Max}
	}
	return nil
}

// Params holds the tunables. A nil field is unset.
type Params struct {
	NgramRange *NgramRange
	BatchSize  *int
	Threads    *int
	Lowercase  *bool
}

// Param sets one tunable for a call.
type Param func(*Params)

// WithNgramRange sets the n-gram window sizes.
func WithNgramRange(lo, hi int) Param {
	return func(p *Params) { p.NgramRange = &NgramRange{Min: lo, Max: hi} }
}

// WithBatchSize sets how many documents the engine processes per batch.
func WithBatchSize(n int) Param {
	return func(p *Params) { p.BatchSize = &n }
}

// WithThreads sets the engine's per-batch parallelism.
func WithThreads(n int) Param {
	return func(p *Params) { p.Threads = &n }
}

// WithLowercase sets whether tokens are lowercased. Ignored by Lemmatize.
func WithLowercase(lower bool) Param {
	return func(p *Params) { p.Lowercase = &lower }
}

// NewParams applies opts to an empty Params.
func NewParams(opts ...Param) Params {
	var p Params
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// settings are the resolved tunables of one call.
type settings struct {
	ngramRange NgramRange
	batchSize  int
	threads    int
	lowercase  bool
}

// resolve picks the instance override, then the call argument, then the fallback.
func resolve[T any](override, arg *T, fallback T) T {
	if override != nil {
		return *override
	}
	if arg != nil {
		return *arg
	}
	return fallback
}

func resolveSettings(override, call Params) (settings, error) {
	s := settings{
		ngramRange: resolve(override.NgramRange, call.NgramRange, DefaultNgramRange),
		batchSize:  resolve(override.BatchSize, call.BatchSize, DefaultBatchSize),
		threads:    resolve(override.Threads, call.Threads, DefaultThreads),
		lowercase:  resolve(override.Lowercase, call.Lowercase, DefaultLowercase),
	}
	return s, s.validate()
}

func (s settings) validate() error {
	if err := s.ngramRange.Validate(); err != nil {
		return err
	}
	if s.batchSize < 1 {
		return fmt.Errorf("%w: batch size %d", ErrInvalidParam, s.batchSize)
	}
	if s.threads < 1 {
		return fmt.Errorf("%w: threads %d", ErrInvalidParam, s.threads)
	}
	return nil
}

// validateOverrides checks only the fields that are set.
func validateOverrides(p Params) error {
	if p.NgramRange != nil {
		if err := p.NgramRange.Validate(); err != nil {
			return err
		}
	}
	if p.BatchSize != nil && *p.BatchSize < 1 {
		return fmt.Errorf("%w: batch size %d", ErrInvalidParam, *p.BatchSize)
	}
	if p.Threads != nil && *p.Threads < 1 {
		return fmt.Errorf("%w: threads %d", ErrInvalidParam, *p.Threads)
	}
	return nil
}
