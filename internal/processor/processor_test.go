package processor

import (
	"context"
	"errors"
	"iter"
	"slices"
	"testing"

	"github.com/hyperjump/lexis/internal/nlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func collect(t *testing.T, seq iter.Seq2[[]string, error]) [][]string {
	t.Helper()
	out := [][]string{}
	for batch, err := range seq {
		require.NoError(t, err)
		out = append(out, batch)
	}
	return out
}

func newProcessor(t *testing.T, opts Options) (*Processor, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	opts.Logger = zap.New(core)
	p, err := New(opts)
	require.NoError(t, err)
	return p, logs
}

var catDog = []string{"The cat sat.", "A dog ran fast."}

func TestTokenize(t *testing.T) {
	p, logs := newProcessor(t, Options{})
	seq, err := p.Tokenize(context.Background(), catDog, WithNgramRange(1, 2))
	require.NoError(t, err)
	assert.Zero(t, logs.Len(), "nothing runs before the sequence is pulled")

	got := collect(t, seq)
	assert.Equal(t, [][]string{
		{"the", "cat", "sat", "the cat", "cat sat"},
		{"a", "dog", "ran", "fast", "a dog", "dog ran", "ran fast"},
	}, got)

	var msgs []string
	for _, e := range logs.All() {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{"Tokenize doc 0 from 2", "Tokenize doc 1 from 2"}, msgs)
}

func TestTokenize_stopwords(t *testing.T) {
	p, _ := newProcessor(t, Options{Stopwords: []string{"the", "a"}})
	seq, err := p.Tokenize(context.Background(), catDog)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"cat", "sat"}, {"dog", "ran", "fast"}}, collect(t, seq))
}

func TestTokenize_keepsCase(t *testing.T) {
	p, _ := newProcessor(t, Options{Stopwords: []string{"the"}})
	seq, err := p.Tokenize(context.Background(), []string{"The cat"}, WithLowercase(false))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"The", "cat"}}, collect(t, seq), "stopwords match case-sensitively")
}

func TestTokenize_edgeCases(t *testing.T) {
	p, logs := newProcessor(t, Options{})

	seq, err := p.Tokenize(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, collect(t, seq))
	assert.Zero(t, logs.Len())

	seq, err = p.Tokenize(context.Background(), []string{"123 456!"})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{}}, collect(t, seq))
}

func TestTokenize_invalidParams(t *testing.T) {
	p, _ := newProcessor(t, Options{})
	ctx := context.Background()

	_, err := p.Tokenize(ctx, catDog, WithNgramRange(2, 1))
	var rangeErr *InvalidRangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 2, rangeErr.Min)

	_, err = p.Tokenize(ctx, catDog, WithNgramRange(0, 1))
	assert.ErrorAs(t, err, &rangeErr)

	_, err = p.Tokenize(ctx, catDog, WithBatchSize(0))
	assert.ErrorIs(t, err, ErrInvalidParam)

	_, err = p.Lemmatize(ctx, catDog, WithThreads(-1))
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestTokenize_overridesWin(t *testing.T) {
	lower := false
	p, _ := newProcessor(t, Options{Overrides: Params{
		NgramRange: &NgramRange{Min: 2, Max: 2},
		Lowercase:  &lower,
	}})
	seq, err := p.Tokenize(context.Background(), []string{"The cat sat"}, WithNgramRange(1, 1), WithLowercase(true))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"The cat", "cat sat"}}, collect(t, seq))

	// a bad call argument is ignored when an override covers it
	_, err = p.Tokenize(context.Background(), nil, WithNgramRange(5, 1))
	assert.NoError(t, err)
}

func TestTokenize_processingError(t *testing.T) {
	for _, threads := range []int{1, 3} {
		p, _ := newProcessor(t, Options{})
		seq, err := p.Tokenize(context.Background(), []string{"fine", "bad \xff", "never"}, WithThreads(threads))
		require.NoError(t, err)

		var batches [][]string
		var procErr *ProcessingError
		for batch, err := range seq {
			if err != nil {
				require.ErrorAs(t, err, &procErr)
				break
			}
			batches = append(batches, batch)
		}
		require.NotNil(t, procErr, "threads=%d", threads)
		assert.Equal(t, 1, procErr.Index)
		assert.ErrorIs(t, procErr, nlp.ErrInvalidEncoding)
		assert.Equal(t, [][]string{{"fine"}}, batches)
	}
}

func TestTokenize_cancelled(t *testing.T) {
	p, _ := newProcessor(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	seq, err := p.Tokenize(ctx, catDog)
	require.NoError(t, err)

	n := 0
	for _, err := range seq {
		if err != nil {
			assert.ErrorIs(t, err, context.Canceled)
			break
		}
		n++
		cancel()
	}
	assert.Equal(t, 1, n)
}

func TestTokenize_stopPulling(t *testing.T) {
	p, logs := newProcessor(t, Options{})
	seq, err := p.Tokenize(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	for range seq {
		break
	}
	assert.Equal(t, 1, logs.Len())
}

func TestLemmatize(t *testing.T) {
	p, logs := newProcessor(t, Options{})
	seq, err := p.Lemmatize(context.Background(), []string{"The cats were running. Dogs ran!", "123"}, WithNgramRange(1, 2))
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"the", "cat", "be", "run", "dog", "run", "the cat", "cat be", "be run", "run dog", "dog run"},
		{},
	}, collect(t, seq))
	assert.Equal(t, "Lemmatize doc 1 from 2", logs.All()[1].Message)
}

func TestLemmatize_stopwords(t *testing.T) {
	p, _ := newProcessor(t, Options{Stopwords: []string{"the", "a", "be"}})
	seq, err := p.Lemmatize(context.Background(), catDog)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"cat", "sit"}, {"dog", "run", "fast"}}, collect(t, seq))
}

func TestLemmatize_lemmatizerDisabled(t *testing.T) {
	p, _ := newProcessor(t, Options{Disable: []string{nlp.StageLemmatizer}})
	_, err := p.Lemmatize(context.Background(), catDog)
	assert.ErrorIs(t, err, nlp.ErrStageDisabled)

	seq, err := p.Tokenize(context.Background(), catDog)
	require.NoError(t, err)
	assert.Len(t, collect(t, seq), 2)
}

func TestNew_configError(t *testing.T) {
	_, err := New(Options{Model: "xx_missing"})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, nlp.ErrModelNotFound)

	_, err = New(Options{Disable: []string{"tagger"}})
	assert.ErrorAs(t, err, &cfgErr)

	bad := 0
	_, err = New(Options{Overrides: Params{BatchSize: &bad}})
	assert.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, ErrInvalidParam)

	_, err = NewWithEngine(nil, Options{})
	assert.ErrorAs(t, err, &cfgErr)
}

func TestNew_defaultDisabled(t *testing.T) {
	p, _ := newProcessor(t, Options{})
	m := p.engine.(*nlp.Model)
	assert.Equal(t, DefaultDisabled, m.Disabled())

	p, _ = newProcessor(t, Options{Disable: []string{}})
	m = p.engine.(*nlp.Model)
	assert.Empty(t, m.Disabled())
}

type recordingEngine struct {
	opts    nlp.PipeOptions
	stages  map[string]bool
	tokened bool
	piped   bool
}

func (e *recordingEngine) Tokenize(texts []string, opts nlp.PipeOptions) iter.Seq2[*nlp.Doc, error] {
	e.tokened, e.opts = true, opts
	return e.docs(texts)
}

func (e *recordingEngine) Pipe(texts []string, opts nlp.PipeOptions) iter.Seq2[*nlp.Doc, error] {
	e.piped, e.opts = true, opts
	return e.docs(texts)
}

func (e *recordingEngine) Has(stage string) bool { return e.stages[stage] }

func (e *recordingEngine) docs(texts []string) iter.Seq2[*nlp.Doc, error] {
	return func(yield func(*nlp.Doc, error) bool) {
		for _, text := range texts {
			doc := &nlp.Doc{Text: text, Tokens: []nlp.Token{{Text: text, Lower: text, Lemma: text}}}
			doc.Sents = []nlp.Span{{Start: 0, End: 1}}
			if !yield(doc, nil) {
				return
			}
		}
	}
}

func TestEngineOptionsForwarded(t *testing.T) {
	eng := &recordingEngine{stages: map[string]bool{nlp.StageLemmatizer: true}}
	threads := 4
	p, err := NewWithEngine(eng, Options{Overrides: Params{Threads: &threads}})
	require.NoError(t, err)

	seq, err := p.Tokenize(context.Background(), []string{"x"}, WithThreads(2))
	require.NoError(t, err)
	collect(t, seq)
	assert.True(t, eng.tokened)
	assert.False(t, eng.piped)
	assert.Equal(t, nlp.PipeOptions{BatchSize: DefaultBatchSize, Threads: 4}, eng.opts)

	seq, err = p.Lemmatize(context.Background(), []string{"x"}, WithBatchSize(7))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x"}}, collect(t, seq))
	assert.True(t, eng.piped)
	assert.Equal(t, nlp.PipeOptions{BatchSize: 7, Threads: 4}, eng.opts)
}

func TestEngineErrorWithoutIndex(t *testing.T) {
	eng := &failingEngine{after: 2, err: errors.New("engine crashed")}
	p, err := NewWithEngine(eng, Options{})
	require.NoError(t, err)
	seq, err := p.Tokenize(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	var procErr *ProcessingError
	for _, err := range seq {
		if err != nil {
			require.ErrorAs(t, err, &procErr)
		}
	}
	require.NotNil(t, procErr)
	assert.Equal(t, 2, procErr.Index)
	assert.EqualError(t, procErr, "processing document 2: engine crashed")
}

type failingEngine struct {
	recordingEngine
	after int
	err   error
}

func (e *failingEngine) Tokenize(texts []string, _ nlp.PipeOptions) iter.Seq2[*nlp.Doc, error] {
	return func(yield func(*nlp.Doc, error) bool) {
		for doc := range e.docs(texts[:e.after]) {
			if !yield(doc, nil) {
				return
			}
		}
		yield(nil, e.err)
	}
}

func TestNgramize(t *testing.T) {
	p, _ := newProcessor(t, Options{Stopwords: []string{"the"}})
	tokens := []string{"the", "quick", "brown", "fox", "42", "jumps", "o'clock", "", "над"}

	got, err := p.Ngramize(tokens, NgramRange{Min: 1, Max: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"quick", "brown", "fox", "jumps", "над",
		"quick brown", "brown fox", "fox jumps", "jumps над",
		"quick brown fox", "brown fox jumps", "fox jumps над",
	}, got)

	got, err = p.Ngramize(tokens, NgramRange{Min: 3, Max: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"quick brown fox", "brown fox jumps", "fox jumps над"}, got, "only windows of the requested sizes")

	got, err = p.Ngramize([]string{"one", "two"}, NgramRange{Min: 3, Max: 4})
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = p.Ngramize(tokens, NgramRange{Min: 2, Max: 1})
	var rangeErr *InvalidRangeError
	assert.ErrorAs(t, err, &rangeErr)
	assert.EqualError(t, err, "invalid n-gram range (2, 1): need 1 <= min <= max")
}

func TestNgramize_properties(t *testing.T) {
	p, _ := newProcessor(t, Options{Stopwords: []string{"and", "or"}})
	inputs := [][]string{
		nil,
		{"a"},
		{"and", "or"},
		{"alpha", "beta", "and", "gamma", "1st", "delta", "x-ray", "epsilon"},
		{"The", "the", "THE", "and", "And"},
	}
	for _, tokens := range inputs {
		filtered := p.Filter(tokens)
		assert.Equal(t, filtered, p.Filter(filtered), "filter is idempotent")

		unigrams, err := p.Ngramize(tokens, NgramRange{Min: 1, Max: 1})
		require.NoError(t, err)
		assert.Equal(t, filtered, unigrams)

		for n := 1; n <= 4; n++ {
			got, err := p.Ngramize(tokens, NgramRange{Min: n, Max: n})
			require.NoError(t, err)
			assert.Len(t, got, max(0, len(filtered)-n+1))
			for _, gram := range got {
				assert.NotContains(t, []string{"and", "or", "1st", "x-ray"}, gram)
			}
		}
	}
	assert.Equal(t, []string{"The", "the", "THE", "And"}, p.Filter(inputs[4]))
}

func TestNgramize_override(t *testing.T) {
	p, _ := newProcessor(t, Options{Overrides: Params{NgramRange: &NgramRange{Min: 2, Max: 2}}})
	got, err := p.Ngramize([]string{"a", "b", "c"}, NgramRange{Min: 1, Max: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"a b", "b c"}, got)
}

func TestSetStopwords(t *testing.T) {
	p, _ := newProcessor(t, Options{Stopwords: []string{"b", "a"}})
	assert.Equal(t, []string{"a", "b"}, p.Stopwords())

	p.SetStopwords([]string{"cat"})
	seq, err := p.Tokenize(context.Background(), catDog[:1])
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"the", "sat"}}, collect(t, seq))
	assert.True(t, slices.Equal([]string{"cat"}, p.Stopwords()))
}

func TestStatus(t *testing.T) {
	p, _ := newProcessor(t, Options{Stopwords: []string{"a", "b"}})
	st := p.Status()
	assert.Equal(t, "en", st.Model)
	assert.Equal(t, []string{nlp.StageLemmatizer, nlp.StageSentencizer}, st.Stages)
	assert.Equal(t, DefaultDisabled, st.Disabled)
	assert.Equal(t, 2, st.Stopwords)
}
