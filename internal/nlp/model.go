// Package nlp provides the English analysis engine: a bleve-based tokenizer plus
// sentence segmentation, lemmatization, entity and phrase stages that can be disabled by name.
package nlp

import (
	"fmt"
	"slices"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Pipeline stage names.
const (
	StageSentencizer = "sentencizer"
	StageLemmatizer  = "lemmatizer"
	StageParser      = "parser"
	StageNER         = "ner"
)

// stage annotates a document in place.
type stage func(doc *Doc)

// models maps a model name to its stages in pipeline order. The sentencizer is not part of
// a model; Load appends it after the model's own stages.
var models = map[string][]string{
	"en":             {StageLemmatizer, StageParser, StageNER},
	"en_core_web_sm": {StageLemmatizer, StageParser, StageNER},
}

var stageFuncs = map[string]stage{
	StageSentencizer: func(doc *Doc) { doc.Sents = segmentSentences(doc.Tokens) },
	StageLemmatizer:  lemmatizeTokens,
	StageParser:      func(doc *Doc) { doc.Chunks = chunkPhrases(doc.Tokens) },
	StageNER:         func(doc *Doc) { doc.Ents = recognizeEntities(doc.Tokens) },
}

// Model is a loaded language model. It is safe for concurrent use once loaded.
type Model struct {
	name      string
	tokenizer *tokenizer
	stages    []string
	disabled  []string
}

// Load loads the named model with the given stages disabled.
// Every name in disable must be a stage of the model or the sentencizer.
func Load(name string, disable []string) (*Model, error) {
	available, ok := models[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrModelNotFound, name)
	}
	known := append(slices.Clone(available), StageSentencizer)
	for _, d := range disable {
		if !slices.Contains(known, d) {
			return nil, fmt.Errorf("%w: %q (model %s has %v)", ErrUnknownStage, d, name, known)
		}
	}
	m := &Model{
		name:      name,
		tokenizer: newTokenizer(),
		disabled:  slices.Clone(disable),
	}
	for _, s := range known {
		if !slices.Contains(disable, s) {
			m.stages = append(m.stages, s)
		}
	}
	return m, nil
}

// Name returns the model name it was loaded under.
func (m *Model) Name() string {
	return m.name
}

// Stages returns the enabled stages in pipeline order.
func (m *Model) Stages() []string {
	return slices.Clone(m.stages)
}

// Disabled returns the stages disabled at load time.
func (m *Model) Disabled() []string {
	return slices.Clone(m.disabled)
}

// Has reports whether the stage is enabled.
func (m *Model) Has(stage string) bool {
	return slices.Contains(m.stages, stage)
}

// Make runs only the tokenizer over text.
func (m *Model) Make(text string) (*Doc, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidEncoding
	}
	text = norm.NFC.String(text)
	return &Doc{Text: text, Tokens: m.tokenizer.tokenize(text)}, nil
}

// Process runs the tokenizer and every enabled stage over text.
func (m *Model) Process(text string) (*Doc, error) {
	doc, err := m.Make(text)
	if err != nil {
		return nil, err
	}
	for _, name := range m.stages {
		stageFuncs[name](doc)
	}
	if !m.Has(StageSentencizer) && len(doc.Tokens) > 0 {
		doc.Sents = []Span{{Start: 0, End: len(doc.Tokens)}}
	}
	return doc, nil
}
