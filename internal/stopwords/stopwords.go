// Package stopwords builds stopword sets from presets, files and explicit lists.
package stopwords

import (
	"fmt"
	"slices"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/registry"
)

// Preset names accepted by Preset.
const (
	PresetNone    = "none"
	PresetEnglish = "english"
)

// Set is a stopword set. Membership is exact, case-sensitive string equality.
type Set map[string]struct{}

// New returns a set holding words.
func New(words ...string) Set {
	s := make(Set, len(words))
	s.Add(words...)
	return s
}

// Add inserts words into the set.
func (s Set) Add(words ...string) {
	for _, w := range words {
		if w != "" {
			s[w] = struct{}{}
		}
	}
}

// Contains reports whether word is a stopword.
func (s Set) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// Words returns the set members in sorted order.
func (s Set) Words() []string {
	out := make([]string, 0, len(s))
	for w := range s {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

// Preset returns a named stopword list. "" and "none" are empty; "english" is bleve's stop_en list.
func Preset(name string) (Set, error) {
	switch name {
	case "", PresetNone:
		return New(), nil
	case PresetEnglish:
		cache := registry.NewCache()
		tm, err := cache.TokenMapNamed(en.StopName)
		if err != nil {
			return nil, fmt.Errorf("load english stopwords: %w", err)
		}
		return fromTokenMap(tm), nil
	default:
		return nil, fmt.Errorf("unknown stopword preset %q", name)
	}
}

// LoadFile reads one stopword per line; lines starting with # are comments.
func LoadFile(path string) (Set, error) {
	tm := analysis.NewTokenMap()
	if err := tm.LoadFile(path); err != nil {
		return nil, fmt.Errorf("load stopwords file: %w", err)
	}
	return fromTokenMap(tm), nil
}

// Build combines a preset, an optional file and explicit words into one set.
func Build(preset, file string, words []string) (Set, error) {
	set, err := Preset(preset)
	if err != nil {
		return nil, err
	}
	if file != "" {
		fromFile, err := LoadFile(file)
		if err != nil {
			return nil, err
		}
		set.Add(fromFile.Words()...)
	}
	set.Add(words...)
	return set, nil
}

func fromTokenMap(tm analysis.TokenMap) Set {
	s := make(Set, len(tm))
	for w := range tm {
		s.Add(w)
	}
	return s
}
