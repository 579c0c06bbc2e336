package nlp

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	unicodetok "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

// clitics are split off the end of a word, longest first.
var clitics = []string{"n't", "n’t", "'re", "’re", "'ve", "’ve", "'ll", "’ll", "'s", "’s", "'d", "’d", "'m", "’m"}

// tokenizer segments words with bleve's UAX#29 tokenizer and recovers the punctuation
// between them, which the word segmenter drops.
type tokenizer struct {
	words analysis.Tokenizer
	lower analysis.TokenFilter
}

func newTokenizer() *tokenizer {
	return &tokenizer{
		words: unicodetok.NewUnicodeTokenizer(),
		lower: lowercase.NewLowerCaseFilter(),
	}
}

func (t *tokenizer) tokenize(text string) []Token {
	stream := t.words.Tokenize([]byte(text))

	// The lowercase filter rewrites terms in place, so it gets its own copy.
	lowered := make(analysis.TokenStream, len(stream))
	for i, tok := range stream {
		lowered[i] = &analysis.Token{
			Term:  append([]byte(nil), tok.Term...),
			Start: tok.Start,
			End:   tok.End,
			Type:  tok.Type,
		}
	}
	lowered = t.lower.Filter(lowered)

	tokens := make([]Token, 0, len(stream)*2)
	prev := 0
	for i, tok := range stream {
		tokens = appendPunct(tokens, text, prev, tok.Start)
		kind := KindWord
		if tok.Type == analysis.Numeric {
			kind = KindNumber
		}
		tokens = appendWord(tokens, text[tok.Start:tok.End], string(lowered[i].Term), tok.Start, kind)
		prev = tok.End
	}
	return appendPunct(tokens, text, prev, len(text))
}

// appendWord appends a word token, splitting a trailing clitic into its own token.
func appendWord(tokens []Token, text, lower string, offset int, kind Kind) []Token {
	if kind == KindWord && len(text) == len(lower) {
		for _, c := range clitics {
			if len(lower) > len(c) && strings.HasSuffix(lower, c) {
				cut := len(text) - len(c)
				return append(tokens,
					Token{Text: text[:cut], Lower: lower[:cut], Kind: kind, Start: offset, End: offset + cut},
					Token{Text: text[cut:], Lower: lower[cut:], Kind: kind, Start: offset + cut, End: offset + len(text)},
				)
			}
		}
	}
	return append(tokens, Token{Text: text, Lower: lower, Kind: kind, Start: offset, End: offset + len(text)})
}

// appendPunct emits every non-space rune of text[from:to] as a punctuation token.
// Runs of periods stay together so an ellipsis is one token.
func appendPunct(tokens []Token, text string, from, to int) []Token {
	gap := text[from:to]
	for i := 0; i < len(gap); {
		r, size := utf8.DecodeRuneInString(gap[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		end := i + size
		if r == '.' {
			for end < len(gap) && gap[end] == '.' {
				end++
			}
		}
		piece := gap[i:end]
		tokens = append(tokens, Token{Text: piece, Lower: strings.ToLower(piece), Kind: KindPunct, Start: from + i, End: from + end})
		i = end
	}
	return tokens
}
