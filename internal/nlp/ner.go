package nlp

import (
	"unicode"
	"unicode/utf8"
)

// EntityLabel is the label given to every span found by the ner stage.
const EntityLabel = "NAME"

// recognizeEntities marks runs of capitalized words as entities. A single capitalized word
// at the start of a sentence is ordinary sentence case and is skipped.
func recognizeEntities(tokens []Token) []Span {
	var ents []Span
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		if end-start > 1 || !sentenceInitial(tokens, start) {
			ents = append(ents, Span{Start: start, End: end, Label: EntityLabel})
		}
		start = -1
	}
	for i, tok := range tokens {
		if tok.Kind == KindWord && isCapitalized(tok.Text) {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(tokens))
	return ents
}

func sentenceInitial(tokens []Token, i int) bool {
	for j := i - 1; j >= 0; j-- {
		if isSentenceEnd(tokens[j]) {
			return true
		}
		if tokens[j].Kind == KindPunct && closers[tokens[j].Text] {
			continue
		}
		return false
	}
	return true
}

func isCapitalized(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
