package nlp

var sentenceEnders = map[string]bool{".": true, "!": true, "?": true, "…": true, "。": true}

// closers stay with the sentence they follow: `He said "stop." Then...`
var closers = map[string]bool{`"`: true, "'": true, ")": true, "]": true, "}": true, "”": true, "’": true, "»": true}

func isSentenceEnd(tok Token) bool {
	if tok.Kind != KindPunct {
		return false
	}
	if sentenceEnders[tok.Text] {
		return true
	}
	// ellipsis runs
	return len(tok.Text) > 1 && tok.Text[0] == '.'
}

// segmentSentences starts a new sentence at the first token after a terminator run
// that is neither another terminator nor a closing quote or bracket.
func segmentSentences(tokens []Token) []Span {
	if len(tokens) == 0 {
		return nil
	}
	var sents []Span
	start := 0
	seenEnd := false
	for i, tok := range tokens {
		end := isSentenceEnd(tok)
		if seenEnd && !end && !(tok.Kind == KindPunct && closers[tok.Text]) {
			sents = append(sents, Span{Start: start, End: i})
			start = i
			seenEnd = false
		}
		if end {
			seenEnd = true
		}
	}
	return append(sents, Span{Start: start, End: len(tokens)})
}
