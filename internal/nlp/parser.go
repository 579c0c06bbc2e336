package nlp

import "unicode"

// PhraseLabel is the label given to every span found by the parser stage.
const PhraseLabel = "PHRASE"

// functionWords break phrases. Closed-class English words only.
var functionWords = toSet(
	"a", "an", "the", "this", "that", "these", "those", "my", "your", "his", "her", "its", "our", "their",
	"i", "you", "he", "she", "it", "we", "they", "me", "him", "us", "them", "who", "whom", "which", "what",
	"and", "or", "but", "nor", "so", "yet", "if", "then", "than", "because", "while", "although", "though",
	"of", "in", "on", "at", "by", "for", "with", "about", "against", "between", "into", "through", "during",
	"before", "after", "above", "below", "to", "from", "up", "down", "out", "off", "over", "under", "as",
	"is", "am", "are", "was", "were", "be", "been", "being", "have", "has", "had", "do", "does", "did",
	"will", "would", "shall", "should", "can", "could", "may", "might", "must", "not", "no",
	"'s", "’s", "n't", "n’t", "'re", "'ve", "'ll", "'d", "'m",
)

// chunkPhrases groups maximal runs of alphabetic content words. Punctuation, numbers and
// function words end a phrase.
func chunkPhrases(tokens []Token) []Span {
	var chunks []Span
	start := -1
	for i, tok := range tokens {
		if isContentWord(tok) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			chunks = append(chunks, Span{Start: start, End: i, Label: PhraseLabel})
			start = -1
		}
	}
	if start >= 0 {
		chunks = append(chunks, Span{Start: start, End: len(tokens), Label: PhraseLabel})
	}
	return chunks
}

func isContentWord(tok Token) bool {
	if tok.Kind != KindWord || functionWords[tok.Lower] {
		return false
	}
	for _, r := range tok.Text {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func toSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
