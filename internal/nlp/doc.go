package nlp

import "strings"

// Kind classifies a token produced by the tokenizer.
type Kind int

const (
	// KindWord is a run of letters (possibly with inner apostrophes or a clitic such as "n't").
	KindWord Kind = iota
	// KindNumber is a numeric token such as "42" or "3.14".
	KindNumber
	// KindPunct is a punctuation or symbol token found between words.
	KindPunct
)

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindNumber:
		return "number"
	case KindPunct:
		return "punct"
	default:
		return "unknown"
	}
}

// Token is one unit of a document. Start and End are byte offsets into Doc.Text.
type Token struct {
	Text  string
	Lower string
	Lemma string // empty unless the lemmatizer ran
	Kind  Kind
	Start int
	End   int
}

// Span is a half-open range of token indices [Start, End).
type Span struct {
	Start int
	End   int
	Label string
}

// Len returns the number of tokens in the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Doc is the result of running a model over one text.
type Doc struct {
	Text   string
	Tokens []Token
	Sents  []Span
	Ents   []Span
	Chunks []Span
}

// SpanText returns the original text covered by s.
func (d *Doc) SpanText(s Span) string {
	if s.Len() <= 0 {
		return ""
	}
	return d.Text[d.Tokens[s.Start].Start:d.Tokens[s.End-1].End]
}

// LemmaText returns the lemmas of the tokens in s joined by a single space.
func (d *Doc) LemmaText(s Span) string {
	lemmas := make([]string, 0, s.Len())
	for _, tok := range d.Tokens[s.Start:s.End] {
		lemmas = append(lemmas, tok.Lemma)
	}
	return strings.TrimSpace(strings.Join(lemmas, " "))
}
