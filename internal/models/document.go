// Package models defines the documents, n-gram batches and API payloads shared across lexis.
package models

// Document is one text to process, usually loaded from a file.
type Document struct {
	ID     string `json:"id"`
	Source string `json:"source,omitempty"`
	Text   string `json:"text"`
}

// Batch is the n-gram batch of one document.
type Batch struct {
	Index  int      `json:"index"`
	ID     string   `json:"id,omitempty"`
	Source string   `json:"source,omitempty"`
	Ngrams []string `json:"ngrams"`
}

// Removal records that a watched file went away.
type Removal struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Removed bool   `json:"removed"`
}

// Texts returns the text of each document, in order.
func Texts(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Text
	}
	return out
}
