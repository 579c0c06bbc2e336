package models

import "fmt"

// NgramRange is the wire form of an n-gram range: [min, max].
type NgramRange [2]int

// ProcessRequest is the body of the tokenize and lemmatize endpoints.
// Unset fields fall back to the processor's defaults.
type ProcessRequest struct {
	Documents  []string    `json:"documents"`
	NgramRange *NgramRange `json:"ngram_range,omitempty"`
	BatchSize  *int        `json:"batch_size,omitempty"`
	Threads    *int        `json:"threads,omitempty"`
	Lowercase  *bool       `json:"lowercase,omitempty"`
}

// Validate rejects a request without a documents field.
func (r *ProcessRequest) Validate() error {
	if r.Documents == nil {
		return fmt.Errorf("documents is required")
	}
	return nil
}

// ProcessResponse carries one batch per request document, in order.
type ProcessResponse struct {
	RequestID string     `json:"request_id"`
	Batches   [][]string `json:"batches"`
	TookMs    int64      `json:"took_ms"`
}

// NgramizeRequest is the body of the ngramize endpoint.
type NgramizeRequest struct {
	Tokens     []string    `json:"tokens"`
	NgramRange *NgramRange `json:"ngram_range,omitempty"`
}

// NgramizeResponse is a single batch.
type NgramizeResponse struct {
	RequestID string   `json:"request_id"`
	Ngrams    []string `json:"ngrams"`
}

// StatusResponse describes the loaded model and the processor configuration.
type StatusResponse struct {
	Model     string   `json:"model"`
	Stages    []string `json:"stages"`
	Disabled  []string `json:"disabled"`
	Stopwords int      `json:"stopwords"`
	Version   string   `json:"version"`
}

// ErrorResponse is returned for every failed request. Index is set for per-document failures.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
	Index     *int   `json:"index,omitempty"`
}
