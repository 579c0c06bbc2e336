package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/hyperjump/lexis/internal/config"
	"github.com/hyperjump/lexis/internal/models"
	"github.com/hyperjump/lexis/internal/nlp"
	"github.com/hyperjump/lexis/internal/processor"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, opts processor.Options) http.Handler {
	t.Helper()
	proc, err := processor.New(opts)
	if err != nil {
		t.Fatalf("processor.New: %v", err)
	}
	return NewServer(proc, &config.ServerConfig{Host: "localhost", Port: 8080}, "test", zap.NewNop()).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v (body %q)", err, w.Body.String())
	}
	return out
}

func TestHandleTokenize(t *testing.T) {
	h := newTestServer(t, processor.Options{})
	w := do(t, h, http.MethodPost, "/api/v1/tokenize",
		`{"documents": ["The cat sat.", "A dog ran fast."], "ngram_range": [1, 2]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body)
	}
	resp := decode[models.ProcessResponse](t, w)
	if _, err := uuid.Parse(resp.RequestID); err != nil {
		t.Errorf("request_id %q is not a uuid", resp.RequestID)
	}
	if w.Header().Get(RequestIDHeader) != resp.RequestID {
		t.Errorf("header id %q != body id %q", w.Header().Get(RequestIDHeader), resp.RequestID)
	}
	want := [][]string{
		{"the", "cat", "sat", "the cat", "cat sat"},
		{"a", "dog", "ran", "fast", "a dog", "dog ran", "ran fast"},
	}
	if len(resp.Batches) != len(want) {
		t.Fatalf("batches: got %v", resp.Batches)
	}
	for i := range want {
		if len(resp.Batches[i]) != len(want[i]) {
			t.Fatalf("batch %d: got %v, want %v", i, resp.Batches[i], want[i])
		}
		for j := range want[i] {
			if resp.Batches[i][j] != want[i][j] {
				t.Errorf("batch %d[%d]: got %q, want %q", i, j, resp.Batches[i][j], want[i][j])
			}
		}
	}
}

func TestHandleTokenize_keepsCallerRequestID(t *testing.T) {
	h := newTestServer(t, processor.Options{})
	id := uuid.NewString()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/tokenize", bytes.NewBufferString(`{"documents": []}`))
	r.Header.Set(RequestIDHeader, id)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	resp := decode[models.ProcessResponse](t, w)
	if resp.RequestID != id {
		t.Errorf("request_id = %q, want %q", resp.RequestID, id)
	}
	if len(resp.Batches) != 0 {
		t.Errorf("empty input should give no batches, got %v", resp.Batches)
	}
}

func TestHandleLemmatize(t *testing.T) {
	h := newTestServer(t, processor.Options{Stopwords: []string{"the", "be"}})
	w := do(t, h, http.MethodPost, "/api/v1/lemmatize", `{"documents": ["The cats were running."]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body)
	}
	resp := decode[models.ProcessResponse](t, w)
	if len(resp.Batches) != 1 || len(resp.Batches[0]) != 2 || resp.Batches[0][0] != "cat" || resp.Batches[0][1] != "run" {
		t.Errorf("batches: got %v", resp.Batches)
	}
}

func TestHandleProcess_errors(t *testing.T) {
	tests := []struct {
		name string
		opts processor.Options
		path string
		body string
		want int
	}{
		{"bad json", processor.Options{}, "/api/v1/tokenize", `{`, http.StatusBadRequest},
		{"missing documents", processor.Options{}, "/api/v1/tokenize", `{}`, http.StatusBadRequest},
		{"inverted range", processor.Options{}, "/api/v1/tokenize", `{"documents": ["a"], "ngram_range": [3, 1]}`, http.StatusBadRequest},
		{"zero threads", processor.Options{}, "/api/v1/lemmatize", `{"documents": ["a"], "threads": 0}`, http.StatusBadRequest},
		{"lemmatizer disabled", processor.Options{Disable: []string{"lemmatizer"}}, "/api/v1/lemmatize", `{"documents": ["a"]}`, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newTestServer(t, tt.opts), http.MethodPost, tt.path, tt.body)
			if w.Code != tt.want {
				t.Fatalf("status: got %d, want %d (body %s)", w.Code, tt.want, w.Body)
			}
			resp := decode[models.ErrorResponse](t, w)
			if resp.Error == "" {
				t.Error("error message should be set")
			}
			if resp.RequestID == "" {
				t.Error("request_id should be set on errors")
			}
		})
	}
}

func TestHandleNgramize(t *testing.T) {
	h := newTestServer(t, processor.Options{Stopwords: []string{"the"}})
	w := do(t, h, http.MethodPost, "/api/v1/ngramize", `{"tokens": ["the", "big", "42", "dog", "barks"], "ngram_range": [2, 2]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", w.Code, w.Body)
	}
	resp := decode[models.NgramizeResponse](t, w)
	if len(resp.Ngrams) != 2 || resp.Ngrams[0] != "big dog" || resp.Ngrams[1] != "dog barks" {
		t.Errorf("ngrams: got %v", resp.Ngrams)
	}

	w = do(t, h, http.MethodPost, "/api/v1/ngramize", `{"tokens": ["a"], "ngram_range": [0, 1]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid range status: got %d", w.Code)
	}
}

func TestHandleStatus(t *testing.T) {
	h := newTestServer(t, processor.Options{Stopwords: []string{"a"}})
	w := do(t, h, http.MethodGet, "/api/v1/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d", w.Code)
	}
	resp := decode[models.StatusResponse](t, w)
	if resp.Model != "en" || resp.Version != "test" || resp.Stopwords != 1 {
		t.Errorf("unexpected status: %+v", resp)
	}
	if len(resp.Disabled) != 2 || resp.Disabled[0] != "parser" || resp.Disabled[1] != "ner" {
		t.Errorf("disabled: got %v", resp.Disabled)
	}
}

func TestHandleHealth(t *testing.T) {
	w := do(t, newTestServer(t, processor.Options{}), http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
}

func TestRespondProcessError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		want      int
		wantIndex int
	}{
		{"range", &processor.InvalidRangeError{Min: 2, Max: 1}, http.StatusBadRequest, -1},
		{"param", fmt.Errorf("%w: threads 0", processor.ErrInvalidParam), http.StatusBadRequest, -1},
		{"document", &processor.ProcessingError{Index: 3, Err: nlp.ErrInvalidEncoding}, http.StatusUnprocessableEntity, 3},
		{"stage", fmt.Errorf("lemmatize: %w", nlp.ErrStageDisabled), http.StatusConflict, -1},
		{"other", context.Canceled, http.StatusInternalServerError, -1},
		{"wrapped other", errors.New("boom"), http.StatusInternalServerError, -1},
	}
	s := &Server{logger: zap.NewNop()}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.respondProcessError(w, httptest.NewRequest(http.MethodPost, "/", nil), "test", tt.err)
			if w.Code != tt.want {
				t.Errorf("status: got %d, want %d", w.Code, tt.want)
			}
			resp := decode[models.ErrorResponse](t, w)
			switch {
			case tt.wantIndex < 0 && resp.Index != nil:
				t.Errorf("index should be omitted, got %d", *resp.Index)
			case tt.wantIndex >= 0 && (resp.Index == nil || *resp.Index != tt.wantIndex):
				t.Errorf("index: got %v, want %d", resp.Index, tt.wantIndex)
			}
		})
	}
}
