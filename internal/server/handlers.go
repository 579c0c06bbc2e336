package server

import (
	"context"
	"encoding/json"
	"errors"
	"iter"
	"net/http"
	"time"

	"github.com/hyperjump/lexis/internal/models"
	"github.com/hyperjump/lexis/internal/nlp"
	"github.com/hyperjump/lexis/internal/processor"
	"go.uber.org/zap"
)

type runFunc func(ctx context.Context, docs []string, opts ...processor.Param) (iter.Seq2[[]string, error], error)

func (s *Server) handleTokenize(w http.ResponseWriter, r *http.Request) {
	s.handleProcess(w, r, "tokenize", s.proc.Tokenize)
}

func (s *Server) handleLemmatize(w http.ResponseWriter, r *http.Request) {
	s.handleProcess(w, r, "lemmatize", s.proc.Lemmatize)
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request, op string, run runFunc) {
	ctx := r.Context()
	var req models.ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	s.logger.Debug(op+" request", zap.String("request_id", RequestID(ctx)), zap.Int("documents", len(req.Documents)))

	start := time.Now()
	batches, err := s.collect(ctx, req.Documents, paramsFrom(req), run)
	if err != nil {
		s.respondProcessError(w, r, op, err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.ProcessResponse{
		RequestID: RequestID(ctx),
		Batches:   batches,
		TookMs:    time.Since(start).Milliseconds(),
	})
}

// collect drains one call under the processor lock.
func (s *Server) collect(ctx context.Context, docs []string, opts []processor.Param, run runFunc) ([][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq, err := run(ctx, docs, opts...)
	if err != nil {
		return nil, err
	}
	batches := make([][]string, 0, len(docs))
	for batch, err := range seq {
		if err != nil {
			return nil, err
		}
		batches = append(batches, batch)
	}
	return batches, nil
}

func paramsFrom(req models.ProcessRequest) []processor.Param {
	var opts []processor.Param
	if req.NgramRange != nil {
		opts = append(opts, processor.WithNgramRange(req.NgramRange[0], req.NgramRange[1]))
	}
	if req.BatchSize != nil {
		opts = append(opts, processor.WithBatchSize(*req.BatchSize))
	}
	if req.Threads != nil {
		opts = append(opts, processor.WithThreads(*req.Threads))
	}
	if req.Lowercase != nil {
		opts = append(opts, processor.WithLowercase(*req.Lowercase))
	}
	return opts
}

func (s *Server) handleNgramize(w http.ResponseWriter, r *http.Request) {
	var req models.NgramizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	rng := processor.DefaultNgramRange
	if req.NgramRange != nil {
		rng = processor.NgramRange{Min: req.NgramRange[0], Max: req.NgramRange[1]}
	}
	s.mu.Lock()
	ngrams, err := s.proc.Ngramize(req.Tokens, rng)
	s.mu.Unlock()
	if err != nil {
		s.respondProcessError(w, r, "ngramize", err)
		return
	}
	s.respondJSON(w, http.StatusOK, models.NgramizeResponse{RequestID: RequestID(r.Context()), Ngrams: ngrams})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.proc.Status()
	s.respondJSON(w, http.StatusOK, models.StatusResponse{
		Model:     st.Model,
		Stages:    st.Stages,
		Disabled:  st.Disabled,
		Stopwords: st.Stopwords,
		Version:   s.version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// respondProcessError maps processor errors onto status codes.
func (s *Server) respondProcessError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var (
		rangeErr *processor.InvalidRangeError
		procErr  *processor.ProcessingError
	)
	switch {
	case errors.As(err, &rangeErr), errors.Is(err, processor.ErrInvalidParam):
		s.respondError(w, r, http.StatusBadRequest, err.Error(), nil)
	case errors.As(err, &procErr):
		s.respondError(w, r, http.StatusUnprocessableEntity, err.Error(), &procErr.Index)
	case errors.Is(err, nlp.ErrStageDisabled):
		s.respondError(w, r, http.StatusConflict, err.Error(), nil)
	default:
		s.logger.Error(op+" failed", zap.String("request_id", RequestID(r.Context())), zap.Error(err))
		s.respondError(w, r, http.StatusInternalServerError, err.Error(), nil)
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, index *int) {
	s.respondJSON(w, status, models.ErrorResponse{
		RequestID: RequestID(r.Context()),
		Error:     message,
		Index:     index,
	})
}
