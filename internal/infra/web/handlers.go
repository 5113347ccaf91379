package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"seo-article-agent/internal/domain"
	"seo-article-agent/internal/domain/model"
	"seo-article-agent/internal/infra/logging"
)

const maxRequestBody = 64 << 10

type createJobRequest struct {
	Topic           string `json:"topic"`
	TargetWordCount int    `json:"target_word_count"`
	Language        string `json:"language"`
}

type errorResponse struct {
	Error string     `json:"error"`
	Job   *model.Job `json:"job,omitempty"`
}

type listResponse struct {
	Items []model.JobSummary `json:"items"`
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large", nil)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	job, err := s.genUC.StartGeneration(r.Context(), model.ArticleRequest{
		Topic:           req.Topic,
		TargetWordCount: req.TargetWordCount,
		Language:        req.Language,
	})
	if err != nil {
		s.writeUseCaseError(w, r, err, job)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer", nil)
			return
		}
		limit = n
	}

	items, err := s.genUC.ListJobs(r.Context(), limit)
	if err != nil {
		s.writeUseCaseError(w, r, err, nil)
		return
	}
	if items == nil {
		items = []model.JobSummary{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items})
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.genUC.GetStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeUseCaseError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) resumeJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.genUC.ResumeJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeUseCaseError(w, r, err, job)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) auditJob(w http.ResponseWriter, r *http.Request) {
	audit, err := s.genUC.AuditJob(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeUseCaseError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, audit)
}

// writeUseCaseError maps domain errors to status codes. A failed run carries
// the failed job snapshot in the body.
func (s *Server) writeUseCaseError(w http.ResponseWriter, r *http.Request, err error, job *model.Job) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrNoArticle), errors.Is(err, domain.ErrJobLocked):
		writeError(w, http.StatusConflict, err.Error(), nil)
	default:
		logging.With(r.Context(), s.log).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, err.Error(), job)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, job *model.Job) {
	writeJSON(w, status, errorResponse{Error: msg, Job: job})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
