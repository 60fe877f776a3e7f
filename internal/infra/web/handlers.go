package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"interview-ai-memo/internal/domain"
	"interview-ai-memo/internal/domain/model"
	"interview-ai-memo/internal/usecase"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCronWorker(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sum, err := s.runner.RunQueued(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("cron batch failed")
		http.Error(w, "Failed to run queue batch", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"limit":      s.batchLimit,
		"elapsed_ms": time.Since(start).Milliseconds(),
		"scanned":    sum.Scanned,
		"processed":  sum.Processed,
		"failed":     sum.Failed,
	})
}

func (s *Server) handleJobRun(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		http.Error(w, "Missing user identity", http.StatusUnauthorized)
		return
	}
	if err := s.jobUC.Enqueue(r.Context(), userID, jobID); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"queued": true})
}

type pendingTermResponse struct {
	ID         string  `json:"id"`
	Term       string  `json:"term"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context"`
}

type jobResponse struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Status       string                `json:"status"`
	NeedsReview  bool                  `json:"needs_review"`
	ErrorMessage string                `json:"error_message,omitempty"`
	PendingTerms []pendingTermResponse `json:"pending_terms,omitempty"`
	ReviewToken  string                `json:"review_token,omitempty"`
	Memo         *memoResponse         `json:"memo,omitempty"`
}

type memoResponse struct {
	IcQa          string `json:"ic_qa"`
	WeChatArticle string `json:"wechat_article"`
}

func (s *Server) handleJobGet(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		http.Error(w, "Missing user identity", http.StatusUnauthorized)
		return
	}

	view, err := s.jobUC.Get(r.Context(), userID, jobID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := jobResponse{
		ID:           view.Job.ID,
		Title:        view.Job.Title,
		Status:       string(view.Job.Status),
		NeedsReview:  view.Job.NeedsReview,
		ErrorMessage: view.Job.ErrorMessage,
	}
	for _, o := range view.PendingTerms {
		resp.PendingTerms = append(resp.PendingTerms, pendingTermResponse{
			ID: o.ID, Term: o.TermText, Confidence: o.Confidence, Context: o.Context,
		})
	}
	if view.Job.NeedsReview {
		token, err := s.tokens.Mint(userID, jobID)
		if err != nil {
			s.log.Error().Err(err).Msg("mint review token")
		} else {
			resp.ReviewToken = token
		}
	}
	if view.Memo != nil {
		resp.Memo = &memoResponse{IcQa: view.Memo.IcQaText, WeChatArticle: view.Memo.WeChatArticleText}
	}
	writeJSON(w, http.StatusOK, resp)
}

type confirmTermsRequest struct {
	Decisions []struct {
		OccurrenceID  string `json:"occurrence_id"`
		Action        string `json:"action"`
		ConfirmedText string `json:"confirmed_text"`
	} `json:"decisions"`
}

func (s *Server) handleConfirmTerms(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	userID, ok := s.reviewIdentity(r, jobID)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req confirmTermsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	decisions := make([]usecase.TermDecision, 0, len(req.Decisions))
	for _, d := range req.Decisions {
		decisions = append(decisions, usecase.TermDecision{
			OccurrenceID:  d.OccurrenceID,
			Action:        model.ConfirmAction(d.Action),
			ConfirmedText: d.ConfirmedText,
		})
	}

	if err := s.confirmUC.Confirm(r.Context(), userID, jobID, decisions); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// reviewIdentity resolves the caller for the confirmation endpoint: a review
// token scoped to this job wins, the gateway header is the fallback.
func (s *Server) reviewIdentity(r *http.Request, jobID string) (string, bool) {
	if token := bearerToken(r); token != "" {
		userID, tokenJobID, err := s.tokens.Parse(token)
		if err == nil && tokenJobID == jobID {
			return userID, true
		}
		return "", false
	}
	if userID := r.Header.Get("X-User-Id"); userID != "" {
		return userID, true
	}
	return "", false
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		s.log.Error().Err(err).Msg("request failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
