package web

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"interview-ai-memo/internal/infra/worker"
	"interview-ai-memo/internal/usecase"
)

// QueueRunner is the slice of the batch runner the cron endpoint needs.
type QueueRunner interface {
	RunQueued(ctx context.Context) (worker.Summary, error)
}

// Server exposes the job API and the cron trigger. User identity arrives in
// the X-User-Id header from the fronting gateway; the confirmation endpoint
// alternatively accepts a scoped review token.
type Server struct {
	jobUC      *usecase.JobUseCase
	confirmUC  *usecase.ConfirmTermsUseCase
	runner     QueueRunner
	tokens     *ReviewTokens
	cronSecret string
	batchLimit int
	log        *zerolog.Logger
}

func NewServer(
	jobUC *usecase.JobUseCase,
	confirmUC *usecase.ConfirmTermsUseCase,
	runner QueueRunner,
	tokens *ReviewTokens,
	cronSecret string,
	batchLimit int,
	logger *zerolog.Logger,
) *Server {
	l := logger.With().Str("component", "web").Logger()
	return &Server{
		jobUC: jobUC, confirmUC: confirmUC, runner: runner,
		tokens: tokens, cronSecret: cronSecret, batchLimit: batchLimit, log: &l,
	}
}

func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/api/cron/worker", s.cronAuth(s.handleCronWorker))

	r.Route("/api/jobs/{id}", func(r chi.Router) {
		r.Get("/", s.handleJobGet)
		r.Post("/run", s.handleJobRun)
		r.Post("/confirm-terms", s.handleConfirmTerms)
	})
	return r
}

// cronAuth enforces the shared cron secret when one is configured. With no
// secret set the endpoint stays open, matching single-tenant deployments
// whose scheduler cannot send headers.
func (s *Server) cronAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.cronSecret == "" {
			next(w, r)
			return
		}
		if bearerToken(r) != s.cronSecret {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
