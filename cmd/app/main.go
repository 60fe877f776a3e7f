package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"interview-ai-memo/internal/config"
	"interview-ai-memo/internal/domain/ports/adapter"
	asrAdapters "interview-ai-memo/internal/infra/adapters/asr"
	llmAdapters "interview-ai-memo/internal/infra/adapters/llm"
	storageAdapters "interview-ai-memo/internal/infra/adapters/storage"
	pg "interview-ai-memo/internal/infra/db/postgres"
	"interview-ai-memo/internal/infra/logging"
	"interview-ai-memo/internal/infra/metrics"
	red "interview-ai-memo/internal/infra/redis"
	"interview-ai-memo/internal/infra/sched"
	"interview-ai-memo/internal/infra/web"
	"interview-ai-memo/internal/infra/worker"
	"interview-ai-memo/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted urls)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	txm := pg.NewTxManager(pool)
	jobRepo := pg.NewJobRepo(pool)
	audioRepo := pg.NewAudioAssetRepo(pool)
	transcriptRepo := pg.NewTranscriptRepo(pool)
	termRepo := pg.NewTermOccurrenceRepo(pool)
	glossaryRepo := red.NewCachedGlossaryRepo(pg.NewGlossaryRepo(pool), redisClient, cfg.Redis.CacheTTL)
	memoRepo := pg.NewMemoRepo(pool)
	confirmationRepo := pg.NewConfirmationRepo(pool)

	// ---- Adapters ----
	asr, err := asrAdapters.NewDashScopeAdapter(cfg.ASR.APIKey, cfg.ASR.BaseURL, cfg.ASR.Model)
	if err != nil {
		logger.Fatal().Err(err).Msg("asr adapter")
	}
	store, err := storageAdapters.NewSupabaseStore(cfg.Storage.BaseURL, cfg.Storage.ServiceKey, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal().Err(err).Msg("object store")
	}
	llm, err := buildSummaryAdapter(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("llm adapter")
	}

	// ---- Pipeline ----
	pipeline := worker.NewPipeline(
		jobRepo, audioRepo, transcriptRepo, termRepo, glossaryRepo, memoRepo, txm,
		asr, llm, store, locker,
		worker.PipelineConfig{
			Language:     cfg.ASR.Language,
			PollInterval: cfg.ASR.PollInterval,
			PollMaxTries: cfg.ASR.PollMaxTries,
			SignedURLTTL: cfg.Storage.SignedURLTTL,
			LockTTL:      cfg.Redis.LockTTL,
		},
		logger,
	)
	runner := worker.NewRunner(jobRepo, pipeline, cfg.Worker.BatchLimit, logger)

	var wpool *worker.Pool
	if strings.EqualFold(cfg.Worker.ExecutionMode, "inline") {
		wpool = worker.NewPool(cfg.Worker.PoolSize, logger)
		wpool.Start(ctx)
		defer wpool.Stop()
		logger.Info().Int("workers", cfg.Worker.PoolSize).Msg("inline execution mode")
	} else {
		queueWorker := sched.NewQueueWorker(cfg.Worker.QueueTick, runner, logger)
		go func() { _ = queueWorker.Run(ctx) }()
	}

	// ---- Use cases ----
	jobUC := usecase.NewJobUseCase(jobRepo, termRepo, memoRepo, pipeline, wpool, logger)
	confirmUC := usecase.NewConfirmTermsUseCase(jobRepo, termRepo, glossaryRepo, confirmationRepo, txm, jobUC, logger)

	// ---- HTTP ----
	tokens := web.NewReviewTokens(cfg.Security.ReviewTokenSecret, cfg.Security.ReviewTokenTTL)
	srv := web.NewServer(jobUC, confirmUC, runner, tokens, cfg.Security.CronSecret, cfg.Worker.BatchLimit, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      srv.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute, // direct runs poll the ASR vendor
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
	cancel()
}

// buildSummaryAdapter selects the configured LLM provider and applies the
// concurrency cap.
func buildSummaryAdapter(ctx context.Context, cfg *config.Config) (adapter.SummaryAdapter, error) {
	prompts, err := llmAdapters.NewPromptStore(cfg.LLM.PromptDir)
	if err != nil {
		return nil, err
	}

	var inner adapter.SummaryAdapter
	switch {
	case strings.EqualFold(cfg.LLM.Provider, "gemini") || (cfg.LLM.OpenAIKey == "" && cfg.LLM.GeminiKey != ""):
		inner, err = llmAdapters.NewGeminiAdapter(ctx, cfg.LLM.GeminiKey, cfg.LLM.GeminiBaseURL, cfg.LLM.Model, prompts, cfg.LLM.MaxPromptTokens)
	case cfg.LLM.OpenAIKey != "":
		inner, err = llmAdapters.NewOpenAIAdapter(cfg.LLM.OpenAIKey, cfg.LLM.OpenAIBaseURL, cfg.LLM.Model, prompts, cfg.LLM.MaxPromptTokens, cfg.LLM.Timeout)
	default:
		return nil, errors.New("no LLM provider configured: set llm.openai_key or llm.gemini_key")
	}
	if err != nil {
		return nil, err
	}
	return llmAdapters.NewLimitedSummary(inner, cfg.LLM.ConcurrentLimit), nil
}
