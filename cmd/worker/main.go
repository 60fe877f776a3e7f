package main

import (
	"context"
	"flag"
	"log"
	"os"
	"strings"
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
	"interview-ai-memo/internal/infra/worker"
)

// One-shot queue drain for external schedulers (cron, CI, systemd timers).
// Runs a single batch and exits non-zero when any job in it failed.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode")
	timeout := flag.Duration("timeout", 20*time.Minute, "overall batch deadline")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	defer redisClient.Close()

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

	jobRepo := pg.NewJobRepo(pool)
	glossaryRepo := red.NewCachedGlossaryRepo(pg.NewGlossaryRepo(pool), redisClient, cfg.Redis.CacheTTL)

	pipeline := worker.NewPipeline(
		jobRepo,
		pg.NewAudioAssetRepo(pool),
		pg.NewTranscriptRepo(pool),
		pg.NewTermOccurrenceRepo(pool),
		glossaryRepo,
		pg.NewMemoRepo(pool),
		pg.NewTxManager(pool),
		asr, llm, store,
		red.NewLocker(redisClient),
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

	sum, err := runner.RunQueued(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("queue batch")
	}
	logger.Info().
		Int("scanned", sum.Scanned).
		Int("processed", sum.Processed).
		Int("failed", sum.Failed).
		Msg("batch done")
	if sum.Failed > 0 {
		os.Exit(1)
	}
}

func buildSummaryAdapter(ctx context.Context, cfg *config.Config) (adapter.SummaryAdapter, error) {
	prompts, err := llmAdapters.NewPromptStore(cfg.LLM.PromptDir)
	if err != nil {
		return nil, err
	}

	var inner adapter.SummaryAdapter
	switch {
	case strings.EqualFold(cfg.LLM.Provider, "gemini") || (cfg.LLM.OpenAIKey == "" && cfg.LLM.GeminiKey != ""):
		inner, err = llmAdapters.NewGeminiAdapter(ctx, cfg.LLM.GeminiKey, cfg.LLM.GeminiBaseURL, cfg.LLM.Model, prompts, cfg.LLM.MaxPromptTokens)
	default:
		inner, err = llmAdapters.NewOpenAIAdapter(cfg.LLM.OpenAIKey, cfg.LLM.OpenAIBaseURL, cfg.LLM.Model, prompts, cfg.LLM.MaxPromptTokens, cfg.LLM.Timeout)
	}
	if err != nil {
		return nil, err
	}
	return llmAdapters.NewLimitedSummary(inner, cfg.LLM.ConcurrentLimit), nil
}
