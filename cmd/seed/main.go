package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"interview-ai-memo/internal/config"
	pg "interview-ai-memo/internal/infra/db/postgres"
	"interview-ai-memo/internal/infra/logging"
	"interview-ai-memo/internal/usecase"
)

// Imports a seed glossary for one user, one term per line. The source can
// be a local file or an http(s) URL.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	userID := flag.String("user", "", "user id to import terms for")
	source := flag.String("source", "", "path or URL of the term list, one term per line")
	flag.Parse()

	if *userID == "" || *source == "" {
		log.Fatal("usage: seed -user <id> -source <file|url> [-config config.yaml]")
	}

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, false)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.PoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	lines, err := readLines(ctx, *source)
	if err != nil {
		logger.Fatal().Err(err).Str("source", *source).Msg("read term list")
	}

	uc := usecase.NewGlossaryUseCase(pg.NewGlossaryRepo(pool), logger)
	n, err := uc.ImportSeedTerms(ctx, *userID, lines)
	if err != nil {
		logger.Fatal().Err(err).Int("written", n).Msg("import failed")
	}
	fmt.Printf("imported %d terms for user %s\n", n, *userID)
}

func readLines(ctx context.Context, source string) ([]string, error) {
	var r io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: status %d", source, resp.StatusCode)
		}
		r = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, err
		}
		r = f
	}
	defer r.Close()

	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
