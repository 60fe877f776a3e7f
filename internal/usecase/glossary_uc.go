package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"interview-ai-memo/internal/domain/model"
	"interview-ai-memo/internal/domain/ports/repository"
	"interview-ai-memo/internal/infra/logging"
)

// seedBatchSize bounds one upsert round during a bulk import.
const seedBatchSize = 500

// GlossaryUseCase manages a user's vocabulary outside the pipeline: bulk
// seed imports and listing.
type GlossaryUseCase struct {
	glossary repository.GlossaryRepository
	log      *zerolog.Logger
}

func NewGlossaryUseCase(glossary repository.GlossaryRepository, logger *zerolog.Logger) *GlossaryUseCase {
	l := logger.With().Str("component", "GlossaryUseCase").Logger()
	return &GlossaryUseCase{glossary: glossary, log: &l}
}

// ImportSeedTerms loads raw term lines into the glossary with source seed.
// Blank lines are dropped and duplicates collapse case-insensitively, first
// spelling wins. Returns the number of terms written.
func (uc *GlossaryUseCase) ImportSeedTerms(ctx context.Context, userID string, raw []string) (int, error) {
	defer logging.TraceDuration(uc.log, "GlossaryUC.ImportSeedTerms")()

	seen := map[string]bool{}
	var terms []*model.GlossaryTerm
	for _, line := range raw {
		term := strings.TrimSpace(line)
		if term == "" {
			continue
		}
		norm := strings.ToLower(term)
		if seen[norm] {
			continue
		}
		seen[norm] = true
		terms = append(terms, &model.GlossaryTerm{
			UserID:         userID,
			Term:           term,
			NormalizedTerm: norm,
			Source:         model.GlossarySourceSeed,
		})
	}

	for start := 0; start < len(terms); start += seedBatchSize {
		end := start + seedBatchSize
		if end > len(terms) {
			end = len(terms)
		}
		if err := uc.glossary.UpsertBatch(ctx, nil, terms[start:end]); err != nil {
			return start, err
		}
	}
	uc.log.Info().Str("user_id", userID).Int("terms", len(terms)).Msg("seed glossary imported")
	return len(terms), nil
}

func (uc *GlossaryUseCase) List(ctx context.Context, userID string) ([]*model.GlossaryTerm, error) {
	return uc.glossary.ListByUser(ctx, nil, userID)
}
