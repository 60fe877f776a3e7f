package adapter

import "context"

type MemoKind string

const (
	MemoKindIcQa          MemoKind = "ic_qa"
	MemoKindWeChatArticle MemoKind = "wechat_article"
)

// GenerateRequest carries everything a summary call needs. UncertainTerms
// lists term texts that remained ambiguous after review (rejected or
// unresolved); the prompt templates interpolate them separately from the
// confirmed glossary.
type GenerateRequest struct {
	Kind           MemoKind
	TranscriptText string
	GlossaryTerms  []string
	UncertainTerms []string
}

// SummaryAdapter is the port for long-form text generation. Each call is a
// direct request/response from the orchestrator's viewpoint. Implementations
// fail on missing credentials, non-success HTTP status, or vendor-reported
// errors, but degrade to a serialized fallback when a successful response
// arrives in an unrecognized shape.
type SummaryAdapter interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
