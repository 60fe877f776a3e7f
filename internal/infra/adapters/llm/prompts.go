package llm

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"interview-ai-memo/internal/domain/ports/adapter"
	"interview-ai-memo/internal/infra/metrics"
)

// Template file per memo kind, under the configured prompt directory.
var promptFiles = map[adapter.MemoKind]string{
	adapter.MemoKindIcQa:          "ic_qa.md",
	adapter.MemoKindWeChatArticle: "wechat_article.md",
}

var varPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// PromptStore loads prompt templates from disk once and renders them with
// {{variable}} interpolation. A missing variable renders as empty.
type PromptStore struct {
	templates map[adapter.MemoKind]string
}

func NewPromptStore(dir string) (*PromptStore, error) {
	templates := make(map[adapter.MemoKind]string, len(promptFiles))
	for kind, file := range promptFiles {
		b, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return nil, fmt.Errorf("load prompt %s: %w", file, err)
		}
		templates[kind] = string(b)
	}
	return &PromptStore{templates: templates}, nil
}

func (p *PromptStore) Render(req adapter.GenerateRequest) (string, error) {
	tmpl, ok := p.templates[req.Kind]
	if !ok {
		return "", fmt.Errorf("no prompt template for kind %q", req.Kind)
	}
	vars := map[string]string{
		"transcript_text": req.TranscriptText,
		"glossary_terms":  strings.Join(req.GlossaryTerms, ", "),
		"uncertain_terms": strings.Join(req.UncertainTerms, ", "),
	}
	return varPattern.ReplaceAllStringFunc(tmpl, func(m string) string {
		key := varPattern.FindStringSubmatch(m)[1]
		return vars[key]
	}), nil
}

// truncateToBudget caps text at maxTokens using the model's tokenizer,
// falling back to cl100k_base for models tiktoken does not know. A zero
// budget disables truncation.
func truncateToBudget(provider, model, text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return text
		}
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text
	}
	metrics.IncPromptTruncation(provider)
	return enc.Decode(tokens[:maxTokens])
}
