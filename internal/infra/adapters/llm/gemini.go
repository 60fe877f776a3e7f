package llm

import (
	"context"
	"errors"
	"time"

	"google.golang.org/genai"

	"interview-ai-memo/internal/domain/ports/adapter"
	"interview-ai-memo/internal/infra/metrics"
)

var _ adapter.SummaryAdapter = (*GeminiAdapter)(nil)

// GeminiAdapter generates summaries through the official genai SDK.
type GeminiAdapter struct {
	client    *genai.Client
	model     string
	prompts   *PromptStore
	maxPrompt int
}

func NewGeminiAdapter(ctx context.Context, apiKey, baseURL, model string, prompts *PromptStore, maxPromptTokens int) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiAdapter{client: c, model: model, prompts: prompts, maxPrompt: maxPromptTokens}, nil
}

func (g *GeminiAdapter) Generate(ctx context.Context, req adapter.GenerateRequest) (string, error) {
	req.TranscriptText = truncateToBudget("gemini", g.model, req.TranscriptText, g.maxPrompt)
	prompt, err := g.prompts.Render(req)
	if err != nil {
		return "", err
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(
		ctx,
		g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.2),
		},
	)
	latencyMs := int(time.Since(start) / time.Millisecond)
	if err != nil {
		metrics.ObserveLLMCall("gemini", string(req.Kind), latencyMs, false)
		return "", err
	}

	text := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		if t := resp.Candidates[0].Content.Parts[0].Text; t != "" {
			text = t
		}
	}
	if text == "" {
		// Shape surprise: fall back to whatever the SDK can render.
		if resp != nil {
			text = resp.Text()
		}
	}
	metrics.ObserveLLMCall("gemini", string(req.Kind), latencyMs, true)
	metrics.AddLLMOutputChars("gemini", string(req.Kind), len(text))
	return text, nil
}
