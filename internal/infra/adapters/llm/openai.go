// Package llm implements the summary port against text-generation vendors.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"interview-ai-memo/internal/domain"
	"interview-ai-memo/internal/domain/ports/adapter"
	"interview-ai-memo/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.SummaryAdapter = (*OpenAIAdapter)(nil)

// OpenAIAdapter calls the OpenAI Responses API (POST /responses).
type OpenAIAdapter struct {
	apiKey    string
	base      string // e.g. https://api.openai.com/v1
	model     string
	prompts   *PromptStore
	maxPrompt int
	client    *http.Client
}

func NewOpenAIAdapter(apiKey, base, model string, prompts *PromptStore, maxPromptTokens int, timeout time.Duration) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: %w: empty api key", domain.ErrVendorRejected)
	}
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-5.2"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAIAdapter{
		apiKey:    apiKey,
		base:      strings.TrimRight(base, "/"),
		model:     model,
		prompts:   prompts,
		maxPrompt: maxPromptTokens,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (o *OpenAIAdapter) Generate(ctx context.Context, req adapter.GenerateRequest) (string, error) {
	req.TranscriptText = truncateToBudget("openai", o.model, req.TranscriptText, o.maxPrompt)
	prompt, err := o.prompts.Render(req)
	if err != nil {
		return "", err
	}

	reqBody := struct {
		Model       string  `json:"model"`
		Input       string  `json:"input"`
		Temperature float64 `json:"temperature"`
	}{Model: o.model, Input: prompt, Temperature: 0.2}

	b, _ := json.Marshal(reqBody)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.base+"/responses", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	start := time.Now()
	resp, err := o.client.Do(httpReq)
	latencyMs := int(time.Since(start) / time.Millisecond)
	if err != nil {
		metrics.ObserveLLMCall("openai", string(req.Kind), latencyMs, false)
		return "", fmt.Errorf("openai %s: %w", req.Kind, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ObserveLLMCall("openai", string(req.Kind), latencyMs, false)
		return "", fmt.Errorf("openai %s: read response: %w", req.Kind, err)
	}

	if resp.StatusCode >= 300 {
		metrics.ObserveLLMCall("openai", string(req.Kind), latencyMs, false)
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return "", fmt.Errorf("openai %s: %w: HTTP %d: %s", req.Kind, domain.ErrVendorRejected, resp.StatusCode, snippet)
	}

	text := extractResponseText(body)
	metrics.ObserveLLMCall("openai", string(req.Kind), latencyMs, true)
	metrics.AddLLMOutputChars("openai", string(req.Kind), len(text))
	return text, nil
}

// extractResponseText pulls the generated text out of a Responses API body:
// output_text when present, otherwise output[0].content[0].text. An
// unrecognized shape degrades to the serialized body rather than an error.
func extractResponseText(body []byte) string {
	var payload struct {
		OutputText string `json:"output_text"`
		Output     []struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"output"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.OutputText != "" {
			return payload.OutputText
		}
		if len(payload.Output) > 0 && len(payload.Output[0].Content) > 0 && payload.Output[0].Content[0].Text != "" {
			return payload.Output[0].Content[0].Text
		}
	}
	return string(body)
}
