// Package asr implements the transcription port against Alibaba Cloud
// DashScope's asynchronous file-transcription API (qwen3-asr filetrans).
package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"interview-ai-memo/internal/domain"
	"interview-ai-memo/internal/domain/ports/adapter"
	"interview-ai-memo/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.TranscriptionAdapter = (*DashScopeAdapter)(nil)

type DashScopeAdapter struct {
	apiKey string
	base   string // e.g. https://dashscope.aliyuncs.com/api/v1
	model  string
	client *http.Client
}

func NewDashScopeAdapter(apiKey, base, model string) (*DashScopeAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("dashscope: %w: empty api key", domain.ErrVendorRejected)
	}
	if base == "" {
		base = "https://dashscope.aliyuncs.com/api/v1"
	}
	if model == "" {
		model = "qwen3-asr-flash-filetrans"
	}
	return &DashScopeAdapter{
		apiKey: apiKey,
		base:   strings.TrimRight(base, "/"),
		model:  model,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type submitRequest struct {
	Model string `json:"model"`
	Input struct {
		FileURL string `json:"file_url"`
	} `json:"input"`
	Parameters struct {
		Language    string `json:"language,omitempty"`
		ChannelID   []int  `json:"channel_id"`
		EnableWords bool   `json:"enable_words"`
	} `json:"parameters"`
}

// Submit starts an asynchronous transcription task and returns the vendor
// task id. Any rejection (HTTP error, missing task id) is fatal.
func (d *DashScopeAdapter) Submit(ctx context.Context, audioURL, language string) (string, error) {
	var body submitRequest
	body.Model = d.model
	body.Input.FileURL = audioURL
	body.Parameters.Language = language
	body.Parameters.ChannelID = []int{0}
	body.Parameters.EnableWords = true

	b, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.base+"/services/audio/asr/transcription", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("X-DashScope-Async", "enable")

	resp, err := d.client.Do(req)
	if err != nil {
		metrics.IncASRSubmit("rejected")
		return "", fmt.Errorf("asr submit: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		RequestID string `json:"request_id"`
		Message   string `json:"message"`
		Output    struct {
			TaskID string `json:"task_id"`
		} `json:"output"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode >= 300 {
		metrics.IncASRSubmit("rejected")
		msg := payload.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		return "", fmt.Errorf("asr submit: %w: %s", domain.ErrVendorRejected, msg)
	}
	if decodeErr != nil {
		metrics.IncASRSubmit("rejected")
		return "", fmt.Errorf("asr submit: decode response: %w", decodeErr)
	}
	if payload.Output.TaskID == "" {
		metrics.IncASRSubmit("rejected")
		return "", fmt.Errorf("asr submit: %w: response missing task_id", domain.ErrVendorRejected)
	}

	metrics.IncASRSubmit("ok")
	return payload.Output.TaskID, nil
}

// Poll fetches the current state of a vendor task. Vendor-reported failure is
// returned as a failed result, not an error; only transport problems error.
func (d *DashScopeAdapter) Poll(ctx context.Context, vendorTaskID string) (adapter.ASRPollResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.base+"/tasks/"+vendorTaskID, nil)
	if err != nil {
		return adapter.ASRPollResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)

	resp, err := d.client.Do(req)
	if err != nil {
		return adapter.ASRPollResult{}, fmt.Errorf("asr poll: %w", err)
	}
	defer resp.Body.Close()

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return adapter.ASRPollResult{}, fmt.Errorf("asr poll: decode response: %w", err)
	}

	var payload struct {
		Message string `json:"message"`
		Output  struct {
			TaskStatus string `json:"task_status"`
			Message    string `json:"message"`
			Result     struct {
				TranscriptionURL string `json:"transcription_url"`
			} `json:"result"`
		} `json:"output"`
	}
	_ = json.Unmarshal(raw, &payload)

	if resp.StatusCode >= 300 {
		msg := payload.Message
		if msg == "" {
			msg = fmt.Sprintf("HTTP %d", resp.StatusCode)
		}
		metrics.IncASRPoll("failed")
		return adapter.ASRPollResult{Status: adapter.ASRTaskFailed, ErrorMessage: msg, Raw: raw}, nil
	}

	switch payload.Output.TaskStatus {
	case "SUCCEEDED":
		metrics.IncASRPoll("completed")
		return d.fetchCompleted(ctx, raw, payload.Output.Result.TranscriptionURL)
	case "FAILED":
		msg := payload.Output.Message
		if msg == "" {
			msg = "ASR task failed"
		}
		metrics.IncASRPoll("failed")
		return adapter.ASRPollResult{Status: adapter.ASRTaskFailed, ErrorMessage: msg, Raw: raw}, nil
	default:
		// PENDING / RUNNING
		metrics.IncASRPoll("running")
		return adapter.ASRPollResult{Status: adapter.ASRTaskRunning, Raw: raw}, nil
	}
}

// fetchCompleted resolves the final transcript. Filetrans delivers results
// via a secondary transcription_url; other variants embed the text directly
// in the task payload.
func (d *DashScopeAdapter) fetchCompleted(ctx context.Context, taskRaw json.RawMessage, transcriptionURL string) (adapter.ASRPollResult, error) {
	if transcriptionURL == "" {
		return adapter.ASRPollResult{
			Status:         adapter.ASRTaskCompleted,
			TranscriptText: flattenTranscript(taskRaw),
			Raw:            taskRaw,
		}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, transcriptionURL, nil)
	if err != nil {
		return adapter.ASRPollResult{}, err
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return adapter.ASRPollResult{}, fmt.Errorf("asr result fetch: %w", err)
	}
	defer resp.Body.Close()

	var transRaw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&transRaw); err != nil {
		return adapter.ASRPollResult{}, fmt.Errorf("asr result fetch: decode: %w", err)
	}

	combined, _ := json.Marshal(map[string]json.RawMessage{
		"task":          taskRaw,
		"transcription": transRaw,
	})

	return adapter.ASRPollResult{
		Status:         adapter.ASRTaskCompleted,
		TranscriptText: flattenTranscript(transRaw),
		Raw:            combined,
	}, nil
}

// flattenTranscript extracts plain text from the known result shapes:
//
//  1. {"transcripts": [{"text": "..."}]}
//  2. {"transcripts": [{"sentences": [{"text": "..."}]}]}
//  3. {"output": {"text": "..."}} or {"output": {"result": {"text": "..."}}}
//  4. {"text": "..."} or {"transcript": "..."}
//
// Anything else falls back to the serialized payload rather than failing.
func flattenTranscript(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return asString
	}

	var data map[string]json.RawMessage
	if err := json.Unmarshal(raw, &data); err != nil {
		return string(raw)
	}

	if ts, ok := data["transcripts"]; ok {
		var segs []struct {
			Text      string `json:"text"`
			Sentences []struct {
				Text string `json:"text"`
			} `json:"sentences"`
		}
		if err := json.Unmarshal(ts, &segs); err == nil {
			var sb strings.Builder
			for _, seg := range segs {
				if seg.Text != "" {
					sb.WriteString(seg.Text)
					continue
				}
				for _, s := range seg.Sentences {
					sb.WriteString(s.Text)
				}
			}
			if sb.Len() > 0 {
				return sb.String()
			}
		}
	}

	if out, ok := data["output"]; ok {
		var output struct {
			Text   string `json:"text"`
			Result struct {
				Text string `json:"text"`
			} `json:"result"`
		}
		if err := json.Unmarshal(out, &output); err == nil {
			if output.Text != "" {
				return output.Text
			}
			if output.Result.Text != "" {
				return output.Result.Text
			}
		}
	}

	for _, key := range []string{"text", "transcript"} {
		if v, ok := data[key]; ok {
			var s string
			if err := json.Unmarshal(v, &s); err == nil && s != "" {
				return s
			}
		}
	}

	// Unrecognized shape: hand back the machine-readable serialization.
	return string(raw)
}
