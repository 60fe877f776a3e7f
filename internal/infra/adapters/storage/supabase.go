// Package storage implements the object-store port against the Supabase
// Storage REST API.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"interview-ai-memo/internal/domain/ports/adapter"
)

var _ adapter.ObjectStore = (*SupabaseStore)(nil)

type SupabaseStore struct {
	base       string // e.g. https://<project>.supabase.co
	serviceKey string
	bucket     string
	client     *http.Client
}

func NewSupabaseStore(base, serviceKey, bucket string) (*SupabaseStore, error) {
	if base == "" || serviceKey == "" {
		return nil, errors.New("storage: base url and service key are required")
	}
	if bucket == "" {
		bucket = "audio"
	}
	return &SupabaseStore{
		base:       strings.TrimRight(base, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		client:     &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// SignedURL creates a time-bounded access URL for an object so the
// transcription vendor can fetch it without credentials.
func (s *SupabaseStore) SignedURL(ctx context.Context, storagePath string, ttl time.Duration) (string, error) {
	body, _ := json.Marshal(map[string]int{"expiresIn": int(ttl.Seconds())})
	endpoint := fmt.Sprintf("%s/storage/v1/object/sign/%s/%s", s.base, s.bucket, strings.TrimLeft(storagePath, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage sign: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("storage sign: HTTP %d", resp.StatusCode)
	}

	var payload struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("storage sign: decode: %w", err)
	}
	if payload.SignedURL == "" {
		return "", errors.New("storage sign: response missing signedURL")
	}
	return s.base + "/storage/v1" + payload.SignedURL, nil
}

func (s *SupabaseStore) Remove(ctx context.Context, storagePath string) error {
	endpoint := fmt.Sprintf("%s/storage/v1/object/%s/%s", s.base, s.bucket, strings.TrimLeft(storagePath, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.serviceKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("storage remove: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("storage remove: HTTP %d", resp.StatusCode)
	}
	return nil
}
