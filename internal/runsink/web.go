// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package runsink

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/noldarim/agentstream/internal/logger"
	"github.com/noldarim/agentstream/internal/stream/types"
)

// WebSink forwards runs to an HTTP run store:
// POST {base}/runs to create a run, POST {base}/runs/{id}/run_entries per
// event.
type WebSink struct {
	baseURL string
	client  *http.Client
}

// NewWebSink creates a WebSink for the given base URL.
func NewWebSink(baseURL string, timeout time.Duration) *WebSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebSink{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// CreateRun registers the run and returns the id assigned by the store.
// Failure here is fatal for forwarding: without a run id there is nowhere
// to deliver events.
func (ws *WebSink) CreateRun(meta RunMetadata) (string, error) {
	log := logger.GetSinkLogger()

	payload := map[string]any{"run": meta}
	url := ws.baseURL + "/runs"
	log.Info().Str("url", url).Msg("Creating run")

	body, err := ws.post(url, payload)
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}

	var runID string
	if err := json.Unmarshal(body, &runID); err != nil {
		return "", fmt.Errorf("unexpected create-run response: %w", err)
	}
	log.Info().Str("runID", runID).Msg("Run created")
	return runID, nil
}

// SendEvents posts each event as its own run entry. A failed entry is
// logged and skipped so a flaky store cannot lose the rest of the run.
func (ws *WebSink) SendEvents(runID string, events []types.Event) error {
	log := logger.GetSinkLogger()

	url := fmt.Sprintf("%s/runs/%s/run_entries", ws.baseURL, runID)
	log.Info().Str("runID", runID).Int("events", len(events)).Msg("Sending events")

	for _, ev := range events {
		payload := map[string]any{"run_entry": map[string]any{"data": ev}}
		if _, err := ws.post(url, payload); err != nil {
			log.Error().Err(err).Str("runID", runID).Str("type", string(ev.Type)).Msg("Failed to send event")
		}
	}
	return nil
}

func (ws *WebSink) post(url string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	resp, err := ws.client.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return body, nil
}
