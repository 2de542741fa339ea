// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package runsink

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noldarim/agentstream/internal/config"
	"github.com/noldarim/agentstream/internal/stream/types"
)

func TestBuild(t *testing.T) {
	sink, err := Build(config.SinkConfig{Type: "none"})
	require.NoError(t, err)
	assert.Nil(t, sink)

	sink, err = Build(config.SinkConfig{})
	require.NoError(t, err)
	assert.Nil(t, sink)

	sink, err = Build(config.SinkConfig{Type: "fake"})
	require.NoError(t, err)
	assert.IsType(t, &FakeSink{}, sink)

	sink, err = Build(config.SinkConfig{Type: "web", BaseURL: "http://localhost:9"})
	require.NoError(t, err)
	assert.IsType(t, &WebSink{}, sink)

	_, err = Build(config.SinkConfig{Type: "carrier-pigeon"})
	assert.Error(t, err)
}

func TestFakeSink(t *testing.T) {
	fs := NewFakeSink()

	runID, err := fs.CreateRun(RunMetadata{Creator: "tester", Source: types.SourceClaude, Label: "demo"})
	require.NoError(t, err)
	require.NotEmpty(t, runID)
	assert.Equal(t, "demo", fs.Runs[runID].Label)

	events := []types.Event{
		{Type: types.EventTypeSessionStart, Source: types.SourceClaude},
		{Type: types.EventTypeSessionEnd, Source: types.SourceClaude},
	}
	require.NoError(t, fs.SendEvents(runID, events))
	assert.Len(t, fs.Events[runID], 2)

	// Second run gets a distinct id.
	other, err := fs.CreateRun(RunMetadata{Source: types.SourceCodex})
	require.NoError(t, err)
	assert.NotEqual(t, runID, other)
}

func TestWebSink_CreateRunAndSendEvents(t *testing.T) {
	var entries []json.RawMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/runs":
			var payload struct {
				Run RunMetadata `json:"run"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, types.SourceCodex, payload.Run.Source)
			json.NewEncoder(w).Encode("run-123")

		case r.Method == http.MethodPost && r.URL.Path == "/runs/run-123/run_entries":
			var payload struct {
				RunEntry struct {
					Data json.RawMessage `json:"data"`
				} `json:"run_entry"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			entries = append(entries, payload.RunEntry.Data)
			w.WriteHeader(http.StatusCreated)

		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ws := NewWebSink(srv.URL, 2*time.Second)

	runID, err := ws.CreateRun(RunMetadata{Creator: "tester", Source: types.SourceCodex})
	require.NoError(t, err)
	assert.Equal(t, "run-123", runID)

	events := []types.Event{
		{Type: types.EventTypeSessionStart, Source: types.SourceCodex},
		{Type: types.EventTypeMessage, Source: types.SourceCodex, Text: "hi"},
	}
	require.NoError(t, ws.SendEvents(runID, events))
	require.Len(t, entries, 2)

	var ev types.Event
	require.NoError(t, json.Unmarshal(entries[1], &ev))
	assert.Equal(t, "hi", ev.Text)
}

func TestWebSink_CreateRunFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ws := NewWebSink(srv.URL, time.Second)
	_, err := ws.CreateRun(RunMetadata{Source: types.SourceClaude})
	assert.Error(t, err)
}

func TestWebSink_EventFailuresAreNonFatal(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "flake", http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	ws := NewWebSink(srv.URL, time.Second)
	events := []types.Event{
		{Type: types.EventTypeSessionStart, Source: types.SourceClaude},
		{Type: types.EventTypeSessionEnd, Source: types.SourceClaude},
	}

	require.NoError(t, ws.SendEvents("run-1", events))
	assert.Equal(t, 2, calls, "remaining events must still be delivered")
}
