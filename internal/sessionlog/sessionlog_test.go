// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package sessionlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noldarim/agentstream/internal/stream/types"
)

func TestNewFileLogger_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "sessions")

	_, err := NewFileLogger(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSave_WritesMetadataThenEvents(t *testing.T) {
	dir := t.TempDir()
	fl, err := NewFileLogger(dir)
	require.NoError(t, err)

	events := []types.Event{
		{Type: types.EventTypeSessionStart, Source: types.SourceClaude, SessionID: "s-1"},
		{Type: types.EventTypeMessage, Source: types.SourceClaude, Text: "hi"},
		{Type: types.EventTypeSessionEnd, Source: types.SourceClaude},
	}

	path, err := fl.Save(events, Metadata{Source: types.SourceClaude, StartedAt: "2026-08-30T12:00:00Z"}, "mytask")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_mytask.jsonl"))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	scanner := bufio.NewScanner(file)

	require.True(t, scanner.Scan())
	var meta struct {
		Type string `json:"type"`
		Metadata
	}
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &meta))
	assert.Equal(t, "_metadata", meta.Type)
	assert.NotEmpty(t, meta.RunID, "missing run id must be filled in")
	assert.Equal(t, types.SourceClaude, meta.Source)
	assert.Equal(t, 3, meta.Events)

	var got []types.Event
	for scanner.Scan() {
		var ev types.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &ev))
		got = append(got, ev)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, got, 3)
	assert.Equal(t, types.EventTypeSessionStart, got[0].Type)
	assert.Equal(t, "hi", got[1].Text)
	assert.Equal(t, types.EventTypeSessionEnd, got[2].Type)
}

func TestSave_PreservesGivenRunID(t *testing.T) {
	fl, err := NewFileLogger(t.TempDir())
	require.NoError(t, err)

	path, err := fl.Save(nil, Metadata{RunID: "run-42", Source: types.SourceCodex}, "empty")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var meta Metadata
	require.NoError(t, json.Unmarshal([]byte(strings.SplitN(string(data), "\n", 2)[0]), &meta))
	assert.Equal(t, "run-42", meta.RunID)
	assert.Equal(t, 0, meta.Events)
}
