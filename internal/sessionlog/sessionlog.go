// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sessionlog persists a run's canonical events as a JSONL file
// per session, for replay and debugging.
package sessionlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/noldarim/agentstream/internal/logger"
	"github.com/noldarim/agentstream/internal/stream/types"
)

// Metadata describes the run a session log belongs to. It is written as the
// first line of the file, tagged with the reserved type "_metadata" so
// consumers can tell it apart from canonical events.
type Metadata struct {
	RunID     string       `json:"run_id"`
	Source    types.Source `json:"source"`
	StartedAt string       `json:"started_at"`
	Events    int          `json:"events"`
}

// FileLogger writes session logs under a directory.
type FileLogger struct {
	dir string
}

// NewFileLogger creates a FileLogger writing into dir, creating it if
// needed.
func NewFileLogger(dir string) (*FileLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &FileLogger{dir: dir}, nil
}

// Save writes the metadata line followed by one line per event to
// <timestamp>_<label>.jsonl. A missing run id is filled in.
func (fl *FileLogger) Save(events []types.Event, meta Metadata, label string) (string, error) {
	log := logger.GetSessionLogLogger()

	if meta.RunID == "" {
		meta.RunID = uuid.NewString()
	}
	meta.Events = len(events)

	ts := time.Now().UTC().Format("20060102_150405")
	path := filepath.Join(fl.dir, fmt.Sprintf("%s_%s.jsonl", ts, label))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create session log: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	if err := enc.Encode(metadataLine{Type: "_metadata", Metadata: meta}); err != nil {
		return "", fmt.Errorf("failed to write session metadata: %w", err)
	}
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return "", fmt.Errorf("failed to write session event: %w", err)
		}
	}

	log.Info().Str("file", path).Int("events", len(events)).Msg("Session log saved")
	return path, nil
}

type metadataLine struct {
	Type string `json:"type"`
	Metadata
}
