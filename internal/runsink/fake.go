// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package runsink

import (
	"github.com/google/uuid"

	"github.com/noldarim/agentstream/internal/stream/types"
)

// FakeSink records runs in memory. Used in tests and for dry runs.
type FakeSink struct {
	Runs   map[string]RunMetadata
	Events map[string][]types.Event
}

// NewFakeSink creates an empty FakeSink.
func NewFakeSink() *FakeSink {
	return &FakeSink{
		Runs:   make(map[string]RunMetadata),
		Events: make(map[string][]types.Event),
	}
}

func (fs *FakeSink) CreateRun(meta RunMetadata) (string, error) {
	runID := uuid.NewString()
	fs.Runs[runID] = meta
	return runID, nil
}

func (fs *FakeSink) SendEvents(runID string, events []types.Event) error {
	fs.Events[runID] = append(fs.Events[runID], events...)
	return nil
}
