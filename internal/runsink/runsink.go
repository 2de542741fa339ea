// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package runsink forwards normalized runs to an external run store.
package runsink

import (
	"fmt"

	"github.com/noldarim/agentstream/internal/config"
	"github.com/noldarim/agentstream/internal/stream/types"
)

// RunMetadata describes the run being created.
type RunMetadata struct {
	Creator string       `json:"creator,omitempty"`
	Source  types.Source `json:"source"`
	Label   string       `json:"label,omitempty"`
}

// Sink receives a run and its canonical events.
type Sink interface {
	// CreateRun registers a new run and returns its id.
	CreateRun(meta RunMetadata) (string, error)
	// SendEvents forwards events for a run. Individual delivery failures
	// are non-fatal: they are logged, not returned.
	SendEvents(runID string, events []types.Event) error
}

// Build constructs a Sink from configuration. Type "none" (or empty)
// returns nil: no forwarding.
func Build(cfg config.SinkConfig) (Sink, error) {
	switch cfg.Type {
	case "", "none":
		return nil, nil
	case "web":
		return NewWebSink(cfg.BaseURL, cfg.Timeout), nil
	case "fake":
		return NewFakeSink(), nil
	default:
		return nil, fmt.Errorf("unknown sink type: %s", cfg.Type)
	}
}
