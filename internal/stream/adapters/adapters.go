// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package adapters detects the source protocol of a raw event stream and
// constructs the matching protocol adapter.
package adapters

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/noldarim/agentstream/internal/stream/adapters/claude"
	"github.com/noldarim/agentstream/internal/stream/adapters/codex"
	"github.com/noldarim/agentstream/internal/stream/types"
)

// Detect classifies the first successfully decoded record of a run. It runs
// at most once per run; the binding it produces is fixed until finalize.
//
// Rules, in order: a known streaming-block type or a type containing
// "content_block" is the streaming-block protocol; a type prefixed with
// "thread.", "turn." or "item.", containing "delta", or equal to "error" is
// the turn-item protocol; a record carrying a "stream_event" field is the
// streaming-block protocol in its enveloped form. Anything else is unknown.
func Detect(rec types.RawRecord) types.Source {
	if claude.IsStreamType(rec.Type) || strings.Contains(rec.Type, "content_block") {
		return types.SourceClaude
	}

	if strings.HasPrefix(rec.Type, "thread.") ||
		strings.HasPrefix(rec.Type, "turn.") ||
		strings.HasPrefix(rec.Type, "item.") ||
		strings.Contains(rec.Type, "delta") ||
		rec.Type == "error" {
		return types.SourceCodex
	}

	var probe struct {
		StreamEvent json.RawMessage `json:"stream_event"`
	}
	if err := json.Unmarshal(rec.Data, &probe); err == nil && len(probe.StreamEvent) > 0 {
		return types.SourceClaude
	}

	return types.SourceUnknown
}

// New constructs a fresh adapter for the detected source. Each run gets its
// own instance; adapter state is never shared.
func New(src types.Source) (types.Adapter, error) {
	switch src {
	case types.SourceClaude:
		return claude.New(), nil
	case types.SourceCodex:
		return codex.New(), nil
	default:
		return nil, fmt.Errorf("no adapter for source %q", src)
	}
}
