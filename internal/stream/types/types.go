// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package types defines the core types for the agent stream normalization layer.
// This package is designed to have no internal dependencies to avoid import cycles.
package types

import (
	"bytes"
	"encoding/json"
)

// Source identifies the vendor protocol a run was detected as.
type Source string

const (
	// SourceClaude is the streaming-block protocol: model output arrives as
	// indexed, incrementally-built content blocks inside explicit
	// message/turn boundaries.
	SourceClaude Source = "claude"

	// SourceCodex is the turn-item protocol: discrete, already-complete
	// items inside explicit turn boundaries, plus separate delta events
	// for streaming text.
	SourceCodex Source = "codex"

	// SourceUnknown means the first record matched neither protocol.
	SourceUnknown Source = ""
)

// RawRecord is one decoded input line with minimal extraction for routing.
// It is transient: consumed within a single dispatch cycle.
type RawRecord struct {
	// Data is the raw JSON line.
	Data json.RawMessage
	// Type is the extracted top-level "type" tag, empty if absent.
	Type string
}

// Event is the canonical, protocol-agnostic record emitted by this layer.
// Only Type, Source and TS are present on every event; the remaining fields
// are variant-specific and omitted when unset.
type Event struct {
	Type   EventType `json:"type"`
	Source Source    `json:"source"`
	// TS is stamped by the emitter when empty (UTC, millisecond precision).
	TS string `json:"ts,omitempty"`

	// session.start
	SessionID string `json:"session_id,omitempty"`
	Model     string `json:"model,omitempty"`

	// turn.start / turn.end
	TurnIndex  *int   `json:"turn_index,omitempty"`
	MessageID  string `json:"message_id,omitempty"`
	Status     string `json:"status,omitempty"`
	StopReason string `json:"stop_reason,omitempty"`
	Usage      *Usage `json:"usage,omitempty"`

	// message / thinking and their deltas
	Text string `json:"text,omitempty"`

	// tool.start / tool.delta / tool.end
	ToolID string         `json:"tool_id,omitempty"`
	Tool   string         `json:"tool,omitempty"`
	Input  map[string]any `json:"input,omitempty"`
	// Delta carries only the new tool-argument JSON fragment, never the
	// running total.
	Delta string `json:"delta,omitempty"`

	// error
	Message string `json:"message,omitempty"`
}

// EventType is the closed canonical event vocabulary.
type EventType string

const (
	EventTypeSessionStart  EventType = "session.start"
	EventTypeSessionEnd    EventType = "session.end"
	EventTypeTurnStart     EventType = "turn.start"
	EventTypeTurnEnd       EventType = "turn.end"
	EventTypeMessage       EventType = "message"
	EventTypeMessageDelta  EventType = "message.delta"
	EventTypeThinking      EventType = "thinking"
	EventTypeThinkingDelta EventType = "thinking.delta"
	EventTypeToolStart     EventType = "tool.start"
	EventTypeToolDelta     EventType = "tool.delta"
	EventTypeToolEnd       EventType = "tool.end"
	EventTypeError         EventType = "error"
)

// Turn end statuses.
const (
	TurnStatusCompleted = "completed"
	TurnStatusFailed    = "failed"
)

// Usage tracks token usage for a turn.
type Usage struct {
	InputTokens       int `json:"input_tokens"`
	OutputTokens      int `json:"output_tokens"`
	CacheReadTokens   int `json:"cache_read_tokens,omitempty"`
	CacheCreateTokens int `json:"cache_create_tokens,omitempty"`
}

// Adapter is one protocol-specific state machine implementing the shared
// translation contract. Exactly one adapter instance exists per run; it is
// never accessed concurrently.
type Adapter interface {
	// Name returns the adapter identifier ("claude", "codex").
	Name() string

	// Consume translates one raw record into zero or more canonical events,
	// mutating adapter state as needed. Abnormal record content is absorbed
	// and represented as valid canonical output, never as an error.
	Consume(rec RawRecord) []Event

	// Finalize emits the closing session.end event. Called exactly once,
	// after the last record.
	Finalize() []Event
}

// TurnIndex returns a pointer to idx for use in Event.TurnIndex.
func TurnIndex(idx int) *int {
	return &idx
}

// DecodeRecord decodes one input line into a RawRecord.
// Returns false if the line is not a JSON object (such lines are dropped).
func DecodeRecord(line []byte) (RawRecord, bool) {
	trimmed := bytes.TrimSpace(line)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return RawRecord{}, false
	}
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(trimmed, &probe); err != nil {
		return RawRecord{}, false
	}
	return RawRecord{Data: json.RawMessage(trimmed), Type: probe.Type}, true
}
