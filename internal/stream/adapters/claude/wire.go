// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package claude

import "encoding/json"

// Wire shapes for the streaming-block protocol. Only the fields the adapter
// consumes are decoded; everything else is ignored.

// Record type tags.
const (
	typePing              = "ping"
	typeSystem            = "system"
	typeMessageStart      = "message_start"
	typeContentBlockStart = "content_block_start"
	typeContentBlockDelta = "content_block_delta"
	typeContentBlockStop  = "content_block_stop"
	typeMessageDelta      = "message_delta"
	typeMessageStop       = "message_stop"
)

// streamTypes is the set of top-level type tags this adapter understands.
var streamTypes = map[string]bool{
	typePing:              true,
	typeSystem:            true,
	typeMessageStart:      true,
	typeContentBlockStart: true,
	typeContentBlockDelta: true,
	typeContentBlockStop:  true,
	typeMessageDelta:      true,
	typeMessageStop:       true,
}

// IsStreamType reports whether t is a known streaming-block record type.
func IsStreamType(t string) bool {
	return streamTypes[t]
}

// envelope detects records that wrap the stream event in a "stream_event"
// field rather than carrying it at the top level.
type envelope struct {
	Type        string          `json:"type"`
	StreamEvent json.RawMessage `json:"stream_event"`
}

type systemRecord struct {
	Subtype   string `json:"subtype"`
	SessionID string `json:"session_id"`
}

type messageStartRecord struct {
	Message struct {
		ID    string `json:"id"`
		Model string `json:"model"`
	} `json:"message"`
}

type contentBlockStartRecord struct {
	Index        int `json:"index"`
	ContentBlock struct {
		Type string `json:"type"`
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"content_block"`
}

type contentBlockDeltaRecord struct {
	Index int `json:"index"`
	Delta struct {
		Type        string `json:"type"`
		Text        string `json:"text"`
		Thinking    string `json:"thinking"`
		PartialJSON string `json:"partial_json"`
	} `json:"delta"`
}

type contentBlockStopRecord struct {
	Index int `json:"index"`
}

type messageDeltaRecord struct {
	Delta struct {
		StopReason *string `json:"stop_reason"`
	} `json:"delta"`
	Usage *wireUsage `json:"usage"`
}

type wireUsage struct {
	InputTokens              int `json:"input_tokens"`
	OutputTokens             int `json:"output_tokens"`
	CacheReadInputTokens     int `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int `json:"cache_creation_input_tokens"`
}

// Content block kinds.
const (
	blockKindText     = "text"
	blockKindThinking = "thinking"
	blockKindToolUse  = "tool_use"
)

// Delta kinds within content_block_delta.
const (
	deltaKindText      = "text_delta"
	deltaKindThinking  = "thinking_delta"
	deltaKindInputJSON = "input_json_delta"
)
