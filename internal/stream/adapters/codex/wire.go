// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

package codex

import (
	"encoding/json"
	"strings"
)

// Wire shapes for the turn-item protocol. Only the fields the adapter
// consumes are decoded; everything else is ignored.

// Record type tags.
const (
	typeThreadStarted = "thread.started"
	typeTurnStarted   = "turn.started"
	typeTurnCompleted = "turn.completed"
	typeTurnFailed    = "turn.failed"
	typeItemStarted   = "item.started"
	typeItemCompleted = "item.completed"
	typeError         = "error"
)

// Item types carried by item.* records.
const (
	itemTypeAgentMessage     = "agent_message"
	itemTypeReasoning        = "reasoning"
	itemTypeCommandExecution = "command_execution"
	itemTypeFileChange       = "file_change"
	itemTypeMcpToolCall      = "mcp_tool_call"
	itemTypeWebSearch        = "web_search"
	itemTypeTodoList         = "todo_list"
)

// toolItemTypes are the item types representing external actions.
var toolItemTypes = map[string]bool{
	itemTypeCommandExecution: true,
	itemTypeFileChange:       true,
	itemTypeMcpToolCall:      true,
	itemTypeWebSearch:        true,
	itemTypeTodoList:         true,
}

func isToolItem(t string) bool {
	return toolItemTypes[t]
}

type threadStartedRecord struct {
	ThreadID string `json:"thread_id"`
	Model    string `json:"model"`
}

type turnStartedRecord struct {
	MessageID string `json:"message_id"`
}

type turnCompletedRecord struct {
	StopReason string     `json:"stop_reason"`
	Usage      *wireUsage `json:"usage"`
}

type wireUsage struct {
	InputTokens       int `json:"input_tokens"`
	CachedInputTokens int `json:"cached_input_tokens"`
	OutputTokens      int `json:"output_tokens"`
}

type turnFailedRecord struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type errorRecord struct {
	Message string `json:"message"`
}

type deltaRecord struct {
	Delta string `json:"delta"`
	Text  string `json:"text"`
}

// item is the decoded payload of an item.* record.
type item struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	// Text for agent_message / reasoning items.
	Text string `json:"text"`
	// Content is an alternate text carrier: a single string or an ordered
	// sequence of parts with text fields.
	Content json.RawMessage `json:"content"`

	// Tool-item payloads.
	Command   string          `json:"command"`
	Query     string          `json:"query"`
	Arguments map[string]any  `json:"arguments"`
	Changes   json.RawMessage `json:"changes"`
	Items     json.RawMessage `json:"items"`
}

// decodeItem extracts the item payload from an item.* record.
func decodeItem(data json.RawMessage) (item, bool) {
	var wrapper struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil || len(wrapper.Item) == 0 {
		getLog().Debug().Msg("dropping item record without item payload")
		return item{}, false
	}

	var it item
	if err := json.Unmarshal(wrapper.Item, &it); err != nil {
		getLog().Debug().Err(err).Msg("dropping malformed item payload")
		return item{}, false
	}
	return it, true
}

// itemInput builds the canonical tool input from an item's payload fields.
// Items carrying none of the known payloads yield an empty mapping.
func itemInput(it item) map[string]any {
	input := map[string]any{}

	switch it.Type {
	case itemTypeCommandExecution:
		if it.Command != "" {
			input["command"] = it.Command
		}
	case itemTypeWebSearch:
		if it.Query != "" {
			input["query"] = it.Query
		}
	case itemTypeMcpToolCall:
		if it.Arguments != nil {
			input = it.Arguments
		}
	case itemTypeFileChange:
		if changes := decodeAny(it.Changes); changes != nil {
			input["changes"] = changes
		}
	case itemTypeTodoList:
		if items := decodeAny(it.Items); items != nil {
			input["items"] = items
		}
	}
	return input
}

func decodeAny(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

// extractText pulls the display text out of an item. The text field wins
// when present; otherwise content is used: a single string verbatim, an
// ordered sequence by concatenating each element's text field (empty when
// absent), anything else the empty string.
func extractText(it item) string {
	if it.Text != "" {
		return it.Text
	}
	if len(it.Content) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(it.Content, &s); err == nil {
		return s
	}

	var parts []struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(it.Content, &parts); err != nil {
		return ""
	}
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(part.Text)
	}
	return b.String()
}
