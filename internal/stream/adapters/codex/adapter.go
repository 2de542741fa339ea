// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package codex translates the turn-item protocol into canonical events.
// Items arrive already complete (messages, reasoning, tool actions) inside
// explicit turn boundaries; separate delta records stream text as it is
// produced.
package codex

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/noldarim/agentstream/internal/logger"
	"github.com/noldarim/agentstream/internal/stream/tools"
	"github.com/noldarim/agentstream/internal/stream/types"
)

var (
	log     *zerolog.Logger
	logOnce sync.Once
)

func getLog() *zerolog.Logger {
	logOnce.Do(func() {
		l := logger.GetAdapterLogger()
		log = &l
	})
	return log
}

// Default messages for upstream failures that carry no detail.
const (
	defaultTurnFailedMessage = "turn failed"
	defaultErrorMessage      = "unknown error"
)

// Adapter is the stateful translator for the turn-item protocol.
// Construct a fresh instance per run; it must not be shared.
type Adapter struct {
	turnIndex int
	sessionID string
}

// New creates a new turn-item adapter.
func New() *Adapter {
	return &Adapter{turnIndex: -1}
}

func (a *Adapter) Name() string {
	return string(types.SourceCodex)
}

// Consume translates one raw record. Unknown record types are no-ops.
func (a *Adapter) Consume(rec types.RawRecord) []types.Event {
	switch rec.Type {
	case typeThreadStarted:
		return a.handleThreadStarted(rec.Data)
	case typeTurnStarted:
		return a.handleTurnStarted(rec.Data)
	case typeTurnCompleted:
		return a.handleTurnCompleted(rec.Data)
	case typeTurnFailed:
		return a.handleTurnFailed(rec.Data)
	case typeItemStarted:
		return a.handleItemStarted(rec.Data)
	case typeItemCompleted:
		return a.handleItemCompleted(rec.Data)
	case typeError:
		return a.handleError(rec.Data)
	default:
		if strings.Contains(rec.Type, "delta") {
			return a.handleTextDelta(rec.Type, rec.Data)
		}
		getLog().Debug().Str("type", rec.Type).Msg("ignoring unknown turn-item record")
		return nil
	}
}

// Finalize emits the single closing session.end.
func (a *Adapter) Finalize() []types.Event {
	return []types.Event{a.event(types.EventTypeSessionEnd)}
}

func (a *Adapter) handleThreadStarted(data json.RawMessage) []types.Event {
	var rec threadStartedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		getLog().Debug().Err(err).Msg("dropping malformed thread.started record")
		return nil
	}

	a.sessionID = rec.ThreadID

	ev := a.event(types.EventTypeSessionStart)
	ev.SessionID = a.sessionID
	ev.Model = rec.Model
	return []types.Event{ev}
}

func (a *Adapter) handleTurnStarted(data json.RawMessage) []types.Event {
	var rec turnStartedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		getLog().Debug().Err(err).Msg("dropping malformed turn.started record")
		return nil
	}

	a.turnIndex++

	ev := a.event(types.EventTypeTurnStart)
	ev.TurnIndex = types.TurnIndex(a.turnIndex)
	ev.MessageID = rec.MessageID
	return []types.Event{ev}
}

func (a *Adapter) handleTurnCompleted(data json.RawMessage) []types.Event {
	var rec turnCompletedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		getLog().Debug().Err(err).Msg("dropping malformed turn.completed record")
		return nil
	}

	ev := a.event(types.EventTypeTurnEnd)
	ev.TurnIndex = types.TurnIndex(a.turnIndex)
	ev.Status = types.TurnStatusCompleted
	ev.StopReason = rec.StopReason
	if rec.Usage != nil {
		ev.Usage = &types.Usage{
			InputTokens:     rec.Usage.InputTokens,
			OutputTokens:    rec.Usage.OutputTokens,
			CacheReadTokens: rec.Usage.CachedInputTokens,
		}
	}
	return []types.Event{ev}
}

// handleTurnFailed closes the turn with a failed status, then forwards the
// upstream failure as a separate canonical error event. The turn.end carries
// no stop reason or usage.
func (a *Adapter) handleTurnFailed(data json.RawMessage) []types.Event {
	var rec turnFailedRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		getLog().Debug().Err(err).Msg("dropping malformed turn.failed record")
		return nil
	}

	end := a.event(types.EventTypeTurnEnd)
	end.TurnIndex = types.TurnIndex(a.turnIndex)
	end.Status = types.TurnStatusFailed

	message := defaultTurnFailedMessage
	if rec.Error != nil && rec.Error.Message != "" {
		message = rec.Error.Message
	}
	errEv := a.event(types.EventTypeError)
	errEv.Message = message

	return []types.Event{end, errEv}
}

// handleItemStarted emits tool.start for tool items. Non-tool item types are
// ignored at start; they only matter once complete.
func (a *Adapter) handleItemStarted(data json.RawMessage) []types.Event {
	item, ok := decodeItem(data)
	if !ok || !isToolItem(item.Type) {
		return nil
	}

	ev := a.event(types.EventTypeToolStart)
	ev.ToolID = item.ID
	ev.Tool = tools.Canonical(item.Type)
	ev.Input = itemInput(item)
	return []types.Event{ev}
}

// handleItemCompleted dispatches on the item type: agent messages and
// reasoning become terminal text events, tool items become tool.end, and
// everything else is ignored.
func (a *Adapter) handleItemCompleted(data json.RawMessage) []types.Event {
	item, ok := decodeItem(data)
	if !ok {
		return nil
	}

	switch {
	case item.Type == itemTypeAgentMessage:
		ev := a.event(types.EventTypeMessage)
		ev.Text = extractText(item)
		return []types.Event{ev}

	case item.Type == itemTypeReasoning:
		ev := a.event(types.EventTypeThinking)
		ev.Text = extractText(item)
		return []types.Event{ev}

	case isToolItem(item.Type):
		ev := a.event(types.EventTypeToolEnd)
		ev.ToolID = item.ID
		ev.Tool = tools.Canonical(item.Type)
		ev.Input = itemInput(item)
		return []types.Event{ev}

	default:
		return nil
	}
}

// handleTextDelta forwards streamed text fragments. Reasoning deltas map to
// thinking.delta, everything else to message.delta.
func (a *Adapter) handleTextDelta(recType string, data json.RawMessage) []types.Event {
	var rec deltaRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		getLog().Debug().Err(err).Msg("dropping malformed delta record")
		return nil
	}

	fragment := rec.Delta
	if fragment == "" {
		fragment = rec.Text
	}

	t := types.EventTypeMessageDelta
	if strings.Contains(recType, "reasoning") {
		t = types.EventTypeThinkingDelta
	}
	ev := a.event(t)
	ev.Text = fragment
	return []types.Event{ev}
}

func (a *Adapter) handleError(data json.RawMessage) []types.Event {
	var rec errorRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		getLog().Debug().Err(err).Msg("dropping malformed error record")
		return nil
	}

	message := rec.Message
	if message == "" {
		message = defaultErrorMessage
	}
	ev := a.event(types.EventTypeError)
	ev.Message = message
	return []types.Event{ev}
}

func (a *Adapter) event(t types.EventType) types.Event {
	return types.Event{Type: t, Source: types.SourceCodex}
}
