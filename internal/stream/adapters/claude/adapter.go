// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package claude translates the streaming-block protocol into canonical
// events. Model output arrives as indexed content blocks built up over many
// delta records inside explicit message/turn boundaries; the adapter
// accumulates the fragments and converts each block into a coherent event
// when it closes.
package claude

import (
	"encoding/json"
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

// block is an in-progress output unit. Its kind is fixed at block-start and
// never re-checked; the accumulators grow until content_block_stop converts
// the block into a canonical event and destroys it.
type block struct {
	index    int
	kind     string
	toolID   string
	toolName string

	text        string
	partialJSON string
}

// Adapter is the stateful translator for the streaming-block protocol.
// Construct a fresh instance per run; it must not be shared.
type Adapter struct {
	turnIndex      int
	sessionStarted bool
	sessionID      string
	model          string
	messageID      string
	stopReason     string
	usage          *types.Usage
	blocks         map[int]*block
}

// New creates a new streaming-block adapter.
func New() *Adapter {
	return &Adapter{
		turnIndex: -1,
		blocks:    make(map[int]*block),
	}
}

func (a *Adapter) Name() string {
	return string(types.SourceClaude)
}

// Consume translates one raw record. Unknown record types are no-ops.
func (a *Adapter) Consume(rec types.RawRecord) []types.Event {
	data, recType := unwrap(rec)

	switch recType {
	case typePing:
		return nil
	case typeSystem:
		return a.handleSystem(data)
	case typeMessageStart:
		return a.handleMessageStart(data)
	case typeContentBlockStart:
		return a.handleBlockStart(data)
	case typeContentBlockDelta:
		return a.handleBlockDelta(data)
	case typeContentBlockStop:
		return a.handleBlockStop(data)
	case typeMessageDelta:
		return a.handleMessageDelta(data)
	case typeMessageStop:
		return a.handleMessageStop()
	default:
		getLog().Debug().Str("type", recType).Msg("ignoring unknown streaming-block record")
		return nil
	}
}

// Finalize emits the single closing session.end.
func (a *Adapter) Finalize() []types.Event {
	return []types.Event{a.event(types.EventTypeSessionEnd)}
}

// unwrap resolves records that carry the stream event in a "stream_event"
// field instead of at the top level.
func unwrap(rec types.RawRecord) (json.RawMessage, string) {
	if IsStreamType(rec.Type) {
		return rec.Data, rec.Type
	}
	var env envelope
	if err := json.Unmarshal(rec.Data, &env); err == nil && len(env.StreamEvent) > 0 {
		var inner struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(env.StreamEvent, &inner); err == nil {
			return env.StreamEvent, inner.Type
		}
	}
	return rec.Data, rec.Type
}

// handleSystem captures the session id from the first system/init record and
// emits session.start. The init record carries no usable model name at this
// point, so the field stays unset.
func (a *Adapter) handleSystem(data json.RawMessage) []types.Event {
	var rec systemRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		getLog().Debug().Err(err).Msg("dropping malformed system record")
		return nil
	}
	if rec.Subtype != "init" || a.sessionStarted {
		return nil
	}

	a.sessionID = rec.SessionID
	a.sessionStarted = true

	ev := a.event(types.EventTypeSessionStart)
	ev.SessionID = a.sessionID
	return []types.Event{ev}
}

// handleMessageStart begins a new turn: per-turn state is reset and the turn
// counter advances by exactly one. session.start is emitted lazily here when
// no system/init record preceded the first message.
func (a *Adapter) handleMessageStart(data json.RawMessage) []types.Event {
	var rec messageStartRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		getLog().Debug().Err(err).Msg("dropping malformed message_start record")
		return nil
	}

	a.turnIndex++
	a.blocks = make(map[int]*block)
	a.stopReason = ""
	a.usage = nil
	a.messageID = rec.Message.ID
	if a.model == "" {
		a.model = rec.Message.Model
	}

	var events []types.Event
	if !a.sessionStarted {
		a.sessionStarted = true
		ev := a.event(types.EventTypeSessionStart)
		ev.SessionID = a.sessionID
		ev.Model = a.model
		events = append(events, ev)
	}

	ev := a.event(types.EventTypeTurnStart)
	ev.TurnIndex = types.TurnIndex(a.turnIndex)
	ev.MessageID = a.messageID
	return append(events, ev)
}

// handleBlockStart allocates a block under its index. Tool-call blocks emit
// tool.start immediately with an empty input so consumers see the call
// before any arguments have streamed in.
func (a *Adapter) handleBlockStart(data json.RawMessage) []types.Event {
	var rec contentBlockStartRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		getLog().Debug().Err(err).Msg("dropping malformed content_block_start record")
		return nil
	}

	b := &block{
		index: rec.Index,
		kind:  rec.ContentBlock.Type,
	}
	if b.kind == blockKindToolUse {
		b.toolID = rec.ContentBlock.ID
		b.toolName = rec.ContentBlock.Name
	}
	a.blocks[rec.Index] = b

	if b.kind != blockKindToolUse {
		return nil
	}
	ev := a.event(types.EventTypeToolStart)
	ev.ToolID = b.toolID
	ev.Tool = tools.Canonical(b.toolName)
	ev.Input = map[string]any{}
	return []types.Event{ev}
}

// handleBlockDelta appends a fragment to its block's accumulator and emits
// the matching delta event. Deltas for unknown indexes are ignored.
func (a *Adapter) handleBlockDelta(data json.RawMessage) []types.Event {
	var rec contentBlockDeltaRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		getLog().Debug().Err(err).Msg("dropping malformed content_block_delta record")
		return nil
	}

	b, ok := a.blocks[rec.Index]
	if !ok {
		getLog().Debug().Int("index", rec.Index).Msg("delta for unknown block index, ignoring")
		return nil
	}

	switch rec.Delta.Type {
	case deltaKindText:
		b.text += rec.Delta.Text
		ev := a.event(types.EventTypeMessageDelta)
		ev.Text = rec.Delta.Text
		return []types.Event{ev}

	case deltaKindThinking:
		b.text += rec.Delta.Thinking
		ev := a.event(types.EventTypeThinkingDelta)
		ev.Text = rec.Delta.Thinking
		return []types.Event{ev}

	case deltaKindInputJSON:
		b.partialJSON += rec.Delta.PartialJSON
		ev := a.event(types.EventTypeToolDelta)
		ev.ToolID = b.toolID
		ev.Tool = tools.Canonical(b.toolName)
		ev.Delta = rec.Delta.PartialJSON
		return []types.Event{ev}

	default:
		return nil
	}
}

// handleBlockStop destroys the block and converts its accumulated content
// into the terminal event for that block.
func (a *Adapter) handleBlockStop(data json.RawMessage) []types.Event {
	var rec contentBlockStopRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		getLog().Debug().Err(err).Msg("dropping malformed content_block_stop record")
		return nil
	}

	b, ok := a.blocks[rec.Index]
	if !ok {
		return nil
	}
	delete(a.blocks, rec.Index)

	switch b.kind {
	case blockKindText:
		ev := a.event(types.EventTypeMessage)
		ev.Text = b.text
		return []types.Event{ev}

	case blockKindThinking:
		ev := a.event(types.EventTypeThinking)
		ev.Text = b.text
		return []types.Event{ev}

	case blockKindToolUse:
		ev := a.event(types.EventTypeToolEnd)
		ev.ToolID = b.toolID
		ev.Tool = tools.Canonical(b.toolName)
		ev.Input = parseToolInput(b.partialJSON)
		return []types.Event{ev}

	default:
		return nil
	}
}

// handleMessageDelta records the stop reason and usage for the turn. Nothing
// is emitted here; turn.end carries them when message_stop arrives.
func (a *Adapter) handleMessageDelta(data json.RawMessage) []types.Event {
	var rec messageDeltaRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		getLog().Debug().Err(err).Msg("dropping malformed message_delta record")
		return nil
	}

	if rec.Delta.StopReason != nil {
		a.stopReason = *rec.Delta.StopReason
	}
	if rec.Usage != nil {
		a.usage = &types.Usage{
			InputTokens:       rec.Usage.InputTokens,
			OutputTokens:      rec.Usage.OutputTokens,
			CacheReadTokens:   rec.Usage.CacheReadInputTokens,
			CacheCreateTokens: rec.Usage.CacheCreationInputTokens,
		}
	}
	return nil
}

func (a *Adapter) handleMessageStop() []types.Event {
	ev := a.event(types.EventTypeTurnEnd)
	ev.TurnIndex = types.TurnIndex(a.turnIndex)
	ev.StopReason = a.stopReason
	ev.Usage = a.usage
	return []types.Event{ev}
}

func (a *Adapter) event(t types.EventType) types.Event {
	return types.Event{Type: t, Source: types.SourceClaude}
}

// parseToolInput parses the accumulated tool-argument JSON as one value.
// Parse failure is absorbed: the input becomes an empty map, which is
// indistinguishable from "no arguments supplied".
func parseToolInput(partialJSON string) map[string]any {
	input := map[string]any{}
	if partialJSON == "" {
		return input
	}
	if err := json.Unmarshal([]byte(partialJSON), &input); err != nil {
		getLog().Warn().Err(err).Int("len", len(partialJSON)).Msg("unparsable tool input JSON, substituting empty input")
		return map[string]any{}
	}
	return input
}
