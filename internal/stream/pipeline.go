// Copyright (C) 2026 Noldarim
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream drives the normalization run: it reads raw records line by
// line, binds a protocol adapter from the first valid record and forwards
// everything to it, emitting canonical events in input order.
package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/noldarim/agentstream/internal/logger"
	"github.com/noldarim/agentstream/internal/stream/adapters"
	"github.com/noldarim/agentstream/internal/stream/emitter"
	"github.com/noldarim/agentstream/internal/stream/types"
)

// ErrUnknownSource is returned when the first valid record matches neither
// known protocol. No adapter can be bound without it, so the run aborts.
var ErrUnknownSource = errors.New("unable to detect source protocol")

// Scanner buffer sizes. Tool-argument JSON can make individual lines large.
const (
	initialBufSize = 1024 * 1024
	maxLineSize    = 10 * 1024 * 1024
)

// Stats summarizes one normalization run.
type Stats struct {
	Source        types.Source
	LinesRead     int64
	LinesDropped  int64
	EventsEmitted int64
}

// Pipeline dispatches raw records to a single bound adapter. Processing is
// strictly sequential: each record is fully handled before the next is read,
// so events leave in the exact order their triggers arrived.
type Pipeline struct {
	emitter *emitter.Emitter
	adapter types.Adapter
	source  types.Source
	log     zerolog.Logger

	// Observer, when set, sees every event after it has been emitted.
	// Used by session logging and run forwarding.
	Observer func(types.Event)
}

// New creates a Pipeline emitting through em.
func New(em *emitter.Emitter) *Pipeline {
	return &Pipeline{
		emitter: em,
		log:     logger.GetStreamLogger(),
	}
}

// Run consumes r until end of input, then finalizes the bound adapter.
// Undecodable lines are dropped silently; only detection failure aborts.
func (p *Pipeline) Run(r io.Reader) (Stats, error) {
	var stats Stats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, initialBufSize), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		stats.LinesRead++

		rec, ok := types.DecodeRecord(line)
		if !ok {
			stats.LinesDropped++
			p.log.Debug().Int64("line", stats.LinesRead).Msg("dropping undecodable input line")
			continue
		}

		if p.adapter == nil {
			if err := p.bind(rec); err != nil {
				return stats, err
			}
			stats.Source = p.source
		}

		if err := p.emitAll(p.adapter.Consume(rec), &stats); err != nil {
			return stats, err
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed to read input stream: %w", err)
	}

	if p.adapter != nil {
		if err := p.emitAll(p.adapter.Finalize(), &stats); err != nil {
			return stats, err
		}
	}

	p.log.Info().
		Str("source", string(stats.Source)).
		Int64("linesRead", stats.LinesRead).
		Int64("linesDropped", stats.LinesDropped).
		Int64("eventsEmitted", stats.EventsEmitted).
		Msg("Normalization run finished")
	return stats, nil
}

// bind detects the protocol from the first valid record and fixes the
// adapter for the rest of the run.
func (p *Pipeline) bind(rec types.RawRecord) error {
	src := adapters.Detect(rec)
	if src == types.SourceUnknown {
		return fmt.Errorf("%w: first record type %q", ErrUnknownSource, rec.Type)
	}

	adapter, err := adapters.New(src)
	if err != nil {
		return err
	}
	p.adapter = adapter
	p.source = src
	p.log.Info().Str("source", string(src)).Msg("Source protocol detected")
	return nil
}

func (p *Pipeline) emitAll(events []types.Event, stats *Stats) error {
	for _, ev := range events {
		if err := p.emitter.Emit(ev); err != nil {
			return err
		}
		stats.EventsEmitted++
		if p.Observer != nil {
			p.Observer(ev)
		}
	}
	return nil
}
